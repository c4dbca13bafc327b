package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/infra/logging"
	"learning-access/internal/infra/metrics"
)

type Middleware func(http.Handler) http.Handler

const traceHeader = "X-Trace-Id"

func TraceID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tid := r.Header.Get(traceHeader)
			if tid == "" || len(tid) > 64 {
				tid = uuid.NewString()
			}
			w.Header().Set(traceHeader, tid)
			ctx := logging.WithTraceID(r.Context(), tid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestLog(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			l := logging.With(r.Context(), logger)
			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Dur("duration", time.Since(start)).
				Msg("http_request")
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *respWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func Recover(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l := logging.With(r.Context(), logger)
					l.Error().Interface("panic", rec).Msg("panic recovered")
					writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Metrics records requests by chi route pattern so path parameters do not explode cardinality.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			route := ""
			if rc := chi.RouteContext(r.Context()); rc != nil {
				route = rc.RoutePattern()
			}
			metrics.ObserveHTTP(route, r.Method, ww.status, time.Since(start).Seconds())
		})
	}
}

type sessionKey struct{}

func withSession(ctx context.Context, s *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the caller's session, or nil for anonymous requests.
func SessionFrom(ctx context.Context) *model.Session {
	s, _ := ctx.Value(sessionKey{}).(*model.Session)
	return s
}

// ProfileLookup loads the stored profile behind a session.
type ProfileLookup interface {
	Profile(ctx context.Context, userID string) (*model.Profile, error)
}

// Session resolves the token, if any. Invalid, expired or revoked tokens
// leave the request anonymous; guards decide whether that is acceptable.
// The role always comes from the stored profile, never from the token, so a
// grant or demotion applies on the next request. A deleted account is
// anonymous; an unreachable store drops the session to RoleUser.
func Session(auth *AuthManager, revoker SessionRevoker, profiles ProfileLookup, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := auth.ParseFromRequest(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if revoker != nil {
				revoked, err := revoker.IsRevoked(r.Context(), s.ID)
				if err != nil {
					logging.With(r.Context(), logger).Warn().Err(err).Msg("session revocation check failed")
				} else if revoked {
					next.ServeHTTP(w, r)
					return
				}
			}
			if profiles != nil {
				p, err := profiles.Profile(r.Context(), s.UserID)
				switch {
				case errors.Is(err, domain.ErrNotFound):
					next.ServeHTTP(w, r)
					return
				case err != nil:
					logging.With(r.Context(), logger).Warn().Err(err).Str("user_id", s.UserID).Msg("profile lookup failed; using least privilege")
					s.Role = model.RoleUser
				default:
					s.Role = p.Role
					s.Email = p.Email
				}
			}
			ctx := withSession(r.Context(), s)
			ctx = logging.WithUserID(ctx, s.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFrom(r.Context()).Authenticated() {
			s.writeError(w, r, domain.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCapability guards a route with the same check the navigation menu uses.
func (s *Server) RequireCapability(c model.Capability) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFrom(r.Context())
			switch {
			case !sess.Authenticated():
				s.writeError(w, r, domain.ErrUnauthorized)
			case !sess.Can(c):
				s.writeError(w, r, domain.ErrForbidden)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

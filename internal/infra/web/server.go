package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"learning-access/internal/domain/model"
	"learning-access/internal/infra/i18n"
	"learning-access/internal/usecase"
)

// Deps are the collaborators the HTTP layer needs. Revoker may be nil.
type Deps struct {
	Auth       usecase.AuthUseCase
	Redemption usecase.RedemptionUseCase
	Codes      usecase.AccessCodeUseCase
	Learning   usecase.LearningUseCase
	Sessions   *AuthManager
	Revoker    SessionRevoker
	Translator *i18n.Translator
	Logger     *zerolog.Logger

	AllowedOrigins []string
	RequestTimeout time.Duration
}

type Server struct {
	authUC     usecase.AuthUseCase
	redeemUC   usecase.RedemptionUseCase
	codesUC    usecase.AccessCodeUseCase
	learningUC usecase.LearningUseCase
	sessions   *AuthManager
	revoker    SessionRevoker
	tr         *i18n.Translator
	validate   *validator.Validate
	log        *zerolog.Logger

	origins []string
	timeout time.Duration
	server  *http.Server
}

func NewServer(d Deps) *Server {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 15 * time.Second
	}
	return &Server{
		authUC:     d.Auth,
		redeemUC:   d.Redemption,
		codesUC:    d.Codes,
		learningUC: d.Learning,
		sessions:   d.Sessions,
		revoker:    d.Revoker,
		tr:         d.Translator,
		validate:   validator.New(),
		log:        d.Logger,
		origins:    d.AllowedOrigins,
		timeout:    d.RequestTimeout,
	}
}

// Routes builds the full router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		TraceID(),
		RequestLog(s.log),
		Recover(s.log),
		Timeout(s.timeout),
		Metrics(),
	)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", traceHeader},
			ExposedHeaders:   []string{traceHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Session(s.sessions, s.revoker, s.authUC, s.log))

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/navigation", s.handleNavigation)
		r.Get("/programs", s.handlePrograms)

		r.Route("/me", func(r chi.Router) {
			r.Use(s.RequireAuth)
			r.Get("/", s.handleMe)
			r.With(s.RequireCapability(model.CapRedeemCode)).Post("/redeem", s.handleRedeem)
			r.Get("/redemptions", s.handleMyRedemptions)
			r.Get("/programs", s.handleMyPrograms)
			r.Get("/programs/{programID}/lessons", s.handleLessonProgress)
			r.Put("/programs/{programID}/lessons/{lessonID}", s.handleRecordProgress)
			r.Get("/saved", s.handleSavedList)
			r.Post("/saved", s.handleSave)
			r.Delete("/saved/{contentType}/{contentID}", s.handleUnsave)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.RequireCapability(model.CapManageCodes))
				r.Get("/codes", s.handleListCodes)
				r.Post("/codes", s.handleCreateCode)
				r.Post("/codes/generate", s.handleGenerateCodes)
				r.Get("/codes/{id}", s.handleGetCode)
				r.Patch("/codes/{id}/active", s.handleSetCodeActive)
				r.Patch("/codes/{id}/max-uses", s.handleSetCodeMaxUses)
				r.Get("/codes/{id}/redemptions", s.handleCodeRedemptions)
			})
			r.Group(func(r chi.Router) {
				r.Use(s.RequireCapability(model.CapManageUsers))
				r.Get("/users", s.handleListUsers)
				r.Put("/users/{id}/role", s.handleSetUserRole)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errRouteNotFound)
	})
	return r
}

// Start serves on port until Shutdown is called.
func (s *Server) Start(port int) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("HTTP server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) lang(r *http.Request) string {
	return s.tr.Match(r.Header.Get("Accept-Language"))
}

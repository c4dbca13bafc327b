package web

import (
	"net/http"
	"time"

	"learning-access/internal/domain/model"
	"learning-access/internal/infra/logging"
	"learning-access/internal/usecase"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=120"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Profile   profileView `json:"profile"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.authUC.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, r, http.StatusCreated, p)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.authUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, r, http.StatusOK, p)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, status int, p *model.Profile) {
	token, sess, err := s.sessions.Mint(w, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, sessionResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		Profile:   toProfileView(p, true),
	})
}

// handleLogout always clears the cookie; the token id is remembered so a copied bearer token stops working too.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := SessionFrom(r.Context()); sess.Authenticated() && s.revoker != nil {
		if err := s.revoker.Revoke(r.Context(), sess.ID, sess.ExpiresAt); err != nil {
			logging.With(r.Context(), s.log).Warn().Err(err).Msg("could not revoke session")
		}
	}
	s.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)
	items := usecase.BuildNavigation(SessionFrom(r.Context()))
	for i := range items {
		key := "nav." + items[i].Key
		if label := s.tr.T(lang, key); label != key {
			items[i].Label = label
		}
	}
	writeJSON(w, http.StatusOK, struct {
		Data []model.MenuItem `json:"data"`
	}{Data: items})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := s.authUC.Profile(r.Context(), SessionFrom(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileView(p, true))
}

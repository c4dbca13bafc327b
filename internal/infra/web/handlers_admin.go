package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
	"learning-access/internal/usecase"
)

var errRouteNotFound = fmt.Errorf("%w: no such route", domain.ErrNotFound)

type createCodeRequest struct {
	Code         string     `json:"code" validate:"omitempty,max=20"`
	EffectKind   string     `json:"effect_kind" validate:"required,oneof=role program"`
	EffectTarget string     `json:"effect_target" validate:"required,max=100"`
	MaxUses      int        `json:"max_uses" validate:"required,min=1"`
	ExpiresAt    *time.Time `json:"expires_at"`
	Inactive     bool       `json:"inactive"`
}

func (req createCodeRequest) input() usecase.CreateCodeInput {
	return usecase.CreateCodeInput{
		Code:         req.Code,
		EffectKind:   model.EffectKind(req.EffectKind),
		EffectTarget: req.EffectTarget,
		MaxUses:      req.MaxUses,
		ExpiresAt:    req.ExpiresAt,
		Inactive:     req.Inactive,
	}
}

type generateCodesRequest struct {
	EffectKind   string     `json:"effect_kind" validate:"required,oneof=role program"`
	EffectTarget string     `json:"effect_target" validate:"required,max=100"`
	MaxUses      int        `json:"max_uses" validate:"required,min=1"`
	ExpiresAt    *time.Time `json:"expires_at"`
	Count        int        `json:"count" validate:"required,min=1,max=500"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type setMaxUsesRequest struct {
	MaxUses int `json:"max_uses" validate:"required,min=1"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin teacher media hr"`
}

func (s *Server) handleListCodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.AccessCodeFilter{
		EffectKind: model.EffectKind(q.Get("kind")),
		Target:     q.Get("target"),
		Search:     q.Get("search"),
	}
	f.Offset, f.Limit = paging(r)
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: active must be true or false", domain.ErrInvalidArgument))
			return
		}
		f.Active = &active
	}

	list, err := s.codesUC.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data   []codeView `json:"data"`
		Limit  int        `json:"limit"`
		Offset int        `json:"offset"`
	}{Data: toCodeViews(list), Limit: f.Limit, Offset: f.Offset})
}

func (s *Server) handleCreateCode(w http.ResponseWriter, r *http.Request) {
	var req createCodeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ac, err := s.codesUC.Create(r.Context(), SessionFrom(r.Context()).UserID, req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCodeView(ac, time.Now()))
}

func (s *Server) handleGenerateCodes(w http.ResponseWriter, r *http.Request) {
	var req generateCodesRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in := usecase.CreateCodeInput{
		EffectKind:   model.EffectKind(req.EffectKind),
		EffectTarget: req.EffectTarget,
		MaxUses:      req.MaxUses,
		ExpiresAt:    req.ExpiresAt,
	}
	list, err := s.codesUC.Generate(r.Context(), SessionFrom(r.Context()).UserID, in, req.Count)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Data []codeView `json:"data"`
	}{Data: toCodeViews(list)})
}

func (s *Server) handleGetCode(w http.ResponseWriter, r *http.Request) {
	ac, err := s.codesUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCodeView(ac, time.Now()))
}

func (s *Server) handleSetCodeActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ac, err := s.codesUC.SetActive(r.Context(), chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCodeView(ac, time.Now()))
}

func (s *Server) handleSetCodeMaxUses(w http.ResponseWriter, r *http.Request) {
	var req setMaxUsesRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ac, err := s.codesUC.SetMaxUses(r.Context(), chi.URLParam(r, "id"), req.MaxUses)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCodeView(ac, time.Now()))
}

func (s *Server) handleCodeRedemptions(w http.ResponseWriter, r *http.Request) {
	list, err := s.codesUC.Redemptions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []redemptionView `json:"data"`
	}{Data: toRedemptionViews(list)})
}

// handleListUsers returns a paginated list of profiles.
// It accepts 'offset' and 'limit' query parameters.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	offset, limit := paging(r)
	list, total, err := s.authUC.ListProfiles(r.Context(), offset, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]profileView, 0, len(list))
	for _, p := range list {
		out = append(out, toProfileView(p, false))
	}
	writeJSON(w, http.StatusOK, struct {
		Data   []profileView `json:"data"`
		Total  int           `json:"total"`
		Limit  int           `json:"limit"`
		Offset int           `json:"offset"`
	}{Data: out, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleSetUserRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	actor := SessionFrom(r.Context())
	p, err := s.authUC.SetRole(r.Context(), actor.UserID, chi.URLParam(r, "id"), model.Role(req.Role))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileView(p, false))
}

func paging(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50 // Default page size
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

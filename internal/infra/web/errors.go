package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"learning-access/internal/domain"
	"learning-access/internal/infra/logging"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorKinds is checked in order; wrapped errors match their most specific kind first.
var errorKinds = []struct {
	err    error
	kind   string
	status int
}{
	{domain.ErrStoreUnavailable, "store_unavailable", http.StatusServiceUnavailable},
	{domain.ErrInactiveCode, "inactive_code", http.StatusNotFound},
	{domain.ErrInvalidCode, "invalid_code", http.StatusNotFound},
	{domain.ErrExpiredCode, "expired_code", http.StatusGone},
	{domain.ErrExhaustedCode, "exhausted_code", http.StatusConflict},
	{domain.ErrAlreadyEnrolled, "already_enrolled", http.StatusConflict},
	{domain.ErrAlreadyGranted, "already_granted", http.StatusConflict},
	{domain.ErrTooManyAttempts, "too_many_attempts", http.StatusTooManyRequests},
	{domain.ErrInvalidCredentials, "invalid_credentials", http.StatusUnauthorized},
	{domain.ErrInvalidArgument, "invalid_argument", http.StatusBadRequest},
	{domain.ErrAlreadyExists, "already_exists", http.StatusConflict},
	{domain.ErrUnauthorized, "unauthorized", http.StatusUnauthorized},
	{domain.ErrForbidden, "forbidden", http.StatusForbidden},
	{domain.ErrNotEnrolled, "not_enrolled", http.StatusForbidden},
	{domain.ErrNotFound, "not_found", http.StatusNotFound},
}

func errorKind(err error) (string, int) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind, k.status
		}
	}
	return "internal", http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind, status := errorKind(err)
	if status >= http.StatusInternalServerError {
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorBody{
		Error:   kind,
		Message: s.tr.T(s.lang(r), "error."+kind),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into dst and runs its validate tags.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidArgument)
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s failed %s", domain.ErrInvalidArgument, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

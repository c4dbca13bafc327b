package usecase

import (
	"time"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
)

// ValidateCode decides whether code may be redeemed at now. It has no side
// effects. A disabled code reports ErrInactiveCode, which also matches
// ErrInvalidCode with errors.Is.
func ValidateCode(code *model.AccessCode, now time.Time) error {
	switch {
	case code == nil:
		return domain.ErrInvalidCode
	case !code.IsActive:
		return domain.ErrInactiveCode
	case code.IsExpired(now):
		return domain.ErrExpiredCode
	case code.CurrentUses >= code.MaxUses:
		return domain.ErrExhaustedCode
	}
	return nil
}

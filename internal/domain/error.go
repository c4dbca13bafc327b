package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrLockNotAcquired    = errors.New("lock is held by another worker")

	// Redemption errors
	ErrInvalidCode     = errors.New("access code not found")
	ErrInactiveCode    = fmt.Errorf("%w: code is disabled", ErrInvalidCode)
	ErrExpiredCode     = errors.New("access code has expired")
	ErrExhaustedCode   = errors.New("access code has no uses left")
	ErrAlreadyEnrolled = errors.New("user is already enrolled in this program")
	ErrAlreadyGranted  = errors.New("user already holds this role")
	ErrTooManyAttempts = errors.New("too many redemption attempts")

	// Account errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotEnrolled        = errors.New("user is not enrolled in this program")
)

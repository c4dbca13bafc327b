package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"learning-access/internal/domain"
)

// PostgreSQL error codes
const (
	pgErrCodeUniqueViolation = "23505"
	pgErrCodeCheckViolation  = "23514"
	pgErrCodeForeignKey      = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool { return pgCode(err) == pgErrCodeUniqueViolation }

// storeErr marks transport and server failures as domain.ErrStoreUnavailable
// while keeping the driver error in the chain.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

// rowErr maps a single-row scan error.
func rowErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return storeErr(op, err)
}

// writeErr maps constraint violations on writes to domain errors.
func writeErr(op string, err error, onUnique error) error {
	switch pgCode(err) {
	case pgErrCodeUniqueViolation:
		return onUnique
	case pgErrCodeCheckViolation, pgErrCodeForeignKey:
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidArgument)
	}
	return storeErr(op, err)
}

package repository

import (
	"context"
	"time"

	"learning-access/internal/domain/model"
)

// AccessCodeFilter narrows admin listings. Zero values mean "any".
type AccessCodeFilter struct {
	Active     *bool
	EffectKind model.EffectKind
	Target     string
	Search     string // code prefix
	Offset     int
	Limit      int
}

// AccessCodeRepository is the Code Store port.
type AccessCodeRepository interface {
	Insert(ctx context.Context, tx Tx, code *model.AccessCode) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.AccessCode, error)
	// FindByCode locks the row when tx is a transaction.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.AccessCode, error)
	// IncrementUsage adds one use only if the code is still redeemable at now
	// and returns the new count; otherwise domain.ErrExhaustedCode.
	IncrementUsage(ctx context.Context, tx Tx, id string, now time.Time) (int, error)
	SetActive(ctx context.Context, tx Tx, id string, active bool) error
	SetMaxUses(ctx context.Context, tx Tx, id string, maxUses int) error
	List(ctx context.Context, tx Tx, f AccessCodeFilter) ([]*model.AccessCode, error)
	CountByState(ctx context.Context, tx Tx, now time.Time) (map[model.CodeState]int, error)
	UsageDrift(ctx context.Context, tx Tx) ([]model.UsageDrift, error)
}

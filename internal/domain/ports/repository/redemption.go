package repository

import (
	"context"

	"learning-access/internal/domain/model"
)

type RedemptionRepository interface {
	Insert(ctx context.Context, tx Tx, r *model.Redemption) error
	ListByCode(ctx context.Context, tx Tx, codeID string) ([]*model.Redemption, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Redemption, error)
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
)

var _ repository.RedemptionRepository = (*PostgresRedemptionRepo)(nil)

// PostgresRedemptionRepo is the append-only redemption ledger.
type PostgresRedemptionRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRedemptionRepo(pool *pgxpool.Pool) *PostgresRedemptionRepo {
	return &PostgresRedemptionRepo{pool: pool}
}

const selectRedemption = `
SELECT id, code_id, code, user_id, effect_kind, effect_target, redeemed_at
  FROM code_redemptions`

func (r *PostgresRedemptionRepo) Insert(ctx context.Context, tx repository.Tx, red *model.Redemption) error {
	const q = `
INSERT INTO code_redemptions (id, code_id, code, user_id, effect_kind, effect_target, redeemed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err := execSQL(ctx, r.pool, tx, q,
		red.ID, red.CodeID, red.Code, red.UserID, string(red.EffectKind), red.EffectTarget, red.RedeemedAt)
	if err != nil {
		return writeErr("insert redemption", err, domain.ErrAlreadyExists)
	}
	return nil
}

func (r *PostgresRedemptionRepo) ListByCode(ctx context.Context, tx repository.Tx, codeID string) ([]*model.Redemption, error) {
	return r.list(ctx, tx, selectRedemption+` WHERE code_id = $1 ORDER BY id;`, codeID)
}

func (r *PostgresRedemptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Redemption, error) {
	return r.list(ctx, tx, selectRedemption+` WHERE user_id = $1 ORDER BY id DESC;`, userID)
}

func (r *PostgresRedemptionRepo) list(ctx context.Context, tx repository.Tx, q string, arg string) ([]*model.Redemption, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, storeErr("list redemptions", err)
	}
	defer rows.Close()
	var out []*model.Redemption
	for rows.Next() {
		red, err := scanRedemption(rows)
		if err != nil {
			return nil, storeErr("scan redemption", err)
		}
		out = append(out, red)
	}
	return out, rows.Err()
}

func scanRedemption(row pgx.Row) (*model.Redemption, error) {
	var red model.Redemption
	var kind string
	if err := row.Scan(&red.ID, &red.CodeID, &red.Code, &red.UserID, &kind, &red.EffectTarget, &red.RedeemedAt); err != nil {
		return nil, err
	}
	red.EffectKind = model.EffectKind(kind)
	return &red, nil
}

package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.AccessCodeRepository = (*accessCodeRepo)(nil)

// psql builds statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var accessCodeColumns = []string{
	"id", "code", "effect_kind", "effect_target", "is_active",
	"max_uses", "current_uses", "expires_at", "created_by", "created_at",
}

const selectAccessCode = `
SELECT id, code, effect_kind, effect_target, is_active,
       max_uses, current_uses, expires_at, created_by, created_at
  FROM access_codes`

type accessCodeRepo struct {
	pool *pgxpool.Pool
}

func NewAccessCodeRepo(pool *pgxpool.Pool) repository.AccessCodeRepository {
	return &accessCodeRepo{pool: pool}
}

func scanAccessCode(row pgx.Row) (*model.AccessCode, error) {
	var ac model.AccessCode
	var kind string
	err := row.Scan(
		&ac.ID, &ac.Code, &kind, &ac.EffectTarget, &ac.IsActive,
		&ac.MaxUses, &ac.CurrentUses, &ac.ExpiresAt, &ac.CreatedBy, &ac.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	ac.EffectKind = model.EffectKind(kind)
	return &ac, nil
}

func (r *accessCodeRepo) Insert(ctx context.Context, tx repository.Tx, code *model.AccessCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	const q = `
INSERT INTO access_codes (id, code, effect_kind, effect_target, is_active, max_uses, current_uses, expires_at, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
	_, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, string(code.EffectKind), code.EffectTarget, code.IsActive,
		code.MaxUses, code.CurrentUses, code.ExpiresAt, code.CreatedBy, code.CreatedAt,
	)
	if err != nil {
		return writeErr("insert access code", err, domain.ErrAlreadyExists)
	}
	return nil
}

func (r *accessCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.AccessCode, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	row, err := pickRow(ctx, r.pool, tx, selectAccessCode+` WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	ac, err := scanAccessCode(row)
	if err != nil {
		return nil, rowErr("find access code", err)
	}
	return ac, nil
}

// FindByCode is the lookup used during redemption. Inside a transaction the
// row is locked until commit so concurrent redemptions of the same code queue up.
func (r *accessCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error) {
	q := selectAccessCode + ` WHERE code = $1`
	if isTx(tx) {
		q += ` FOR UPDATE`
	}
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	ac, err := scanAccessCode(row)
	if err != nil {
		return nil, rowErr("find access code by code", err)
	}
	return ac, nil
}

// IncrementUsage re-checks eligibility at write time; the row is only
// touched when a use is still available.
func (r *accessCodeRepo) IncrementUsage(ctx context.Context, tx repository.Tx, id string, now time.Time) (int, error) {
	const q = `
UPDATE access_codes
   SET current_uses = current_uses + 1
 WHERE id = $1
   AND is_active
   AND current_uses < max_uses
   AND (expires_at IS NULL OR expires_at > $2)
RETURNING current_uses;`
	row, err := pickRow(ctx, r.pool, tx, q, id, now)
	if err != nil {
		return 0, err
	}
	var uses int
	if err := row.Scan(&uses); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrExhaustedCode
		}
		return 0, storeErr("increment usage", err)
	}
	return uses, nil
}

func (r *accessCodeRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE access_codes SET is_active = $2 WHERE id = $1;`, id, active)
	if err != nil {
		return storeErr("set active", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accessCodeRepo) SetMaxUses(ctx context.Context, tx repository.Tx, id string, maxUses int) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE access_codes SET max_uses = $2 WHERE id = $1;`, id, maxUses)
	if err != nil {
		return writeErr("set max uses", err, domain.ErrInvalidArgument)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accessCodeRepo) List(ctx context.Context, tx repository.Tx, f repository.AccessCodeFilter) ([]*model.AccessCode, error) {
	b := psql.Select(accessCodeColumns...).From("access_codes").OrderBy("created_at DESC", "code")
	if f.Active != nil {
		b = b.Where(sq.Eq{"is_active": *f.Active})
	}
	if f.EffectKind != "" {
		b = b.Where(sq.Eq{"effect_kind": string(f.EffectKind)})
	}
	if f.Target != "" {
		b = b.Where(sq.Eq{"effect_target": f.Target})
	}
	if f.Search != "" {
		b = b.Where(sq.Like{"code": f.Search + "%"})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, storeErr("list access codes", err)
	}
	defer rows.Close()

	var out []*model.AccessCode
	for rows.Next() {
		ac, err := scanAccessCode(rows)
		if err != nil {
			return nil, storeErr("scan access code", err)
		}
		out = append(out, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate access codes", err)
	}
	return out, nil
}

func (r *accessCodeRepo) CountByState(ctx context.Context, tx repository.Tx, now time.Time) (map[model.CodeState]int, error) {
	const q = `
SELECT CASE
         WHEN expires_at IS NOT NULL AND expires_at <= $1 THEN 'expired'
         WHEN NOT is_active THEN 'disabled'
         WHEN current_uses >= max_uses THEN 'exhausted'
         ELSE 'active'
       END AS state,
       COUNT(*)
  FROM access_codes
 GROUP BY 1;`
	rows, err := queryRows(ctx, r.pool, tx, q, now)
	if err != nil {
		return nil, storeErr("count codes by state", err)
	}
	defer rows.Close()

	out := make(map[model.CodeState]int)
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, storeErr("scan code state", err)
		}
		out[model.CodeState(state)] = n
	}
	return out, rows.Err()
}

func (r *accessCodeRepo) UsageDrift(ctx context.Context, tx repository.Tx) ([]model.UsageDrift, error) {
	const q = `
SELECT c.id, c.code, c.current_uses, COUNT(r.id)
  FROM access_codes c
  LEFT JOIN code_redemptions r ON r.code_id = c.id
 GROUP BY c.id
HAVING c.current_uses <> COUNT(r.id);`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, storeErr("usage drift", err)
	}
	defer rows.Close()

	var out []model.UsageDrift
	for rows.Next() {
		var d model.UsageDrift
		if err := rows.Scan(&d.CodeID, &d.Code, &d.CurrentUses, &d.LedgerCount); err != nil {
			return nil, storeErr("scan usage drift", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*PostgresProfileRepo)(nil)

type PostgresProfileRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresProfileRepo(pool *pgxpool.Pool) *PostgresProfileRepo {
	return &PostgresProfileRepo{pool: pool}
}

const selectProfile = `
SELECT id, email, full_name, avatar_url, role, password_hash, created_at, updated_at
  FROM profiles`

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	var role string
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &role, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Role = model.Role(role)
	return &p, nil
}

func (r *PostgresProfileRepo) Insert(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	const q = `
INSERT INTO profiles (id, email, full_name, avatar_url, role, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Email, p.FullName, p.AvatarURL, string(p.Role), p.PasswordHash, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return writeErr("insert profile", err, domain.ErrAlreadyExists)
	}
	return nil
}

func (r *PostgresProfileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	row, err := pickRow(ctx, r.pool, tx, selectProfile+` WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	p, err := scanProfile(row)
	if err != nil {
		return nil, rowErr("find profile", err)
	}
	return p, nil
}

func (r *PostgresProfileRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Profile, error) {
	row, err := pickRow(ctx, r.pool, tx, selectProfile+` WHERE email = $1;`, email)
	if err != nil {
		return nil, err
	}
	p, err := scanProfile(row)
	if err != nil {
		return nil, rowErr("find profile by email", err)
	}
	return p, nil
}

// SetRole overwrites the stored role; the previous value is not kept.
func (r *PostgresProfileRepo) SetRole(ctx context.Context, tx repository.Tx, userID string, role model.Role) error {
	if _, err := uuid.Parse(userID); err != nil {
		return domain.ErrNotFound
	}
	tag, err := execSQL(ctx, r.pool, tx,
		`UPDATE profiles SET role = $2, updated_at = $3 WHERE id = $1;`, userID, string(role), time.Now())
	if err != nil {
		return writeErr("set role", err, domain.ErrAlreadyExists)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Profile, error) {
	rows, err := queryRows(ctx, r.pool, tx,
		selectProfile+` ORDER BY created_at DESC OFFSET $1 LIMIT $2;`, offset, limit)
	if err != nil {
		return nil, storeErr("list profiles", err)
	}
	defer rows.Close()
	var out []*model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, storeErr("scan profile", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresProfileRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM profiles;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, storeErr("count profiles", err)
	}
	return n, nil
}

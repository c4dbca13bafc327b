package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.ProgramRepository = (*PostgresProgramRepo)(nil)

type PostgresProgramRepo struct {
	pool *pgxpool.Pool
}

func NewProgramRepo(pool *pgxpool.Pool) *PostgresProgramRepo {
	return &PostgresProgramRepo{pool: pool}
}

func scanProgram(row pgx.Row) (*model.Program, error) {
	var p model.Program
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.LessonCount, &p.PurchaseURL, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresProgramRepo) Save(ctx context.Context, tx repository.Tx, p *model.Program) error {
	const q = `
INSERT INTO programs (id, title, description, lesson_count, purchase_url, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
  SET title        = EXCLUDED.title,
      description  = EXCLUDED.description,
      lesson_count = EXCLUDED.lesson_count,
      purchase_url = EXCLUDED.purchase_url;
`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Title, p.Description, p.LessonCount, p.PurchaseURL, p.CreatedAt)
	if err != nil {
		return writeErr("save program", err, domain.ErrAlreadyExists)
	}
	return nil
}

func (r *PostgresProgramRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Program, error) {
	const q = `
SELECT id, title, description, lesson_count, purchase_url, created_at
  FROM programs
 WHERE id = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p, err := scanProgram(row)
	if err != nil {
		return nil, rowErr("find program", err)
	}
	return p, nil
}

func (r *PostgresProgramRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Program, error) {
	const q = `
SELECT id, title, description, lesson_count, purchase_url, created_at
  FROM programs
 ORDER BY title;
`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, storeErr("list programs", err)
	}
	defer rows.Close()
	var out []*model.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, storeErr("scan program", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

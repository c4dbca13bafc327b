package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
)

var _ repository.LessonProgressRepository = (*PostgresProgressRepo)(nil)

type PostgresProgressRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresProgressRepo(pool *pgxpool.Pool) *PostgresProgressRepo {
	return &PostgresProgressRepo{pool: pool}
}

// Upsert keeps a lesson completed once it has been completed and accumulates time spent.
func (r *PostgresProgressRepo) Upsert(ctx context.Context, tx repository.Tx, p *model.LessonProgress) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const q = `
INSERT INTO user_progress (id, user_id, program_id, lesson_id, completed, completed_at, time_spent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id, program_id, lesson_id) DO UPDATE
  SET completed    = user_progress.completed OR EXCLUDED.completed,
      completed_at = COALESCE(user_progress.completed_at, EXCLUDED.completed_at),
      time_spent   = user_progress.time_spent + EXCLUDED.time_spent;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.UserID, p.ProgramID, p.LessonID, p.Completed, p.CompletedAt, p.TimeSpent, p.CreatedAt)
	if err != nil {
		return writeErr("upsert lesson progress", err, domain.ErrAlreadyExists)
	}
	return nil
}

func (r *PostgresProgressRepo) ListByProgram(ctx context.Context, tx repository.Tx, userID, programID string) ([]*model.LessonProgress, error) {
	const q = `
SELECT id, user_id, program_id, lesson_id, completed, completed_at, time_spent, created_at
  FROM user_progress
 WHERE user_id = $1 AND program_id = $2
 ORDER BY created_at;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, programID)
	if err != nil {
		return nil, storeErr("list lesson progress", err)
	}
	defer rows.Close()
	var out []*model.LessonProgress
	for rows.Next() {
		var p model.LessonProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.ProgramID, &p.LessonID, &p.Completed, &p.CompletedAt, &p.TimeSpent, &p.CreatedAt); err != nil {
			return nil, storeErr("scan lesson progress", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PostgresProgressRepo) CountCompleted(ctx context.Context, tx repository.Tx, userID, programID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT COUNT(*) FROM user_progress WHERE user_id = $1 AND program_id = $2 AND completed;`, userID, programID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, storeErr("count completed lessons", err)
	}
	return n, nil
}

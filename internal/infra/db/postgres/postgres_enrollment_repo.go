package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
)

var _ repository.EnrollmentRepository = (*PostgresEnrollmentRepo)(nil)

type PostgresEnrollmentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresEnrollmentRepo(pool *pgxpool.Pool) *PostgresEnrollmentRepo {
	return &PostgresEnrollmentRepo{pool: pool}
}

const selectEnrollment = `
SELECT id, user_id, program_id, program_title, access_code_used, enrolled_at, progress, completed_at
  FROM user_programs`

func scanEnrollment(row pgx.Row) (*model.Enrollment, error) {
	var e model.Enrollment
	if err := row.Scan(&e.ID, &e.UserID, &e.ProgramID, &e.ProgramTitle, &e.AccessCodeUsed, &e.EnrolledAt, &e.Progress, &e.CompletedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PostgresEnrollmentRepo) Find(ctx context.Context, tx repository.Tx, userID, programID string) (*model.Enrollment, error) {
	row, err := pickRow(ctx, r.pool, tx, selectEnrollment+` WHERE user_id = $1 AND program_id = $2;`, userID, programID)
	if err != nil {
		return nil, err
	}
	e, err := scanEnrollment(row)
	if err != nil {
		return nil, rowErr("find enrollment", err)
	}
	return e, nil
}

func (r *PostgresEnrollmentRepo) Insert(ctx context.Context, tx repository.Tx, e *model.Enrollment) error {
	const q = `
INSERT INTO user_programs (id, user_id, program_id, program_title, access_code_used, enrolled_at, progress, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.UserID, e.ProgramID, e.ProgramTitle, e.AccessCodeUsed, e.EnrolledAt, e.Progress, e.CompletedAt)
	if err != nil {
		return writeErr("insert enrollment", err, domain.ErrAlreadyEnrolled)
	}
	return nil
}

func (r *PostgresEnrollmentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Enrollment, error) {
	rows, err := queryRows(ctx, r.pool, tx, selectEnrollment+` WHERE user_id = $1 ORDER BY enrolled_at DESC;`, userID)
	if err != nil {
		return nil, storeErr("list enrollments", err)
	}
	defer rows.Close()
	var out []*model.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, storeErr("scan enrollment", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresEnrollmentRepo) UpdateProgress(ctx context.Context, tx repository.Tx, e *model.Enrollment) error {
	tag, err := execSQL(ctx, r.pool, tx,
		`UPDATE user_programs SET progress = $3, completed_at = $4 WHERE user_id = $1 AND program_id = $2;`,
		e.UserID, e.ProgramID, e.Progress, e.CompletedAt)
	if err != nil {
		return writeErr("update enrollment progress", err, domain.ErrAlreadyExists)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

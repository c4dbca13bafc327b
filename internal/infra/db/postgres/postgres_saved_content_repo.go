package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
)

var _ repository.SavedContentRepository = (*PostgresSavedContentRepo)(nil)

type PostgresSavedContentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresSavedContentRepo(pool *pgxpool.Pool) *PostgresSavedContentRepo {
	return &PostgresSavedContentRepo{pool: pool}
}

func (r *PostgresSavedContentRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.SavedContent) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	const q = `
INSERT INTO saved_content (id, user_id, content_type, content_id, content_title, saved_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, content_type, content_id) DO UPDATE
  SET content_title = EXCLUDED.content_title
RETURNING id, saved_at;`
	row, err := pickRow(ctx, r.pool, tx, q,
		s.ID, s.UserID, string(s.ContentType), s.ContentID, s.ContentTitle, s.SavedAt)
	if err != nil {
		return err
	}
	if err := row.Scan(&s.ID, &s.SavedAt); err != nil {
		return writeErr("save content", err, domain.ErrAlreadyExists)
	}
	return nil
}

func (r *PostgresSavedContentRepo) Delete(ctx context.Context, tx repository.Tx, userID string, t model.ContentType, contentID string) error {
	tag, err := execSQL(ctx, r.pool, tx,
		`DELETE FROM saved_content WHERE user_id = $1 AND content_type = $2 AND content_id = $3;`,
		userID, string(t), contentID)
	if err != nil {
		return storeErr("delete saved content", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresSavedContentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.SavedContent, error) {
	const q = `
SELECT id, user_id, content_type, content_id, content_title, saved_at
  FROM saved_content
 WHERE user_id = $1
 ORDER BY saved_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, storeErr("list saved content", err)
	}
	defer rows.Close()
	var out []*model.SavedContent
	for rows.Next() {
		var s model.SavedContent
		var t string
		if err := rows.Scan(&s.ID, &s.UserID, &t, &s.ContentID, &s.ContentTitle, &s.SavedAt); err != nil {
			return nil, storeErr("scan saved content", err)
		}
		s.ContentType = model.ContentType(t)
		out = append(out, &s)
	}
	return out, rows.Err()
}

package repository

import (
	"context"

	"learning-access/internal/domain/model"
)

type EnrollmentRepository interface {
	// Find returns domain.ErrNotFound when the pair is not enrolled.
	Find(ctx context.Context, tx Tx, userID, programID string) (*model.Enrollment, error)
	// Insert returns domain.ErrAlreadyEnrolled on a (user, program) conflict.
	Insert(ctx context.Context, tx Tx, e *model.Enrollment) error
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Enrollment, error)
	UpdateProgress(ctx context.Context, tx Tx, e *model.Enrollment) error
}

type LessonProgressRepository interface {
	Upsert(ctx context.Context, tx Tx, p *model.LessonProgress) error
	ListByProgram(ctx context.Context, tx Tx, userID, programID string) ([]*model.LessonProgress, error)
	CountCompleted(ctx context.Context, tx Tx, userID, programID string) (int, error)
}

type SavedContentRepository interface {
	Upsert(ctx context.Context, tx Tx, s *model.SavedContent) error
	Delete(ctx context.Context, tx Tx, userID string, t model.ContentType, contentID string) error
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.SavedContent, error)
}

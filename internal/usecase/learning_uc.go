package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
	"learning-access/internal/infra/logging"
)

var _ LearningUseCase = (*learningUC)(nil)

// LearningUseCase backs the learner dashboard.
type LearningUseCase interface {
	Programs(ctx context.Context) ([]*model.Program, error)
	MyPrograms(ctx context.Context, userID string) ([]*model.Enrollment, error)
	RecordProgress(ctx context.Context, userID, programID, lessonID string, completed bool, timeSpent int) (*model.Enrollment, error)
	LessonProgress(ctx context.Context, userID, programID string) ([]*model.LessonProgress, error)
	SaveContent(ctx context.Context, userID string, t model.ContentType, contentID, title string) (*model.SavedContent, error)
	RemoveSavedContent(ctx context.Context, userID string, t model.ContentType, contentID string) error
	SavedContent(ctx context.Context, userID string) ([]*model.SavedContent, error)
}

type learningUC struct {
	programs    repository.ProgramRepository
	enrollments repository.EnrollmentRepository
	progress    repository.LessonProgressRepository
	saved       repository.SavedContentRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
	now         func() time.Time
}

func NewLearningUseCase(
	programs repository.ProgramRepository,
	enrollments repository.EnrollmentRepository,
	progress repository.LessonProgressRepository,
	saved repository.SavedContentRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *learningUC {
	return &learningUC{
		programs:    programs,
		enrollments: enrollments,
		progress:    progress,
		saved:       saved,
		tm:          tm,
		log:         logger,
		now:         time.Now,
	}
}

func (uc *learningUC) Programs(ctx context.Context) ([]*model.Program, error) {
	defer logging.TraceDuration(uc.log, "LearningUC.Programs")()
	return uc.programs.ListAll(ctx, repository.NoTX)
}

func (uc *learningUC) MyPrograms(ctx context.Context, userID string) ([]*model.Enrollment, error) {
	defer logging.TraceDuration(uc.log, "LearningUC.MyPrograms")()
	return uc.enrollments.ListByUser(ctx, repository.NoTX, userID)
}

// RecordProgress requires an enrollment. When the program declares a lesson
// count the enrollment percentage is recomputed from completed lessons.
func (uc *learningUC) RecordProgress(ctx context.Context, userID, programID, lessonID string, completed bool, timeSpent int) (*model.Enrollment, error) {
	defer logging.TraceDuration(uc.log, "LearningUC.RecordProgress")()
	lessonID = strings.TrimSpace(lessonID)
	if lessonID == "" || timeSpent < 0 {
		return nil, fmt.Errorf("%w: lesson id and a non-negative time spent are required", domain.ErrInvalidArgument)
	}

	var out *model.Enrollment
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		e, err := uc.enrollments.Find(ctx, tx, userID, programID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotEnrolled
		}
		if err != nil {
			return err
		}

		now := uc.now()
		lp := &model.LessonProgress{
			UserID:    userID,
			ProgramID: programID,
			LessonID:  lessonID,
			Completed: completed,
			TimeSpent: timeSpent,
			CreatedAt: now,
		}
		if completed {
			lp.CompletedAt = &now
		}
		if err := uc.progress.Upsert(ctx, tx, lp); err != nil {
			return err
		}

		program, err := uc.programs.FindByID(ctx, tx, programID)
		if err != nil {
			return err
		}
		if program.LessonCount > 0 {
			done, err := uc.progress.CountCompleted(ctx, tx, userID, programID)
			if err != nil {
				return err
			}
			pct := done * 100 / program.LessonCount
			if pct > 100 {
				pct = 100
			}
			e.Progress = pct
			switch {
			case pct < 100:
				e.CompletedAt = nil
			case e.CompletedAt == nil:
				e.CompletedAt = &now
			}
			if err := uc.enrollments.UpdateProgress(ctx, tx, e); err != nil {
				return err
			}
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *learningUC) LessonProgress(ctx context.Context, userID, programID string) ([]*model.LessonProgress, error) {
	defer logging.TraceDuration(uc.log, "LearningUC.LessonProgress")()
	if _, err := uc.enrollments.Find(ctx, repository.NoTX, userID, programID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotEnrolled
		}
		return nil, err
	}
	return uc.progress.ListByProgram(ctx, repository.NoTX, userID, programID)
}

func (uc *learningUC) SaveContent(ctx context.Context, userID string, t model.ContentType, contentID, title string) (*model.SavedContent, error) {
	defer logging.TraceDuration(uc.log, "LearningUC.SaveContent")()
	if !t.Valid() || strings.TrimSpace(contentID) == "" {
		return nil, fmt.Errorf("%w: content type and id are required", domain.ErrInvalidArgument)
	}
	s := &model.SavedContent{
		UserID:       userID,
		ContentType:  t,
		ContentID:    strings.TrimSpace(contentID),
		ContentTitle: strings.TrimSpace(title),
		SavedAt:      uc.now(),
	}
	if err := uc.saved.Upsert(ctx, repository.NoTX, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *learningUC) RemoveSavedContent(ctx context.Context, userID string, t model.ContentType, contentID string) error {
	defer logging.TraceDuration(uc.log, "LearningUC.RemoveSavedContent")()
	if !t.Valid() {
		return fmt.Errorf("%w: unknown content type %q", domain.ErrInvalidArgument, t)
	}
	return uc.saved.Delete(ctx, repository.NoTX, userID, t, contentID)
}

func (uc *learningUC) SavedContent(ctx context.Context, userID string) ([]*model.SavedContent, error) {
	defer logging.TraceDuration(uc.log, "LearningUC.SavedContent")()
	return uc.saved.ListByUser(ctx, repository.NoTX, userID)
}

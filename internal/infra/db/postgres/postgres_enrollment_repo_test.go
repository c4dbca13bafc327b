//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
)

func TestLearningRepos_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	cleanup(t)

	programs := NewProgramRepo(testPool)
	enrollments := NewPostgresEnrollmentRepo(testPool)
	progress := NewPostgresProgressRepo(testPool)
	saved := NewPostgresSavedContentRepo(testPool)

	user := seedProfile(t, "learner@example.com")
	program, _ := model.NewProgram("zaad", "ZAAD", "Program ZAAD", 4, "https://example.com/zaad")
	if err := programs.Save(ctx, repository.NoTX, program); err != nil {
		t.Fatalf("save program: %v", err)
	}

	t.Run("enrollment is unique per user and program", func(t *testing.T) {
		e := model.NewEnrollment(user.ID, program, "ZAAD2024", time.Now())
		if err := enrollments.Insert(ctx, repository.NoTX, e); err != nil {
			t.Fatalf("first insert failed: %v", err)
		}
		again := model.NewEnrollment(user.ID, program, "ZAAD2024", time.Now())
		if err := enrollments.Insert(ctx, repository.NoTX, again); !errors.Is(err, domain.ErrAlreadyEnrolled) {
			t.Errorf("expected ErrAlreadyEnrolled, got %v", err)
		}
		list, err := enrollments.ListByUser(ctx, repository.NoTX, user.ID)
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(list) != 1 || list[0].ProgramTitle != "ZAAD" {
			t.Errorf("expected one ZAAD enrollment, got %d", len(list))
		}
	})

	t.Run("missing enrollment returns not found", func(t *testing.T) {
		if _, err := enrollments.Find(ctx, repository.NoTX, user.ID, "other"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("lesson progress upsert keeps completion and adds time", func(t *testing.T) {
		now := time.Now()
		p := &model.LessonProgress{UserID: user.ID, ProgramID: "zaad", LessonID: "l1", Completed: true, CompletedAt: &now, TimeSpent: 60, CreatedAt: now}
		if err := progress.Upsert(ctx, repository.NoTX, p); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		p2 := &model.LessonProgress{UserID: user.ID, ProgramID: "zaad", LessonID: "l1", TimeSpent: 30, CreatedAt: now}
		if err := progress.Upsert(ctx, repository.NoTX, p2); err != nil {
			t.Fatalf("second upsert failed: %v", err)
		}
		list, err := progress.ListByProgram(ctx, repository.NoTX, user.ID, "zaad")
		if err != nil {
			t.Fatalf("ListByProgram failed: %v", err)
		}
		if len(list) != 1 || !list[0].Completed || list[0].TimeSpent != 90 {
			t.Errorf("unexpected progress %+v", list)
		}
		n, err := progress.CountCompleted(ctx, repository.NoTX, user.ID, "zaad")
		if err != nil || n != 1 {
			t.Errorf("expected 1 completed lesson, got %d (%v)", n, err)
		}
	})

	t.Run("saved content round trip", func(t *testing.T) {
		s := &model.SavedContent{UserID: user.ID, ContentType: model.ContentEbook, ContentID: "ebook-1", ContentTitle: "Ebook", SavedAt: time.Now()}
		if err := saved.Upsert(ctx, repository.NoTX, s); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		list, err := saved.ListByUser(ctx, repository.NoTX, user.ID)
		if err != nil || len(list) != 1 {
			t.Fatalf("expected one saved item, got %d (%v)", len(list), err)
		}
		if err := saved.Delete(ctx, repository.NoTX, user.ID, model.ContentEbook, "ebook-1"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if err := saved.Delete(ctx, repository.NoTX, user.ID, model.ContentEbook, "ebook-1"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestProfileRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	cleanup(t)
	repo := NewPostgresProfileRepo(testPool)

	u := seedProfile(t, "u1@example.com")

	if err := repo.Insert(ctx, repository.NoTX, u); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for duplicate, got %v", err)
	}

	// last write wins
	for _, r := range []model.Role{model.RoleAdmin, model.RoleHR} {
		if err := repo.SetRole(ctx, repository.NoTX, u.ID, r); err != nil {
			t.Fatalf("SetRole(%s) failed: %v", r, err)
		}
	}
	got, err := repo.FindByEmail(ctx, repository.NoTX, "u1@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if got.Role != model.RoleHR {
		t.Errorf("expected role hr, got %s", got.Role)
	}

	if err := repo.SetRole(ctx, repository.NoTX, u.ID, model.Role("root")); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown role, got %v", err)
	}
	n, err := repo.Count(ctx, repository.NoTX)
	if err != nil || n != 1 {
		t.Errorf("expected 1 profile, got %d (%v)", n, err)
	}
}

//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
)

var errCacheMiss = errors.New("redis: nil")

func TestProgramRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	program := &model.Program{ID: "zaad", Title: "ZAAD", LessonCount: 12}
	programJSON, _ := json.Marshal(program)

	t.Run("FindByID should return from cache on hit", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				if key != "program:zaad" {
					t.Errorf("unexpected cache key %q", key)
				}
				return string(programJSON), nil
			},
		}
		innerRepoCalled := false
		mockInnerRepo := &mockInnerProgramRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.Program, error) {
				innerRepoCalled = true
				return nil, nil
			},
		}

		decorator := NewProgramRepoCacheDecorator(mockInnerRepo, mockRedis)

		result, err := decorator.FindByID(ctx, nil, "zaad")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if innerRepoCalled {
			t.Error("inner repository should not be called on a cache hit")
		}
		if result == nil || result.Title != "ZAAD" || result.LessonCount != 12 {
			t.Errorf("did not return the cached program, got %+v", result)
		}
	})

	t.Run("FindByID should load and populate the cache on miss", func(t *testing.T) {
		var stored string
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) { return "", errCacheMiss },
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				stored = key
				return nil
			},
		}
		mockInnerRepo := &mockInnerProgramRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.Program, error) {
				return program, nil
			},
		}

		decorator := NewProgramRepoCacheDecorator(mockInnerRepo, mockRedis)

		result, err := decorator.FindByID(ctx, nil, "zaad")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result != program {
			t.Error("expected the program from the inner repository")
		}
		if stored != "program:zaad" {
			t.Errorf("expected cache to be populated under program:zaad, got %q", stored)
		}
	})

	t.Run("FindByID should not cache a missing program", func(t *testing.T) {
		setCalled := false
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) { return "", errCacheMiss },
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				setCalled = true
				return nil
			},
		}
		mockInnerRepo := &mockInnerProgramRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.Program, error) {
				return nil, domain.ErrNotFound
			},
		}

		decorator := NewProgramRepoCacheDecorator(mockInnerRepo, mockRedis)

		if _, err := decorator.FindByID(ctx, nil, "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if setCalled {
			t.Error("a missing program must not be cached")
		}
	})

	t.Run("Save should invalidate the cache", func(t *testing.T) {
		var deletedKeys []string
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				deletedKeys = append(deletedKeys, keys...)
				return nil
			},
		}
		mockInnerRepo := &mockInnerProgramRepo{
			SaveFunc: func(ctx context.Context, tx repository.Tx, p *model.Program) error {
				return nil
			},
		}

		decorator := NewProgramRepoCacheDecorator(mockInnerRepo, mockRedis)

		if err := decorator.Save(ctx, nil, program); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(deletedKeys) != 2 {
			t.Fatalf("expected 2 keys to be deleted, but got %d", len(deletedKeys))
		}
	})

	t.Run("ListAll should return from cache on hit", func(t *testing.T) {
		listJSON, _ := json.Marshal([]*model.Program{program})
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) { return string(listJSON), nil },
		}
		mockInnerRepo := &mockInnerProgramRepo{
			ListAllFunc: func(ctx context.Context, tx repository.Tx) ([]*model.Program, error) {
				t.Error("inner repository should not be called on a cache hit")
				return nil, nil
			},
		}

		decorator := NewProgramRepoCacheDecorator(mockInnerRepo, mockRedis)

		list, err := decorator.ListAll(ctx, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(list) != 1 || list[0].ID != "zaad" {
			t.Errorf("unexpected list %+v", list)
		}
	})
}

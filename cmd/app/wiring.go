package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"learning-access/internal/config"
	"learning-access/internal/domain/ports/repository"
	pg "learning-access/internal/infra/db/postgres"
	red "learning-access/internal/infra/redis"
	"learning-access/internal/infra/security"
	"learning-access/internal/usecase"
)

type repos struct {
	codes       repository.AccessCodeRepository
	profiles    repository.ProfileRepository
	programs    repository.ProgramRepository
	enrollments repository.EnrollmentRepository
	redemptions repository.RedemptionRepository
	progress    repository.LessonProgressRepository
	saved       repository.SavedContentRepository
	tm          repository.TransactionManager
}

// newRepos builds the Postgres repositories. cache may be nil, in which case
// programs are read straight from the database.
func newRepos(pool *pgxpool.Pool, cache red.RedisClient) *repos {
	var programs repository.ProgramRepository = pg.NewProgramRepo(pool)
	if cache != nil {
		programs = pg.NewProgramRepoCacheDecorator(programs, cache)
	}
	return &repos{
		codes:       pg.NewAccessCodeRepo(pool),
		profiles:    pg.NewPostgresProfileRepo(pool),
		programs:    programs,
		enrollments: pg.NewPostgresEnrollmentRepo(pool),
		redemptions: pg.NewPostgresRedemptionRepo(pool),
		progress:    pg.NewPostgresProgressRepo(pool),
		saved:       pg.NewPostgresSavedContentRepo(pool),
		tm:          pg.NewTxManager(pool),
	}
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return pool, nil
}

// newAuthUseCase shares the redemption attempt budget with logins.
func newAuthUseCase(cfg *config.Config, r *repos, limiter usecase.RateLimiter, logger *zerolog.Logger) usecase.AuthUseCase {
	return usecase.NewAuthUseCase(
		r.profiles,
		security.NewBcryptHasher(bcrypt.DefaultCost),
		r.tm,
		limiter,
		usecase.AttemptLimit{Max: cfg.Redemption.MaxAttempts, Window: cfg.Redemption.AttemptWindow},
		logger,
	)
}

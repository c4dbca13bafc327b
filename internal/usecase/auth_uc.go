package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
	"learning-access/internal/infra/logging"
	"learning-access/internal/infra/metrics"
	red "learning-access/internal/infra/redis"
)

var _ AuthUseCase = (*authUC)(nil)

// PasswordHasher hashes new passwords and checks login attempts.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AuthUseCase manages accounts and roles. Session tokens are minted by the web layer.
type AuthUseCase interface {
	Register(ctx context.Context, email, password, fullName string) (*model.Profile, error)
	Login(ctx context.Context, email, password string) (*model.Profile, error)
	Profile(ctx context.Context, userID string) (*model.Profile, error)
	SetRole(ctx context.Context, actorID, userID string, role model.Role) (*model.Profile, error)
	ListProfiles(ctx context.Context, offset, limit int) ([]*model.Profile, int, error)
}

type authUC struct {
	profiles repository.ProfileRepository
	hasher   PasswordHasher
	tm       repository.TransactionManager
	limiter  RateLimiter
	limit    AttemptLimit
	log      *zerolog.Logger
}

func NewAuthUseCase(
	profiles repository.ProfileRepository,
	hasher PasswordHasher,
	tm repository.TransactionManager,
	limiter RateLimiter,
	limit AttemptLimit,
	logger *zerolog.Logger,
) *authUC {
	return &authUC{
		profiles: profiles,
		hasher:   hasher,
		tm:       tm,
		limiter:  limiter,
		limit:    limit,
		log:      logger,
	}
}

func (uc *authUC) Register(ctx context.Context, email, password, fullName string) (*model.Profile, error) {
	defer logging.TraceDuration(uc.log, "AuthUC.Register")()

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	p, err := model.NewProfile("", email, fullName, hash)
	if err != nil {
		return nil, err
	}

	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		_, err := uc.profiles.FindByEmail(ctx, tx, p.Email)
		switch {
		case err == nil:
			return domain.ErrAlreadyExists
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		return uc.profiles.Insert(ctx, tx, p)
	})
	if err != nil {
		metrics.IncAuthEvent("register", "failed")
		return nil, err
	}
	metrics.IncAuthEvent("register", "ok")
	logging.With(ctx, uc.log).Info().Str("user_id", p.ID).Msg("profile registered")
	return p, nil
}

// Login returns ErrInvalidCredentials for both unknown emails and wrong passwords.
func (uc *authUC) Login(ctx context.Context, email, password string) (*model.Profile, error) {
	defer logging.TraceDuration(uc.log, "AuthUC.Login")()

	e := strings.ToLower(strings.TrimSpace(email))
	if uc.limiter != nil && uc.limit.Max > 0 {
		ok, err := uc.limiter.Allow(ctx, red.LoginKey(e), uc.limit.Max, uc.limit.Window)
		if err != nil {
			uc.log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			metrics.IncAuthEvent("login", "rate_limited")
			return nil, domain.ErrTooManyAttempts
		}
	}

	p, err := uc.profiles.FindByEmail(ctx, repository.NoTX, e)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.IncAuthEvent("login", "failed")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := uc.hasher.Compare(p.PasswordHash, password); err != nil {
		metrics.IncAuthEvent("login", "failed")
		return nil, domain.ErrInvalidCredentials
	}
	metrics.IncAuthEvent("login", "ok")
	return p, nil
}

func (uc *authUC) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	defer logging.TraceDuration(uc.log, "AuthUC.Profile")()
	return uc.profiles.FindByID(ctx, repository.NoTX, userID)
}

// SetRole is a user-management action checked against the actor's stored
// role. Nobody changes their own role, and only holders of CapGrantAdmin may
// grant admin or change an administrator's role.
func (uc *authUC) SetRole(ctx context.Context, actorID, userID string, role model.Role) (*model.Profile, error) {
	defer logging.TraceDuration(uc.log, "AuthUC.SetRole")()
	r, ok := model.ParseRole(string(role))
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidArgument, role)
	}
	if actorID == userID {
		return nil, fmt.Errorf("%w: cannot change your own role", domain.ErrForbidden)
	}

	var out *model.Profile
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		actor, err := uc.profiles.FindByID(ctx, tx, actorID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		if err != nil {
			return err
		}
		if !model.Can(actor.Role, model.CapManageUsers) {
			return domain.ErrForbidden
		}
		target, err := uc.profiles.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if (r == model.RoleAdmin || target.Role == model.RoleAdmin) && !model.Can(actor.Role, model.CapGrantAdmin) {
			return fmt.Errorf("%w: only an administrator can grant or revoke admin", domain.ErrForbidden)
		}
		if err := uc.profiles.SetRole(ctx, tx, userID, r); err != nil {
			return err
		}
		target.Role = r
		out = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.With(ctx, uc.log).Info().Str("actor_id", actorID).Str("target_user", userID).Str("role", string(r)).Msg("role changed")
	return out, nil
}

func (uc *authUC) ListProfiles(ctx context.Context, offset, limit int) ([]*model.Profile, int, error) {
	defer logging.TraceDuration(uc.log, "AuthUC.ListProfiles")()
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.profiles.List(ctx, repository.NoTX, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.profiles.Count(ctx, repository.NoTX)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
	"learning-access/internal/infra/logging"
	"learning-access/internal/infra/metrics"
)

// MaxGenerateBatch caps a single Generate call.
const MaxGenerateBatch = 500

var _ AccessCodeUseCase = (*accessCodeUC)(nil)

// CreateCodeInput describes a new access code. An empty Code asks for a generated one.
type CreateCodeInput struct {
	Code         string
	EffectKind   model.EffectKind
	EffectTarget string
	MaxUses      int
	ExpiresAt    *time.Time
	Inactive     bool
}

// AccessCodeUseCase is the administrator surface for access codes.
type AccessCodeUseCase interface {
	Create(ctx context.Context, actorID string, in CreateCodeInput) (*model.AccessCode, error)
	Generate(ctx context.Context, actorID string, in CreateCodeInput, count int) ([]*model.AccessCode, error)
	Get(ctx context.Context, id string) (*model.AccessCode, error)
	List(ctx context.Context, f repository.AccessCodeFilter) ([]*model.AccessCode, error)
	SetActive(ctx context.Context, id string, active bool) (*model.AccessCode, error)
	SetMaxUses(ctx context.Context, id string, maxUses int) (*model.AccessCode, error)
	Redemptions(ctx context.Context, id string) ([]*model.Redemption, error)
}

type accessCodeUC struct {
	codes       repository.AccessCodeRepository
	programs    repository.ProgramRepository
	redemptions repository.RedemptionRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
	now         func() time.Time
}

func NewAccessCodeUseCase(
	codes repository.AccessCodeRepository,
	programs repository.ProgramRepository,
	redemptions repository.RedemptionRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *accessCodeUC {
	return &accessCodeUC{
		codes:       codes,
		programs:    programs,
		redemptions: redemptions,
		tm:          tm,
		log:         logger,
		now:         time.Now,
	}
}

func (uc *accessCodeUC) Create(ctx context.Context, actorID string, in CreateCodeInput) (*model.AccessCode, error) {
	defer logging.TraceDuration(uc.log, "AccessCodeUC.Create")()

	var out *model.AccessCode
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		target, err := uc.checkInput(ctx, tx, &in)
		if err != nil {
			return err
		}
		code := in.Code
		if code == "" {
			if code, err = uc.freshCode(ctx, tx); err != nil {
				return err
			}
		} else if code, err = model.NormalizeCode(code); err != nil {
			return fmt.Errorf("%w: code must be 1..%d characters", domain.ErrInvalidArgument, model.MaxCodeLength)
		}
		ac := uc.build(actorID, in, code, target)
		if err := uc.codes.Insert(ctx, tx, ac); err != nil {
			return err
		}
		out = ac
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.AddCodesCreated(string(out.EffectKind), 1)
	logging.With(ctx, uc.log).Info().
		Str("code_id", out.ID).
		Str("kind", string(out.EffectKind)).
		Str("target", out.EffectTarget).
		Int("max_uses", out.MaxUses).
		Msg("access code created")
	return out, nil
}

func (uc *accessCodeUC) Generate(ctx context.Context, actorID string, in CreateCodeInput, count int) ([]*model.AccessCode, error) {
	defer logging.TraceDuration(uc.log, "AccessCodeUC.Generate")()
	if count < 1 || count > MaxGenerateBatch {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", domain.ErrInvalidArgument, MaxGenerateBatch)
	}
	in.Code = ""

	var out []*model.AccessCode
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		target, err := uc.checkInput(ctx, tx, &in)
		if err != nil {
			return err
		}
		seen := make(map[string]struct{}, count)
		for len(out) < count {
			code, err := uc.freshCode(ctx, tx)
			if err != nil {
				return err
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			ac := uc.build(actorID, in, code, target)
			if err := uc.codes.Insert(ctx, tx, ac); err != nil {
				return err
			}
			out = append(out, ac)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.AddCodesCreated(string(in.EffectKind), len(out))
	logging.With(ctx, uc.log).Info().Int("count", len(out)).Str("target", in.EffectTarget).Msg("access codes generated")
	return out, nil
}

func (uc *accessCodeUC) Get(ctx context.Context, id string) (*model.AccessCode, error) {
	defer logging.TraceDuration(uc.log, "AccessCodeUC.Get")()
	return uc.codes.FindByID(ctx, repository.NoTX, id)
}

func (uc *accessCodeUC) List(ctx context.Context, f repository.AccessCodeFilter) ([]*model.AccessCode, error) {
	defer logging.TraceDuration(uc.log, "AccessCodeUC.List")()
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Search = strings.ToUpper(strings.TrimSpace(f.Search))
	return uc.codes.List(ctx, repository.NoTX, f)
}

func (uc *accessCodeUC) SetActive(ctx context.Context, id string, active bool) (*model.AccessCode, error) {
	defer logging.TraceDuration(uc.log, "AccessCodeUC.SetActive")()
	var out *model.AccessCode
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.codes.SetActive(ctx, tx, id, active); err != nil {
			return err
		}
		ac, err := uc.codes.FindByID(ctx, tx, id)
		out = ac
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.With(ctx, uc.log).Info().Str("code_id", id).Bool("active", active).Msg("access code toggled")
	return out, nil
}

// SetMaxUses may reopen an exhausted code but never drops below the uses already consumed.
func (uc *accessCodeUC) SetMaxUses(ctx context.Context, id string, maxUses int) (*model.AccessCode, error) {
	defer logging.TraceDuration(uc.log, "AccessCodeUC.SetMaxUses")()
	if maxUses < 1 {
		return nil, fmt.Errorf("%w: max uses must be at least 1", domain.ErrInvalidArgument)
	}
	var out *model.AccessCode
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ac, err := uc.codes.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if maxUses < ac.CurrentUses {
			return fmt.Errorf("%w: max uses %d is below current uses %d", domain.ErrInvalidArgument, maxUses, ac.CurrentUses)
		}
		if err := uc.codes.SetMaxUses(ctx, tx, id, maxUses); err != nil {
			return err
		}
		ac.MaxUses = maxUses
		out = ac
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *accessCodeUC) Redemptions(ctx context.Context, id string) ([]*model.Redemption, error) {
	defer logging.TraceDuration(uc.log, "AccessCodeUC.Redemptions")()
	if _, err := uc.codes.FindByID(ctx, repository.NoTX, id); err != nil {
		return nil, err
	}
	return uc.redemptions.ListByCode(ctx, repository.NoTX, id)
}

// checkInput validates everything except the code string and returns the canonical target.
func (uc *accessCodeUC) checkInput(ctx context.Context, tx repository.Tx, in *CreateCodeInput) (string, error) {
	if !in.EffectKind.Valid() {
		return "", fmt.Errorf("%w: effect kind must be role or program", domain.ErrInvalidArgument)
	}
	if in.MaxUses < 1 {
		return "", fmt.Errorf("%w: max uses must be at least 1", domain.ErrInvalidArgument)
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(uc.now()) {
		return "", fmt.Errorf("%w: expiry must be in the future", domain.ErrInvalidArgument)
	}
	switch in.EffectKind {
	case model.EffectRole:
		r, ok := model.ParseRole(in.EffectTarget)
		if !ok {
			return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidArgument, in.EffectTarget)
		}
		return string(r), nil
	default:
		id := strings.ToLower(strings.TrimSpace(in.EffectTarget))
		if _, err := uc.programs.FindByID(ctx, tx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return "", fmt.Errorf("%w: unknown program %q", domain.ErrInvalidArgument, in.EffectTarget)
			}
			return "", err
		}
		return id, nil
	}
}

// freshCode generates a code that does not exist yet.
func (uc *accessCodeUC) freshCode(ctx context.Context, tx repository.Tx) (string, error) {
	for i := 0; i < 5; i++ {
		c, err := generateAccessCode()
		if err != nil {
			return "", err
		}
		_, err = uc.codes.FindByCode(ctx, tx, c)
		if errors.Is(err, domain.ErrNotFound) {
			return c, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: could not generate a unique code", domain.ErrAlreadyExists)
}

func (uc *accessCodeUC) build(actorID string, in CreateCodeInput, code, target string) *model.AccessCode {
	ac := &model.AccessCode{
		ID:           uuid.NewString(),
		Code:         code,
		EffectKind:   in.EffectKind,
		EffectTarget: target,
		IsActive:     !in.Inactive,
		MaxUses:      in.MaxUses,
		ExpiresAt:    in.ExpiresAt,
		CreatedAt:    uc.now(),
	}
	if actorID != "" {
		a := actorID
		ac.CreatedBy = &a
	}
	return ac
}

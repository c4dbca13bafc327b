package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/adapter"
	"learning-access/internal/domain/ports/repository"
	"learning-access/internal/infra/logging"
	"learning-access/internal/infra/metrics"
	red "learning-access/internal/infra/redis"
	"learning-access/internal/infra/worker"
)

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

// RateLimiter is the fixed-window limiter backed by Redis.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// TaskSubmitter queues background work without blocking the caller.
type TaskSubmitter interface {
	Submit(task worker.Task) error
}

// NotifyTimeout bounds one exhausted-code notification so a stalled Telegram
// call cannot hold a worker.
const NotifyTimeout = 10 * time.Second

// AttemptLimit bounds how often one subject may try an action.
type AttemptLimit struct {
	Max    int
	Window time.Duration
}

// GrantDescription is what a successful redemption reports back to the user.
type GrantDescription struct {
	Code          string           `json:"code"`
	Kind          model.EffectKind `json:"kind"`
	Target        string           `json:"target"`
	TargetTitle   string           `json:"target_title"`
	RemainingUses int              `json:"remaining_uses"`
	RedeemedAt    time.Time        `json:"redeemed_at"`
}

// RedemptionUseCase is the single entry point for redeeming access codes.
type RedemptionUseCase interface {
	Redeem(ctx context.Context, userID, rawCode string) (*GrantDescription, error)
	History(ctx context.Context, userID string) ([]*model.Redemption, error)
}

type redemptionUC struct {
	codes       repository.AccessCodeRepository
	redemptions repository.RedemptionRepository
	applier     GrantApplier
	tm          repository.TransactionManager
	limiter     RateLimiter
	limit       AttemptLimit
	notifier    adapter.AdminNotifier
	tasks       TaskSubmitter
	log         *zerolog.Logger
	dev         bool
	now         func() time.Time
}

// NewRedemptionUseCase wires the orchestrator. limiter, notifier and tasks may be nil.
func NewRedemptionUseCase(
	codes repository.AccessCodeRepository,
	redemptions repository.RedemptionRepository,
	applier GrantApplier,
	tm repository.TransactionManager,
	limiter RateLimiter,
	limit AttemptLimit,
	notifier adapter.AdminNotifier,
	tasks TaskSubmitter,
	logger *zerolog.Logger,
	dev bool,
) *redemptionUC {
	return &redemptionUC{
		codes:       codes,
		redemptions: redemptions,
		applier:     applier,
		tm:          tm,
		limiter:     limiter,
		limit:       limit,
		notifier:    notifier,
		tasks:       tasks,
		log:         logger,
		dev:         dev,
		now:         time.Now,
	}
}

// Redeem normalizes rawCode, validates it and applies its effect in one
// transaction. The code row is locked for the duration, and the usage
// increment is conditional, so concurrent redemptions never exceed MaxUses.
// No retry is attempted on failure.
func (uc *redemptionUC) Redeem(ctx context.Context, userID, rawCode string) (*GrantDescription, error) {
	defer logging.TraceDuration(uc.log, "RedemptionUC.Redeem")()
	log := logging.With(ctx, uc.log)

	code, err := model.NormalizeCode(rawCode)
	if err != nil {
		metrics.IncRedemption(resultLabel(err), "")
		return nil, err
	}
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	if err := uc.checkRate(ctx, userID); err != nil {
		metrics.IncRedemption(resultLabel(err), "")
		log.Warn().Str("code", logging.Redact(code, uc.dev)).Msg("redemption rate limited")
		return nil, err
	}

	var (
		grant  *Grant
		locked *model.AccessCode
	)
	start := uc.now()
	err = uc.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		ac, err := uc.codes.FindByCode(ctx, tx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCode
		}
		if err != nil {
			return err
		}
		locked = ac

		now := uc.now()
		if err := ValidateCode(ac, now); err != nil {
			return err
		}
		if err := uc.applier.Check(ctx, tx, ac, userID); err != nil {
			return err
		}
		g, err := uc.applier.Apply(ctx, tx, ac, userID, now)
		if err != nil {
			return err
		}
		grant = g
		return nil
	})
	metrics.ObserveRedemptionSeconds(time.Since(start).Seconds())

	kind := ""
	if locked != nil {
		kind = string(locked.EffectKind)
	}
	if err != nil {
		err = classify(err)
		metrics.IncRedemption(resultLabel(err), kind)
		ev := log.Info()
		if errors.Is(err, domain.ErrStoreUnavailable) {
			ev = log.Error()
		}
		ev.Err(err).Str("code", logging.Redact(code, uc.dev)).Msg("redemption refused")
		return nil, err
	}

	metrics.IncRedemption("granted", kind)
	remaining := locked.MaxUses - grant.UsesAfter
	if remaining < 0 {
		remaining = 0
	}
	log.Info().
		Str("code", logging.Redact(code, uc.dev)).
		Str("kind", kind).
		Str("target", locked.EffectTarget).
		Int("remaining", remaining).
		Msg("access code redeemed")

	if remaining == 0 {
		exhausted := *locked
		exhausted.CurrentUses = grant.UsesAfter
		uc.notifyExhausted(&exhausted)
	}

	return &GrantDescription{
		Code:          locked.Code,
		Kind:          locked.EffectKind,
		Target:        locked.EffectTarget,
		TargetTitle:   grant.TargetTitle,
		RemainingUses: remaining,
		RedeemedAt:    grant.Redemption.RedeemedAt,
	}, nil
}

func (uc *redemptionUC) History(ctx context.Context, userID string) ([]*model.Redemption, error) {
	defer logging.TraceDuration(uc.log, "RedemptionUC.History")()
	return uc.redemptions.ListByUser(ctx, repository.NoTX, userID)
}

// checkRate fails open when Redis is unreachable.
func (uc *redemptionUC) checkRate(ctx context.Context, userID string) error {
	if uc.limiter == nil || uc.limit.Max <= 0 {
		return nil
	}
	ok, err := uc.limiter.Allow(ctx, red.RedeemKey(userID), uc.limit.Max, uc.limit.Window)
	if err != nil {
		uc.log.Warn().Err(err).Msg("rate limiter unavailable")
		return nil
	}
	if !ok {
		return domain.ErrTooManyAttempts
	}
	return nil
}

func (uc *redemptionUC) notifyExhausted(code *model.AccessCode) {
	if uc.notifier == nil {
		return
	}
	task := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, NotifyTimeout)
		defer cancel()
		return uc.notifier.NotifyCodeExhausted(ctx, code)
	}
	if uc.tasks == nil {
		go func() {
			if err := task(context.Background()); err != nil {
				uc.log.Warn().Err(err).Msg("exhausted-code notification failed")
			}
		}()
		return
	}
	if err := uc.tasks.Submit(task); err != nil {
		uc.log.Warn().Err(err).Str("code_id", code.ID).Msg("could not queue exhausted-code notification")
	}
}

var redemptionErrors = []struct {
	err   error
	label string
}{
	{domain.ErrInactiveCode, "inactive"},
	{domain.ErrInvalidCode, "invalid"},
	{domain.ErrExpiredCode, "expired"},
	{domain.ErrExhaustedCode, "exhausted"},
	{domain.ErrAlreadyEnrolled, "already_enrolled"},
	{domain.ErrAlreadyGranted, "already_granted"},
	{domain.ErrTooManyAttempts, "rate_limited"},
	{domain.ErrUnauthorized, "unauthorized"},
	{domain.ErrNotFound, "unknown_user"},
}

// classify wraps anything that is not a known outcome as ErrStoreUnavailable.
func classify(err error) error {
	if err == nil || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	for _, e := range redemptionErrors {
		if errors.Is(err, e.err) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}

func resultLabel(err error) string {
	for _, e := range redemptionErrors {
		if errors.Is(err, e.err) {
			return e.label
		}
	}
	return "store_unavailable"
}

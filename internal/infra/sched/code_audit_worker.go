package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
	"learning-access/internal/infra/metrics"
	red "learning-access/internal/infra/redis"
)

const auditLockKey = "lock:code-audit"

// CodeAuditWorker periodically exports access-code state counts and reports
// codes whose usage counter disagrees with the redemption ledger. It never writes.
type CodeAuditWorker struct {
	interval time.Duration
	codes    repository.AccessCodeRepository
	locker   red.Locker
	log      *zerolog.Logger
	now      func() time.Time
}

// NewCodeAuditWorker builds the worker. locker may be nil for single-replica deployments.
func NewCodeAuditWorker(interval time.Duration, codes repository.AccessCodeRepository, locker red.Locker, logger *zerolog.Logger) *CodeAuditWorker {
	compLog := logger.With().Str("component", "CodeAuditWorker").Logger()
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CodeAuditWorker{
		interval: interval,
		codes:    codes,
		locker:   locker,
		log:      &compLog,
		now:      time.Now,
	}
}

func (w *CodeAuditWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting code audit worker")
	// Run once on startup, then on every tick
	w.runAudit(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping code audit worker")
			return ctx.Err()
		case <-ticker.C:
			w.runAudit(ctx)
		}
	}
}

func (w *CodeAuditWorker) runAudit(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if w.locker != nil {
		// Held until just before the next tick and never released, so each interval audits once.
		_, err := w.locker.TryLock(runCtx, auditLockKey, w.interval*9/10)
		if errors.Is(err, domain.ErrLockNotAcquired) {
			w.log.Debug().Msg("audit skipped, another replica holds the lock")
			return
		}
		if err != nil {
			w.log.Warn().Err(err).Msg("audit lock unavailable")
			return
		}
	}

	if _, err := w.Audit(runCtx); err != nil {
		w.log.Error().Err(err).Msg("code audit failed")
	}
}

// Audit runs one pass and returns the drifted codes.
func (w *CodeAuditWorker) Audit(ctx context.Context) ([]model.UsageDrift, error) {
	counts, err := w.codes.CountByState(ctx, repository.NoTX, w.now())
	if err != nil {
		return nil, err
	}
	byState := make(map[string]int, len(counts))
	for state, n := range counts {
		byState[string(state)] = n
	}
	metrics.SetCodeStates(byState,
		string(model.CodeStateActive),
		string(model.CodeStateDisabled),
		string(model.CodeStateExpired),
		string(model.CodeStateExhausted),
	)

	drift, err := w.codes.UsageDrift(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	metrics.SetUsageDrift(len(drift))
	for _, d := range drift {
		w.log.Error().
			Str("code_id", d.CodeID).
			Int("current_uses", d.CurrentUses).
			Int("ledger_count", d.LedgerCount).
			Msg("access code usage drift")
	}
	w.log.Debug().Interface("states", byState).Int("drift", len(drift)).Msg("code audit finished")
	return drift, nil
}

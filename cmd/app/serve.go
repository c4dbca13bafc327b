package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"learning-access/internal/domain/ports/adapter"
	tele "learning-access/internal/infra/adapters/telegram"
	pg "learning-access/internal/infra/db/postgres"
	"learning-access/internal/infra/i18n"
	"learning-access/internal/infra/metrics"
	red "learning-access/internal/infra/redis"
	"learning-access/internal/infra/sched"
	"learning-access/internal/infra/web"
	"learning-access/internal/infra/worker"
	"learning-access/internal/usecase"
	"learning-access/migrations"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the code audit worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServe(parent context.Context, opts *rootOptions, migrate bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	if migrate {
		if err := pg.MigrateUp(ctx, cfg.Database.URL, migrations.EmbedMigrations); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
	}

	// ---- Postgres ----
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	go pg.WatchPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	sessionStore := red.NewSessionStore(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	r := newRepos(pool, redisClient)

	// ---- Background workers ----
	// Started on a detached context so Stop can drain queued notifications.
	workers := worker.NewPool(cfg.Workers, logger)
	workers.Start(context.Background())
	defer workers.Stop()

	// ---- Telegram ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.I18n.DefaultLang)
	if err != nil {
		return err
	}
	var sender adapter.TelegramSender
	if cfg.Telegram.Token != "" {
		bot, err := tele.NewBotSender(cfg.Telegram.Token)
		if err != nil {
			return err
		}
		sender = bot
	} else {
		logger.Warn().Msg("telegram.token not set; admin notifications are logged only")
		sender = tele.NewNoopSender(logger)
	}
	notifier := tele.NewAdminNotifier(sender, cfg.Telegram.AdminChatIDs, tr, logger)

	// ---- Use cases ----
	applier := usecase.NewGrantApplier(r.codes, r.profiles, r.programs, r.enrollments, r.redemptions)
	redeemUC := usecase.NewRedemptionUseCase(
		r.codes, r.redemptions, applier, r.tm, rateLimiter,
		usecase.AttemptLimit{Max: cfg.Redemption.MaxAttempts, Window: cfg.Redemption.AttemptWindow},
		notifier, workers, logger, cfg.Runtime.Dev,
	)
	codesUC := usecase.NewAccessCodeUseCase(r.codes, r.programs, r.redemptions, r.tm, logger)
	authUC := newAuthUseCase(cfg, r, rateLimiter, logger)
	learningUC := usecase.NewLearningUseCase(r.programs, r.enrollments, r.progress, r.saved, r.tm, logger)

	// ---- Code audit worker ----
	audit := sched.NewCodeAuditWorker(cfg.Scheduler.AuditInterval, r.codes, locker, logger)
	go func() {
		if err := audit.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("code audit worker stopped")
		}
	}()

	// ---- HTTP server ----
	srv := web.NewServer(web.Deps{
		Auth:           authUC,
		Redemption:     redeemUC,
		Codes:          codesUC,
		Learning:       learningUC,
		Sessions:       web.NewAuthManager(cfg.Auth),
		Revoker:        sessionStore,
		Translator:     tr,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	errc := make(chan error, 1)
	go func() {
		if err := srv.Start(cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// ---- Graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-errc:
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
		return err
	}
	return nil
}

// The lunchvote binary serves the web API and consumes the task queue.
// Queue consumption lives here rather than in the worker because the
// scheduled tasks mutate the in-memory day ledger this process owns; the
// worker binary only decides when tasks run.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/lunchvote/lunchvote/internal/app"
	"github.com/lunchvote/lunchvote/internal/notify"
	"github.com/lunchvote/lunchvote/internal/observability"
	"github.com/lunchvote/lunchvote/internal/platform/cache"
	"github.com/lunchvote/lunchvote/internal/platform/db"
	"github.com/lunchvote/lunchvote/internal/roster"
	"github.com/lunchvote/lunchvote/internal/vote"
	"github.com/lunchvote/lunchvote/jobs"
)

func main() {
	_ = godotenv.Load()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	sched, err := cfg.Schedule()
	if err != nil {
		logger.Error("resolve schedule", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	rosterService := roster.NewService(roster.NewRepository(pool))
	eventRepo := vote.NewRepository(pool)

	ledger := vote.NewLedger(cfg.Restaurants, cfg.MaxVotePerPerson)
	if names, err := rosterService.ActiveNames(ctx); err != nil {
		logger.Warn("initial roster load", slog.Any("error", err))
	} else {
		ledger.Rebuild(names)
	}

	gateway := vote.NewGateway(vote.GatewayConfig{
		Ledger:      ledger,
		Schedule:    sched,
		Events:      eventRepo,
		OptOutLabel: cfg.OptOutLabel,
		LockWait:    cfg.LockWait,
	})

	metrics := observability.NewMetrics()
	webhook := notify.NewWebhook(cfg.SlackWebhookURL, cfg.SlackEnabled, logger)
	gate := notify.NewGate(cfg.HolidayAPIURL, cfg.HolidayCountry, redisClient, logger)

	voteJobs := jobs.NewVoteJobs(gateway, eventRepo, rosterService, metrics, logger, nil)
	notifyJobs := jobs.NewNotifyJobs(webhook, gate, gateway, rosterService, cfg.BoardURL, metrics, logger, nil)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskVoteRebuild, Handler: voteJobs.HandleRebuild},
			{Type: jobs.TaskVoteReset, Handler: voteJobs.HandleReset},
			{Type: jobs.TaskVoteCloseVote, Handler: voteJobs.HandleCloseVote},
			{Type: jobs.TaskVoteCloseMenu, Handler: voteJobs.HandleCloseMenu},
			{Type: jobs.TaskNotifyNudge, Handler: notifyJobs.HandleNudge},
			{Type: jobs.TaskNotifyNonVoters, Handler: notifyJobs.HandleNonVoters},
			{Type: jobs.TaskNotifyVoteResult, Handler: notifyJobs.HandleVoteResult},
			{Type: jobs.TaskNotifyMenuResult, Handler: notifyJobs.HandleMenuResult},
		},
	})

	inspector := asynq.NewInspector(redisOpts)
	router := app.NewRouter(app.RouterParams{
		Logger:      logger,
		Config:      cfg,
		VoteHandler: vote.NewHandler(logger, gateway, rosterService, cfg.WebAPIKey),
		JobHandler:  jobs.NewHandler(inspector, logger),
		Metrics:     metrics,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppRequestTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("runtime", slog.Any("error", err))
		os.Exit(1)
	}
}

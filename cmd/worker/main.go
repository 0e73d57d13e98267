// The worker binary runs the cron scheduler that enqueues the daily
// tasks. Task execution happens in the lunchvote process, which owns the
// in-memory day state. With -run the binary enqueues one task by hand
// and exits, for recovering a missed schedule slot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/lunchvote/lunchvote/internal/app"
	"github.com/lunchvote/lunchvote/jobs"
)

func main() {
	_ = godotenv.Load()

	runTask := flag.String("run", "", "enqueue one task by type and exit")
	flag.Parse()

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
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	if *runTask != "" {
		if err := enqueueOnce(ctx, redisOpts, *runTask); err != nil {
			logger.Error("manual enqueue", slog.String("task", *runTask), slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("task enqueued", slog.String("task", *runTask))
		return
	}

	sched, err := cfg.Schedule()
	if err != nil {
		logger.Error("resolve schedule", slog.Any("error", err))
		os.Exit(1)
	}

	scheduler, err := jobs.NewScheduler(jobs.SchedulerConfig{
		RedisOpts: redisOpts,
		Location:  sched.Location,
		Cron:      cronTable(cfg),
		Logger:    logger,
	})
	if err != nil {
		logger.Error("build scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("scheduler running", slog.String("timezone", cfg.Timezone))
	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler", slog.Any("error", err))
		os.Exit(1)
	}
}

// cronTable derives the daily schedule from the configured cutoffs.
// Scheduled tasks run exactly once per slot; a failed run is recovered
// manually with -run rather than retried.
func cronTable(cfg *app.Config) []jobs.CronRegistration {
	once := []asynq.Option{asynq.MaxRetry(0)}
	entry := func(spec, taskType string) jobs.CronRegistration {
		return jobs.CronRegistration{Spec: spec, Task: jobs.NewTask(taskType), Options: once}
	}
	return []jobs.CronRegistration{
		entry("2 0 * * *", jobs.TaskVoteRebuild),
		entry("5 0 * * *", jobs.TaskVoteReset),
		entry(cronAt(cfg.VoteStartHour, cfg.VoteStartMin, 0), jobs.TaskNotifyNudge),
		entry(cronAt(cfg.VoteStartHour, cfg.VoteStartMin, 30), jobs.TaskNotifyNonVoters),
		entry(cronAt(cfg.VoteCutoffHour, cfg.VoteCutoffMin, 0), jobs.TaskNotifyVoteResult),
		entry(cronAt(cfg.VoteCutoffHour, cfg.VoteCutoffMin, 1), jobs.TaskVoteCloseVote),
		entry(cronAt(cfg.MenuCutoffHour, cfg.MenuCutoffMin, 0), jobs.TaskNotifyMenuResult),
		entry(cronAt(cfg.MenuCutoffHour, cfg.MenuCutoffMin, 1), jobs.TaskVoteCloseMenu),
	}
}

// cronAt builds a daily cron spec at hour:min shifted by offset minutes.
func cronAt(hour, min, offset int) string {
	t := time.Date(2000, 1, 1, hour, min, 0, 0, time.UTC).Add(time.Duration(offset) * time.Minute)
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour())
}

func enqueueOnce(ctx context.Context, redisOpts asynq.RedisClientOpt, taskType string) error {
	known := false
	for _, t := range jobs.AllTaskTypes {
		if t == taskType {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown task type %q (known: %v)", taskType, jobs.AllTaskTypes)
	}

	client := jobs.NewClient(redisOpts)
	defer func() { _ = client.Close() }()
	_, err := client.Enqueue(ctx, jobs.NewTask(taskType))
	return err
}

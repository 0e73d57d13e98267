package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lunchvote/lunchvote/internal/observability"
	"github.com/lunchvote/lunchvote/internal/vote"
)

// GatewayPort is the slice of the mutation gateway the day tasks need.
type GatewayPort interface {
	Reset(ctx context.Context) error
	Rebuild(ctx context.Context, names []string) error
	Schedule() vote.Schedule
}

// EventStore is the log access the consolidation tasks need.
type EventStore interface {
	VoteEventsForDay(ctx context.Context, dayKey string) ([]vote.VoteEvent, error)
	MenuEventsForDay(ctx context.Context, dayKey string) ([]vote.MenuEvent, error)
	ApplyVoteMarks(ctx context.Context, marks []vote.ClosedMark) error
	ApplyMenuMarks(ctx context.Context, marks []vote.ClosedMark) error
}

// RosterPort lists the active participant names for the rebuild.
type RosterPort interface {
	ActiveNames(ctx context.Context) ([]string, error)
}

// VoteJobs holds the state-maintenance task handlers: the midnight
// rebuild and reset, and the two post-cutoff log consolidations.
type VoteJobs struct {
	gateway GatewayPort
	events  EventStore
	roster  RosterPort
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewVoteJobs constructs the handlers. now defaults to time.Now.
func NewVoteJobs(gateway GatewayPort, events EventStore, roster RosterPort, metrics *observability.Metrics, logger *slog.Logger, now func() time.Time) *VoteJobs {
	if now == nil {
		now = time.Now
	}
	return &VoteJobs{gateway: gateway, events: events, roster: roster, metrics: metrics, logger: logger, now: now}
}

// HandleReset clears every person's day state. Idempotent; a second run
// is a no-op.
func (j *VoteJobs) HandleReset(ctx context.Context, _ *asynq.Task) error {
	start := time.Now()
	err := j.gateway.Reset(ctx)
	if err != nil {
		j.logger.Error("daily reset", slog.Any("error", err))
	} else {
		j.logger.Info("daily reset complete")
	}
	return j.metrics.TrackTask(TaskVoteReset, start, err)
}

// HandleRebuild refreshes ledger membership from the roster.
func (j *VoteJobs) HandleRebuild(ctx context.Context, _ *asynq.Task) error {
	start := time.Now()
	err := j.rebuild(ctx)
	if err != nil {
		j.logger.Error("roster rebuild", slog.Any("error", err))
	}
	return j.metrics.TrackTask(TaskVoteRebuild, start, err)
}

func (j *VoteJobs) rebuild(ctx context.Context) error {
	names, err := j.roster.ActiveNames(ctx)
	if err != nil {
		return err
	}
	if err := j.gateway.Rebuild(ctx, names); err != nil {
		return err
	}
	j.logger.Info("roster rebuild complete", slog.Int("people", len(names)))
	return nil
}

// HandleCloseVote marks the day's authoritative vote-log entries as of
// the vote cutoff. Deterministic and idempotent, safe to re-run.
func (j *VoteJobs) HandleCloseVote(ctx context.Context, _ *asynq.Task) error {
	start := time.Now()
	err := j.closeVotes(ctx)
	if err != nil {
		j.logger.Error("close vote log", slog.Any("error", err))
	}
	return j.metrics.TrackTask(TaskVoteCloseVote, start, err)
}

func (j *VoteJobs) closeVotes(ctx context.Context) error {
	sched := j.gateway.Schedule()
	now := j.now().In(sched.Location)
	dayKey := sched.DayKey(now)

	events, err := j.events.VoteEventsForDay(ctx, dayKey)
	if err != nil {
		return err
	}
	marks := vote.ConsolidateVotes(events, dayKey, sched.CutoffsFor(now).VoteCutoff)
	if err := j.events.ApplyVoteMarks(ctx, marks); err != nil {
		return err
	}
	j.logger.Info("vote log consolidated", slog.String("day", dayKey), slog.Int("rows", len(marks)))
	return nil
}

// HandleCloseMenu does the same for the menu log at the menu cutoff.
func (j *VoteJobs) HandleCloseMenu(ctx context.Context, _ *asynq.Task) error {
	start := time.Now()
	err := j.closeMenus(ctx)
	if err != nil {
		j.logger.Error("close menu log", slog.Any("error", err))
	}
	return j.metrics.TrackTask(TaskVoteCloseMenu, start, err)
}

func (j *VoteJobs) closeMenus(ctx context.Context) error {
	sched := j.gateway.Schedule()
	now := j.now().In(sched.Location)
	dayKey := sched.DayKey(now)

	events, err := j.events.MenuEventsForDay(ctx, dayKey)
	if err != nil {
		return err
	}
	marks := vote.ConsolidateMenus(events, dayKey, sched.CutoffsFor(now).MenuCutoff)
	if err := j.events.ApplyMenuMarks(ctx, marks); err != nil {
		return err
	}
	j.logger.Info("menu log consolidated", slog.String("day", dayKey), slog.Int("rows", len(marks)))
	return nil
}

package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lunchvote/lunchvote/internal/notify"
	"github.com/lunchvote/lunchvote/internal/observability"
	"github.com/lunchvote/lunchvote/internal/roster"
	"github.com/lunchvote/lunchvote/internal/vote"
)

// Snapshotter reads the current day view.
type Snapshotter interface {
	Snapshot() vote.Snapshot
	Schedule() vote.Schedule
}

// PeoplePort lists roster entries with their Slack ids.
type PeoplePort interface {
	ActivePeople(ctx context.Context) ([]roster.Person, error)
}

// Sender delivers one notification text.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// BusinessDayGate decides whether notifications run today.
type BusinessDayGate interface {
	IsBusinessDay(ctx context.Context, t time.Time) bool
}

// NotifyJobs holds the Slack notification task handlers. Failures are
// logged and swallowed: a missed message never fails the scheduled run
// and is never retried.
type NotifyJobs struct {
	sender   Sender
	gate     BusinessDayGate
	snap     Snapshotter
	people   PeoplePort
	boardURL string
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewNotifyJobs constructs the handlers. now defaults to time.Now.
func NewNotifyJobs(sender Sender, gate BusinessDayGate, snap Snapshotter, people PeoplePort, boardURL string, metrics *observability.Metrics, logger *slog.Logger, now func() time.Time) *NotifyJobs {
	if now == nil {
		now = time.Now
	}
	return &NotifyJobs{
		sender:   sender,
		gate:     gate,
		snap:     snap,
		people:   people,
		boardURL: boardURL,
		metrics:  metrics,
		logger:   logger,
		now:      now,
	}
}

func (j *NotifyJobs) localNow() time.Time {
	return j.now().In(j.snap.Schedule().Location)
}

func (j *NotifyJobs) send(ctx context.Context, task, text string, start time.Time) error {
	if err := j.sender.Send(ctx, text); err != nil {
		j.logger.Warn("slack send failed", slog.String("task", task), slog.Any("error", err))
		_ = j.metrics.TrackTask(task, start, err)
		return nil
	}
	return j.metrics.TrackTask(task, start, nil)
}

// HandleNudge posts the morning voting announcement.
func (j *NotifyJobs) HandleNudge(ctx context.Context, _ *asynq.Task) error {
	start := time.Now()
	now := j.localNow()
	if !j.gate.IsBusinessDay(ctx, now) {
		return nil
	}
	return j.send(ctx, TaskNotifyNudge, notify.Nudge(j.snap.Snapshot(), now, j.boardURL), start)
}

// HandleNonVoters reminds people who have neither voted nor opted out.
// Skipped entirely once the vote cutoff has passed or when everyone has
// participated.
func (j *NotifyJobs) HandleNonVoters(ctx context.Context, _ *asynq.Task) error {
	start := time.Now()
	now := j.localNow()
	if !j.gate.IsBusinessDay(ctx, now) {
		return nil
	}
	sched := j.snap.Schedule()
	if phase := sched.Resolve(now); phase != vote.PhaseBeforeStart && phase != vote.PhaseVoteActive {
		return nil
	}

	snapshot := j.snap.Snapshot()
	if len(snapshot.NonVoters) == 0 {
		return nil
	}

	mentions := j.mentions(ctx, snapshot.NonVoters)
	return j.send(ctx, TaskNotifyNonVoters, notify.NonVoters(mentions, now, snapshot.Config, j.boardURL), start)
}

// HandleVoteResult posts the vote-cutoff summary.
func (j *NotifyJobs) HandleVoteResult(ctx context.Context, _ *asynq.Task) error {
	start := time.Now()
	now := j.localNow()
	if !j.gate.IsBusinessDay(ctx, now) {
		return nil
	}
	return j.send(ctx, TaskNotifyVoteResult, notify.VoteResult(j.snap.Snapshot(), now, j.boardURL), start)
}

// HandleMenuResult posts the menu roundup at the menu cutoff.
func (j *NotifyJobs) HandleMenuResult(ctx context.Context, _ *asynq.Task) error {
	start := time.Now()
	now := j.localNow()
	if !j.gate.IsBusinessDay(ctx, now) {
		return nil
	}
	return j.send(ctx, TaskNotifyMenuResult, notify.MenuResult(j.snap.Snapshot(), now, j.boardURL), start)
}

// mentions resolves non-voter names to Slack mentions. A failed roster
// read degrades to plain names.
func (j *NotifyJobs) mentions(ctx context.Context, names []string) []notify.Mention {
	slackIDs := make(map[string]string)
	if people, err := j.people.ActivePeople(ctx); err == nil {
		for _, p := range people {
			slackIDs[p.Name] = p.SlackUserID
		}
	} else {
		j.logger.Warn("roster lookup for mentions", slog.Any("error", err))
	}

	mentions := make([]notify.Mention, len(names))
	for i, name := range names {
		mentions[i] = notify.Mention{Name: name, SlackID: slackIDs[name]}
	}
	return mentions
}

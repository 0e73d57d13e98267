package vote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// EventLog is the append-only sink for accepted mutations.
type EventLog interface {
	AppendVote(ctx context.Context, ev VoteEvent) error
	AppendMenu(ctx context.Context, ev MenuEvent) error
}

// VoteReceipt echoes an accepted vote mutation.
type VoteReceipt struct {
	Person     string
	Restaurant string
	Checked    bool
}

// OptOutReceipt echoes an accepted opt-out mutation.
type OptOutReceipt struct {
	Person string
	OptOut bool
}

// MenuReceipt echoes an accepted menu mutation.
type MenuReceipt struct {
	Person string
	Menu   Menu
}

// GatewayConfig collects the gateway's collaborators and policy knobs.
type GatewayConfig struct {
	Ledger      *Ledger
	Schedule    Schedule
	Events      EventLog
	OptOutLabel string
	// LockWait bounds how long a mutation waits for the exclusive
	// section before failing with ErrLockTimeout.
	LockWait time.Duration
	Source   string
	Now      func() time.Time
}

// Gateway is the single externally callable mutation entry point. It is
// the only component that consults the phase resolver and the only one
// that appends log events. Every mutating call runs inside one
// process-wide exclusive section with a bounded wait.
type Gateway struct {
	ledger      *Ledger
	sched       Schedule
	events      EventLog
	optOutLabel string
	lockWait    time.Duration
	source      string
	now         func() time.Time
	sem         *semaphore.Weighted
}

// NewGateway constructs a gateway around a ledger.
func NewGateway(cfg GatewayConfig) *Gateway {
	g := &Gateway{
		ledger:      cfg.Ledger,
		sched:       cfg.Schedule,
		events:      cfg.Events,
		optOutLabel: cfg.OptOutLabel,
		lockWait:    cfg.LockWait,
		source:      cfg.Source,
		now:         cfg.Now,
		sem:         semaphore.NewWeighted(1),
	}
	if g.lockWait <= 0 {
		g.lockWait = 15 * time.Second
	}
	if g.source == "" {
		g.source = "web_vote"
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Schedule exposes the configured cutoffs.
func (g *Gateway) Schedule() Schedule {
	return g.sched
}

// Ledger exposes the underlying day ledger.
func (g *Gateway) Ledger() *Ledger {
	return g.ledger
}

func (g *Gateway) acquire(ctx context.Context) (release func(), err error) {
	waitCtx, cancel := context.WithTimeout(ctx, g.lockWait)
	defer cancel()
	if err := g.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrLockTimeout
	}
	return func() { g.sem.Release(1) }, nil
}

// Vote checks or unchecks one restaurant for a person. Rejected with
// ErrPastCutoff from the vote cutoff onward, inclusive. The cutoff is
// evaluated under the lock, so a call queued behind a slow mutation at
// 10:59 cannot commit after 11:00.
func (g *Gateway) Vote(ctx context.Context, person, restaurant string, checked bool) (VoteReceipt, error) {
	if !g.ledger.HasRestaurant(restaurant) {
		return VoteReceipt{}, fmt.Errorf("%w: %s", ErrUnknownRestaurant, restaurant)
	}

	release, err := g.acquire(ctx)
	if err != nil {
		return VoteReceipt{}, err
	}
	defer release()

	now := g.now().In(g.sched.Location)
	cutoffs := g.sched.CutoffsFor(now)
	if phase := ResolvePhase(now, cutoffs); phase != PhaseBeforeStart && phase != PhaseVoteActive {
		return VoteReceipt{}, ErrPastCutoff
	}

	if err := g.ledger.SetVote(person, restaurant, checked); err != nil {
		return VoteReceipt{}, err
	}
	if err := g.appendVote(ctx, now, cutoffs.VoteCutoff, person, restaurant, checked); err != nil {
		return VoteReceipt{}, err
	}
	return VoteReceipt{Person: person, Restaurant: restaurant, Checked: checked}, nil
}

// OptOut toggles the person's non-participation flag. Same time gate as
// Vote; the log entry targets the opt-out label.
func (g *Gateway) OptOut(ctx context.Context, person string, checked bool) (OptOutReceipt, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return OptOutReceipt{}, err
	}
	defer release()

	now := g.now().In(g.sched.Location)
	cutoffs := g.sched.CutoffsFor(now)
	if phase := ResolvePhase(now, cutoffs); phase != PhaseBeforeStart && phase != PhaseVoteActive {
		return OptOutReceipt{}, ErrPastCutoff
	}

	if err := g.ledger.SetOptOut(person, checked); err != nil {
		return OptOutReceipt{}, err
	}
	if err := g.appendVote(ctx, now, cutoffs.VoteCutoff, person, g.optOutLabel, checked); err != nil {
		return OptOutReceipt{}, err
	}
	return OptOutReceipt{Person: person, OptOut: checked}, nil
}

// Menu overwrites the person's menu entry. Deliberately never time-gated;
// the only rejection is an opted-out person.
func (g *Gateway) Menu(ctx context.Context, person string, menu Menu) (MenuReceipt, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return MenuReceipt{}, err
	}
	defer release()

	if err := g.ledger.SetMenu(person, menu); err != nil {
		return MenuReceipt{}, err
	}

	votes, err := g.ledger.Votes(person)
	if err != nil {
		return MenuReceipt{}, err
	}
	now := g.now().In(g.sched.Location)
	ev := MenuEvent{
		ID:          uuid.NewString(),
		Person:      person,
		Restaurants: strings.Join(votes, ", "),
		MenuName:    menu.Name,
		Price:       menu.Price,
		DayKey:      g.sched.DayKey(now),
		At:          now,
		Cutoff:      g.sched.CutoffsFor(now).MenuCutoff,
		Note:        menu.Note,
		Source:      g.source,
	}
	if err := g.events.AppendMenu(ctx, ev); err != nil {
		return MenuReceipt{}, fmt.Errorf("vote: append menu event: %w", err)
	}
	return MenuReceipt{Person: person, Menu: menu}, nil
}

// Reset clears every person's day state. Unconditional and idempotent;
// runs at the daily boundary but may be invoked any time for recovery.
func (g *Gateway) Reset(ctx context.Context) error {
	release, err := g.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	g.ledger.Reset()
	return nil
}

// Rebuild refreshes ledger membership from the active roster, keeping
// the day state of people who remain.
func (g *Gateway) Rebuild(ctx context.Context, names []string) error {
	release, err := g.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	g.ledger.Rebuild(names)
	return nil
}

func (g *Gateway) appendVote(ctx context.Context, now, cutoff time.Time, person, target string, checked bool) error {
	ev := VoteEvent{
		ID:     uuid.NewString(),
		Person: person,
		Target: target,
		DayKey: g.sched.DayKey(now),
		Action: ActionFor(checked),
		At:     now,
		Cutoff: cutoff,
		Source: g.source,
	}
	if err := g.events.AppendVote(ctx, ev); err != nil {
		return fmt.Errorf("vote: append vote event: %w", err)
	}
	return nil
}

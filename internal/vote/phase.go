package vote

import "time"

// ClockTime is a wall-clock instant within a day.
type ClockTime struct {
	Hour   int
	Minute int
}

// Schedule holds the configured daily cutoffs in a fixed time zone.
// Cutoffs are same-day only; each day's instants are derived fresh from
// that day's date.
type Schedule struct {
	Location   *time.Location
	VoteStart  ClockTime
	VoteCutoff ClockTime
	MenuCutoff ClockTime
}

// Cutoffs are the three resolved instants for one calendar day.
type Cutoffs struct {
	VoteStart  time.Time
	VoteCutoff time.Time
	MenuCutoff time.Time
}

// CutoffsFor resolves the schedule against the calendar day of t.
func (s Schedule) CutoffsFor(t time.Time) Cutoffs {
	day := t.In(s.Location)
	at := func(c ClockTime) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, s.Location)
	}
	return Cutoffs{
		VoteStart:  at(s.VoteStart),
		VoteCutoff: at(s.VoteCutoff),
		MenuCutoff: at(s.MenuCutoff),
	}
}

// DayKey formats t as the yyyy-MM-dd log partition key.
func (s Schedule) DayKey(t time.Time) string {
	return t.In(s.Location).Format("2006-01-02")
}

// ResolvePhase is a total step function from the current time to the
// phase. Boundaries are inclusive on the right: at exactly VoteCutoff the
// vote phase is already over.
func ResolvePhase(now time.Time, c Cutoffs) Phase {
	switch {
	case now.Before(c.VoteStart):
		return PhaseBeforeStart
	case now.Before(c.VoteCutoff):
		return PhaseVoteActive
	case now.Before(c.MenuCutoff):
		return PhaseMenuActive
	default:
		return PhaseAllLocked
	}
}

// Resolve is shorthand for resolving now against now's own day.
func (s Schedule) Resolve(now time.Time) Phase {
	return ResolvePhase(now, s.CutoffsFor(now))
}

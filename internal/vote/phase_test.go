package vote

import (
	"testing"
	"time"
)

var testSchedule = Schedule{
	Location:   time.FixedZone("KST", 9*3600),
	VoteStart:  ClockTime{Hour: 10, Minute: 0},
	VoteCutoff: ClockTime{Hour: 11, Minute: 0},
	MenuCutoff: ClockTime{Hour: 11, Minute: 20},
}

func at(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2025, 6, 16, hour, minute, 0, 0, testSchedule.Location)
}

func TestResolvePhaseBoundaries(t *testing.T) {
	cases := []struct {
		hour, minute int
		want         Phase
	}{
		{0, 0, PhaseBeforeStart},
		{9, 59, PhaseBeforeStart},
		{10, 0, PhaseVoteActive},
		{10, 59, PhaseVoteActive},
		{11, 0, PhaseMenuActive},
		{11, 19, PhaseMenuActive},
		{11, 20, PhaseAllLocked},
		{23, 59, PhaseAllLocked},
	}
	for _, tc := range cases {
		got := testSchedule.Resolve(at(t, tc.hour, tc.minute))
		if got != tc.want {
			t.Errorf("at %02d:%02d got %s want %s", tc.hour, tc.minute, got, tc.want)
		}
	}
}

func TestResolvePhaseMonotonicWithinDay(t *testing.T) {
	prev := -1
	for minute := 0; minute < 24*60; minute++ {
		now := at(t, 0, 0).Add(time.Duration(minute) * time.Minute)
		idx := testSchedule.Resolve(now).Index()
		if idx < prev {
			t.Fatalf("phase went backwards at %s: index %d after %d", now.Format("15:04"), idx, prev)
		}
		prev = idx
	}
}

func TestCutoffsForUsesCalendarDayOfArgument(t *testing.T) {
	c := testSchedule.CutoffsFor(at(t, 18, 30))
	want := at(t, 11, 0)
	if !c.VoteCutoff.Equal(want) {
		t.Fatalf("vote cutoff %v, want %v", c.VoteCutoff, want)
	}
}

func TestDayKey(t *testing.T) {
	if got := testSchedule.DayKey(at(t, 10, 30)); got != "2025-06-16" {
		t.Fatalf("day key %q", got)
	}
	// A UTC instant that is already the next day in the schedule zone.
	utc := time.Date(2025, 6, 16, 20, 0, 0, 0, time.UTC)
	if got := testSchedule.DayKey(utc); got != "2025-06-17" {
		t.Fatalf("day key across zones %q", got)
	}
}

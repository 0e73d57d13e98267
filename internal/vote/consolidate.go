package vote

import "time"

// ClosedMark is one consolidation verdict for a log row.
type ClosedMark struct {
	ID     string
	Closed bool
}

type logEntry struct {
	id  string
	key string
	at  time.Time
}

// ConsolidateVotes determines the authoritative vote-log entry per
// (person, target) group for one day as of the vote cutoff. Events
// outside the day or after the cutoff get no mark. Within a group the
// latest event wins; on equal timestamps the later log entry wins, so
// the pass is deterministic and idempotent.
func ConsolidateVotes(events []VoteEvent, dayKey string, cutoff time.Time) []ClosedMark {
	entries := make([]logEntry, 0, len(events))
	for _, ev := range events {
		if ev.DayKey != dayKey || ev.At.After(cutoff) {
			continue
		}
		entries = append(entries, logEntry{id: ev.ID, key: ev.Person + "||" + ev.Target, at: ev.At})
	}
	return consolidate(entries)
}

// ConsolidateMenus does the same for the menu log. Menu entries group by
// person only: the last menu edit per person is the order of record.
func ConsolidateMenus(events []MenuEvent, dayKey string, cutoff time.Time) []ClosedMark {
	entries := make([]logEntry, 0, len(events))
	for _, ev := range events {
		if ev.DayKey != dayKey || ev.At.After(cutoff) {
			continue
		}
		entries = append(entries, logEntry{id: ev.ID, key: ev.Person, at: ev.At})
	}
	return consolidate(entries)
}

func consolidate(entries []logEntry) []ClosedMark {
	winners := make(map[string]logEntry, len(entries))
	for _, e := range entries {
		prev, ok := winners[e.key]
		if !ok || !e.at.Before(prev.at) {
			winners[e.key] = e
		}
	}

	marks := make([]ClosedMark, 0, len(entries))
	for _, e := range entries {
		marks = append(marks, ClosedMark{ID: e.id, Closed: winners[e.key].id == e.id})
	}
	return marks
}

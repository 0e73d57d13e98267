package vote

import (
	"sync"
)

type personState struct {
	votes  map[string]bool
	optOut bool
	menu   Menu
}

// Ledger holds the current day's per-person state. It is a plain state
// container: phase gating lives in the Gateway so the ledger can be
// tested without a clock. Mutations are serialized by the gateway lock;
// the internal RWMutex only keeps concurrent snapshot reads memory-safe.
type Ledger struct {
	mu          sync.RWMutex
	restaurants []string
	restSet     map[string]struct{}
	maxVotes    int
	order       []string
	people      map[string]*personState
}

// NewLedger builds an empty ledger over the fixed, ordered restaurant set.
func NewLedger(restaurants []string, maxVotes int) *Ledger {
	set := make(map[string]struct{}, len(restaurants))
	for _, r := range restaurants {
		set[r] = struct{}{}
	}
	return &Ledger{
		restaurants: append([]string(nil), restaurants...),
		restSet:     set,
		maxVotes:    maxVotes,
		people:      make(map[string]*personState),
	}
}

// Restaurants returns the fixed restaurant order.
func (l *Ledger) Restaurants() []string {
	return append([]string(nil), l.restaurants...)
}

// MaxVotes returns the per-person vote cap.
func (l *Ledger) MaxVotes() int {
	return l.maxVotes
}

// HasRestaurant reports membership in the fixed set.
func (l *Ledger) HasRestaurant(name string) bool {
	_, ok := l.restSet[name]
	return ok
}

// Rebuild replaces the roster. State is kept for people still on the
// roster; newcomers start empty and departed people are dropped.
func (l *Ledger) Rebuild(names []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make(map[string]*personState, len(names))
	order := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := next[name]; dup {
			continue
		}
		if prev, ok := l.people[name]; ok {
			next[name] = prev
		} else {
			next[name] = &personState{votes: make(map[string]bool)}
		}
		order = append(order, name)
	}
	l.people = next
	l.order = order
}

// Reset clears every person's state to empty. Roster membership is kept.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, st := range l.people {
		st.votes = make(map[string]bool)
		st.optOut = false
		st.menu = Menu{}
	}
}

// SetVote checks or unchecks one restaurant for a person. Any check at
// the cap fails with ErrVoteLimit, including re-checking an already
// checked restaurant; a successful check force-clears opt-out.
// Unchecking never fails.
func (l *Ledger) SetVote(person, restaurant string, checked bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.people[person]
	if !ok {
		return ErrUnknownPerson
	}
	if checked {
		if l.voteCount(st) >= l.maxVotes {
			return ErrVoteLimit
		}
		st.votes[restaurant] = true
		st.optOut = false
		return nil
	}
	delete(st.votes, restaurant)
	return nil
}

// SetOptOut sets the person's opt-out flag. Opting out clears votes and
// menu; opting back in leaves them empty.
func (l *Ledger) SetOptOut(person string, checked bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.people[person]
	if !ok {
		return ErrUnknownPerson
	}
	st.optOut = checked
	if checked {
		st.votes = make(map[string]bool)
		st.menu = Menu{}
	}
	return nil
}

// SetMenu overwrites the person's menu triple wholesale. Forbidden while
// the person is opted out.
func (l *Ledger) SetMenu(person string, menu Menu) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.people[person]
	if !ok {
		return ErrUnknownPerson
	}
	if st.optOut {
		return ErrOptedOut
	}
	st.menu = menu
	return nil
}

// Votes returns the person's checked restaurants in fixed set order.
func (l *Ledger) Votes(person string) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st, ok := l.people[person]
	if !ok {
		return nil, ErrUnknownPerson
	}
	return l.orderedVotes(st), nil
}

// OptedOut reports the person's opt-out flag.
func (l *Ledger) OptedOut(person string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st, ok := l.people[person]
	if !ok {
		return false, ErrUnknownPerson
	}
	return st.optOut, nil
}

func (l *Ledger) voteCount(st *personState) int {
	n := 0
	for _, on := range st.votes {
		if on {
			n++
		}
	}
	return n
}

func (l *Ledger) orderedVotes(st *personState) []string {
	votes := make([]string, 0, len(st.votes))
	for _, r := range l.restaurants {
		if st.votes[r] {
			votes = append(votes, r)
		}
	}
	return votes
}

package vote

import "time"

// RestaurantTally is the derived per-restaurant result. Rank follows
// competition ranking: tied counts share a rank and the next rank skips.
type RestaurantTally struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Rank  int    `json:"rank"`
}

// MenuView is the person's menu entry as exposed to clients.
type MenuView struct {
	Name  string `json:"name"`
	Price *int64 `json:"price"`
	Note  string `json:"note"`
}

// PersonView is one person's full day state. HasVoted means the person
// either picked at least one restaurant or opted out.
type PersonView struct {
	Name     string   `json:"name"`
	Votes    []string `json:"votes"`
	OptOut   bool     `json:"optOut"`
	HasVoted bool     `json:"hasVoted"`
	Menu     MenuView `json:"menu"`
}

// ConfigView echoes the session configuration to clients.
type ConfigView struct {
	FixedRestaurants []string `json:"fixedRestaurants"`
	MaxVotePerPerson int      `json:"maxVotePerPerson"`
	OptOutLabel      string   `json:"optOutLabel"`
	VoteStartHour    int      `json:"voteStartHour"`
	VoteStartMin     int      `json:"voteStartMin"`
	VoteCutoffHour   int      `json:"voteCutoffHour"`
	VoteCutoffMin    int      `json:"voteCutoffMin"`
	MenuCutoffHour   int      `json:"menuCutoffHour"`
	MenuCutoffMin    int      `json:"menuCutoffMin"`
}

// Snapshot is the full day view. Counts and ranks are never stored; they
// are recomputed from the ledger on every call. Snapshots read without
// the gateway lock and may observe a state mid-mutation, which is
// accepted for display purposes.
type Snapshot struct {
	Date        string            `json:"date"`
	Phase       Phase             `json:"phase"`
	PhaseLabel  string            `json:"phaseLabel"`
	Restaurants []RestaurantTally `json:"restaurants"`
	People      []PersonView      `json:"people"`
	TotalPeople int               `json:"totalPeople"`
	VotedCount  int               `json:"votedCount"`
	NonVoters   []string          `json:"nonVoters"`
	Config      ConfigView        `json:"config"`
	FetchedAt   time.Time         `json:"fetchedAt"`
}

// Snapshot assembles the current day view.
func (g *Gateway) Snapshot() Snapshot {
	now := g.now().In(g.sched.Location)
	cutoffs := g.sched.CutoffsFor(now)
	phase := ResolvePhase(now, cutoffs)

	l := g.ledger
	l.mu.RLock()
	people := make([]PersonView, 0, len(l.order))
	counts := make(map[string]int, len(l.restaurants))
	for _, name := range l.order {
		st := l.people[name]
		votes := l.orderedVotes(st)
		for _, r := range votes {
			counts[r]++
		}
		people = append(people, PersonView{
			Name:     name,
			Votes:    votes,
			OptOut:   st.optOut,
			HasVoted: len(votes) > 0 || st.optOut,
			Menu:     MenuView{Name: st.menu.Name, Price: st.menu.Price, Note: st.menu.Note},
		})
	}
	restaurants := l.Restaurants()
	maxVotes := l.maxVotes
	l.mu.RUnlock()

	tallies := make([]RestaurantTally, len(restaurants))
	for i, r := range restaurants {
		tallies[i] = RestaurantTally{Name: r, Count: counts[r]}
	}
	for i := range tallies {
		rank := 1
		for j := range tallies {
			if tallies[j].Count > tallies[i].Count {
				rank++
			}
		}
		tallies[i].Rank = rank
	}

	voted := 0
	nonVoters := make([]string, 0)
	for _, p := range people {
		if p.HasVoted {
			voted++
		} else {
			nonVoters = append(nonVoters, p.Name)
		}
	}

	return Snapshot{
		Date:        g.sched.DayKey(now),
		Phase:       phase,
		PhaseLabel:  phase.Label(),
		Restaurants: tallies,
		People:      people,
		TotalPeople: len(people),
		VotedCount:  voted,
		NonVoters:   nonVoters,
		Config: ConfigView{
			FixedRestaurants: restaurants,
			MaxVotePerPerson: maxVotes,
			OptOutLabel:      g.optOutLabel,
			VoteStartHour:    g.sched.VoteStart.Hour,
			VoteStartMin:     g.sched.VoteStart.Minute,
			VoteCutoffHour:   g.sched.VoteCutoff.Hour,
			VoteCutoffMin:    g.sched.VoteCutoff.Minute,
			MenuCutoffHour:   g.sched.MenuCutoff.Hour,
			MenuCutoffMin:    g.sched.MenuCutoff.Minute,
		},
		FetchedAt: now,
	}
}

// Winners returns the restaurants sharing the maximum positive count.
func (s Snapshot) Winners() ([]string, int) {
	max := 0
	for _, t := range s.Restaurants {
		if t.Count > max {
			max = t.Count
		}
	}
	if max == 0 {
		return nil, 0
	}
	winners := make([]string, 0, 1)
	for _, t := range s.Restaurants {
		if t.Count == max {
			winners = append(winners, t.Name)
		}
	}
	return winners, max
}

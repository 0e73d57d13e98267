package vote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotTalliesAndRanks(t *testing.T) {
	g := newTestGateway(&stubEventLog{}, at(t, 10, 30))
	g.Ledger().Rebuild([]string{"김철수", "이영희", "박민수", "최지우"})
	ctx := context.Background()

	// 대수식당 2표, 천궁 2표, 160도 1표.
	for _, v := range []struct{ person, restaurant string }{
		{"김철수", "대수식당"},
		{"김철수", "천궁"},
		{"이영희", "대수식당"},
		{"이영희", "160도"},
		{"박민수", "천궁"},
	} {
		_, err := g.Vote(ctx, v.person, v.restaurant, true)
		require.NoError(t, err)
	}
	_, err := g.OptOut(ctx, "최지우", true)
	require.NoError(t, err)

	s := g.Snapshot()
	assert.Equal(t, "2025-06-16", s.Date)
	assert.Equal(t, PhaseVoteActive, s.Phase)
	assert.Equal(t, PhaseVoteActive.Label(), s.PhaseLabel)
	assert.Equal(t, 4, s.TotalPeople)
	assert.Equal(t, 4, s.VotedCount)
	assert.Empty(t, s.NonVoters)

	byName := make(map[string]RestaurantTally)
	for _, tally := range s.Restaurants {
		byName[tally.Name] = tally
	}
	assert.Equal(t, RestaurantTally{Name: "대수식당", Count: 2, Rank: 1}, byName["대수식당"])
	assert.Equal(t, RestaurantTally{Name: "천궁", Count: 2, Rank: 1}, byName["천궁"])
	// Two tied firsts push the next count to rank 3.
	assert.Equal(t, RestaurantTally{Name: "160도", Count: 1, Rank: 3}, byName["160도"])
	assert.Equal(t, RestaurantTally{Name: "한옥집김치찜", Count: 0, Rank: 4}, byName["한옥집김치찜"])

	winners, max := s.Winners()
	assert.Equal(t, []string{"대수식당", "천궁"}, winners)
	assert.Equal(t, 2, max)
}

func TestSnapshotNonVoters(t *testing.T) {
	g := newTestGateway(&stubEventLog{}, at(t, 10, 30))
	g.Ledger().Rebuild([]string{"김철수", "이영희", "박민수"})
	ctx := context.Background()

	_, err := g.Vote(ctx, "김철수", "대수식당", true)
	require.NoError(t, err)
	_, err = g.OptOut(ctx, "이영희", true)
	require.NoError(t, err)

	s := g.Snapshot()
	assert.Equal(t, 2, s.VotedCount)
	assert.Equal(t, []string{"박민수"}, s.NonVoters)

	var optedOut PersonView
	for _, p := range s.People {
		if p.Name == "이영희" {
			optedOut = p
		}
	}
	assert.True(t, optedOut.OptOut)
	assert.True(t, optedOut.HasVoted)
	assert.Empty(t, optedOut.Votes)
}

func TestSnapshotWinnersEmptyWithoutVotes(t *testing.T) {
	g := newTestGateway(&stubEventLog{}, at(t, 10, 30))
	winners, max := g.Snapshot().Winners()
	assert.Nil(t, winners)
	assert.Zero(t, max)
}

func TestSnapshotEchoesConfig(t *testing.T) {
	g := newTestGateway(&stubEventLog{}, at(t, 10, 30))
	cfg := g.Snapshot().Config
	assert.Equal(t, testRestaurants, cfg.FixedRestaurants)
	assert.Equal(t, 3, cfg.MaxVotePerPerson)
	assert.Equal(t, "식사X", cfg.OptOutLabel)
	assert.Equal(t, 11, cfg.VoteCutoffHour)
	assert.Equal(t, 20, cfg.MenuCutoffMin)
}

package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/lunchvote/lunchvote/internal/vote"
)

var testConfig = vote.ConfigView{
	FixedRestaurants: []string{"대수식당", "160도", "한옥집김치찜", "천궁", "두리순대국"},
	MaxVotePerPerson: 3,
	OptOutLabel:      "식사X",
	VoteStartHour:    10,
	VoteCutoffHour:   11,
	MenuCutoffHour:   11,
	MenuCutoffMin:    20,
}

var testNow = time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)

func TestMentionString(t *testing.T) {
	if got := (Mention{Name: "김철수", SlackID: "U123"}).String(); got != "<@U123>" {
		t.Fatalf("mention with id: %q", got)
	}
	if got := (Mention{Name: "김철수"}).String(); got != "김철수" {
		t.Fatalf("mention without id: %q", got)
	}
}

func TestNudgeContents(t *testing.T) {
	s := vote.Snapshot{Config: testConfig}
	text := Nudge(s, testNow, "https://board.example.com")

	for _, want := range []string{
		"2025-06-16",
		"10:00 ~ 11:00",
		"11:00 ~ 11:20",
		"대수식당 / 160도",
		"최대 3개",
		"식사X",
		"https://board.example.com",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("nudge missing %q:\n%s", want, text)
		}
	}
}

func TestNudgeWithoutBoardURL(t *testing.T) {
	text := Nudge(vote.Snapshot{Config: testConfig}, testNow, "")
	if strings.Contains(text, "🔗") {
		t.Fatalf("board link rendered without URL:\n%s", text)
	}
}

func TestNonVotersMentions(t *testing.T) {
	mentions := []Mention{
		{Name: "김철수", SlackID: "U123"},
		{Name: "이영희"},
	}
	text := NonVoters(mentions, testNow, testConfig, "")
	if !strings.Contains(text, "<@U123>") {
		t.Fatalf("missing slack mention:\n%s", text)
	}
	if !strings.Contains(text, "이영희") {
		t.Fatalf("missing plain name fallback:\n%s", text)
	}
}

func TestVoteResultWinners(t *testing.T) {
	s := vote.Snapshot{
		Config: testConfig,
		Restaurants: []vote.RestaurantTally{
			{Name: "대수식당", Count: 3, Rank: 1},
			{Name: "천궁", Count: 3, Rank: 1},
			{Name: "160도", Count: 1, Rank: 3},
		},
	}
	text := VoteResult(s, testNow, "")
	if !strings.Contains(text, "🏆 1위: 대수식당, 천궁 (3표)") {
		t.Fatalf("winner line wrong:\n%s", text)
	}
	if !strings.Contains(text, "- 160도: 1") {
		t.Fatalf("tally line missing:\n%s", text)
	}
}

func TestVoteResultNoVotes(t *testing.T) {
	text := VoteResult(vote.Snapshot{Config: testConfig}, testNow, "")
	if !strings.Contains(text, "(없음)") {
		t.Fatalf("empty winner placeholder missing:\n%s", text)
	}
}

func TestMenuResultFormatsPrices(t *testing.T) {
	price := int64(12000)
	s := vote.Snapshot{
		People: []vote.PersonView{
			{Name: "김철수", Menu: vote.MenuView{Name: "김치찜", Price: &price, Note: "곱빼기"}},
			{Name: "이영희", Menu: vote.MenuView{}},
		},
	}
	text := MenuResult(s, testNow, "")
	if !strings.Contains(text, "- 김철수: 김치찜 (12,000원) · 곱빼기") {
		t.Fatalf("menu line wrong:\n%s", text)
	}
	if strings.Contains(text, "이영희") {
		t.Fatalf("empty menu entry rendered:\n%s", text)
	}
}

func TestMenuResultEmpty(t *testing.T) {
	text := MenuResult(vote.Snapshot{}, testNow, "")
	if !strings.Contains(text, "입력된 메뉴가 없습니다") {
		t.Fatalf("empty roundup placeholder missing:\n%s", text)
	}
}

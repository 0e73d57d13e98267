package notify

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lunchvote/lunchvote/internal/vote"
)

var krPrinter = message.NewPrinter(language.Korean)

// Mention is one person to address in a reminder. A known Slack user id
// becomes a real @-mention, otherwise the plain name is used.
type Mention struct {
	Name    string
	SlackID string
}

func (m Mention) String() string {
	if m.SlackID != "" {
		return "<@" + m.SlackID + ">"
	}
	return m.Name
}

func dateLine(t time.Time) string {
	return t.Format("2006-01-02 (Mon)")
}

func window(startH, startM, endH, endM int) string {
	return fmt.Sprintf("%02d:%02d ~ %02d:%02d", startH, startM, endH, endM)
}

func boardLink(boardURL string) string {
	if boardURL == "" {
		return ""
	}
	return "\n\n🔗 " + boardURL
}

// Nudge is the morning announcement that voting is open.
func Nudge(s vote.Snapshot, now time.Time, boardURL string) string {
	cfg := s.Config
	var b strings.Builder
	b.WriteString("📣 [점심 투표 / 메뉴 입력 안내]\n")
	b.WriteString("────────────────\n")
	fmt.Fprintf(&b, "🗓 %s\n\n", dateLine(now))
	fmt.Fprintf(&b, "⏰ 식당 투표/%s: %s\n", cfg.OptOutLabel,
		window(cfg.VoteStartHour, cfg.VoteStartMin, cfg.VoteCutoffHour, cfg.VoteCutoffMin))
	fmt.Fprintf(&b, "⏰ 메뉴 입력: %s\n\n",
		window(cfg.VoteCutoffHour, cfg.VoteCutoffMin, cfg.MenuCutoffHour, cfg.MenuCutoffMin))
	fmt.Fprintf(&b, "✅ 식당: %s\n", strings.Join(cfg.FixedRestaurants, " / "))
	fmt.Fprintf(&b, "- 중복 선택 가능 (최대 %d개)\n", cfg.MaxVotePerPerson)
	fmt.Fprintf(&b, "- 미참여 시 '%s' 체크", cfg.OptOutLabel)
	b.WriteString(boardLink(boardURL))
	return b.String()
}

// NonVoters reminds people who have neither voted nor opted out.
func NonVoters(mentions []Mention, now time.Time, cfg vote.ConfigView, boardURL string) string {
	names := make([]string, len(mentions))
	for i, m := range mentions {
		names[i] = m.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚨 [미참여자 안내] 점심 투표/%s\n", cfg.OptOutLabel)
	b.WriteString("────────────────\n")
	fmt.Fprintf(&b, "🗓 %s\n\n", dateLine(now))
	fmt.Fprintf(&b, "⏰ 투표 시간: %s\n\n",
		window(cfg.VoteStartHour, cfg.VoteStartMin, cfg.VoteCutoffHour, cfg.VoteCutoffMin))
	fmt.Fprintf(&b, "아직 식당 투표/%s를 하지 않음:\n%s", cfg.OptOutLabel, strings.Join(names, " "))
	b.WriteString(boardLink(boardURL))
	return b.String()
}

// VoteResult is the vote-cutoff summary with winners and per-restaurant
// counts. Opt-outs are excluded from the tally by construction.
func VoteResult(s vote.Snapshot, now time.Time, boardURL string) string {
	winners, max := s.Winners()
	winnerText := "(없음)"
	if len(winners) > 0 {
		winnerText = fmt.Sprintf("%s (%d표)", strings.Join(winners, ", "), max)
	}

	lines := make([]string, len(s.Restaurants))
	for i, t := range s.Restaurants {
		lines[i] = fmt.Sprintf("- %s: %d", t.Name, t.Count)
	}

	var b strings.Builder
	b.WriteString("📌 [투표 결과] 점심 식당\n")
	b.WriteString("────────────────\n")
	fmt.Fprintf(&b, "🗓 %s\n\n", dateLine(now))
	fmt.Fprintf(&b, "🏆 1위: %s\n\n", winnerText)
	fmt.Fprintf(&b, "📊 득표 현황\n%s", strings.Join(lines, "\n"))
	b.WriteString(boardLink(boardURL))
	return b.String()
}

// MenuResult is the menu-cutoff roundup, aggregated from the current day
// state rather than the log.
func MenuResult(s vote.Snapshot, now time.Time, boardURL string) string {
	var lines []string
	for _, p := range s.People {
		m := p.Menu
		if m.Name == "" && m.Price == nil && m.Note == "" {
			continue
		}
		line := "- " + p.Name + ": " + m.Name
		if m.Price != nil {
			line += krPrinter.Sprintf(" (%d원)", *m.Price)
		}
		if m.Note != "" {
			line += " · " + m.Note
		}
		lines = append(lines, line)
	}

	var b strings.Builder
	b.WriteString("📌 [메뉴 취합 결과]\n")
	b.WriteString("────────────────\n")
	fmt.Fprintf(&b, "🗓 %s\n\n", dateLine(now))
	if len(lines) > 0 {
		fmt.Fprintf(&b, "🍽 오늘 주문 내역\n%s", strings.Join(lines, "\n"))
	} else {
		b.WriteString("⚠️ 입력된 메뉴가 없습니다.")
	}
	b.WriteString(boardLink(boardURL))
	return b.String()
}

// Package vote implements the daily lunch-vote session core: phase
// resolution, the per-person day ledger, the single-writer mutation
// gateway and the log consolidation pass.
package vote

import (
	"errors"
	"time"
)

// Phase is the stage of the daily voting cycle.
type Phase string

const (
	PhaseBeforeStart Phase = "before_start"
	PhaseVoteActive  Phase = "vote_active"
	PhaseMenuActive  Phase = "menu_active"
	PhaseAllLocked   Phase = "all_locked"
)

// Index returns the position of the phase in the daily ordering. Phases
// only move forward within a day.
func (p Phase) Index() int {
	switch p {
	case PhaseBeforeStart:
		return 0
	case PhaseVoteActive:
		return 1
	case PhaseMenuActive:
		return 2
	case PhaseAllLocked:
		return 3
	}
	return -1
}

// Label returns the operator-facing description of the phase.
func (p Phase) Label() string {
	switch p {
	case PhaseBeforeStart:
		return "투표 시작 전"
	case PhaseVoteActive:
		return "식당 투표 진행 중"
	case PhaseMenuActive:
		return "메뉴 입력 진행 중"
	case PhaseAllLocked:
		return "오늘 투표 마감"
	}
	return string(p)
}

// Action records whether a log entry checked or unchecked its target.
type Action string

const (
	ActionChecked   Action = "CHECKED"
	ActionUnchecked Action = "UNCHECKED"
)

// ActionFor maps a checkbox state to its log action.
func ActionFor(checked bool) Action {
	if checked {
		return ActionChecked
	}
	return ActionUnchecked
}

// Menu is one person's menu entry for the day. A nil Price means the
// price column was left empty.
type Menu struct {
	Name  string
	Price *int64
	Note  string
}

// Empty reports whether no menu field is filled in.
func (m Menu) Empty() bool {
	return m.Name == "" && m.Price == nil && m.Note == ""
}

// VoteEvent is one append-only row of the restaurant vote log. Target is
// either a restaurant name or the opt-out label. Closed is the only field
// ever rewritten, by the consolidation pass.
type VoteEvent struct {
	ID     string
	Person string
	Target string
	DayKey string
	Action Action
	At     time.Time
	Cutoff time.Time
	Closed bool
	Note   string
	Source string
}

// MenuEvent is one append-only row of the menu log. Restaurants holds the
// person's checked restaurants at the time of the edit, comma-joined.
type MenuEvent struct {
	ID          string
	Person      string
	Restaurants string
	MenuName    string
	Price       *int64
	DayKey      string
	At          time.Time
	Cutoff      time.Time
	Closed      bool
	Note        string
	Source      string
}

// Sentinel errors surfaced by the ledger and the gateway. The HTTP
// boundary maps them onto the flat error envelope.
var (
	ErrUnknownPerson     = errors.New("vote: unknown person")
	ErrUnknownRestaurant = errors.New("vote: unknown restaurant")
	ErrPastCutoff        = errors.New("vote: past vote cutoff")
	ErrVoteLimit         = errors.New("vote: vote limit reached")
	ErrOptedOut          = errors.New("vote: person opted out")
	ErrLockTimeout       = errors.New("vote: lock wait timed out")
)

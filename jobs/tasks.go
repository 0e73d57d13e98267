// Package jobs wires the daily scheduled tasks onto Asynq. The API
// process consumes the queue (it owns the day ledger); the worker binary
// only runs the cron scheduler that enqueues tasks at their local
// wall-clock times.
package jobs

import "github.com/hibiken/asynq"

// QueueDefault is the queue all vote tasks ride on.
const QueueDefault = "default"

// Task types. Each maps to one of the original daily triggers and can be
// enqueued on demand for manual recovery.
const (
	TaskVoteRebuild      = "vote:rebuild"
	TaskVoteReset        = "vote:reset"
	TaskVoteCloseVote    = "vote:close_vote"
	TaskVoteCloseMenu    = "vote:close_menu"
	TaskNotifyNudge      = "notify:nudge"
	TaskNotifyNonVoters  = "notify:nonvoters"
	TaskNotifyVoteResult = "notify:vote_result"
	TaskNotifyMenuResult = "notify:menu_result"
)

// AllTaskTypes lists every registered task type, for manual enqueue
// validation.
var AllTaskTypes = []string{
	TaskVoteRebuild,
	TaskVoteReset,
	TaskVoteCloseVote,
	TaskVoteCloseMenu,
	TaskNotifyNudge,
	TaskNotifyNonVoters,
	TaskNotifyVoteResult,
	TaskNotifyMenuResult,
}

// NewTask builds a payload-free task of the given type. None of the
// daily tasks carry parameters; they always act on "today".
func NewTask(taskType string) *asynq.Task {
	return asynq.NewTask(taskType, nil)
}

package orchestrator

import (
	"time"

	"github.com/strideapp/stride/models"
)

// Effect is one side-effect instruction emitted by a command for the
// external collaborators to execute. The core considers its own state
// change committed without waiting for any effect to run; collaborators
// may apply them asynchronously and retry independently.
type Effect interface {
	effect()
}

// PersistTask instructs the storage collaborator to write the task.
type PersistTask struct {
	Task models.Task
}

// RemoveTask instructs the storage collaborator to delete the task.
type RemoveTask struct {
	TaskID string
}

// ScheduleReminder instructs the notification collaborator to arm a
// reminder notification.
type ScheduleReminder struct {
	TaskID string
	Title  string
	At     time.Time
}

// ScheduleDeadline instructs the notification collaborator to arm a
// deadline notification.
type ScheduleDeadline struct {
	TaskID string
	Title  string
	At     time.Time
}

// CancelNotification instructs the notification collaborator to cancel
// the identified notification. Cancelling an absent notification is a
// no-op, which keeps reconciliation idempotent.
type CancelNotification struct {
	Identifier string
}

// TaskUnblocked is an informational event: completing a prerequisite
// lifted the named task's start gate. No status change is performed; the
// task stays pending until explicitly started.
type TaskUnblocked struct {
	TaskID        string
	PrerequisiteID string
}

// PointsAwarded carries a freshly minted ledger entry for the points
// collaborator to append.
type PointsAwarded struct {
	Entry models.PointsEntry
}

func (PersistTask) effect()        {}
func (RemoveTask) effect()         {}
func (ScheduleReminder) effect()   {}
func (ScheduleDeadline) effect()   {}
func (CancelNotification) effect() {}
func (TaskUnblocked) effect()      {}
func (PointsAwarded) effect()      {}

// Result is the outcome of one orchestrator command: the primary task
// after the command, any successor task materialized by recurrence, and
// the ordered effect list for the collaborators.
type Result struct {
	Task    models.Task
	Next    *models.Task
	Effects []Effect
}

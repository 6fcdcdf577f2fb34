// Package lifecycle enforces the task status state machine. It knows
// which transitions are legal; the side effects each transition requires
// (timestamps, notification changes) are applied by the orchestrator.
package lifecycle

import (
	"fmt"

	"github.com/strideapp/stride/models"
)

// StateTransitionError reports an illegal lifecycle move. It is always
// rejected, never retried.
type StateTransitionError struct {
	From models.TaskStatus
	To   models.TaskStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %q to %q", e.From, e.To)
}

// transitions maps a source status to the set of statuses reachable from
// it. Completed and cancelled are terminal; reopening a completed task is
// an explicit uncomplete command, not a table transition.
var transitions = map[models.TaskStatus]map[models.TaskStatus]bool{
	models.StatusPending: {
		models.StatusInProgress: true,
		models.StatusCompleted:  true,
		models.StatusCancelled:  true,
	},
	models.StatusInProgress: {
		models.StatusOnHold:    true,
		models.StatusCompleted: true,
		models.StatusCancelled: true,
	},
	models.StatusOnHold: {
		models.StatusInProgress: true,
		models.StatusCompleted:  true,
		models.StatusCancelled:  true,
	},
	models.StatusCompleted: {},
	models.StatusCancelled: {},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to models.TaskStatus) bool {
	return transitions[from][to]
}

// Transition validates the move and returns *StateTransitionError when it
// is not in the table. Gate conditions beyond the table, such as the
// prerequisite check before entering in-progress, belong to the caller.
func Transition(from, to models.TaskStatus) error {
	if !CanTransition(from, to) {
		return &StateTransitionError{From: from, To: to}
	}
	return nil
}

// Initial returns the status every newly created task starts in.
func Initial() models.TaskStatus {
	return models.StatusPending
}

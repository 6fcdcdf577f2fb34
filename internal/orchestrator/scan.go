package orchestrator

import (
	"sort"

	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/notify"
)

// CheckOverdue returns the active, non-completed tasks whose due date
// has passed. Reporting only: no status is ever force-transitioned.
func (o *Orchestrator) CheckOverdue() []models.Task {
	o.mu.RLock()
	defer o.mu.RUnlock()

	now := o.clock()
	var overdue []models.Task
	for _, t := range o.tasks {
		if t.IsOverdue(now) {
			overdue = append(overdue, t)
		}
	}
	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].DueDate.Before(*overdue[j].DueDate)
	})
	return overdue
}

// ReconcileNotifications re-derives the notification set that should
// exist from the current reminder and due dates and emits cancel plus
// reschedule instructions. Cancelling is unconditional and scheduling
// uses deterministic identifiers, so running it twice converges on the
// same state.
func (o *Orchestrator) ReconcileNotifications() []Effect {
	o.mu.RLock()
	defer o.mu.RUnlock()

	ids := make([]string, 0, len(o.tasks))
	for id := range o.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var effects []Effect
	for _, id := range ids {
		task := o.tasks[id]
		effects = append(effects,
			CancelNotification{Identifier: notify.ReminderID(id)},
			CancelNotification{Identifier: notify.DeadlineID(id)},
		)
		if !task.IsActive() || task.Status == models.StatusCompleted {
			continue
		}
		effects = append(effects, o.armNotifications(task)...)
	}
	return effects
}

package orchestrator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/strideapp/stride/internal/lifecycle"
	"github.com/strideapp/stride/internal/recurrence"
	"github.com/strideapp/stride/internal/scoring"
	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/notify"
	"github.com/strideapp/stride/types"
)

// Start moves the task into in-progress, from pending or on-hold. The
// prerequisite gate is re-checked on every entry: the transition fails
// when any prerequisite is not completed.
func (o *Orchestrator) Start(id string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, ok := o.tasks[id]
	if !ok {
		return Result{}, types.NotFound("task", id)
	}
	if err := lifecycle.Transition(task.Status, models.StatusInProgress); err != nil {
		return Result{}, err
	}
	if !o.graph.CanStart(id, o.isCompleted) {
		return Result{}, &types.ValidationError{Field: "prerequisites", Reason: "not all prerequisites are completed"}
	}

	now := o.clock()
	task.Status = models.StatusInProgress
	if task.StartedAt == nil {
		task.StartedAt = &now
	}
	task.UpdatedAt = now
	o.tasks[id] = task

	return Result{Task: task, Effects: []Effect{PersistTask{Task: task}}}, nil
}

// Pause moves an in-progress task onto hold. No side effects beyond the
// status write.
func (o *Orchestrator) Pause(id string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, ok := o.tasks[id]
	if !ok {
		return Result{}, types.NotFound("task", id)
	}
	if err := lifecycle.Transition(task.Status, models.StatusOnHold); err != nil {
		return Result{}, err
	}
	task.Status = models.StatusOnHold
	task.UpdatedAt = o.clock()
	o.tasks[id] = task

	return Result{Task: task, Effects: []Effect{PersistTask{Task: task}}}, nil
}

// Cancel moves any non-terminal task to cancelled and drops its
// scheduled notifications.
func (o *Orchestrator) Cancel(id string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, ok := o.tasks[id]
	if !ok {
		return Result{}, types.NotFound("task", id)
	}
	if err := lifecycle.Transition(task.Status, models.StatusCancelled); err != nil {
		return Result{}, err
	}
	task.Status = models.StatusCancelled
	task.UpdatedAt = o.clock()
	o.tasks[id] = task

	effects := []Effect{
		PersistTask{Task: task},
		CancelNotification{Identifier: notify.ReminderID(id)},
		CancelNotification{Identifier: notify.DeadlineID(id)},
	}
	return Result{Task: task, Effects: effects}, nil
}

// Complete finishes the task. In order it: performs the lifecycle
// transition and stamps the completion time, cancels the task's own
// notifications, materializes the next occurrence of a recurring series
// when one is due, emits informational unblock events for dependents
// whose start gate the completion lifted, and awards points when a stats
// provider is configured. Dependents are never auto-started.
func (o *Orchestrator) Complete(id string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, ok := o.tasks[id]
	if !ok {
		return Result{}, types.NotFound("task", id)
	}
	if err := lifecycle.Transition(task.Status, models.StatusCompleted); err != nil {
		return Result{}, err
	}

	now := o.clock()
	task.Status = models.StatusCompleted
	task.CompletedAt = &now
	task.UpdatedAt = now
	if task.StartedAt != nil {
		if minutes := int(now.Sub(*task.StartedAt).Minutes()); minutes > 0 {
			task.ActualMinutes = minutes
		}
	}
	o.tasks[id] = task

	effects := []Effect{
		PersistTask{Task: task},
		CancelNotification{Identifier: notify.ReminderID(id)},
		CancelNotification{Identifier: notify.DeadlineID(id)},
	}

	var next *models.Task
	if task.IsRecurring && task.Recurrence != nil &&
		recurrence.ShouldMaterializeNext(*task.Recurrence, task, o.enforceCap) {
		if nextDate, ok := recurrence.NextOccurrence(*task.Recurrence, recurrenceReference(task)); ok {
			successor := recurrence.MaterializeNext(task, nextDate)
			successor.CreatedAt = now
			successor.UpdatedAt = now
			o.tasks[successor.ID] = successor
			next = &successor
			effects = append(effects, PersistTask{Task: successor})
			effects = append(effects, o.armNotifications(successor)...)
		}
	}

	for _, depID := range o.graph.Dependents(id) {
		if o.graph.CanStart(depID, o.isCompleted) {
			effects = append(effects, TaskUnblocked{TaskID: depID, PrerequisiteID: id})
		}
	}

	if o.stats != nil {
		effects = append(effects, PointsAwarded{Entry: o.awardFor(task, now)})
	}

	return Result{Task: task, Next: next, Effects: effects}, nil
}

// Uncomplete reopens a completed task: status back to pending, completion
// timestamp and actual duration cleared, notifications re-armed. It is an
// explicit command, deliberately outside the lifecycle table.
func (o *Orchestrator) Uncomplete(id string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, ok := o.tasks[id]
	if !ok {
		return Result{}, types.NotFound("task", id)
	}
	if task.Status != models.StatusCompleted {
		return Result{}, &lifecycle.StateTransitionError{From: task.Status, To: models.StatusPending}
	}

	task.Status = models.StatusPending
	task.CompletedAt = nil
	task.ActualMinutes = 0
	task.UpdatedAt = o.clock()
	o.tasks[id] = task

	effects := []Effect{PersistTask{Task: task}}
	effects = append(effects, o.armNotifications(task)...)
	return Result{Task: task, Effects: effects}, nil
}

// awardFor builds the points ledger entry for a completion. The
// multiplier set is assembled here, outside the pure fold: level and
// streak and consistency from the stats provider, time of day from the
// injected clock.
func (o *Orchestrator) awardFor(task models.Task, now time.Time) models.PointsEntry {
	stats := o.stats.Stats(task.OwnerID)
	multipliers := []models.PointsMultiplier{
		scoring.ForLevel(stats.Level),
		scoring.ForStreak(stats.StreakDays),
		scoring.ForConsistency(stats.Consistency),
		scoring.ForTimeOfDay(now.Hour()),
	}

	source := models.SourceTask
	if task.ParentID != nil {
		source = models.SourceSubtask
	}
	amount := scoring.ComputePoints(source.Weight(), 1, multipliers, stats.Level)
	xp := scoring.ComputeXP(source.Weight(), 1, multipliers, stats.Level)

	return models.PointsEntry{
		ID:        uuid.NewString(),
		UserID:    task.OwnerID,
		Amount:    amount,
		XP:        xp,
		Source:    source,
		SourceID:  task.ID,
		Reason:    fmt.Sprintf("Completed task: %s", task.Title),
		CreatedAt: now,
	}
}

// recurrenceReference is the date the next occurrence advances from.
func recurrenceReference(task models.Task) time.Time {
	if task.DueDate != nil {
		return *task.DueDate
	}
	return *task.CompletedAt
}

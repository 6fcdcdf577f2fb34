// Package orchestrator composes the dependency graph, the lifecycle
// state machine, the recurrence engine and the scoring engine behind
// task-level commands. Every command validates and cycle-checks before
// mutating anything, then returns the side-effect instructions for the
// storage and notification collaborators to execute.
package orchestrator

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/strideapp/stride/internal/graph"
	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/notify"
	"github.com/strideapp/stride/types"
)

// UserStats are the raw scoring signals for one user. The consistency
// rate is distinct active days in the trailing 30-day window divided by
// 30, computed by whoever implements StatsProvider.
type UserStats struct {
	Level       int
	StreakDays  int
	Consistency float64
}

// StatsProvider supplies the scoring signals for points awards. When no
// provider is configured, completing a task awards no points.
type StatsProvider interface {
	Stats(userID string) UserStats
}

// Orchestrator owns the in-memory task table and the dependency graph as
// one unit under a single lock: edge mutations and lifecycle transitions
// are serialized, reads may proceed concurrently with each other.
type Orchestrator struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
	graph *graph.DependencyGraph

	clock      func() time.Time
	stats      StatsProvider
	enforceCap bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock injects the wall clock, used for timestamps and the
// time-of-day scoring multiplier. Tests pin it.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// WithStatsProvider enables points awards on completion.
func WithStatsProvider(p StatsProvider) Option {
	return func(o *Orchestrator) { o.stats = p }
}

// WithRecurrenceCapEnforcement toggles the max-occurrences cap on
// recurring series. On by default.
func WithRecurrenceCapEnforcement(enforce bool) Option {
	return func(o *Orchestrator) { o.enforceCap = enforce }
}

// New returns an empty orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		tasks:      make(map[string]models.Task),
		graph:      graph.New(),
		clock:      func() time.Time { return time.Now().UTC() },
		enforceCap: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load seeds the orchestrator from persisted tasks, rebuilding the
// dependency graph from each task's prerequisite list. Edges that would
// form a cycle (a data-integrity bug in the stored data) are skipped and
// reported; all well-formed edges are still loaded.
func (o *Orchestrator) Load(tasks []models.Task) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.tasks = make(map[string]models.Task, len(tasks))
	o.graph = graph.New()
	for _, t := range tasks {
		o.tasks[t.ID] = t
	}
	var errs []error
	for _, t := range tasks {
		for _, prereqID := range t.Prerequisites {
			if _, ok := o.tasks[prereqID]; !ok {
				errs = append(errs, types.NotFound("prerequisite", prereqID))
				continue
			}
			if err := o.graph.AddPrerequisite(t.ID, prereqID); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// CreateRequest carries the caller-supplied fields for a new task.
type CreateRequest struct {
	Title            string
	Description      string
	Priority         models.TaskPriority
	DueDate          *time.Time
	ReminderDate     *time.Time
	Recurrence       *models.RecurrencePattern
	ParentID         *string
	Prerequisites    []string
	Category         string
	Tags             []string
	EstimatedMinutes int
	Location         string
	URL              string
	OwnerID          string
}

// Create validates the request, admits the task with status pending and
// returns persist and notification-scheduling effects. Prerequisite and
// parent references must already exist.
func (o *Orchestrator) Create(req CreateRequest) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if strings.TrimSpace(req.Title) == "" {
		return Result{}, &types.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if req.ParentID != nil {
		if _, ok := o.tasks[*req.ParentID]; !ok {
			return Result{}, types.NotFound("parent task", *req.ParentID)
		}
	}
	for _, prereqID := range req.Prerequisites {
		if _, ok := o.tasks[prereqID]; !ok {
			return Result{}, types.NotFound("prerequisite", prereqID)
		}
	}

	task := *models.NewTask(uuid.NewString(), strings.TrimSpace(req.Title))
	now := o.clock()
	task.CreatedAt = now
	task.UpdatedAt = now
	task.Description = req.Description
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	task.DueDate = req.DueDate
	task.ReminderDate = req.ReminderDate
	if req.Recurrence != nil {
		task.IsRecurring = true
		task.Recurrence = req.Recurrence
		task.OccurrenceNumber = 1
	}
	task.Category = req.Category
	task.Tags = req.Tags
	task.EstimatedMinutes = req.EstimatedMinutes
	task.Location = req.Location
	task.URL = req.URL
	task.OwnerID = req.OwnerID

	var effects []Effect

	if req.ParentID != nil {
		task.ParentID = req.ParentID
		parent := o.tasks[*req.ParentID]
		parent.SubtaskIDs = appendMissing(parent.SubtaskIDs, task.ID)
		parent.UpdatedAt = now
		o.tasks[parent.ID] = parent
		effects = append(effects, PersistTask{Task: parent})
	}
	for _, prereqID := range req.Prerequisites {
		// A fresh node cannot close a cycle, so this cannot fail.
		if err := o.graph.AddPrerequisite(task.ID, prereqID); err != nil {
			return Result{}, err
		}
		task.Prerequisites = appendMissing(task.Prerequisites, prereqID)
		prereq := o.tasks[prereqID]
		prereq.Dependents = appendMissing(prereq.Dependents, task.ID)
		prereq.UpdatedAt = now
		o.tasks[prereqID] = prereq
		effects = append(effects, PersistTask{Task: prereq})
	}

	o.tasks[task.ID] = task
	effects = append(effects, PersistTask{Task: task})
	effects = append(effects, o.armNotifications(task)...)

	return Result{Task: task, Effects: effects}, nil
}

// UpdateRequest carries optional field updates; nil pointers leave the
// field untouched.
type UpdateRequest struct {
	Title            *string
	Description      *string
	Priority         *models.TaskPriority
	DueDate          **time.Time
	ReminderDate     **time.Time
	Category         *string
	Tags             *[]string
	EstimatedMinutes *int
	Location         *string
	URL              *string
}

// Update applies field-level changes and re-arms notifications when a
// due or reminder date changed.
func (o *Orchestrator) Update(id string, req UpdateRequest) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, ok := o.tasks[id]
	if !ok {
		return Result{}, types.NotFound("task", id)
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return Result{}, &types.ValidationError{Field: "title", Reason: "must not be empty"}
	}

	datesChanged := false
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
		datesChanged = true
	}
	if req.ReminderDate != nil {
		task.ReminderDate = *req.ReminderDate
		datesChanged = true
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.Tags != nil {
		task.Tags = *req.Tags
	}
	if req.EstimatedMinutes != nil {
		task.EstimatedMinutes = *req.EstimatedMinutes
	}
	if req.Location != nil {
		task.Location = *req.Location
	}
	if req.URL != nil {
		task.URL = *req.URL
	}
	task.UpdatedAt = o.clock()
	o.tasks[id] = task

	effects := []Effect{PersistTask{Task: task}}
	if datesChanged {
		effects = append(effects,
			CancelNotification{Identifier: notify.ReminderID(id)},
			CancelNotification{Identifier: notify.DeadlineID(id)},
		)
		effects = append(effects, o.armNotifications(task)...)
	}
	return Result{Task: task, Effects: effects}, nil
}

// Delete removes the task, every graph edge touching it and its weak
// references from parent, subtasks, prerequisites and dependents.
// Scheduled notifications are cancelled.
func (o *Orchestrator) Delete(id string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.deleteLocked(id)
}

func (o *Orchestrator) deleteLocked(id string) (Result, error) {
	task, ok := o.tasks[id]
	if !ok {
		return Result{}, types.NotFound("task", id)
	}
	now := o.clock()
	var effects []Effect

	if task.ParentID != nil {
		if parent, ok := o.tasks[*task.ParentID]; ok {
			parent.SubtaskIDs = removeString(parent.SubtaskIDs, id)
			parent.UpdatedAt = now
			o.tasks[parent.ID] = parent
			effects = append(effects, PersistTask{Task: parent})
		}
	}
	for _, childID := range task.SubtaskIDs {
		if child, ok := o.tasks[childID]; ok {
			child.ParentID = nil
			child.UpdatedAt = now
			o.tasks[childID] = child
			effects = append(effects, PersistTask{Task: child})
		}
	}
	for _, prereqID := range task.Prerequisites {
		if prereq, ok := o.tasks[prereqID]; ok {
			prereq.Dependents = removeString(prereq.Dependents, id)
			prereq.UpdatedAt = now
			o.tasks[prereqID] = prereq
			effects = append(effects, PersistTask{Task: prereq})
		}
	}
	for _, depID := range task.Dependents {
		if dep, ok := o.tasks[depID]; ok {
			dep.Prerequisites = removeString(dep.Prerequisites, id)
			dep.UpdatedAt = now
			o.tasks[depID] = dep
			effects = append(effects, PersistTask{Task: dep})
		}
	}

	o.graph.RemoveTask(id)
	delete(o.tasks, id)

	effects = append(effects,
		CancelNotification{Identifier: notify.ReminderID(id)},
		CancelNotification{Identifier: notify.DeadlineID(id)},
		RemoveTask{TaskID: id},
	)
	return Result{Task: task, Effects: effects}, nil
}

// BulkDelete deletes each listed task. The batch is not atomic: items
// that fail are reported and the rest are still applied.
func (o *Orchestrator) BulkDelete(ids []string) ([]Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var results []Result
	var errs []error
	for _, id := range ids {
		res, err := o.deleteLocked(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// Archive soft-deletes the task: it keeps its data but leaves every
// active query, and its notifications are cancelled.
func (o *Orchestrator) Archive(id string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, ok := o.tasks[id]
	if !ok {
		return Result{}, types.NotFound("task", id)
	}
	task.Archived = true
	task.UpdatedAt = o.clock()
	o.tasks[id] = task

	effects := []Effect{
		PersistTask{Task: task},
		CancelNotification{Identifier: notify.ReminderID(id)},
		CancelNotification{Identifier: notify.DeadlineID(id)},
	}
	return Result{Task: task, Effects: effects}, nil
}

// Unarchive reverses Archive. Notifications are re-armed only when the
// task is not already completed.
func (o *Orchestrator) Unarchive(id string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, ok := o.tasks[id]
	if !ok {
		return Result{}, types.NotFound("task", id)
	}
	task.Archived = false
	task.UpdatedAt = o.clock()
	o.tasks[id] = task

	effects := []Effect{PersistTask{Task: task}}
	if task.Status != models.StatusCompleted {
		effects = append(effects, o.armNotifications(task)...)
	}
	return Result{Task: task, Effects: effects}, nil
}

// Get returns a copy of the task.
func (o *Orchestrator) Get(id string) (models.Task, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	task, ok := o.tasks[id]
	if !ok {
		return models.Task{}, types.NotFound("task", id)
	}
	return task, nil
}

// List returns every task matching the filter.
func (o *Orchestrator) List(filter models.TaskFilter) []models.Task {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out []models.Task
	for _, t := range o.tasks {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// CanStart reports whether every prerequisite of the task is completed.
func (o *Orchestrator) CanStart(id string) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if _, ok := o.tasks[id]; !ok {
		return false, types.NotFound("task", id)
	}
	return o.graph.CanStart(id, o.isCompleted), nil
}

// Dependents returns the tasks that list id as a prerequisite.
func (o *Orchestrator) Dependents(id string) ([]string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if _, ok := o.tasks[id]; !ok {
		return nil, types.NotFound("task", id)
	}
	return o.graph.Dependents(id), nil
}

// isCompleted is the gate predicate handed to the graph. Callers must
// hold at least the read lock.
func (o *Orchestrator) isCompleted(id string) bool {
	t, ok := o.tasks[id]
	return ok && t.Status == models.StatusCompleted
}

// armNotifications emits scheduling effects for whichever of the task's
// reminder and due dates lie in the future.
func (o *Orchestrator) armNotifications(task models.Task) []Effect {
	now := o.clock()
	var effects []Effect
	if task.ReminderDate != nil && task.ReminderDate.After(now) {
		effects = append(effects, ScheduleReminder{TaskID: task.ID, Title: task.Title, At: *task.ReminderDate})
	}
	if task.DueDate != nil && task.DueDate.After(now) {
		effects = append(effects, ScheduleDeadline{TaskID: task.ID, Title: task.Title, At: *task.DueDate})
	}
	return effects
}

func appendMissing(slice []string, item string) []string {
	for _, s := range slice {
		if s == item {
			return slice
		}
	}
	return append(slice, item)
}

func removeString(slice []string, item string) []string {
	out := make([]string, 0, len(slice))
	for _, s := range slice {
		if s != item {
			out = append(out, s)
		}
	}
	return out
}

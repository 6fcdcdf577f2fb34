package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TaskStatus represents the possible statuses of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusOnHold     TaskStatus = "on-hold"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// IsTerminal reports whether the status has no outgoing lifecycle transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TaskPriority represents the priority levels of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// RecurrenceFrequency is the repeat rule of a recurring task.
type RecurrenceFrequency string

const (
	FrequencyDaily   RecurrenceFrequency = "daily"
	FrequencyWeekly  RecurrenceFrequency = "weekly"
	FrequencyMonthly RecurrenceFrequency = "monthly"
	FrequencyCustom  RecurrenceFrequency = "custom"
)

// RecurrencePattern describes how a recurring task repeats.
// IntervalDays is only consulted for FrequencyCustom.
// EndDate and MaxOccurrences are both optional end conditions; whichever
// is hit first stops the series.
type RecurrencePattern struct {
	Frequency      RecurrenceFrequency `json:"frequency" validate:"required,oneof=daily weekly monthly custom"`
	IntervalDays   int                 `json:"intervalDays,omitempty" validate:"omitempty,min=1"`
	EndDate        *time.Time          `json:"endDate,omitempty"`
	MaxOccurrences int                 `json:"maxOccurrences,omitempty" validate:"omitempty,min=1"`
}

// Task represents a unit of work.
//
// Prerequisites holds the IDs of tasks that must be completed before this
// task may start. Dependents is the derived reverse index and is maintained
// by the store and orchestrator, never set by callers directly.
type Task struct {
	ID          string       `json:"id" validate:"required,uuid4"`
	Title       string       `json:"title" validate:"required,min=1,max=255"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status" validate:"required,oneof=pending in-progress on-hold completed cancelled"`
	Priority    TaskPriority `json:"priority" validate:"required,oneof=low medium high urgent"`

	DueDate      *time.Time `json:"dueDate,omitempty"`
	ReminderDate *time.Time `json:"reminderDate,omitempty"`

	IsRecurring      bool               `json:"isRecurring,omitempty"`
	Recurrence       *RecurrencePattern `json:"recurrence,omitempty"`
	OccurrenceNumber int                `json:"occurrenceNumber,omitempty"`

	ParentID      *string  `json:"parentId,omitempty" validate:"omitempty,uuid4"` // weak back-reference to owning task
	SubtaskIDs    []string `json:"subtaskIds,omitempty" validate:"dive,uuid4"`
	Prerequisites []string `json:"prerequisites,omitempty" validate:"dive,uuid4"`
	Dependents    []string `json:"dependents,omitempty" validate:"dive,uuid4"`

	Category         string   `json:"category,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	EstimatedMinutes int      `json:"estimatedMinutes,omitempty" validate:"omitempty,min=0"`
	ActualMinutes    int      `json:"actualMinutes,omitempty" validate:"omitempty,min=0"`
	Location         string   `json:"location,omitempty"`
	URL              string   `json:"url,omitempty"`
	OwnerID          string   `json:"ownerId,omitempty"`

	Archived bool `json:"archived,omitempty"`

	CreatedAt   time.Time  `json:"createdAt" validate:"required"`
	UpdatedAt   time.Time  `json:"updatedAt" validate:"required"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// IsActive reports whether the task participates in "active" queries:
// not archived and not cancelled.
func (t Task) IsActive() bool {
	return !t.Archived && t.Status != StatusCancelled
}

// IsOverdue reports whether the task has a due date in the past and is
// still active and not completed.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || !t.IsActive() || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// TaskList represents a collection of tasks as persisted on disk.
type TaskList struct {
	Tasks      []Task `json:"tasks" validate:"dive"`
	TotalCount int    `json:"totalCount"`
}

// TaskFilter is an explicit set of query criteria evaluated by the storage
// collaborator. Zero-value fields do not constrain the result set.
type TaskFilter struct {
	Statuses   []TaskStatus
	Archived   *bool
	OwnerID    string
	Category   string
	DueBefore  *time.Time
	ActiveOnly bool
}

// Matches reports whether the task satisfies every set criterion.
func (f TaskFilter) Matches(t Task) bool {
	if f.ActiveOnly && !t.IsActive() {
		return false
	}
	if f.Archived != nil && t.Archived != *f.Archived {
		return false
	}
	if f.OwnerID != "" && t.OwnerID != f.OwnerID {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.DueBefore != nil {
		if t.DueDate == nil || !t.DueDate.Before(*f.DueBefore) {
			return false
		}
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if t.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	err := validate.Struct(s)
	if err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("Validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}

// NewTask creates a task with defaults applied: pending status, medium
// priority, fresh timestamps and initialized relationship slices.
func NewTask(id, title string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:            id,
		Title:         title,
		Status:        StatusPending,
		Priority:      PriorityMedium,
		CreatedAt:     now,
		UpdatedAt:     now,
		SubtaskIDs:    []string{},
		Prerequisites: []string{},
		Dependents:    []string{},
	}
}

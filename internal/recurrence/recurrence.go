// Package recurrence decides whether and when a completed recurring task
// materializes its next occurrence.
package recurrence

import (
	"time"

	"github.com/google/uuid"
	"github.com/strideapp/stride/models"
)

// NextOccurrence advances ref by the pattern's interval. The second
// return value is false when the pattern has an end date and the computed
// date falls after it, or when the pattern frequency is unknown.
// The function is pure: the same pattern and reference date always yield
// the same result.
func NextOccurrence(p models.RecurrencePattern, ref time.Time) (time.Time, bool) {
	var next time.Time
	switch p.Frequency {
	case models.FrequencyDaily:
		next = ref.AddDate(0, 0, 1)
	case models.FrequencyWeekly:
		next = ref.AddDate(0, 0, 7)
	case models.FrequencyMonthly:
		next = ref.AddDate(0, 1, 0)
	case models.FrequencyCustom:
		interval := p.IntervalDays
		if interval < 1 {
			interval = 1
		}
		next = ref.AddDate(0, 0, interval)
	default:
		return time.Time{}, false
	}
	if p.EndDate != nil && next.After(*p.EndDate) {
		return time.Time{}, false
	}
	return next, true
}

// ShouldMaterializeNext reports whether completing task warrants creating
// the next occurrence: the task must carry a completion timestamp, the
// pattern must yield a next date, and the occurrence cap (when set and
// enforced) must not be exhausted.
func ShouldMaterializeNext(p models.RecurrencePattern, task models.Task, enforceCap bool) bool {
	if task.CompletedAt == nil {
		return false
	}
	if enforceCap && p.MaxOccurrences > 0 && nextOccurrenceNumber(task) > p.MaxOccurrences {
		return false
	}
	ref := referenceDate(task)
	_, ok := NextOccurrence(p, ref)
	return ok
}

// MaterializeNext builds the successor task for a completed recurring
// task: a fresh pending task due at next, copying the fields that define
// the series. Progress state (timestamps, prerequisites, subtasks) is
// deliberately not carried over.
func MaterializeNext(src models.Task, next time.Time) models.Task {
	now := time.Now().UTC()
	due := next
	return models.Task{
		ID:               uuid.NewString(),
		Title:            src.Title,
		Description:      src.Description,
		Status:           models.StatusPending,
		Priority:         src.Priority,
		DueDate:          &due,
		IsRecurring:      true,
		Recurrence:       src.Recurrence,
		OccurrenceNumber: nextOccurrenceNumber(src),
		Category:         src.Category,
		Tags:             append([]string(nil), src.Tags...),
		EstimatedMinutes: src.EstimatedMinutes,
		Location:         src.Location,
		URL:              src.URL,
		OwnerID:          src.OwnerID,
		SubtaskIDs:       []string{},
		Prerequisites:    []string{},
		Dependents:       []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// referenceDate picks the date the next occurrence advances from: the due
// date when present, otherwise the completion timestamp.
func referenceDate(task models.Task) time.Time {
	if task.DueDate != nil {
		return *task.DueDate
	}
	if task.CompletedAt != nil {
		return *task.CompletedAt
	}
	return time.Now().UTC()
}

// nextOccurrenceNumber returns the series position the successor would
// occupy. Tasks created before occurrence tracking default to 1.
func nextOccurrenceNumber(task models.Task) int {
	n := task.OccurrenceNumber
	if n < 1 {
		n = 1
	}
	return n + 1
}

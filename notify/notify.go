// Package notify defines the notification collaborator contract. The
// orchestration core hands scheduling work to a Scheduler and never waits
// on it; delivery failures are the scheduler's problem to log, not the
// core's to surface.
package notify

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// ReminderID returns the deterministic identifier for a task's reminder
// notification. Deterministic identifiers make reconciliation idempotent.
func ReminderID(taskID string) string {
	return "reminder-" + taskID
}

// DeadlineID returns the deterministic identifier for a task's deadline
// notification.
func DeadlineID(taskID string) string {
	return "deadline-" + taskID
}

// Scheduler is implemented by the platform notification layer.
type Scheduler interface {
	ScheduleReminder(taskID, title string, at time.Time) error
	ScheduleDeadline(taskID, title string, at time.Time) error
	Cancel(identifier string) error
	CancelAll() error
}

// LogScheduler is the CLI shell's scheduler: it records intent to stderr
// and always succeeds. A desktop or mobile shell would replace it with a
// real delivery backend.
type LogScheduler struct {
	Verbose bool
}

func (l *LogScheduler) ScheduleReminder(taskID, title string, at time.Time) error {
	if l.Verbose {
		fmt.Fprintf(os.Stderr, "[notify] reminder %s (%s) at %s\n", taskID, title, at.Format(time.RFC3339))
	}
	return nil
}

func (l *LogScheduler) ScheduleDeadline(taskID, title string, at time.Time) error {
	if l.Verbose {
		fmt.Fprintf(os.Stderr, "[notify] deadline %s (%s) at %s\n", taskID, title, at.Format(time.RFC3339))
	}
	return nil
}

func (l *LogScheduler) Cancel(identifier string) error {
	if l.Verbose {
		fmt.Fprintf(os.Stderr, "[notify] cancel %s\n", identifier)
	}
	return nil
}

func (l *LogScheduler) CancelAll() error {
	if l.Verbose {
		fmt.Fprintln(os.Stderr, "[notify] cancel all")
	}
	return nil
}

// ScheduledCall captures one Scheduler invocation for inspection.
type ScheduledCall struct {
	Op         string // "reminder", "deadline", "cancel", "cancelAll"
	Identifier string
	TaskID     string
	Title      string
	At         time.Time
}

// Recorder is a Scheduler test double that captures every call.
type Recorder struct {
	mu    sync.Mutex
	Calls []ScheduledCall
}

func (r *Recorder) ScheduleReminder(taskID, title string, at time.Time) error {
	r.record(ScheduledCall{Op: "reminder", Identifier: ReminderID(taskID), TaskID: taskID, Title: title, At: at})
	return nil
}

func (r *Recorder) ScheduleDeadline(taskID, title string, at time.Time) error {
	r.record(ScheduledCall{Op: "deadline", Identifier: DeadlineID(taskID), TaskID: taskID, Title: title, At: at})
	return nil
}

func (r *Recorder) Cancel(identifier string) error {
	r.record(ScheduledCall{Op: "cancel", Identifier: identifier})
	return nil
}

func (r *Recorder) CancelAll() error {
	r.record(ScheduledCall{Op: "cancelAll"})
	return nil
}

func (r *Recorder) record(c ScheduledCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, c)
}

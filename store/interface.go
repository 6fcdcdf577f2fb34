package store

import "github.com/strideapp/stride/models"

// TaskStore is the storage collaborator contract. The orchestration core
// treats every failure as non-retriable and propagates it unchanged.
type TaskStore interface {
	// Initialize configures the store (file path, data format). It must
	// be called before any other operation.
	Initialize(config map[string]string) error

	// CreateTask adds a new task, generating an ID when absent, and
	// maintains the relationship bookkeeping (parent subtask lists,
	// dependent reverse index).
	CreateTask(task models.Task) (models.Task, error)

	// GetTask retrieves a task by ID. A missing task yields an error
	// wrapping types.ErrNotFound.
	GetTask(id string) (models.Task, error)

	// UpdateTask replaces the stored task with the given value. The
	// task's ID selects the record; UpdatedAt is refreshed.
	UpdateTask(task models.Task) (models.Task, error)

	// DeleteTask removes one task and scrubs references to it from
	// every remaining task.
	DeleteTask(id string) error

	// DeleteTasks removes a batch of tasks in one write and returns the
	// number actually deleted.
	DeleteTasks(ids []string) (int, error)

	// ListTasks returns the tasks matching the filter criteria.
	ListTasks(filter models.TaskFilter) ([]models.Task, error)

	// Close releases any resources held by the store, such as file
	// locks.
	Close() error
}

// PointsStore is the ledger collaborator contract. Entries are immutable
// once appended.
type PointsStore interface {
	Append(entry models.PointsEntry) error
	Total(userID string) (points int, xp int, err error)
	History(userID string, limit int) ([]models.PointsEntry, error)
	Close() error
}

package cmd

import (
	"fmt"
	"time"

	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/store"
)

// runTask opens the stores, loads every task into an orchestrator, runs
// fn, and applies whatever effects it returns. The points ledger is
// optional: when it cannot be opened the command still runs, awards are
// just dropped with a debug note.
func runTask(fn func(orch *orchestrator.Orchestrator, taskStore store.TaskStore) ([]orchestrator.Effect, error)) error {
	taskStore, err := GetStore()
	if err != nil {
		return fmt.Errorf("failed to get store: %w", err)
	}
	defer func() { _ = taskStore.Close() }()

	pointsStore, err := GetPointsStore()
	if err != nil {
		LogError("points ledger unavailable", err)
		pointsStore = nil
	} else {
		defer func() { _ = pointsStore.Close() }()
	}

	orch, err := loadOrchestrator(taskStore, pointsStore)
	if err != nil {
		return err
	}

	effects, err := fn(orch, taskStore)
	if err != nil {
		return err
	}
	return applyEffects(effects, taskStore, newScheduler(), pointsStore)
}

// parseDate accepts a date or an RFC3339 timestamp. Bare dates resolve
// to local midnight.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q (want YYYY-MM-DD or RFC3339)", value)
	}
	return t, nil
}

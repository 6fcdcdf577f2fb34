package cmd

import (
	"errors"
	"fmt"

	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/notify"
	"github.com/strideapp/stride/store"
	"github.com/strideapp/stride/types"
)

// applyEffects carries out the side-effect instructions a command
// returned. Persistence failures abort the dispatch; notification
// failures are logged and skipped so a broken scheduler never loses
// task data.
func applyEffects(effects []orchestrator.Effect, taskStore store.TaskStore, scheduler notify.Scheduler, pointsStore store.PointsStore) error {
	for _, effect := range effects {
		switch e := effect.(type) {
		case orchestrator.PersistTask:
			if err := upsertTask(taskStore, e); err != nil {
				return fmt.Errorf("persist task %s: %w", e.Task.ID, err)
			}
		case orchestrator.RemoveTask:
			if err := taskStore.DeleteTask(e.TaskID); err != nil && !errors.Is(err, types.ErrNotFound) {
				return fmt.Errorf("remove task %s: %w", e.TaskID, err)
			}
		case orchestrator.ScheduleReminder:
			if err := scheduler.ScheduleReminder(e.TaskID, e.Title, e.At); err != nil {
				LogError(fmt.Sprintf("schedule reminder for %s", e.TaskID), err)
			}
		case orchestrator.ScheduleDeadline:
			if err := scheduler.ScheduleDeadline(e.TaskID, e.Title, e.At); err != nil {
				LogError(fmt.Sprintf("schedule deadline for %s", e.TaskID), err)
			}
		case orchestrator.CancelNotification:
			if err := scheduler.Cancel(e.Identifier); err != nil {
				LogError(fmt.Sprintf("cancel notification %s", e.Identifier), err)
			}
		case orchestrator.TaskUnblocked:
			fmt.Printf("Task %s is now unblocked and ready to start.\n", e.TaskID)
		case orchestrator.PointsAwarded:
			if pointsStore == nil {
				LogError("points ledger unavailable, dropping award", nil)
				continue
			}
			if err := pointsStore.Append(e.Entry); err != nil {
				return fmt.Errorf("record points: %w", err)
			}
			fmt.Printf("+%d points (+%d XP): %s\n", e.Entry.Amount, e.Entry.XP, e.Entry.Reason)
		}
	}
	return nil
}

func upsertTask(taskStore store.TaskStore, e orchestrator.PersistTask) error {
	if _, err := taskStore.GetTask(e.Task.ID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			_, createErr := taskStore.CreateTask(e.Task)
			return createErr
		}
		return err
	}
	_, err := taskStore.UpdateTask(e.Task)
	return err
}

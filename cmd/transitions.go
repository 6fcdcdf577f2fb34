package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/store"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start [task_id]",
	Short: "Start working on a task",
	Long:  `Move a pending or on-hold task to in-progress. Fails if any prerequisite is not completed yet.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args, "Select task to start",
			models.TaskFilter{Statuses: []models.TaskStatus{models.StatusPending, models.StatusOnHold}, ActiveOnly: true},
			func(orch *orchestrator.Orchestrator, id string) (orchestrator.Result, error) {
				return orch.Start(id)
			},
			"Started task %s: %s\n")
	},
}

// pauseCmd represents the pause command
var pauseCmd = &cobra.Command{
	Use:   "pause [task_id]",
	Short: "Put an in-progress task on hold",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args, "Select task to pause",
			models.TaskFilter{Statuses: []models.TaskStatus{models.StatusInProgress}, ActiveOnly: true},
			func(orch *orchestrator.Orchestrator, id string) (orchestrator.Result, error) {
				return orch.Pause(id)
			},
			"Paused task %s: %s\n")
	},
}

// doneCmd represents the done command
var doneCmd = &cobra.Command{
	Use:   "done [task_id]",
	Short: "Complete a task",
	Long: `Complete a task. Completion awards points, unblocks dependent
tasks, and schedules the next occurrence of a recurring task.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args, "Select task to complete",
			models.TaskFilter{
				Statuses:   []models.TaskStatus{models.StatusPending, models.StatusInProgress, models.StatusOnHold},
				ActiveOnly: true,
			},
			func(orch *orchestrator.Orchestrator, id string) (orchestrator.Result, error) {
				result, err := orch.Complete(id)
				if err == nil && result.Next != nil {
					fmt.Printf("Next occurrence scheduled: %s (due %s)\n",
						result.Next.ID, dueLabel(result.Next))
				}
				return result, err
			},
			"Completed task %s: %s\n")
	},
}

// reopenCmd represents the reopen command
var reopenCmd = &cobra.Command{
	Use:   "reopen [task_id]",
	Short: "Reopen a completed task",
	Long:  `Move a completed task back to pending and clear its completion record. Points already awarded are kept.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args, "Select task to reopen",
			models.TaskFilter{Statuses: []models.TaskStatus{models.StatusCompleted}},
			func(orch *orchestrator.Orchestrator, id string) (orchestrator.Result, error) {
				return orch.Uncomplete(id)
			},
			"Reopened task %s: %s\n")
	},
}

// cancelCmd represents the cancel command
var cancelCmd = &cobra.Command{
	Use:   "cancel [task_id]",
	Short: "Cancel a task",
	Long:  `Cancel a task. Cancelled tasks are terminal and keep blocking their dependents.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args, "Select task to cancel",
			models.TaskFilter{
				Statuses:   []models.TaskStatus{models.StatusPending, models.StatusInProgress, models.StatusOnHold},
				ActiveOnly: true,
			},
			func(orch *orchestrator.Orchestrator, id string) (orchestrator.Result, error) {
				return orch.Cancel(id)
			},
			"Cancelled task %s: %s\n")
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(cancelCmd)
}

// runTransition resolves the target task and runs one lifecycle command
// against it.
func runTransition(args []string, label string, filter models.TaskFilter, op func(*orchestrator.Orchestrator, string) (orchestrator.Result, error), successFormat string) error {
	return runTask(func(orch *orchestrator.Orchestrator, taskStore store.TaskStore) ([]orchestrator.Effect, error) {
		id, err := resolveTaskID(taskStore, args, filter, label)
		if err != nil {
			return nil, err
		}
		result, err := op(orch, id)
		if err != nil {
			return nil, err
		}
		fmt.Printf(successFormat, result.Task.ID, result.Task.Title)
		return result.Effects, nil
	})
}

func dueLabel(task *models.Task) string {
	if task.DueDate == nil {
		return "unscheduled"
	}
	return task.DueDate.Format("2006-01-02")
}

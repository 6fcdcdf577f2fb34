package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/store"
)

var deleteYes bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete [task_id...]",
	Short: "Delete one or more tasks",
	Long: `Delete tasks by ID. If no ID is provided, an interactive list is
shown. Deleting a task removes it from its parent's subtask list and
from every dependency relation. A confirmation prompt is displayed
unless --yes is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(func(orch *orchestrator.Orchestrator, taskStore store.TaskStore) ([]orchestrator.Effect, error) {
			ids := args
			if len(ids) == 0 {
				task, err := selectTaskInteractive(taskStore, models.TaskFilter{}, "Select task to delete")
				if err != nil {
					if errors.Is(err, promptui.ErrInterrupt) {
						fmt.Println("Deletion cancelled.")
						return nil, nil
					}
					if errors.Is(err, ErrNoTasksFound) {
						fmt.Println("No tasks available to delete.")
						return nil, nil
					}
					return nil, err
				}
				ids = []string{task.ID}
			}

			if !deleteYes {
				if err := confirmAction(fmt.Sprintf("Delete %d task(s)", len(ids))); err != nil {
					if errors.Is(err, promptui.ErrAbort) {
						fmt.Println("Deletion cancelled.")
						return nil, nil
					}
					return nil, err
				}
			}

			results, err := orch.BulkDelete(ids)
			var effects []orchestrator.Effect
			for _, result := range results {
				effects = append(effects, result.Effects...)
			}
			if err != nil {
				PrintError(fmt.Sprintf("Some tasks could not be deleted (%d of %d removed).", len(results), len(ids)), err)
			}
			fmt.Printf("Deleted %d task(s).\n", len(results))
			return effects, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
}

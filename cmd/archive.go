package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/store"
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive [task_id]",
	Short: "Archive a task",
	Long:  `Archive a task. Archived tasks are hidden from active listings and their notifications are cancelled. The task itself is kept.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(func(orch *orchestrator.Orchestrator, taskStore store.TaskStore) ([]orchestrator.Effect, error) {
			id, err := resolveTaskID(taskStore, args, models.TaskFilter{ActiveOnly: true}, "Select task to archive")
			if err != nil {
				return nil, err
			}
			result, err := orch.Archive(id)
			if err != nil {
				return nil, err
			}
			fmt.Printf("Archived task %s: %s\n", result.Task.ID, result.Task.Title)
			return result.Effects, nil
		})
	},
}

// unarchiveCmd represents the unarchive command
var unarchiveCmd = &cobra.Command{
	Use:   "unarchive [task_id]",
	Short: "Restore an archived task",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archived := true
		return runTask(func(orch *orchestrator.Orchestrator, taskStore store.TaskStore) ([]orchestrator.Effect, error) {
			id, err := resolveTaskID(taskStore, args, models.TaskFilter{Archived: &archived}, "Select task to restore")
			if err != nil {
				return nil, err
			}
			result, err := orch.Unarchive(id)
			if err != nil {
				return nil, err
			}
			fmt.Printf("Restored task %s: %s\n", result.Task.ID, result.Task.Title)
			return result.Effects, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(unarchiveCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/store"
)

// subtaskCmd groups subtask management subcommands.
var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage parent/subtask relations",
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add <parent_id> <child_id>",
	Short: "Attach a task as a subtask of another",
	Long:  `Attach a task under a parent. A task already under another parent is moved. Attaching a task under its own descendant is rejected.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(func(orch *orchestrator.Orchestrator, _ store.TaskStore) ([]orchestrator.Effect, error) {
			result, err := orch.AddSubtask(args[0], args[1])
			if err != nil {
				return nil, err
			}
			fmt.Printf("Task %s is now a subtask of %s.\n", args[1], args[0])
			return result.Effects, nil
		})
	},
}

var subtaskRemoveCmd = &cobra.Command{
	Use:   "remove <parent_id> <child_id>",
	Short: "Detach a subtask from its parent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(func(orch *orchestrator.Orchestrator, _ store.TaskStore) ([]orchestrator.Effect, error) {
			result, err := orch.RemoveSubtask(args[0], args[1])
			if err != nil {
				return nil, err
			}
			fmt.Printf("Task %s detached from %s.\n", args[1], args[0])
			return result.Effects, nil
		})
	},
}

var subtaskListCmd = &cobra.Command{
	Use:   "list <parent_id>",
	Short: "List the subtasks of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(func(orch *orchestrator.Orchestrator, _ store.TaskStore) ([]orchestrator.Effect, error) {
			subtasks, err := orch.Subtasks(args[0])
			if err != nil {
				return nil, err
			}
			if len(subtasks) == 0 {
				fmt.Println("No subtasks.")
				return nil, nil
			}
			for _, task := range subtasks {
				fmt.Printf("  %s  %s [%s]\n", task.ID, task.Title, task.Status)
			}
			return nil, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(subtaskCmd)
	subtaskCmd.AddCommand(subtaskAddCmd)
	subtaskCmd.AddCommand(subtaskRemoveCmd)
	subtaskCmd.AddCommand(subtaskListCmd)
}

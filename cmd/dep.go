package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/store"
)

// depCmd groups dependency management subcommands.
var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage task dependencies",
	Long: `Manage prerequisite relations between tasks. A task cannot be
started until all of its prerequisites are completed. Relations that
would form a cycle are rejected.`,
}

var depAddCmd = &cobra.Command{
	Use:   "add <task_id> <prerequisite_id>",
	Short: "Make one task a prerequisite of another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(func(orch *orchestrator.Orchestrator, _ store.TaskStore) ([]orchestrator.Effect, error) {
			result, err := orch.AddPrerequisite(args[0], args[1])
			if err != nil {
				return nil, err
			}
			fmt.Printf("Task %s now depends on %s.\n", args[0], args[1])
			return result.Effects, nil
		})
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <task_id> <prerequisite_id>",
	Short: "Remove a prerequisite relation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(func(orch *orchestrator.Orchestrator, _ store.TaskStore) ([]orchestrator.Effect, error) {
			result, err := orch.RemovePrerequisite(args[0], args[1])
			if err != nil {
				return nil, err
			}
			fmt.Printf("Task %s no longer depends on %s.\n", args[0], args[1])
			return result.Effects, nil
		})
	},
}

var depListCmd = &cobra.Command{
	Use:   "list <task_id>",
	Short: "Show a task's prerequisites and dependents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(func(orch *orchestrator.Orchestrator, _ store.TaskStore) ([]orchestrator.Effect, error) {
			prereqs, err := orch.Prerequisites(args[0])
			if err != nil {
				return nil, err
			}
			dependents, err := orch.Dependents(args[0])
			if err != nil {
				return nil, err
			}
			ready, err := orch.CanStart(args[0])
			if err != nil {
				return nil, err
			}

			if len(prereqs) == 0 {
				fmt.Println("No prerequisites.")
			} else {
				fmt.Println("Prerequisites:")
				for _, id := range prereqs {
					task, getErr := orch.Get(id)
					if getErr != nil {
						fmt.Printf("  %s\n", id)
						continue
					}
					fmt.Printf("  %s  %s [%s]\n", id, task.Title, task.Status)
				}
			}
			if len(dependents) > 0 {
				fmt.Println("Blocks:")
				for _, id := range dependents {
					fmt.Printf("  %s\n", id)
				}
			}
			if ready {
				fmt.Println("Ready to start.")
			} else {
				fmt.Println("Blocked: not all prerequisites are completed.")
			}
			return nil, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(depCmd)
	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	depCmd.AddCommand(depListCmd)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/store"
)

// overdueCmd represents the overdue command
var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List overdue tasks",
	Long:  `List active tasks whose due date has passed. Reporting only, nothing is changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(func(orch *orchestrator.Orchestrator, _ store.TaskStore) ([]orchestrator.Effect, error) {
			overdue := orch.CheckOverdue()
			if len(overdue) == 0 {
				fmt.Println("Nothing overdue.")
				return nil, nil
			}
			now := time.Now()
			for _, task := range overdue {
				days := int(now.Sub(*task.DueDate).Hours() / 24)
				fmt.Printf("  %s  %s (due %s, %d day(s) ago)\n",
					task.ID, task.Title, task.DueDate.Format("2006-01-02"), days)
			}
			fmt.Printf("\n%d overdue task(s)\n", len(overdue))
			return nil, nil
		})
	},
}

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Re-derive all scheduled notifications",
	Long: `Cancel and reschedule every task notification from the current
reminder and due dates. Safe to run repeatedly; the scheduled set
always converges on the same state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(func(orch *orchestrator.Orchestrator, _ store.TaskStore) ([]orchestrator.Effect, error) {
			effects := orch.ReconcileNotifications()
			fmt.Printf("Reconciled notifications (%d instruction(s)).\n", len(effects))
			return effects, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(overdueCmd)
	rootCmd.AddCommand(reconcileCmd)
}

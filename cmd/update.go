package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/store"
)

var (
	updateTitle       string
	updateDescription string
	updatePriority    string
	updateDue         string
	updateRemind      string
	updateCategory    string
	updateTags        []string
	updateEstimate    int
	updateLocation    string
	updateURL         string
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update [task_id]",
	Short: "Update a task's fields",
	Long: `Update a task. Only the flags you pass are changed. Pass an empty
string to clear a date, e.g. --due "".

Examples:
  stride update <id> --title "New title"
  stride update <id> --due 2026-10-01 --priority urgent
  stride update <id> --due ""`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
	updateCmd.Flags().StringVarP(&updatePriority, "priority", "p", "", "priority (low, medium, high, urgent)")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "due date, empty to clear")
	updateCmd.Flags().StringVar(&updateRemind, "remind", "", "reminder date, empty to clear")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "category")
	updateCmd.Flags().StringSliceVarP(&updateTags, "tag", "t", nil, "replace tags (repeatable)")
	updateCmd.Flags().IntVar(&updateEstimate, "estimate", 0, "estimated minutes")
	updateCmd.Flags().StringVar(&updateLocation, "location", "", "location")
	updateCmd.Flags().StringVar(&updateURL, "url", "", "related URL")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	req := orchestrator.UpdateRequest{}

	if cmd.Flags().Changed("title") {
		req.Title = &updateTitle
	}
	if cmd.Flags().Changed("description") {
		req.Description = &updateDescription
	}
	if cmd.Flags().Changed("priority") {
		p := models.TaskPriority(updatePriority)
		req.Priority = &p
	}
	if cmd.Flags().Changed("due") {
		due, err := parseOptionalDate(updateDue)
		if err != nil {
			return err
		}
		req.DueDate = &due
	}
	if cmd.Flags().Changed("remind") {
		remind, err := parseOptionalDate(updateRemind)
		if err != nil {
			return err
		}
		req.ReminderDate = &remind
	}
	if cmd.Flags().Changed("category") {
		req.Category = &updateCategory
	}
	if cmd.Flags().Changed("tag") {
		req.Tags = &updateTags
	}
	if cmd.Flags().Changed("estimate") {
		req.EstimatedMinutes = &updateEstimate
	}
	if cmd.Flags().Changed("location") {
		req.Location = &updateLocation
	}
	if cmd.Flags().Changed("url") {
		req.URL = &updateURL
	}

	return runTask(func(orch *orchestrator.Orchestrator, taskStore store.TaskStore) ([]orchestrator.Effect, error) {
		id, err := resolveTaskID(taskStore, args, models.TaskFilter{}, "Select task to update")
		if err != nil {
			return nil, err
		}
		result, err := orch.Update(id, req)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Updated task %s: %s\n", result.Task.ID, result.Task.Title)
		return result.Effects, nil
	})
}

// parseOptionalDate maps the empty string to a nil date (clearing it).
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

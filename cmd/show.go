package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/models"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [task_id]",
	Short: "Show the details of one task",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskStore, err := GetStore()
		if err != nil {
			return fmt.Errorf("failed to get store: %w", err)
		}
		defer func() { _ = taskStore.Close() }()

		id, err := resolveTaskID(taskStore, args, models.TaskFilter{}, "Select task to show")
		if err != nil {
			return err
		}

		task, err := taskStore.GetTask(id)
		if err != nil {
			return fmt.Errorf("failed to retrieve task %s: %w", id, err)
		}

		printTaskDetails(task)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func printTaskDetails(task models.Task) {
	fmt.Printf("ID:          %s\n", task.ID)
	fmt.Printf("Title:       %s\n", task.Title)
	if task.Description != "" {
		fmt.Printf("Description: %s\n", task.Description)
	}
	fmt.Printf("Status:      %s\n", task.Status)
	fmt.Printf("Priority:    %s\n", task.Priority)
	if task.Category != "" {
		fmt.Printf("Category:    %s\n", task.Category)
	}
	if len(task.Tags) > 0 {
		fmt.Printf("Tags:        %v\n", task.Tags)
	}
	if task.DueDate != nil {
		fmt.Printf("Due:         %s\n", task.DueDate.Format("2006-01-02 15:04"))
	}
	if task.ReminderDate != nil {
		fmt.Printf("Reminder:    %s\n", task.ReminderDate.Format("2006-01-02 15:04"))
	}
	if task.IsRecurring && task.Recurrence != nil {
		fmt.Printf("Repeats:     %s (occurrence %d)\n", task.Recurrence.Frequency, task.OccurrenceNumber)
	}
	if task.ParentID != nil {
		fmt.Printf("Parent:      %s\n", *task.ParentID)
	}
	if len(task.SubtaskIDs) > 0 {
		fmt.Printf("Subtasks:    %v\n", task.SubtaskIDs)
	}
	if len(task.Prerequisites) > 0 {
		fmt.Printf("Depends on:  %v\n", task.Prerequisites)
	}
	if len(task.Dependents) > 0 {
		fmt.Printf("Blocks:      %v\n", task.Dependents)
	}
	if task.EstimatedMinutes > 0 {
		fmt.Printf("Estimate:    %d min\n", task.EstimatedMinutes)
	}
	if task.ActualMinutes > 0 {
		fmt.Printf("Actual:      %d min\n", task.ActualMinutes)
	}
	fmt.Printf("Created:     %s\n", task.CreatedAt.Format("2006-01-02 15:04"))
	if task.CompletedAt != nil {
		fmt.Printf("Completed:   %s\n", task.CompletedAt.Format("2006-01-02 15:04"))
	}
	if task.Archived {
		fmt.Println("Archived:    yes")
	}
}

package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/models"
)

var (
	listStatus   string
	listCategory string
	listAll      bool
	listArchived bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks. By default only active (non-archived) tasks are shown.

Examples:
  stride list                      # Active tasks
  stride list --status pending     # Only pending tasks
  stride list --category work      # Only one category
  stride list --archived           # Archived tasks`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by status (comma-separated)")
	listCmd.Flags().StringVar(&listCategory, "category", "", "filter by category")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include archived tasks")
	listCmd.Flags().BoolVar(&listArchived, "archived", false, "only archived tasks")
}

func runList(cmd *cobra.Command, args []string) error {
	taskStore, err := GetStore()
	if err != nil {
		return fmt.Errorf("failed to get store: %w", err)
	}
	defer func() { _ = taskStore.Close() }()

	filter := models.TaskFilter{Category: listCategory}
	if listArchived {
		archived := true
		filter.Archived = &archived
	} else if !listAll {
		filter.ActiveOnly = true
	}
	for _, s := range strings.Split(listStatus, ",") {
		if s = strings.TrimSpace(s); s != "" {
			filter.Statuses = append(filter.Statuses, models.TaskStatus(s))
		}
	}

	tasks, err := taskStore.ListTasks(filter)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(tasks) == 0 {
		cmd.Println("No tasks found.")
		cmd.Println("Add one with: stride add \"Your task here\"")
		return nil
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Status != tasks[j].Status {
			return statusRank(tasks[i].Status) < statusRank(tasks[j].Status)
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	now := time.Now()
	for _, task := range tasks {
		fmt.Println(formatTaskLine(task, now))
	}
	fmt.Printf("\n%d task(s)\n", len(tasks))
	return nil
}

func statusRank(s models.TaskStatus) int {
	switch s {
	case models.StatusInProgress:
		return 0
	case models.StatusPending:
		return 1
	case models.StatusOnHold:
		return 2
	case models.StatusCompleted:
		return 3
	default:
		return 4
	}
}

func formatTaskLine(task models.Task, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%-11s] %s  %s", task.Status, task.ID, task.Title)
	if task.Priority != models.PriorityMedium && task.Priority != "" {
		fmt.Fprintf(&sb, " (%s)", task.Priority)
	}
	if task.DueDate != nil {
		if task.IsOverdue(now) {
			fmt.Fprintf(&sb, "  OVERDUE %s", task.DueDate.Format("2006-01-02"))
		} else {
			fmt.Fprintf(&sb, "  due %s", task.DueDate.Format("2006-01-02"))
		}
	}
	if task.IsRecurring {
		sb.WriteString("  ↻")
	}
	if len(task.Prerequisites) > 0 {
		fmt.Fprintf(&sb, "  [%d prereq]", len(task.Prerequisites))
	}
	return sb.String()
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/store"
)

var (
	addPriority  string
	addDue       string
	addRemind    string
	addParent    string
	addDependsOn []string
	addCategory  string
	addTags      []string
	addEstimate  int
	addLocation  string
	addURL       string
	addEvery     string
	addUntil     string
	addMaxOccur  int
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Long: `Add a new task. The task starts in the pending state.

Examples:
  stride add "Write quarterly report" --due 2026-09-15 --priority high
  stride add "Water the plants" --every daily
  stride add "Review PR" --depends-on <task-id>
  stride add "Book flights" --parent <trip-task-id>`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "priority (low, medium, high, urgent)")
	addCmd.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD or RFC3339)")
	addCmd.Flags().StringVar(&addRemind, "remind", "", "reminder date (YYYY-MM-DD or RFC3339)")
	addCmd.Flags().StringVar(&addParent, "parent", "", "parent task ID (makes this a subtask)")
	addCmd.Flags().StringSliceVar(&addDependsOn, "depends-on", nil, "prerequisite task ID (repeatable)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "category")
	addCmd.Flags().StringSliceVarP(&addTags, "tag", "t", nil, "tag (repeatable)")
	addCmd.Flags().IntVar(&addEstimate, "estimate", 0, "estimated minutes")
	addCmd.Flags().StringVar(&addLocation, "location", "", "location")
	addCmd.Flags().StringVar(&addURL, "url", "", "related URL")
	addCmd.Flags().StringVar(&addEvery, "every", "", "recurrence (daily, weekly, monthly, or a custom day count like 3d)")
	addCmd.Flags().StringVar(&addUntil, "until", "", "recurrence end date")
	addCmd.Flags().IntVar(&addMaxOccur, "max-occurrences", 0, "stop the series after this many occurrences")
}

func runAdd(cmd *cobra.Command, args []string) error {
	req := orchestrator.CreateRequest{
		Title:            strings.Join(args, " "),
		Priority:         models.TaskPriority(addPriority),
		Prerequisites:    addDependsOn,
		Category:         addCategory,
		Tags:             addTags,
		EstimatedMinutes: addEstimate,
		Location:         addLocation,
		URL:              addURL,
		OwnerID:          GetConfig().Points.DefaultUser,
	}

	if addDue != "" {
		due, err := parseDate(addDue)
		if err != nil {
			return err
		}
		req.DueDate = &due
	}
	if addRemind != "" {
		remind, err := parseDate(addRemind)
		if err != nil {
			return err
		}
		req.ReminderDate = &remind
	}
	if addParent != "" {
		req.ParentID = &addParent
	}

	if addEvery != "" {
		pattern, err := parseRecurrence(addEvery, addUntil, addMaxOccur)
		if err != nil {
			return err
		}
		req.Recurrence = pattern
	}

	return runTask(func(orch *orchestrator.Orchestrator, _ store.TaskStore) ([]orchestrator.Effect, error) {
		result, err := orch.Create(req)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Added task %s: %s\n", result.Task.ID, result.Task.Title)
		return result.Effects, nil
	})
}

// parseRecurrence turns --every/--until/--max-occurrences into a pattern.
func parseRecurrence(every, until string, maxOccur int) (*models.RecurrencePattern, error) {
	pattern := &models.RecurrencePattern{MaxOccurrences: maxOccur}

	switch every {
	case "daily":
		pattern.Frequency = models.FrequencyDaily
	case "weekly":
		pattern.Frequency = models.FrequencyWeekly
	case "monthly":
		pattern.Frequency = models.FrequencyMonthly
	default:
		var days int
		if _, err := fmt.Sscanf(every, "%dd", &days); err != nil || days < 1 {
			return nil, fmt.Errorf("unrecognized recurrence %q (want daily, weekly, monthly, or Nd)", every)
		}
		pattern.Frequency = models.FrequencyCustom
		pattern.IntervalDays = days
	}

	if until != "" {
		end, err := parseDate(until)
		if err != nil {
			return nil, err
		}
		pattern.EndDate = &end
	}
	return pattern, nil
}

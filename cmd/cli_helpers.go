package cmd

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/store"
)

// selectTaskInteractive presents a prompt to the user to select a task
// matching the filter.
func selectTaskInteractive(taskStore store.TaskStore, filter models.TaskFilter, label string) (models.Task, error) {
	tasks, err := taskStore.ListTasks(filter)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to list tasks for selection: %w", err)
	}

	if len(tasks) == 0 {
		return models.Task{}, ErrNoTasksFound
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   `> {{ .Title | cyan }} (ID: {{ .ID }}, Status: {{ .Status }})`,
		Inactive: `  {{ .Title | faint }} (ID: {{ .ID }}, Status: {{ .Status }})`,
		Selected: `{{ "✔" | green }} {{ .Title | faint }} (ID: {{ .ID }})`,
		Details: `
--------- Task Details ----------
{{ "ID:\t" | faint }} {{ .ID }}
{{ "Title:\t" | faint }} {{ .Title }}
{{ "Status:\t" | faint }} {{ .Status }}
{{ "Priority:\t" | faint }} {{ .Priority }}`,
	}

	searcher := func(input string, index int) bool {
		task := tasks[index]
		title := strings.ToLower(task.Title)
		return strings.Contains(title, strings.ToLower(input))
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     tasks,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		return models.Task{}, err
	}
	return tasks[i], nil
}

// resolveTaskID returns the explicit argument or falls back to an
// interactive selection.
func resolveTaskID(taskStore store.TaskStore, args []string, filter models.TaskFilter, label string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	task, err := selectTaskInteractive(taskStore, filter, label)
	if err != nil {
		return "", err
	}
	return task.ID, nil
}

// confirmAction asks a yes/no question; promptui.ErrAbort means no.
func confirmAction(label string) error {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err
}

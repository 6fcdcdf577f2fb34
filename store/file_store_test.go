package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/types"
)

func newTestStore(t *testing.T, format string) *FileTaskStore {
	t.Helper()
	s := NewFileTaskStore()
	path := filepath.Join(t.TempDir(), "tasks."+format)
	err := s.Initialize(map[string]string{
		"dataFile":       path,
		"dataFileFormat": format,
	})
	if err != nil {
		t.Fatalf("Initialize(%s): %v", format, err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInitializeRejectsUnknownFormat(t *testing.T) {
	s := NewFileTaskStore()
	err := s.Initialize(map[string]string{
		"dataFile":       filepath.Join(t.TempDir(), "tasks.xml"),
		"dataFileFormat": "xml",
	})
	if err == nil {
		t.Fatal("xml format accepted")
	}
}

func TestCreateAndGetTask(t *testing.T) {
	for _, format := range []string{"json", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			s := newTestStore(t, format)

			created, err := s.CreateTask(models.Task{
				Title:    "Write report",
				Status:   models.StatusPending,
				Priority: models.PriorityHigh,
			})
			if err != nil {
				t.Fatalf("CreateTask: %v", err)
			}
			if created.ID == "" {
				t.Error("no ID generated")
			}
			if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
				t.Error("timestamps not stamped")
			}

			got, err := s.GetTask(created.ID)
			if err != nil {
				t.Fatalf("GetTask: %v", err)
			}
			if got.Title != "Write report" || got.Priority != models.PriorityHigh {
				t.Errorf("round trip lost fields: %+v", got)
			}
		})
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s := newTestStore(t, "json")
	_, err := s.GetTask("missing")
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("GetTask(missing) = %v, want ErrNotFound", err)
	}
}

func TestCreateTaskDuplicateID(t *testing.T) {
	s := newTestStore(t, "json")
	created, err := s.CreateTask(models.Task{Title: "first", Status: models.StatusPending, Priority: models.PriorityMedium})
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.CreateTask(models.Task{ID: created.ID, Title: "second", Status: models.StatusPending, Priority: models.PriorityMedium})
	if err == nil {
		t.Error("duplicate ID accepted")
	}
}

func TestCreateTaskWiresRelations(t *testing.T) {
	s := newTestStore(t, "json")

	parent, err := s.CreateTask(models.Task{Title: "parent", Status: models.StatusPending, Priority: models.PriorityMedium})
	if err != nil {
		t.Fatal(err)
	}
	prereq, err := s.CreateTask(models.Task{Title: "prereq", Status: models.StatusPending, Priority: models.PriorityMedium})
	if err != nil {
		t.Fatal(err)
	}

	child, err := s.CreateTask(models.Task{
		Title:         "child",
		Status:        models.StatusPending,
		Priority:      models.PriorityMedium,
		ParentID:      &parent.ID,
		Prerequisites: []string{prereq.ID},
	})
	if err != nil {
		t.Fatalf("CreateTask(child): %v", err)
	}

	gotParent, _ := s.GetTask(parent.ID)
	if len(gotParent.SubtaskIDs) != 1 || gotParent.SubtaskIDs[0] != child.ID {
		t.Errorf("parent subtasks = %v, want [%s]", gotParent.SubtaskIDs, child.ID)
	}
	gotPrereq, _ := s.GetTask(prereq.ID)
	if len(gotPrereq.Dependents) != 1 || gotPrereq.Dependents[0] != child.ID {
		t.Errorf("prereq dependents = %v, want [%s]", gotPrereq.Dependents, child.ID)
	}
}

func TestCreateTaskMissingParent(t *testing.T) {
	s := newTestStore(t, "json")
	missing := "ghost"
	_, err := s.CreateTask(models.Task{
		Title:    "orphan",
		Status:   models.StatusPending,
		Priority: models.PriorityMedium,
		ParentID: &missing,
	})
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("missing parent = %v, want ErrNotFound", err)
	}
}

func TestUpdateTaskRelinksPrerequisites(t *testing.T) {
	s := newTestStore(t, "json")

	a, _ := s.CreateTask(models.Task{Title: "a", Status: models.StatusPending, Priority: models.PriorityMedium})
	b, _ := s.CreateTask(models.Task{Title: "b", Status: models.StatusPending, Priority: models.PriorityMedium})
	c, err := s.CreateTask(models.Task{
		Title:         "c",
		Status:        models.StatusPending,
		Priority:      models.PriorityMedium,
		Prerequisites: []string{a.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Swap the prerequisite from a to b.
	c.Prerequisites = []string{b.ID}
	if _, err := s.UpdateTask(c); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	gotA, _ := s.GetTask(a.ID)
	if len(gotA.Dependents) != 0 {
		t.Errorf("a dependents = %v, want empty", gotA.Dependents)
	}
	gotB, _ := s.GetTask(b.ID)
	if len(gotB.Dependents) != 1 || gotB.Dependents[0] != c.ID {
		t.Errorf("b dependents = %v, want [%s]", gotB.Dependents, c.ID)
	}
}

func TestUpdateTaskRejectsSelfPrerequisite(t *testing.T) {
	s := newTestStore(t, "json")
	a, _ := s.CreateTask(models.Task{Title: "a", Status: models.StatusPending, Priority: models.PriorityMedium})
	a.Prerequisites = []string{a.ID}
	if _, err := s.UpdateTask(a); err == nil {
		t.Error("self prerequisite accepted")
	}
}

func TestDeleteTaskScrubsReferences(t *testing.T) {
	s := newTestStore(t, "json")

	parent, _ := s.CreateTask(models.Task{Title: "parent", Status: models.StatusPending, Priority: models.PriorityMedium})
	victim, err := s.CreateTask(models.Task{
		Title:    "victim",
		Status:   models.StatusPending,
		Priority: models.PriorityMedium,
		ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	dependent, err := s.CreateTask(models.Task{
		Title:         "dependent",
		Status:        models.StatusPending,
		Priority:      models.PriorityMedium,
		Prerequisites: []string{victim.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteTask(victim.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	if _, err := s.GetTask(victim.ID); !errors.Is(err, types.ErrNotFound) {
		t.Error("deleted task still retrievable")
	}
	gotParent, _ := s.GetTask(parent.ID)
	if len(gotParent.SubtaskIDs) != 0 {
		t.Errorf("parent subtasks = %v, want empty", gotParent.SubtaskIDs)
	}
	gotDep, _ := s.GetTask(dependent.ID)
	if len(gotDep.Prerequisites) != 0 {
		t.Errorf("dependent prerequisites = %v, want empty", gotDep.Prerequisites)
	}
}

func TestDeleteTasksBatch(t *testing.T) {
	s := newTestStore(t, "json")

	a, _ := s.CreateTask(models.Task{Title: "a", Status: models.StatusPending, Priority: models.PriorityMedium})
	b, _ := s.CreateTask(models.Task{Title: "b", Status: models.StatusPending, Priority: models.PriorityMedium})
	c, err := s.CreateTask(models.Task{
		Title:         "c",
		Status:        models.StatusPending,
		Priority:      models.PriorityMedium,
		Prerequisites: []string{a.ID, b.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	deleted, err := s.DeleteTasks([]string{a.ID, b.ID, "missing"})
	if err != nil {
		t.Fatalf("DeleteTasks: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	gotC, _ := s.GetTask(c.ID)
	if len(gotC.Prerequisites) != 0 {
		t.Errorf("c prerequisites = %v, want scrubbed", gotC.Prerequisites)
	}
}

func TestListTasksFilter(t *testing.T) {
	s := newTestStore(t, "json")

	pending, _ := s.CreateTask(models.Task{Title: "pending", Status: models.StatusPending, Priority: models.PriorityMedium, Category: "work"})
	done, _ := s.CreateTask(models.Task{Title: "done", Status: models.StatusCompleted, Priority: models.PriorityMedium})
	archivedTask := models.Task{Title: "archived", Status: models.StatusPending, Priority: models.PriorityMedium, Archived: true}
	if _, err := s.CreateTask(archivedTask); err != nil {
		t.Fatal(err)
	}

	all, err := s.ListTasks(models.TaskFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered list = %d tasks, want 3", len(all))
	}

	active, err := s.ListTasks(models.TaskFilter{ActiveOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Errorf("active list = %d tasks, want 2", len(active))
	}

	completed, err := s.ListTasks(models.TaskFilter{Statuses: []models.TaskStatus{models.StatusCompleted}})
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 1 || completed[0].ID != done.ID {
		t.Errorf("completed list = %v", completed)
	}

	work, err := s.ListTasks(models.TaskFilter{Category: "work"})
	if err != nil {
		t.Fatal(err)
	}
	if len(work) != 1 || work[0].ID != pending.ID {
		t.Errorf("category list = %v", work)
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	cfg := map[string]string{"dataFile": path, "dataFileFormat": "json"}

	s1 := NewFileTaskStore()
	if err := s1.Initialize(cfg); err != nil {
		t.Fatal(err)
	}
	due := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	created, err := s1.CreateTask(models.Task{
		Title:    "survives restarts",
		Status:   models.StatusPending,
		Priority: models.PriorityUrgent,
		DueDate:  &due,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	s2 := NewFileTaskStore()
	if err := s2.Initialize(cfg); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s2.Close() }()

	got, err := s2.GetTask(created.ID)
	if err != nil {
		t.Fatalf("GetTask after reopen: %v", err)
	}
	if got.Title != "survives restarts" || got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("reloaded task = %+v", got)
	}
}

func TestChecksumDetectsTampering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	cfg := map[string]string{"dataFile": path, "dataFileFormat": "json"}

	s1 := NewFileTaskStore()
	if err := s1.Initialize(cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := s1.CreateTask(models.Task{Title: "original", Status: models.StatusPending, Priority: models.PriorityMedium}); err != nil {
		t.Fatal(err)
	}
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	// Edit the data file behind the store's back.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		t.Fatal(err)
	}

	s2 := NewFileTaskStore()
	if err := s2.Initialize(cfg); err == nil {
		_ = s2.Close()
		t.Fatal("tampered file loaded without error")
	}
}

package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/strideapp/stride/internal/orchestrator"
	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/notify"
	"github.com/strideapp/stride/store"
)

func newDispatcherFixtures(t *testing.T) (store.TaskStore, *store.SQLitePointsStore, *notify.Recorder) {
	t.Helper()

	taskStore := store.NewFileTaskStore()
	err := taskStore.Initialize(map[string]string{
		"dataFile":       filepath.Join(t.TempDir(), "tasks.json"),
		"dataFileFormat": "json",
	})
	if err != nil {
		t.Fatalf("init task store: %v", err)
	}
	t.Cleanup(func() { _ = taskStore.Close() })

	pointsStore, err := store.NewSQLitePointsStore(":memory:")
	if err != nil {
		t.Fatalf("init points store: %v", err)
	}
	t.Cleanup(func() { _ = pointsStore.Close() })

	return taskStore, pointsStore, &notify.Recorder{}
}

func TestApplyEffectsPersistsCreatesAndUpdates(t *testing.T) {
	taskStore, pointsStore, recorder := newDispatcherFixtures(t)

	orch := orchestrator.New()
	result, err := orch.Create(orchestrator.CreateRequest{Title: "dispatched"})
	if err != nil {
		t.Fatal(err)
	}

	if err := applyEffects(result.Effects, taskStore, recorder, pointsStore); err != nil {
		t.Fatalf("applyEffects(create): %v", err)
	}
	got, err := taskStore.GetTask(result.Task.ID)
	if err != nil {
		t.Fatalf("task not persisted: %v", err)
	}
	if got.Title != "dispatched" {
		t.Errorf("persisted title = %q", got.Title)
	}

	// A second persist of the same task updates instead of failing.
	started, err := orch.Start(result.Task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := applyEffects(started.Effects, taskStore, recorder, pointsStore); err != nil {
		t.Fatalf("applyEffects(update): %v", err)
	}
	got, _ = taskStore.GetTask(result.Task.ID)
	if got.Status != models.StatusInProgress {
		t.Errorf("persisted status = %s, want in-progress", got.Status)
	}
}

func TestApplyEffectsSchedulesAndCancels(t *testing.T) {
	taskStore, pointsStore, recorder := newDispatcherFixtures(t)

	at := time.Now().Add(24 * time.Hour)
	effects := []orchestrator.Effect{
		orchestrator.ScheduleReminder{TaskID: "t1", Title: "x", At: at},
		orchestrator.ScheduleDeadline{TaskID: "t1", Title: "x", At: at},
		orchestrator.CancelNotification{Identifier: notify.ReminderID("t1")},
	}
	if err := applyEffects(effects, taskStore, recorder, pointsStore); err != nil {
		t.Fatalf("applyEffects: %v", err)
	}
	if len(recorder.Calls) != 3 {
		t.Fatalf("scheduler calls = %d, want 3", len(recorder.Calls))
	}
	if recorder.Calls[0].Op != "reminder" || recorder.Calls[2].Op != "cancel" {
		t.Errorf("call ops = %v", recorder.Calls)
	}
}

func TestApplyEffectsRecordsPoints(t *testing.T) {
	taskStore, pointsStore, recorder := newDispatcherFixtures(t)

	entry := models.PointsEntry{UserID: "local", Amount: 12, XP: 24, Source: models.SourceTask, Reason: "r"}
	effects := []orchestrator.Effect{orchestrator.PointsAwarded{Entry: entry}}

	if err := applyEffects(effects, taskStore, recorder, pointsStore); err != nil {
		t.Fatalf("applyEffects: %v", err)
	}
	points, xp, err := pointsStore.Total("local")
	if err != nil {
		t.Fatal(err)
	}
	if points != 12 || xp != 24 {
		t.Errorf("ledger total = %d/%d, want 12/24", points, xp)
	}

	// Without a ledger the award is dropped, not an error.
	if err := applyEffects(effects, taskStore, recorder, nil); err != nil {
		t.Errorf("applyEffects without ledger: %v", err)
	}
}

func TestLedgerStats(t *testing.T) {
	_, pointsStore, _ := newDispatcherFixtures(t)

	now := time.Date(2026, time.March, 10, 20, 0, 0, 0, time.UTC)
	// Entries on three consecutive days ending today.
	for i := 0; i < 3; i++ {
		err := pointsStore.Append(models.PointsEntry{
			UserID:    "local",
			Amount:    100,
			XP:        700,
			Source:    models.SourceTask,
			Reason:    "r",
			CreatedAt: now.AddDate(0, 0, -i),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	provider := newLedgerStats(pointsStore)
	provider.now = func() time.Time { return now }

	stats := provider.Stats("local")
	if stats.Level != 3 {
		t.Errorf("level = %d, want 3 for 2100 XP", stats.Level)
	}
	if stats.StreakDays != 3 {
		t.Errorf("streak = %d, want 3", stats.StreakDays)
	}
	want := 3.0 / float64(consistencyWindowDays)
	if stats.Consistency != want {
		t.Errorf("consistency = %.3f, want %.3f", stats.Consistency, want)
	}
}

func TestLedgerStatsStreakSurvivesInactiveToday(t *testing.T) {
	_, pointsStore, _ := newDispatcherFixtures(t)

	now := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	for i := 1; i <= 2; i++ {
		err := pointsStore.Append(models.PointsEntry{
			UserID:    "local",
			Amount:    1,
			XP:        2,
			Source:    models.SourceTask,
			Reason:    "r",
			CreatedAt: now.AddDate(0, 0, -i),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	provider := newLedgerStats(pointsStore)
	provider.now = func() time.Time { return now }

	if stats := provider.Stats("local"); stats.StreakDays != 2 {
		t.Errorf("streak = %d, want 2 with nothing earned yet today", stats.StreakDays)
	}
}

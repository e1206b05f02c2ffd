package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/clock"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/timeutil"
)

func newHistoryContext(t *testing.T, now time.Time) (*Context, storage.Provider) {
	t.Helper()

	store := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "habitual.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &Context{Store: store, Clock: clock.Fixed{T: now}}, store
}

func TestHistoryCmd_ShowsRecordedWindow(t *testing.T) {
	now := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)
	ctx, store := newHistoryContext(t, now)

	habit := models.Habit{
		ID:       "h1",
		Name:     "Meditate",
		Type:     constants.HabitTypeBuild,
		IsActive: true,
		Occurrence: models.Occurrence{
			Type: constants.OccurrenceDaily,
		},
		Notification: models.Notification{
			Message: "Sit for 10 minutes",
			Time:    time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC),
		},
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	for _, day := range []string{"2026-03-04", "2026-03-05"} {
		err := store.WriteProgress(models.ProgressRecord{
			HabitID:   "h1",
			Date:      day,
			Completed: true,
			UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("WriteProgress(%s) failed: %v", day, err)
		}
	}

	cmd := &HistoryCmd{Habit: "Meditate", Days: 7}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The window queried must match what was persisted.
	records, err := store.GetProgress("h1", timeutil.DayOf(now.AddDate(0, 0, -6)), timeutil.DayOf(now))
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records in window, want 2", len(records))
	}
}

func TestHistoryCmd_RejectsNonPositiveDays(t *testing.T) {
	cmd := &HistoryCmd{Habit: "Meditate", Days: 0}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error for zero days")
	}
}

func TestHistoryCmd_UnknownHabit(t *testing.T) {
	now := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)
	ctx, _ := newHistoryContext(t, now)

	cmd := &HistoryCmd{Habit: "nope", Days: 7}
	if err := cmd.Run(ctx); err == nil {
		t.Fatal("expected error for unknown habit")
	}
}

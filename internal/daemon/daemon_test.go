package daemon

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/clock"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/feedback"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notify"
	"github.com/julianstephens/habitual/internal/scheduler"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/timeutil"
)

// callbackStore holds just enough Provider state for callback tests.
type callbackStore struct {
	mu       sync.Mutex
	habits   map[string]models.Habit
	progress map[string]models.ProgressRecord
}

func newCallbackStore(habits ...models.Habit) *callbackStore {
	s := &callbackStore{
		habits:   make(map[string]models.Habit),
		progress: make(map[string]models.ProgressRecord),
	}
	for _, h := range habits {
		s.habits[h.ID] = h
	}
	return s
}

func (s *callbackStore) Init() error  { return nil }
func (s *callbackStore) Load() error  { return nil }
func (s *callbackStore) Close() error { return nil }

func (s *callbackStore) AddHabit(h models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits[h.ID] = h
	return nil
}

func (s *callbackStore) GetHabit(id string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.habits[id]
	if !ok {
		return models.Habit{}, storage.ErrNotFound
	}
	return h, nil
}

func (s *callbackStore) GetHabitByName(name string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.habits {
		if h.Name == name {
			return h, nil
		}
	}
	return models.Habit{}, storage.ErrNotFound
}

func (s *callbackStore) GetAllHabits(includeInactive bool) ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Habit
	for _, h := range s.habits {
		if h.IsActive || includeInactive {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *callbackStore) UpdateHabit(h models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.habits[h.ID]; !ok {
		return storage.ErrNotFound
	}
	s.habits[h.ID] = h
	return nil
}

func (s *callbackStore) DeleteHabit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.habits, id)
	return nil
}

func (s *callbackStore) PersistSchedulingHandles(habitID, handle, chainHandle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.habits[habitID]
	if !ok {
		return storage.ErrNotFound
	}
	h.Notification.Handle = handle
	h.Notification.ChainHandle = chainHandle
	s.habits[habitID] = h
	return nil
}

func (s *callbackStore) WriteProgress(r models.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[r.HabitID+"|"+r.Date] = r
	return nil
}

func (s *callbackStore) GetProgress(habitID, startDay, endDay string) ([]models.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ProgressRecord
	for _, r := range s.progress {
		if r.HabitID == habitID && r.Date >= startDay && r.Date <= endDay {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *callbackStore) GetProgressForDay(day string) ([]models.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ProgressRecord
	for _, r := range s.progress {
		if r.Date == day {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *callbackStore) GetConfigPath() string { return "memory" }

var _ storage.Provider = (*callbackStore)(nil)

func newCallbackDaemon(t *testing.T, store *callbackStore, backend *notify.MemoryBackend, now time.Time) *Daemon {
	t.Helper()

	clk := clock.Fixed{T: now}
	sched := scheduler.New(backend, store, clk)
	fb := feedback.NewHandler(sched, store, backend, clk)

	cfg := &config.DaemonConfig{
		ResyncCronSpec: constants.DefaultResyncCronSpec,
		CallbackAddr:   constants.DefaultCallbackAddr,
	}
	d, err := New(sched, fb, cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return d
}

func postJSON(t *testing.T, d *Daemon, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	d.callbackMux().ServeHTTP(rec, req)
	return rec
}

func TestCallback_DeliveredRegistersNextOccurrence(t *testing.T) {
	scheduledAt := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	now := scheduledAt.Add(2 * time.Second)

	habit := models.Habit{
		ID:       "h1",
		Name:     "Stretch",
		Type:     constants.HabitTypeBuild,
		IsActive: true,
		Occurrence: models.Occurrence{
			Type: constants.OccurrenceDaily,
		},
		Notification: models.Notification{
			Message: "Time to stretch",
			Time:    scheduledAt,
		},
		CreatedAt: scheduledAt.AddDate(0, 0, -7),
		StartDate: scheduledAt.AddDate(0, 0, -7),
	}
	store := newCallbackStore(habit)
	backend := notify.NewMemoryBackend()
	d := newCallbackDaemon(t, store, backend, now)

	rec := postJSON(t, d, "/delivered",
		`{"habit_id":"h1","scheduled_at":"`+scheduledAt.Format(time.RFC3339)+`"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	updated, err := store.GetHabit("h1")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if updated.Notification.Handle == "" {
		t.Fatal("expected a registered handle after delivery callback")
	}

	reg, ok := backend.Get(updated.Notification.Handle)
	if !ok {
		t.Fatalf("handle %q not active in backend", updated.Notification.Handle)
	}
	wantNext := scheduledAt.AddDate(0, 0, 1)
	if !reg.Trigger.At.Equal(wantNext) {
		t.Errorf("next fire time = %v, want %v", reg.Trigger.At, wantNext)
	}
}

func TestCallback_ActionCompleteWritesProgress(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 30, 0, time.UTC)

	habit := models.Habit{
		ID:       "h1",
		Name:     "Stretch",
		Type:     constants.HabitTypeBuild,
		IsActive: true,
		Occurrence: models.Occurrence{
			Type: constants.OccurrenceDaily,
		},
		Notification: models.Notification{
			Message: "Time to stretch",
			Time:    now,
			Handle:  "mem-1",
		},
	}
	store := newCallbackStore(habit)
	backend := notify.NewMemoryBackend()
	d := newCallbackDaemon(t, store, backend, now)

	rec := postJSON(t, d, "/action",
		`{"habit_id":"h1","action":"complete","handle":"mem-1"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	records, err := store.GetProgressForDay(timeutil.DayOf(now))
	if err != nil {
		t.Fatalf("GetProgressForDay failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d progress records, want 1", len(records))
	}
	if !records[0].Completed || records[0].Skipped {
		t.Errorf("record = completed=%v skipped=%v, want completed only", records[0].Completed, records[0].Skipped)
	}
	if len(backend.Dismissed) != 1 || backend.Dismissed[0] != "mem-1" {
		t.Errorf("dismissed = %v, want [mem-1]", backend.Dismissed)
	}
}

func TestCallback_DeliveredRejectsMalformedBody(t *testing.T) {
	store := newCallbackStore()
	backend := notify.NewMemoryBackend()
	d := newCallbackDaemon(t, store, backend, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	rec := postJSON(t, d, "/delivered", `{"habit_id":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(backend.Active()) != 0 {
		t.Errorf("expected no registrations, got %d", len(backend.Active()))
	}
}

func TestCallback_RejectsNonPost(t *testing.T) {
	store := newCallbackStore()
	backend := notify.NewMemoryBackend()
	d := newCallbackDaemon(t, store, backend, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	for _, path := range []string{"/delivered", "/action"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		d.callbackMux().ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s status = %d, want %d", path, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}

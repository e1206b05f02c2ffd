// Package scheduler turns habit configuration into registered reminders.
//
// The scheduler owns the cancel-stale → compute-next → build-content →
// submit sequence and the per-habit serialization that keeps concurrent
// calls from racing to register competing reminders. It does not own
// persistence: the handle returned by the backend is written back through
// the storage collaborator.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/habitual/internal/clock"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notify"
	"github.com/julianstephens/habitual/internal/schedule"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/timeutil"
)

// ErrTooSoon is returned when the computed fire time is closer than the
// minimum lead time. Recoverable: the caller may retry after a delay or
// prompt the user to pick a later time.
var ErrTooSoon = errors.New("computed fire time is too soon to schedule safely")

// ConfigError reports a habit whose configuration cannot be scheduled:
// inactive, missing message, or an invalid reminder time. No side effects
// have occurred when it is returned.
type ConfigError struct {
	HabitID string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("habit %s cannot be scheduled: %s", e.HabitID, e.Reason)
}

// BackendError wraps a notification backend submission failure. The habit
// is left without an active reminder; the caller decides whether to retry.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("notification backend %s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

type Scheduler struct {
	backend notify.Backend
	store   storage.Provider
	clock   clock.Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(backend notify.Backend, store storage.Provider, clk clock.Clock) *Scheduler {
	return &Scheduler{
		backend: backend,
		store:   store,
		clock:   clk,
		locks:   make(map[string]*sync.Mutex),
	}
}

// habitLock returns the mutex serializing scheduling for one habit.
// Scheduling for distinct habits proceeds concurrently.
func (s *Scheduler) habitLock(habitID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[habitID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[habitID] = l
	}
	return l
}

// Schedule registers the next reminder occurrence for a habit and returns
// the new backend handle. The habit record is re-read under the per-habit
// lock so the cancel step always sees the latest handle, never a stale
// in-memory copy.
func (s *Scheduler) Schedule(ctx context.Context, habitID string) (string, error) {
	lock := s.habitLock(habitID)
	lock.Lock()
	defer lock.Unlock()

	habit, err := s.store.GetHabit(habitID)
	if err != nil {
		return "", fmt.Errorf("failed to load habit %s: %w", habitID, err)
	}

	return s.scheduleLocked(ctx, habit, habit.Notification.Time)
}

// ScheduleWithNominal registers the next occurrence using an explicit
// nominal time instead of the habit's configured one. The feedback
// handler uses this to apply drift compensation.
func (s *Scheduler) ScheduleWithNominal(ctx context.Context, habitID string, nominal time.Time) (string, error) {
	lock := s.habitLock(habitID)
	lock.Lock()
	defer lock.Unlock()

	habit, err := s.store.GetHabit(habitID)
	if err != nil {
		return "", fmt.Errorf("failed to load habit %s: %w", habitID, err)
	}

	return s.scheduleLocked(ctx, habit, nominal)
}

func (s *Scheduler) scheduleLocked(ctx context.Context, habit models.Habit, nominal time.Time) (string, error) {
	if !habit.IsActive {
		return "", &ConfigError{HabitID: habit.ID, Reason: "habit is inactive"}
	}
	if habit.Notification.Message == "" {
		return "", &ConfigError{HabitID: habit.ID, Reason: "notification message is empty"}
	}
	if err := timeutil.ValidateInstant(nominal); err != nil {
		return "", &ConfigError{HabitID: habit.ID, Reason: err.Error()}
	}

	now := s.clock.Now()

	// Cancel any previously registered reminders first, the primary and
	// its chained follow-up. A failed cancel is logged and swallowed: a
	// duplicate registration is less harmful than leaving the habit
	// without a reminder at all.
	for _, stale := range []string{habit.Notification.Handle, habit.Notification.ChainHandle} {
		if stale == "" {
			continue
		}
		if err := s.backend.Cancel(ctx, stale); err != nil {
			logger.Warn("Failed to cancel stale reminder", "habit", habit.ID, "handle", stale, "error", err)
		}
	}

	fireAt, err := s.nextFireTime(habit, nominal, now)
	if err != nil {
		return "", err
	}

	if fireAt.Sub(now) < constants.MinScheduleLead {
		return "", fmt.Errorf("%w: fires in %v", ErrTooSoon, fireAt.Sub(now))
	}

	content := schedule.BuildContent(habit, fireAt)
	handle, err := s.backend.Submit(ctx, content, s.triggerFor(habit, fireAt))
	if err != nil {
		return "", &BackendError{Op: "submit", Err: err}
	}

	// Backends without native weekday repeat only hold one concrete
	// occurrence at a time, so eagerly register the following one. A
	// chain step that fails its own validity guard is skipped, not an
	// error: it will be re-derived on next delivery. The chained handle
	// is persisted with the primary so the next cancel-stale step can
	// remove both instead of leaving an orphan.
	var chained string
	if !s.backend.SupportsWeekdayRepeat() {
		chained = s.chainNext(ctx, habit, fireAt, now)
	}

	if err := s.store.PersistSchedulingHandles(habit.ID, handle, chained); err != nil {
		return "", fmt.Errorf("failed to persist scheduling handles for habit %s: %w", habit.ID, err)
	}

	logger.Debug("Scheduled reminder", "habit", habit.ID, "fireAt", fireAt, "handle", handle, "chained", chained)
	return handle, nil
}

func (s *Scheduler) nextFireTime(habit models.Habit, nominal, now time.Time) (time.Time, error) {
	fireAt := schedule.NextDailyFireTime(nominal, now)

	if habit.Occurrence.Type == constants.OccurrenceCustom {
		adjusted, err := schedule.NextCustomFireTime(fireAt, habit.Occurrence.Days)
		if err != nil {
			// Calculator validation failures indicate corrupted habit
			// data and must surface, never be silently swallowed.
			return time.Time{}, err
		}
		fireAt = adjusted
	}

	return fireAt, nil
}

func (s *Scheduler) triggerFor(habit models.Habit, fireAt time.Time) notify.Trigger {
	if s.backend.SupportsWeekdayRepeat() && habit.Occurrence.Type == constants.OccurrenceDaily {
		return notify.DailyAt(fireAt)
	}
	return notify.OnceAt(fireAt)
}

// chainNext registers the occurrence after fireAt and returns its handle,
// or "" when the step was skipped or the submit failed.
func (s *Scheduler) chainNext(ctx context.Context, habit models.Habit, fireAt, now time.Time) string {
	next := fireAt.AddDate(0, 0, 1)

	if habit.Occurrence.Type == constants.OccurrenceCustom {
		adjusted, err := schedule.NextCustomFireTime(next, habit.Occurrence.Days)
		if err != nil {
			logger.Warn("Skipping chained registration", "habit", habit.ID, "error", err)
			return ""
		}
		next = adjusted
	}

	if next.Sub(now) < constants.MinScheduleLead {
		return ""
	}

	content := schedule.BuildContent(habit, next)
	handle, err := s.backend.Submit(ctx, content, notify.OnceAt(next))
	if err != nil {
		// Chain registrations are best-effort; the next delivery event
		// re-derives the occurrence anyway.
		logger.Warn("Failed to chain next occurrence", "habit", habit.ID, "fireAt", next, "error", err)
		return ""
	}
	return handle
}

// Unschedule cancels a habit's registered reminders, the primary and any
// chained follow-up, and clears both handles. Used when a habit is
// deleted or deactivated.
func (s *Scheduler) Unschedule(ctx context.Context, habitID string) error {
	lock := s.habitLock(habitID)
	lock.Lock()
	defer lock.Unlock()

	habit, err := s.store.GetHabit(habitID)
	if err != nil {
		return fmt.Errorf("failed to load habit %s: %w", habitID, err)
	}

	if habit.Notification.Handle == "" && habit.Notification.ChainHandle == "" {
		return nil
	}

	for _, handle := range []string{habit.Notification.Handle, habit.Notification.ChainHandle} {
		if handle == "" {
			continue
		}
		if err := s.backend.Cancel(ctx, handle); err != nil {
			logger.Warn("Failed to cancel reminder", "habit", habitID, "handle", handle, "error", err)
		}
	}

	return s.store.PersistSchedulingHandles(habitID, "", "")
}

// Resync re-registers reminders for every active habit. Best effort: a
// habit that fails to schedule is logged and skipped so the rest of the
// set still gets its reminders.
func (s *Scheduler) Resync(ctx context.Context) error {
	habits, err := s.store.GetAllHabits(false)
	if err != nil {
		return fmt.Errorf("failed to list habits: %w", err)
	}

	var failed int
	for _, h := range habits {
		if _, err := s.Schedule(ctx, h.ID); err != nil {
			failed++
			logger.Warn("Resync failed for habit", "habit", h.ID, "name", h.Name, "error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("resync completed with %d of %d habits failed", failed, len(habits))
	}
	return nil
}

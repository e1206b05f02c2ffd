// Package feedback reacts to delivered reminders and user responses.
//
// A delivered reminder always triggers scheduling of the next cycle,
// whatever the user does with it; complete and skip additionally write a
// progress record for the day.
package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/clock"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notify"
	"github.com/julianstephens/habitual/internal/schedule"
	"github.com/julianstephens/habitual/internal/scheduler"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/timeutil"
)

// DeliveryEvent is raised by the notification backend when a reminder
// reaches the user.
type DeliveryEvent struct {
	HabitID     string
	ScheduledAt time.Time
}

// ActionEvent is raised when the user responds to a delivered reminder.
type ActionEvent struct {
	HabitID string
	Action  constants.ReminderAction
	Handle  string
}

type Handler struct {
	scheduler *scheduler.Scheduler
	store     storage.Provider
	backend   notify.Backend
	clock     clock.Clock
}

func NewHandler(sched *scheduler.Scheduler, store storage.Provider, backend notify.Backend, clk clock.Clock) *Handler {
	return &Handler{
		scheduler: sched,
		store:     store,
		backend:   backend,
		clock:     clk,
	}
}

// HandleDelivered measures delivery drift and registers the following
// occurrence. Drift above the threshold pulls the next target earlier by
// the whole seconds of lag; the compensation applies to this one
// reschedule only and is never compounded, because the next cycle derives
// its nominal time from the habit record again.
func (h *Handler) HandleDelivered(ctx context.Context, event DeliveryEvent) error {
	if event.HabitID == "" {
		return fmt.Errorf("delivery event is missing a habit id")
	}
	if err := timeutil.ValidateInstant(event.ScheduledAt); err != nil {
		return fmt.Errorf("delivery event has an invalid scheduled time: %w", err)
	}

	now := h.clock.Now()
	drift := schedule.Drift(event.ScheduledAt, now)

	nextNominal := event.ScheduledAt.AddDate(0, 0, 1)
	if drift > constants.DriftThreshold {
		compensation := time.Duration(int64(drift.Seconds())) * time.Second
		nextNominal = nextNominal.Add(-compensation)
		logger.Warn("Compensating for delivery drift",
			"habit", event.HabitID, "drift", drift, "compensation", compensation)
	}

	if _, err := h.scheduler.ScheduleWithNominal(ctx, event.HabitID, nextNominal); err != nil {
		return fmt.Errorf("failed to schedule next occurrence for habit %s: %w", event.HabitID, err)
	}

	logger.Debug("Handled delivery", "habit", event.HabitID, "drift", drift)
	return nil
}

// HandleAction records the user's response to a delivered reminder. A
// plain press is informational only. The delivered notification instance
// is dismissed afterwards regardless of action; dismissal failures are
// logged, not escalated.
func (h *Handler) HandleAction(ctx context.Context, event ActionEvent) error {
	if event.HabitID == "" {
		return fmt.Errorf("action event is missing a habit id")
	}

	now := h.clock.Now()

	switch event.Action {
	case constants.ActionComplete:
		if err := h.writeProgress(event.HabitID, now, true, false); err != nil {
			return err
		}
	case constants.ActionSkip:
		if err := h.writeProgress(event.HabitID, now, false, true); err != nil {
			return err
		}
	case constants.ActionPress:
		logger.Debug("Reminder pressed", "habit", event.HabitID)
	default:
		return fmt.Errorf("unknown reminder action %q", event.Action)
	}

	if event.Handle != "" {
		if err := h.backend.DismissDelivered(ctx, event.Handle); err != nil {
			logger.Warn("Failed to dismiss delivered reminder", "habit", event.HabitID, "handle", event.Handle, "error", err)
		}
	}

	return nil
}

func (h *Handler) writeProgress(habitID string, now time.Time, completed, skipped bool) error {
	record := models.ProgressRecord{
		HabitID:   habitID,
		Date:      timeutil.DayOf(now),
		Completed: completed,
		Skipped:   skipped,
		UpdatedAt: now,
	}
	if err := h.store.WriteProgress(record); err != nil {
		return fmt.Errorf("failed to write progress for habit %s: %w", habitID, err)
	}
	return nil
}

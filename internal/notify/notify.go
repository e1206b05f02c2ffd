// Package notify defines the contract between the scheduling core and
// whatever actually delivers reminders: the desktop tray companion in
// production, an in-memory backend in tests.
package notify

import (
	"context"
	"time"
)

// Correlation is the opaque payload attached to every reminder so a
// delivery or response event can be traced back to its habit.
type Correlation struct {
	HabitID     string    `json:"habit_id"`
	Kind        string    `json:"kind"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Content is the platform-agnostic body of a reminder.
type Content struct {
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	Category    string      `json:"category"`
	Sound       string      `json:"sound"`
	Correlation Correlation `json:"correlation"`
}

// TriggerKind selects how a backend interprets a Trigger.
type TriggerKind string

const (
	// TriggerOnce fires a single time at an absolute instant.
	TriggerOnce TriggerKind = "once"
	// TriggerDaily fires every day at a wall-clock hour and minute.
	TriggerDaily TriggerKind = "daily"
)

// Trigger describes when a reminder fires. Once-triggers use At;
// daily-triggers use Hour and Minute.
type Trigger struct {
	Kind   TriggerKind `json:"kind"`
	At     time.Time   `json:"at,omitempty"`
	Hour   int         `json:"hour,omitempty"`
	Minute int         `json:"minute,omitempty"`
}

// OnceAt builds a one-shot trigger for an absolute instant.
func OnceAt(at time.Time) Trigger {
	return Trigger{Kind: TriggerOnce, At: at}
}

// DailyAt builds a repeating daily trigger from an instant's wall clock.
func DailyAt(at time.Time) Trigger {
	return Trigger{Kind: TriggerDaily, Hour: at.Hour(), Minute: at.Minute()}
}

// Backend registers, cancels, and dismisses reminders.
//
// Cancel is idempotent: cancelling an unknown or already-fired handle is
// not an error. Submit returns an opaque handle that identifies the
// registered reminder for later cancellation.
type Backend interface {
	Submit(ctx context.Context, content Content, trigger Trigger) (string, error)
	Cancel(ctx context.Context, handle string) error
	DismissDelivered(ctx context.Context, handle string) error

	// SupportsWeekdayRepeat reports whether the backend can natively
	// repeat on an arbitrary weekday set. When it cannot, the scheduler
	// chains one-shot registrations instead.
	SupportsWeekdayRepeat() bool
}

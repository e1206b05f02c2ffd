// Package schedule computes reminder fire times.
//
// Every function here is pure: callers pass the current time explicitly
// and nothing reads the wall clock. The single source of truth for
// next-occurrence math lives here so the scheduler, the feedback handler,
// and the CLI all agree on tie-break and weekday semantics.
package schedule

import (
	"fmt"
	"math"
	"time"
)

// ValidationError reports a structurally invalid scheduling configuration,
// such as an empty custom day set. It indicates a data-integrity bug
// upstream and must not be swallowed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid schedule: %s", e.Reason)
}

// NextDailyFireTime returns the next moment a daily reminder with the
// given nominal wall-clock time fires, strictly after now.
//
// The candidate is built on now's calendar date with the nominal hour and
// minute, seconds and sub-second zeroed. A candidate at or before now
// rolls forward exactly one calendar day, so a reminder configured for
// the current instant fires tomorrow, never immediately.
func NextDailyFireTime(nominal, now time.Time) time.Time {
	candidate := time.Date(
		now.Year(), now.Month(), now.Day(),
		nominal.Hour(), nominal.Minute(), 0, 0,
		now.Location(),
	)

	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	return candidate
}

// NextCustomFireTime advances candidate to the first day whose weekday is
// in selectedDays, preserving time-of-day. The scan covers at most one
// full week starting from candidate's own weekday, so a candidate already
// on a selected day is returned unchanged.
//
// An empty day set, or a scan that finds no match, returns a
// ValidationError; the non-empty invariant is enforced at habit creation,
// so either case means corrupted data rather than a schedulable state.
func NextCustomFireTime(candidate time.Time, selectedDays []time.Weekday) (time.Time, error) {
	if len(selectedDays) == 0 {
		return time.Time{}, &ValidationError{Reason: "no days selected for notification"}
	}

	selected := make(map[time.Weekday]bool, len(selectedDays))
	for _, d := range selectedDays {
		selected[d] = true
	}

	startDay := candidate.Weekday()
	for i := 0; i < 7; i++ {
		if selected[(startDay+time.Weekday(i))%7] {
			return candidate.AddDate(0, 0, i), nil
		}
	}

	return time.Time{}, &ValidationError{Reason: "no matching weekday within one week"}
}

// MinutesUntil returns floor((target - now) in minutes). The result is
// negative when target is in the past; presentation code re-interprets
// negative values, scheduling code never uses this.
func MinutesUntil(target, now time.Time) int {
	return int(math.Floor(target.Sub(now).Minutes()))
}

// NextReminderText renders a MinutesUntil result for display. A negative
// value means the nominal time already passed today, so the reminder
// occurs tomorrow.
func NextReminderText(minutesUntil int) string {
	if minutesUntil < 0 {
		return fmt.Sprintf("Next reminder in %d minutes", 24*60+minutesUntil)
	}
	return fmt.Sprintf("Next reminder in %d minutes", minutesUntil)
}

// Drift returns how late a reminder was delivered relative to its
// scheduled fire time. Negative drift means early delivery.
func Drift(scheduledAt, deliveredAt time.Time) time.Duration {
	return deliveredAt.Sub(scheduledAt)
}

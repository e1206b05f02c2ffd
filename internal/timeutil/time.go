package timeutil

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

// InstantError reports a malformed or otherwise unusable datetime value.
// It is raised only at the boundary where raw inputs become instants and
// must never leak past the validation helpers in this package.
type InstantError struct {
	Reason string
}

func (e *InstantError) Error() string {
	return fmt.Sprintf("invalid instant: %s", e.Reason)
}

// ValidateInstant rejects zero or out-of-range instants. Scheduling math
// downstream assumes every time.Time it receives has passed this check.
func ValidateInstant(t time.Time) error {
	if t.IsZero() {
		return &InstantError{Reason: "zero time"}
	}
	// Guard against garbage produced by bad arithmetic on parsed input.
	if t.Year() < 1 || t.Year() > 9999 {
		return &InstantError{Reason: fmt.Sprintf("year %d out of range", t.Year())}
	}
	return nil
}

// ParseInstant parses an RFC3339 timestamp into a validated instant.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &InstantError{Reason: err.Error()}
	}
	if err := ValidateInstant(t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// DisplayOptions controls FormatForDisplay rendering.
type DisplayOptions struct {
	// Use24Hour renders 15:04 instead of the default 3:04 PM.
	Use24Hour bool
	// WithSeconds includes seconds in the rendered clock.
	WithSeconds bool
}

// FormatForDisplay renders the clock portion of an instant for user-facing
// output, 12-hour by default.
func FormatForDisplay(t time.Time, opts DisplayOptions) (string, error) {
	if err := ValidateInstant(t); err != nil {
		return "", err
	}

	layout := "3:04 PM"
	switch {
	case opts.Use24Hour && opts.WithSeconds:
		layout = "15:04:05"
	case opts.Use24Hour:
		layout = constants.TimeFormat
	case opts.WithSeconds:
		layout = "3:04:05 PM"
	}
	return t.Format(layout), nil
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ParseClock parses a wall-clock string in the standard format (HH:MM).
func ParseClock(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// CombineDateAndTime combines a date string (YYYY-MM-DD) and time string (HH:MM)
// into a single time.Time in the specified timezone.
func CombineDateAndTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	date, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}

	timeOfDay, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %w", err)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), 0, 0,
		loc,
	), nil
}

// ValidateClockFormat checks if the string matches the standard time format.
func ValidateClockFormat(timeStr string) bool {
	_, err := ParseClock(timeStr)
	return err == nil
}

// DayOf returns the YYYY-MM-DD date string of an instant.
func DayOf(t time.Time) string {
	return t.Format(constants.DateFormat)
}

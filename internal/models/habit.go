package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/timeutil"
)

// Occurrence describes how often a habit's reminder recurs. Daily habits
// fire every day; custom habits fire only on the listed weekdays.
// Weekdays use time.Weekday internally (0=Sunday..6=Saturday); day names
// (MONDAY..SUNDAY) appear only at parse/format boundaries.
type Occurrence struct {
	Type constants.OccurrenceType `json:"type"`
	Days []time.Weekday           `json:"days,omitempty"`
}

// Notification holds a habit's reminder configuration. Time carries the
// nominal wall-clock reminder moment; only its hour and minute are
// semantically meaningful. Handle is the opaque identifier of the
// currently registered backend reminder, empty when none is registered.
// ChainHandle tracks the eagerly registered follow-up occurrence on
// backends without native repeat, so reschedules can cancel it too.
type Notification struct {
	Message     string    `json:"message"`
	Time        time.Time `json:"time"`
	Handle      string    `json:"handle,omitempty"`
	ChainHandle string    `json:"chain_handle,omitempty"`
}

// Habit represents a recurring practice to track
type Habit struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Type         constants.HabitType `json:"type"`
	Occurrence   Occurrence          `json:"occurrence"`
	Notification Notification        `json:"notification"`
	IsActive     bool                `json:"is_active"`
	CreatedAt    time.Time           `json:"created_at"`
	StartDate    time.Time           `json:"start_date"`
}

func (h *Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("habit name cannot be empty")
	}

	if h.Type != constants.HabitTypeBuild && h.Type != constants.HabitTypeBreak {
		return fmt.Errorf("invalid habit type %q", h.Type)
	}

	switch h.Occurrence.Type {
	case constants.OccurrenceDaily:
		// daily ignores the day list
	case constants.OccurrenceCustom:
		if len(h.Occurrence.Days) == 0 {
			return fmt.Errorf("days must be specified for custom occurrence")
		}
		for _, d := range h.Occurrence.Days {
			if d < time.Sunday || d > time.Saturday {
				return fmt.Errorf("invalid weekday %d", d)
			}
		}
	default:
		return fmt.Errorf("invalid occurrence type %q", h.Occurrence.Type)
	}

	if strings.TrimSpace(h.Notification.Message) == "" {
		return fmt.Errorf("notification message cannot be empty")
	}

	if err := timeutil.ValidateInstant(h.Notification.Time); err != nil {
		return fmt.Errorf("invalid notification time: %w", err)
	}

	return nil
}

// OccursOn reports whether the habit's reminder is due on the given weekday.
func (h *Habit) OccursOn(day time.Weekday) bool {
	if h.Occurrence.Type != constants.OccurrenceCustom {
		return true
	}
	for _, d := range h.Occurrence.Days {
		if d == day {
			return true
		}
	}
	return false
}

// NeedsNotificationUpdate reports whether an edit changed any field that
// affects the registered reminder, requiring a reschedule.
func NeedsNotificationUpdate(old, updated Habit) bool {
	return !updated.Notification.Time.Equal(old.Notification.Time) ||
		strings.TrimSpace(updated.Notification.Message) != strings.TrimSpace(old.Notification.Message) ||
		strings.TrimSpace(updated.Name) != strings.TrimSpace(old.Name)
}

// FilterByType returns the active habits of the given type.
func FilterByType(habits []Habit, habitType constants.HabitType) []Habit {
	var out []Habit
	for _, h := range habits {
		if h.Type == habitType && h.IsActive {
			out = append(out, h)
		}
	}
	return out
}

// FormatSchedule returns a human-readable description of the occurrence.
func (h *Habit) FormatSchedule() string {
	if h.Occurrence.Type == constants.OccurrenceDaily {
		return "Every day"
	}

	days := make([]time.Weekday, len(h.Occurrence.Days))
	copy(days, h.Occurrence.Days)
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()[:3]
	}
	return fmt.Sprintf("Weekly: %s", strings.Join(names, ", "))
}

var dayNames = map[string]time.Weekday{
	"SUNDAY":    time.Sunday,
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
}

// ParseWeekday converts a day name (MONDAY..SUNDAY, any case, or a common
// three-letter abbreviation) to its time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if wd, ok := dayNames[key]; ok {
		return wd, nil
	}
	if len(key) == 3 {
		for full, wd := range dayNames {
			if strings.HasPrefix(full, key) {
				return wd, nil
			}
		}
	}
	return 0, fmt.Errorf("invalid weekday: %s", name)
}

// FormatWeekday renders a time.Weekday as its canonical storage name.
func FormatWeekday(day time.Weekday) string {
	return strings.ToUpper(day.String())
}

// ParseWeekdays parses a comma-separated list of weekday names.
func ParseWeekdays(s string) ([]time.Weekday, error) {
	parts := strings.Split(s, ",")
	var weekdays []time.Weekday
	for _, part := range parts {
		wd, err := ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		weekdays = append(weekdays, wd)
	}
	return weekdays, nil
}

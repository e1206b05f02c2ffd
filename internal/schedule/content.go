package schedule

import (
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/notify"
)

// BuildContent assembles the reminder payload for a habit occurrence.
// Deterministic: the same habit and fire time always produce the same
// content.
func BuildContent(habit models.Habit, fireAt time.Time) notify.Content {
	return notify.Content{
		Title:    habit.Name,
		Body:     habit.Notification.Message,
		Category: "habit",
		Sound:    "default",
		Correlation: notify.Correlation{
			HabitID:     habit.ID,
			Kind:        constants.ReminderKind,
			ScheduledAt: fireAt,
		},
	}
}

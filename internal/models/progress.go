package models

import "time"

// ProgressRecord captures the outcome of one habit on one day. At most one
// record exists per (HabitID, Date); later writes for the same key replace
// the earlier one.
type ProgressRecord struct {
	HabitID   string    `json:"habit_id"`
	Date      string    `json:"date"` // YYYY-MM-DD format
	Completed bool      `json:"completed"`
	Skipped   bool      `json:"skipped"`
	Notes     string    `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

package storage

import (
	"errors"

	"github.com/julianstephens/habitual/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits(includeInactive bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	DeleteHabit(id string) error

	// PersistSchedulingHandles records the backend handles of the
	// currently registered reminder and its chained follow-up for a
	// habit. Empty handles clear the respective registration.
	PersistSchedulingHandles(habitID, handle, chainHandle string) error

	// Progress
	// WriteProgress upserts by (HabitID, Date); the later write wins.
	WriteProgress(models.ProgressRecord) error
	GetProgress(habitID, startDay, endDay string) ([]models.ProgressRecord, error)
	GetProgressForDay(day string) ([]models.ProgressRecord, error)

	// Utils
	GetConfigPath() string
}

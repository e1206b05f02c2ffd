package constants

import "time"

// HabitType represents whether a habit builds or breaks a behavior
type HabitType string

// OccurrenceType represents how often a habit's reminder recurs
type OccurrenceType string

// ReminderAction represents a user response to a delivered reminder
type ReminderAction string

const (
	AppName            = "habitual"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitual/habitual.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Habit Type constants
	HabitTypeBuild HabitType = "build"
	HabitTypeBreak HabitType = "break"

	// Occurrence constants
	OccurrenceDaily  OccurrenceType = "daily"
	OccurrenceCustom OccurrenceType = "custom"

	// Reminder actions carried on notification responses
	ActionComplete ReminderAction = "complete"
	ActionSkip     ReminderAction = "skip"
	ActionPress    ReminderAction = "press"

	// ReminderKind tags the correlation payload of every scheduled reminder
	ReminderKind = "habit_reminder"

	// MinScheduleLead is the smallest gap between "now" and a fire time
	// that the scheduler will accept. Anything shorter is rejected as a
	// degenerate trigger.
	MinScheduleLead = time.Second

	// DriftThreshold is the delivery lag above which the next occurrence
	// is pulled earlier to compensate. Applied once, never compounded.
	DriftThreshold = 5 * time.Second

	// Tray companion app protocol
	NotifierLockfileName   = "habitual-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.habitual"

	// Daemon defaults
	DefaultResyncCronSpec = "5 0 * * *" // nightly, shortly after midnight
	DefaultCallbackAddr   = "127.0.0.1:47821"
)

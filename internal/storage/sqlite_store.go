package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS habits (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	occurrence_type TEXT NOT NULL,
	occurrence_days TEXT NOT NULL DEFAULT '[]',
	notification_message TEXT NOT NULL,
	notification_time TEXT NOT NULL,
	notification_handle TEXT NOT NULL DEFAULT '',
	notification_chain_handle TEXT NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL,
	start_date TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS progress (
	habit_id TEXT NOT NULL,
	day TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL,
	PRIMARY KEY (habit_id, day)
);
`

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'habitual init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) AddHabit(habit models.Habit) error {
	return s.UpdateHabit(habit)
}

func (s *SQLiteStore) UpdateHabit(habit models.Habit) error {
	days, err := encodeDays(habit.Occurrence.Days)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO habits (id, name, type, occurrence_type, occurrence_days,
			notification_message, notification_time, notification_handle,
			notification_chain_handle, is_active, created_at, start_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			occurrence_type = excluded.occurrence_type,
			occurrence_days = excluded.occurrence_days,
			notification_message = excluded.notification_message,
			notification_time = excluded.notification_time,
			notification_handle = excluded.notification_handle,
			notification_chain_handle = excluded.notification_chain_handle,
			is_active = excluded.is_active,
			start_date = excluded.start_date`,
		habit.ID, habit.Name, string(habit.Type), string(habit.Occurrence.Type), days,
		habit.Notification.Message, habit.Notification.Time.Format(time.RFC3339),
		habit.Notification.Handle, habit.Notification.ChainHandle, boolToInt(habit.IsActive),
		habit.CreatedAt.Format(time.RFC3339), habit.StartDate.Format(time.RFC3339),
	)
	return err
}

const habitColumns = `id, name, type, occurrence_type, occurrence_days,
	notification_message, notification_time, notification_handle,
	notification_chain_handle, is_active, created_at, start_date`

func (s *SQLiteStore) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	return scanHabit(row)
}

func (s *SQLiteStore) GetHabitByName(name string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE name = ?`, name)
	return scanHabit(row)
}

func (s *SQLiteStore) GetAllHabits(includeInactive bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *SQLiteStore) DeleteHabit(id string) error {
	res, err := s.db.Exec(`DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) PersistSchedulingHandles(habitID, handle, chainHandle string) error {
	res, err := s.db.Exec(`UPDATE habits SET notification_handle = ?, notification_chain_handle = ? WHERE id = ?`,
		handle, chainHandle, habitID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) WriteProgress(record models.ProgressRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO progress (habit_id, day, completed, skipped, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			completed = excluded.completed,
			skipped = excluded.skipped,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		record.HabitID, record.Date, boolToInt(record.Completed), boolToInt(record.Skipped),
		record.Notes, record.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

func (s *SQLiteStore) GetProgress(habitID, startDay, endDay string) ([]models.ProgressRecord, error) {
	rows, err := s.db.Query(`
		SELECT habit_id, day, completed, skipped, notes, updated_at
		FROM progress
		WHERE habit_id = ? AND day >= ? AND day <= ?
		ORDER BY day`, habitID, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProgress(rows)
}

func (s *SQLiteStore) GetProgressForDay(day string) ([]models.ProgressRecord, error) {
	rows, err := s.db.Query(`
		SELECT habit_id, day, completed, skipped, notes, updated_at
		FROM progress
		WHERE day = ?
		ORDER BY habit_id`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProgress(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var habitType, occType, days, notifTime, createdAt, startDate string
	var active int

	err := row.Scan(&h.ID, &h.Name, &habitType, &occType, &days,
		&h.Notification.Message, &notifTime, &h.Notification.Handle,
		&h.Notification.ChainHandle, &active, &createdAt, &startDate)
	if err == sql.ErrNoRows {
		return models.Habit{}, ErrNotFound
	}
	if err != nil {
		return models.Habit{}, err
	}

	h.Type = constants.HabitType(habitType)
	h.Occurrence.Type = constants.OccurrenceType(occType)
	h.IsActive = active != 0

	if h.Occurrence.Days, err = decodeDays(days); err != nil {
		return models.Habit{}, err
	}
	if h.Notification.Time, err = time.Parse(time.RFC3339, notifTime); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse notification_time: %w", err)
	}
	if h.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if h.StartDate, err = time.Parse(time.RFC3339, startDate); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse start_date: %w", err)
	}

	return h, nil
}

func collectProgress(rows *sql.Rows) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	for rows.Next() {
		var r models.ProgressRecord
		var completed, skipped int
		var updatedAt string
		if err := rows.Scan(&r.HabitID, &r.Date, &completed, &skipped, &r.Notes, &updatedAt); err != nil {
			return nil, err
		}
		r.Completed = completed != 0
		r.Skipped = skipped != 0
		var err error
		if r.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func encodeDays(days []time.Weekday) (string, error) {
	if days == nil {
		days = []time.Weekday{}
	}
	raw, err := json.Marshal(days)
	if err != nil {
		return "", fmt.Errorf("failed to encode occurrence days: %w", err)
	}
	return string(raw), nil
}

func decodeDays(raw string) ([]time.Weekday, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var days []time.Weekday
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return nil, fmt.Errorf("failed to decode occurrence days: %w", err)
	}
	return days, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

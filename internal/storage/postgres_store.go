package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
)

type PostgresStore struct {
	connStr string
	db      *sql.DB
}

func NewPostgresStore(connStr string) *PostgresStore {
	s := &PostgresStore{connStr: connStr}
	s.ensureSearchPath()
	return s
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string
// carries an inline password. Credentials must come from the OS keyring,
// .pgpass, or environment variables instead.
func HasEmbeddedCredentials(connStr string) bool {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		if u.User != nil {
			if _, set := u.User.Password(); set {
				return true
			}
		}
		return false
	}

	// DSN format: space-separated key=value pairs
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "password") {
			return true
		}
	}
	return false
}

func (s *PostgresStore) ensureSearchPath() {
	// Ensure search_path is set to habitual in the connection string
	if strings.HasPrefix(s.connStr, "postgres://") || strings.HasPrefix(s.connStr, "postgresql://") {
		u, err := url.Parse(s.connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
			s.connStr = u.String()
		}
		return
	}

	for _, part := range strings.Fields(s.connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "search_path") {
			return
		}
	}
	s.connStr = strings.TrimSpace(s.connStr) + " search_path=" + constants.AppName
}

const postgresSchema = `
CREATE SCHEMA IF NOT EXISTS habitual;

CREATE TABLE IF NOT EXISTS habits (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	occurrence_type TEXT NOT NULL,
	occurrence_days TEXT NOT NULL DEFAULT '[]',
	notification_message TEXT NOT NULL,
	notification_time TIMESTAMPTZ NOT NULL,
	notification_handle TEXT NOT NULL DEFAULT '',
	notification_chain_handle TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	start_date TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS progress (
	habit_id TEXT NOT NULL,
	day TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	skipped BOOLEAN NOT NULL DEFAULT FALSE,
	notes TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (habit_id, day)
);
`

func (s *PostgresStore) Init() error {
	if err := s.open(); err != nil {
		return err
	}

	if _, err := s.db.Exec(postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (s *PostgresStore) Load() error {
	if s.db != nil {
		return nil
	}
	return s.open()
}

func (s *PostgresStore) open() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) GetConfigPath() string {
	return s.connStr
}

func (s *PostgresStore) AddHabit(habit models.Habit) error {
	return s.UpdateHabit(habit)
}

func (s *PostgresStore) UpdateHabit(habit models.Habit) error {
	days, err := json.Marshal(habit.Occurrence.Days)
	if err != nil {
		return fmt.Errorf("failed to encode occurrence days: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO habits (id, name, type, occurrence_type, occurrence_days,
			notification_message, notification_time, notification_handle,
			notification_chain_handle, is_active, created_at, start_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			occurrence_type = EXCLUDED.occurrence_type,
			occurrence_days = EXCLUDED.occurrence_days,
			notification_message = EXCLUDED.notification_message,
			notification_time = EXCLUDED.notification_time,
			notification_handle = EXCLUDED.notification_handle,
			notification_chain_handle = EXCLUDED.notification_chain_handle,
			is_active = EXCLUDED.is_active,
			start_date = EXCLUDED.start_date`,
		habit.ID, habit.Name, string(habit.Type), string(habit.Occurrence.Type), string(days),
		habit.Notification.Message, habit.Notification.Time, habit.Notification.Handle,
		habit.Notification.ChainHandle, habit.IsActive, habit.CreatedAt, habit.StartDate,
	)
	return err
}

const pgHabitColumns = `id, name, type, occurrence_type, occurrence_days,
	notification_message, notification_time, notification_handle,
	notification_chain_handle, is_active, created_at, start_date`

func (s *PostgresStore) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+pgHabitColumns+` FROM habits WHERE id = $1`, id)
	return scanPgHabit(row)
}

func (s *PostgresStore) GetHabitByName(name string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+pgHabitColumns+` FROM habits WHERE name = $1`, name)
	return scanPgHabit(row)
}

func (s *PostgresStore) GetAllHabits(includeInactive bool) ([]models.Habit, error) {
	query := `SELECT ` + pgHabitColumns + ` FROM habits`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanPgHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *PostgresStore) DeleteHabit(id string) error {
	res, err := s.db.Exec(`DELETE FROM habits WHERE id = $1`, id)
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

func (s *PostgresStore) PersistSchedulingHandles(habitID, handle, chainHandle string) error {
	res, err := s.db.Exec(`UPDATE habits SET notification_handle = $1, notification_chain_handle = $2 WHERE id = $3`,
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

func (s *PostgresStore) WriteProgress(record models.ProgressRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO progress (habit_id, day, completed, skipped, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (habit_id, day) DO UPDATE SET
			completed = EXCLUDED.completed,
			skipped = EXCLUDED.skipped,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at`,
		record.HabitID, record.Date, record.Completed, record.Skipped,
		record.Notes, record.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) GetProgress(habitID, startDay, endDay string) ([]models.ProgressRecord, error) {
	rows, err := s.db.Query(`
		SELECT habit_id, day, completed, skipped, notes, updated_at
		FROM progress
		WHERE habit_id = $1 AND day >= $2 AND day <= $3
		ORDER BY day`, habitID, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPgProgress(rows)
}

func (s *PostgresStore) GetProgressForDay(day string) ([]models.ProgressRecord, error) {
	rows, err := s.db.Query(`
		SELECT habit_id, day, completed, skipped, notes, updated_at
		FROM progress
		WHERE day = $1
		ORDER BY habit_id`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPgProgress(rows)
}

func scanPgHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var habitType, occType, days string

	err := row.Scan(&h.ID, &h.Name, &habitType, &occType, &days,
		&h.Notification.Message, &h.Notification.Time, &h.Notification.Handle,
		&h.Notification.ChainHandle, &h.IsActive, &h.CreatedAt, &h.StartDate)
	if err == sql.ErrNoRows {
		return models.Habit{}, ErrNotFound
	}
	if err != nil {
		return models.Habit{}, err
	}

	h.Type = constants.HabitType(habitType)
	h.Occurrence.Type = constants.OccurrenceType(occType)
	if h.Occurrence.Days, err = decodeDays(days); err != nil {
		return models.Habit{}, err
	}

	return h, nil
}

func collectPgProgress(rows *sql.Rows) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	for rows.Next() {
		var r models.ProgressRecord
		if err := rows.Scan(&r.HabitID, &r.Date, &r.Completed, &r.Skipped, &r.Notes, &r.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

var (
	_ Provider = (*SQLiteStore)(nil)
	_ Provider = (*PostgresStore)(nil)
)

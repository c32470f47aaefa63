package database

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// ScheduleRepositoryImpl handles database operations for fetch schedules
type ScheduleRepositoryImpl struct {
	db *DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *DB) *ScheduleRepositoryImpl {
	return &ScheduleRepositoryImpl{db: db}
}

// UpsertSchedule syncs a schedule definition into the database, preserving
// run state (last_run_at, counters) across config reloads
func (r *ScheduleRepositoryImpl) UpsertSchedule(s Schedule) error {
	_, err := r.db.Exec(`
		INSERT INTO fetch_schedules (
			name, interval_minutes, categories, max_items,
			window_hours, language, enhance, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			interval_minutes = EXCLUDED.interval_minutes,
			categories = EXCLUDED.categories,
			max_items = EXCLUDED.max_items,
			window_hours = EXCLUDED.window_hours,
			language = EXCLUDED.language,
			enhance = EXCLUDED.enhance,
			active = EXCLUDED.active,
			updated_at = NOW()
	`, s.Name, s.IntervalMinutes, pq.Array(s.Categories), s.MaxItems,
		s.WindowHours, s.Language, s.Enhance, s.Active)

	if err != nil {
		return fmt.Errorf("failed to upsert schedule: %w", err)
	}

	return nil
}

// GetSchedule returns a schedule by name, or nil when it does not exist
func (r *ScheduleRepositoryImpl) GetSchedule(name string) (*Schedule, error) {
	row := r.db.QueryRow(`
		SELECT id, name, interval_minutes, COALESCE(categories, '{}'),
		       max_items, window_hours, COALESCE(language, ''), enhance,
		       active, last_run_at, success_count, error_count,
		       created_at, updated_at
		FROM fetch_schedules
		WHERE name = $1
	`, name)

	s, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return s, nil
}

// GetSchedules returns all schedules ordered by name
func (r *ScheduleRepositoryImpl) GetSchedules() ([]Schedule, error) {
	rows, err := r.db.Query(`
		SELECT id, name, interval_minutes, COALESCE(categories, '{}'),
		       max_items, window_hours, COALESCE(language, ''), enhance,
		       active, last_run_at, success_count, error_count,
		       created_at, updated_at
		FROM fetch_schedules
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedules: %w", err)
	}
	defer rows.Close()

	return collectSchedules(rows)
}

// GetDueSchedules returns active schedules whose interval has elapsed since
// their last successful run. Schedules that never ran are always due.
func (r *ScheduleRepositoryImpl) GetDueSchedules() ([]Schedule, error) {
	rows, err := r.db.Query(`
		SELECT id, name, interval_minutes, COALESCE(categories, '{}'),
		       max_items, window_hours, COALESCE(language, ''), enhance,
		       active, last_run_at, success_count, error_count,
		       created_at, updated_at
		FROM fetch_schedules
		WHERE active = true
		  AND (last_run_at IS NULL
		       OR last_run_at + (interval_minutes * INTERVAL '1 minute') <= NOW())
		ORDER BY last_run_at ASC NULLS FIRST
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get due schedules: %w", err)
	}
	defer rows.Close()

	return collectSchedules(rows)
}

// MarkRunSuccess records a completed run, advancing last_run_at
func (r *ScheduleRepositoryImpl) MarkRunSuccess(name string) error {
	_, err := r.db.Exec(`
		UPDATE fetch_schedules
		SET last_run_at = NOW(), success_count = success_count + 1, updated_at = NOW()
		WHERE name = $1
	`, name)
	if err != nil {
		return fmt.Errorf("failed to mark run success: %w", err)
	}
	return nil
}

// MarkRunFailure records a failed run. last_run_at is left untouched so the
// schedule stays due and the same window is retried on the next tick.
func (r *ScheduleRepositoryImpl) MarkRunFailure(name string) error {
	_, err := r.db.Exec(`
		UPDATE fetch_schedules
		SET error_count = error_count + 1, updated_at = NOW()
		WHERE name = $1
	`, name)
	if err != nil {
		return fmt.Errorf("failed to mark run failure: %w", err)
	}
	return nil
}

// DeferSchedule advances last_run_at without a successful run, so the
// schedule is not due again until a full interval has passed.
func (r *ScheduleRepositoryImpl) DeferSchedule(name string) error {
	_, err := r.db.Exec(`
		UPDATE fetch_schedules
		SET last_run_at = NOW(), error_count = error_count + 1, updated_at = NOW()
		WHERE name = $1
	`, name)
	if err != nil {
		return fmt.Errorf("failed to defer schedule: %w", err)
	}
	return nil
}

// GetScheduleCount returns the total number of schedules
func (r *ScheduleRepositoryImpl) GetScheduleCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM fetch_schedules").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get schedule count: %w", err)
	}
	return count, nil
}

// GetActiveScheduleCount returns the number of active schedules
func (r *ScheduleRepositoryImpl) GetActiveScheduleCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM fetch_schedules WHERE active = true").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get active schedule count: %w", err)
	}
	return count, nil
}

func scanSchedule(row rowScanner) (*Schedule, error) {
	var s Schedule
	err := row.Scan(
		&s.ID, &s.Name, &s.IntervalMinutes, pq.Array(&s.Categories),
		&s.MaxItems, &s.WindowHours, &s.Language, &s.Enhance,
		&s.Active, &s.LastRunAt, &s.SuccessCount, &s.ErrorCount,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSchedules(rows *sql.Rows) ([]Schedule, error) {
	var schedules []Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		schedules = append(schedules, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}

	return schedules, nil
}

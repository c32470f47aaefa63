package database

import (
	"time"
)

// DocumentRepository is the storage collaborator for news documents.
type DocumentRepository interface {
	Exists(id string) (bool, error)
	Upsert(doc Document) error
	GetByID(id string) (*Document, error)
	GetRecent(category string, since time.Time, limit int) ([]Document, error)
	GetRecentForDedup(since time.Time, limit int) ([]Document, error)

	// Archive marks a duplicate member as archived, pointing at its
	// canonical document. A missing id reports false without an error.
	Archive(id, duplicateOf string) (bool, error)

	GetDocumentStats() (total, active, archived int, err error)
}

// ScheduleRepository persists fetch schedule definitions and run state.
type ScheduleRepository interface {
	UpsertSchedule(s Schedule) error
	GetSchedule(name string) (*Schedule, error)
	GetSchedules() ([]Schedule, error)
	GetDueSchedules() ([]Schedule, error)

	// MarkRunSuccess sets last_run_at and bumps success_count.
	// MarkRunFailure only bumps error_count: last_run_at stays untouched so
	// the next eligible interval retries the same window.
	MarkRunSuccess(name string) error
	MarkRunFailure(name string) error

	// DeferSchedule pushes the schedule back a full interval by advancing
	// last_run_at while still counting the run as an error. Used when the
	// upstream refuses on quota and an immediate retry cannot succeed.
	DeferSchedule(name string) error

	GetScheduleCount() (int, error)
	GetActiveScheduleCount() (int, error)
}

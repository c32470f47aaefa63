package database

import (
	"time"
)

// Document statuses. Non-canonical duplicate members are archived, never
// deleted, so the audit trail survives.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Document is a persisted news item.
type Document struct {
	ID            string
	Title         string
	Content       string
	Summary       string
	Category      string
	CategoryHints []string
	Priority      string
	Type          string
	GroupID       string
	Language      string
	Tags          []string
	Enhanced      bool
	Status        string
	DuplicateOf   *string
	PublishedAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Schedule is a fetch schedule record. Definitions come from yaml files;
// execution state (last run, counters) lives only here.
type Schedule struct {
	ID              string // Database UUID
	Name            string
	IntervalMinutes int
	Categories      []string
	MaxItems        int
	WindowHours     int
	Language        string
	Enhance         bool
	Active          bool
	LastRunAt       *time.Time
	SuccessCount    int
	ErrorCount      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

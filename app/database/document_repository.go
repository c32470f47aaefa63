package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// DocumentRepositoryImpl handles database operations for news documents
type DocumentRepositoryImpl struct {
	db *DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB) *DocumentRepositoryImpl {
	return &DocumentRepositoryImpl{db: db}
}

// Exists checks whether a document with the given upstream id is already stored
func (r *DocumentRepositoryImpl) Exists(id string) (bool, error) {
	var found string
	err := r.db.QueryRow(`SELECT id FROM news_documents WHERE id = $1 LIMIT 1`, id).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check document existence: %w", err)
	}
	return true, nil
}

// Upsert stores a document, updating mutable fields on conflict
func (r *DocumentRepositoryImpl) Upsert(doc Document) error {
	_, err := r.db.Exec(`
		INSERT INTO news_documents (
			id, title, content, summary, category, category_hints,
			priority, type, group_id, language, tags, enhanced,
			status, duplicate_of, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			summary = EXCLUDED.summary,
			category = EXCLUDED.category,
			category_hints = EXCLUDED.category_hints,
			tags = EXCLUDED.tags,
			enhanced = EXCLUDED.enhanced,
			status = EXCLUDED.status,
			duplicate_of = EXCLUDED.duplicate_of,
			updated_at = NOW()
	`, doc.ID, doc.Title, doc.Content, doc.Summary, doc.Category,
		pq.Array(doc.CategoryHints), doc.Priority, doc.Type, doc.GroupID,
		doc.Language, pq.Array(doc.Tags), doc.Enhanced, doc.Status,
		doc.DuplicateOf, doc.PublishedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// GetByID returns a single document, or nil when it does not exist
func (r *DocumentRepositoryImpl) GetByID(id string) (*Document, error) {
	row := r.db.QueryRow(`
		SELECT id, COALESCE(title, ''), COALESCE(content, ''), COALESCE(summary, ''),
		       category, COALESCE(category_hints, '{}'), COALESCE(priority, ''),
		       COALESCE(type, ''), COALESCE(group_id, ''), COALESCE(language, ''),
		       COALESCE(tags, '{}'), enhanced, status, duplicate_of,
		       published_at, created_at, updated_at
		FROM news_documents
		WHERE id = $1
	`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// GetRecent returns active documents for a category published since the
// given time, newest first
func (r *DocumentRepositoryImpl) GetRecent(category string, since time.Time, limit int) ([]Document, error) {
	rows, err := r.db.Query(`
		SELECT id, COALESCE(title, ''), COALESCE(content, ''), COALESCE(summary, ''),
		       category, COALESCE(category_hints, '{}'), COALESCE(priority, ''),
		       COALESCE(type, ''), COALESCE(group_id, ''), COALESCE(language, ''),
		       COALESCE(tags, '{}'), enhanced, status, duplicate_of,
		       published_at, created_at, updated_at
		FROM news_documents
		WHERE category = $1
		  AND status = $2
		  AND published_at >= $3
		ORDER BY published_at DESC
		LIMIT $4
	`, category, StatusActive, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// GetRecentForDedup returns active documents across all categories published
// since the given time. The scheduler mixes these into the pairwise
// comparison batch so new items can be matched against stored ones.
func (r *DocumentRepositoryImpl) GetRecentForDedup(since time.Time, limit int) ([]Document, error) {
	rows, err := r.db.Query(`
		SELECT id, COALESCE(title, ''), COALESCE(content, ''), COALESCE(summary, ''),
		       category, COALESCE(category_hints, '{}'), COALESCE(priority, ''),
		       COALESCE(type, ''), COALESCE(group_id, ''), COALESCE(language, ''),
		       COALESCE(tags, '{}'), enhanced, status, duplicate_of,
		       published_at, created_at, updated_at
		FROM news_documents
		WHERE status = $1
		  AND published_at >= $2
		ORDER BY published_at DESC
		LIMIT $3
	`, StatusActive, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents for dedup: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// Archive marks a document as an archived duplicate of the canonical one.
// Returns false when no row matched.
func (r *DocumentRepositoryImpl) Archive(id, duplicateOf string) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE news_documents
		SET status = $2, duplicate_of = $3, updated_at = NOW()
		WHERE id = $1
	`, id, StatusArchived, duplicateOf)
	if err != nil {
		return false, fmt.Errorf("failed to archive document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

// GetDocumentStats returns document counts by status
func (r *DocumentRepositoryImpl) GetDocumentStats() (total, active, archived int, err error) {
	err = r.db.QueryRow(`
		SELECT
			COUNT(*) as total,
			SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END) as active,
			SUM(CASE WHEN status = $2 THEN 1 ELSE 0 END) as archived
		FROM news_documents
	`, StatusActive, StatusArchived).Scan(&total, &active, &archived)

	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get document stats: %w", err)
	}

	return total, active, archived, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	err := row.Scan(
		&doc.ID, &doc.Title, &doc.Content, &doc.Summary,
		&doc.Category, pq.Array(&doc.CategoryHints), &doc.Priority,
		&doc.Type, &doc.GroupID, &doc.Language,
		pq.Array(&doc.Tags), &doc.Enhanced, &doc.Status, &doc.DuplicateOf,
		&doc.PublishedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return docs, nil
}

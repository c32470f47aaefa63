package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/semerproje/newswire/app/classify"
	"github.com/semerproje/newswire/app/database"
	"github.com/semerproje/newswire/app/dedup"
	"github.com/semerproje/newswire/app/enhance"
	"github.com/semerproje/newswire/app/schedule"
	"github.com/semerproje/newswire/app/upstream"
)

// Gateway is the slice of the upstream client the ingest task needs.
type Gateway interface {
	Search(ctx context.Context, params upstream.SearchParams) (*upstream.SearchResult, error)
	Document(ctx context.Context, id, format string) (string, error)
}

// Enhancer is the optional LLM rewrite step. Run is only called when
// Available reports true and the schedule opts in.
type Enhancer interface {
	Available() bool
	Run(ctx context.Context, title, content, summary string) (*enhance.Result, error)
}

type IngestTask struct {
	Task
	Config       *schedule.Config
	gateway      Gateway
	classifier   *classify.Classifier
	detector     *dedup.Detector
	dedupWindow  time.Duration
	enhancer     Enhancer
	docRepo      database.DocumentRepository
	scheduleRepo database.ScheduleRepository
	guard        *RunGuard
}

func NewIngestTask(scheduleName string, config *schedule.Config, gateway Gateway,
	classifier *classify.Classifier, detector *dedup.Detector, dedupWindow time.Duration,
	enhancer Enhancer, docRepo database.DocumentRepository,
	scheduleRepo database.ScheduleRepository, guard *RunGuard) *IngestTask {
	return &IngestTask{
		Task:         NewTask(TaskTypeIngest, scheduleName),
		Config:       config,
		gateway:      gateway,
		classifier:   classifier,
		detector:     detector,
		dedupWindow:  dedupWindow,
		enhancer:     enhancer,
		docRepo:      docRepo,
		scheduleRepo: scheduleRepo,
		guard:        guard,
	}
}

func (t *IngestTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Config.IsActive() {
		slog.Debug("Schedule disabled, skipping", "schedule", t.ScheduleName)
		return nil
	}

	if !t.guard.TryAcquire(t.ScheduleName) {
		slog.Debug("Schedule run already in progress, skipping", "schedule", t.ScheduleName)
		return nil
	}
	defer t.guard.Release(t.ScheduleName)

	end := time.Now().UTC()
	start := end.Add(-time.Duration(t.Config.WindowHours) * time.Hour)

	result, err := t.gateway.Search(ctx, upstream.SearchParams{
		Start:      start,
		End:        end,
		Categories: upstreamCategoryFilter(t.Config.Categories),
		Types:      []string{upstream.TypeText},
		Language:   t.Config.Language,
		Limit:      t.Config.MaxItems,
	})
	if err != nil {
		if upstream.IsQuota(err) {
			// A quota refusal will not clear before the next tick. Push the
			// schedule back a full interval instead of leaving it due.
			if deferErr := t.scheduleRepo.DeferSchedule(t.ScheduleName); deferErr != nil {
				slog.Error("Failed to defer schedule", "schedule", t.ScheduleName, "error", deferErr)
			}
		} else if markErr := t.scheduleRepo.MarkRunFailure(t.ScheduleName); markErr != nil {
			slog.Error("Failed to record run failure", "schedule", t.ScheduleName, "error", markErr)
		}
		return fmt.Errorf("failed to search upstream: %w", err)
	}

	skippedCount := 0
	errorCount := 0
	enhancedCount := 0

	var candidates []database.Document
	for _, item := range result.Items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		exists, err := t.docRepo.Exists(item.ID)
		if err != nil {
			slog.Warn("Failed to check document existence", "schedule", t.ScheduleName, "id", item.ID, "error", err)
			errorCount++
			continue
		}
		if exists {
			skippedCount++
			continue
		}

		doc := t.buildDocument(ctx, item)
		if doc.Enhanced {
			enhancedCount++
		}
		candidates = append(candidates, doc)
	}

	archivedCount := t.groupDuplicates(candidates)

	storedCount := 0
	for _, doc := range candidates {
		if err := t.docRepo.Upsert(doc); err != nil {
			slog.Warn("Failed to store document", "schedule", t.ScheduleName, "id", doc.ID, "error", err)
			errorCount++
			continue
		}
		storedCount++
	}

	if err := t.scheduleRepo.MarkRunSuccess(t.ScheduleName); err != nil {
		return fmt.Errorf("failed to record run success: %w", err)
	}

	slog.Info("Task completed",
		"type", "Ingest",
		"schedule", t.ScheduleName,
		"duration", t.GetDuration(),
		"total", len(result.Items),
		"skipped", skippedCount,
		"stored", storedCount,
		"archived", archivedCount,
		"enhanced", enhancedCount,
		"errors", errorCount)

	return nil
}

// upstreamCategoryFilter translates output category names from a schedule
// into the upstream's numeric codes. Schedules speak the output taxonomy;
// the wire API only filters on codes.
func upstreamCategoryFilter(categories []string) []string {
	var codes []string
	for _, name := range categories {
		if code, ok := classify.UpstreamCode(name); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

// buildDocument classifies and optionally enhances a single raw item. Item
// level problems (missing body, enhancer failure) degrade to the raw data
// rather than failing the run.
func (t *IngestTask) buildDocument(ctx context.Context, item upstream.RawItem) database.Document {
	title := item.Title
	body := item.Body()
	summary := item.Summary

	if body == "" && item.TypeCode == upstream.TypeText {
		raw, err := t.gateway.Document(ctx, item.ID, "newsml29")
		if err != nil {
			slog.Debug("Failed to fetch document body", "schedule", t.ScheduleName, "id", item.ID, "error", err)
		} else {
			body = upstream.StripMarkup(raw)
		}
	}

	category, hints := t.classifier.Run(item.CategoryCode, title, body, item.Keywords)

	doc := database.Document{
		ID:            item.ID,
		Title:         title,
		Content:       body,
		Summary:       summary,
		Category:      category,
		CategoryHints: hints,
		Priority:      item.PriorityCode,
		Type:          item.TypeCode,
		GroupID:       item.GroupID,
		Language:      item.LanguageCode,
		Tags:          item.Keywords,
		Status:        database.StatusActive,
		PublishedAt:   item.Date,
	}

	if t.Config.Enhance && t.enhancer.Available() {
		result, err := t.enhancer.Run(ctx, title, body, summary)
		if err != nil {
			slog.Debug("Enhancement failed, keeping original", "schedule", t.ScheduleName, "id", item.ID, "error", err)
		} else {
			doc.Title = result.Title
			doc.Content = result.Content
			doc.Summary = result.Summary
			if len(result.Tags) > 0 {
				doc.Tags = result.Tags
			}
			doc.Enhanced = true
		}
	}

	return doc
}

// groupDuplicates runs pairwise similarity over the new candidates plus
// recently stored documents, marking non-canonical members as archived.
// Returns the number of documents archived. An oversized batch skips
// grouping entirely and every candidate stays active.
func (t *IngestTask) groupDuplicates(candidates []database.Document) int {
	if len(candidates) == 0 {
		return 0
	}

	byID := make(map[string]*database.Document, len(candidates))
	items := make([]dedup.Item, 0, len(candidates))
	for i := range candidates {
		doc := &candidates[i]
		byID[doc.ID] = doc
		items = append(items, dedup.Item{
			ID:          doc.ID,
			Title:       doc.Title,
			Content:     doc.Content,
			PublishedAt: doc.PublishedAt,
		})
	}

	since := time.Now().UTC().Add(-t.dedupWindow)
	stored, err := t.docRepo.GetRecentForDedup(since, t.Config.MaxItems)
	if err != nil {
		slog.Warn("Failed to load stored documents for duplicate grouping", "schedule", t.ScheduleName, "error", err)
	}
	for _, doc := range stored {
		if _, ok := byID[doc.ID]; ok {
			continue
		}
		items = append(items, dedup.Item{
			ID:          doc.ID,
			Title:       doc.Title,
			Content:     doc.Content,
			PublishedAt: doc.PublishedAt,
		})
	}

	groups, err := t.detector.Run(items)
	if err != nil {
		if errors.Is(err, dedup.ErrBatchLimitExceeded) {
			slog.Warn("Duplicate grouping skipped, batch too large", "schedule", t.ScheduleName, "batch", len(items))
		} else {
			slog.Warn("Duplicate grouping failed", "schedule", t.ScheduleName, "error", err)
		}
		return 0
	}

	archived := 0
	for _, group := range groups {
		canonical := group.CanonicalID
		for _, member := range group.Members {
			if member == canonical {
				continue
			}

			if doc, ok := byID[member]; ok {
				doc.Status = database.StatusArchived
				dup := canonical
				doc.DuplicateOf = &dup
				archived++
				continue
			}

			ok, err := t.docRepo.Archive(member, canonical)
			if err != nil {
				slog.Warn("Failed to archive duplicate", "schedule", t.ScheduleName, "id", member, "error", err)
				continue
			}
			if ok {
				archived++
			}
		}
	}

	return archived
}

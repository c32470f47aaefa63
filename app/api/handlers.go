package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/semerproje/newswire/app/cache"
	"github.com/semerproje/newswire/app/cfg"
	"github.com/semerproje/newswire/app/classify"
	"github.com/semerproje/newswire/app/database"
	"github.com/semerproje/newswire/app/schedule"
	"github.com/semerproje/newswire/app/tasks"
	"github.com/semerproje/newswire/app/upstream"
)

// UpstreamInfo is the slice of the upstream client the API surfaces
// directly: account quota, filter taxonomy, and media download tokens.
type UpstreamInfo interface {
	Discover(ctx context.Context, language string) (*upstream.Taxonomy, error)
	InvalidateTaxonomy()
	Subscription(ctx context.Context) (*upstream.Quota, error)
	Token(ctx context.Context, groupID, format string) ([]string, error)
}

type Handler struct {
	configCache     *schedule.ConfigCache
	docRepo         database.DocumentRepository
	scheduleRepo    database.ScheduleRepository
	newsCache       *cache.Cache[[]database.Document]
	gateway         UpstreamInfo
	scheduler       tasks.TaskSchedulerInterface
	ingestTaskFn    func(config *schedule.Config) tasks.TaskInterface
	defaultLanguage string
	cacheTTL        time.Duration
	cacheMaxRetries int
}

func NewHandler(configCache *schedule.ConfigCache, docRepo database.DocumentRepository,
	scheduleRepo database.ScheduleRepository, newsCache *cache.Cache[[]database.Document],
	gateway UpstreamInfo, scheduler tasks.TaskSchedulerInterface,
	ingestTaskFn func(config *schedule.Config) tasks.TaskInterface) *Handler {
	cfg := cfg.Get()

	return &Handler{
		configCache:     configCache,
		docRepo:         docRepo,
		scheduleRepo:    scheduleRepo,
		newsCache:       newsCache,
		gateway:         gateway,
		scheduler:       scheduler,
		ingestTaskFn:    ingestTaskFn,
		defaultLanguage: cfg.DefaultLanguage,
		cacheTTL:        time.Duration(cfg.CacheTTL) * time.Second,
		cacheMaxRetries: cfg.CacheMaxRetries,
	}
}

// GetNews serves the freshest stored documents for a category. Reads go
// through the freshness cache, so repeated requests within the TTL hit the
// database exactly once.
func (h *Handler) GetNews(c *gin.Context) {
	category := c.Param("category")
	if !classify.KnownCategory(category) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown category"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	docs := h.newsCache.Get(c.Request.Context(), "news:"+category, func(ctx context.Context) ([]database.Document, error) {
		since := time.Now().UTC().Add(-24 * time.Hour)
		return h.docRepo.GetRecent(category, since, 200)
	}, h.cacheTTL, h.cacheMaxRetries)

	if len(docs) > limit {
		docs = docs[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"total":    len(docs),
		"items":    docs,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if total, _, _, err := h.docRepo.GetDocumentStats(); err == nil {
		health["documents"] = total
	}

	health["loaded_schedules"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if total, active, archived, err := h.docRepo.GetDocumentStats(); err == nil {
		stats["documents"] = map[string]int{
			"total":    total,
			"active":   active,
			"archived": archived,
		}
	}

	if count, err := h.scheduleRepo.GetScheduleCount(); err == nil {
		stats["schedules"] = count
	}
	if count, err := h.scheduleRepo.GetActiveScheduleCount(); err == nil {
		stats["active_schedules"] = count
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListSchedules(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	schedules := make([]map[string]interface{}, 0, len(configs))

	for _, config := range configs {
		info := map[string]interface{}{
			"name":             config.Name,
			"interval_minutes": config.IntervalMinutes,
			"categories":       config.Categories,
			"max_items":        config.MaxItems,
			"window_hours":     config.WindowHours,
			"language":         config.Language,
			"enhance":          config.Enhance,
			"active":           config.IsActive(),
		}

		if sched, err := h.scheduleRepo.GetSchedule(config.Name); err == nil && sched != nil {
			info["last_run_at"] = sched.LastRunAt
			info["success_count"] = sched.SuccessCount
			info["error_count"] = sched.ErrorCount
		}

		schedules = append(schedules, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"schedules": schedules,
		"total":     len(schedules),
	})
}

// APIRunSchedule enqueues an immediate ingestion run for a schedule,
// bypassing its interval. The overlap guard still applies.
func (h *Handler) APIRunSchedule(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing schedule name parameter"})
		return
	}

	config, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Schedule configuration not found", "schedule", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule configuration not found"})
		return
	}

	task := h.ingestTaskFn(config)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing ingest task", "schedule", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue ingest task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success":  true,
		"message":  "Ingest task enqueued",
		"schedule": name,
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}

func (h *Handler) APIGetQuota(c *gin.Context) {
	quota, err := h.gateway.Subscription(c.Request.Context())
	if err != nil {
		slog.Error("Failed to get subscription quota", "error", err)
		c.JSON(upstreamStatus(err), gin.H{"error": "Failed to get quota", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, quota)
}

func (h *Handler) APIGetTaxonomy(c *gin.Context) {
	language := c.DefaultQuery("language", h.defaultLanguage)

	if c.Query("refresh") == "true" {
		h.gateway.InvalidateTaxonomy()
	}

	taxonomy, err := h.gateway.Discover(c.Request.Context(), language)
	if err != nil {
		slog.Error("Failed to get taxonomy", "language", language, "error", err)
		c.JSON(upstreamStatus(err), gin.H{"error": "Failed to get taxonomy", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"language": language,
		"taxonomy": taxonomy,
	})
}

func (h *Handler) APIGetCacheStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"entries": h.newsCache.Status(),
	})
}

func (h *Handler) APIClearCache(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing cache key parameter"})
		return
	}

	h.newsCache.Clear(key)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"key":     key,
	})
}

func (h *Handler) APIGetMediaTokens(c *gin.Context) {
	group := c.Param("group")
	if group == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing group parameter"})
		return
	}
	format := c.DefaultQuery("format", "web")

	urls, err := h.gateway.Token(c.Request.Context(), group, format)
	if err != nil {
		slog.Error("Failed to get media tokens", "group", group, "error", err)
		c.JSON(upstreamStatus(err), gin.H{"error": "Failed to get media tokens", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group":  group,
		"format": format,
		"urls":   urls,
	})
}

// upstreamStatus maps gateway error kinds to response codes. Auth problems
// are a server misconfiguration from the caller's point of view.
func upstreamStatus(err error) int {
	switch {
	case upstream.IsQuota(err):
		return http.StatusTooManyRequests
	case upstream.IsAuth(err):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"newswire_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"newswire_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"newswire" description:"Database name"`

	// Upstream wire-service configuration
	UpstreamURL          string `long:"upstream-url" env:"UPSTREAM_URL" default:"https://api.aa.com.tr/abone" description:"Base URL of the wire-service API"`
	UpstreamUser         string `long:"upstream-user" env:"UPSTREAM_USER" description:"Wire-service HTTP Basic auth username (required)" required:"true"`
	UpstreamPassword     string `long:"upstream-password" env:"UPSTREAM_PASSWORD" description:"Wire-service HTTP Basic auth password (required)" required:"true"`
	MinRequestIntervalMs int    `long:"min-request-interval" env:"MIN_REQUEST_INTERVAL_MS" default:"500" description:"Minimum interval between upstream requests in milliseconds"`
	ArchiveRetentionDays int    `long:"archive-retention-days" env:"ARCHIVE_RETENTION_DAYS" default:"30" description:"Upstream archive retention; search windows are clamped to it"`
	DefaultLanguage      string `long:"default-language" env:"DEFAULT_LANGUAGE" default:"tr" description:"Language code used when a schedule does not set one"`

	// Deduplication parameters
	DedupThreshold     float64 `long:"dedup-threshold" env:"DEDUP_THRESHOLD" default:"0.8" description:"Combined similarity threshold for duplicate grouping"`
	DedupTitleWeight   float64 `long:"dedup-title-weight" env:"DEDUP_TITLE_WEIGHT" default:"0.7" description:"Weight of title similarity in the combined score"`
	DedupContentWeight float64 `long:"dedup-content-weight" env:"DEDUP_CONTENT_WEIGHT" default:"0.3" description:"Weight of content similarity in the combined score"`
	DedupWindowHours   int     `long:"dedup-window-hours" env:"DEDUP_WINDOW_HOURS" default:"24" description:"Recent-document window considered for duplicate grouping"`
	DedupMaxBatch      int     `long:"dedup-max-batch" env:"DEDUP_MAX_BATCH" default:"500" description:"Maximum batch size for pairwise duplicate grouping"`

	// Enhancer collaborator (optional)
	EnhancerEndpoint string `long:"enhancer-endpoint" env:"ENHANCER_ENDPOINT" default:"https://api.openai.com/v1/chat/completions" description:"OpenAI-compatible chat completions endpoint"`
	EnhancerModel    string `long:"enhancer-model" env:"ENHANCER_MODEL" default:"gpt-4o-mini" description:"Model used for text enhancement"`
	EnhancerAPIKey   string `long:"enhancer-api-key" env:"ENHANCER_API_KEY" description:"API key for the enhancer; empty disables enhancement"`

	// Application configuration
	SchedulesDir      string `long:"schedules-dir" env:"SCHEDULES_DIR" default:"./schedules" description:"Directory containing schedule definition files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for ingestion tasks"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler tick interval in seconds"`
	CacheTTL          int    `long:"cache-ttl" env:"CACHE_TTL" default:"120" description:"Freshness cache TTL in seconds for category views"`
	CacheMaxRetries   int    `long:"cache-max-retries" env:"CACHE_MAX_RETRIES" default:"3" description:"Consecutive refresh failures before a cache key serves only its fallback"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Newswire/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Istanbul)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:               raw.DBHost,
		DBPort:               raw.DBPort,
		DBUser:               raw.DBUser,
		DBPassword:           raw.DBPassword,
		DBName:               raw.DBName,
		UpstreamURL:          raw.UpstreamURL,
		UpstreamUser:         raw.UpstreamUser,
		UpstreamPassword:     raw.UpstreamPassword,
		MinRequestIntervalMs: raw.MinRequestIntervalMs,
		ArchiveRetentionDays: raw.ArchiveRetentionDays,
		DefaultLanguage:      raw.DefaultLanguage,
		DedupThreshold:       raw.DedupThreshold,
		DedupTitleWeight:     raw.DedupTitleWeight,
		DedupContentWeight:   raw.DedupContentWeight,
		DedupWindowHours:     raw.DedupWindowHours,
		DedupMaxBatch:        raw.DedupMaxBatch,
		EnhancerEndpoint:     raw.EnhancerEndpoint,
		EnhancerModel:        raw.EnhancerModel,
		EnhancerAPIKey:       raw.EnhancerAPIKey,
		SchedulesDir:         raw.SchedulesDir,
		Port:                 raw.Port,
		WorkerCount:          raw.WorkerCount,
		SchedulerInterval:    raw.SchedulerInterval,
		CacheTTL:             raw.CacheTTL,
		CacheMaxRetries:      raw.CacheMaxRetries,
		APIAccessKey:         raw.APIAccessKey,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}

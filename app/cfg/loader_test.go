package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		Port:                 "8080",
		UpstreamURL:          "https://api.example.com/abone",
		UpstreamUser:         "subscriber",
		MinRequestIntervalMs: 500,
		ArchiveRetentionDays: 30,
		DedupThreshold:       0.8,
		DedupTitleWeight:     0.7,
		DedupContentWeight:   0.3,
		WorkerCount:          3,
		SchedulerInterval:    30,
		CacheTTL:             120,
		CacheMaxRetries:      3,
		APIAccessKey:         "test-key",
		SchedulesDir:         "./schedules",
		UserAgent:            "Test Agent",
		Timezone:             "UTC",
		Debug:                true,
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.UpstreamURL != "https://api.example.com/abone" {
		t.Errorf("Expected upstream URL 'https://api.example.com/abone', got '%s'", cfg.UpstreamURL)
	}
	if cfg.MinRequestIntervalMs != 500 {
		t.Errorf("Expected min request interval 500, got %d", cfg.MinRequestIntervalMs)
	}
	if cfg.DedupThreshold != 0.8 {
		t.Errorf("Expected dedup threshold 0.8, got %f", cfg.DedupThreshold)
	}
	if cfg.DedupTitleWeight+cfg.DedupContentWeight != 1.0 {
		t.Errorf("Expected dedup weights to sum to 1.0, got %f", cfg.DedupTitleWeight+cfg.DedupContentWeight)
	}
	if cfg.WorkerCount != 3 {
		t.Errorf("Expected worker count 3, got %d", cfg.WorkerCount)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

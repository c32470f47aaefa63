package schedule

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
interval_minutes: 30
categories:
  - "ekonomi"
  - "spor"
max_items: 50
window_hours: 6
language: "tr"
enhance: true
active: true
`

	err := os.WriteFile(filepath.Join(tempDir, "breaking.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 config, got %d", configCache.GetConfigCount())
	}

	config, err := configCache.GetConfig("breaking")
	if err != nil {
		t.Fatal(err)
	}

	if config.Name != "breaking" {
		t.Errorf("Expected name 'breaking', got '%s'", config.Name)
	}
	if config.IntervalMinutes != 30 {
		t.Errorf("Expected interval 30, got %d", config.IntervalMinutes)
	}
	if len(config.Categories) != 2 {
		t.Errorf("Expected 2 categories, got %d", len(config.Categories))
	}
	if config.MaxItems != 50 {
		t.Errorf("Expected max items 50, got %d", config.MaxItems)
	}
	if config.WindowHours != 6 {
		t.Errorf("Expected window hours 6, got %d", config.WindowHours)
	}
	if !config.Enhance {
		t.Error("Expected enhance to be enabled")
	}
	if !config.IsActive() {
		t.Error("Expected schedule to be active")
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	content := `
categories:
  - "gundem"
`

	err := os.WriteFile(filepath.Join(tempDir, "default.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("default")
	if err != nil {
		t.Fatal(err)
	}

	if config.IntervalMinutes != 15 {
		t.Errorf("Expected default interval 15, got %d", config.IntervalMinutes)
	}
	if config.MaxItems != 100 {
		t.Errorf("Expected default max items 100, got %d", config.MaxItems)
	}
	if config.WindowHours != 24 {
		t.Errorf("Expected default window hours 24, got %d", config.WindowHours)
	}
	if config.Language != "tr" {
		t.Errorf("Expected default language 'tr', got '%s'", config.Language)
	}
	if !config.IsActive() {
		t.Error("Expected schedule without active flag to be active")
	}
}

func TestConfigCacheUnknownCategory(t *testing.T) {
	tempDir := t.TempDir()

	content := `
categories:
  - "astroloji"
`

	err := os.WriteFile(filepath.Join(tempDir, "invalid.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err == nil {
		t.Error("Expected error for unknown category")
	}
}

func TestConfigCacheEmptyDirectory(t *testing.T) {
	tempDir := t.TempDir()

	configCache := NewConfigCache(tempDir)
	err := configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs from empty directory, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheReloadConfig(t *testing.T) {
	tempDir := t.TempDir()

	initialContent := `
interval_minutes: 10
`

	configFile := filepath.Join(tempDir, "rolling.yml")
	err := os.WriteFile(configFile, []byte(initialContent), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	updatedContent := `
interval_minutes: 5
max_items: 20
active: false
`

	err = os.WriteFile(configFile, []byte(updatedContent), 0644)
	if err != nil {
		t.Fatal(err)
	}

	reloadedConfig, err := configCache.LoadConfig("rolling")
	if err != nil {
		t.Fatal(err)
	}

	if reloadedConfig.IntervalMinutes != 5 {
		t.Errorf("Expected updated interval 5, got %d", reloadedConfig.IntervalMinutes)
	}
	if reloadedConfig.MaxItems != 20 {
		t.Errorf("Expected updated max_items 20, got %d", reloadedConfig.MaxItems)
	}
	if reloadedConfig.IsActive() {
		t.Error("Expected reloaded schedule to be inactive")
	}

	_, err = configCache.LoadConfig("nonexistent")
	if err == nil {
		t.Error("Expected error for non-existent config")
	}
}

func TestConfigCacheGetConfigs(t *testing.T) {
	tempDir := t.TempDir()

	for _, name := range []string{"breaking.yml", "daily.yml"} {
		err := os.WriteFile(filepath.Join(tempDir, name), []byte("interval_minutes: 15\n"), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}

	configCache := NewConfigCache(tempDir)
	err := configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	allConfigs := configCache.GetConfigs()
	if len(allConfigs) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(allConfigs))
	}

	// Verify it's a copy (modifying returned map shouldn't affect cache)
	delete(allConfigs, "breaking")
	if configCache.GetConfigCount() != 2 {
		t.Error("Modifying returned configs map affected the cache")
	}
}

func TestConfigCacheValidateConfigNegativeValues(t *testing.T) {
	configCache := NewConfigCache("")

	config := &Config{Name: "test", IntervalMinutes: -1}
	err := configCache.validateConfig(config)
	if err == nil {
		t.Error("Expected error for negative interval, got none")
	}

	config.IntervalMinutes = 15
	config.MaxItems = -1
	err = configCache.validateConfig(config)
	if err == nil {
		t.Error("Expected error for negative max items, got none")
	}
}

func TestConfigCacheGetConfigNotFound(t *testing.T) {
	tempDir := t.TempDir()

	configCache := NewConfigCache(tempDir)
	err := configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	_, err = configCache.GetConfig("missing")
	if err == nil {
		t.Error("Expected error for missing schedule, got none")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected error message to contain 'not found', got: %v", err)
	}
}

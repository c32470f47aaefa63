package schedule

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/semerproje/newswire/app/classify"
)

type ConfigCache struct {
	schedulesDir string
	cache        map[string]*Config
	mu           sync.RWMutex
}

func NewConfigCache(schedulesDir string) *ConfigCache {
	return &ConfigCache{
		schedulesDir: schedulesDir,
		cache:        make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.schedulesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.schedulesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		// Derive schedule name from filename (remove .yml extension)
		fileName := filepath.Base(file)
		scheduleName := fileName[:len(fileName)-4]

		config, err := cc.LoadConfig(scheduleName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Schedule loaded", "schedule", scheduleName, "active", config.IsActive(), "interval_minutes", config.IntervalMinutes)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(scheduleName string) (*Config, error) {
	configFile := cc.getConfigFilePath(scheduleName)
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	// Set schedule name from parameter
	config.Name = scheduleName

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(scheduleName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[scheduleName]
	if !ok {
		return nil, fmt.Errorf("schedule config with name '%s' not found", scheduleName)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.IntervalMinutes == 0 {
		config.IntervalMinutes = 15
	}
	if config.MaxItems == 0 {
		config.MaxItems = 100
	}
	if config.WindowHours == 0 {
		config.WindowHours = 24
	}
	if config.Language == "" {
		config.Language = "tr"
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if config.Name == "" {
		return fmt.Errorf("schedule name is required")
	}

	nonNegativeFields := map[string]int{
		"interval minutes": config.IntervalMinutes,
		"max items":        config.MaxItems,
		"window hours":     config.WindowHours,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	for i, category := range config.Categories {
		if !classify.KnownCategory(category) {
			return fmt.Errorf("unknown category at index %d: %s", i, category)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(scheduleName string) string {
	return filepath.Join(cc.schedulesDir, scheduleName+".yml")
}

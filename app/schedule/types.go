package schedule

// Config is a fetch schedule definition loaded from a YAML file. The file
// name (without extension) becomes the schedule name.
type Config struct {
	Name            string   `yaml:"-"`
	IntervalMinutes int      `yaml:"interval_minutes"`
	Categories      []string `yaml:"categories"`
	MaxItems        int      `yaml:"max_items"`
	WindowHours     int      `yaml:"window_hours"`
	Language        string   `yaml:"language"`
	Enhance         bool     `yaml:"enhance"`
	Active          *bool    `yaml:"active"`
}

// IsActive treats a schedule without an explicit active flag as enabled
func (c *Config) IsActive() bool {
	return c.Active == nil || *c.Active
}

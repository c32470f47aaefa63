package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Upstream wire-service configuration
	UpstreamURL          string
	UpstreamUser         string
	UpstreamPassword     string
	MinRequestIntervalMs int
	ArchiveRetentionDays int
	DefaultLanguage      string

	// Deduplication parameters
	DedupThreshold     float64
	DedupTitleWeight   float64
	DedupContentWeight float64
	DedupWindowHours   int
	DedupMaxBatch      int

	// Enhancer collaborator (optional)
	EnhancerEndpoint string
	EnhancerModel    string
	EnhancerAPIKey   string

	// Application configuration
	SchedulesDir      string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	CacheTTL          int
	CacheMaxRetries   int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

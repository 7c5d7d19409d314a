package structures

import "time"

type CliFlags struct {
	ConfigPath string
	EnvFile    string
	DebugMode  bool
}

type SiteConfig struct {
	BaseURL    string        `mapstructure:"baseURL" validate:"required|fullUrl"`
	Username   string        `mapstructure:"username" validate:"required"`
	Password   string        `mapstructure:"password" validate:"required"`
	CookieFile string        `mapstructure:"cookieFile"`
	UserAgent  string        `mapstructure:"userAgent"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type ScrapeConfig struct {
	MinDelay    time.Duration `mapstructure:"minDelay"`
	MaxDelay    time.Duration `mapstructure:"maxDelay"`
	MaxProfiles int           `mapstructure:"maxProfiles"`
}

type ScheduleConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type CSVConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	FilePath string `mapstructure:"filePath"`
	Backup   bool   `mapstructure:"backup"`
	TagsFile string `mapstructure:"tagsFile"`
}

type SheetsConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	URL               string        `mapstructure:"url"`
	CredentialsJSON   string        `mapstructure:"credentialsJSON"`
	CredentialsFile   string        `mapstructure:"credentialsFile"`
	Worksheet         string        `mapstructure:"worksheet"`
	TagsWorksheet     string        `mapstructure:"tagsWorksheet"`
	InsertAtTop       bool          `mapstructure:"insertAtTop"`
	Highlight         bool          `mapstructure:"highlight"`
	HighlightColor    string        `mapstructure:"highlightColor" validate:"regex:^#[0-9a-fA-F]{6}$"`
	BatchSize         int           `mapstructure:"batchSize"`
	RequestsPerMinute int           `mapstructure:"requestsPerMinute"`
	RetryDelay        time.Duration `mapstructure:"retryDelay"`
	MaxRetries        int           `mapstructure:"maxRetries"`
}

type TagsConfig struct {
	CaseInsensitive bool `mapstructure:"caseInsensitive"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `mapstructure:"mode"`
	Dir   string `mapstructure:"dir"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Size    int           `mapstructure:"size"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

type Config struct {
	AppName  string
	Debug    bool
	Path     string
	Site     SiteConfig     `mapstructure:"site"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	CSV      CSVConfig      `mapstructure:"csv"`
	Sheets   SheetsConfig   `mapstructure:"sheets"`
	Tags     TagsConfig     `mapstructure:"tags"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

package providers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"onlinesync/internal/structures"
)

const AppName = "onlinesync"

var envBindings = map[string]string{
	"site.baseURL":           "ONLINESYNC_BASE_URL",
	"site.username":          "DAMADAM_USERNAME",
	"site.password":          "DAMADAM_PASSWORD",
	"site.cookieFile":        "ONLINESYNC_COOKIE_FILE",
	"sheets.enabled":         "ONLINESYNC_SHEETS_ENABLED",
	"sheets.url":             "GOOGLE_SHEET_URL",
	"sheets.credentialsJSON": "GOOGLE_SERVICE_ACCOUNT_JSON",
	"sheets.credentialsFile": "GOOGLE_APPLICATION_CREDENTIALS",
	"csv.enabled":            "ONLINESYNC_CSV_ENABLED",
	"csv.filePath":           "ONLINESYNC_CSV_FILE",
	"schedule.interval":      "ONLINESYNC_INTERVAL",
	"scrape.minDelay":        "ONLINESYNC_MIN_DELAY",
	"scrape.maxDelay":        "ONLINESYNC_MAX_DELAY",
	"scrape.maxProfiles":     "ONLINESYNC_MAX_PROFILES",
	"logger.level":           "ONLINESYNC_LOG_LEVEL",
	"cache.enabled":          "ONLINESYNC_CACHE_ENABLED",
	"metrics.enabled":        "ONLINESYNC_METRICS_ENABLED",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.baseURL", "https://damadam.pk")
	v.SetDefault("site.cookieFile", "cookies.json")
	v.SetDefault("site.userAgent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	v.SetDefault("site.timeout", 15*time.Second)

	v.SetDefault("scrape.minDelay", time.Second)
	v.SetDefault("scrape.maxDelay", 2*time.Second)
	v.SetDefault("schedule.interval", 15*time.Minute)

	v.SetDefault("csv.enabled", true)
	v.SetDefault("csv.filePath", "online_users.csv")

	v.SetDefault("sheets.worksheet", "Online")
	v.SetDefault("sheets.tagsWorksheet", "Tags")
	v.SetDefault("sheets.insertAtTop", true)
	v.SetDefault("sheets.highlightColor", "#fff2cc")
	v.SetDefault("sheets.batchSize", 50)
	v.SetDefault("sheets.requestsPerMinute", 50)
	v.SetDefault("sheets.retryDelay", 65*time.Second)
	v.SetDefault("sheets.maxRetries", 1)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)

	v.SetDefault("cache.size", 32)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("metrics.listen", ":9090")
}

// NewConfigProvider resolves the configuration once at startup. Precedence is
// environment, then the YAML file (optional), then defaults.
func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	if flags.EnvFile != "" {
		err := godotenv.Load(flags.EnvFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("unable to load env file %s: %w", flags.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if flags.ConfigPath != "" {
		filename := filepath.Base(flags.ConfigPath)
		v.AddConfigPath(filepath.Dir(flags.ConfigPath))
		v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
		v.SetConfigType("yaml")

		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		if err != nil && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err := v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Version is injected at build time via ldflags.
var Version = "dev"

// Config holds all application configuration.
type Config struct {
	Venue      VenueConfig      `mapstructure:"venue"`
	Calendar   CalendarConfig   `mapstructure:"calendar"`
	SideTables SideTablesConfig `mapstructure:"sidetables"`
	Scrape     ScrapeConfig     `mapstructure:"scrape"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// VenueConfig describes the venue whose screenings are mirrored.
type VenueConfig struct {
	ListingsURL string `mapstructure:"listings_url"`
	Timezone    string `mapstructure:"timezone"` // IANA name, e.g. "America/New_York"
	Location    string `mapstructure:"location"` // street address written on every event
	// ExcludedTitles are placeholder listings (venue rentals and the
	// like) that must never become calendar events.
	ExcludedTitles []string `mapstructure:"excluded_titles"`
}

// CalendarConfig identifies the managed calendar.
type CalendarConfig struct {
	ID              string `mapstructure:"id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// SideTablesConfig locates the series and runtime side-tables.
type SideTablesConfig struct {
	// Backend selects the row store: "csv" or "sheets".
	Backend       string `mapstructure:"backend"`
	CSVDir        string `mapstructure:"csv_dir"`
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	SeriesTable   string `mapstructure:"series_table"`
	RuntimeTable  string `mapstructure:"runtime_table"`
}

// ScrapeConfig tunes navigation and runtime discovery.
type ScrapeConfig struct {
	NavTimeoutSec    int    `mapstructure:"nav_timeout_sec"`
	MaxRetries       int    `mapstructure:"max_retries"`
	DiscoverRuntimes bool   `mapstructure:"discover_runtimes"`
	DetailSelector   string `mapstructure:"detail_selector"`
	// ReplaceRuntimeTable rewrites the runtime side-table from scratch
	// instead of appending discoveries. Default false.
	ReplaceRuntimeTable bool `mapstructure:"replace_runtime_table"`
}

// SyncConfig controls scheduled runs.
type SyncConfig struct {
	Cron       string `mapstructure:"cron"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// NavTimeout returns the per-attempt navigation timeout.
func (c *ScrapeConfig) NavTimeout() time.Duration {
	if c.NavTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavTimeoutSec) * time.Second
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.reelsync")
	}

	v.SetEnvPrefix("REELSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with. Missing
// required configuration is a hard failure by design, unlike the
// per-item failures tolerated at runtime.
func (c *Config) Validate() error {
	if c.Venue.ListingsURL == "" {
		return fmt.Errorf("venue.listings_url is required")
	}
	if c.Calendar.ID == "" {
		return fmt.Errorf("calendar.id is required")
	}
	switch c.SideTables.Backend {
	case "csv":
		if c.SideTables.CSVDir == "" {
			return fmt.Errorf("sidetables.csv_dir is required for the csv backend")
		}
	case "sheets":
		if c.SideTables.SpreadsheetID == "" {
			return fmt.Errorf("sidetables.spreadsheet_id is required for the sheets backend")
		}
	default:
		return fmt.Errorf("sidetables.backend must be \"csv\" or \"sheets\", got %q", c.SideTables.Backend)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("venue.timezone", "America/New_York")
	v.SetDefault("venue.location", "")
	v.SetDefault("venue.excluded_titles", []string{})

	v.SetDefault("sidetables.backend", "csv")
	v.SetDefault("sidetables.csv_dir", "./data")
	v.SetDefault("sidetables.series_table", "series")
	v.SetDefault("sidetables.runtime_table", "runtimes")

	v.SetDefault("scrape.nav_timeout_sec", 30)
	v.SetDefault("scrape.max_retries", 2)
	v.SetDefault("scrape.discover_runtimes", true)
	v.SetDefault("scrape.replace_runtime_table", false)

	v.SetDefault("sync.cron", "0 6 * * *")
	v.SetDefault("sync.run_on_start", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.compress", true)
}

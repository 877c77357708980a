package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Slack   SlackConfig   `yaml:"slack"`
	Storage StorageConfig `yaml:"storage"`
	Sync    SyncConfig    `yaml:"sync"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SlackConfig holds Slack workspace credentials.
type SlackConfig struct {
	BotToken string `yaml:"bot_token"`
}

// StorageConfig holds persistence storage settings.
type StorageConfig struct {
	Type   string       `yaml:"type"` // "memory", "sqlite", or "mysql"
	SQLite SQLiteConfig `yaml:"sqlite"`
	MySQL  MySQLConfig  `yaml:"mysql"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"` // Database file path, use ":memory:" for in-memory
}

// MySQLConfig holds MySQL-specific settings.
type MySQLConfig struct {
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	Database string          `yaml:"database"`
	Username string          `yaml:"username"`
	Password string          `yaml:"password"`
	Pool     MySQLPoolConfig `yaml:"pool"`
	Timeout  time.Duration   `yaml:"timeout"`
}

// MySQLPoolConfig holds MySQL connection pool settings.
type MySQLPoolConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// SyncConfig holds the incremental-sync tuning knobs.
type SyncConfig struct {
	// RecheckBufferHours is the width of the recheck window re-scanned on
	// each incremental run to catch late edits and thread replies.
	// A pointer keeps an explicit zero (recheck disabled) distinct from
	// unset; Load always leaves it non-nil.
	RecheckBufferHours *int `yaml:"recheck_buffer_hours"`

	// FullSyncDays is the historical horizon of the initial sync.
	FullSyncDays int `yaml:"full_sync_days"`

	// PageSize is the per-request message limit for history and replies.
	PageSize int `yaml:"page_size"`

	// PageInterval is the pacing delay between paginated requests.
	PageInterval time.Duration `yaml:"page_interval"`

	// Channels is an optional allow-list of channel names or IDs.
	// Empty means every listed channel is synced.
	Channels []string `yaml:"channels"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds the optional Prometheus scrape endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // e.g. ":9090", empty disables the listener
}

// Load reads configuration from file and environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	// Load from file if exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			// Expand environment variables in YAML
			expandedData := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Apply defaults
	cfg.applyDefaults()

	// Validate
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// overrideFromEnv overrides config values from environment variables.
func (c *Config) overrideFromEnv() {
	// Slack
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		c.Slack.BotToken = v
	}

	// Sync
	if v := os.Getenv("RECHECK_BUFFER_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			c.Sync.RecheckBufferHours = &hours
		}
	}
	if v := os.Getenv("FULL_SYNC_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			c.Sync.FullSyncDays = days
		}
	}
	if v := os.Getenv("FETCH_PAGE_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			c.Sync.PageSize = size
		}
	}
	if v := os.Getenv("FETCH_PAGE_INTERVAL"); v != "" {
		if interval, err := time.ParseDuration(v); err == nil {
			c.Sync.PageInterval = interval
		}
	}
	if v := os.Getenv("SYNC_CHANNELS"); v != "" {
		c.Sync.Channels = splitAndTrim(v)
	}

	// Logging
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	// Metrics
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}

	// Storage
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("SQLITE_DATABASE_PATH"); v != "" {
		c.Storage.SQLite.Path = v
	}

	// MySQL
	if v := os.Getenv("MYSQL_HOST"); v != "" {
		c.Storage.MySQL.Host = v
	}
	if v := os.Getenv("MYSQL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Storage.MySQL.Port = port
		}
	}
	if v := os.Getenv("MYSQL_DATABASE"); v != "" {
		c.Storage.MySQL.Database = v
	}
	if v := os.Getenv("MYSQL_USERNAME"); v != "" {
		c.Storage.MySQL.Username = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		c.Storage.MySQL.Password = v
	}
	if v := os.Getenv("MYSQL_MAX_OPEN_CONNS"); v != "" {
		if conns, err := strconv.Atoi(v); err == nil {
			c.Storage.MySQL.Pool.MaxOpenConns = conns
		}
	}
	if v := os.Getenv("MYSQL_MAX_IDLE_CONNS"); v != "" {
		if conns, err := strconv.Atoi(v); err == nil {
			c.Storage.MySQL.Pool.MaxIdleConns = conns
		}
	}
	if v := os.Getenv("MYSQL_CONN_MAX_LIFETIME"); v != "" {
		if duration, err := time.ParseDuration(v); err == nil {
			c.Storage.MySQL.Pool.ConnMaxLifetime = duration
		}
	}
}

// applyDefaults sets default values for unset config options.
func (c *Config) applyDefaults() {
	// Sync defaults
	if c.Sync.RecheckBufferHours == nil {
		hours := 24
		c.Sync.RecheckBufferHours = &hours
	}
	if c.Sync.FullSyncDays == 0 {
		c.Sync.FullSyncDays = 90
	}
	if c.Sync.PageSize == 0 {
		c.Sync.PageSize = 200
	}
	if c.Sync.PageInterval == 0 {
		// conversations.history is a tier-3 method (~50 req/min).
		c.Sync.PageInterval = 1200 * time.Millisecond
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	// Storage defaults
	if c.Storage.Type == "" {
		c.Storage.Type = "sqlite"
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "./data/slack-keeper.db"
	}

	// MySQL defaults
	if c.Storage.MySQL.Port == 0 {
		c.Storage.MySQL.Port = 3306
	}
	if c.Storage.MySQL.Pool.MaxOpenConns == 0 {
		c.Storage.MySQL.Pool.MaxOpenConns = 10
	}
	if c.Storage.MySQL.Pool.MaxIdleConns == 0 {
		c.Storage.MySQL.Pool.MaxIdleConns = 2
	}
	if c.Storage.MySQL.Pool.ConnMaxLifetime == 0 {
		c.Storage.MySQL.Pool.ConnMaxLifetime = 3 * time.Minute
	}
	if c.Storage.MySQL.Timeout == 0 {
		c.Storage.MySQL.Timeout = 5 * time.Second
	}
}

// validate checks that required configuration is present.
func (c *Config) validate() error {
	if c.Slack.BotToken == "" {
		return fmt.Errorf("slack.bot_token is required")
	}

	if *c.Sync.RecheckBufferHours < 0 {
		return fmt.Errorf("sync.recheck_buffer_hours must not be negative")
	}
	if c.Sync.FullSyncDays <= 0 {
		return fmt.Errorf("sync.full_sync_days must be positive")
	}
	if c.Sync.PageSize <= 0 {
		return fmt.Errorf("sync.page_size must be positive")
	}

	// Validate log level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	// Validate log format
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	// Validate storage type
	validStorageTypes := map[string]bool{"memory": true, "sqlite": true, "mysql": true}
	if !validStorageTypes[strings.ToLower(c.Storage.Type)] {
		return fmt.Errorf("invalid storage type: %s (must be memory, sqlite, or mysql)", c.Storage.Type)
	}

	// Validate SQLite path if storage type is sqlite
	if strings.ToLower(c.Storage.Type) == "sqlite" && c.Storage.SQLite.Path == "" {
		return fmt.Errorf("storage.sqlite.path is required when storage type is sqlite")
	}

	// Validate MySQL config if storage type is mysql
	if strings.ToLower(c.Storage.Type) == "mysql" {
		if c.Storage.MySQL.Host == "" {
			return fmt.Errorf("storage.mysql.host is required when storage type is mysql")
		}
		if c.Storage.MySQL.Database == "" {
			return fmt.Errorf("storage.mysql.database is required when storage type is mysql")
		}
		if c.Storage.MySQL.Username == "" {
			return fmt.Errorf("storage.mysql.username is required when storage type is mysql")
		}
		if c.Storage.MySQL.Password == "" {
			return fmt.Errorf("storage.mysql.password is required when storage type is mysql")
		}
	}

	return nil
}

// RecheckBuffer returns the recheck window width as a duration.
func (c *Config) RecheckBuffer() time.Duration {
	return time.Duration(*c.Sync.RecheckBufferHours) * time.Hour
}

// FullSyncHorizon returns the initial-sync horizon as a duration.
func (c *Config) FullSyncHorizon() time.Duration {
	return time.Duration(c.Sync.FullSyncDays) * 24 * time.Hour
}

// splitAndTrim splits a comma-separated list, dropping empty entries.
func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

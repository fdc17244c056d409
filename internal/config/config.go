// Package config defines the top-level configuration for the surebet engine
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SUREBET_* environment
// variables.
type Config struct {
	Detection DetectionConfig `toml:"detection"`
	Execution ExecutionConfig `toml:"execution"`
	Exposure  ExposureConfig  `toml:"exposure"`
	Alpha     ProviderConfig  `toml:"alpha"`
	Beta      ProviderConfig  `toml:"beta"`
	Feed      FeedConfig      `toml:"feed"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// DetectionConfig holds the arbitrage math parameters.
type DetectionConfig struct {
	// TotalStake is the combined amount split between the two legs of an
	// opportunity.
	TotalStake float64 `toml:"total_stake"`
	// Workers bounds the normalization pool; QueueSize bounds its backlog.
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// ExecutionConfig holds the guard and engine timing parameters.
type ExecutionConfig struct {
	CooldownInterval duration `toml:"cooldown_interval"`
	LockStaleness    duration `toml:"lock_staleness"`
	WatchdogInterval duration `toml:"watchdog_interval"`
	// DriftTolerance is the maximum absolute odds movement accepted between
	// detection and placement.
	DriftTolerance float64 `toml:"drift_tolerance"`
}

// ExposureConfig holds the open-stake ceilings.
type ExposureConfig struct {
	PerMatchLimit   float64 `toml:"per_match_limit"`
	PerAccountLimit float64 `toml:"per_account_limit"`
	Enforce         bool    `toml:"enforce"`
}

// ProviderConfig holds one bookmaker's API parameters. APIToken and
// AccountID may instead come from the encrypted credentials file.
type ProviderConfig struct {
	BaseURL         string   `toml:"base_url"`
	APIToken        string   `toml:"api_token"`
	AccountID       string   `toml:"account_id"`
	Timeout         duration `toml:"timeout"`
	CredentialsPath string   `toml:"credentials_path"`
	CredentialsPass string   `toml:"credentials_password"`
}

// FeedConfig selects and parameterizes the odds feed.
type FeedConfig struct {
	// Source is "redis" (Pub/Sub bus) or "websocket".
	Source  string `toml:"source"`
	Channel string `toml:"channel"`
	WSURL   string `toml:"ws_url"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for the audit
// archiver. Enabled=false skips archiving entirely.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	ForcePathStyle bool   `toml:"force_path_style"`
	RetentionDays  int    `toml:"retention_days"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	// Events filters what gets delivered: opportunity, execution, hedge,
	// error. Empty forwards everything.
	Events []string `toml:"events"`
}

// duration wraps time.Duration so TOML values like "5m" decode directly.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Detection: DetectionConfig{
			TotalStake: 100.0,
			Workers:    4,
			QueueSize:  64,
		},
		Execution: ExecutionConfig{
			CooldownInterval: duration{500 * time.Millisecond},
			LockStaleness:    duration{30 * time.Second},
			WatchdogInterval: duration{5 * time.Second},
			DriftTolerance:   0.05,
		},
		Exposure: ExposureConfig{
			PerMatchLimit:   200.0,
			PerAccountLimit: 1000.0,
			Enforce:         true,
		},
		Alpha: ProviderConfig{
			Timeout: duration{10 * time.Second},
		},
		Beta: ProviderConfig{
			Timeout: duration{10 * time.Second},
		},
		Feed: FeedConfig{
			Source:  "redis",
			Channel: "odds:raw",
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "surebet",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "surebet-audit",
			ForcePathStyle: true,
			RetentionDays:  90,
		},
		Notify: NotifyConfig{
			Events: []string{"execution", "hedge", "error"},
		},
		Mode:     "shadow",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"shadow": true,
	"live":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validFeedSources enumerates the accepted values for Feed.Source.
var validFeedSources = map[string]bool{
	"redis":     true,
	"websocket": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: shadow, live)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Detection
	if c.Detection.TotalStake <= 0 {
		errs = append(errs, "detection: total_stake must be > 0")
	}
	if c.Detection.Workers < 1 {
		errs = append(errs, "detection: workers must be >= 1")
	}

	// Execution
	if c.Execution.CooldownInterval.Duration < 0 {
		errs = append(errs, "execution: cooldown_interval must not be negative")
	}
	if c.Execution.LockStaleness.Duration <= 0 {
		errs = append(errs, "execution: lock_staleness must be > 0")
	}
	if c.Execution.DriftTolerance < 0 {
		errs = append(errs, "execution: drift_tolerance must not be negative")
	}

	// Exposure
	if c.Exposure.Enforce {
		if c.Exposure.PerMatchLimit <= 0 {
			errs = append(errs, "exposure: per_match_limit must be > 0 when enforced")
		}
		if c.Exposure.PerAccountLimit <= 0 {
			errs = append(errs, "exposure: per_account_limit must be > 0 when enforced")
		}
		if c.Exposure.PerMatchLimit > c.Exposure.PerAccountLimit {
			errs = append(errs, "exposure: per_match_limit must not exceed per_account_limit")
		}
	}

	// Live mode needs both placement endpoints and some credential
	// source for each provider.
	if strings.ToLower(c.Mode) == "live" {
		for name, p := range map[string]ProviderConfig{"alpha": c.Alpha, "beta": c.Beta} {
			if p.BaseURL == "" {
				errs = append(errs, name+": base_url is required for live mode")
			}
			if p.APIToken == "" && p.CredentialsPath == "" {
				errs = append(errs, name+": either api_token or credentials_path must be set for live mode")
			}
			if p.CredentialsPath != "" && p.CredentialsPass == "" {
				errs = append(errs, name+": credentials_password is required when credentials_path is set")
			}
		}
	}

	// Feed
	if !validFeedSources[strings.ToLower(c.Feed.Source)] {
		errs = append(errs, fmt.Sprintf("feed: unknown source %q (valid: redis, websocket)", c.Feed.Source))
	}
	if strings.ToLower(c.Feed.Source) == "redis" && c.Feed.Channel == "" {
		errs = append(errs, "feed: channel must not be empty for the redis source")
	}
	if strings.ToLower(c.Feed.Source) == "websocket" && c.Feed.WSURL == "" {
		errs = append(errs, "feed: ws_url must not be empty for the websocket source")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
		if c.S3.RetentionDays < 1 {
			errs = append(errs, "s3: retention_days must be >= 1 when enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

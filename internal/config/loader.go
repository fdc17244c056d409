package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SUREBET_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SUREBET_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Detection ──
	setFloat64(&cfg.Detection.TotalStake, "SUREBET_DETECTION_TOTAL_STAKE")
	setInt(&cfg.Detection.Workers, "SUREBET_DETECTION_WORKERS")
	setInt(&cfg.Detection.QueueSize, "SUREBET_DETECTION_QUEUE_SIZE")

	// ── Execution ──
	setDuration(&cfg.Execution.CooldownInterval, "SUREBET_EXECUTION_COOLDOWN_INTERVAL")
	setDuration(&cfg.Execution.LockStaleness, "SUREBET_EXECUTION_LOCK_STALENESS")
	setDuration(&cfg.Execution.WatchdogInterval, "SUREBET_EXECUTION_WATCHDOG_INTERVAL")
	setFloat64(&cfg.Execution.DriftTolerance, "SUREBET_EXECUTION_DRIFT_TOLERANCE")

	// ── Exposure ──
	setFloat64(&cfg.Exposure.PerMatchLimit, "SUREBET_EXPOSURE_PER_MATCH_LIMIT")
	setFloat64(&cfg.Exposure.PerAccountLimit, "SUREBET_EXPOSURE_PER_ACCOUNT_LIMIT")
	setBool(&cfg.Exposure.Enforce, "SUREBET_EXPOSURE_ENFORCE")

	// ── Providers ──
	setStr(&cfg.Alpha.BaseURL, "SUREBET_ALPHA_BASE_URL")
	setStr(&cfg.Alpha.APIToken, "SUREBET_ALPHA_API_TOKEN")
	setStr(&cfg.Alpha.AccountID, "SUREBET_ALPHA_ACCOUNT_ID")
	setStr(&cfg.Alpha.CredentialsPath, "SUREBET_ALPHA_CREDENTIALS_PATH")
	setStr(&cfg.Alpha.CredentialsPass, "SUREBET_ALPHA_CREDENTIALS_PASSWORD")
	setStr(&cfg.Beta.BaseURL, "SUREBET_BETA_BASE_URL")
	setStr(&cfg.Beta.APIToken, "SUREBET_BETA_API_TOKEN")
	setStr(&cfg.Beta.AccountID, "SUREBET_BETA_ACCOUNT_ID")
	setStr(&cfg.Beta.CredentialsPath, "SUREBET_BETA_CREDENTIALS_PATH")
	setStr(&cfg.Beta.CredentialsPass, "SUREBET_BETA_CREDENTIALS_PASSWORD")

	// ── Feed ──
	setStr(&cfg.Feed.Source, "SUREBET_FEED_SOURCE")
	setStr(&cfg.Feed.Channel, "SUREBET_FEED_CHANNEL")
	setStr(&cfg.Feed.WSURL, "SUREBET_FEED_WS_URL")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "SUREBET_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SUREBET_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SUREBET_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SUREBET_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SUREBET_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SUREBET_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SUREBET_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SUREBET_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SUREBET_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SUREBET_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "SUREBET_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SUREBET_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SUREBET_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SUREBET_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SUREBET_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SUREBET_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "SUREBET_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "SUREBET_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SUREBET_S3_REGION")
	setStr(&cfg.S3.Bucket, "SUREBET_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SUREBET_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SUREBET_S3_SECRET_KEY")
	setBool(&cfg.S3.ForcePathStyle, "SUREBET_S3_FORCE_PATH_STYLE")
	setInt(&cfg.S3.RetentionDays, "SUREBET_S3_RETENTION_DAYS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SUREBET_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SUREBET_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SUREBET_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SUREBET_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SUREBET_MODE")
	setStr(&cfg.LogLevel, "SUREBET_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown mode", func(c *Config) { c.Mode = "dry-run" }, "unknown mode"},
		{"unknown log level", func(c *Config) { c.LogLevel = "trace" }, "unknown log_level"},
		{"zero stake", func(c *Config) { c.Detection.TotalStake = 0 }, "total_stake"},
		{"negative drift", func(c *Config) { c.Execution.DriftTolerance = -0.1 }, "drift_tolerance"},
		{"match limit above account limit", func(c *Config) {
			c.Exposure.PerMatchLimit = 500
			c.Exposure.PerAccountLimit = 100
		}, "per_match_limit"},
		{"live without provider url", func(c *Config) { c.Mode = "live" }, "base_url"},
		{"websocket without url", func(c *Config) { c.Feed.Source = "websocket" }, "ws_url"},
		{"s3 enabled without bucket", func(c *Config) {
			c.S3.Enabled = true
			c.S3.Bucket = ""
		}, "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
mode = "live"
log_level = "debug"

[detection]
total_stake = 250.0

[execution]
cooldown_interval = "2s"

[alpha]
base_url = "https://alpha.example.com"
api_token = "file-token"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv("SUREBET_ALPHA_API_TOKEN", "env-token")
	t.Setenv("SUREBET_MODE", "shadow")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// File values override defaults.
	if cfg.Detection.TotalStake != 250.0 {
		t.Fatalf("total_stake = %v, want 250", cfg.Detection.TotalStake)
	}
	if cfg.Execution.CooldownInterval.Duration != 2*time.Second {
		t.Fatalf("cooldown_interval = %v, want 2s", cfg.Execution.CooldownInterval.Duration)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level = %q, want debug", cfg.LogLevel)
	}
	// Untouched sections keep their defaults.
	if cfg.Postgres.Port != 5432 {
		t.Fatalf("postgres port = %d, want default 5432", cfg.Postgres.Port)
	}
	// Environment overrides file values.
	if cfg.Alpha.APIToken != "env-token" {
		t.Fatalf("alpha token = %q, want env override", cfg.Alpha.APIToken)
	}
	if cfg.Mode != "shadow" {
		t.Fatalf("mode = %q, want env override shadow", cfg.Mode)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Alpha.APIToken = "secret-a"
	cfg.Postgres.Password = "secret-pg"
	cfg.Redis.Password = "secret-r"
	cfg.S3.SecretKey = "secret-s3"
	cfg.Notify.TelegramToken = "secret-tg"

	red := RedactedConfig(&cfg)

	for name, got := range map[string]string{
		"alpha token":       red.Alpha.APIToken,
		"postgres password": red.Postgres.Password,
		"redis password":    red.Redis.Password,
		"s3 secret key":     red.S3.SecretKey,
		"telegram token":    red.Notify.TelegramToken,
	} {
		if got != "***" {
			t.Fatalf("%s not redacted: %q", name, got)
		}
	}

	// The original must be untouched.
	if cfg.Alpha.APIToken != "secret-a" {
		t.Fatal("redaction must not mutate the source config")
	}
	// Empty secrets stay empty rather than becoming placeholders.
	if red.Beta.APIToken != "" {
		t.Fatalf("empty secret became %q", red.Beta.APIToken)
	}
}

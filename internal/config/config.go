// Package config defines the top-level configuration for the slipscan
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SLIPSCAN_* environment variables.
type Config struct {
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	OCR       OCRConfig       `toml:"ocr"`
	Parser    ParserConfig    `toml:"parser"`
	Retention RetentionConfig `toml:"retention"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
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
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	RiskTTL    duration `toml:"risk_ttl"`
}

// S3Config holds S3-compatible object storage parameters for slip images
// and CSV import archives.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// OCRConfig holds parameters for the external tesseract binary.
type OCRConfig struct {
	Binary        string   `toml:"binary"`
	Language      string   `toml:"language"`
	CharWhitelist string   `toml:"char_whitelist"`
	Timeout       duration `toml:"timeout"`
}

// ParserConfig tunes slip interpretation.
type ParserConfig struct {
	// ExchangeBooks lists bookmakers treated as betting exchanges, where
	// lay bets and commission apply.
	ExchangeBooks []string `toml:"exchange_books"`
	// DefaultCommission is the commission fraction assumed for an exchange
	// slip that does not print its commission rate.
	DefaultCommission float64 `toml:"default_commission"`
}

// RetentionConfig controls the background janitor that prunes stored slip
// images past their retention window.
type RetentionConfig struct {
	Enabled  bool     `toml:"enabled"`
	MaxAge   duration `toml:"max_age"`
	Interval duration `toml:"interval"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
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

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port          int      `toml:"port"`
	APIKey        string   `toml:"api_key"`
	CORSOrigins   []string `toml:"cors_origins"`
	MaxUploadMB   int      `toml:"max_upload_mb"`
	DefaultWindow duration `toml:"default_window"`
	// RateLimit caps upload and import requests per client per RateWindow.
	// Zero disables rate limiting.
	RateLimit  int      `toml:"rate_limit"`
	RateWindow duration `toml:"rate_window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Postgres: PostgresConfig{
			DSN:           "",
			Host:          "localhost",
			Port:          5432,
			Database:      "slipscan",
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
			RiskTTL:    duration{5 * time.Minute},
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "slipscan-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		OCR: OCRConfig{
			Binary:        "tesseract",
			Language:      "eng",
			CharWhitelist: "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$.,:@+-%()/ ",
			Timeout:       duration{30 * time.Second},
		},
		Parser: ParserConfig{
			ExchangeBooks:     []string{"betfair"},
			DefaultCommission: 0.05,
		},
		Retention: RetentionConfig{
			Enabled:  false,
			MaxAge:   duration{90 * 24 * time.Hour},
			Interval: duration{6 * time.Hour},
		},
		Server: ServerConfig{
			Port:          8000,
			CORSOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			MaxUploadMB:   10,
			DefaultWindow: duration{24 * time.Hour},
			RateLimit:     30,
			RateWindow:    duration{time.Minute},
		},
		Notify: NotifyConfig{
			Events: []string{"bet_settled", "import_finished", "error"},
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve":   true,
	"reparse": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, reparse)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
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
	if c.Redis.RiskTTL.Duration <= 0 {
		errs = append(errs, "redis: risk_ttl must be positive")
	}

	// S3
	if c.S3.Endpoint == "" {
		errs = append(errs, "s3: endpoint must not be empty")
	}
	if c.S3.Bucket == "" {
		errs = append(errs, "s3: bucket must not be empty")
	}

	// OCR
	if c.OCR.Binary == "" {
		errs = append(errs, "ocr: binary must not be empty")
	}
	if c.OCR.Timeout.Duration <= 0 {
		errs = append(errs, "ocr: timeout must be positive")
	}

	// Parser
	if c.Parser.DefaultCommission < 0 || c.Parser.DefaultCommission >= 1 {
		errs = append(errs, fmt.Sprintf("parser: default_commission must be a fraction in [0, 1), got %v", c.Parser.DefaultCommission))
	}

	// Retention
	if c.Retention.Enabled {
		if c.Retention.MaxAge.Duration <= 0 {
			errs = append(errs, "retention: max_age must be positive when enabled")
		}
		if c.Retention.Interval.Duration <= 0 {
			errs = append(errs, "retention: interval must be positive when enabled")
		}
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.MaxUploadMB < 1 {
		errs = append(errs, "server: max_upload_mb must be >= 1")
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server: rate_limit must be >= 0")
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
		errs = append(errs, "server: rate_window must be positive when rate_limit is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

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
// built-in defaults, applies SLIPSCAN_* environment variable overrides, and
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

// applyEnvOverrides reads well-known SLIPSCAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "SLIPSCAN_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "SLIPSCAN_DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "SLIPSCAN_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SLIPSCAN_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SLIPSCAN_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SLIPSCAN_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SLIPSCAN_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SLIPSCAN_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SLIPSCAN_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SLIPSCAN_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SLIPSCAN_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "SLIPSCAN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SLIPSCAN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SLIPSCAN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SLIPSCAN_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SLIPSCAN_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SLIPSCAN_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.RiskTTL, "SLIPSCAN_REDIS_RISK_TTL")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "SLIPSCAN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SLIPSCAN_S3_REGION")
	setStr(&cfg.S3.Bucket, "SLIPSCAN_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SLIPSCAN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SLIPSCAN_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SLIPSCAN_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SLIPSCAN_S3_FORCE_PATH_STYLE")

	// ── OCR ──
	setStr(&cfg.OCR.Binary, "SLIPSCAN_OCR_BINARY")
	setStr(&cfg.OCR.Language, "SLIPSCAN_OCR_LANGUAGE")
	setStr(&cfg.OCR.CharWhitelist, "SLIPSCAN_OCR_CHAR_WHITELIST")
	setDuration(&cfg.OCR.Timeout, "SLIPSCAN_OCR_TIMEOUT")

	// ── Parser ──
	setStringSlice(&cfg.Parser.ExchangeBooks, "SLIPSCAN_PARSER_EXCHANGE_BOOKS")
	setFloat64(&cfg.Parser.DefaultCommission, "SLIPSCAN_PARSER_DEFAULT_COMMISSION")

	// ── Retention ──
	setBool(&cfg.Retention.Enabled, "SLIPSCAN_RETENTION_ENABLED")
	setDuration(&cfg.Retention.MaxAge, "SLIPSCAN_RETENTION_MAX_AGE")
	setDuration(&cfg.Retention.Interval, "SLIPSCAN_RETENTION_INTERVAL")

	// ── Server ──
	setInt(&cfg.Server.Port, "SLIPSCAN_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "SLIPSCAN_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "SLIPSCAN_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.MaxUploadMB, "SLIPSCAN_SERVER_MAX_UPLOAD_MB")
	setDuration(&cfg.Server.DefaultWindow, "SLIPSCAN_SERVER_DEFAULT_WINDOW")
	setInt(&cfg.Server.RateLimit, "SLIPSCAN_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "SLIPSCAN_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SLIPSCAN_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SLIPSCAN_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SLIPSCAN_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SLIPSCAN_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SLIPSCAN_MODE")
	setStr(&cfg.LogLevel, "SLIPSCAN_LOG_LEVEL")
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

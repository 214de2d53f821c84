package config

import (
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults() should validate: %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "nope"
	cfg.LogLevel = "loud"
	cfg.Redis.Addr = ""
	cfg.S3.Bucket = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	for _, want := range []string{"unknown mode", "unknown log_level", "redis: addr", "s3: bucket"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateCommissionRange(t *testing.T) {
	cfg := Defaults()
	cfg.Parser.DefaultCommission = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("commission of 1.5 should not validate")
	}
	cfg.Parser.DefaultCommission = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero commission should validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SLIPSCAN_POSTGRES_DSN", "postgres://env/slipscan")
	t.Setenv("SLIPSCAN_SERVER_PORT", "9090")
	t.Setenv("SLIPSCAN_REDIS_RISK_TTL", "90s")
	t.Setenv("SLIPSCAN_PARSER_EXCHANGE_BOOKS", "betfair, smarkets")
	t.Setenv("SLIPSCAN_RETENTION_ENABLED", "true")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Postgres.DSN != "postgres://env/slipscan" {
		t.Errorf("DSN = %q", cfg.Postgres.DSN)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Redis.RiskTTL.Seconds() != 90 {
		t.Errorf("RiskTTL = %v", cfg.Redis.RiskTTL)
	}
	want := []string{"betfair", "smarkets"}
	if len(cfg.Parser.ExchangeBooks) != 2 || cfg.Parser.ExchangeBooks[0] != want[0] || cfg.Parser.ExchangeBooks[1] != want[1] {
		t.Errorf("ExchangeBooks = %v, want %v", cfg.Parser.ExchangeBooks, want)
	}
	if !cfg.Retention.Enabled {
		t.Error("Retention.Enabled should be overridden to true")
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Password = "hunter2"
	cfg.S3.SecretKey = "secret"
	cfg.Server.APIKey = "key"

	red := RedactedConfig(&cfg)
	if red.Postgres.Password != "***" || red.S3.SecretKey != "***" || red.Server.APIKey != "***" {
		t.Errorf("secrets not redacted: %+v", red)
	}
	if cfg.Postgres.Password != "hunter2" {
		t.Error("original config must not be mutated")
	}

	red.Notify.Events[0] = "mutated"
	if cfg.Notify.Events[0] == "mutated" {
		t.Error("redacted copy shares the events slice with the original")
	}
}

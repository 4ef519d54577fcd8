package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("ORACLE_TIMEOUT", "")
	t.Setenv("ADVICE_DAILY_LIMIT", "")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AdviceDailyLimit != 100 {
		t.Fatalf("AdviceDailyLimit: want=%d got=%d", 100, cfg.AdviceDailyLimit)
	}
	if cfg.OracleTimeout != 90*time.Second {
		t.Fatalf("OracleTimeout: want=%v got=%v", 90*time.Second, cfg.OracleTimeout)
	}
	if !strings.Contains(cfg.DatabaseDSN, "host=db") {
		t.Fatalf("DatabaseDSN: got=%q", cfg.DatabaseDSN)
	}
	if cfg.Location != time.UTC {
		t.Fatalf("Location: got=%v", cfg.Location)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@h/db")
	t.Setenv("ORACLE_POLL_INTERVAL", "250ms")
	t.Setenv("ORACLE_TIMEOUT", "30")
	t.Setenv("ADVICE_DAILY_LIMIT", "3")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseDSN != "postgres://u:p@h/db" {
		t.Fatalf("DatabaseDSN: got=%q", cfg.DatabaseDSN)
	}
	if cfg.OraclePollInterval != 250*time.Millisecond || cfg.OracleTimeout != 30*time.Second {
		t.Fatalf("oracle timings: poll=%v timeout=%v", cfg.OraclePollInterval, cfg.OracleTimeout)
	}
	if cfg.AdviceDailyLimit != 3 {
		t.Fatalf("AdviceDailyLimit: want=3 got=%d", cfg.AdviceDailyLimit)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.test" {
		t.Fatalf("AllowedOrigins: got=%v", cfg.AllowedOrigins)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("Load: expected error without JWT_SECRET")
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatalf("Load: expected error for unknown timezone")
	}
}

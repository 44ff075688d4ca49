package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-jwt-secret-key")
	t.Setenv("ENCRYPTION_KEY", "6368616e676520746869732070617373776f726420746f206120736563726574")
}

func TestLoad_Success(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.JWT.Secret != "test-jwt-secret-key" {
		t.Errorf("JWT.Secret = %q, want %q", cfg.JWT.Secret, "test-jwt-secret-key")
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 5432)
	}
	if cfg.Bank.RequestInterval != 60*time.Second {
		t.Errorf("Bank.RequestInterval = %s, want 60s", cfg.Bank.RequestInterval)
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for missing JWT_SECRET, got nil")
	}
}

func TestLoad_MissingEncryptionKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENCRYPTION_KEY", "")
	os.Unsetenv("ENCRYPTION_KEY")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for missing ENCRYPTION_KEY, got nil")
	}
}

func TestLoad_InvalidEncryptionKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"too short", "deadbeef"},
		{"not hex", "zz34567890123456789012345678901234567890123456789012345678901234"},
		{"raw 32 bytes instead of hex", "01234567890123456789012345678901"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv("ENCRYPTION_KEY", tt.key)

			_, err := Load()
			if err == nil {
				t.Error("Load() expected error for invalid ENCRYPTION_KEY, got nil")
			}
		})
	}
}

func TestLoad_InvalidDBPort(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("DB_PORT", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for invalid DB_PORT, got nil")
	}
}

func TestLoad_BankDefaults(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Bank.BaseURL != "https://api.monobank.ua" {
		t.Errorf("Bank.BaseURL = %q, want the upstream default", cfg.Bank.BaseURL)
	}
}

func TestLoad_BankRequestIntervalOverride(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("BANK_REQUEST_INTERVAL", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Bank.RequestInterval != 250*time.Millisecond {
		t.Errorf("Bank.RequestInterval = %s, want 250ms", cfg.Bank.RequestInterval)
	}
}

func TestLoad_InvalidBankRequestInterval(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("BANK_REQUEST_INTERVAL", "soon")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for invalid BANK_REQUEST_INTERVAL, got nil")
	}
}

func TestLoad_SchedulerDefaults(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if !cfg.Scheduler.Enabled {
		t.Error("Scheduler.Enabled = false, want true by default")
	}
	if len(cfg.Scheduler.ScheduleTimes) != 3 {
		t.Errorf("len(Scheduler.ScheduleTimes) = %d, want 3", len(cfg.Scheduler.ScheduleTimes))
	}
	if cfg.Scheduler.WorkerCount != 3 {
		t.Errorf("Scheduler.WorkerCount = %d, want 3", cfg.Scheduler.WorkerCount)
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"garbage", true}, // falls back to the default
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := getBoolEnv("TEST_BOOL", true); got != tt.want {
				t.Errorf("getBoolEnv(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

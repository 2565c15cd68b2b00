package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func clearSchedulerEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"SCHEDULER_HTTP_PORT",
		"SCHEDULER_SQLITE_PATH",
		"SCHEDULER_SESSION_TTL",
		"SCHEDULER_LOG_LEVEL",
		"SCHEDULER_NOTIFIER",
		"SCHEDULER_APP_NAME",
		"SCHEDULER_FROM_EMAIL",
		"SCHEDULER_SENDGRID_API_KEY",
		"SCHEDULER_PURGE_INTERVAL",
		"SCHEDULER_PURGE_RETENTION",
	}
	for _, key := range keys {
		// t.Setenv registers cleanup so the original value is restored.
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearSchedulerEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLitePath != "scheduler.db" {
			t.Fatalf("unexpected default SQLite path: %q", cfg.SQLitePath)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("unexpected default session TTL: %v", cfg.SessionTTL)
		}
		if cfg.Notifier != "console" {
			t.Fatalf("unexpected default notifier: %q", cfg.Notifier)
		}
		if cfg.PurgeRetention != 48*time.Hour {
			t.Fatalf("unexpected default purge retention: %v", cfg.PurgeRetention)
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		clearSchedulerEnv(t)
		t.Setenv("SCHEDULER_HTTP_PORT", "9090")
		t.Setenv("SCHEDULER_SQLITE_PATH", "/tmp/scheduler.db")
		t.Setenv("SCHEDULER_SESSION_TTL", "12h")
		t.Setenv("SCHEDULER_PURGE_INTERVAL", "30m")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLitePath != "/tmp/scheduler.db" {
			t.Fatalf("unexpected SQLite path: %q", cfg.SQLitePath)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("unexpected session TTL: %v", cfg.SessionTTL)
		}
		if cfg.PurgeInterval != 30*time.Minute {
			t.Fatalf("unexpected purge interval: %v", cfg.PurgeInterval)
		}
	})

	t.Run("rejects unknown notifier mode", func(t *testing.T) {
		clearSchedulerEnv(t)
		t.Setenv("SCHEDULER_NOTIFIER", "carrier-pigeon")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for unknown notifier mode")
		}
		if !strings.Contains(err.Error(), "SCHEDULER_NOTIFIER") {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("requires API key for sendgrid notifier", func(t *testing.T) {
		clearSchedulerEnv(t)
		t.Setenv("SCHEDULER_NOTIFIER", "sendgrid")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error when the Sendgrid key is missing")
		}
		if !strings.Contains(err.Error(), "SCHEDULER_SENDGRID_API_KEY") {
			t.Fatalf("unexpected error message: %q", err.Error())
		}

		t.Setenv("SCHEDULER_SENDGRID_API_KEY", "SG.test-key")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Notifier != "sendgrid" {
			t.Fatalf("unexpected notifier: %q", cfg.Notifier)
		}
	})
}

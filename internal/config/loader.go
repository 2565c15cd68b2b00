package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config captures environment driven configuration values for the scheduler service.
type Config struct {
	HTTPPort       int           `env:"SCHEDULER_HTTP_PORT" env-default:"8080"`
	SQLitePath     string        `env:"SCHEDULER_SQLITE_PATH" env-default:"scheduler.db"`
	SessionTTL     time.Duration `env:"SCHEDULER_SESSION_TTL" env-default:"24h"`
	LogLevel       string        `env:"SCHEDULER_LOG_LEVEL" env-default:"info"`
	Notifier       string        `env:"SCHEDULER_NOTIFIER" env-default:"console"`
	AppName        string        `env:"SCHEDULER_APP_NAME" env-default:"campus-scheduler"`
	FromEmail      string        `env:"SCHEDULER_FROM_EMAIL" env-default:"noreply@example.edu"`
	SendgridAPIKey string        `env:"SCHEDULER_SENDGRID_API_KEY"`
	PurgeInterval  time.Duration `env:"SCHEDULER_PURGE_INTERVAL" env-default:"1h"`
	PurgeRetention time.Duration `env:"SCHEDULER_PURGE_RETENTION" env-default:"48h"`
	AdminEmail     string        `env:"SCHEDULER_ADMIN_EMAIL" env-default:"admin@example.edu"`
	AdminPassword  string        `env:"SCHEDULER_ADMIN_PASSWORD"`
}

// Load reads configuration from the process environment, applying defaults
// for optional fields and validating cross-field constraints.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	invalid := make([]string, 0, 2)
	if cfg.HTTPPort <= 0 {
		invalid = append(invalid, "SCHEDULER_HTTP_PORT")
	}
	if cfg.SessionTTL <= 0 {
		invalid = append(invalid, "SCHEDULER_SESSION_TTL")
	}
	if cfg.PurgeInterval <= 0 {
		invalid = append(invalid, "SCHEDULER_PURGE_INTERVAL")
	}
	if cfg.PurgeRetention <= 0 {
		invalid = append(invalid, "SCHEDULER_PURGE_RETENTION")
	}
	switch cfg.Notifier {
	case "console", "sendgrid":
	default:
		invalid = append(invalid, "SCHEDULER_NOTIFIER")
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	if cfg.Notifier == "sendgrid" && strings.TrimSpace(cfg.SendgridAPIKey) == "" {
		return Config{}, fmt.Errorf("missing required environment variables: SCHEDULER_SENDGRID_API_KEY")
	}

	return cfg, nil
}

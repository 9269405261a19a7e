package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/mamadbah2/warehouse/internal/domain/storagefee"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	MongoDB   MongoDBConfig
	Storage   StorageConfig
	Reporting ReportingConfig
	Sheets    SheetsConfig
	Notify    NotifyConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
	Env  string
}

// LogConfig selects the logger flavor and verbosity.
type LogConfig struct {
	Level       string
	Development bool
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// StorageConfig carries the default tariff applied to new warehouse records
// and the inverted interval policy.
type StorageConfig struct {
	Tariff                  storagefee.TariffConfig
	RejectInvertedIntervals bool
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// Location resolves the configured timezone.
func (r ReportingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(r.Timezone)
}

// SheetsConfig contains configuration required to export reports to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the export is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// NotifyConfig configures the outbound webhook used for operator alerts.
type NotifyConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// Enabled reports whether notifications are configured.
func (n NotifyConfig) Enabled() bool {
	return n.WebhookURL != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	defaults := storagefee.DefaultTariff()

	freeDays, err := getenvInt("TARIFF_FREE_DAYS", defaults.FreeDays)
	if err != nil {
		return nil, err
	}
	standardRate, err := getenvFloat("TARIFF_STANDARD_RATE", defaults.StandardRate)
	if err != nil {
		return nil, err
	}
	extendedRate, err := getenvFloat("TARIFF_EXTENDED_RATE", defaults.ExtendedRate)
	if err != nil {
		return nil, err
	}
	standardDaysLimit, err := getenvInt("TARIFF_STANDARD_DAYS_LIMIT", defaults.StandardDaysLimit)
	if err != nil {
		return nil, err
	}
	strict, err := getenvBool("STORAGE_STRICT_INTERVALS", false)
	if err != nil {
		return nil, err
	}
	notifyTimeout, err := time.ParseDuration(getenvWithDefault("NOTIFY_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("NOTIFY_TIMEOUT: %w", err)
	}

	env := getenvWithDefault("APP_ENV", "production")

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
			Env:  env,
		},
		Log: LogConfig{
			Level:       getenvWithDefault("LOG_LEVEL", "info"),
			Development: env == "development",
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "warehouse"),
		},
		Storage: StorageConfig{
			Tariff: storagefee.TariffConfig{
				FreeDays:          freeDays,
				StandardRate:      standardRate,
				ExtendedRate:      extendedRate,
				StandardDaysLimit: standardDaysLimit,
			},
			RejectInvertedIntervals: strict,
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 1 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
			Timeout:    notifyTimeout,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if err := c.Storage.Tariff.Validate(); err != nil {
		return fmt.Errorf("default tariff: %w", err)
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}
	if _, err := cron.ParseStandard(c.Reporting.CronSchedule); err != nil {
		return fmt.Errorf("REPORT_CRON_SCHEDULE %q: %w", c.Reporting.CronSchedule, err)
	}

	if _, err := c.Reporting.Location(); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Reporting.Timezone, err)
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Notify.Enabled() && !strings.HasPrefix(c.Notify.WebhookURL, "http") {
		return errors.New("NOTIFY_WEBHOOK_URL must be an http(s) URL")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	FeedURL           string
	DataDir           string
	RunMode           string
	ServerPort        string
	LogLevel          string
	SyncIntervalHours string

	SMTPServer   string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	ToEmail      string
}

// FeedConfig holds upstream feed client configuration
type FeedConfig struct {
	RequestTimeout   time.Duration `json:"request_timeout"`
	RequestRateLimit time.Duration `json:"rate_limit"`
	MaxRetryAttempts int           `json:"max_retries"`
}

// DefaultFeedConfig returns default feed client configuration
func DefaultFeedConfig() *FeedConfig {
	return &FeedConfig{
		RequestTimeout:   10 * time.Second, // The feed is a single static JSON document
		RequestRateLimit: 1 * time.Second,
		MaxRetryAttempts: 3,
	}
}

const (
	RunModeOnce  = "once"
	RunModeServe = "serve"
)

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		FeedURL:           getEnv("FEED_URL", "https://www.canada.ca/content/dam/ircc/documents/json/ee_rounds_123_en.json"),
		DataDir:           getEnv("DATA_DIR", "Data"),
		RunMode:           getEnv("RUN_MODE", RunModeOnce),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		SyncIntervalHours: getEnv("SYNC_INTERVAL_HOURS", "8"),
		SMTPServer:        getEnv("SMTP_SERVER", ""),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		FromEmail:         getEnv("SMTP_FROM_EMAIL", ""),
		ToEmail:           getEnv("SMTP_TO_EMAIL", ""),
	}
}

// NotificationsEnabled reports whether email notifications are requested.
// Setting a recipient enables the notifier path.
func (c *Config) NotificationsEnabled() bool {
	return c.ToEmail != ""
}

// Validate checks that the notifier credential set is complete when
// notifications are enabled. Missing credentials are an unrecoverable
// top-level failure, not something to discover after a completed sync.
func (c *Config) Validate() error {
	if !c.NotificationsEnabled() {
		return nil
	}
	if c.SMTPServer == "" || c.SMTPUser == "" || c.SMTPPassword == "" || c.FromEmail == "" {
		return fmt.Errorf("SMTP_TO_EMAIL is set but SMTP_SERVER, SMTP_USER, SMTP_PASSWORD or SMTP_FROM_EMAIL is missing")
	}
	if _, err := strconv.Atoi(c.SMTPPort); err != nil {
		return fmt.Errorf("invalid SMTP_PORT value %q: %w", c.SMTPPort, err)
	}
	return nil
}

// GetSMTPPort returns the SMTP port as an integer.
func (c *Config) GetSMTPPort() int {
	port, err := strconv.Atoi(c.SMTPPort)
	if err != nil {
		logrus.Warnf("Invalid SMTP_PORT value: %s, using default 587", c.SMTPPort)
		return 587
	}
	return port
}

// GetSyncInterval returns the serve-mode sync interval from environment or default.
func (c *Config) GetSyncInterval() time.Duration {
	hours, err := strconv.Atoi(c.SyncIntervalHours)
	if err != nil || hours <= 0 {
		logrus.Warnf("Invalid SYNC_INTERVAL_HOURS value: %s, using default 8 hours", c.SyncIntervalHours)
		return 8 * time.Hour
	}
	return time.Duration(hours) * time.Hour
}

// GetLogLevel parses the configured logrus level, defaulting to info.
func (c *Config) GetLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid LOG_LEVEL value: %s, using info", c.LogLevel)
		return logrus.InfoLevel
	}
	return level
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

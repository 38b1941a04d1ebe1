package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv string
	// LogLevel and LogFormat override the binary's logging defaults when set.
	LogLevel  string
	LogFormat string

	// Backend
	APIBaseURL     string
	HTTPTimeout    time.Duration
	HTTPRateLimit  float64
	HTTPBurst      int
	HTTPMaxRetries int

	// Circuit breaker
	BreakerFailures int
	BreakerTimeout  time.Duration

	// Session
	SessionDBPath string
	EncryptionKey string

	// Sync
	SyncInterval             time.Duration
	NotificationPollInterval time.Duration
	// DisableAutoRefresh stops refetching the calendar after provider events.
	DisableAutoRefresh bool

	// Calendar view
	WeekStart time.Weekday
	Location  *time.Location

	// Snapshot cache
	RedisURL        string
	SnapshotTTL     time.Duration
	OfflineFallback bool

	// Event publishing
	RabbitMQURL string

	// Daemon
	HealthAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	weekStart, err := parseWeekday(getEnv("CALSYNC_WEEK_START", "sunday"))
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if name := getEnv("CALSYNC_TIMEZONE", ""); name != "" {
		loc, err = time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("invalid CALSYNC_TIMEZONE: %w", err)
		}
	}

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("CALSYNC_LOG_LEVEL", ""),
		LogFormat: getEnv("CALSYNC_LOG_FORMAT", ""),

		APIBaseURL:     strings.TrimRight(getEnv("CALSYNC_API_BASE_URL", "http://localhost:8000/api"), "/"),
		HTTPTimeout:    getDurationEnv("CALSYNC_HTTP_TIMEOUT", 30*time.Second),
		HTTPRateLimit:  getFloatEnv("CALSYNC_HTTP_RATE_LIMIT", 10),
		HTTPBurst:      getIntEnv("CALSYNC_HTTP_BURST", 20),
		HTTPMaxRetries: getIntEnv("CALSYNC_HTTP_MAX_RETRIES", 2),

		BreakerFailures: getIntEnv("CALSYNC_BREAKER_FAILURES", 5),
		BreakerTimeout:  getDurationEnv("CALSYNC_BREAKER_TIMEOUT", 30*time.Second),

		SessionDBPath: getEnv("CALSYNC_SESSION_DB", defaultSessionPath()),
		EncryptionKey: getEnv("CALSYNC_ENCRYPTION_KEY", ""),

		SyncInterval:             getDurationEnv("CALSYNC_SYNC_INTERVAL", 300*time.Second),
		NotificationPollInterval: getDurationEnv("CALSYNC_NOTIFICATION_POLL_INTERVAL", 60*time.Second),
		DisableAutoRefresh:       getBoolEnv("CALSYNC_DISABLE_AUTO_REFRESH", false),

		WeekStart: weekStart,
		Location:  loc,

		RedisURL:        getEnv("CALSYNC_REDIS_URL", ""),
		SnapshotTTL:     getDurationEnv("CALSYNC_SNAPSHOT_TTL", 24*time.Hour),
		OfflineFallback: getBoolEnv("CALSYNC_OFFLINE_FALLBACK", true),

		RabbitMQURL: getEnv("CALSYNC_RABBITMQ_URL", ""),

		HealthAddr: getEnv("CALSYNC_HEALTH_ADDR", "127.0.0.1:8081"),

		MCPAddr:      getEnv("MCP_ADDR", "127.0.0.1:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "sunday", "sun", "0":
		return time.Sunday, nil
	case "monday", "mon", "1":
		return time.Monday, nil
	case "saturday", "sat", "6":
		return time.Saturday, nil
	default:
		return time.Sunday, fmt.Errorf("invalid CALSYNC_WEEK_START %q (expected sunday, monday or saturday)", s)
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".calsync/session.db"
	}
	return filepath.Join(home, ".calsync", "session.db")
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	App          AppConfig
	Orchestrator OrchestratorConfig
	Push         PushConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// OrchestratorConfig holds the tuning knobs of the session lifecycle driver.
// Durations that gate individual sessions (grace periods, thresholds) are
// per-company policy and live in company settings, not here.
type OrchestratorConfig struct {
	Interval             time.Duration
	SessionLookahead     time.Duration
	HealthCheckInterval  time.Duration
	StoreBatchLimit      int
	ArchiveRetentionDays int
}

// PushConfig holds the push gateway connection settings.
type PushConfig struct {
	GatewayURL   string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

func Load() (*Config, error) {
	// .env is optional outside local development.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "timeclock"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Orchestrator configuration
	interval, err := time.ParseDuration(getEnv("ORCHESTRATOR_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ORCHESTRATOR_INTERVAL: %w", err)
	}

	lookahead, err := time.ParseDuration(getEnv("SESSION_LOOKAHEAD", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_LOOKAHEAD: %w", err)
	}

	healthInterval, err := time.ParseDuration(getEnv("HEALTH_CHECK_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid HEALTH_CHECK_INTERVAL: %w", err)
	}

	batchLimit, err := strconv.Atoi(getEnv("STORE_BATCH_LIMIT", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_BATCH_LIMIT: %w", err)
	}

	retentionDays, err := strconv.Atoi(getEnv("ARCHIVE_RETENTION_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid ARCHIVE_RETENTION_DAYS: %w", err)
	}

	config.Orchestrator = OrchestratorConfig{
		Interval:             interval,
		SessionLookahead:     lookahead,
		HealthCheckInterval:  healthInterval,
		StoreBatchLimit:      batchLimit,
		ArchiveRetentionDays: retentionDays,
	}

	// Push gateway configuration
	config.Push = PushConfig{
		GatewayURL:   getEnv("PUSH_GATEWAY_URL", ""),
		TokenURL:     getEnv("PUSH_TOKEN_URL", ""),
		ClientID:     getEnv("PUSH_CLIENT_ID", ""),
		ClientSecret: getEnv("PUSH_CLIENT_SECRET", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Orchestrator.Interval <= 0 {
		return fmt.Errorf("ORCHESTRATOR_INTERVAL must be positive")
	}
	if c.Orchestrator.StoreBatchLimit <= 0 {
		return fmt.Errorf("STORE_BATCH_LIMIT must be positive")
	}
	if c.Push.GatewayURL != "" {
		if c.Push.TokenURL == "" {
			return fmt.Errorf("PUSH_TOKEN_URL is required when PUSH_GATEWAY_URL is set")
		}
		if c.Push.ClientID == "" || c.Push.ClientSecret == "" {
			return fmt.Errorf("PUSH_CLIENT_ID and PUSH_CLIENT_SECRET are required when PUSH_GATEWAY_URL is set")
		}
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Package config reads service settings from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMongo     = "mongo"
	BackendMemory    = "memory"
	BackendCassandra = "cassandra"
)

type Config struct {
	Port string

	MongoURI            string
	MongoDB             string
	StoreBackend        string
	NotificationBackend string
	CassandraHost       string
	NatsURL             string

	TokenSecret string
	TokenTTL    time.Duration

	AllowedOrigins []string

	EnableBootstrap        bool
	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	ActivityRetentionDays int
	ActivityCleanupSpec   string
}

// Load reads a .env file when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		MongoURI:               getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:                getEnv("MONGO_DB", "teamtracker"),
		StoreBackend:           getEnv("STORE_BACKEND", BackendMongo),
		NotificationBackend:    getEnv("NOTIFICATION_BACKEND", BackendMongo),
		CassandraHost:          os.Getenv("CASS_DB"),
		NatsURL:                os.Getenv("NATS_URL"),
		TokenSecret:            os.Getenv("TOKEN_SECRET"),
		TokenTTL:               time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		AllowedOrigins:         splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:4200")),
		EnableBootstrap:        getEnvBool("ENABLE_BOOTSTRAP", false),
		BootstrapAdminEmail:    getEnv("BOOTSTRAP_ADMIN_EMAIL", "admin@teamtracker.local"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		ActivityRetentionDays:  getEnvInt("ACTIVITY_RETENTION_DAYS", 0),
		ActivityCleanupSpec:    getEnv("ACTIVITY_CLEANUP_SPEC", "@daily"),
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendMongo, BackendMemory:
	default:
		return errors.New("STORE_BACKEND must be mongo or memory")
	}
	switch c.NotificationBackend {
	case BackendMongo, BackendCassandra:
	default:
		return errors.New("NOTIFICATION_BACKEND must be mongo or cassandra")
	}
	if c.NotificationBackend == BackendCassandra && c.CassandraHost == "" {
		return errors.New("CASS_DB is required for the cassandra notification backend")
	}
	if c.TokenSecret == "" {
		if c.StoreBackend != BackendMemory {
			return errors.New("TOKEN_SECRET is required")
		}
		c.TokenSecret = "dev-secret"
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL_HOURS must be positive")
	}
	if c.ActivityRetentionDays < 0 {
		return errors.New("ACTIVITY_RETENTION_DAYS must not be negative")
	}
	if c.EnableBootstrap && c.BootstrapAdminPassword == "" {
		return errors.New("BOOTSTRAP_ADMIN_PASSWORD is required when ENABLE_BOOTSTRAP is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool accepts "1", "true" and "yes" as true.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

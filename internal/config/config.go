package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Ledger backend
	DataBackend  string // "file", "sqlite" or "memory"
	DataFile     string
	SQLiteDBPath string

	// Auth stub
	AuthUsername string
	AuthPassword string

	// Sync bridge
	BridgeBaseURL string
	SyncInterval  time.Duration
	AutoSync      bool

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		DataBackend:  getEnv("DATA_BACKEND", "file"),
		DataFile:     getEnv("DATA_FILE", "./data/budget_data.json"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budget.db"),

		AuthUsername: getEnv("AUTH_USERNAME", "admin"),
		AuthPassword: getEnv("AUTH_PASSWORD", "admin"),

		BridgeBaseURL: getEnv("BRIDGE_BASE_URL", ""),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 30*time.Second),
		AutoSync:      getEnvBool("AUTO_SYNC", false),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budget"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_transactions"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"file", "sqlite", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate file backend configuration. Directories are created by the
	// stores themselves; validation only reports.
	if c.DataBackend == "file" && c.DataFile == "" {
		errors = append(errors, "data file path cannot be empty when using file backend")
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	// Validate auth stub credentials
	if c.AuthUsername == "" {
		errors = append(errors, "auth username cannot be empty")
	}
	if c.AuthPassword == "" {
		errors = append(errors, "auth password cannot be empty")
	}

	// Validate bridge URL if provided
	if c.BridgeBaseURL != "" {
		if parsedURL, err := url.Parse(c.BridgeBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid bridge base URL '%s': %v", c.BridgeBaseURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid bridge base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	// Auto sync needs a bridge to sync through
	if c.AutoSync && c.BridgeBaseURL == "" {
		errors = append(errors, "AUTO_SYNC requires BRIDGE_BASE_URL to be set")
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate sync interval
	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

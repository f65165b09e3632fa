// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	// HTTP server
	Port               string
	CORSAllowedOrigins []string

	// Database
	DBDriver    string
	DBPath      string
	DatabaseURL string

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// AMQP reminder publishing; empty URL logs reminders instead
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Background work
	ReminderInterval  time.Duration
	ReminderWindow    time.Duration
	ReconcileInterval time.Duration
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBPath:      getEnv("DB_PATH", "./data/ledger.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "groupledger"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "split.reminder"),

		ReminderInterval:  getEnvDuration("REMINDER_INTERVAL", time.Hour),
		ReminderWindow:    getEnvDuration("REMINDER_WINDOW", 72*time.Hour),
		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", 0),
	}
}

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			errs = append(errs, "DB_PATH cannot be empty when using the sqlite driver")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when using the postgres driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid database driver '%s': must be sqlite or postgres", c.DBDriver))
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	} else if len(c.JWTSecret) < 16 {
		errs = append(errs, "JWT_SECRET must be at least 16 characters")
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Sprintf("invalid JWT TTL %v: must be positive", c.JWTTTL))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ReminderInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid reminder interval %v: must be at least 1 second", c.ReminderInterval))
	}
	if c.ReminderWindow <= 0 {
		errs = append(errs, fmt.Sprintf("invalid reminder window %v: must be positive", c.ReminderWindow))
	}
	if c.ReconcileInterval < 0 {
		errs = append(errs, fmt.Sprintf("invalid reconcile interval %v: must not be negative", c.ReconcileInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

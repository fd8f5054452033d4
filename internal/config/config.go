// Package config defines runtime configuration for the collaboration server,
// loaded from the environment with validation and sensible defaults.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig defines the parameters for per-connection message rate
// limiting using a token bucket.
type RateLimitConfig struct {
	MessagesPerSecond float64
	Burst             int
	Enabled           bool
}

// Config holds the server configuration settings including the credential
// secret and security controls.
type Config struct {
	Port            string
	AllowedOrigins  []string
	MaxMessageSize  int64
	RateLimit       RateLimitConfig
	JWTSecret       string
	UsersFile       string
	LogLevel        string
	LogPretty       bool
	ShutdownTimeout time.Duration
}

// Default returns a Config populated with default values for all settings.
// The JWT secret has no default; it must come from the environment.
func Default() Config {
	return Config{
		Port: ":8080",
		AllowedOrigins: []string{
			"http://localhost:3000",
		},
		MaxMessageSize: 64 * 1024,
		RateLimit: RateLimitConfig{
			MessagesPerSecond: 20,
			Burst:             40,
			Enabled:           true,
		},
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
	}
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for anything unset or unparseable.
func FromEnv() Config {
	cfg := Default()

	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}
	if maxSize := os.Getenv("MAX_MESSAGE_SIZE"); maxSize != "" {
		cfg.MaxMessageSize = parseInt64Value(maxSize, cfg.MaxMessageSize)
	}
	if perSecond := os.Getenv("RATE_LIMIT_PER_SECOND"); perSecond != "" {
		cfg.RateLimit.MessagesPerSecond = parseFloatValue(perSecond, cfg.RateLimit.MessagesPerSecond)
	}
	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		cfg.RateLimit.Burst = parseIntValue(burst, cfg.RateLimit.Burst)
	}
	if enabled := os.Getenv("RATE_LIMIT_ENABLED"); enabled != "" {
		cfg.RateLimit.Enabled = parseBoolValue(enabled, cfg.RateLimit.Enabled)
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.UsersFile = os.Getenv("USERS_FILE")
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if pretty := os.Getenv("LOG_PRETTY"); pretty != "" {
		cfg.LogPretty = parseBoolValue(pretty, cfg.LogPretty)
	}
	if timeout := os.Getenv("SHUTDOWN_TIMEOUT_SECONDS"); timeout != "" {
		cfg.ShutdownTimeout = parseSecondsValue(timeout, cfg.ShutdownTimeout)
	}

	return sanitize(cfg)
}

// Validate reports configuration that cannot be defaulted away.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	return nil
}

func sanitize(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = ":8080"
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 64 * 1024
	}
	if cfg.RateLimit.MessagesPerSecond <= 0 {
		cfg.RateLimit.MessagesPerSecond = 20
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 40
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return cfg
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	trimmed := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			trimmed = append(trimmed, part)
		}
	}
	return trimmed
}

func parseInt64Value(value string, defaultValue int64) int64 {
	if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

func parseIntValue(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

func parseFloatValue(value string, defaultValue float64) float64 {
	if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

func parseBoolValue(value string, defaultValue bool) bool {
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed
	}
	return defaultValue
}

func parseSecondsValue(value string, defaultValue time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

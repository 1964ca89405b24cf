package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"mibolsillo/internal/session"
)

type Config struct {
	// HTTP Server
	Port string

	// Remote API
	APIURL     string
	APITimeout time.Duration

	// Identity provider
	ClerkPublishableKey string
	ClerkJWKSURL        string

	// Telegram linking
	TelegramBotUsername string

	// Logging
	LogLevel  string
	LogFormat string

	// Rate limiting of mutations, per client IP
	RateLimitPerMinute int

	DefaultLanguage string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "3000"),

		APIURL:     getEnv("API_URL", "http://localhost:8080"),
		APITimeout: getEnvDuration("API_TIMEOUT", 10*time.Second),

		ClerkPublishableKey: getEnv("CLERK_PUBLISHABLE_KEY", ""),
		ClerkJWKSURL:        getEnv("CLERK_JWKS_URL", ""),

		TelegramBotUsername: strings.TrimPrefix(getEnv("TELEGRAM_BOT_USERNAME", "mi_bolsillo_bot"), "@"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		DefaultLanguage: strings.ToLower(getEnv("DEFAULT_LANGUAGE", "en")),
	}

	return cfg
}

// ClerkFrontendAPI returns the identity provider host encoded in the
// publishable key, or "" when no key is configured.
func (c *Config) ClerkFrontendAPI() string {
	if c.ClerkPublishableKey == "" {
		return ""
	}
	host, err := session.FrontendAPI(c.ClerkPublishableKey)
	if err != nil {
		return ""
	}
	return host
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.APIURL == "" {
		errors = append(errors, "API URL cannot be empty")
	} else if u, err := url.Parse(c.APIURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API URL '%s': %v", c.APIURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.APITimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be at least 100ms", c.APITimeout))
	} else if c.APITimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be at most 2 minutes", c.APITimeout))
	}

	if c.ClerkPublishableKey != "" {
		if _, err := session.FrontendAPI(c.ClerkPublishableKey); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Clerk publishable key: %v", err))
		}
	}

	if c.ClerkJWKSURL != "" {
		if u, err := url.Parse(c.ClerkJWKSURL); err != nil || u.Scheme != "https" && u.Scheme != "http" {
			errors = append(errors, fmt.Sprintf("invalid Clerk JWKS URL '%s': must be an http(s) URL", c.ClerkJWKSURL))
		}
	}

	if c.TelegramBotUsername == "" {
		errors = append(errors, "Telegram bot username cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	validFormats := []string{"text", "json", "tint"}
	if !slices.Contains(validFormats, strings.ToLower(c.LogFormat)) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	} else if c.RateLimitPerMinute > 10000 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at most 10000", c.RateLimitPerMinute))
	}

	validLanguages := []string{"en", "es"}
	if !slices.Contains(validLanguages, c.DefaultLanguage) {
		errors = append(errors, fmt.Sprintf("invalid default language '%s': must be one of %v", c.DefaultLanguage, validLanguages))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// getEnv also accepts the VITE_-prefixed name used by older deployments.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value := os.Getenv("VITE_" + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := getEnv(key, ""); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := getEnv(key, ""); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"errors"
	"fmt"
	"slices"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	NotifierMemory   = "memory"
	NotifierRedis    = "redis"
	NotifierPostgres = "postgres"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var logLevels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration is internally consistent.
// Provider credentials are checked separately by RequireTextProvider.
func ValidateConfig(cfg *Config) error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}

	switch cfg.DBDriver {
	case DriverSQLite:
		if cfg.DBPath == "" {
			add("DB_PATH", "is required for the sqlite driver")
		}
	case DriverPostgres:
		for field, v := range map[string]string{
			"DB_HOST": cfg.DBHost,
			"DB_PORT": cfg.DBPort,
			"DB_USER": cfg.DBUser,
			"DB_NAME": cfg.DBName,
		} {
			if v == "" {
				add(field, "is required for the postgres driver")
			}
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unknown driver %q, expected sqlite or postgres", cfg.DBDriver))
	}

	switch cfg.Notifier {
	case NotifierMemory:
	case NotifierRedis:
		if !cfg.RedisConfigured() {
			add("NOTIFIER", "redis notifier requires REDIS_URL or REDIS_HOST")
		}
	case NotifierPostgres:
		if cfg.DBDriver != DriverPostgres {
			add("NOTIFIER", "postgres notifier requires the postgres driver")
		}
	default:
		add("NOTIFIER", fmt.Sprintf("unknown notifier %q, expected memory, redis or postgres", cfg.Notifier))
	}

	if cfg.LLMProvider != ProviderOpenAI && cfg.LLMProvider != ProviderGemini {
		add("LLM_PROVIDER", fmt.Sprintf("unknown provider %q, expected openai or gemini", cfg.LLMProvider))
	}
	if cfg.LLMTimeout <= 0 {
		add("LLM_TIMEOUT", "must be positive")
	}
	if cfg.LiveQueryGrace < 0 {
		add("LIVE_QUERY_GRACE", "must not be negative")
	}
	if cfg.RateLimitPerHour < 0 {
		add("RATE_LIMIT_PER_HOUR", "must not be negative")
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		add("LOG_LEVEL", fmt.Sprintf("unknown level %q", cfg.LogLevel))
	}

	return errors.Join(errs...)
}

// RequireTextProvider checks that the selected text provider has credentials
func RequireTextProvider(cfg *Config) error {
	switch cfg.LLMProvider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return ValidationError{Field: "GEMINI_API_KEY", Message: "is required for the gemini provider"}
		}
	default:
		if cfg.OpenAIAPIKey == "" {
			return ValidationError{Field: "OPENAI_API_KEY", Message: "is required for the openai provider"}
		}
	}
	return nil
}

// ImagesEnabled reports whether dish pictures can be generated
func (c *Config) ImagesEnabled() bool {
	return c.OpenAIAPIKey != ""
}

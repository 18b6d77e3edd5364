package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost string `yaml:"server_host"`
	ServerPort string `yaml:"server_port"`

	// Database configuration
	DBDriver   string `yaml:"db_driver"`
	DBPath     string `yaml:"db_path"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_ssl_mode"`

	// Change notification backend for live queries
	Notifier string `yaml:"notifier"`

	// Redis configuration
	RedisURL      string `yaml:"redis_url"`
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Generation providers
	LLMProvider   string        `yaml:"llm_provider"`
	OpenAIAPIKey  string        `yaml:"openai_api_key"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
	ChatModel     string        `yaml:"chat_model"`
	ImageModel    string        `yaml:"image_model"`
	GeminiAPIKey  string        `yaml:"gemini_api_key"`
	GeminiModel   string        `yaml:"gemini_model"`
	LLMTimeout    time.Duration `yaml:"llm_timeout"`

	LiveQueryGrace time.Duration `yaml:"live_query_grace"`

	// Image storage
	S3BucketName string `yaml:"s3_bucket_name"`
	AWSRegion    string `yaml:"aws_region"`

	// HTTP surface
	JWTSecret        string   `yaml:"jwt_secret"`
	CORSOrigins      []string `yaml:"cors_origins"`
	RateLimitPerHour int      `yaml:"rate_limit_per_hour"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

// Defaults returns a configuration that runs locally against a SQLite file
func Defaults() *Config {
	return &Config{
		ServerHost:       "0.0.0.0",
		ServerPort:       "8080",
		DBDriver:         DriverSQLite,
		DBPath:           "chefai.db",
		DBPort:           "5432",
		DBSSLMode:        "disable",
		Notifier:         NotifierMemory,
		RedisPort:        "6379",
		LLMProvider:      ProviderOpenAI,
		OpenAIBaseURL:    "https://api.openai.com",
		ChatModel:        "gpt-4o-mini",
		ImageModel:       "dall-e-2",
		GeminiModel:      "gemini-2.0-flash",
		LLMTimeout:       60 * time.Second,
		LiveQueryGrace:   5 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitPerHour: 30,
		LogLevel:         "info",
	}
}

// LoadConfig creates a new Config from defaults, the optional CHEFAI_CONFIG file,
// environment variables and docker secrets, then validates it
func LoadConfig() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Load assembles the configuration without validating it
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CHEFAI_CONFIG"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := loadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment configuration: %w", err)
	}

	env := GetEnvironment()
	if env.UsesSecrets() {
		loadSecrets(cfg, env == Production)
	}

	return cfg, nil
}

// loadFile overlays values from a YAML file
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays values from environment variables that are set
func loadEnv(cfg *Config) error {
	strs := map[string]*string{
		"SERVER_HOST":     &cfg.ServerHost,
		"SERVER_PORT":     &cfg.ServerPort,
		"DB_DRIVER":       &cfg.DBDriver,
		"DB_PATH":         &cfg.DBPath,
		"DB_HOST":         &cfg.DBHost,
		"DB_PORT":         &cfg.DBPort,
		"DB_USER":         &cfg.DBUser,
		"DB_PASSWORD":     &cfg.DBPassword,
		"DB_NAME":         &cfg.DBName,
		"DB_SSL_MODE":     &cfg.DBSSLMode,
		"NOTIFIER":        &cfg.Notifier,
		"REDIS_URL":       &cfg.RedisURL,
		"REDIS_HOST":      &cfg.RedisHost,
		"REDIS_PORT":      &cfg.RedisPort,
		"REDIS_PASSWORD":  &cfg.RedisPassword,
		"LLM_PROVIDER":    &cfg.LLMProvider,
		"OPENAI_API_KEY":  &cfg.OpenAIAPIKey,
		"OPENAI_BASE_URL": &cfg.OpenAIBaseURL,
		"CHAT_MODEL":      &cfg.ChatModel,
		"IMAGE_MODEL":     &cfg.ImageModel,
		"GEMINI_API_KEY":  &cfg.GeminiAPIKey,
		"GEMINI_MODEL":    &cfg.GeminiModel,
		"S3_BUCKET_NAME":  &cfg.S3BucketName,
		"AWS_REGION":      &cfg.AWSRegion,
		"JWT_SECRET":      &cfg.JWTSecret,
		"LOG_LEVEL":       &cfg.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"REDIS_DB":            &cfg.RedisDB,
		"RATE_LIMIT_PER_HOUR": &cfg.RateLimitPerHour,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return ValidationError{Field: key, Message: "must be an integer"}
		}
		*dst = n
	}

	durations := map[string]*time.Duration{
		"LLM_TIMEOUT":      &cfg.LLMTimeout,
		"LIVE_QUERY_GRACE": &cfg.LiveQueryGrace,
	}
	for key, dst := range durations {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return ValidationError{Field: key, Message: "must be a duration such as 30s"}
		}
		*dst = d
	}

	if v, ok := os.LookupEnv("LOG_JSON"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return ValidationError{Field: "LOG_JSON", Message: "must be true or false"}
		}
		cfg.LogJSON = b
	}

	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}

	return nil
}

// loadSecrets reads credentials from docker secrets. Outside production a secret only fills
// a value that is still empty; in production secrets always win.
func loadSecrets(cfg *Config, override bool) {
	secrets := map[string]*string{
		"openai_api_key": &cfg.OpenAIAPIKey,
		"gemini_api_key": &cfg.GeminiAPIKey,
		"db_password":    &cfg.DBPassword,
		"redis_password": &cfg.RedisPassword,
		"jwt_secret":     &cfg.JWTSecret,
	}
	for name, dst := range secrets {
		if *dst != "" && !override {
			continue
		}
		if v := readSecret(name); v != "" {
			*dst = v
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Addr returns the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN returns the lib/pq connection string for the configured database
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisAddr returns the host:port of the Redis server
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// RedisConfigured reports whether a Redis server has been configured
func (c *Config) RedisConfigured() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

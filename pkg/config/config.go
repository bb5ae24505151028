package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the dashboard
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string `validate:"required,numeric"`
	Env  string `validate:"oneof=development staging production test"`

	// Stats backend
	Backend BackendConfig

	// Funnel
	Funnel FunnelConfig

	// Redis (optional shared stats store)
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string `validate:"omitempty,oneof=json console pretty"`

	// Monitoring
	MetricsEnabled bool
}

// BackendConfig describes the stats backend the dashboard reads from
type BackendConfig struct {
	BaseURL    string        `validate:"required,url"`
	Timeout    time.Duration `validate:"gt=0"`
	MaxRetries int           `validate:"gte=0,lte=10"`
	RateLimit  float64       `validate:"gte=0"` // requests per second, 0 = unlimited
}

// FunnelConfig holds aggregation and refresh settings
type FunnelConfig struct {
	TotalPolicy     string `validate:"oneof=all_deals sum"`
	RefreshSchedule string // cron spec, empty disables the live refresh job
	RefreshRetries  int    `validate:"gte=0,lte=10"`
	StagesFile      string // optional YAML stage catalog, default is the built-in 25 stages
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration `validate:"gte=0"`
	Enabled  bool
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Backend: BackendConfig{
			BaseURL:    strings.TrimRight(getEnv("BACKEND_URL", "http://127.0.0.1:8000"), "/"),
			Timeout:    getEnvAsDuration("BACKEND_TIMEOUT", "10s"),
			MaxRetries: getEnvAsInt("BACKEND_MAX_RETRIES", 0),
			RateLimit:  getEnvAsFloat("BACKEND_RATE_LIMIT", 0),
		},

		Funnel: FunnelConfig{
			TotalPolicy:     getEnv("FUNNEL_TOTAL_POLICY", "all_deals"),
			RefreshSchedule: getEnv("LIVE_REFRESH_SCHEDULE", "@every 1m"),
			RefreshRetries:  getEnvAsInt("LIVE_REFRESH_RETRIES", 0),
			StagesFile:      getEnv("FUNNEL_STAGES_FILE", ""),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "dealfunnel"),
			TTL:      getEnvAsDuration("REDIS_TTL", "24h"),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile loads path as a .env file, then reads the environment like Load.
// Variables already set in the environment win.
func LoadFile(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return Load()
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

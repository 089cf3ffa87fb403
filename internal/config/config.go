package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// It is loaded once at startup and treated as read-only afterwards.
type Config struct {
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModelName   string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeout     time.Duration

	APIPort   int
	LogLevel  slog.Level
	LogFormat string

	RateLimit       float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

const (
	defaultLLMBaseURL      = "http://127.0.0.1:7001/v1"
	defaultLLMAPIKey       = "not-needed"
	defaultLLMModelName    = "gpt-3.5-turbo"
	defaultLLMTemperature  = 0.7
	defaultLLMMaxTokens    = 512
	defaultLLMTimeout      = 60 * time.Second
	defaultAPIPort         = 3001
	defaultLogFormat       = "text"
	defaultRateLimit       = 100
	defaultRateLimitBurst  = 200
	defaultShutdownTimeout = 30 * time.Second
)

// Load reads configuration from environment variables and returns a Config struct.
// Unset variables fall back to defaults. A variable that is set but cannot be parsed
// as its target type, or is out of range, is an error: callers are expected to fail fast.
// If a .env file exists in the current directory or one of its parents, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		LLMBaseURL:   getEnv("LLM_BASE_URL", defaultLLMBaseURL),
		LLMAPIKey:    getEnv("LLM_API_KEY", defaultLLMAPIKey),
		LLMModelName: getEnv("LLM_MODEL", defaultLLMModelName),
		LogFormat:    strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
	}

	var err error
	if cfg.LLMTemperature, err = getFloat("LLM_TEMPERATURE", defaultLLMTemperature); err != nil {
		return nil, err
	}
	if cfg.LLMTemperature < 0 || cfg.LLMTemperature > 2 {
		return nil, fmt.Errorf("LLM_TEMPERATURE must be between 0.0 and 2.0, got %v", cfg.LLMTemperature)
	}

	if cfg.LLMMaxTokens, err = getInt("LLM_MAX_TOKENS", defaultLLMMaxTokens); err != nil {
		return nil, err
	}
	if cfg.LLMMaxTokens <= 0 {
		return nil, fmt.Errorf("LLM_MAX_TOKENS must be greater than 0")
	}

	if cfg.LLMTimeout, err = getDuration("LLM_TIMEOUT", defaultLLMTimeout); err != nil {
		return nil, err
	}

	if cfg.APIPort, err = getInt("PORT", defaultAPIPort); err != nil {
		return nil, err
	}
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.APIPort)
	}

	if cfg.LogLevel, err = ParseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", cfg.LogFormat)
	}

	if cfg.RateLimit, err = getFloat("RATE_LIMIT", defaultRateLimit); err != nil {
		return nil, err
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT must be greater than 0")
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", defaultRateLimitBurst); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be greater than 0")
	}

	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseLogLevel parses a slog level name such as "debug" or "WARN".
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// loadDotEnv loads the first .env found in the working directory or up to
// five parents. Missing files are ignored.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a finite number, got %q", key, raw)
	}
	return v, nil
}

// getDuration accepts Go duration strings ("45s") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	var d time.Duration
	if secs, err := strconv.Atoi(raw); err == nil {
		d = time.Duration(secs) * time.Second
	} else {
		d, err = time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("%s must be a duration like \"30s\": %w", key, err)
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return d, nil
}

// Overrides carries command-line values that take precedence over the environment.
// Zero values leave the loaded setting untouched.
type Overrides struct {
	Port      int
	LogLevel  string
	LogFormat string
}

// Apply validates o and copies its non-zero fields into c.
func (c *Config) Apply(o Overrides) error {
	if o.Port != 0 {
		if o.Port < 0 || o.Port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535, got %d", o.Port)
		}
		c.APIPort = o.Port
	}
	if o.LogLevel != "" {
		level, err := ParseLogLevel(o.LogLevel)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		c.LogLevel = level
	}
	if o.LogFormat != "" {
		format := strings.ToLower(o.LogFormat)
		if format != "text" && format != "json" {
			return fmt.Errorf("log format must be \"text\" or \"json\", got %q", o.LogFormat)
		}
		c.LogFormat = format
	}
	return nil
}

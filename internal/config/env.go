package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Completion backend
	AnthropicAPIKey   string
	GeminiAPIKey      string
	CompletionBackend string
	ClaudeModel       string
	GeminiModel       string
	Temperature       float64

	// Google provider
	GoogleCredentialsFile string

	// Optional with defaults
	DBPath          string
	HTTPPort        int
	CallTimeout     time.Duration
	ConfirmRemovals bool
	ClientCacheSize int
	DefaultTimezone string
	Debug           bool
}

func LoadFromEnv() *Config {
	cfg := &Config{
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		CompletionBackend: getEnvOrDefault("PLANIT_COMPLETION_BACKEND", "claude"),
		ClaudeModel:       getEnvOrDefault("PLANIT_CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		GeminiModel:       getEnvOrDefault("PLANIT_GEMINI_MODEL", "gemini-2.5-flash"),
		Temperature:       getEnvAsFloatOrDefault("PLANIT_TEMPERATURE", 0.1),

		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),

		DBPath:          getEnvOrDefault("PLANIT_DB_PATH", "./planit.db"),
		HTTPPort:        getEnvAsIntOrDefault("PLANIT_HTTP_PORT", 8080),
		CallTimeout:     getEnvAsDurationOrDefault("PLANIT_CALL_TIMEOUT", 30*time.Second),
		ConfirmRemovals: getEnvAsBoolOrDefault("PLANIT_CONFIRM_REMOVALS", true),
		ClientCacheSize: getEnvAsIntOrDefault("PLANIT_CLIENT_CACHE_SIZE", 128),
		DefaultTimezone: os.Getenv("PLANIT_DEFAULT_TIMEZONE"),
		Debug:           getEnvAsBoolOrDefault("PLANIT_DEBUG", false),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault accepts Go durations ("45s") or a bare number of seconds
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

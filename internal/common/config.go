package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Engine   EngineConfig
	Parser   ParserConfig
	Database DatabaseConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string
}

// EngineConfig holds the upstream OCR/completion engine configuration
type EngineConfig struct {
	BaseURL   string
	APIKey    string
	OCRModel  string
	ChatModel string
	Timeout   time.Duration
}

// ParserConfig holds the structuring stage behavior knobs
type ParserConfig struct {
	Temperature float32
	MaxTokens   int
	MaxRetries  int
	BackoffUnit time.Duration
}

// DatabaseConfig holds database-related configuration. DSN may be empty, in
// which case the service runs parse-only without persistence.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Engine: EngineConfig{
			BaseURL:   getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai"),
			APIKey:    getEnv("MISTRAL_API_KEY", ""),
			OCRModel:  getEnv("MISTRAL_OCR_MODEL", "mistral-ocr-latest"),
			ChatModel: getEnv("MISTRAL_PARSER_MODEL", "mistral-small-latest"),
			Timeout:   getEnvAsDuration("MISTRAL_TIMEOUT", 45*time.Second),
		},
		Parser: ParserConfig{
			Temperature: getEnvAsFloat32("PARSER_TEMPERATURE", 0.0),
			MaxTokens:   getEnvAsInt("PARSER_MAX_TOKENS", 500),
			MaxRetries:  getEnvAsInt("PARSER_MAX_RETRIES", 3),
			BackoffUnit: getEnvAsDuration("PARSER_BACKOFF_UNIT", time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Engine.APIKey == "" {
		return &PipelineError{Code: "CONFIG_ERROR", Message: "MISTRAL_API_KEY is required"}
	}
	if c.Server.Addr == "" {
		return &PipelineError{Code: "CONFIG_ERROR", Message: "HTTP_ADDR is required"}
	}
	if c.Parser.MaxRetries <= 0 {
		return &PipelineError{Code: "CONFIG_ERROR", Message: "PARSER_MAX_RETRIES must be positive"}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

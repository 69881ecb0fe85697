package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerHost string
	ServerPort string
	LogLevel   string

	RedisHost string
	RedisPort string
	RedisDB   int
	CacheTTL  time.Duration

	YahooBaseURL   string
	JustETFBaseURL string
}

func Load() (*Config, error) {
	host := getEnvOrDefault("SERVER_HOST", "0.0.0.0")
	port := getEnvOrDefault("SERVER_PORT", "8000")
	logLevel := getEnvOrDefault("LOG_LEVEL", "info")

	redisHost := getEnvOrDefault("REDIS_HOST", "localhost")
	redisPort := getEnvOrDefault("REDIS_PORT", "6379")

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	// Metadata changes rarely, so the cache default is a full month.
	cacheTTL, err := time.ParseDuration(getEnvOrDefault("CACHE_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	return &Config{
		ServerHost:     host,
		ServerPort:     port,
		LogLevel:       logLevel,
		RedisHost:      redisHost,
		RedisPort:      redisPort,
		RedisDB:        redisDB,
		CacheTTL:       cacheTTL,
		YahooBaseURL:   getEnvOrDefault("YAHOO_BASE_URL", ""),
		JustETFBaseURL: getEnvOrDefault("JUSTETF_BASE_URL", ""),
	}, nil
}

// RedisAddr returns the host:port address of the cache backend.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

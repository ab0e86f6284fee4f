// Package config provides configuration management for the portfolio dashboard application.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Holdings  HoldingsConfig
	Cache     CacheConfig
	Fetch     FetchConfig
	Providers ProvidersConfig
	Redis     RedisConfig
	Refresh   RefreshConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// HoldingsConfig holds static holdings configuration
type HoldingsConfig struct {
	// FilePath points to a JSON holdings file. When empty, the built-in
	// default portfolio is used.
	FilePath string
}

// CacheConfig holds TTL configuration for the two logical caches.
// Prices change in real time and get a short window; fundamentals move
// on earnings timescales and get a long one.
type CacheConfig struct {
	PriceTTL        time.Duration
	FundamentalsTTL time.Duration
}

// FetchConfig holds per-provider batch fetcher tuning
type FetchConfig struct {
	PriceBatchSize          int
	PriceInterBatchDelay    time.Duration
	PriceItemTimeout        time.Duration
	FundamentalsBatchSize   int
	FundamentalsBatchDelay  time.Duration
	FundamentalsItemTimeout time.Duration
}

// ProvidersConfig holds upstream provider endpoints
type ProvidersConfig struct {
	YahooBaseURL  string
	GoogleBaseURL string
}

// RedisConfig holds Redis configuration for the report cache.
// Redis is optional: when Host is empty the service runs without it.
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// RefreshConfig holds background refresh worker configuration
type RefreshConfig struct {
	Enabled  bool
	Interval time.Duration
}

// RateLimitConfig holds inbound API rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		// .env file is optional - environment variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Holdings: HoldingsConfig{
			FilePath: getEnv("HOLDINGS_FILE", ""),
		},
		Cache: CacheConfig{
			PriceTTL:        getEnvAsDuration("PRICE_CACHE_TTL", 15*time.Second),
			FundamentalsTTL: getEnvAsDuration("FUNDAMENTALS_CACHE_TTL", 300*time.Second),
		},
		Fetch: FetchConfig{
			PriceBatchSize:          getEnvAsInt("PRICE_BATCH_SIZE", 5),
			PriceInterBatchDelay:    getEnvAsDuration("PRICE_BATCH_DELAY", 1*time.Second),
			PriceItemTimeout:        getEnvAsDuration("PRICE_ITEM_TIMEOUT", 10*time.Second),
			FundamentalsBatchSize:   getEnvAsInt("FUNDAMENTALS_BATCH_SIZE", 3),
			FundamentalsBatchDelay:  getEnvAsDuration("FUNDAMENTALS_BATCH_DELAY", 2*time.Second),
			FundamentalsItemTimeout: getEnvAsDuration("FUNDAMENTALS_ITEM_TIMEOUT", 15*time.Second),
		},
		Providers: ProvidersConfig{
			YahooBaseURL:  getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			GoogleBaseURL: getEnv("GOOGLE_BASE_URL", "https://www.google.com/finance"),
		},
		Redis: RedisConfig{
			Host:           getEnv("REDIS_HOST", ""),
			Port:           getEnv("REDIS_PORT", "6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvAsInt("REDIS_DB", 0),
			MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
		},
		Refresh: RefreshConfig{
			Enabled:  getEnvAsBool("REFRESH_ENABLED", true),
			Interval: getEnvAsDuration("REFRESH_INTERVAL", 15*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

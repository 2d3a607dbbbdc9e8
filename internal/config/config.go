package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the dashboard service.
type Config struct {
	BackendBaseURL string
	Port           int
	BearerToken    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RequestTimeout  time.Duration
	DefaultHours    int
	DefaultInterval int
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:            8080,
		CacheTTL:        30 * time.Second,
		RequestTimeout:  15 * time.Second,
		DefaultHours:    24,
		DefaultInterval: 5,
	}

	cfg.BackendBaseURL = os.Getenv("BACKEND_BASE_URL")
	if cfg.BackendBaseURL == "" {
		return cfg, errors.New("BACKEND_BASE_URL is required")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil && db >= 0 {
			cfg.RedisDB = db
		} else {
			return cfg, fmt.Errorf("invalid REDIS_DB: %s", dbStr)
		}
	}
	if ttlStr := os.Getenv("CACHE_TTL_SECONDS"); ttlStr != "" {
		if ttl, err := strconv.Atoi(ttlStr); err == nil && ttl > 0 {
			cfg.CacheTTL = time.Duration(ttl) * time.Second
		} else {
			return cfg, fmt.Errorf("invalid CACHE_TTL_SECONDS: %s", ttlStr)
		}
	}

	if timeoutStr := os.Getenv("BACKEND_TIMEOUT_SECONDS"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			cfg.RequestTimeout = time.Duration(timeout) * time.Second
		} else {
			return cfg, fmt.Errorf("invalid BACKEND_TIMEOUT_SECONDS: %s", timeoutStr)
		}
	}

	if hoursStr := os.Getenv("DEFAULT_TIME_RANGE_HOURS"); hoursStr != "" {
		if hours, err := strconv.Atoi(hoursStr); err == nil && hours > 0 {
			cfg.DefaultHours = hours
		} else {
			return cfg, fmt.Errorf("invalid DEFAULT_TIME_RANGE_HOURS: %s", hoursStr)
		}
	}

	if intervalStr := os.Getenv("DEFAULT_REFRESH_INTERVAL_SECONDS"); intervalStr != "" {
		if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
			cfg.DefaultInterval = interval
		} else {
			return cfg, fmt.Errorf("invalid DEFAULT_REFRESH_INTERVAL_SECONDS: %s", intervalStr)
		}
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

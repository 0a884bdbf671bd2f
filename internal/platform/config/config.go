package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries all deployment-provided settings.
type Config struct {
	Port string

	// Env selects the logger encoder ("development" or "production").
	Env string

	// AuthMode selects bearer JWT verification ("jwt") or the local dev shim
	// ("dev") that reads X-Debug-User.
	AuthMode  string
	JWTSecret string
	DevUserID int64

	StorageBackend string // "memory" or "postgres"
	DatabaseURL    string

	CacheBackend  string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MaxAttendingLimit is the global attending capacity per event.
	MaxAttendingLimit int

	// CacheTTL bounds how long response aggregates stay cached.
	CacheTTL time.Duration
}

func Load() (Config, error) {
	devUserID, err := atoi64("DEV_USER_ID", "1")
	if err != nil {
		return Config{}, err
	}
	redisDB, err := atoi64("REDIS_DB", "0")
	if err != nil {
		return Config{}, err
	}
	maxAttending, err := atoi64("RSVP_MAX_ATTENDING_LIMIT", "200")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDur("RSVP_CACHE_TTL", "15m")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:              getenv("PORT", "8080"),
		Env:               getenv("APP_ENV", "production"),
		AuthMode:          getenv("AUTH_MODE", "jwt"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		DevUserID:         devUserID,
		StorageBackend:    getenv("STORAGE_BACKEND", "memory"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		CacheBackend:      getenv("CACHE_BACKEND", "memory"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           int(redisDB),
		MaxAttendingLimit: int(maxAttending),
		CacheTTL:          cacheTTL,
	}

	if cfg.AuthMode == "jwt" && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
	}
	if cfg.StorageBackend == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
	}
	if cfg.MaxAttendingLimit < 1 {
		return Config{}, fmt.Errorf("RSVP_MAX_ATTENDING_LIMIT must be >= 1")
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi64(k, def string) (int64, error) {
	s := getenv(k, def)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", k, s)
	}
	return n, nil
}

func parseDur(k, def string) (time.Duration, error) {
	s := getenv(k, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", k, s)
	}
	return d, nil
}

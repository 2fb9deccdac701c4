package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "SoulScribe"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 720 * time.Hour
	defaultLockMaxAttempts = 5
	defaultLockoutPeriod   = 15 * time.Minute
	defaultUnlockTTL       = 30 * time.Minute
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName     string
	AppEnv      string
	Port        string
	LogLevel    string
	DatabaseURL string
	RedisURL    string

	JWTSecret     string
	RefreshSecret string
	// LockSecret keys the deterministic digests used by the secret lock
	// (PIN, security answer, unlock token).
	LockSecret string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration

	LockMaxAttempts int
	LockoutPeriod   time.Duration
	UnlockTTL       time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		RefreshSecret:   os.Getenv("REFRESH_SECRET"),
		LockSecret:      os.Getenv("LOCK_SECRET"),
		AccessTokenTTL:  defaultAccessTokenTTL,
		RefreshTokenTTL: defaultRefreshTokenTTL,
		ShutdownPeriod:  defaultShutdownDelay,
		IdempotencyTTL:  defaultIdempotencyTTL,
		LockMaxAttempts: defaultLockMaxAttempts,
		LockoutPeriod:   defaultLockoutPeriod,
		UnlockTTL:       defaultUnlockTTL,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL, err = durationEnv("ACCESS_TOKEN_TTL", cfg.AccessTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenTTL, err = durationEnv("REFRESH_TOKEN_TTL", cfg.RefreshTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.LockoutPeriod, err = durationEnv("LOCK_LOCKOUT_PERIOD", cfg.LockoutPeriod); err != nil {
		return Config{}, err
	}
	if cfg.UnlockTTL, err = durationEnv("LOCK_UNLOCK_TTL", cfg.UnlockTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("LOCK_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid LOCK_MAX_ATTEMPTS: %q", v)
		}
		cfg.LockMaxAttempts = n
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.JWTSecret
	}
	if cfg.LockSecret == "" {
		return Config{}, fmt.Errorf("LOCK_SECRET must be set")
	}

	// Outside development both backing stores are mandatory; in development
	// the routes layer falls back to in-memory repositories.
	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// IsDev reports whether the app is running in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationEnv reads KEY_SECONDS as an integer second count, or KEY as a Go
// duration string, preferring the former.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(key + "_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s_SECONDS: %w", key, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}

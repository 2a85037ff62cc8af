package config

import (
	"os"
	"strconv"
	"time"

	"asobibox/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	LogLevel      string
	LogJSON       bool
	AllowedOrigin string
	JWTSecret     string

	// Optional infrastructure
	DatabaseURL string
	RedisAddr   string
	RedisDB     int

	// Room lifecycle
	GracePeriod time.Duration

	// Rate limits for the admin API and websocket upgrades
	AdminRateLimit  int
	AdminRateWindow time.Duration
	WSRateLimit     int
	WSRateWindow    time.Duration
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	gracePeriod := 30 * time.Second
	if v := os.Getenv("GRACE_PERIOD_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			gracePeriod = time.Duration(n) * time.Second
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			redisDB = n
		}
	}

	return &Config{
		AppPort:         port,
		LogLevel:        envOr("LOG_LEVEL", "info"),
		LogJSON:         os.Getenv("LOG_JSON") == "true",
		AllowedOrigin:   os.Getenv("ALLOWED_ORIGIN"),
		JWTSecret:       jwtSecret,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisDB:         redisDB,
		GracePeriod:     gracePeriod,
		AdminRateLimit:  envIntOr("ADMIN_RATE_LIMIT", 60),
		AdminRateWindow: time.Duration(envIntOr("ADMIN_RATE_WINDOW_SECONDS", 60)) * time.Second,
		WSRateLimit:     envIntOr("WS_RATE_LIMIT", 30),
		WSRateWindow:    time.Duration(envIntOr("WS_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

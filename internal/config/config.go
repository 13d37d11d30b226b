package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable through STORE_BACKEND.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	ConfirmationTTL time.Duration
	SweepInterval   time.Duration
	StoreBackend    string
	Redis           Redis

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string

	FrontendURL    string
	AllowedOrigins []string // CORS allowed origins
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxy honours X-Forwarded-For / X-Real-Ip. Only enable behind a
	// proxy that overwrites them.
	TrustProxy bool
}

// Redis holds connection settings for the shared confirmation store.
type Redis struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		ConfirmationTTL: getEnvDuration("CONFIRMATION_TTL", 24*time.Hour),
		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", time.Hour),
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		Redis: Redis{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "confirm"),
		},

		SMTPHost: getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort: getEnvInt("SMTP_PORT", 587),
		// GMAIL_* are the names older deployments used.
		SMTPUsername: getEnv("SMTP_USERNAME", getEnv("GMAIL_USER", "")),
		SMTPPassword: getEnv("SMTP_PASSWORD", getEnv("GMAIL_APP_PASSWORD", "")),
		FromName:     getEnv("FROM_NAME", "G-Weather"),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@example.com"),

		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

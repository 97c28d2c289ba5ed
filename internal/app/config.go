package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr  string
	SentryDSN string
	LogLevel  string

	// Honeypot endpoint access
	APIKey string

	// JWT authentication for operator endpoints
	JWTSecret string
	JWTExpiry time.Duration

	// Final report delivery
	CallbackURL     string
	CallbackTimeout time.Duration

	// Engagement policy
	MaxMessagesPerSession int
	MinMessagesForReport  int
	MaxMessageBytes       int

	// Session lifecycle
	SessionTTL    time.Duration
	SweepInterval time.Duration
	MaxSessions   int
}

func LoadConfigFromEnv() Config {
	return Config{
		HTTPAddr:  getenv("HTTP_ADDR", ":8080"),
		SentryDSN: getenv("SENTRY_DSN", ""),
		LogLevel:  getenv("LOG_LEVEL", "info"),

		APIKey: getenv("API_KEY", ""),

		JWTSecret: os.Getenv("JWT_SECRET"), // Required - no fallback for security
		JWTExpiry: getenvDuration("JWT_EXPIRY", 24*time.Hour),

		CallbackURL:     getenv("CALLBACK_URL", ""),
		CallbackTimeout: getenvDuration("CALLBACK_TIMEOUT", 10*time.Second),

		MaxMessagesPerSession: getenvIntClamped("MAX_MESSAGES_PER_SESSION", 20, 1, 1000),
		MinMessagesForReport:  getenvIntClamped("MIN_MESSAGES_FOR_REPORT", 3, 1, 1000),
		MaxMessageBytes:       getenvIntClamped("MAX_MESSAGE_BYTES", 8192, 1, 1<<20),

		SessionTTL:    getenvDuration("SESSION_TTL", time.Hour),
		SweepInterval: getenvDuration("SWEEP_INTERVAL", 5*time.Minute),
		MaxSessions:   getenvIntClamped("MAX_SESSIONS", 10000, 1, 1_000_000),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	raw := os.Getenv(k)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getenvIntClamped(k string, def, min, max int) int {
	raw := os.Getenv(k)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

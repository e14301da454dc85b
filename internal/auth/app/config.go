package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	DatabaseFile string // Path to SQLite database file (default: ./itpnotify.db)

	JWTSecret string // Required: HMAC secret for session tokens
	Issuer    string // Issuer claim for session tokens (default: itpnotify)

	// ClientURL is the public base URL of the frontend; verification
	// links and OAuth redirects point there.
	ClientURL string

	GithubClientID     string // Optional: GitHub OAuth app id; empty disables the flow
	GithubClientSecret string
	GithubRedirectURL  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	SMSAPIToken string // smsadvert.ro API token

	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "itpnotify.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		Issuer:    getEnvOrDefault("JWT_ISSUER", "itpnotify"),

		ClientURL: getEnvOrDefault("CLIENT_URL", "http://localhost:3000"),

		GithubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GithubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GithubRedirectURL:  os.Getenv("GITHUB_REDIRECT_URL"),

		SMTPHost:     os.Getenv("EMAIL_HOST"),
		SMTPPort:     getEnvIntOrDefault("EMAIL_PORT", 587),
		SMTPUsername: os.Getenv("EMAIL_USER"),
		SMTPPassword: os.Getenv("EMAIL_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("EMAIL_FROM", "noreply@itpnotify.ro"),

		SMSAPIToken: os.Getenv("SMS_API_TOKEN"),

		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c Config) SecureCookies() bool {
	return c.Env == "prod"
}

// GithubEnabled reports whether the GitHub OAuth flow is configured.
func (c Config) GithubEnabled() bool {
	return c.GithubClientID != "" && c.GithubClientSecret != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}

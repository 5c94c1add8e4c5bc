package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort    int
	DatabasePath  string
	JWTSecret     string
	JWTIssuer     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	ResetURLBase  string
	LogLevel      string
	LogPretty     bool
	AuthRateLimit int // requests per minute per IP on credential endpoints

	// Optional admin account created on startup when both are set.
	AdminEmail    string
	AdminPassword string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first when present; real
// environment variables always win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	resetTTL, err := time.ParseDuration(getEnv("RESET_TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESET_TOKEN_TTL: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("AUTH_RATE_LIMIT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT: %w", err)
	}

	pretty, err := strconv.ParseBool(getEnv("LOG_PRETTY", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_PRETTY: %w", err)
	}

	cfg := &Config{
		ServerPort:    port,
		DatabasePath:  getEnv("DATABASE_PATH", "./leadgate.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTIssuer:     getEnv("JWT_ISSUER", "leadgate"),
		TokenTTL:      tokenTTL,
		ResetTokenTTL: resetTTL,
		ResetURLBase:  getEnv("RESET_URL_BASE", "http://localhost:3000/reset-password"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPretty:     pretty,
		AuthRateLimit: rateLimit,
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.TokenTTL <= 0 || c.ResetTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.AuthRateLimit <= 0 {
		return errors.New("AUTH_RATE_LIMIT must be positive")
	}
	return nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Package config loads the service configuration from environment
// variables. A .env file in the working directory is picked up
// automatically for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds everything the server needs to start.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string

	// DatabasePath is the SQLite database file, used when DatabaseURL
	// is empty.
	DatabasePath string

	// DatabaseURL selects the PostgreSQL backend when set.
	DatabaseURL string

	// JWTSecret signs session tokens. Must be at least 32 characters.
	JWTSecret string

	// TokenTTL is how long issued tokens stay valid.
	TokenTTL time.Duration

	// BcryptCost is the work factor for password hashing.
	BcryptCost int

	// PasswordMinLength is the minimum accepted password length.
	PasswordMinLength int

	// LoginRate and LoginBurst bound login attempts per account per
	// minute.
	LoginRate  float64
	LoginBurst int
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              envOrDefault("PORT", "8080"),
		DatabasePath:      envOrDefault("DATABASE_PATH", "perkdeck.db"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		TokenTTL:          24 * time.Hour,
		BcryptCost:        12,
		PasswordMinLength: 8,
		LoginRate:         5,
		LoginBurst:        5,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", ttl)
		}
		cfg.TokenTTL = ttl
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		if cost < 4 || cost > 14 {
			return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cost)
		}
		cfg.BcryptCost = cost
	}

	if v := os.Getenv("PASSWORD_MIN_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PASSWORD_MIN_LENGTH: %w", err)
		}
		if n < 1 {
			return nil, fmt.Errorf("PASSWORD_MIN_LENGTH must be at least 1, got %d", n)
		}
		cfg.PasswordMinLength = n
	}

	if v := os.Getenv("LOGIN_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid LOGIN_RATE: %w", err)
		}
		if rate <= 0 {
			return nil, fmt.Errorf("LOGIN_RATE must be positive, got %v", rate)
		}
		cfg.LoginRate = rate
	}

	if v := os.Getenv("LOGIN_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOGIN_BURST: %w", err)
		}
		if burst < 1 {
			return nil, fmt.Errorf("LOGIN_BURST must be at least 1, got %d", burst)
		}
		cfg.LoginBurst = burst
	}

	return cfg, nil
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the server
type Config struct {
	Port             string
	DatabasePath     string
	JWTSecret        string
	AllowedOrigins   []string
	LogLevel         string
	LogFile          string
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

const defaultJWTSecret = "your-default-secret-key-change-in-production"

// LoadEnv loads environment variables from a .env file.
// A missing file is not an error; variables already set win.
func LoadEnv(filename string) error {
	err := godotenv.Load(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "3001"),
		DatabasePath:     getEnv("DATABASE_PATH", "./workroom.db"),
		JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          os.Getenv("LOG_FILE"),
		LoginMaxAttempts: 5,
		LoginWindow:      15 * time.Minute,
	}

	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if v := os.Getenv("LOGIN_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid LOGIN_MAX_ATTEMPTS %q", v)
		}
		cfg.LoginMaxAttempts = n
	}

	if v := os.Getenv("LOGIN_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid LOGIN_WINDOW %q", v)
		}
		cfg.LoginWindow = d
	}

	return cfg, nil
}

// UsingDefaultSecret reports whether JWT_SECRET was left unset
func (c *Config) UsingDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

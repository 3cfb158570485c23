// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "dev-secret-change-in-production"

type Config struct {
	Port      string
	Env       string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration

	// Location localizes datetimes submitted without a UTC offset.
	Location *time.Location

	LoginRate  float64
	LoginBurst int

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	LogLevel slog.Level
}

// GitHubEnabled reports whether GitHub sign-in is configured.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func Load() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		DBPath:             getEnv("DB_PATH", "data/esther.db"),
		JWTSecret:          getEnv("JWT_SECRET", devJWTSecret),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  getEnv("GITHUB_CALLBACK_URL", "http://localhost:8080/auth/github/callback"),
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return Config{}, fmt.Errorf("config: TOKEN_TTL: %w", err)
	}
	if cfg.Location, err = time.LoadLocation(getEnv("TIME_ZONE", "UTC")); err != nil {
		return Config{}, fmt.Errorf("config: TIME_ZONE: %w", err)
	}
	if cfg.LoginRate, err = strconv.ParseFloat(getEnv("LOGIN_RATE_PER_SEC", "1"), 64); err != nil || cfg.LoginRate <= 0 {
		return Config{}, fmt.Errorf("config: LOGIN_RATE_PER_SEC must be a positive number")
	}
	if cfg.LoginBurst, err = strconv.Atoi(getEnv("LOGIN_BURST", "5")); err != nil || cfg.LoginBurst < 1 {
		return Config{}, fmt.Errorf("config: LOGIN_BURST must be a positive integer")
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(getEnv("LOG_LEVEL", "info")))); err != nil {
		return Config{}, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	if cfg.IsProduction() && cfg.JWTSecret == devJWTSecret {
		return Config{}, errors.New("config: JWT_SECRET must be set in production environment")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

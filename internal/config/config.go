// Package config loads the tip service configuration from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/mmynk/tipcalc/internal/calculator"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	LogLevel           slog.Level
	LogFormat          string
	SessionSecret      string
	SessionTTL         time.Duration
	SessionTokenTTL    time.Duration
	SweepInterval      time.Duration
	SliderSteps        int
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Config, error) {
	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		LogLevel:           ParseLevel(k.String("LOG_LEVEL")),
		LogFormat:          strings.ToLower(valueOrDefault(k.String("LOG_FORMAT"), "text")),
		SessionSecret:      strings.TrimSpace(k.String("SESSION_SECRET")),
		SessionTTL:         parseDuration(k.String("SESSION_TTL"), "30m"),
		SessionTokenTTL:    parseDuration(k.String("SESSION_TOKEN_TTL"), "24h"),
		SweepInterval:      parseDuration(k.String("SWEEP_INTERVAL"), "1m"),
		SliderSteps:        parseInt(k.String("SLIDER_STEPS"), calculator.SliderSteps),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	// Tokens must outlive the idle TTL or an active screen is cut off by
	// its token before the registry would expire it.
	if cfg.SessionTTL > 0 && cfg.SessionTokenTTL < cfg.SessionTTL {
		return nil, fmt.Errorf("SESSION_TOKEN_TTL (%s) must not be shorter than SESSION_TTL (%s)", cfg.SessionTokenTTL, cfg.SessionTTL)
	}
	if cfg.SliderSteps < 0 {
		return nil, errors.New("SLIDER_STEPS must not be negative")
	}
	if cfg.SessionSecret == "" {
		if cfg.AppEnv == "production" {
			return nil, errors.New("SESSION_SECRET is required in production")
		}
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything
// else is info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

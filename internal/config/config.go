package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port               string
	DatabaseURL        string
	JWTSecret          string
	JWTIssuer          string
	JWTTTL             time.Duration
	RefreshTTL         time.Duration
	CORSOrigins        []string
	CookieSecure       bool
	GateTimeout        time.Duration
	TrialPeriod        time.Duration
	InviteTTL          time.Duration
	TrialGatedSections []string
	PermissionsFile    string
	LogLevel           string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:               fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:          strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:          fallback(os.Getenv("JWT_ISSUER"), "clubcore"),
		CORSOrigins:        parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*"), "*"),
		CookieSecure:       parseBool(os.Getenv("COOKIE_SECURE")),
		TrialGatedSections: parseCSV(fallback(os.Getenv("TRIAL_GATED_SECTIONS"), "reminders")),
		PermissionsFile:    strings.TrimSpace(os.Getenv("PERMISSIONS_FILE")),
		LogLevel:           fallback(os.Getenv("LOG_LEVEL"), "info"),
	}

	cfg.JWTTTL = time.Duration(positiveInt(os.Getenv("JWT_TTL_MINUTES"), 60)) * time.Minute
	cfg.RefreshTTL = time.Duration(positiveInt(os.Getenv("REFRESH_TTL_HOURS"), 720)) * time.Hour
	cfg.GateTimeout = time.Duration(positiveInt(os.Getenv("GATE_TIMEOUT_MS"), 5000)) * time.Millisecond
	cfg.TrialPeriod = time.Duration(positiveInt(os.Getenv("TRIAL_DAYS"), 14)) * 24 * time.Hour
	cfg.InviteTTL = time.Duration(positiveInt(os.Getenv("INVITE_TTL_HOURS"), 168)) * time.Hour

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return def
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}

// parseCSV splits a comma separated list, falling back to defaults when it is empty.
func parseCSV(input string, defaults ...string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaults
	}
	return out
}

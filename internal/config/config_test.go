package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clubcore")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("GATE_TIMEOUT_MS", "")
	t.Setenv("TRIAL_GATED_SECTIONS", "")
	t.Setenv("TRIAL_DAYS", "")
	t.Setenv("INVITE_TTL_HOURS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, "clubcore", cfg.JWTIssuer)
	assert.Equal(t, 60*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 5*time.Second, cfg.GateTimeout)
	assert.Equal(t, 14*24*time.Hour, cfg.TrialPeriod)
	assert.Equal(t, 7*24*time.Hour, cfg.InviteTTL)
	assert.Equal(t, []string{"reminders"}, cfg.TrialGatedSections)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clubcore")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GATE_TIMEOUT_MS", "250")
	t.Setenv("TRIAL_GATED_SECTIONS", "reminders, finance ,")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("JWT_TTL_MINUTES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.GateTimeout)
	assert.Equal(t, []string{"reminders", "finance"}, cfg.TrialGatedSections)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 60*time.Minute, cfg.JWTTTL)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is required")

	t.Setenv("DATABASE_URL", "postgres://localhost/clubcore")
	t.Setenv("JWT_SECRET", " ")
	_, err = Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestParseCSVEmptyMeansNoSections(t *testing.T) {
	assert.Nil(t, parseCSV(" , "))
	assert.Equal(t, []string{"*"}, parseCSV("", "*"))
}

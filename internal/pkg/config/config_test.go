package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kollektive-hackathon/morra-backend/internal/pkg/commitment"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/morra"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/morra")

	cfg, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, 50, cfg.DbMaxOpenConns)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, AuthModeFirebase, cfg.AuthMode)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, morra.TieBreakHigherCard, cfg.Policy.TieBreak)
	assert.Equal(t, 24*time.Hour, cfg.Policy.InactivityWindow)
	assert.True(t, cfg.Policy.AutoSettle)
	assert.Equal(t, commitment.SchemeSHA256, cfg.Policy.Scheme)
	assert.Equal(t, morra.DefaultMaxBet, cfg.Policy.MaxBet)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/morra")
	t.Setenv("MIN_BET", "100")
	t.Setenv("MAX_BET", "1000")
	t.Setenv("TIE_BREAK", "draw")
	t.Setenv("AUTO_SETTLE", "false")
	t.Setenv("INACTIVITY_WINDOW", "15m")
	t.Setenv("COMMITMENT_SCHEME", "keccak256")
	t.Setenv("AUTH_MODE", "header")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, morra.Policy{
		MinBet:           100,
		MaxBet:           1000,
		TieBreak:         morra.TieBreakDraw,
		InactivityWindow: 15 * time.Minute,
		AutoSettle:       false,
		Scheme:           commitment.SchemeKeccak256,
	}, cfg.Policy)
	assert.Equal(t, AuthModeHeader, cfg.AuthMode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_URL=postgres://file/morra\nPORT=:9090\n"), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/morra", cfg.DbUrl)
	assert.Equal(t, ":9090", cfg.Port)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing db": {},
		"tie break":  {"TIE_BREAK": "coin"},
		"scheme":     {"COMMITMENT_SCHEME": "md5"},
		"window":     {"INACTIVITY_WINDOW": "soon"},
		"auth mode":  {"AUTH_MODE": "none"},
		"bet bounds": {"MIN_BET": "10", "MAX_BET": "5"},
		"log level":  {"LOG_LEVEL": "loud"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if name != "missing db" {
				t.Setenv("DB_URL", "postgres://localhost/morra")
			}
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(viper.New(), "")
			assert.Error(t, err)
		})
	}
}

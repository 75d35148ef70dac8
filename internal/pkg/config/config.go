package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/kollektive-hackathon/morra-backend/internal/pkg/commitment"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/morra"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	AuthModeFirebase = "firebase"
	AuthModeHeader   = "header"
)

type Config struct {
	Port                 string
	DbUrl                string
	DbMaxOpenConns       int
	DbConnectAttempts    int
	DbAutoMigrate        bool
	LogLevel             zerolog.Level
	AllowedOrigins       []string
	AuthMode             string
	AdminSecret          string
	GoogleProjectId      string
	EventsTopic          string
	DepositsSubscription string
	Policy               morra.Policy
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", ":8080")
	v.SetDefault("DB_MAX_OPEN_CONNS", 50)
	v.SetDefault("DB_CONNECT_ATTEMPTS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("AUTH_MODE", AuthModeFirebase)
	v.SetDefault("EVENTS_TOPIC", "morra.game.events")
	v.SetDefault("DEPOSITS_SUBSCRIPTION", "morra.wallet.deposits-sub")
	v.SetDefault("MIN_BET", morra.DefaultMinBet)
	v.SetDefault("MAX_BET", morra.DefaultMaxBet)
	v.SetDefault("TIE_BREAK", string(morra.TieBreakHigherCard))
	v.SetDefault("AUTO_SETTLE", true)
	v.SetDefault("INACTIVITY_WINDOW", "24h")
	v.SetDefault("COMMITMENT_SCHEME", string(commitment.SchemeSHA256))
}

// Load reads the environment and, when present, the .env file at envFile.
func Load(v *viper.Viper, envFile string) (Config, error) {
	setDefaults(v)
	v.AutomaticEnv()
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
			return Config{}, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	logLevel, err := zerolog.ParseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	tieBreak, err := morra.ParseTieBreak(v.GetString("TIE_BREAK"))
	if err != nil {
		return Config{}, fmt.Errorf("TIE_BREAK: %w", err)
	}

	scheme, err := commitment.ParseScheme(v.GetString("COMMITMENT_SCHEME"))
	if err != nil {
		return Config{}, fmt.Errorf("COMMITMENT_SCHEME: %w", err)
	}

	window, err := time.ParseDuration(v.GetString("INACTIVITY_WINDOW"))
	if err != nil {
		return Config{}, fmt.Errorf("INACTIVITY_WINDOW: %w", err)
	}

	authMode := strings.ToLower(v.GetString("AUTH_MODE"))
	if authMode != AuthModeFirebase && authMode != AuthModeHeader {
		return Config{}, fmt.Errorf("AUTH_MODE: unknown mode %q", authMode)
	}

	cfg := Config{
		Port:                 v.GetString("PORT"),
		DbUrl:                v.GetString("DB_URL"),
		DbMaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
		DbConnectAttempts:    v.GetInt("DB_CONNECT_ATTEMPTS"),
		DbAutoMigrate:        v.GetBool("DB_AUTO_MIGRATE"),
		LogLevel:             logLevel,
		AllowedOrigins:       splitList(v.GetString("ALLOWED_ORIGINS")),
		AuthMode:             authMode,
		AdminSecret:          v.GetString("ADMIN_SECRET"),
		GoogleProjectId:      v.GetString("GOOGLE_PROJECT_ID"),
		EventsTopic:          v.GetString("EVENTS_TOPIC"),
		DepositsSubscription: v.GetString("DEPOSITS_SUBSCRIPTION"),
		Policy: morra.Policy{
			MinBet:           v.GetUint64("MIN_BET"),
			MaxBet:           v.GetUint64("MAX_BET"),
			TieBreak:         tieBreak,
			InactivityWindow: window,
			AutoSettle:       v.GetBool("AUTO_SETTLE"),
			Scheme:           scheme,
		},
	}

	if cfg.DbUrl == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if err := cfg.Policy.Validate(); err != nil {
		return Config{}, fmt.Errorf("game policy: %w", err)
	}
	return cfg, nil
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

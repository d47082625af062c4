package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/pasamhere/ec-elo-bot/internal/rating"
)

type Config struct {
	TelegramToken string
	AdminIDs      map[int64]bool
	DBPath        string
	HTTPPort      string
	LogLevel      string

	Rating rating.Config

	DecayInterval   time.Duration
	DecayInactivity time.Duration
	DecayAmount     int
	DecayBaseline   int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),
		AdminIDs:      parseAdminIDs(getEnv("ADMIN_IDS", "")),
		DBPath:        getEnv("DB_PATH", "elo.db"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		Rating: rating.Config{
			StartingRating:     getEnvInt("STARTING_RATING", 1200),
			KFactor:            getEnvInt("K_FACTOR", 32),
			ProvisionalKFactor: getEnvInt("PROVISIONAL_K_FACTOR", 64),
			ProvisionalMatches: getEnvInt("PROVISIONAL_MATCHES", 10),
			Tiers: []rating.Tier{
				{Name: "S-Tier", Threshold: getEnvInt("TIER_S_THRESHOLD", 1800)},
				{Name: "A-Tier", Threshold: getEnvInt("TIER_A_THRESHOLD", 1600)},
				{Name: "B-Tier", Threshold: getEnvInt("TIER_B_THRESHOLD", 1400)},
				{Name: "C-Tier", Threshold: 0},
			},
			UnrankedTier: "Unranked",
		},

		DecayInterval:   getEnvDuration("DECAY_INTERVAL", 24*time.Hour),
		DecayInactivity: getEnvDuration("DECAY_INACTIVITY", 30*24*time.Hour),
		DecayAmount:     getEnvInt("DECAY_AMOUNT", 25),
		DecayBaseline:   getEnvInt("DECAY_BASELINE", 1200),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("http_port", cfg.HTTPPort).
		Str("log_level", cfg.LogLevel).
		Int("admins", len(cfg.AdminIDs)).
		Dur("decay_interval", cfg.DecayInterval).
		Dur("decay_inactivity", cfg.DecayInactivity).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parseAdminIDs(s string) map[int64]bool {
	ids := map[int64]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids[id] = true
		}
	}
	return ids
}

var Module = fx.Provide(Load)

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration, loaded once at startup and
// injected into the components that need it. Nothing reads the environment
// after Load returns.
type Config struct {
	Port      string
	Challenge Challenge
}

// Challenge holds the weekly challenge engine configuration. The zero value
// is not usable; construct via Load (or literally in tests).
type Challenge struct {
	// Enabled is the feature flag for challenge processing. When off,
	// ProcessSession short-circuits with a feature_disabled outcome.
	Enabled bool

	// LaunchDate is the program launch date. Weeks before the first Monday
	// on/after it are training weeks. Nil means no training period exists.
	LaunchDate *time.Time

	// TokenSecret signs quiz session tokens (HS256).
	TokenSecret []byte
	// TokenTTL is the session token expiry window.
	TokenTTL time.Duration

	// DailyBaseXP is awarded for the first valid session of a local day.
	DailyBaseXP int
	// MinActiveSeconds / MinQuestions are the session validity thresholds.
	MinActiveSeconds int
	MinQuestions     int
	// ActiveTimeSlack multiplies the server-estimated duration when capping
	// client-reported active time (>1 to tolerate clock drift).
	ActiveTimeSlack float64
	// PerQuestionFloorSeconds is the heuristic lower bound per question
	// below which a session is logged as suspiciously fast.
	PerQuestionFloorSeconds int

	// Solo-continuity mission targets.
	SoloTargetXP   int
	SoloTargetDays int
	// Coop mission target: active days each member must reach.
	CoopTargetDaysEach int
}

// Load reads configuration from the environment. A malformed
// CHALLENGE_LAUNCH_DATE is a startup error, not a silent default.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Challenge: Challenge{
			Enabled:                 getEnvBool("CHALLENGE_ENABLED", true),
			TokenSecret:             []byte(getEnv("CHALLENGE_TOKEN_SECRET", "study-app-staging-session-key-2026")),
			TokenTTL:                time.Duration(getEnvInt("CHALLENGE_TOKEN_TTL_HOURS", 6)) * time.Hour,
			DailyBaseXP:             getEnvInt("CHALLENGE_DAILY_BASE_XP", 20),
			MinActiveSeconds:        getEnvInt("CHALLENGE_MIN_ACTIVE_SECONDS", 180),
			MinQuestions:            getEnvInt("CHALLENGE_MIN_QUESTIONS", 5),
			ActiveTimeSlack:         getEnvFloat("CHALLENGE_ACTIVE_TIME_SLACK", 1.1),
			PerQuestionFloorSeconds: getEnvInt("CHALLENGE_PER_QUESTION_FLOOR_SECONDS", 10),
			SoloTargetXP:            getEnvInt("CHALLENGE_SOLO_TARGET_XP", 75),
			SoloTargetDays:          getEnvInt("CHALLENGE_SOLO_TARGET_DAYS", 3),
			CoopTargetDaysEach:      getEnvInt("CHALLENGE_COOP_TARGET_DAYS_EACH", 3),
		},
	}

	if raw := os.Getenv("CHALLENGE_LAUNCH_DATE"); raw != "" {
		launch, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CHALLENGE_LAUNCH_DATE %q (want YYYY-MM-DD): %w", raw, err)
		}
		cfg.Challenge.LaunchDate = &launch
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

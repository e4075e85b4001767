// Package config loads configuration from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/luminacare/memory-lane/internal/types"
)

// Config holds runtime settings.
type Config struct {
	DatabaseURL    string
	GoogleAPIKey   string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	UserID         string
	SentimentModel string
	LearningRate   float64
	BatchSize      int
	Epochs         int
	NoiseScale     float64
	ClipNorm       float64
	DPEnabled      bool
}

// Load reads env vars and applies defaults. DatabaseURL and the API keys are
// optional: without a database the pipeline runs purely in memory, and without
// keys the keyword sentiment fallback is used.
func Load() Config {
	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		GoogleAPIKey:   os.Getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		UserID:         os.Getenv("USER_ID"),
		SentimentModel: os.Getenv("SENTIMENT_MODEL"),
	}

	cfg.LearningRate = getEnvFloat("LEARNING_RATE", 0.01)
	cfg.BatchSize = getEnvInt("BATCH_SIZE", 16)
	cfg.Epochs = getEnvInt("EPOCHS", 3)
	cfg.NoiseScale = getEnvFloat("DP_NOISE_SCALE", 0.1)
	cfg.ClipNorm = getEnvFloat("DP_CLIP_NORM", 1.0)
	cfg.DPEnabled = getEnvBool("DP_ENABLED", true)

	if cfg.UserID == "" {
		cfg.UserID = "local-user"
	}
	if cfg.SentimentModel == "" {
		cfg.SentimentModel = "gemini-2.5-flash"
	}

	return cfg
}

// TrainingConfig converts the env-derived knobs into a TrainingConfig.
func (c Config) TrainingConfig() types.TrainingConfig {
	return types.TrainingConfig{
		LearningRate: c.LearningRate,
		BatchSize:    c.BatchSize,
		Epochs:       c.Epochs,
		UseLocalData: true,
		DifferentialPrivacy: &types.DifferentialPrivacyConfig{
			Enabled:    c.DPEnabled,
			NoiseScale: c.NoiseScale,
			ClipNorm:   c.ClipNorm,
		},
	}
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// Package main runs a single simulated day of the on-device personalization
// pipeline: collect signals, screen them, fine-tune locally, and report the
// resulting predictions and stats.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/luminacare/memory-lane/internal/config"
	"github.com/luminacare/memory-lane/internal/insights"
	"github.com/luminacare/memory-lane/internal/ml"
	"github.com/luminacare/memory-lane/internal/repository"
	"github.com/luminacare/memory-lane/internal/sentiment"
	"github.com/luminacare/memory-lane/internal/types"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	slog.Info("configuration loaded", "user_id", cfg.UserID, "sentiment_model", cfg.SentimentModel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consent := types.ConsentSettings{
		LocalTraining:        true,
		CaregiverView:        true,
		CollectAudioFeatures: true,
		CollectContext:       true,
	}

	var store *repository.Store
	if cfg.DatabaseURL != "" {
		var err error
		store, err = repository.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer store.Close()

		loaded, err := store.Consents.Load(ctx, cfg.UserID)
		if err != nil {
			log.Fatalf("failed to load consent settings: %v", err)
		}
		consent = loaded
	}

	analyzer := newAnalyzer(ctx, cfg)

	var annotator *sentiment.AffectAnnotator
	if cfg.GoogleAPIKey != "" {
		a, err := sentiment.NewAffectAnnotator(ctx, cfg.GoogleAPIKey, cfg.SentimentModel)
		if err != nil {
			slog.Warn("affect annotator unavailable, using keyword estimates", "error", err)
		} else {
			annotator = a
		}
	}

	service := ml.NewService(cfg.UserID, consent, cfg.TrainingConfig())

	if store != nil {
		saved, err := store.Weights.LoadLatest(ctx, cfg.UserID)
		if err != nil {
			log.Fatalf("failed to load model weights: %v", err)
		}
		if saved != nil {
			service.RestoreWeights(*saved)
		}
	}

	entries := []string{
		"Had a wonderful walk in the garden today, the roses were blooming",
		"Feeling a bit tired and worried about the appointment tomorrow",
		"My daughter called, we had a great chat about the old photo albums",
		"Difficult morning, could not find my glasses again",
		"Enjoyed the music session, it reminded me of dancing with Harold",
		"A quiet day, mostly sat by the window watching the birds",
	}

	for _, content := range entries {
		flags := collectEntry(ctx, service, analyzer, annotator, content)
		if !flags.Empty() {
			slog.Warn("safety flags raised", "flags", fmt.Sprintf("%+v", flags))
		}
	}

	service.CollectQuizSignal(types.QuizNameRecall, true, 1800, 0, types.DifficultyMedium)
	service.CollectQuizSignal(types.QuizObjectRecognition, true, 2400, 1, types.DifficultyMedium)
	service.CollectQuizSignal(types.QuizMemoryRecall, false, 5200, 2, types.DifficultyHard)
	service.CollectQuizSignal(types.QuizNameRecall, true, 1500, 0, types.DifficultyMedium)
	service.CollectInteraction("prompt-photo-1", "photo_review", true, 12000, true)
	service.CollectInteraction("prompt-music-1", "music_clip", true, 8000, true)
	service.CollectAudio(45, 110, 4)

	weights, err := service.FineTuneLocal()
	if err != nil {
		slog.Error("fine-tuning skipped", "error", err)
	} else {
		slog.Info("fine-tuning done", "version", weights.Version)
		if store != nil {
			if err := store.Weights.Save(ctx, cfg.UserID, weights); err != nil {
				slog.Error("failed to persist weights", "error", err)
			}
		}
	}

	prediction := service.PredictEmotion("I enjoy these quiet afternoons")
	slog.Info("emotion prediction", "valence", prediction.Valence, "arousal", prediction.Arousal)

	rec := service.RecommendActivity()
	slog.Info("activity recommendation", "activity", rec.Activity, "confidence", rec.Confidence, "reason", rec.Reason)

	quiz := service.RecommendQuizDifficulty()
	slog.Info("quiz recommendation", "type", quiz.RecommendedType, "difficulty", quiz.RecommendedDifficulty, "reason", quiz.Reason)

	if store != nil {
		reviewMemories(ctx, store, service, cfg.UserID, entries)
	}

	forecast := insights.ForecastMood([]float64{0.1, 0.0, 0.2, 0.3, 0.2, 0.4}, time.Now())
	slog.Info("mood forecast", "day_1", forecast.Next7Days[0].PredictedMood, "day_7", forecast.Next7Days[6].PredictedMood)

	stats := service.TrainingStats()
	slog.Info("training stats",
		"total_samples", stats.TotalSamples,
		"text_entries", stats.TextEntries,
		"quiz_signals", stats.QuizSignals,
		"interactions", stats.Interactions)

	if store != nil {
		if err := store.Consents.Save(ctx, cfg.UserID, service.Consent()); err != nil {
			slog.Error("failed to persist consent settings", "error", err)
		}
	}
}

// collectEntry records one journal entry, preferring the LLM affect annotator
// over the sentiment-plus-keyword path when it is available.
func collectEntry(ctx context.Context, service *ml.Service, analyzer sentiment.Analyzer, annotator *sentiment.AffectAnnotator, content string) types.SafetyFlags {
	entry := types.JournalEntry{Content: content, Date: time.Now()}

	if annotator != nil {
		affect, err := annotator.Annotate(ctx, content)
		if err == nil {
			entry.Sentiment = string(affect.Label)
			return service.CollectAnnotatedMoodEntry(entry, types.SourceMoodNote, affect.Valence, affect.Arousal)
		}
		slog.Warn("affect annotation failed, using keyword estimates", "error", err)
	}

	label, err := analyzer.Analyze(ctx, content)
	if err != nil {
		slog.Warn("sentiment analysis failed, defaulting to neutral", "error", err)
		label = sentiment.LabelNeutral
	}
	entry.Sentiment = string(label)
	return service.CollectFromMoodEntry(entry, types.SourceMoodNote)
}

// reviewMemories stores the day's entries as embedded memories and ranks them
// against a review query.
func reviewMemories(ctx context.Context, store *repository.Store, service *ml.Service, userID string, entries []string) {
	for _, content := range entries {
		mem := types.Memory{
			UserID:    userID,
			Title:     memoryTitle(content),
			Summary:   content,
			Comfort:   0.5,
			Embedding: service.EmbedMemory(content),
		}
		if err := store.Memories.AddMemory(ctx, mem); err != nil {
			slog.Error("failed to store memory", "error", err)
			return
		}
	}

	query := "music and dancing with family"
	rankings, err := store.Memories.RankMemories(ctx, userID, service.EmbedMemory(query), 3)
	if err != nil {
		slog.Error("failed to rank memories", "error", err)
		return
	}
	for i, r := range rankings {
		slog.Info("memory ranked for review",
			"rank", i+1,
			"memory_id", r.MemoryID,
			"relevance", r.RelevanceScore,
			"comfort", r.ComfortScore)
	}
}

// memoryTitle trims an entry down to a short display title.
func memoryTitle(content string) string {
	words := strings.Fields(content)
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}

// newAnalyzer picks the best available sentiment backend: Gemini when a Google
// key is present, OpenAI-compatible when that key is present, keyword matching
// otherwise.
func newAnalyzer(ctx context.Context, cfg config.Config) sentiment.Analyzer {
	if cfg.GoogleAPIKey != "" {
		m, err := gemini.NewModel(ctx, cfg.SentimentModel, &genai.ClientConfig{APIKey: cfg.GoogleAPIKey})
		if err != nil {
			slog.Warn("failed to create gemini model, falling back", "error", err)
		} else {
			return sentiment.NewLLMAnalyzer(m)
		}
	}
	if cfg.OpenAIAPIKey != "" {
		a, err := sentiment.NewOpenAIAnalyzer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, "gpt-4o-mini")
		if err != nil {
			slog.Warn("failed to create openai analyzer, falling back", "error", err)
		} else {
			return a
		}
	}
	return sentiment.NewKeywordAnalyzer()
}

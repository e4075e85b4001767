// Package main simulates one federated learning round across a handful of
// local clients: each client collects its own signals and fine-tunes locally,
// only weight deltas are shared, and the aggregated model is pushed back to
// every participant.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luminacare/memory-lane/internal/config"
	"github.com/luminacare/memory-lane/internal/federated"
	"github.com/luminacare/memory-lane/internal/ml"
	"github.com/luminacare/memory-lane/internal/repository"
	"github.com/luminacare/memory-lane/internal/types"
)

const round = 1

type client struct {
	id      string
	service *ml.Service
	entries []string
	quizWin float64 // fraction of quizzes answered correctly
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	trainingCfg := cfg.TrainingConfig()
	trainingCfg.FederatedRound = round

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store *repository.Store
	if cfg.DatabaseURL != "" {
		var err error
		store, err = repository.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer store.Close()
	}

	consent := types.ConsentSettings{
		LocalTraining:   true,
		ShareAggregates: true,
		CollectContext:  true,
	}

	clients := []*client{
		newClient("client-a", consent, trainingCfg, 0.9, []string{
			"A good morning, enjoyed breakfast on the porch",
			"Felt happy after the phone call with my son",
		}),
		newClient("client-b", consent, trainingCfg, 0.5, []string{
			"Tired today, the afternoon felt difficult",
			"A quiet evening, nothing much happened",
		}),
		newClient("client-c", consent, trainingCfg, 0.7, []string{
			"Wonderful visit from the grandchildren",
			"Worried about the weather, stayed inside",
		}),
	}

	for _, c := range clients {
		c.collectDay()
		if _, err := c.service.FineTuneLocal(); err != nil {
			log.Fatalf("client %s fine-tuning failed: %v", c.id, err)
		}
	}

	var updates []types.FederatedUpdate
	for _, c := range clients {
		update, err := c.service.PrepareFederatedUpdate(round)
		if err != nil {
			log.Fatalf("client %s failed to prepare update: %v", c.id, err)
		}
		slog.Info("update prepared", "client", c.id, "samples", update.SampleCount)
		updates = append(updates, *update)
	}

	server := federated.NewCoordinator("aggregation-server", consent)
	aggregated, err := server.AggregateUpdates(updates)
	if err != nil {
		log.Fatalf("aggregation failed: %v", err)
	}
	if aggregated == nil {
		log.Fatal("aggregation produced no model")
	}
	slog.Info("round aggregated", "version", aggregated.Version, "clients", len(updates))

	for _, c := range clients {
		c.service.ApplyFederatedWeights(*aggregated)
	}

	if store != nil {
		if err := store.Weights.Save(ctx, "federated", *aggregated); err != nil {
			log.Fatalf("failed to persist aggregated weights: %v", err)
		}
		slog.Info("aggregated weights persisted", "version", aggregated.Version)
	}
}

func newClient(id string, consent types.ConsentSettings, cfg types.TrainingConfig, quizWin float64, entries []string) *client {
	return &client{
		id:      id,
		service: ml.NewService(id, consent, cfg),
		entries: entries,
		quizWin: quizWin,
	}
}

// collectDay records enough varied signals for one fine-tuning pass.
func (c *client) collectDay() {
	for _, content := range c.entries {
		c.service.CollectFromMoodEntry(types.JournalEntry{
			Content:   content,
			Sentiment: "neutral",
			Date:      time.Now(),
		}, types.SourceMoodNote)
	}

	quizzes := 10
	correct := int(c.quizWin * float64(quizzes))
	for i := 0; i < quizzes; i++ {
		c.service.CollectQuizSignal(types.QuizNameRecall, i < correct, 2000, 0, types.DifficultyMedium)
	}

	c.service.CollectInteraction("prompt-1", "photo_review", true, 9000, true)
}

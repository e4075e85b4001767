// Package ml is the application-facing facade over the personalization
// pipeline. It wires the collector, privacy guard, trainer, and federated
// coordinator behind one consent-aware surface and owns the in-memory
// training history.
package ml

import (
	"log/slog"

	"github.com/luminacare/memory-lane/internal/collect"
	"github.com/luminacare/memory-lane/internal/federated"
	"github.com/luminacare/memory-lane/internal/privacy"
	"github.com/luminacare/memory-lane/internal/trainer"
	"github.com/luminacare/memory-lane/internal/types"
)

const (
	// minTrainingBatches gates fine-tuning until enough history exists.
	minTrainingBatches = 10
	// recentBatchWindow bounds how much history one fine-tune consumes.
	recentBatchWindow = 100
	// historyCap bounds the in-memory history, oldest batch dropped first.
	historyCap = 1000
)

// Service coordinates collection, training, and federation for one user. Not
// safe for concurrent use; callers serialize access per user.
type Service struct {
	userID      string
	consent     types.ConsentSettings
	cfg         types.TrainingConfig
	guard       *privacy.Guard
	collector   *collect.Collector
	trainer     *trainer.Trainer
	coordinator *federated.Coordinator
	history     []types.TrainingBatch
}

// NewService builds a Service for a user. The consent snapshot is normalized
// before use, so dependent flags can never be set without their prerequisite.
func NewService(userID string, consent types.ConsentSettings, cfg types.TrainingConfig) *Service {
	consent = consent.Normalize()
	return &Service{
		userID:      userID,
		consent:     consent,
		cfg:         cfg,
		guard:       privacy.NewGuard(consent),
		collector:   collect.NewCollector(userID, consent),
		trainer:     trainer.NewTrainer(),
		coordinator: federated.NewCoordinator(userID, consent),
	}
}

// Consent returns the normalized consent snapshot in effect.
func (s *Service) Consent() types.ConsentSettings {
	return s.consent
}

// UpdateConsent replaces the consent snapshot and rebuilds every
// consent-bound collaborator. Accumulated history and trained weights are
// kept; they were collected under consent that was valid at the time.
func (s *Service) UpdateConsent(consent types.ConsentSettings) {
	consent = consent.Normalize()
	s.consent = consent
	s.guard = privacy.NewGuard(consent)
	s.collector = collect.NewCollector(s.userID, consent)
	s.coordinator = federated.NewCoordinator(s.userID, consent)
	slog.Info("consent updated", "user_id", s.userID, "local_training", consent.LocalTraining, "share_aggregates", consent.ShareAggregates)
}

// CollectFromMoodEntry screens a journal entry and, when consented, records it
// as a sanitized training batch. The crisis check runs first and its flags are
// always returned; a crisis entry is never used for training.
func (s *Service) CollectFromMoodEntry(entry types.JournalEntry, source types.TextSource) types.SafetyFlags {
	flags := s.guard.CheckCrisisLanguage(entry.Content)
	if flags.CrisisLanguage {
		slog.Warn("crisis language detected", "user_id", s.userID)
		return flags
	}

	s.storeTextSignal(s.collector.CollectTextEntry(entry, source))
	return flags
}

// CollectAnnotatedMoodEntry is CollectFromMoodEntry with an annotator-supplied
// affect estimate replacing the keyword heuristic. The same safety rules
// apply: crisis check first, and a crisis entry is never used for training.
func (s *Service) CollectAnnotatedMoodEntry(entry types.JournalEntry, source types.TextSource, valence, arousal float64) types.SafetyFlags {
	flags := s.guard.CheckCrisisLanguage(entry.Content)
	if flags.CrisisLanguage {
		slog.Warn("crisis language detected", "user_id", s.userID)
		return flags
	}

	s.storeTextSignal(s.collector.CollectAnnotatedTextEntry(entry, source, valence, arousal))
	return flags
}

func (s *Service) storeTextSignal(sig *types.TextEntry) {
	if sig == nil {
		return
	}
	batch := s.collector.BundleTrainingData(collect.BundleInput{
		TextEntries: []types.TextEntry{*sig},
		Context:     s.collector.CollectContext(),
	})
	if batch != nil {
		s.appendBatch(s.guard.SanitizeBatch(*batch))
	}
}

// CollectQuizSignal records one quiz outcome when consented.
func (s *Service) CollectQuizSignal(quizType types.QuizType, correct bool, responseLatency int64, hintsUsed int, difficulty types.Difficulty) {
	sig := s.collector.CollectQuizSignal(quizType, correct, responseLatency, hintsUsed, difficulty)
	if sig == nil {
		return
	}
	batch := s.collector.BundleTrainingData(collect.BundleInput{
		QuizSignals: []types.QuizSignal{*sig},
	})
	if batch != nil {
		s.appendBatch(*batch)
	}
}

// CollectInteraction records one prompt engagement event when consented.
func (s *Service) CollectInteraction(promptID, promptType string, engaged bool, dwellTime int64, completed bool) {
	sig := s.collector.CollectInteractionPattern(promptID, promptType, engaged, dwellTime, completed)
	if sig == nil {
		return
	}
	batch := s.collector.BundleTrainingData(collect.BundleInput{
		InteractionPatterns: []types.InteractionPattern{*sig},
	})
	if batch != nil {
		s.appendBatch(*batch)
	}
}

// CollectAudio records prosody scalars derived from speech metadata when both
// audio and training consent are present.
func (s *Service) CollectAudio(duration float64, wordCount, pauseCount int) {
	sig := s.collector.CollectAudioFeatures(duration, wordCount, pauseCount)
	if sig == nil {
		return
	}
	batch := s.collector.BundleTrainingData(collect.BundleInput{
		AudioFeatures: []types.AudioFeatures{*sig},
	})
	if batch != nil {
		s.appendBatch(*batch)
	}
}

// FineTuneLocal runs every per-task fine-tune over the most recent history
// window. Requires localTraining consent and at least minTrainingBatches of
// accumulated history.
func (s *Service) FineTuneLocal() (types.ModelWeights, error) {
	if !s.guard.ValidateConsent(privacy.OpLocalTraining) {
		return types.ModelWeights{}, &ConsentError{Operation: string(privacy.OpLocalTraining)}
	}
	if len(s.history) < minTrainingBatches {
		return types.ModelWeights{}, &InsufficientDataError{Have: len(s.history), Want: minTrainingBatches}
	}

	recent := s.history
	if len(recent) > recentBatchWindow {
		recent = recent[len(recent)-recentBatchWindow:]
	}

	s.trainer.FineTuneEmotionModel(recent, s.cfg)
	s.trainer.FineTuneQuizPersonalization(recent, s.cfg)
	weights := s.trainer.FineTuneActivityRecommendation(recent, s.cfg)

	slog.Info("local fine-tuning complete", "user_id", s.userID, "batches", len(recent), "version", weights.Version)
	return weights, nil
}

// PredictEmotion estimates affect for a text using the current local weights.
func (s *Service) PredictEmotion(text string) types.EmotionPrediction {
	return s.trainer.PredictEmotion(text)
}

// RecommendActivity suggests the next activity, with the internal reason code
// rewritten into user-facing language.
func (s *Service) RecommendActivity() types.ActivityRecommendation {
	rec := s.trainer.RecommendActivity()
	rec.Reason = s.guard.GenerateExplanation(rec.Reason)
	return rec
}

// RecommendQuizDifficulty suggests the next quiz type and difficulty from the
// trained quiz-personalization weights and the accumulated quiz history.
func (s *Service) RecommendQuizDifficulty() types.QuizDifficultyRecommendation {
	var recent []types.QuizSignal
	for _, b := range s.history {
		recent = append(recent, b.QuizSignals...)
	}
	return s.trainer.RecommendQuizDifficulty(recent)
}

// EmbedMemory maps a memory text into the memory-embedding space for
// similarity ranking in the repository.
func (s *Service) EmbedMemory(text string) []float32 {
	return s.trainer.EmbedMemory(text)
}

// DetectMoodDrop screens a recent mood-score series for a significant drop.
func (s *Service) DetectMoodDrop(recentScores []float64) types.SafetyFlags {
	return s.guard.DetectMoodDrop(recentScores)
}

// PrepareFederatedUpdate packages the local weight delta for a round. Unlike
// the collection paths, a missing consent here is an error: the caller asked
// for an explicit share action and must learn why it cannot happen.
func (s *Service) PrepareFederatedUpdate(round int) (*types.FederatedUpdate, error) {
	if !s.guard.ValidateConsent(privacy.OpShareAggregates) {
		return nil, &ConsentError{Operation: string(privacy.OpShareAggregates)}
	}
	return s.coordinator.PrepareUpdate(s.trainer.BaseWeights(), s.trainer.Weights(), len(s.history), round, s.cfg)
}

// ApplyFederatedWeights installs an aggregated model, resetting the delta
// reference point for the next round.
func (s *Service) ApplyFederatedWeights(aggregated types.ModelWeights) {
	s.trainer.UpdateWeightsFromFederation(aggregated)
	slog.Info("federated weights applied", "user_id", s.userID, "version", aggregated.Version)
}

// RestoreWeights installs a previously persisted local snapshot, typically
// loaded from the weights repository at startup.
func (s *Service) RestoreWeights(weights types.ModelWeights) {
	s.trainer.SetWeights(weights)
	slog.Info("weights restored", "user_id", s.userID, "version", weights.Version)
}

// Weights returns a copy of the current local model weights.
func (s *Service) Weights() types.ModelWeights {
	return s.trainer.Weights()
}

// ShouldShareWithCaregiver reports whether collected batches may surface on
// the caregiver dashboard.
func (s *Service) ShouldShareWithCaregiver() bool {
	return s.guard.ShouldShareWithCaregiver()
}

// TrainingStats summarizes the accumulated history for the settings screen.
// Per-kind counts are batches containing at least one signal of that kind.
func (s *Service) TrainingStats() types.TrainingStats {
	stats := types.TrainingStats{
		TotalSamples: len(s.history),
		Consent:      s.consent,
	}
	for _, b := range s.history {
		if len(b.TextEntries) > 0 {
			stats.TextEntries++
		}
		if len(b.QuizSignals) > 0 {
			stats.QuizSignals++
		}
		if len(b.InteractionPatterns) > 0 {
			stats.Interactions++
		}
	}
	return stats
}

func (s *Service) appendBatch(batch types.TrainingBatch) {
	s.history = append(s.history, batch)
	if len(s.history) > historyCap {
		s.history = s.history[len(s.history)-historyCap:]
	}
}

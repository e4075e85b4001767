package ml

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/luminacare/memory-lane/internal/types"
)

func fullConsent() types.ConsentSettings {
	return types.ConsentSettings{
		LocalTraining:        true,
		ShareAggregates:      true,
		CaregiverView:        true,
		CollectAudioFeatures: true,
		CollectContext:       true,
	}
}

func newTestService(consent types.ConsentSettings) *Service {
	return NewService("user-1", consent, types.DefaultTrainingConfig())
}

func journalEntry(content string) types.JournalEntry {
	return types.JournalEntry{
		Content:   content,
		Sentiment: "neutral",
		Date:      time.Date(2026, 4, 7, 9, 0, 0, 0, time.UTC),
	}
}

func TestCollectFromMoodEntryRespectsConsent(t *testing.T) {
	s := newTestService(types.ConsentSettings{})

	flags := s.CollectFromMoodEntry(journalEntry("a quiet day"), types.SourceMoodNote)
	if !flags.Empty() {
		t.Fatalf("unexpected flags: %+v", flags)
	}
	if len(s.history) != 0 {
		t.Fatal("entry stored without localTraining consent")
	}
}

func TestCollectFromMoodEntryCrisisFlagsWithoutConsent(t *testing.T) {
	s := newTestService(types.ConsentSettings{})

	flags := s.CollectFromMoodEntry(journalEntry("I feel hopeless today"), types.SourceMoodNote)
	if !flags.CrisisLanguage || !flags.RequiresAttention {
		t.Fatalf("crisis not flagged: %+v", flags)
	}
}

func TestCollectFromMoodEntryCrisisEntryNotStored(t *testing.T) {
	s := newTestService(fullConsent())

	flags := s.CollectFromMoodEntry(journalEntry("I want to give up"), types.SourceMoodNote)
	if !flags.CrisisLanguage {
		t.Fatalf("crisis not flagged: %+v", flags)
	}
	if len(s.history) != 0 {
		t.Fatal("crisis entry entered the training history")
	}
}

func TestCollectFromMoodEntrySanitizesStoredText(t *testing.T) {
	s := newTestService(fullConsent())

	s.CollectFromMoodEntry(journalEntry("wrote to jane@example.com about lunch"), types.SourceMoodNote)
	if len(s.history) != 1 {
		t.Fatalf("history length = %d, want 1", len(s.history))
	}
	stored := s.history[0].TextEntries[0].Text
	if strings.Contains(stored, "jane@example.com") {
		t.Fatalf("stored text retains PII: %q", stored)
	}
	if !strings.Contains(stored, "[EMAIL]") {
		t.Fatalf("stored text missing redaction token: %q", stored)
	}
}

func TestCollectAnnotatedMoodEntryStoresSuppliedAffect(t *testing.T) {
	s := newTestService(fullConsent())

	flags := s.CollectAnnotatedMoodEntry(journalEntry("a pleasant afternoon"), types.SourceMoodNote, 0.7, 0.1)
	if !flags.Empty() {
		t.Fatalf("unexpected flags: %+v", flags)
	}
	if len(s.history) != 1 {
		t.Fatalf("history length = %d, want 1", len(s.history))
	}
	stored := s.history[0].TextEntries[0]
	if stored.Valence == nil || *stored.Valence != 0.7 {
		t.Fatalf("valence = %v, want the annotated 0.7", stored.Valence)
	}
}

func TestCollectAnnotatedMoodEntryCrisisNotStored(t *testing.T) {
	s := newTestService(fullConsent())

	flags := s.CollectAnnotatedMoodEntry(journalEntry("there is no reason to live"), types.SourceMoodNote, 0, 0)
	if !flags.CrisisLanguage {
		t.Fatalf("crisis not flagged: %+v", flags)
	}
	if len(s.history) != 0 {
		t.Fatal("crisis entry entered the training history")
	}
}

func TestCollectAnnotatedMoodEntrySanitizes(t *testing.T) {
	s := newTestService(fullConsent())

	s.CollectAnnotatedMoodEntry(journalEntry("called 555-123-4567 about the visit"), types.SourceMoodNote, 0.2, 0)
	stored := s.history[0].TextEntries[0].Text
	if strings.Contains(stored, "555-123-4567") {
		t.Fatalf("stored text retains PII: %q", stored)
	}
	if !strings.Contains(stored, "[PHONE]") {
		t.Fatalf("stored text missing redaction token: %q", stored)
	}
}

func TestRecommendQuizDifficultyUsesHistory(t *testing.T) {
	s := newTestService(fullConsent())

	for i := 0; i < 10; i++ {
		s.CollectQuizSignal(types.QuizNameRecall, true, 500, 0, "")
	}
	rec := s.RecommendQuizDifficulty()
	if rec.RecommendedDifficulty != types.DifficultyHard {
		t.Fatalf("difficulty = %q, want hard after a perfect run", rec.RecommendedDifficulty)
	}
}

func TestEmbedMemoryLength(t *testing.T) {
	s := newTestService(fullConsent())

	vec := s.EmbedMemory("the old photo albums")
	if len(vec) != types.MemoryEmbeddingVectorLen {
		t.Fatalf("embedding length = %d, want %d", len(vec), types.MemoryEmbeddingVectorLen)
	}
}

func TestHistoryCapDropsOldestFirst(t *testing.T) {
	s := newTestService(fullConsent())

	for i := 0; i < historyCap+5; i++ {
		s.CollectQuizSignal(types.QuizNameRecall, true, 500, 0, types.DifficultyEasy)
	}
	if len(s.history) != historyCap {
		t.Fatalf("history length = %d, want %d", len(s.history), historyCap)
	}
}

func TestFineTuneLocalConsentError(t *testing.T) {
	s := newTestService(types.ConsentSettings{})

	_, err := s.FineTuneLocal()
	var consentErr *ConsentError
	if !errors.As(err, &consentErr) {
		t.Fatalf("error = %v, want ConsentError", err)
	}
}

func TestFineTuneLocalInsufficientData(t *testing.T) {
	s := newTestService(fullConsent())
	s.CollectQuizSignal(types.QuizNameRecall, true, 500, 0, "")

	_, err := s.FineTuneLocal()
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("error = %v, want InsufficientDataError", err)
	}
	if insufficient.Have != 1 || insufficient.Want != minTrainingBatches {
		t.Fatalf("unexpected counts: %+v", insufficient)
	}
}

func TestFineTuneLocalRunsWithEnoughHistory(t *testing.T) {
	s := newTestService(fullConsent())

	for i := 0; i < minTrainingBatches; i++ {
		s.CollectQuizSignal(types.QuizNameRecall, i%2 == 0, 500, 0, "")
	}
	weights, err := s.FineTuneLocal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	changed := false
	for _, w := range weights.QuizPersonalization {
		if w != 0 {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatal("fine-tuning left the quiz vector untouched")
	}
}

func TestRecommendActivityRewritesReason(t *testing.T) {
	s := newTestService(fullConsent())

	rec := s.RecommendActivity()
	if !strings.Contains(rec.Reason, "Based on the time of day") {
		t.Fatalf("reason not rewritten for display: %q", rec.Reason)
	}
	if strings.Contains(rec.Reason, "preference history") {
		t.Fatalf("internal reason code leaked: %q", rec.Reason)
	}
}

func TestPrepareFederatedUpdateConsentError(t *testing.T) {
	s := newTestService(types.ConsentSettings{LocalTraining: true})

	_, err := s.PrepareFederatedUpdate(1)
	var consentErr *ConsentError
	if !errors.As(err, &consentErr) {
		t.Fatalf("error = %v, want ConsentError", err)
	}
}

func TestPrepareFederatedUpdateCarriesSampleCount(t *testing.T) {
	s := newTestService(fullConsent())
	for i := 0; i < 4; i++ {
		s.CollectQuizSignal(types.QuizNameRecall, true, 500, 0, "")
	}

	update, err := s.PrepareFederatedUpdate(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update == nil || update.SampleCount != 4 || update.Round != 2 {
		t.Fatalf("unexpected update: %+v", update)
	}
}

func TestUpdateConsentNormalizes(t *testing.T) {
	s := newTestService(fullConsent())

	s.UpdateConsent(types.ConsentSettings{ShareAggregates: true})
	if s.Consent().ShareAggregates {
		t.Fatal("shareAggregates survived without localTraining")
	}
	if _, err := s.PrepareFederatedUpdate(1); err == nil {
		t.Fatal("expected a consent error after revocation")
	}
}

func TestUpdateConsentKeepsHistory(t *testing.T) {
	s := newTestService(fullConsent())
	s.CollectQuizSignal(types.QuizNameRecall, true, 500, 0, "")

	s.UpdateConsent(fullConsent())
	if len(s.history) != 1 {
		t.Fatal("consent update dropped accumulated history")
	}
}

func TestTrainingStatsCountsBatchKinds(t *testing.T) {
	s := newTestService(fullConsent())

	s.CollectFromMoodEntry(journalEntry("a good walk"), types.SourceMoodNote)
	s.CollectQuizSignal(types.QuizNameRecall, true, 500, 0, "")
	s.CollectQuizSignal(types.QuizMemoryRecall, false, 900, 1, "")
	s.CollectInteraction("p1", "photo", true, 6000, true)

	stats := s.TrainingStats()
	if stats.TotalSamples != 4 {
		t.Fatalf("total samples = %d, want 4", stats.TotalSamples)
	}
	if stats.TextEntries != 1 || stats.QuizSignals != 2 || stats.Interactions != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if !stats.Consent.LocalTraining {
		t.Fatal("stats missing consent snapshot")
	}
}

func TestApplyFederatedWeightsReplacesModel(t *testing.T) {
	s := newTestService(fullConsent())

	aggregated := types.NewBaselineWeights(time.Now())
	aggregated.Emotion[0] = 0.4
	aggregated.Version = "federated-7"
	s.ApplyFederatedWeights(aggregated)

	got := s.Weights()
	if got.Emotion[0] != 0.4 || got.Version != "federated-7" {
		t.Fatalf("weights not replaced: %v %q", got.Emotion[0], got.Version)
	}
}

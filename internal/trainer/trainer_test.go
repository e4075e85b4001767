package trainer

import (
	"math"
	"testing"
	"time"

	"github.com/luminacare/memory-lane/internal/types"
)

func floatPtr(v float64) *float64 { return &v }

func textBatch(valence float64) types.TrainingBatch {
	return types.TrainingBatch{
		UserID:    "u1",
		Timestamp: time.Now(),
		TextEntries: []types.TextEntry{
			{Text: "entry", Valence: floatPtr(valence), Arousal: floatPtr(0.1)},
		},
	}
}

func TestFineTuneEmotionModelChangesWeights(t *testing.T) {
	tr := NewTrainer().WithSeed(1)
	cfg := types.DefaultTrainingConfig()

	batches := []types.TrainingBatch{textBatch(0.8), textBatch(0.8), textBatch(-0.2)}
	got := tr.FineTuneEmotionModel(batches, cfg)

	if len(got.Emotion) != types.EmotionVectorLen {
		t.Fatalf("emotion vector length %d, want %d", len(got.Emotion), types.EmotionVectorLen)
	}
	changed := false
	for _, w := range got.Emotion {
		if w != 0 {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatal("fine-tuning left the emotion vector at zero")
	}
	if len(tr.TrainingHistory()) != cfg.Epochs {
		t.Fatalf("training history has %d records, want %d", len(tr.TrainingHistory()), cfg.Epochs)
	}
}

func TestFineTuneEmotionModelNoRelevantSignalsIsNoOp(t *testing.T) {
	tr := NewTrainer().WithSeed(1)
	before := tr.Weights()

	// Entries without affect estimates are filtered out.
	batches := []types.TrainingBatch{{
		TextEntries: []types.TextEntry{{Text: "no affect"}},
	}}
	after := tr.FineTuneEmotionModel(batches, types.DefaultTrainingConfig())

	for i := range before.Emotion {
		if after.Emotion[i] != before.Emotion[i] {
			t.Fatal("no-op fine-tune changed weights")
		}
	}
	if len(tr.TrainingHistory()) != 0 {
		t.Fatal("no-op fine-tune logged epochs")
	}
}

func TestFineTuneQuizPersonalization(t *testing.T) {
	tr := NewTrainer().WithSeed(1)

	var batches []types.TrainingBatch
	for i := 0; i < 10; i++ {
		batches = append(batches, types.TrainingBatch{
			QuizSignals: []types.QuizSignal{
				{QuizType: types.QuizNameRecall, Correct: i < 8},
			},
		})
	}

	got := tr.FineTuneQuizPersonalization(batches, types.DefaultTrainingConfig())
	if len(got.QuizPersonalization) != types.QuizPersonalizationVectorLen {
		t.Fatalf("quiz vector length changed: %d", len(got.QuizPersonalization))
	}
	// 8 correct (+1) and 2 wrong (-0.5) over 10 samples at lr 0.01.
	want := (8.0 - 1.0) / 10.0 * 0.01
	if math.Abs(float64(got.QuizPersonalization[0])-want) > 1e-6 {
		t.Fatalf("quiz weight[0] = %v, want %v", got.QuizPersonalization[0], want)
	}
}

func TestFineTuneActivityRecommendationRewardsCompletion(t *testing.T) {
	tr := NewTrainer().WithSeed(1)
	cfg := types.DefaultTrainingConfig()

	batches := []types.TrainingBatch{{
		InteractionPatterns: []types.InteractionPattern{
			{PromptID: "a", Completion: true, DwellTime: 8000},
			{PromptID: "b", Completion: true, DwellTime: 1000}, // too short, no reward
			{PromptID: "c", Completion: false, DwellTime: 9000},
		},
	}}
	got := tr.FineTuneActivityRecommendation(batches, cfg)

	want := float32(cfg.LearningRate * 0.01)
	for i, w := range got.ActivityRecommendation {
		if math.Abs(float64(w-want)) > 1e-9 {
			t.Fatalf("activity weight[%d] = %v, want %v", i, w, want)
		}
	}
}

func TestPredictEmotionClassesSumToOne(t *testing.T) {
	tr := NewTrainer().WithSeed(1)

	for _, text := range []string{"happy great love", "sad bad worried tired", "the weather outside"} {
		pred := tr.PredictEmotion(text)
		var sum float64
		for _, p := range pred.Classes {
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("class probabilities for %q sum to %v", text, sum)
		}
		if pred.Arousal != 0.5 {
			t.Fatalf("arousal = %v, want 0.5 default", pred.Arousal)
		}
	}
}

func TestPredictEmotionValence(t *testing.T) {
	tr := NewTrainer().WithSeed(1)

	pred := tr.PredictEmotion("happy happy great")
	// Words are counted per occurrence: +0.1 each.
	if math.Abs(pred.Valence-0.3) > 1e-9 {
		t.Fatalf("valence = %v, want 0.3", pred.Valence)
	}

	pred = tr.PredictEmotion("sad tired bad worried")
	if math.Abs(pred.Valence+0.4) > 1e-9 {
		t.Fatalf("valence = %v, want -0.4", pred.Valence)
	}
}

func TestPredictEmotionShiftsAfterTraining(t *testing.T) {
	tr := NewTrainer().WithSeed(1)
	baseline := tr.PredictEmotion("an ordinary note").Valence

	var batches []types.TrainingBatch
	for i := 0; i < 50; i++ {
		batches = append(batches, textBatch(1.0))
	}
	tr.FineTuneEmotionModel(batches, types.TrainingConfig{LearningRate: 1, Epochs: 1})

	shifted := tr.PredictEmotion("an ordinary note").Valence
	if shifted <= baseline {
		t.Fatalf("positive fine-tuning did not raise valence: %v -> %v", baseline, shifted)
	}
}

func TestRecommendActivityByHour(t *testing.T) {
	tests := []struct {
		hour int
		want types.Activity
	}{
		{8, types.ActivityMoodEntry},
		{19, types.ActivityRelaxation},
	}
	for _, tt := range tests {
		tr := NewTrainer().WithSeed(1).WithClock(func() time.Time {
			return time.Date(2026, 4, 7, tt.hour, 0, 0, 0, time.UTC)
		})
		rec := tr.RecommendActivity()
		if rec.Activity != tt.want {
			t.Fatalf("hour %d: activity = %q, want %q", tt.hour, rec.Activity, tt.want)
		}
		if rec.Confidence != 0.7 {
			t.Fatalf("confidence = %v, want 0.7", rec.Confidence)
		}
	}

	// Midday picks stay within the fixed list.
	tr := NewTrainer().WithSeed(42).WithClock(func() time.Time {
		return time.Date(2026, 4, 7, 13, 0, 0, 0, time.UTC)
	})
	rec := tr.RecommendActivity()
	found := false
	for _, a := range activities {
		if rec.Activity == a {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("midday pick %q not in activity list", rec.Activity)
	}
}

func TestRecommendQuizDifficultyFollowsAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    types.Difficulty
	}{
		{"high accuracy steps up", 9, 10, types.DifficultyHard},
		{"low accuracy steps down", 2, 10, types.DifficultyEasy},
		{"middling accuracy stays put", 6, 10, types.DifficultyMedium},
	}
	for _, tt := range tests {
		tr := NewTrainer().WithSeed(1)
		var recent []types.QuizSignal
		for i := 0; i < tt.total; i++ {
			recent = append(recent, types.QuizSignal{QuizType: types.QuizNameRecall, Correct: i < tt.correct})
		}
		rec := tr.RecommendQuizDifficulty(recent)
		if rec.RecommendedDifficulty != tt.want {
			t.Fatalf("%s: difficulty = %q, want %q", tt.name, rec.RecommendedDifficulty, tt.want)
		}
		if rec.Reason == "" {
			t.Fatalf("%s: empty reason", tt.name)
		}
	}
}

func TestRecommendQuizDifficultyNoHistoryDefaultsMedium(t *testing.T) {
	tr := NewTrainer().WithSeed(1)
	rec := tr.RecommendQuizDifficulty(nil)
	if rec.RecommendedDifficulty != types.DifficultyMedium {
		t.Fatalf("difficulty = %q, want medium default", rec.RecommendedDifficulty)
	}
}

func TestRecommendQuizDifficultyTargetsWeakestType(t *testing.T) {
	tr := NewTrainer().WithSeed(1)

	// Strengthen nameRecall so it stops being the weakest area.
	var batches []types.TrainingBatch
	for i := 0; i < 10; i++ {
		batches = append(batches, types.TrainingBatch{
			QuizSignals: []types.QuizSignal{{QuizType: types.QuizNameRecall, Correct: true}},
		})
	}
	tr.FineTuneQuizPersonalization(batches, types.DefaultTrainingConfig())

	rec := tr.RecommendQuizDifficulty(nil)
	if rec.RecommendedType == types.QuizNameRecall {
		t.Fatal("recommended the strongest quiz type instead of the weakest")
	}
}

func TestEmbedMemory(t *testing.T) {
	tr := NewTrainer().WithSeed(1)

	vec := tr.EmbedMemory("dancing in the garden with harold")
	if len(vec) != types.MemoryEmbeddingVectorLen {
		t.Fatalf("embedding length = %d, want %d", len(vec), types.MemoryEmbeddingVectorLen)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-6 {
		t.Fatalf("embedding L2 norm = %v, want 1", math.Sqrt(norm))
	}

	again := tr.EmbedMemory("dancing in the garden with harold")
	for i := range vec {
		if vec[i] != again[i] {
			t.Fatal("embedding is not deterministic for the same text")
		}
	}

	other := tr.EmbedMemory("a quiet morning by the window")
	same := true
	for i := range vec {
		if vec[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("distinct texts produced identical embeddings")
	}
}

func TestWeightsGetterDoesNotAlias(t *testing.T) {
	tr := NewTrainer()
	w := tr.Weights()
	w.Emotion[0] = 99

	if tr.Weights().Emotion[0] != 0 {
		t.Fatal("mutating the returned weights changed trainer state")
	}
}

func TestSetWeightsKeepsBaseReference(t *testing.T) {
	tr := NewTrainer()

	restored := types.NewBaselineWeights(time.Now())
	restored.Emotion[0] = 0.5
	restored.Version = "1.0.1"
	tr.SetWeights(restored)

	if got := tr.Weights().Emotion[0]; got != 0.5 {
		t.Fatalf("local weights not restored: emotion[0] = %v", got)
	}
	if got := tr.BaseWeights().Emotion[0]; got != 0 {
		t.Fatalf("restoring local weights moved the base reference: %v", got)
	}
}

func TestUpdateWeightsFromFederationResetsBase(t *testing.T) {
	tr := NewTrainer().WithSeed(1)

	aggregated := types.NewBaselineWeights(time.Now())
	aggregated.Emotion[3] = 0.25
	aggregated.Version = "federated-4"

	tr.UpdateWeightsFromFederation(aggregated)

	if got := tr.Weights().Emotion[3]; got != 0.25 {
		t.Fatalf("local weights not replaced: emotion[3] = %v", got)
	}
	if got := tr.BaseWeights().Emotion[3]; got != 0.25 {
		t.Fatalf("base weights not replaced: emotion[3] = %v", got)
	}

	// Mutating the caller's copy afterwards must not touch the trainer.
	aggregated.Emotion[3] = -1
	if tr.Weights().Emotion[3] != 0.25 {
		t.Fatal("trainer aliases the caller's aggregated weights")
	}
}

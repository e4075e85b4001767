// Package trainer owns the local model weight vectors and performs the
// simulated fine-tuning and inference of the personalization pipeline. The
// weight updates are an explicitly simplified stand-in for gradient descent:
// they produce a changed, bounded weight vector, nothing more.
package trainer

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/luminacare/memory-lane/internal/types"
)

// EpochRecord is one entry of the training-history log, kept for
// observability only; it is never used as a stopping criterion.
type EpochRecord struct {
	Task  types.Task `json:"task"`
	Epoch int        `json:"epoch"`
	Loss  float64    `json:"loss"`
}

// Trainer holds the base and local weight snapshots. Base marks the reference
// point for federated deltas; local moves under fine-tuning. All vectors are
// copied on the way in and out so callers can never alias internal state.
type Trainer struct {
	baseWeights  types.ModelWeights
	localWeights types.ModelWeights
	history      []EpochRecord
	rng          *rand.Rand
	now          func() time.Time
}

// NewTrainer returns a Trainer at the deterministic zero baseline.
func NewTrainer() *Trainer {
	now := time.Now()
	return &Trainer{
		baseWeights:  types.NewBaselineWeights(now),
		localWeights: types.NewBaselineWeights(now),
		rng:          rand.New(rand.NewSource(now.UnixNano())),
		now:          time.Now,
	}
}

// WithClock overrides the trainer clock for tests and simulations.
func (t *Trainer) WithClock(now func() time.Time) *Trainer {
	t.now = now
	return t
}

// WithSeed makes the pseudo-loss and activity picks reproducible.
func (t *Trainer) WithSeed(seed int64) *Trainer {
	t.rng = rand.New(rand.NewSource(seed))
	return t
}

// FineTuneEmotionModel runs a simulated emotion fine-tune over the text
// entries that carry both valence and arousal. A call with no relevant
// signals is a no-op returning the current weights.
func (t *Trainer) FineTuneEmotionModel(batches []types.TrainingBatch, cfg types.TrainingConfig) types.ModelWeights {
	var entries []types.TextEntry
	for _, b := range batches {
		for _, e := range b.TextEntries {
			if e.Valence != nil && e.Arousal != nil {
				entries = append(entries, e)
			}
		}
	}
	if len(entries) == 0 {
		return t.Weights()
	}

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		t.history = append(t.history, EpochRecord{
			Task:  types.TaskEmotion,
			Epoch: epoch,
			Loss:  t.pseudoLoss(),
		})
	}

	updated := t.localWeights.Emotion.Clone()
	for i := 0; i < len(updated) && i < len(entries); i++ {
		sample := entries[i%len(entries)]
		gradient := *sample.Valence * cfg.LearningRate
		updated[i] += float32(gradient * 0.01)
	}
	t.localWeights.Emotion = updated
	t.localWeights.Timestamp = t.now()

	return t.Weights()
}

// FineTuneQuizPersonalization updates the quiz vector from per-type
// performance: a correct answer counts +1, a miss -0.5. No quiz signals means
// no-op.
func (t *Trainer) FineTuneQuizPersonalization(batches []types.TrainingBatch, cfg types.TrainingConfig) types.ModelWeights {
	var signals []types.QuizSignal
	for _, b := range batches {
		signals = append(signals, b.QuizSignals...)
	}
	if len(signals) == 0 {
		return t.Weights()
	}

	performance := make(map[types.QuizType]float64)
	for _, s := range signals {
		if s.Correct {
			performance[s.QuizType] += 1
		} else {
			performance[s.QuizType] -= 0.5
		}
	}

	updated := t.localWeights.QuizPersonalization.Clone()
	for i, quizType := range quizTypes {
		score, ok := performance[quizType]
		if ok && i < len(updated) {
			updated[i] += float32(score / float64(len(signals)) * cfg.LearningRate)
		}
	}
	t.localWeights.QuizPersonalization = updated
	t.localWeights.Timestamp = t.now()

	return t.Weights()
}

// FineTuneActivityRecommendation rewards completed interactions with dwell
// time over five seconds, bandit style. No interactions means no-op.
func (t *Trainer) FineTuneActivityRecommendation(batches []types.TrainingBatch, cfg types.TrainingConfig) types.ModelWeights {
	var interactions []types.InteractionPattern
	for _, b := range batches {
		interactions = append(interactions, b.InteractionPatterns...)
	}
	if len(interactions) == 0 {
		return t.Weights()
	}

	updated := t.localWeights.ActivityRecommendation.Clone()
	for _, interaction := range interactions {
		if interaction.Completion && interaction.DwellTime > 5000 {
			for i := range updated {
				updated[i] += float32(cfg.LearningRate * 0.01)
			}
		}
	}
	t.localWeights.ActivityRecommendation = updated
	t.localWeights.Timestamp = t.now()

	return t.Weights()
}

// PredictEmotion estimates affect for a text. The valence estimate is the
// keyword count scaled by 0.1, shifted by the mean of the trained emotion
// vector; an untrained (zero) vector leaves the keyword estimate untouched.
// Arousal defaults to 0.5. Class scores are thresholded then normalized to
// sum to 1.
func (t *Trainer) PredictEmotion(text string) types.EmotionPrediction {
	valence := keywordValence(text)
	valence = clamp(valence + meanOf(t.localWeights.Emotion)*10)
	arousal := 0.5

	classes := map[types.MoodLabel]float64{
		types.MoodCalm:    scoreIf(valence < -0.3 && arousal < 0.3, 0.7, 0.1),
		types.MoodJoy:     scoreIf(valence > 0.5 && arousal > 0.3, 0.8, 0.1),
		types.MoodSad:     scoreIf(valence < -0.5, 0.8, 0.1),
		types.MoodAnxious: scoreIf(valence < -0.3 && arousal > 0.5, 0.7, 0.1),
		types.MoodNeutral: scoreIf(math.Abs(valence) < 0.2, 0.6, 0.2),
	}

	var sum float64
	for _, v := range classes {
		sum += v
	}
	for k := range classes {
		classes[k] /= sum
	}

	return types.EmotionPrediction{
		Valence: valence,
		Arousal: arousal,
		Classes: classes,
	}
}

var activities = []types.Activity{
	types.ActivityPhotoReview,
	types.ActivityMusicClip,
	types.ActivityMemoryGame,
	types.ActivityCaregiverCall,
	types.ActivityMoodEntry,
	types.ActivityRelaxation,
}

// RecommendActivity picks the next activity by hour of day: mornings suggest
// a mood entry, evenings relaxation, otherwise a uniform pick from the fixed
// activity list. The reason string is an internal code; the privacy guard
// rewrites it for display.
func (t *Trainer) RecommendActivity() types.ActivityRecommendation {
	hour := t.now().Hour()

	var activity types.Activity
	switch {
	case hour < 10:
		activity = types.ActivityMoodEntry
	case hour >= 18:
		activity = types.ActivityRelaxation
	default:
		activity = activities[t.rng.Intn(len(activities))]
	}

	return types.ActivityRecommendation{
		Activity:   activity,
		Confidence: 0.7,
		Reason:     "time of day and preference history",
		Priority:   1,
	}
}

// quizTypes in their fixed weight-vector order.
var quizTypes = []types.QuizType{
	types.QuizNameRecall,
	types.QuizObjectRecognition,
	types.QuizMemoryRecall,
	types.QuizSequenceRecall,
	types.QuizSpatialRecall,
}

// RecommendQuizDifficulty suggests the next quiz. The type is the one with the
// lowest trained personalization weight, the area most in need of practice;
// the difficulty follows recent accuracy: above 80% steps up to hard, below
// 40% steps down to easy. With no recent signals it stays at medium.
func (t *Trainer) RecommendQuizDifficulty(recent []types.QuizSignal) types.QuizDifficultyRecommendation {
	recommendedType := quizTypes[0]
	lowest := float32(math.MaxFloat32)
	for i, quizType := range quizTypes {
		if i < len(t.localWeights.QuizPersonalization) && t.localWeights.QuizPersonalization[i] < lowest {
			lowest = t.localWeights.QuizPersonalization[i]
			recommendedType = quizType
		}
	}

	difficulty := types.DifficultyMedium
	reason := "Matched to your recent quiz performance"
	if len(recent) > 0 {
		correct := 0
		for _, s := range recent {
			if s.Correct {
				correct++
			}
		}
		accuracy := float64(correct) / float64(len(recent))
		switch {
		case accuracy > 0.8:
			difficulty = types.DifficultyHard
			reason = "You have been doing very well, so the next quiz is a little harder"
		case accuracy < 0.4:
			difficulty = types.DifficultyEasy
			reason = "An easier quiz to rebuild confidence"
		}
	}

	return types.QuizDifficultyRecommendation{
		RecommendedType:       recommendedType,
		RecommendedDifficulty: difficulty,
		Reason:                reason,
	}
}

// EmbedMemory folds a text into the memory-embedding space: a hashed
// bag-of-words over the fixed dimension, shifted by the trained
// memory-embedding vector, then L2-normalized. Deterministic for a given
// text and weight snapshot.
func (t *Trainer) EmbedMemory(text string) types.Vector {
	vec := make(types.Vector, types.MemoryEmbeddingVectorLen)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[int(h.Sum32()%uint32(len(vec)))]++
	}
	for i, w := range t.localWeights.MemoryEmbedding {
		if i < len(vec) {
			vec[i] += w
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := 1 / math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) * inv)
		}
	}
	return vec
}

// Weights returns a copy of the current local weights.
func (t *Trainer) Weights() types.ModelWeights {
	return t.localWeights.Clone()
}

// BaseWeights returns a copy of the federated reference snapshot.
func (t *Trainer) BaseWeights() types.ModelWeights {
	return t.baseWeights.Clone()
}

// SetWeights restores a persisted local snapshot, leaving the base reference
// untouched so pending federated deltas stay meaningful.
func (t *Trainer) SetWeights(weights types.ModelWeights) {
	t.localWeights = weights.Clone()
}

// UpdateWeightsFromFederation replaces both the local and base snapshots with
// the aggregated weights, resetting the delta reference point. The input is
// cloned, so the caller's copy stays independent.
func (t *Trainer) UpdateWeightsFromFederation(aggregated types.ModelWeights) {
	t.localWeights = aggregated.Clone()
	t.baseWeights = aggregated.Clone()
}

// TrainingHistory returns the recorded epoch losses.
func (t *Trainer) TrainingHistory() []EpochRecord {
	out := make([]EpochRecord, len(t.history))
	copy(out, t.history)
	return out
}

// pseudoLoss simulates a slowly improving loss around 0.5.
func (t *Trainer) pseudoLoss() float64 {
	loss := 0.5 - t.rng.Float64()*0.1
	return math.Max(0.1, loss)
}

var (
	predictPositiveWords = []string{"happy", "good", "great", "love", "enjoy"}
	predictNegativeWords = []string{"sad", "bad", "worried", "tired"}
)

func keywordValence(text string) float64 {
	var valence float64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if containsWord(predictPositiveWords, word) {
			valence += 0.1
		}
		if containsWord(predictNegativeWords, word) {
			valence -= 0.1
		}
	}
	return clamp(valence)
}

func containsWord(words []string, w string) bool {
	for _, candidate := range words {
		if candidate == w {
			return true
		}
	}
	return false
}

func meanOf(v types.Vector) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += float64(x)
	}
	return sum / float64(len(v))
}

func scoreIf(cond bool, hit, miss float64) float64 {
	if cond {
		return hit
	}
	return miss
}

func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

package types

import "time"

// Task names one model the pipeline personalizes.
type Task string

const (
	TaskEmotion                Task = "emotion"
	TaskQuizPersonalization    Task = "quiz_personalization"
	TaskActivityRecommendation Task = "activity_recommendation"
	TaskMoodForecast           Task = "mood_forecast"
	TaskSpeechTrend            Task = "speech_trend"
	TaskMemoryEmbedding        Task = "memory_embedding"
)

// Tasks lists every task in a stable order.
var Tasks = []Task{
	TaskEmotion,
	TaskQuizPersonalization,
	TaskActivityRecommendation,
	TaskMoodForecast,
	TaskSpeechTrend,
	TaskMemoryEmbedding,
}

// Baseline vector lengths per task. Lengths are fixed for the lifetime of a
// weights object.
const (
	EmotionVectorLen                = 100
	QuizPersonalizationVectorLen    = 50
	ActivityRecommendationVectorLen = 75
	MoodForecastVectorLen           = 60
	SpeechTrendVectorLen            = 40
	MemoryEmbeddingVectorLen        = 200
)

// Vector is one task's parameter vector. It serializes as a plain JSON array,
// which round-trips losslessly for finite float32 values.
type Vector []float32

// Clone returns an independent copy. A nil vector stays nil.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// ModelWeights bundles the per-task vectors with a version tag.
type ModelWeights struct {
	Emotion                Vector    `json:"emotion_model,omitempty"`
	QuizPersonalization    Vector    `json:"quiz_personalization_model,omitempty"`
	ActivityRecommendation Vector    `json:"activity_recommendation_model,omitempty"`
	MoodForecast           Vector    `json:"mood_forecast_model,omitempty"`
	SpeechTrend            Vector    `json:"speech_trend_model,omitempty"`
	MemoryEmbedding        Vector    `json:"memory_embedding_model,omitempty"`
	Version                string    `json:"version"`
	Timestamp              time.Time `json:"timestamp"`
}

// NewBaselineWeights returns the deterministic zero-initialized baseline.
func NewBaselineWeights(now time.Time) ModelWeights {
	return ModelWeights{
		Emotion:                make(Vector, EmotionVectorLen),
		QuizPersonalization:    make(Vector, QuizPersonalizationVectorLen),
		ActivityRecommendation: make(Vector, ActivityRecommendationVectorLen),
		MoodForecast:           make(Vector, MoodForecastVectorLen),
		SpeechTrend:            make(Vector, SpeechTrendVectorLen),
		MemoryEmbedding:        make(Vector, MemoryEmbeddingVectorLen),
		Version:                "1.0.0",
		Timestamp:              now,
	}
}

// TaskVector returns the vector for a task, or nil when the task is absent.
func (w ModelWeights) TaskVector(task Task) Vector {
	switch task {
	case TaskEmotion:
		return w.Emotion
	case TaskQuizPersonalization:
		return w.QuizPersonalization
	case TaskActivityRecommendation:
		return w.ActivityRecommendation
	case TaskMoodForecast:
		return w.MoodForecast
	case TaskSpeechTrend:
		return w.SpeechTrend
	case TaskMemoryEmbedding:
		return w.MemoryEmbedding
	}
	return nil
}

// SetTaskVector stores a vector under a task.
func (w *ModelWeights) SetTaskVector(task Task, v Vector) {
	switch task {
	case TaskEmotion:
		w.Emotion = v
	case TaskQuizPersonalization:
		w.QuizPersonalization = v
	case TaskActivityRecommendation:
		w.ActivityRecommendation = v
	case TaskMoodForecast:
		w.MoodForecast = v
	case TaskSpeechTrend:
		w.SpeechTrend = v
	case TaskMemoryEmbedding:
		w.MemoryEmbedding = v
	}
}

// Clone deep-copies every vector so the result shares no storage with the
// receiver. Combining operations rely on this to keep base and local snapshots
// from aliasing.
func (w ModelWeights) Clone() ModelWeights {
	out := w
	for _, task := range Tasks {
		out.SetTaskVector(task, w.TaskVector(task).Clone())
	}
	return out
}

// FederatedUpdate is one client's contribution for a federated round. It is
// ephemeral: constructed, optionally aggregated, then discarded.
type FederatedUpdate struct {
	Deltas      map[Task]Vector `json:"deltas"`
	ClientID    string          `json:"client_id"`
	SampleCount int             `json:"sample_count"`
	Round       int             `json:"round"`
	Timestamp   time.Time       `json:"timestamp"`
}

// DifferentialPrivacyConfig controls the simulated privacy transforms applied
// to a weight delta before sharing. Not a calibrated (epsilon, delta)
// guarantee; see the federated package.
type DifferentialPrivacyConfig struct {
	Enabled    bool    `json:"enabled"`
	NoiseScale float64 `json:"noise_scale"`
	ClipNorm   float64 `json:"clip_norm"`
}

// TrainingConfig parameterizes one fine-tuning run.
type TrainingConfig struct {
	LearningRate        float64                    `json:"learning_rate"`
	BatchSize           int                        `json:"batch_size"`
	Epochs              int                        `json:"epochs"`
	UseLocalData        bool                       `json:"use_local_data"`
	FederatedRound      int                        `json:"federated_round,omitempty"`
	DifferentialPrivacy *DifferentialPrivacyConfig `json:"differential_privacy,omitempty"`
}

// DefaultTrainingConfig returns the defaults used by the application shell.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		LearningRate: 0.01,
		BatchSize:    16,
		Epochs:       3,
		UseLocalData: true,
		DifferentialPrivacy: &DifferentialPrivacyConfig{
			Enabled:    true,
			NoiseScale: 0.1,
			ClipNorm:   1.0,
		},
	}
}

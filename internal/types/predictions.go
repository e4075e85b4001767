package types

import "time"

// SafetyFlags is the transient output of a safety scan. It is surfaced to the
// caller for immediate UI handling and never persisted.
type SafetyFlags struct {
	CrisisLanguage      bool `json:"crisis_language,omitempty"`
	SignificantMoodDrop bool `json:"significant_mood_drop,omitempty"`
	UnusualPattern      bool `json:"unusual_pattern,omitempty"`
	RequiresAttention   bool `json:"requires_attention,omitempty"`
}

// Empty reports whether no flag is set.
func (f SafetyFlags) Empty() bool {
	return !f.CrisisLanguage && !f.SignificantMoodDrop && !f.UnusualPattern && !f.RequiresAttention
}

// EmotionPrediction is the per-class emotion estimate for a text.
type EmotionPrediction struct {
	Valence float64 `json:"valence"`
	Arousal float64 `json:"arousal"`
	// Classes holds probabilities for calm/joy/sad/anxious/neutral,
	// normalized to sum to 1.
	Classes map[MoodLabel]float64 `json:"classes"`
}

// Activity names a suggested companion activity.
type Activity string

const (
	ActivityPhotoReview   Activity = "photo_review"
	ActivityMusicClip     Activity = "music_clip"
	ActivityMemoryGame    Activity = "memory_game"
	ActivityCaregiverCall Activity = "caregiver_call"
	ActivityMoodEntry     Activity = "mood_entry"
	ActivityRelaxation    Activity = "relaxation"
)

// ActivityRecommendation is a suggested next activity with an explainable
// reason string.
type ActivityRecommendation struct {
	Activity   Activity `json:"activity"`
	Confidence float64  `json:"confidence"`
	Reason     string   `json:"reason"`
	Priority   int      `json:"priority"`
}

// MoodForecastPoint is one day of a mood forecast.
type MoodForecastPoint struct {
	Date                  time.Time `json:"date"`
	PredictedMood         string    `json:"predicted_mood"` // low | moderate | high
	Confidence            float64   `json:"confidence"`
	SuggestedIntervention string    `json:"suggested_intervention,omitempty"`
}

// MoodForecast is a 7-day mood outlook.
type MoodForecast struct {
	Next7Days []MoodForecastPoint `json:"next_7_days"`
}

// QuizDifficultyRecommendation suggests the next quiz type and difficulty.
type QuizDifficultyRecommendation struct {
	RecommendedType       QuizType   `json:"recommended_type"`
	RecommendedDifficulty Difficulty `json:"recommended_difficulty"`
	Reason                string     `json:"reason"`
}

// MemoryRanking scores one stored memory for review ordering.
type MemoryRanking struct {
	MemoryID       string  `json:"memory_id"`
	RelevanceScore float64 `json:"relevance_score"`
	ComfortScore   float64 `json:"comfort_score"`
	Reason         string  `json:"reason"`
}

// TrainingStats summarizes the accumulated history for the settings screen.
type TrainingStats struct {
	TotalSamples int             `json:"total_samples"`
	TextEntries  int             `json:"text_entries"`
	QuizSignals  int             `json:"quiz_signals"`
	Interactions int             `json:"interactions"`
	Consent      ConsentSettings `json:"consent"`
}

// Memory is a stored memory record with an embedding for similarity ranking.
type Memory struct {
	ID        int       `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Comfort   float64   `json:"comfort_score"` // 0-1, how soothing review of this memory has been
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Package types defines the data carriers shared across the personalization
// pipeline: consent settings, training signals, model weights, and the
// prediction outputs surfaced to the application.
package types

import "time"

// TextSource tags where a text entry came from.
type TextSource string

const (
	SourceMoodNote         TextSource = "mood_note"
	SourceSpeechTranscript TextSource = "speech_transcript"
	SourceQuizAnswer       TextSource = "quiz_answer"
)

// MoodLabel is the coarse mood class derived from sentiment.
type MoodLabel string

const (
	MoodCalm    MoodLabel = "calm"
	MoodJoy     MoodLabel = "joy"
	MoodSad     MoodLabel = "sad"
	MoodAnxious MoodLabel = "anxious"
	MoodNeutral MoodLabel = "neutral"
)

// SignalKind discriminates the signal record types.
type SignalKind string

const (
	KindTextEntry          SignalKind = "text_entry"
	KindAudioFeatures      SignalKind = "audio_features"
	KindInteractionPattern SignalKind = "interaction_pattern"
	KindQuizSignal         SignalKind = "quiz_signal"
	KindCaregiverInsight   SignalKind = "caregiver_insight"
	KindContextSnapshot    SignalKind = "context_snapshot"
)

// TextEntry is one free-text observation with derived affect.
type TextEntry struct {
	Text      string     `json:"text"`
	Source    TextSource `json:"source"`
	Timestamp time.Time  `json:"timestamp"`
	MoodLabel MoodLabel  `json:"mood_label,omitempty"`
	// Valence and Arousal are keyword estimates in [-1,1].
	Valence *float64 `json:"valence,omitempty"`
	Arousal *float64 `json:"arousal,omitempty"`
}

func (TextEntry) Kind() SignalKind { return KindTextEntry }

// AudioFeatures carries derived prosody scalars. Raw audio never enters the
// pipeline; only these features do.
type AudioFeatures struct {
	SpeechRate       float64   `json:"speech_rate"` // words per minute
	PauseCount       int       `json:"pause_count"`
	AvgPauseDuration float64   `json:"avg_pause_duration"` // seconds
	Timestamp        time.Time `json:"timestamp"`
}

func (AudioFeatures) Kind() SignalKind { return KindAudioFeatures }

// InteractionPattern records engagement with a single prompt.
type InteractionPattern struct {
	PromptID   string    `json:"prompt_id"`
	PromptType string    `json:"prompt_type"`
	Engaged    bool      `json:"engaged"`
	DwellTime  int64     `json:"dwell_time"` // milliseconds
	Completion bool      `json:"completion"`
	TimeOfDay  time.Time `json:"time_of_day"`
	DayOfWeek  string    `json:"day_of_week"`
}

func (InteractionPattern) Kind() SignalKind { return KindInteractionPattern }

// QuizType names a cognitive quiz category.
type QuizType string

const (
	QuizNameRecall        QuizType = "nameRecall"
	QuizObjectRecognition QuizType = "objectRecognition"
	QuizMemoryRecall      QuizType = "memoryRecall"
	QuizSequenceRecall    QuizType = "sequenceRecall"
	QuizSpatialRecall     QuizType = "spatialRecall"
)

// Difficulty is a quiz difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuizSignal records one quiz outcome.
type QuizSignal struct {
	QuizType        QuizType   `json:"quiz_type"`
	Difficulty      Difficulty `json:"difficulty"`
	Correct         bool       `json:"correct"`
	ResponseLatency int64      `json:"response_latency"` // milliseconds
	HintsUsed       int        `json:"hints_used"`
	Timestamp       time.Time  `json:"timestamp"`
}

func (QuizSignal) Kind() SignalKind { return KindQuizSignal }

// InsightCategory classifies a caregiver observation.
type InsightCategory string

const (
	InsightMemory     InsightCategory = "memory"
	InsightCalm       InsightCategory = "calm"
	InsightEngagement InsightCategory = "engagement"
	InsightSafety     InsightCategory = "safety"
	InsightRoutine    InsightCategory = "routine"
)

// CaregiverInsight is a tagged observation entered by a caregiver.
type CaregiverInsight struct {
	Tag       string          `json:"tag"`
	Category  InsightCategory `json:"category"`
	Positive  bool            `json:"positive"` // worked well vs. overstimulating
	Context   string          `json:"context"`
	Timestamp time.Time       `json:"timestamp"`
}

func (CaregiverInsight) Kind() SignalKind { return KindCaregiverInsight }

// ContextSnapshot captures ambient session context, collected only with the
// collectContext consent.
type ContextSnapshot struct {
	DayOfWeek   string    `json:"day_of_week"`
	SessionTime time.Time `json:"session_time"`
	RecentSleep *float64  `json:"recent_sleep,omitempty"` // hours
	Adherence   *int      `json:"adherence,omitempty"`    // days of streak
}

func (ContextSnapshot) Kind() SignalKind { return KindContextSnapshot }

// TrainingBatch is one timestamped, user-scoped bundle of collected signals.
type TrainingBatch struct {
	TextEntries         []TextEntry          `json:"text_entries,omitempty"`
	AudioFeatures       []AudioFeatures      `json:"audio_features,omitempty"`
	InteractionPatterns []InteractionPattern `json:"interaction_patterns,omitempty"`
	QuizSignals         []QuizSignal         `json:"quiz_signals,omitempty"`
	CaregiverInsights   []CaregiverInsight   `json:"caregiver_insights,omitempty"`
	Context             *ContextSnapshot     `json:"context,omitempty"`
	Timestamp           time.Time            `json:"timestamp"`
	UserID              string               `json:"user_id"`
}

// JournalEntry is the inbound shape of a journal/mood-tracker entry. Sentiment
// is computed by the surrounding application (see the sentiment package).
type JournalEntry struct {
	Content   string    `json:"content"`
	Sentiment string    `json:"sentiment"` // positive | negative | neutral
	Date      time.Time `json:"date"`
	Keywords  []string  `json:"keywords,omitempty"`
}

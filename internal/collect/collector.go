// Package collect converts raw application events into typed training
// signals, honoring the user's consent settings. Every collect method returns
// a nil signal when consent denies the collection; callers treat nil as
// "nothing to record", not as an error.
package collect

import (
	"strings"
	"time"

	"github.com/luminacare/memory-lane/internal/types"
)

// Affect keyword lists. Each hit contributes a fixed +-0.2 increment, clamped
// to [-1,1].
var (
	positiveWords    = []string{"happy", "good", "great", "love", "enjoy", "wonderful"}
	negativeWords    = []string{"sad", "bad", "worried", "anxious", "tired", "difficult"}
	highArousalWords = []string{"excited", "energetic", "worried", "anxious", "stressed"}
	lowArousalWords  = []string{"calm", "relaxed", "peaceful", "tired", "sleepy"}
)

const affectIncrement = 0.2

// Collector converts one observed event into zero-or-one typed signal. It is
// immutable; a consent change means constructing a new Collector.
type Collector struct {
	userID  string
	consent types.ConsentSettings
	now     func() time.Time
}

// NewCollector returns a Collector bound to a user and consent snapshot.
func NewCollector(userID string, consent types.ConsentSettings) *Collector {
	return &Collector{userID: userID, consent: consent, now: time.Now}
}

// WithClock overrides the collection clock. Used by tests and simulations.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	clone := *c
	clone.now = now
	return &clone
}

// CollectTextEntry derives a text signal from a journal entry. The entry's
// own date becomes the signal timestamp. Returns nil without localTraining
// consent.
func (c *Collector) CollectTextEntry(entry types.JournalEntry, source types.TextSource) *types.TextEntry {
	if !c.consent.LocalTraining {
		return nil
	}

	valence, arousal := estimateAffect(entry.Content)
	return &types.TextEntry{
		Text:      entry.Content,
		Source:    source,
		Timestamp: entry.Date,
		MoodLabel: mapSentimentToMood(entry.Sentiment),
		Valence:   &valence,
		Arousal:   &arousal,
	}
}

// CollectAnnotatedTextEntry is CollectTextEntry with an externally supplied
// affect estimate, used when an LLM annotator refines the keyword heuristic.
// The estimate is clamped to [-1,1] like the keyword path.
func (c *Collector) CollectAnnotatedTextEntry(entry types.JournalEntry, source types.TextSource, valence, arousal float64) *types.TextEntry {
	if !c.consent.LocalTraining {
		return nil
	}

	v := clamp(valence)
	a := clamp(arousal)
	return &types.TextEntry{
		Text:      entry.Content,
		Source:    source,
		Timestamp: entry.Date,
		MoodLabel: mapSentimentToMood(entry.Sentiment),
		Valence:   &v,
		Arousal:   &a,
	}
}

// CollectAudioFeatures derives prosody scalars from speech metadata. Raw
// audio never enters the pipeline. Requires both collectAudioFeatures and
// localTraining consent. duration is in seconds.
func (c *Collector) CollectAudioFeatures(duration float64, wordCount, pauseCount int) *types.AudioFeatures {
	if !c.consent.CollectAudioFeatures || !c.consent.LocalTraining {
		return nil
	}
	if duration <= 0 {
		return nil
	}

	return &types.AudioFeatures{
		SpeechRate:       float64(wordCount) / duration * 60,
		PauseCount:       pauseCount,
		AvgPauseDuration: duration / float64(pauseCount+1),
		Timestamp:        c.now(),
	}
}

// CollectInteractionPattern packages a prompt engagement event.
func (c *Collector) CollectInteractionPattern(promptID, promptType string, engaged bool, dwellTime int64, completed bool) *types.InteractionPattern {
	if !c.consent.LocalTraining {
		return nil
	}

	now := c.now()
	return &types.InteractionPattern{
		PromptID:   promptID,
		PromptType: promptType,
		Engaged:    engaged,
		DwellTime:  dwellTime,
		Completion: completed,
		TimeOfDay:  now,
		DayOfWeek:  now.Weekday().String(),
	}
}

// CollectQuizSignal packages one quiz outcome. Difficulty defaults to medium.
func (c *Collector) CollectQuizSignal(quizType types.QuizType, correct bool, responseLatency int64, hintsUsed int, difficulty types.Difficulty) *types.QuizSignal {
	if !c.consent.LocalTraining {
		return nil
	}

	if difficulty == "" {
		difficulty = types.DifficultyMedium
	}
	return &types.QuizSignal{
		QuizType:        quizType,
		Difficulty:      difficulty,
		Correct:         correct,
		ResponseLatency: responseLatency,
		HintsUsed:       hintsUsed,
		Timestamp:       c.now(),
	}
}

// CollectCaregiverInsight packages a caregiver observation. Requires
// caregiverView consent.
func (c *Collector) CollectCaregiverInsight(tag string, category types.InsightCategory, positive bool, context string) *types.CaregiverInsight {
	if !c.consent.CaregiverView {
		return nil
	}

	return &types.CaregiverInsight{
		Tag:       tag,
		Category:  category,
		Positive:  positive,
		Context:   context,
		Timestamp: c.now(),
	}
}

// CollectContext captures the ambient session context. Requires
// collectContext consent.
func (c *Collector) CollectContext() *types.ContextSnapshot {
	if !c.consent.CollectContext {
		return nil
	}

	now := c.now()
	return &types.ContextSnapshot{
		DayOfWeek:   now.Weekday().String(),
		SessionTime: now,
	}
}

// BundleInput is the optional signal arrays a batch may carry.
type BundleInput struct {
	TextEntries         []types.TextEntry
	AudioFeatures       []types.AudioFeatures
	InteractionPatterns []types.InteractionPattern
	QuizSignals         []types.QuizSignal
	CaregiverInsights   []types.CaregiverInsight
	Context             *types.ContextSnapshot
}

// BundleTrainingData assembles collected signals into one timestamped,
// user-scoped batch. Returns nil without localTraining consent.
func (c *Collector) BundleTrainingData(in BundleInput) *types.TrainingBatch {
	if !c.consent.LocalTraining {
		return nil
	}

	return &types.TrainingBatch{
		TextEntries:         in.TextEntries,
		AudioFeatures:       in.AudioFeatures,
		InteractionPatterns: in.InteractionPatterns,
		QuizSignals:         in.QuizSignals,
		CaregiverInsights:   in.CaregiverInsights,
		Context:             in.Context,
		Timestamp:           c.now(),
		UserID:              c.userID,
	}
}

func mapSentimentToMood(sentiment string) types.MoodLabel {
	switch sentiment {
	case "positive":
		return types.MoodJoy
	case "negative":
		return types.MoodSad
	default:
		return types.MoodNeutral
	}
}

// estimateAffect scores valence and arousal by fixed keyword lists.
func estimateAffect(text string) (valence, arousal float64) {
	lower := strings.ToLower(text)

	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			valence += affectIncrement
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			valence -= affectIncrement
		}
	}
	for _, w := range highArousalWords {
		if strings.Contains(lower, w) {
			arousal += affectIncrement
		}
	}
	for _, w := range lowArousalWords {
		if strings.Contains(lower, w) {
			arousal -= affectIncrement
		}
	}

	return clamp(valence), clamp(arousal)
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

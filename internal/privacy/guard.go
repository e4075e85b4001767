// Package privacy enforces the safety and privacy invariants of the
// personalization pipeline: crisis-language screening, mood-drop detection,
// PII redaction, and consent validation.
package privacy

import (
	"math"
	"regexp"
	"strings"

	"github.com/luminacare/memory-lane/internal/types"
)

// crisisKeywords are matched as case-insensitive substrings. Exact-phrase
// matching misses paraphrases; the list is a variable so the application can
// extend it deliberately.
var crisisKeywords = []string{
	"hurt myself",
	"suicide",
	"want to die",
	"end it all",
	"no reason to live",
	"hopeless",
	"give up",
}

var (
	emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	// Simplified street-address shape: number followed by words ending in a
	// street suffix.
	addressPattern = regexp.MustCompile(`(?i)\d+\s+[\w\s]+(?:street|st|avenue|ave|road|rd|drive|dr)`)
)

// Operation names a consent-gated action.
type Operation string

const (
	OpLocalTraining   Operation = "localTraining"
	OpShareAggregates Operation = "shareAggregates"
	OpCollectAudio    Operation = "collectAudio"
	OpCollectContext  Operation = "collectContext"
	OpCaregiverView   Operation = "caregiverView"
)

// Guard screens data before it crosses into persistent or shared state. It is
// immutable; updating consent means constructing a new Guard.
type Guard struct {
	consent types.ConsentSettings
}

// NewGuard returns a Guard bound to a consent snapshot.
func NewGuard(consent types.ConsentSettings) *Guard {
	return &Guard{consent: consent}
}

// CheckCrisisLanguage scans text for crisis phrases. It is deliberately not
// consent-gated: safety checks run on every entry.
func (g *Guard) CheckCrisisLanguage(text string) types.SafetyFlags {
	var flags types.SafetyFlags

	lower := strings.ToLower(text)
	for _, keyword := range crisisKeywords {
		if strings.Contains(lower, keyword) {
			flags.CrisisLanguage = true
			flags.RequiresAttention = true
			break
		}
	}
	return flags
}

// DetectMoodDrop flags a significant drop when the latest score sits more than
// two population standard deviations below the series mean. Fewer than three
// samples, or a constant series, yields empty flags.
func (g *Guard) DetectMoodDrop(recentScores []float64) types.SafetyFlags {
	var flags types.SafetyFlags
	if len(recentScores) < 3 {
		return flags
	}

	var sum float64
	for _, s := range recentScores {
		sum += s
	}
	mean := sum / float64(len(recentScores))

	var variance float64
	for _, s := range recentScores {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(recentScores))
	stdDev := math.Sqrt(variance)

	latest := recentScores[len(recentScores)-1]
	if latest < mean-2*stdDev {
		flags.SignificantMoodDrop = true
		flags.RequiresAttention = true
	}
	return flags
}

// SanitizeBatch returns a copy of the batch with PII redacted from every text
// entry. The transform is pure and idempotent: already-redacted text passes
// through unchanged. Audio and media never reach this path, only derived
// features.
func (g *Guard) SanitizeBatch(batch types.TrainingBatch) types.TrainingBatch {
	if len(batch.TextEntries) == 0 {
		return batch
	}
	sanitized := make([]types.TextEntry, len(batch.TextEntries))
	for i, entry := range batch.TextEntries {
		entry.Text = RemovePII(entry.Text)
		sanitized[i] = entry
	}
	batch.TextEntries = sanitized
	return batch
}

// RemovePII replaces email, phone, and street-address substrings with
// placeholder tokens.
func RemovePII(text string) string {
	out := emailPattern.ReplaceAllString(text, "[EMAIL]")
	out = phonePattern.ReplaceAllString(out, "[PHONE]")
	out = addressPattern.ReplaceAllString(out, "[ADDRESS]")
	return out
}

// ValidateConsent is the single source of truth mapping an operation to its
// consent flag. Unknown operations are denied.
func (g *Guard) ValidateConsent(op Operation) bool {
	switch op {
	case OpLocalTraining:
		return g.consent.LocalTraining
	case OpShareAggregates:
		return g.consent.ShareAggregates
	case OpCollectAudio:
		return g.consent.CollectAudioFeatures
	case OpCollectContext:
		return g.consent.CollectContext
	case OpCaregiverView:
		return g.consent.CaregiverView
	}
	return false
}

// GenerateExplanation converts an internal reason code into user-facing
// language. Reason substrings map to clauses joined with commas; anything
// unrecognized falls back to a generic explanation.
func (g *Guard) GenerateExplanation(reason string) string {
	var clauses []string

	if strings.Contains(reason, "time") {
		clauses = append(clauses, "Based on the time of day")
	}
	if strings.Contains(reason, "mood") {
		clauses = append(clauses, "Based on your recent mood patterns")
	}
	if strings.Contains(reason, "preference") {
		clauses = append(clauses, "Based on activities you've enjoyed")
	}
	if strings.Contains(reason, "caregiver") {
		clauses = append(clauses, "Based on caregiver insights")
	}

	if len(clauses) == 0 {
		return "Suggested based on your activity patterns"
	}
	return strings.Join(clauses, ", ") + "."
}

// ShouldShareWithCaregiver reports whether a batch may be surfaced on the
// caregiver dashboard: caregiver view must be on and aggregate sharing off.
func (g *Guard) ShouldShareWithCaregiver() bool {
	return g.consent.CaregiverView && !g.consent.ShareAggregates
}

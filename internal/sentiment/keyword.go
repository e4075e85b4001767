package sentiment

import (
	"context"
	"strings"
)

var (
	positiveKeywords = []string{"happy", "good", "great", "love", "enjoy", "wonderful"}
	negativeKeywords = []string{"sad", "bad", "worried", "anxious", "tired", "difficult"}
)

// KeywordAnalyzer is the deterministic fallback used when no LLM is
// configured. It counts fixed positive and negative keywords.
type KeywordAnalyzer struct{}

// NewKeywordAnalyzer returns a KeywordAnalyzer.
func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

// Analyze labels text by keyword balance. It never fails.
func (a *KeywordAnalyzer) Analyze(_ context.Context, text string) (Label, error) {
	lower := strings.ToLower(text)

	score := 0
	for _, w := range positiveKeywords {
		if strings.Contains(lower, w) {
			score++
		}
	}
	for _, w := range negativeKeywords {
		if strings.Contains(lower, w) {
			score--
		}
	}

	switch {
	case score > 0:
		return LabelPositive, nil
	case score < 0:
		return LabelNegative, nil
	default:
		return LabelNeutral, nil
	}
}

// Package sentiment classifies journal text into the three-way sentiment the
// data collector consumes, and optionally annotates text with valence/arousal
// estimates via an LLM.
package sentiment

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// Label is a sentiment label.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
)

// Analyzer classifies text sentiment.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Label, error)
}

const analyzerInstruction = `You are a sentiment analyzer. Return exactly one of these three labels: positive, negative, neutral. Do not output anything else.`

// LLMAnalyzer classifies sentiment through an ADK model.
type LLMAnalyzer struct {
	model model.LLM
}

// NewLLMAnalyzer returns an LLMAnalyzer.
func NewLLMAnalyzer(m model.LLM) *LLMAnalyzer {
	return &LLMAnalyzer{model: m}
}

// Analyze returns the sentiment label for text.
func (a *LLMAnalyzer) Analyze(ctx context.Context, text string) (Label, error) {
	if a == nil || a.model == nil {
		return LabelNeutral, fmt.Errorf("sentiment analyzer not configured")
	}

	if strings.TrimSpace(text) == "" {
		return LabelNeutral, nil
	}

	req := &model.LLMRequest{
		Contents: []*genai.Content{
			genai.NewContentFromText(analyzerInstruction, "system"),
			genai.NewContentFromText(text, "user"),
		},
	}

	seq := a.model.GenerateContent(ctx, req, false)
	var resp *model.LLMResponse
	var err error
	seq(func(r *model.LLMResponse, e error) bool {
		resp = r
		err = e
		return false
	})
	if err != nil {
		return LabelNeutral, err
	}

	return parseLabel(extractText(resp)), nil
}

func extractText(resp *model.LLMResponse) string {
	if resp == nil || resp.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func parseLabel(raw string) Label {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "positive":
		return LabelPositive
	case "negative":
		return LabelNegative
	default:
		return LabelNeutral
	}
}

package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"sync/atomic"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const (
	annotatorAppName = "memory_lane_affect"
	annotatorUserID  = "affect_annotator"
)

const annotatorInstruction = `You are an affect annotator for a memory-care journal.
Given one journal entry, estimate:
1. label: overall sentiment, one of positive, negative, neutral
2. valence: pleasantness of the text in [-1, 1]
3. arousal: emotional activation in [-1, 1]

Output requirements:
- Return a valid JSON object that matches the output schema
- Do not include any extra keys or text outside the JSON object`

// Affect is the annotator's structured estimate for one text.
type Affect struct {
	Label   Label   `json:"label"`
	Valence float64 `json:"valence"`
	Arousal float64 `json:"arousal"`
}

// AffectAnnotator estimates valence/arousal with a structured-output LLM
// agent. The keyword estimator in the collect package remains the default;
// this is an optional refinement the application may enable.
type AffectAnnotator struct {
	runner         annotatorRunner
	sessionService session.Service
	counter        uint64
}

type annotatorRunner interface {
	Run(ctx context.Context, userID, sessionID string, msg *genai.Content, cfg agent.RunConfig) iter.Seq2[*session.Event, error]
}

// affectJSONSchema declares the output contract; it is embedded in the agent
// instruction so OpenAI-compatible backends honor it too.
func affectJSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"label": {
				Type: "string",
				Enum: []any{"positive", "negative", "neutral"},
			},
			"valence": {
				Type:        "number",
				Description: "pleasantness in [-1,1]",
			},
			"arousal": {
				Type:        "number",
				Description: "activation in [-1,1]",
			},
		},
		Required: []string{"label", "valence", "arousal"},
	}
}

func affectOutputSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"label":   {Type: genai.TypeString},
			"valence": {Type: genai.TypeNumber},
			"arousal": {Type: genai.TypeNumber},
		},
		Required: []string{"label", "valence", "arousal"},
	}
}

// NewAffectAnnotator builds the annotator agent on a Gemini model.
func NewAffectAnnotator(ctx context.Context, apiKey, modelName string) (*AffectAnnotator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google api key is required for affect annotation")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	m, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create annotator model: %w", err)
	}

	schemaJSON, err := json.Marshal(affectJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to encode affect schema: %w", err)
	}

	llmAgent, err := llmagent.New(llmagent.Config{
		Name:            "affect_annotator",
		Description:     "journal affect annotation agent",
		Model:           m,
		Instruction:     annotatorInstruction + "\n\nOutput schema:\n" + string(schemaJSON),
		OutputSchema:    affectOutputSchema(),
		IncludeContents: llmagent.IncludeContentsNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create affect annotator agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        annotatorAppName,
		Agent:          llmAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create affect annotator runner: %w", err)
	}

	return &AffectAnnotator{
		runner:         r,
		sessionService: sessionService,
	}, nil
}

// Annotate runs one annotation turn and decodes the structured result.
func (a *AffectAnnotator) Annotate(ctx context.Context, text string) (Affect, error) {
	if strings.TrimSpace(text) == "" {
		return Affect{Label: LabelNeutral}, nil
	}

	sessID := fmt.Sprintf("affect-%d", atomic.AddUint64(&a.counter, 1))
	if _, err := a.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   annotatorAppName,
		UserID:    annotatorUserID,
		SessionID: sessID,
	}); err != nil {
		return Affect{}, fmt.Errorf("failed to create annotator session: %w", err)
	}

	msg := genai.NewContentFromText(text, "user")
	events := a.runner.Run(ctx, annotatorUserID, sessID, msg, agent.RunConfig{
		StreamingMode: agent.StreamingModeNone,
	})

	var last string
	for event, err := range events {
		if err != nil {
			return Affect{}, err
		}
		if event == nil || event.Content == nil || event.Author == "user" {
			continue
		}
		var sb strings.Builder
		for _, part := range event.Content.Parts {
			if part != nil && part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			last = text
		}
		if event.IsFinalResponse() {
			break
		}
	}
	if last == "" {
		return Affect{}, fmt.Errorf("empty annotation response")
	}

	return parseAffectJSON(last)
}

// parseAffectJSON extracts the JSON object from a model reply and clamps the
// numeric fields to [-1,1].
func parseAffectJSON(raw string) (Affect, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	var affect Affect
	if err := json.Unmarshal([]byte(clean), &affect); err != nil {
		return Affect{}, fmt.Errorf("failed to parse affect json: %w", err)
	}
	affect.Label = parseLabel(string(affect.Label))
	affect.Valence = clampUnit(affect.Valence)
	affect.Arousal = clampUnit(affect.Arousal)
	return affect, nil
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIAnalyzer classifies sentiment through any OpenAI-compatible chat
// endpoint.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

// NewOpenAIAnalyzer builds an analyzer against an OpenAI-compatible API.
// baseURL may be empty for the default endpoint.
func NewOpenAIAnalyzer(apiKey, baseURL, modelName string) (*OpenAIAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAIAnalyzer{client: &client, model: modelName}, nil
}

// Analyze returns the sentiment label for text.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, text string) (Label, error) {
	if strings.TrimSpace(text) == "" {
		return LabelNeutral, nil
	}

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(analyzerInstruction),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		slog.Error("failed to call sentiment model", "error", err.Error())
		return LabelNeutral, fmt.Errorf("failed to call sentiment model: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return LabelNeutral, nil
	}

	return parseLabel(resp.Choices[0].Message.Content), nil
}

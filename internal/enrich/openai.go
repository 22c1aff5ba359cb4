package enrich

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// OpenAIWriter rewrites special-feature lines via the OpenAI chat API.
// Implements Completer.
type OpenAIWriter struct {
	client  *openai.Client
	model   string
	enabled bool
}

// NewOpenAIWriter constructs an OpenAIWriter. An empty API key returns a
// disabled writer whose calls fail fast, which the enricher absorbs.
func NewOpenAIWriter(apiKey, model string) *OpenAIWriter {
	if apiKey == "" {
		return &OpenAIWriter{enabled: false}
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &OpenAIWriter{
		client:  &client,
		model:   model,
		enabled: true,
	}
}

// IsEnabled reports whether the writer has credentials.
func (w *OpenAIWriter) IsEnabled() bool {
	return w.enabled
}

const specialElementSystemPrompt = `You write one short sentence per activity describing its most special element.

Rules:
- Only reference the supplied highlight strings. Never invent facts.
- One sentence per activity, under 20 words.
- Skip activities that have no highlights.

Return ONLY a valid JSON array, one element per activity:
[{"id": "<activity id>", "specialElement": "<sentence>"}]`

type specialElement struct {
	ID             string `json:"id"`
	SpecialElement string `json:"specialElement"`
}

// SpecialElements asks the model for one sentence per candidate, grounded
// in the verbatim provider highlights. The response must parse as the
// expected JSON array shape or the call is reported as failed.
func (w *OpenAIWriter) SpecialElements(ctx context.Context, vibe string, items []HighlightItem) (map[string]string, error) {
	if !w.enabled {
		return nil, fmt.Errorf("openai writer is not configured")
	}
	if len(items) == 0 {
		return map[string]string{}, nil
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshaling highlight items: %w", err)
	}

	userPrompt := fmt.Sprintf("Group vibe: %s\n\nActivities with their real highlights:\n%s", vibe, payload)

	completion, err := w.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(specialElementSystemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       shared.ChatModel(w.model),
		Temperature: param.NewOpt(0.3),
		MaxTokens:   param.NewOpt[int64](800),
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai completion: no choices returned")
	}

	var elements []specialElement
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &elements); err != nil {
		return nil, fmt.Errorf("openai completion: response is not the expected JSON array: %w", err)
	}

	out := make(map[string]string, len(elements))
	for _, el := range elements {
		if el.ID == "" {
			return nil, fmt.Errorf("openai completion: element without id")
		}
		out[el.ID] = el.SpecialElement
	}

	return out, nil
}

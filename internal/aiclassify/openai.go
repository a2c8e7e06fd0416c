package aiclassify

import (
	"context"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"

	"github.com/sells-group/leadfilter-cli/internal/model"
)

// OpenAIBackend classifies via the OpenAI chat completions API, the
// alternate-vendor path when no Anthropic key is configured.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend builds the OpenAI backend. baseURL overrides the
// API endpoint when non-empty (Azure deployments, local gateways).
func NewOpenAIBackend(apiKey, modelID, baseURL string) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  modelID,
	}
}

// Name implements Backend.
func (b *OpenAIBackend) Name() string { return "openai" }

// ClassifyOne implements Backend.
func (b *OpenAIBackend) ClassifyOne(ctx context.Context, lead model.Lead, serviceType string) (model.Verdict, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     b.model,
		MaxTokens: 256,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(lead, serviceType)},
		},
	})
	if err != nil {
		return model.Verdict{}, eris.Wrapf(err, "aiclassify: openai classify %q", lead.Name)
	}
	if len(resp.Choices) == 0 {
		return model.Verdict{}, eris.New("aiclassify: openai returned no choices")
	}

	provider, confidence, reason, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return model.Verdict{}, err
	}

	return model.Verdict{
		BusinessName:      lead.Name,
		Category:          serviceType,
		IsServiceProvider: provider,
		Confidence:        confidence,
		Reason:            reason,
		ModelUsed:         resp.Model,
	}, nil
}

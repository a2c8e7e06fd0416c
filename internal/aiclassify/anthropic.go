package aiclassify

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadfilter-cli/internal/model"
	"github.com/sells-group/leadfilter-cli/pkg/anthropic"
)

// AnthropicBackend classifies via a direct Anthropic API call.
type AnthropicBackend struct {
	client anthropic.Client
	model  string
	system []anthropic.SystemBlock
}

// NewAnthropicBackend builds the direct Anthropic backend. The system
// prompt is wrapped in a cached block since it is identical for every
// request in a run.
func NewAnthropicBackend(client anthropic.Client, modelID string) *AnthropicBackend {
	return &AnthropicBackend{
		client: client,
		model:  modelID,
		system: anthropic.BuildCachedSystemBlocks(systemPrompt),
	}
}

// Name implements Backend.
func (b *AnthropicBackend) Name() string { return "anthropic" }

// ClassifyOne implements Backend.
func (b *AnthropicBackend) ClassifyOne(ctx context.Context, lead model.Lead, serviceType string) (model.Verdict, error) {
	resp, err := b.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     b.model,
		MaxTokens: 256,
		System:    b.system,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildUserPrompt(lead, serviceType)},
		},
	})
	if err != nil {
		return model.Verdict{}, eris.Wrapf(err, "aiclassify: anthropic classify %q", lead.Name)
	}

	provider, confidence, reason, err := parseVerdict(extractText(resp))
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

// extractText concatenates all text content blocks from a response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

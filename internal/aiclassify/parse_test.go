package aiclassify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantProvider   bool
		wantConfidence float64
		wantReason     string
		wantErr        bool
	}{
		{
			name:           "plain object",
			text:           `{"is_service_provider": true, "confidence": 0.9, "reason": "builds pools"}`,
			wantProvider:   true,
			wantConfidence: 0.9,
			wantReason:     "builds pools",
		},
		{
			name:           "fenced json",
			text:           "```json\n{\"is_service_provider\": false, \"confidence\": 0.8, \"reason\": \"retail store\"}\n```",
			wantProvider:   false,
			wantConfidence: 0.8,
			wantReason:     "retail store",
		},
		{
			name:           "surrounding prose",
			text:           `Here is my verdict: {"is_service_provider": true, "confidence": 0.7, "reason": "contractor"} Hope that helps!`,
			wantProvider:   true,
			wantConfidence: 0.7,
			wantReason:     "contractor",
		},
		{
			name:           "confidence clamped above one",
			text:           `{"is_service_provider": true, "confidence": 1.4, "reason": "x"}`,
			wantProvider:   true,
			wantConfidence: 1.0,
			wantReason:     "x",
		},
		{
			name:           "confidence clamped below zero",
			text:           `{"is_service_provider": false, "confidence": -0.2, "reason": "x"}`,
			wantConfidence: 0,
			wantReason:     "x",
		},
		{
			name:           "extra fields ignored",
			text:           `{"is_service_provider": true, "confidence": 0.6, "reason": "ok", "model": "extra"}`,
			wantProvider:   true,
			wantConfidence: 0.6,
			wantReason:     "ok",
		},
		{
			name:    "missing is_service_provider",
			text:    `{"confidence": 0.9, "reason": "x"}`,
			wantErr: true,
		},
		{
			name:    "missing confidence",
			text:    `{"is_service_provider": true, "reason": "x"}`,
			wantErr: true,
		},
		{
			name:    "wrong type for boolean",
			text:    `{"is_service_provider": "yes", "confidence": 0.9, "reason": "x"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			text:    "the business is probably legitimate",
			wantErr: true,
		},
		{
			name:    "empty",
			text:    "",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			provider, confidence, reason, err := parseVerdict(tc.text)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantProvider, provider)
			assert.InDelta(t, tc.wantConfidence, confidence, 1e-9)
			assert.Equal(t, tc.wantReason, reason)
		})
	}
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{`prefix {"a": 1} suffix`, `{"a": 1}`},
		{"no braces at all", "no braces at all"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, cleanJSON(tc.in), "input %q", tc.in)
	}
}

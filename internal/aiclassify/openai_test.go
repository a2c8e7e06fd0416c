package aiclassify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadfilter-cli/internal/model"
)

func TestOpenAIBackend_ClassifyOne(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/chat/completions")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": `{"is_service_provider": true, "confidence": 0.85, "reason": "roofing contractor"}`,
					},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer ts.Close()

	backend := NewOpenAIBackend("test-key", "gpt-4o-mini", ts.URL+"/v1")
	verdict, err := backend.ClassifyOne(context.Background(), model.Lead{Name: "Summit Roofing"}, "Roofing Contractors")
	require.NoError(t, err)

	assert.True(t, verdict.IsServiceProvider)
	assert.Equal(t, 0.85, verdict.Confidence)
	assert.Equal(t, "roofing contractor", verdict.Reason)
	assert.Equal(t, "gpt-4o-mini", verdict.ModelUsed)
}

func TestOpenAIBackend_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited", "type": "rate_limit_error"}}`, http.StatusTooManyRequests)
	}))
	defer ts.Close()

	backend := NewOpenAIBackend("test-key", "gpt-4o-mini", ts.URL+"/v1")
	_, err := backend.ClassifyOne(context.Background(), model.Lead{Name: "X"}, "Roofing Contractors")
	require.Error(t, err)
}

func TestOpenAIBackend_Name(t *testing.T) {
	assert.Equal(t, "openai", NewOpenAIBackend("k", "m", "").Name())
}

package aiclassify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadfilter-cli/internal/model"
)

// ProxyBackend classifies through the leadfilter classify endpoint
// instead of calling the model vendor directly. Browser dashboards use
// this path because vendor APIs reject cross-origin calls; the server
// holds the API key.
type ProxyBackend struct {
	baseURL string
	http    *http.Client
}

// ProxyOption configures the proxy backend.
type ProxyOption func(*ProxyBackend)

// WithProxyHTTPClient overrides the default http.Client.
func WithProxyHTTPClient(hc *http.Client) ProxyOption {
	return func(b *ProxyBackend) {
		b.http = hc
	}
}

// NewProxyBackend builds a backend that POSTs to baseURL/v1/classify.
func NewProxyBackend(baseURL string, opts ...ProxyOption) *ProxyBackend {
	b := &ProxyBackend{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Name implements Backend.
func (b *ProxyBackend) Name() string { return "proxy" }

// ClassifyRequest is the wire request for POST /v1/classify.
type ClassifyRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Address     string `json:"address,omitempty"`
	ServiceType string `json:"service_type"`
}

// ClassifyResponse is the wire response from POST /v1/classify.
type ClassifyResponse struct {
	IsServiceProvider bool    `json:"is_service_provider"`
	Confidence        float64 `json:"confidence"`
	Reason            string  `json:"reason"`
	Model             string  `json:"model,omitempty"`
}

// ClassifyOne implements Backend.
func (b *ProxyBackend) ClassifyOne(ctx context.Context, lead model.Lead, serviceType string) (model.Verdict, error) {
	body, err := json.Marshal(ClassifyRequest{
		Name:        lead.Name,
		Category:    lead.Category,
		Address:     lead.Address,
		ServiceType: serviceType,
	})
	if err != nil {
		return model.Verdict{}, eris.Wrap(err, "aiclassify: proxy marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/classify", bytes.NewReader(body))
	if err != nil {
		return model.Verdict{}, eris.Wrap(err, "aiclassify: proxy create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(httpReq)
	if err != nil {
		return model.Verdict{}, eris.Wrap(err, "aiclassify: proxy send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Verdict{}, eris.Wrap(err, "aiclassify: proxy read response")
	}

	if resp.StatusCode != http.StatusOK {
		return model.Verdict{}, eris.Errorf("aiclassify: proxy status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ClassifyResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return model.Verdict{}, eris.Wrap(err, "aiclassify: proxy unmarshal response")
	}

	confidence := result.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return model.Verdict{
		BusinessName:      lead.Name,
		Category:          serviceType,
		IsServiceProvider: result.IsServiceProvider,
		Confidence:        confidence,
		Reason:            result.Reason,
		ModelUsed:         result.Model,
	}, nil
}

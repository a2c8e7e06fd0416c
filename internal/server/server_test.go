package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadfilter-cli/internal/aiclassify"
	"github.com/sells-group/leadfilter-cli/internal/model"
	"github.com/sells-group/leadfilter-cli/internal/rules"
)

type stubBackend struct {
	verdict model.Verdict
	err     error
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) ClassifyOne(_ context.Context, lead model.Lead, serviceType string) (model.Verdict, error) {
	if s.err != nil {
		return model.Verdict{}, s.err
	}
	v := s.verdict
	v.BusinessName = lead.Name
	v.Category = serviceType
	return v, nil
}

func newTestServer(t *testing.T, backend aiclassify.Backend) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(backend, rules.Default()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestClassify(t *testing.T) {
	backend := &stubBackend{verdict: model.Verdict{
		IsServiceProvider: true,
		Confidence:        0.93,
		Reason:            "builds pools",
		ModelUsed:         "claude-haiku-4-5-20251001",
	}}
	ts := newTestServer(t, backend)

	resp := postJSON(t, ts.URL+"/v1/classify", aiclassify.ClassifyRequest{
		Name:        "Lone Star Luxury Pools",
		ServiceType: "Pool Builders",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body aiclassify.ClassifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.IsServiceProvider)
	assert.Equal(t, 0.93, body.Confidence)
	assert.Equal(t, "claude-haiku-4-5-20251001", body.Model)
}

func TestClassify_Validation(t *testing.T) {
	ts := newTestServer(t, &stubBackend{})

	resp := postJSON(t, ts.URL+"/v1/classify", aiclassify.ClassifyRequest{Name: "X"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClassify_BackendError(t *testing.T) {
	ts := newTestServer(t, &stubBackend{err: eris.New("vendor down")})

	resp := postJSON(t, ts.URL+"/v1/classify", aiclassify.ClassifyRequest{
		Name:        "X",
		ServiceType: "Pool Builders",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestClassify_NoBackend(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/v1/classify", aiclassify.ClassifyRequest{
		Name:        "X",
		ServiceType: "Pool Builders",
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestFilter(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/v1/filter", filterRequest{
		ServiceType: "Pool Builders",
		Leads: []model.Lead{
			{Name: "Lone Star Luxury Pools"},
			{Name: "Dollar Tree"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body filterResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.FilteredLeads, 1)
	assert.Equal(t, "Lone Star Luxury Pools", body.FilteredLeads[0].Name)
	require.Len(t, body.ExcludedBusinesses, 1)
	assert.Equal(t, "Dollar Tree", body.ExcludedBusinesses[0].Name)
	assert.Equal(t, 2, body.Summary.Total)
}

func TestFilter_MissingServiceType(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/v1/filter", filterRequest{Leads: []model.Lead{{Name: "X"}}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

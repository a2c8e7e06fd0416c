package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadfilter-cli/internal/config"
	"github.com/sells-group/leadfilter-cli/internal/model"
)

func TestLoadLeads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.json")
	raw := `[
		{"name": "Lone Star Luxury Pools", "category": "Pool builder"},
		{"title": "Pool Supply Warehouse", "categoryName": "Pool supply store", "address": "800 Retail Row"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	leads, err := loadLeads(path)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, "Lone Star Luxury Pools", leads[0].Name)
	assert.Equal(t, "Pool builder", leads[0].Category)
	// Raw scraper field names are accepted too.
	assert.Equal(t, "Pool Supply Warehouse", leads[1].Name)
	assert.Equal(t, "Pool supply store", leads[1].Category)
	assert.Equal(t, "800 Retail Row", leads[1].Address)
}

func TestLoadLeads_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

	_, err := loadLeads(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no leads")
}

func TestLoadLeads_MissingFile(t *testing.T) {
	_, err := loadLeads(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestWriteResultJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	result := model.BatchResult{
		FilteredLeads:      []model.Lead{{Name: "Lone Star Luxury Pools"}},
		ExcludedBusinesses: []model.Exclusion{{Name: "Dollar Tree", Reason: "universal exclusion: name contains \"dollar tree\""}},
	}
	summary := model.Summary{Total: 2, Included: 1, Excluded: 1, InclusionRate: 0.5}

	require.NoError(t, writeResultJSON(path, result, summary))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out struct {
		FilteredLeads      []model.Lead      `json:"filtered_leads"`
		ExcludedBusinesses []model.Exclusion `json:"excluded_businesses"`
		Summary            model.Summary     `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.FilteredLeads, 1)
	require.Len(t, out.ExcludedBusinesses, 1)
	assert.Equal(t, 2, out.Summary.Total)
}

func TestNewBackend_Unknown(t *testing.T) {
	c := &config.Config{}
	c.Filter.Backend = "mystery"

	_, err := newBackend(c, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestNewBackend_Override(t *testing.T) {
	c := &config.Config{}
	c.Filter.Backend = "anthropic"
	c.Proxy.BaseURL = "http://localhost:8080"

	backend, err := newBackend(c, "proxy")
	require.NoError(t, err)
	assert.Equal(t, "proxy", backend.Name())
}

func TestNewBackend_MissingKey(t *testing.T) {
	c := &config.Config{}
	c.Filter.Backend = "anthropic"

	_, err := newBackend(c, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic key is required")
}

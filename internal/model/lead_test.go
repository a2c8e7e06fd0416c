package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadUnmarshal_Aliases(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected Lead
	}{
		{
			name: "canonical fields",
			json: `{"name": "Acme Roofing", "category": "Roofer", "address": "1 Main St", "rating": 4.5, "reviews": 30}`,
			expected: Lead{
				Name:     "Acme Roofing",
				Category: "Roofer",
				Address:  "1 Main St",
				Rating:   4.5,
				Reviews:  30,
			},
		},
		{
			name:     "scraper title and categoryName",
			json:     `{"title": "Acme Roofing", "categoryName": "Roofing contractor"}`,
			expected: Lead{Name: "Acme Roofing", Category: "Roofing contractor"},
		},
		{
			name:     "company_name alias",
			json:     `{"company_name": "Acme Roofing"}`,
			expected: Lead{Name: "Acme Roofing"},
		},
		{
			name:     "name wins over title",
			json:     `{"name": "Primary", "title": "Secondary"}`,
			expected: Lead{Name: "Primary"},
		},
		{
			name:     "blank name falls through to title",
			json:     `{"name": "   ", "title": "Fallback Co"}`,
			expected: Lead{Name: "Fallback Co"},
		},
		{
			name:     "missing fields decode as zero values",
			json:     `{}`,
			expected: Lead{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Lead
			require.NoError(t, json.Unmarshal([]byte(tt.json), &l))
			assert.Equal(t, tt.expected, l)
		})
	}
}

func TestLeadMarshal_RoundTrip(t *testing.T) {
	in := Lead{Name: "Acme Roofing", Category: "Roofer", City: "McKinney", State: "TX"}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Lead
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestValidServiceType(t *testing.T) {
	assert.True(t, ValidServiceType("Pool Builders"))
	assert.True(t, ValidServiceType("Fencing Companies"))
	assert.False(t, ValidServiceType("pool builders"))
	assert.False(t, ValidServiceType(""))
	assert.False(t, ValidServiceType("Dog Grooming"))
}

func TestAllServiceTypes_Count(t *testing.T) {
	assert.Len(t, AllServiceTypes(), 8)
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchRequest(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantQuery string
		wantTopK  int
		wantGem   bool
	}{
		{"empty body", ``, "", 10, false},
		{"defaults", `{"query": "2bhk pune"}`, "2bhk pune", 10, false},
		{"string top_k", `{"query": "x", "top_k": "3"}`, "x", 3, false},
		{"fractional top_k", `{"top_k": 4.9}`, "", 4, false},
		{"invalid top_k", `{"top_k": "many"}`, "", 10, false},
		{"negative top_k", `{"top_k": -5}`, "", 0, false},
		{"above max", `{"top_k": 500}`, "", 100, false},
		{"huge float saturates to max", `{"top_k": 1e300}`, "", 100, false},
		{"huge string saturates to max", `{"top_k": "1e300"}`, "", 100, false},
		{"huge negative clamps to zero", `{"top_k": -1e300}`, "", 0, false},
		{"numeric query", `{"query": 42}`, "42", 10, false},
		{"truthy use_gemini", `{"use_gemini": "true"}`, "", 10, true},
		{"numeric use_gemini", `{"use_gemini": 1}`, "", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseSearchRequest([]byte(tt.body), 10, 100)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, req.Query)
			assert.Equal(t, tt.wantTopK, req.TopK)
			assert.Equal(t, tt.wantGem, req.UseEnrichment)
		})
	}
}

func TestParseSearchRequestInvalidJSON(t *testing.T) {
	_, err := ParseSearchRequest([]byte(`{"query": `), 10, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON body")
}

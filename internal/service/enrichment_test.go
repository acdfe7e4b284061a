package service

import (
	"context"
	"testing"
	"time"

	"propsearch/internal/config"
	"propsearch/internal/model"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// stubModel is an llms.Model returning a canned reply.
type stubModel struct {
	reply    string
	chunks   []string
	err      error
	delay    time.Duration
	messages []llms.MessageContent
	jsonMode bool
}

func (m *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	m.jsonMode = opts.JSONMode

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if opts.StreamingFunc != nil {
		for _, c := range m.chunks {
			if err := opts.StreamingFunc(ctx, []byte(c)); err != nil {
				return nil, err
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestEnrichedExtractor_UsesModelReply(t *testing.T) {
	stub := &stubModel{reply: "```json\n{\"city\": \"Pune\", \"bhk\": \"3 BHK\", \"budget_lakhs_max\": 120, " +
		"\"possession\": \"Ready to move\", \"locality\": null, \"project_name\": \"\", \"soft\": [\"Near Metro\", \"near metro\"]}\n```"}
	e := NewEnrichedExtractorWithModel(stub, NewRuleExtractor(), time.Second)

	f, enriched := e.ExtractStream(context.Background(), "3bhk pune", scenarioListings(), nil)
	require.True(t, enriched)
	assert.True(t, stub.jsonMode)

	require.NotNil(t, f.City)
	assert.Equal(t, "pune", *f.City)
	assert.Equal(t, 3, *f.BHK)
	assert.Equal(t, 120.0, *f.BudgetMax)
	assert.Equal(t, model.PossessionReady, *f.Possession)
	assert.Nil(t, f.Locality)
	assert.Nil(t, f.ProjectName)
	assert.Equal(t, []string{"near metro"}, f.SoftPreferences)

	require.Len(t, stub.messages, 2)
	system := stub.messages[0].Parts[0].(llms.TextContent).Text
	assert.Contains(t, system, "Known cities: pune, mumbai")
	assert.Contains(t, system, "Known localities: baner, andheri")
}

func TestEnrichedExtractor_Streaming(t *testing.T) {
	stub := &stubModel{
		chunks: []string{`{"bhk": 2,`, ` "city": "mumbai"}`},
	}
	e := NewEnrichedExtractorWithModel(stub, NewRuleExtractor(), time.Second)

	var got []string
	f, enriched := e.ExtractStream(context.Background(), "2bhk mumbai", nil, func(c string) error {
		got = append(got, c)
		return nil
	})
	require.True(t, enriched)
	assert.Equal(t, stub.chunks, got)
	assert.Equal(t, 2, *f.BHK)
	assert.Equal(t, "mumbai", *f.City)
}

func TestEnrichedExtractor_FallsBack(t *testing.T) {
	query := "3BHK flat in Pune under ₹1.2 Cr near metro"
	want := NewRuleExtractor().Extract(context.Background(), query, scenarioListings())

	tests := []struct {
		name string
		llm  llms.Model
	}{
		{"no model", nil},
		{"model error", &stubModel{err: errors.New("quota exceeded")}},
		{"garbage reply", &stubModel{reply: "I cannot help with that"}},
		{"empty filters", &stubModel{reply: `{"city": null, "bhk": null}`}},
		{"timeout", &stubModel{reply: `{"bhk": 1}`, delay: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEnrichedExtractorWithModel(tt.llm, NewRuleExtractor(), 20*time.Millisecond)
			f, enriched := e.ExtractStream(context.Background(), query, scenarioListings(), nil)
			assert.False(t, enriched)
			assert.Equal(t, want, f)
			assert.Equal(t, want, e.Extract(context.Background(), query, scenarioListings()))
		})
	}
}

func TestNewEnrichedExtractor_Disabled(t *testing.T) {
	e, err := NewEnrichedExtractor(&config.EnrichmentConfig{Timeout: 5}, NewRuleExtractor())
	require.NoError(t, err)
	assert.False(t, e.IsEnabled())

	f := e.Extract(context.Background(), "2bhk", nil)
	assert.Equal(t, 2, *f.BHK)
}

func TestNewEnrichedExtractor_Enabled(t *testing.T) {
	e, err := NewEnrichedExtractor(&config.EnrichmentConfig{
		APIKey:  "test-key",
		APIBase: "http://127.0.0.1:0/v1",
		Model:   "gemini-2.5-flash",
		Timeout: 1,
		Enabled: true,
	}, NewRuleExtractor())
	require.NoError(t, err)
	assert.True(t, e.IsEnabled())
}

func TestCanonicalFilters(t *testing.T) {
	f := canonicalFilters(map[string]any{
		"bhk":              2.5,
		"budget_max":       "1.5 Cr",
		"possession":       "under construction",
		"locality":         " Baner ",
		"project_name":     " Sunshine ",
		"soft_preferences": []any{"near it park", 3.0, ""},
	})
	assert.Nil(t, f.BHK)
	assert.Equal(t, 150.0, *f.BudgetMax)
	assert.Equal(t, model.PossessionUnderConstruction, *f.Possession)
	assert.Equal(t, "baner", *f.Locality)
	assert.Equal(t, "Sunshine", *f.ProjectName)
	assert.Equal(t, []string{"near it park", "3"}, f.SoftPreferences)

	assert.True(t, canonicalFilters(map[string]any{"city": "null", "budget_max": -3.0}).IsEmpty())
}

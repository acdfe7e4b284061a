package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"propsearch/internal/config"
	"propsearch/internal/dataset"
	"propsearch/internal/logger"
	"propsearch/internal/model"
	"propsearch/internal/utils"

	"github.com/cockroachdb/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEnrichmentDisabled is returned when no model is configured.
var ErrEnrichmentDisabled = errors.New("enrichment is not configured")

// maxPromptValues caps how many known cities and localities are listed in the prompt.
const maxPromptValues = 40

const systemPrompt = `You are a real estate search assistant for India. Parse the user's query into structured filters.

Respond ONLY with a JSON object using these keys:
- city: city name, lower case (string)
- bhk: number of bedrooms, 0 for studio (integer)
- budget_max: maximum budget in lakhs of rupees; 1 crore = 100 lakhs (number)
- possession: "ready" or "under_construction" (string)
- locality: neighbourhood or locality, lower case (string)
- project_name: name of a specific project or building (string)
- soft_preferences: any of "near metro", "near it park" (array of strings)

Use null for anything the query does not mention. Do not invent values.

Examples:
Query: "3BHK in Pune under 1.2 Cr near metro"
Response: {"city": "pune", "bhk": 3, "budget_max": 120, "possession": null, "locality": null, "project_name": null, "soft_preferences": ["near metro"]}

Query: "ready to move 2 bhk in baner below 80 lakh"
Response: {"city": null, "bhk": 2, "budget_max": 80, "possession": "ready", "locality": "baner", "project_name": null, "soft_preferences": []}`

// ChunkCallback receives raw model output as it streams.
type ChunkCallback func(content string) error

// EnrichedExtractor asks a chat model to extract filters and falls back to
// another extractor on any error, timeout or empty reply.
type EnrichedExtractor struct {
	llm         llms.Model
	fallback    FilterExtractor
	timeout     time.Duration
	temperature float64
}

// NewEnrichedExtractor creates an extractor backed by an OpenAI-compatible
// endpoint. Without an API key it only ever uses fallback.
func NewEnrichedExtractor(cfg *config.EnrichmentConfig, fallback FilterExtractor) (*EnrichedExtractor, error) {
	e := &EnrichedExtractor{
		fallback:    fallback,
		timeout:     time.Duration(cfg.Timeout) * time.Second,
		temperature: cfg.Temperature,
	}
	if !cfg.Enabled {
		return e, nil
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.APIBase),
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chat model client")
	}
	e.llm = client
	return e, nil
}

// NewEnrichedExtractorWithModel wraps an existing model.
func NewEnrichedExtractorWithModel(llm llms.Model, fallback FilterExtractor, timeout time.Duration) *EnrichedExtractor {
	return &EnrichedExtractor{llm: llm, fallback: fallback, timeout: timeout}
}

// IsEnabled returns whether a model is configured
func (e *EnrichedExtractor) IsEnabled() bool {
	return e != nil && e.llm != nil
}

// Extract implements FilterExtractor.
func (e *EnrichedExtractor) Extract(ctx context.Context, query string, listings []model.Listing) model.FilterSet {
	filters, _ := e.ExtractStream(ctx, query, listings, nil)
	return filters
}

// ExtractStream extracts filters, passing model output chunks to onChunk
// when it is non-nil. The boolean reports whether the model's answer was
// used rather than the fallback.
func (e *EnrichedExtractor) ExtractStream(ctx context.Context, query string, listings []model.Listing, onChunk ChunkCallback) (model.FilterSet, bool) {
	filters, err := e.generate(ctx, query, listings, onChunk)
	if err == nil {
		return filters, true
	}
	if !errors.Is(err, ErrEnrichmentDisabled) {
		logger.Logger.Warnw("Enrichment failed, using rule-based filters", "query", query, "error", err)
	}
	return e.fallback.Extract(ctx, query, listings), false
}

func (e *EnrichedExtractor) generate(ctx context.Context, query string, listings []model.Listing, onChunk ChunkCallback) (model.FilterSet, error) {
	if !e.IsEnabled() {
		return model.FilterSet{}, ErrEnrichmentDisabled
	}
	if strings.TrimSpace(query) == "" {
		return model.FilterSet{}, errors.New("empty query")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt+knownValues(listings)),
		llms.TextParts(llms.ChatMessageTypeHuman, query),
	}
	opts := []llms.CallOption{llms.WithTemperature(e.temperature), llms.WithJSONMode()}

	var streamed strings.Builder
	if onChunk != nil {
		opts = append(opts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			streamed.Write(chunk)
			return onChunk(string(chunk))
		}))
	}

	resp, err := e.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return model.FilterSet{}, errors.Wrap(err, "chat completion failed")
	}

	text := streamed.String()
	if len(resp.Choices) > 0 && strings.TrimSpace(resp.Choices[0].Content) != "" {
		text = resp.Choices[0].Content
	}
	if strings.TrimSpace(text) == "" {
		return model.FilterSet{}, errors.New("empty model response")
	}

	var raw map[string]any
	if err := utils.ParseAIJSON(text, &raw); err != nil {
		return model.FilterSet{}, errors.Wrap(err, "failed to parse model response")
	}

	filters := canonicalFilters(raw)
	if filters.IsEmpty() {
		return model.FilterSet{}, errors.New("model returned no filters")
	}
	return filters, nil
}

// knownValues lists dataset cities and localities so the model answers with values that can match.
func knownValues(listings []model.Listing) string {
	cities := distinct(listings, func(l model.Listing) string { return l.City })
	localities := distinct(listings, func(l model.Listing) string { return l.Locality })
	if len(cities) == 0 && len(localities) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	if len(cities) > 0 {
		fmt.Fprintf(&b, "\nKnown cities: %s", strings.Join(limit(cities, maxPromptValues), ", "))
	}
	if len(localities) > 0 {
		fmt.Fprintf(&b, "\nKnown localities: %s", strings.Join(limit(localities, maxPromptValues), ", "))
	}
	return b.String()
}

func limit(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

// canonicalFilters converts a loosely typed model reply into a FilterSet.
// It accepts the alternative keys budget_lakhs_max and soft.
func canonicalFilters(raw map[string]any) model.FilterSet {
	f := model.NewFilterSet()

	if s := lowerString(raw["city"]); s != "" {
		f.City = &s
	}
	if s := lowerString(raw["locality"]); s != "" {
		f.Locality = &s
	}
	if s := strings.TrimSpace(stringValue(raw["project_name"])); s != "" {
		f.ProjectName = &s
	}

	switch v := raw["bhk"].(type) {
	case float64:
		if v >= 0 && v == math.Trunc(v) {
			n := int(v)
			f.BHK = &n
		}
	case string:
		f.BHK = dataset.NormalizeBHK(v)
	}

	budget := raw["budget_max"]
	if budget == nil {
		budget = raw["budget_lakhs_max"]
	}
	switch v := budget.(type) {
	case float64:
		if v > 0 {
			f.BudgetMax = &v
		}
	case string:
		f.BudgetMax = dataset.ParsePriceToLakhs(v)
	}

	if s := stringValue(raw["possession"]); s != "" {
		if p := dataset.NormalizePossession(s); p != "" {
			f.Possession = &p
		}
	}

	soft := raw["soft_preferences"]
	if soft == nil {
		soft = raw["soft"]
	}
	if items, ok := soft.([]any); ok {
		for _, item := range items {
			if token := lowerString(item); token != "" && !f.HasSoftPreference(token) {
				f.SoftPreferences = append(f.SoftPreferences, token)
			}
		}
	}
	return f
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		if strings.EqualFold(strings.TrimSpace(t), "null") {
			return ""
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func lowerString(v any) string {
	return strings.ToLower(strings.TrimSpace(stringValue(v)))
}

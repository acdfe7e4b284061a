package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// SearchRequest represents a search query request after coercion.
type SearchRequest struct {
	Query         string `json:"query"`
	TopK          int    `json:"top_k"`
	UseEnrichment bool   `json:"use_gemini"`
}

// ParseSearchRequest decodes a request body, coercing loosely typed fields
// to safe defaults. Only an unparseable body is an error.
func ParseSearchRequest(body []byte, defaultTopK, maxTopK int) (*SearchRequest, error) {
	req := &SearchRequest{TopK: defaultTopK}
	if len(strings.TrimSpace(string(body))) == 0 {
		return req, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "invalid JSON body")
	}

	req.Query = coerceString(raw["query"])
	if v, ok := coerceInt(raw["top_k"]); ok {
		req.TopK = v
	}
	if req.TopK < 0 {
		req.TopK = 0
	}
	if maxTopK > 0 && req.TopK > maxTopK {
		req.TopK = maxTopK
	}
	req.UseEnrichment = coerceBool(raw["use_gemini"])
	return req, nil
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return floatToInt(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	}
	return 0, false
}

// floatToInt truncates f, saturating at the int range.
func floatToInt(f float64) (int, bool) {
	switch {
	case math.IsNaN(f):
		return 0, false
	case f >= math.MaxInt32:
		return math.MaxInt32, true
	case f <= math.MinInt32:
		return math.MinInt32, true
	}
	return int(f), true
}

func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	}
	return false
}

// SearchResponse is the pipeline output returned to callers.
type SearchResponse struct {
	SearchID string          `json:"search_id,omitempty"`
	Query    string          `json:"query"`
	Filters  FilterSet       `json:"filters"`
	Summary  string          `json:"summary"`
	Cards    []Card          `json:"cards"`
	Results  []ScoredListing `json:"results"`
	Enriched bool            `json:"enriched"`
	Took     int64           `json:"took_ms"` // Response time in milliseconds
}

// FeedbackRequest represents user feedback/action on a search result
type FeedbackRequest struct {
	SearchID  string `json:"search_id" binding:"required"`
	ListingID string `json:"listing_id" binding:"required"`
	Action    string `json:"action" binding:"required"` // click, contact, view_details
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SearchLogEntry is one recorded search.
type SearchLogEntry struct {
	SearchID       string
	Query          string
	Filters        FilterSet
	ResultCount    int
	ListingIDs     []string
	ResponseTimeMs int64
}

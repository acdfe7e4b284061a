package service

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"propsearch/internal/model"
	"propsearch/internal/utils"
)

// Soft preference tokens
const (
	SoftNearMetro  = "near metro"
	SoftNearITPark = "near it park"
)

// ProjectNameThreshold is the minimum partial similarity for a fuzzy project-name match.
const ProjectNameThreshold = 80.0

var (
	bhkPattern    = regexp.MustCompile(`(?i)(\d+)\s*bhk`)
	budgetPattern = regexp.MustCompile(`(?i)(under|below|up to)\s+₹?\s*([\d.,]+)\s*(cr|crore|lakh|lakhs|l|k)?`)
	readyPattern  = regexp.MustCompile(`(?i)ready to move|ready-to-move|\bready\b`)
	ucPattern     = regexp.MustCompile(`(?i)under construction|\buc\b`)
	metroPattern  = regexp.MustCompile(`(?i)near metro|\bmetro\b`)
	itParkPattern = regexp.MustCompile(`(?i)near it|it park|\bit\b`)
)

// FilterExtractor maps a free-text query to a FilterSet. Implementations never fail.
type FilterExtractor interface {
	Extract(ctx context.Context, query string, listings []model.Listing) model.FilterSet
}

// RuleExtractor extracts filters with regular expressions and dataset lookups.
type RuleExtractor struct{}

// NewRuleExtractor creates a rule-based extractor
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

// Extract applies every rule independently; unmatched fields stay absent.
func (e *RuleExtractor) Extract(_ context.Context, query string, listings []model.Listing) model.FilterSet {
	f := model.NewFilterSet()
	if strings.TrimSpace(query) == "" {
		return f
	}
	lower := strings.ToLower(query)

	f.BHK = extractBHK(query)
	f.BudgetMax = extractBudget(query)
	f.Possession = extractPossession(query)
	f.City = matchLongestValue(lower, distinct(listings, func(l model.Listing) string { return l.City }))
	f.Locality = matchLongestValue(lower, distinct(listings, func(l model.Listing) string { return l.Locality }))
	f.ProjectName = matchProjectName(query, distinct(listings, func(l model.Listing) string { return l.Name }))
	f.SoftPreferences = extractSoftPreferences(query)
	return f
}

func extractBHK(query string) *int {
	m := bhkPattern.FindStringSubmatch(query)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// extractBudget converts the first budget phrase to lakhs. A "k" suffix
// divides by 100, not 100000.
func extractBudget(query string) *float64 {
	m := budgetPattern.FindStringSubmatch(query)
	if m == nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
	if err != nil {
		return nil
	}

	unit := strings.ToLower(m[3])
	switch {
	case strings.HasPrefix(unit, "cr"):
		value *= 100
	case strings.HasPrefix(unit, "l"):
	case unit == "k":
		value /= 100
	case value > 100000:
		value /= 100000
	}
	return &value
}

// extractPossession checks ready first, then under construction; the later match wins.
func extractPossession(query string) *model.Possession {
	var p *model.Possession
	if readyPattern.MatchString(query) {
		ready := model.PossessionReady
		p = &ready
	}
	if ucPattern.MatchString(query) {
		uc := model.PossessionUnderConstruction
		p = &uc
	}
	return p
}

func extractSoftPreferences(query string) []string {
	soft := []string{}
	if metroPattern.MatchString(query) {
		soft = append(soft, SoftNearMetro)
	}
	if itParkPattern.MatchString(query) {
		soft = append(soft, SoftNearITPark)
	}
	return soft
}

// distinct returns the unique non-empty values of field in dataset order.
func distinct(listings []model.Listing, field func(model.Listing) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range listings {
		v := strings.TrimSpace(field(l))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// matchLongestValue returns the longest candidate (ties alphabetical) that
// occurs as a whole word in the lower-cased query.
func matchLongestValue(lowerQuery string, candidates []string) *string {
	sorted := make([]string, 0, len(candidates))
	for _, c := range candidates {
		sorted = append(sorted, strings.ToLower(c))
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(sorted[i]), utf8.RuneCountInString(sorted[j])
		if li != lj {
			return li > lj
		}
		return sorted[i] < sorted[j]
	})
	for _, c := range sorted {
		if utils.ContainsWholeWord(lowerQuery, c) {
			match := c
			return &match
		}
	}
	return nil
}

// matchProjectName picks the best fuzzy match at or above the threshold
// (first best in dataset order), else the longest name contained verbatim
// in the query.
func matchProjectName(query string, names []string) *string {
	best, bestScore := "", 0.0
	for _, name := range names {
		if score := utils.PartialSimilarity(query, name); score > bestScore {
			best, bestScore = name, score
		}
	}
	if best != "" && bestScore >= ProjectNameThreshold {
		return &best
	}

	lower := strings.ToLower(query)
	fallback := ""
	for _, name := range names {
		if strings.Contains(lower, strings.ToLower(name)) && utf8.RuneCountInString(name) > utf8.RuneCountInString(fallback) {
			fallback = name
		}
	}
	if fallback == "" {
		return nil
	}
	return &fallback
}

package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"propsearch/internal/model"
)

var (
	numberPattern   = regexp.MustCompile(`\d+\.?\d*`)
	lakhSuffix      = regexp.MustCompile(`\b\d+\.?\d*\s*l\b`)
	integerPattern  = regexp.MustCompile(`\d+`)
	possessionTable = map[string]model.Possession{
		"ready":              model.PossessionReady,
		"ready to move":      model.PossessionReady,
		"ready_to_move":      model.PossessionReady,
		"ready-to-move":      model.PossessionReady,
		"under construction": model.PossessionUnderConstruction,
		"under_construction": model.PossessionUnderConstruction,
		"under-construction": model.PossessionUnderConstruction,
		"uc":                 model.PossessionUnderConstruction,
	}
)

// isBlank treats the placeholders that spreadsheet exports leave behind as empty.
func isBlank(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "none", "null", "n/a", "na":
		return true
	}
	return false
}

// ParsePriceToLakhs converts a raw price string to lakhs. "1.2 Cr" is 120,
// "45 Lakh" and "45L" are 45, and a bare rupee amount above one lakh is
// divided by 100000. It returns nil when no price can be read.
func ParsePriceToLakhs(raw string) *float64 {
	if isBlank(raw) {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(strings.ReplaceAll(s, "₹", ""), ",", "")
	s = strings.TrimSpace(s)

	if strings.Contains(s, "cr") {
		m := numberPattern.FindString(s)
		if m == "" {
			return nil
		}
		return positive(parseFloat(m) * 100)
	}
	if strings.Contains(s, "lakh") || lakhSuffix.MatchString(s) {
		m := numberPattern.FindString(s)
		if m == "" {
			return nil
		}
		return positive(parseFloat(m))
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if v > 100000 {
		v /= 100000
	}
	return positive(v)
}

// NormalizeBHK reads a bedroom count: "studio" is 0, otherwise the first integer.
func NormalizeBHK(raw string) *int {
	if isBlank(raw) {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(raw))
	if strings.Contains(s, "studio") {
		zero := 0
		return &zero
	}
	if m := integerPattern.FindString(s); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return &n
		}
	}
	return nil
}

// NormalizePossession maps status spellings onto the canonical values.
// Unrecognized statuses are kept lower-cased.
func NormalizePossession(raw string) model.Possession {
	if isBlank(raw) {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(raw))
	if p, ok := possessionTable[s]; ok {
		return p
	}
	return model.Possession(s)
}

// NormalizeText lower-cases and trims a city or locality.
func NormalizeText(raw string) string {
	if isBlank(raw) {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeListing applies the dataset invariants to l in place: text fields
// trimmed and lower-cased, non-positive prices and negative BHK dropped.
func NormalizeListing(l *model.Listing) {
	l.ID = strings.TrimSpace(l.ID)
	l.Name = strings.TrimSpace(l.Name)
	if isBlank(l.Name) {
		l.Name = ""
	}
	l.City = NormalizeText(l.City)
	l.Locality = NormalizeText(l.Locality)
	l.Possession = NormalizePossession(string(l.Possession))
	if l.Price != nil && (math.IsNaN(*l.Price) || *l.Price <= 0) {
		l.Price = nil
	}
	if l.BHK != nil && *l.BHK < 0 {
		l.BHK = nil
	}
}

// SplitAddress returns the city and locality of a comma-separated address:
// the last part is the city, the one before it the locality. A single part
// is taken as the locality.
func SplitAddress(full string) (city, locality string) {
	var parts []string
	for _, p := range strings.Split(full, ",") {
		if p = strings.TrimSpace(p); p != "" && !isBlank(p) {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", strings.ToLower(parts[0])
	}
	return strings.ToLower(parts[len(parts)-1]), strings.ToLower(parts[len(parts)-2])
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func positive(v float64) *float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

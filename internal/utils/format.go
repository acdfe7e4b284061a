package utils

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9\-]`)

// FormatPriceLakhs renders a price in lakhs as rupees: crores from 100 lakhs up.
func FormatPriceLakhs(price *float64) string {
	if price == nil || math.IsNaN(*price) {
		return "N/A"
	}
	v := *price
	if v >= 100 {
		return fmt.Sprintf("₹%.2f Cr", v/100)
	}
	return fmt.Sprintf("₹%.2f L", v)
}

// PriceSlug renders a price for use inside a URL slug, e.g. "1-20-cr" or "75-l".
func PriceSlug(price *float64) string {
	if price == nil || math.IsNaN(*price) {
		return "price-na"
	}
	v := *price
	if v >= 100 {
		return strings.ReplaceAll(fmt.Sprintf("%.2f", v/100), ".", "-") + "-cr"
	}
	if math.Abs(v-math.Round(v)) < 1e-6 {
		return fmt.Sprintf("%d-l", int64(math.Round(v)))
	}
	return strings.ReplaceAll(fmt.Sprintf("%.2f", v), ".", "-") + "-l"
}

// Slugify lower-cases s and replaces every character outside [a-z0-9-] with '-'.
func Slugify(s string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// TitleCase upper-cases the first letter of each word.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

package service

import (
	"fmt"
	"strings"

	"propsearch/internal/model"
	"propsearch/internal/utils"
)

// NoMatchesSummary is the summary of an empty result set.
const NoMatchesSummary = "No matches found for the requested filters."

// BuildSummary describes results in up to four sentences: match count,
// possession breakdown, price range and the most common locality. A
// sentence is left out when the results carry no data for it.
func BuildSummary(results []model.ScoredListing) string {
	n := len(results)
	if n == 0 {
		return NoMatchesSummary
	}

	plural := "s"
	if n == 1 {
		plural = ""
	}
	parts := []string{fmt.Sprintf("%d matching project%s found.", n, plural)}

	ready, uc := 0, 0
	var minPrice, maxPrice *float64
	localityCounts := map[string]int{}
	var localityOrder []string

	for i := range results {
		l := &results[i].Listing
		switch l.Possession {
		case model.PossessionReady:
			ready++
		case model.PossessionUnderConstruction:
			uc++
		}
		if l.Price != nil {
			if minPrice == nil || *l.Price < *minPrice {
				minPrice = l.Price
			}
			if maxPrice == nil || *l.Price > *maxPrice {
				maxPrice = l.Price
			}
		}
		if l.Locality != "" {
			if localityCounts[l.Locality] == 0 {
				localityOrder = append(localityOrder, l.Locality)
			}
			localityCounts[l.Locality]++
		}
	}

	var possession []string
	if ready > 0 {
		possession = append(possession, fmt.Sprintf("%s: %d", model.PossessionReady.Label(), ready))
	}
	if uc > 0 {
		possession = append(possession, fmt.Sprintf("%s: %d", model.PossessionUnderConstruction.Label(), uc))
	}
	if len(possession) > 0 {
		parts = append(parts, "Possession status: "+strings.Join(possession, ", ")+".")
	}

	if minPrice != nil {
		parts = append(parts, fmt.Sprintf("Price range: %s to %s.",
			utils.FormatPriceLakhs(minPrice), utils.FormatPriceLakhs(maxPrice)))
	}

	// first-seen locality wins ties
	top := ""
	for _, loc := range localityOrder {
		if top == "" || localityCounts[loc] > localityCounts[top] {
			top = loc
		}
	}
	if top != "" {
		parts = append(parts, fmt.Sprintf("Most listings are in %s.", utils.TitleCase(top)))
	}

	return strings.Join(parts, " ")
}

package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"propsearch/internal/model"
	"propsearch/internal/utils"
)

// Match reason constants
const (
	ReasonCityMatch        = "City match"
	ReasonBHKMatch         = "BHK match"
	ReasonPriceMatch       = "Within budget"
	ReasonPossessionMatch  = "Possession match"
	ReasonProjectNameMatch = "Project name match"
	ReasonLocalityMatch    = "Locality match"
	ReasonGeneralMatch     = "General match"
)

// strongMatch is the partial similarity above which a scoring term is reported as a reason.
const strongMatch = 80.0

// Weights are the maximum contribution of each scoring term.
type Weights struct {
	ProjectName float64
	Locality    float64
	Soft        float64 // per matched soft preference
	Budget      float64
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{ProjectName: 50, Locality: 30, Soft: 10, Budget: 10}
}

// Ranker applies hard filters and scores the surviving listings
type Ranker struct {
	weights Weights
}

// NewRanker creates a new ranker with specified weights
func NewRanker(weights Weights) *Ranker {
	return &Ranker{weights: weights}
}

// Rank returns at most topK listings passing every present hard filter,
// ordered by relevance score descending. Equal scores keep dataset order.
func (r *Ranker) Rank(filters model.FilterSet, listings []model.Listing, topK int) []model.ScoredListing {
	results := make([]model.ScoredListing, 0)
	if topK <= 0 {
		return results
	}

	for _, listing := range listings {
		if !passesHardFilters(filters, listing) {
			continue
		}
		score, reasons := r.score(filters, listing)
		results = append(results, model.ScoredListing{
			Listing:        listing,
			RelevanceScore: score,
			MatchedReasons: reasons,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

func passesHardFilters(f model.FilterSet, l model.Listing) bool {
	if f.City != nil {
		if l.City == "" || !strings.EqualFold(strings.TrimSpace(l.City), strings.TrimSpace(*f.City)) {
			return false
		}
	}
	if f.BHK != nil && (l.BHK == nil || *l.BHK != *f.BHK) {
		return false
	}
	if f.BudgetMax != nil && (l.Price == nil || *l.Price > *f.BudgetMax) {
		return false
	}
	if f.Possession != nil {
		if l.Possession == "" || !strings.Contains(normalizePossession(string(l.Possession)), normalizePossession(string(*f.Possession))) {
			return false
		}
	}
	return true
}

// normalizePossession lower-cases s and treats '_' and '-' as spaces.
func normalizePossession(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", " ", "-", " ").Replace(s)
}

func (r *Ranker) score(f model.FilterSet, l model.Listing) (float64, []string) {
	score := 0.0
	reasons := []string{}

	if f.City != nil {
		reasons = append(reasons, ReasonCityMatch)
	}
	if f.BHK != nil {
		reasons = append(reasons, ReasonBHKMatch)
	}
	if f.Possession != nil {
		reasons = append(reasons, ReasonPossessionMatch)
	}

	if f.ProjectName != nil && *f.ProjectName != "" {
		sim := utils.PartialSimilarity(*f.ProjectName, l.Name)
		score += sim / 100 * r.weights.ProjectName
		if sim >= strongMatch {
			reasons = append(reasons, ReasonProjectNameMatch)
		}
	}

	if f.Locality != nil && *f.Locality != "" && l.Locality != "" {
		sim := utils.PartialSimilarity(*f.Locality, l.Locality)
		score += sim / 100 * r.weights.Locality
		if sim >= strongMatch {
			reasons = append(reasons, ReasonLocalityMatch)
		}
	}

	name, locality := strings.ToLower(l.Name), strings.ToLower(l.Locality)
	for _, token := range f.SoftPreferences {
		t := strings.ToLower(token)
		if t == "" {
			continue
		}
		if strings.Contains(name, t) || strings.Contains(locality, t) {
			score += r.weights.Soft
			reasons = append(reasons, fmt.Sprintf("Matches %q", token))
		}
	}

	if f.BudgetMax != nil && l.Price != nil {
		budget := *f.BudgetMax
		headroom := math.Max(0, budget-*l.Price) / math.Max(1, budget)
		score += math.Min(1, headroom) * r.weights.Budget
		reasons = append(reasons, ReasonPriceMatch)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}
	return score, reasons
}

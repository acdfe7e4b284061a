package service

import (
	"testing"

	"propsearch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanker_Scenario(t *testing.T) {
	filters := extract("3BHK flat in Pune under ₹1.2 Cr near metro", scenarioListings())
	results := NewRanker(DefaultWeights()).Rank(filters, scenarioListings(), 10)

	require.Len(t, results, 1)
	assert.Equal(t, "Sunshine Residency", results[0].Name)
	// only the budget term applies: (120-110)/120*10
	assert.InDelta(t, 10.0/120*10, results[0].RelevanceScore, 1e-9)
	assert.Contains(t, results[0].MatchedReasons, ReasonCityMatch)
	assert.Contains(t, results[0].MatchedReasons, ReasonPriceMatch)
}

func TestRanker_HardFilters(t *testing.T) {
	listings := []model.Listing{
		{ID: "a", City: "pune", BHK: intPtr(2), Price: floatPtr(60), Possession: model.PossessionReady},
		{ID: "b", City: "Pune", BHK: intPtr(3), Price: floatPtr(90), Possession: model.PossessionUnderConstruction},
		{ID: "c", City: "mumbai", BHK: intPtr(2), Price: floatPtr(40), Possession: "under construction"},
		{ID: "d", City: "", BHK: nil, Price: nil},
	}
	r := NewRanker(DefaultWeights())

	tests := []struct {
		name    string
		filters model.FilterSet
		want    []string
	}{
		{"no filters keeps all", model.NewFilterSet(), []string{"a", "b", "c", "d"}},
		{"city is case-insensitive", model.FilterSet{City: strPtr("PUNE")}, []string{"a", "b"}},
		{"bhk exact, absent never matches", model.FilterSet{BHK: intPtr(2)}, []string{"a", "c"}},
		{"budget requires price", model.FilterSet{BudgetMax: floatPtr(60)}, []string{"c", "a"}},
		{"possession normalizes separators", model.FilterSet{Possession: possPtr(model.PossessionUnderConstruction)}, []string{"b", "c"}},
		{"combined", model.FilterSet{City: strPtr("pune"), BHK: intPtr(3)}, []string{"b"}},
		{"no survivors", model.FilterSet{City: strPtr("delhi")}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := r.Rank(tt.filters, listings, 10)
			require.NotNil(t, results)
			ids := make([]string, 0, len(results))
			for _, res := range results {
				ids = append(ids, res.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestRanker_Scoring(t *testing.T) {
	listings := []model.Listing{
		{ID: "1", Name: "Green Valley", Locality: "wakad", Price: floatPtr(80)},
		{ID: "2", Name: "Metro Heights", Locality: "baner", Price: floatPtr(100)},
		{ID: "3", Name: "Sunshine Residency", Locality: "baner"},
	}
	filters := model.FilterSet{
		Locality:        strPtr("baner"),
		ProjectName:     strPtr("Sunshine Residency"),
		BudgetMax:       nil,
		SoftPreferences: []string{"metro"},
	}

	results := NewRanker(DefaultWeights()).Rank(filters, listings, 10)
	require.Len(t, results, 3)

	// 50 name + 30 locality
	assert.Equal(t, "3", results[0].ID)
	assert.InDelta(t, 80.0, results[0].RelevanceScore, 1e-9)
	assert.Contains(t, results[0].MatchedReasons, ReasonProjectNameMatch)
	assert.Contains(t, results[0].MatchedReasons, ReasonLocalityMatch)

	// 30 locality + 10 soft + a little name similarity
	assert.Equal(t, "2", results[1].ID)
	assert.Contains(t, results[1].MatchedReasons, `Matches "metro"`)
	assert.Equal(t, "1", results[2].ID)
}

func TestRanker_BudgetProximity(t *testing.T) {
	listings := []model.Listing{
		{ID: "at-cap", Price: floatPtr(100)},
		{ID: "half", Price: floatPtr(50)},
		{ID: "cheap", Price: floatPtr(1)},
	}
	results := NewRanker(DefaultWeights()).Rank(model.FilterSet{BudgetMax: floatPtr(100)}, listings, 10)
	require.Len(t, results, 3)

	assert.Equal(t, []string{"cheap", "half", "at-cap"}, []string{results[0].ID, results[1].ID, results[2].ID})
	assert.InDelta(t, 9.9, results[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 5.0, results[1].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.0, results[2].RelevanceScore, 1e-9)

	// budgets below 1 lakh divide by 1
	small := NewRanker(DefaultWeights()).Rank(model.FilterSet{BudgetMax: floatPtr(0.5)},
		[]model.Listing{{ID: "x", Price: floatPtr(0.25)}}, 1)
	require.Len(t, small, 1)
	assert.InDelta(t, 2.5, small[0].RelevanceScore, 1e-9)
}

func TestRanker_TopKAndStability(t *testing.T) {
	listings := make([]model.Listing, 5)
	for i := range listings {
		listings[i] = model.Listing{ID: string(rune('a' + i))}
	}
	r := NewRanker(DefaultWeights())

	results := r.Rank(model.NewFilterSet(), listings, 3)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "c", results[2].ID)
	assert.Equal(t, []string{ReasonGeneralMatch}, results[0].MatchedReasons)

	assert.Empty(t, r.Rank(model.NewFilterSet(), listings, 0))
	assert.NotNil(t, r.Rank(model.NewFilterSet(), listings, -1))
	assert.Len(t, r.Rank(model.NewFilterSet(), listings, 100), 5)
}

func TestRanker_CustomWeights(t *testing.T) {
	listings := []model.Listing{{ID: "1", Name: "Metro Park"}}
	r := NewRanker(Weights{Soft: 3})
	results := r.Rank(model.FilterSet{SoftPreferences: []string{"metro", "park"}}, listings, 1)
	require.Len(t, results, 1)
	assert.Equal(t, 6.0, results[0].RelevanceScore)
}

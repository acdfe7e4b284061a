package service

import (
	"testing"

	"propsearch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(listings ...model.Listing) []model.ScoredListing {
	out := make([]model.ScoredListing, len(listings))
	for i, l := range listings {
		out[i] = model.ScoredListing{Listing: l, RelevanceScore: float64(len(listings) - i)}
	}
	return out
}

func TestBuildSummary(t *testing.T) {
	t.Run("no results", func(t *testing.T) {
		assert.Equal(t, NoMatchesSummary, BuildSummary(nil))
	})

	t.Run("single listing", func(t *testing.T) {
		got := BuildSummary(scored(scenarioListings()[0]))
		assert.Equal(t, "1 matching project found. Possession status: Ready: 1. "+
			"Price range: ₹1.10 Cr to ₹1.10 Cr. Most listings are in Baner.", got)
	})

	t.Run("mixed", func(t *testing.T) {
		got := BuildSummary(scored(
			model.Listing{ID: "1", Locality: "wakad", Price: floatPtr(75), Possession: model.PossessionReady},
			model.Listing{ID: "2", Locality: "baner", Price: floatPtr(120), Possession: model.PossessionUnderConstruction},
			model.Listing{ID: "3", Locality: "baner", Possession: model.PossessionUnderConstruction},
			model.Listing{ID: "4", Locality: "wakad"},
		))
		assert.Equal(t, "4 matching projects found. Possession status: Ready: 1, Under Construction: 2. "+
			"Price range: ₹75.00 L to ₹1.20 Cr. Most listings are in Wakad.", got)
	})

	t.Run("sentences without data are omitted", func(t *testing.T) {
		got := BuildSummary(scored(model.Listing{ID: "1"}, model.Listing{ID: "2"}))
		assert.Equal(t, "2 matching projects found.", got)
	})
}

func TestBuildCards(t *testing.T) {
	results := scored(scenarioListings()...)
	cards := BuildCards(results)
	require.Len(t, cards, 2)

	c := cards[0]
	assert.Equal(t, "3BHK in Baner", c.Title)
	assert.Equal(t, "Pune, Baner", c.CityLocality)
	assert.Equal(t, 3, *c.BHK)
	assert.Equal(t, "₹1.10 Cr", c.Price)
	assert.Equal(t, "Sunshine Residency", c.ProjectName)
	assert.Equal(t, "Ready", c.Possession)
	assert.NotNil(t, c.Amenities)
	assert.Empty(t, c.Amenities)
	assert.Equal(t, "/project/sunshine-residency-baner--1-10-cr", c.CTA)
	assert.Equal(t, 2.0, c.RelevanceScore)

	assert.Equal(t, "Under Construction", cards[1].Possession)
	assert.Equal(t, "/project/lakeview-heights-andheri--1-50-cr", cards[1].CTA)

	assert.NotNil(t, BuildCards(nil))
}

func TestBuildCard_MissingFields(t *testing.T) {
	c := BuildCard(model.ScoredListing{Listing: model.Listing{ID: "x", City: "pune", Price: floatPtr(75)}})
	assert.Equal(t, "BHK in Pune", c.Title)
	assert.Equal(t, "Pune", c.CityLocality)
	assert.Nil(t, c.BHK)
	assert.Equal(t, "", c.ProjectName)
	assert.Equal(t, "Unknown", c.Possession)
	assert.Equal(t, "/project/unknown---75-l", c.CTA)

	c = BuildCard(model.ScoredListing{Listing: model.Listing{ID: "y", Locality: "baner", BHK: intPtr(0)}})
	assert.Equal(t, "0BHK in Baner", c.Title)
	assert.Equal(t, "Baner", c.CityLocality)
	assert.Equal(t, "/project/unknown-baner--price-na", c.CTA)
}

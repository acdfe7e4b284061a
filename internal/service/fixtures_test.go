package service

import "propsearch/internal/model"

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func possPtr(p model.Possession) *model.Possession { return &p }

// scenarioListings is the two-listing dataset used across pipeline tests.
func scenarioListings() []model.Listing {
	return []model.Listing{
		{ID: "1", Name: "Sunshine Residency", City: "pune", Locality: "baner", BHK: intPtr(3), Price: floatPtr(110), Possession: model.PossessionReady},
		{ID: "2", Name: "Lakeview Heights", City: "mumbai", Locality: "andheri", BHK: intPtr(2), Price: floatPtr(150), Possession: model.PossessionUnderConstruction},
	}
}

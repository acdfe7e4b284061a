package service

import (
	"fmt"
	"strings"

	"propsearch/internal/model"
	"propsearch/internal/utils"
)

// BuildCards converts scored listings to UI cards, preserving order.
func BuildCards(results []model.ScoredListing) []model.Card {
	cards := make([]model.Card, 0, len(results))
	for _, r := range results {
		cards = append(cards, BuildCard(r))
	}
	return cards
}

// BuildCard renders one scored listing.
func BuildCard(r model.ScoredListing) model.Card {
	city := utils.TitleCase(r.City)
	locality := utils.TitleCase(r.Locality)

	bhk := ""
	if r.BHK != nil {
		bhk = fmt.Sprint(*r.BHK)
	}
	place := locality
	if place == "" {
		place = city
	}

	projectName := utils.TitleCase(r.Name)
	possession := "Unknown"
	if r.Possession != "" {
		possession = utils.TitleCase(r.Possession.Label())
	}

	return model.Card{
		Title:          strings.TrimSpace(fmt.Sprintf("%sBHK in %s", bhk, place)),
		CityLocality:   strings.Trim(fmt.Sprintf("%s, %s", city, locality), ", "),
		BHK:            r.BHK,
		Price:          utils.FormatPriceLakhs(r.Price),
		ProjectName:    projectName,
		Possession:     possession,
		Amenities:      []string{},
		CTA:            "/project/" + projectSlug(projectName, r.Locality, r.Price),
		RelevanceScore: r.RelevanceScore,
	}
}

// projectSlug builds "<project>-<locality>--<price>", e.g. "sunshine-residency-baner--1-10-cr".
func projectSlug(projectName, locality string, price *float64) string {
	project := "unknown"
	if projectName != "" {
		project = utils.Slugify(projectName)
	}
	loc := ""
	if locality != "" {
		loc = utils.Slugify(locality)
	}
	return strings.Trim(fmt.Sprintf("%s-%s--%s", project, loc, utils.PriceSlug(price)), "-")
}

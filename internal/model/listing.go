package model

// Possession is the canonical possession status of a listing.
type Possession string

const (
	PossessionReady             Possession = "ready"
	PossessionUnderConstruction Possession = "under_construction"
)

// Label returns the display form of the status, e.g. "Under Construction".
func (p Possession) Label() string {
	switch p {
	case PossessionReady:
		return "Ready"
	case PossessionUnderConstruction:
		return "Under Construction"
	case "":
		return "Unknown"
	}
	return string(p)
}

// Listing represents one row of the normalized property dataset.
// City, Locality and Possession are lower-cased and trimmed; an empty
// value means the field is absent.
type Listing struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	City       string     `json:"city,omitempty" db:"city"`
	Locality   string     `json:"locality,omitempty" db:"locality"`
	BHK        *int       `json:"bhk,omitempty" db:"bhk"`
	Price      *float64   `json:"price,omitempty" db:"price_lakhs"` // lakhs
	Possession Possession `json:"possession,omitempty" db:"possession"`
}

// ScoredListing is a listing that survived the hard filters, with its relevance score.
type ScoredListing struct {
	Listing
	RelevanceScore float64  `json:"relevance_score"`
	MatchedReasons []string `json:"matched_reasons"`
}

// Card is the UI-ready view of a scored listing.
type Card struct {
	Title          string   `json:"title"`
	CityLocality   string   `json:"city_locality"`
	BHK            *int     `json:"bhk"`
	Price          string   `json:"price"`
	ProjectName    string   `json:"project_name"`
	Possession     string   `json:"possession"`
	Amenities      []string `json:"amenities"`
	CTA            string   `json:"cta"`
	RelevanceScore float64  `json:"relevance_score"`
}

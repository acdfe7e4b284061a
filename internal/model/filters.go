package model

// FilterSet holds the structured conditions extracted from a query.
// Nil fields are absent. City, BHK, BudgetMax and Possession are hard
// filters; Locality, ProjectName and SoftPreferences only affect scoring.
type FilterSet struct {
	City            *string     `json:"city"`
	BHK             *int        `json:"bhk"`
	BudgetMax       *float64    `json:"budget_max"` // lakhs, inclusive
	Possession      *Possession `json:"possession"`
	Locality        *string     `json:"locality"`
	ProjectName     *string     `json:"project_name"`
	SoftPreferences []string    `json:"soft_preferences"`
}

// NewFilterSet returns a FilterSet with every field absent.
func NewFilterSet() FilterSet {
	return FilterSet{SoftPreferences: []string{}}
}

// IsEmpty reports whether no field is set.
func (f FilterSet) IsEmpty() bool {
	return f.City == nil && f.BHK == nil && f.BudgetMax == nil && f.Possession == nil &&
		f.Locality == nil && f.ProjectName == nil && len(f.SoftPreferences) == 0
}

// HasSoftPreference reports whether token was already added.
func (f FilterSet) HasSoftPreference(token string) bool {
	for _, s := range f.SoftPreferences {
		if s == token {
			return true
		}
	}
	return false
}

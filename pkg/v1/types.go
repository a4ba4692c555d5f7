package v1

import "github.com/4thel00z/wander/internal"

// Destination is one catalog entry.
type Destination struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Season         string `json:"season"`
	Budget         string `json:"budget"`
	FamilyFriendly bool   `json:"family_friendly"`
	GirlsFriendly  bool   `json:"girls_friendly"`
}

// Preference describes what a traveller is looking for. Type, Season and
// Budget must be values the catalog uses.
type Preference struct {
	Type           string `json:"type"`
	Season         string `json:"season"`
	Budget         string `json:"budget"`
	FamilyFriendly bool   `json:"family_friendly"`
	GirlsFriendly  bool   `json:"girls_friendly"`
}

// Recommendation is a destination with its similarity to the query, in [0, 1].
type Recommendation struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// UnknownCategoryError carries the field, the rejected value and the known values.
type UnknownCategoryError = internal.UnknownCategoryError

// ErrUnknownCategory matches any UnknownCategoryError with errors.Is.
var ErrUnknownCategory = internal.ErrUnknownCategory

func (d Destination) toInternal() internal.Destination {
	return internal.Destination{
		Name:           d.Name,
		Type:           d.Type,
		Season:         d.Season,
		Budget:         d.Budget,
		FamilyFriendly: d.FamilyFriendly,
		GirlsFriendly:  d.GirlsFriendly,
	}
}

func destinationFrom(d internal.Destination) Destination {
	return Destination{
		Name:           d.Name,
		Type:           d.Type,
		Season:         d.Season,
		Budget:         d.Budget,
		FamilyFriendly: d.FamilyFriendly,
		GirlsFriendly:  d.GirlsFriendly,
	}
}

func (p Preference) toInternal() internal.Preference {
	return internal.Preference{
		Type:           p.Type,
		Season:         p.Season,
		Budget:         p.Budget,
		FamilyFriendly: p.FamilyFriendly,
		GirlsFriendly:  p.GirlsFriendly,
	}
}

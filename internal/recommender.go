package internal

import (
	"fmt"
)

const DefaultTopK = 5

// Recommendation is one ranked destination.
type Recommendation struct {
	Destination Destination
	Score       float64
}

// Recommender is an encoded catalog snapshot. It is immutable once built and
// safe for concurrent use.
type Recommender struct {
	items      []Destination
	byName     map[string]int
	space      *FeatureSpace
	candidates []Candidate
}

func NewRecommender(items []Destination) (*Recommender, error) {
	space, vectors, err := EncodeCatalog(items)
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}

	owned := make([]Destination, len(items))
	copy(owned, items)

	r := &Recommender{
		items:      owned,
		byName:     make(map[string]int, len(owned)),
		space:      space,
		candidates: make([]Candidate, len(owned)),
	}
	for i, item := range owned {
		if _, dup := r.byName[item.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateDestination, item.Name)
		}
		r.byName[item.Name] = i
		r.candidates[i] = Candidate{Name: item.Name, Vector: vectors[i]}
	}

	return r, nil
}

func (r *Recommender) Space() *FeatureSpace {
	return r.space
}

func (r *Recommender) Destinations() []Destination {
	out := make([]Destination, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Recommender) Len() int {
	return len(r.items)
}

// Options returns the selectable values for each categorical field.
func (r *Recommender) Options() map[Field][]string {
	out := make(map[Field][]string, len(CategoricalFields))
	for _, f := range CategoricalFields {
		out[f] = r.space.Values(f)
	}
	return out
}

// Score returns every destination ranked against pref.
func (r *Recommender) Score(pref Preference) ([]Recommendation, error) {
	query, err := EncodeQuery(pref, r.space)
	if err != nil {
		return nil, err
	}

	ranked := Rank(query, r.candidates)

	out := make([]Recommendation, len(ranked))
	for i, s := range ranked {
		out[i] = Recommendation{
			Destination: r.items[r.byName[s.Name]],
			Score:       s.Score,
		}
	}
	return out, nil
}

// Recommend returns the k best destinations for pref. k <= 0 returns all of them.
func (r *Recommender) Recommend(pref Preference, k int) ([]Recommendation, error) {
	all, err := r.Score(pref)
	if err != nil {
		return nil, err
	}
	if k > 0 && k < len(all) {
		all = all[:k]
	}
	return all, nil
}

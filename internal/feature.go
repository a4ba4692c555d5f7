package internal

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCategory = errors.New("unknown category")

// UnknownCategoryError reports a preference value that the catalog never uses.
type UnknownCategoryError struct {
	Field Field
	Value string
	Known []string
}

func (e *UnknownCategoryError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("unknown %s %q (known: %s)", e.Field, e.Value, strings.Join(e.Known, ", "))
}

func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// Dimension is one axis of a feature space. Boolean axes have an empty Value.
type Dimension struct {
	Field Field
	Value string
}

func (d Dimension) String() string {
	if d.Value == "" {
		return string(d.Field)
	}
	return string(d.Field) + "=" + d.Value
}

// FeatureSpace is the frozen, ordered list of dimensions derived from a catalog.
// It is never modified after EncodeCatalog returns it.
type FeatureSpace struct {
	dims   []Dimension
	index  map[Field]map[string]int
	values map[Field][]string
}

type FeatureVector []float64

func (s *FeatureSpace) Len() int {
	return len(s.dims)
}

func (s *FeatureSpace) Dimensions() []Dimension {
	out := make([]Dimension, len(s.dims))
	copy(out, s.dims)
	return out
}

// Values returns the known values of a categorical field in first-seen order.
func (s *FeatureSpace) Values(f Field) []string {
	vals := s.values[f]
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

func (s *FeatureSpace) Lookup(f Field, value string) (int, bool) {
	i, ok := s.index[f][value]
	return i, ok
}

func (s *FeatureSpace) familyDim() int { return len(s.dims) - 2 }
func (s *FeatureSpace) girlsDim() int  { return len(s.dims) - 1 }

// EncodeCatalog derives the feature space from items and encodes every item in it.
// Dimensions are type values, then season values, then budget values (each in
// first-seen order), then family_friendly and girls_friendly.
func EncodeCatalog(items []Destination) (*FeatureSpace, []FeatureVector, error) {
	if len(items) == 0 {
		return nil, nil, ErrEmptyCatalog
	}

	space := &FeatureSpace{
		index:  make(map[Field]map[string]int, len(CategoricalFields)),
		values: make(map[Field][]string, len(CategoricalFields)),
	}

	for _, f := range CategoricalFields {
		space.index[f] = make(map[string]int)
		for _, item := range items {
			v := item.Category(f)
			if _, seen := space.index[f][v]; seen {
				continue
			}
			space.index[f][v] = len(space.dims)
			space.values[f] = append(space.values[f], v)
			space.dims = append(space.dims, Dimension{Field: f, Value: v})
		}
	}
	space.dims = append(space.dims,
		Dimension{Field: FieldFamilyFriendly},
		Dimension{Field: FieldGirlsFriendly},
	)

	vectors := make([]FeatureVector, len(items))
	for i, item := range items {
		vec, err := EncodeQuery(item.Preference(), space)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %q: %w", item.Name, err)
		}
		vectors[i] = vec
	}

	return space, vectors, nil
}

// EncodeQuery encodes pref in space. Every categorical value must be known to space.
func EncodeQuery(pref Preference, space *FeatureSpace) (FeatureVector, error) {
	vec := make(FeatureVector, space.Len())

	for _, f := range CategoricalFields {
		v := pref.Category(f)
		i, ok := space.Lookup(f, v)
		if !ok {
			return nil, &UnknownCategoryError{Field: f, Value: v, Known: space.Values(f)}
		}
		vec[i] = 1
	}

	if pref.FamilyFriendly {
		vec[space.familyDim()] = 1
	}
	if pref.GirlsFriendly {
		vec[space.girlsDim()] = 1
	}

	return vec, nil
}

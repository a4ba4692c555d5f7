package internal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b FeatureVector
		want float64
	}{
		{"identical", FeatureVector{1, 0, 1, 1}, FeatureVector{1, 0, 1, 1}, 1},
		{"orthogonal", FeatureVector{1, 0}, FeatureVector{0, 1}, 0},
		{"partial", FeatureVector{1, 1, 0}, FeatureVector{1, 0, 1}, 0.5},
		{"zero query", FeatureVector{0, 0, 0}, FeatureVector{1, 1, 0}, 0},
		{"zero item", FeatureVector{1, 0, 0}, FeatureVector{0, 0, 0}, 0},
		{"both zero", FeatureVector{0, 0}, FeatureVector{0, 0}, 0},
		{"empty", FeatureVector{}, FeatureVector{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-12)
		})
	}
}

func TestCosineSimilaritySelfIsExactlyOne(t *testing.T) {
	_, vectors, err := EncodeCatalog(DefaultCatalog())
	require.NoError(t, err)

	for i, v := range vectors {
		assert.Equal(t, 1.0, CosineSimilarity(v, v), "vector %d", i)
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := FeatureVector{1, 0, 1, 0, 1}
	b := FeatureVector{0, 1, 1, 1, 1}
	assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
	assert.InDelta(t, 2/math.Sqrt(12), CosineSimilarity(a, b), 1e-12)
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	assert.PanicsWithError(t, "dimension mismatch: expected 3, got 2", func() {
		CosineSimilarity(FeatureVector{1, 0, 0}, FeatureVector{1, 0})
	})
}

func TestRankDescending(t *testing.T) {
	items := []Candidate{
		{Name: "low", Vector: FeatureVector{0, 1}},
		{Name: "high", Vector: FeatureVector{1, 0}},
		{Name: "mid", Vector: FeatureVector{1, 1}},
	}

	got := Rank(FeatureVector{1, 0}, items)
	require.Len(t, got, 3)
	assert.Equal(t, "high", got[0].Name)
	assert.Equal(t, "mid", got[1].Name)
	assert.Equal(t, "low", got[2].Name)
	assert.InDelta(t, 1/math.Sqrt2, got[1].Score, 1e-12)
}

func TestRankStableTies(t *testing.T) {
	items := []Candidate{
		{Name: "first", Vector: FeatureVector{1, 0, 1}},
		{Name: "second", Vector: FeatureVector{1, 1, 0}},
		{Name: "best", Vector: FeatureVector{1, 0, 0}},
		{Name: "third", Vector: FeatureVector{1, 0, 1}},
	}

	got := Rank(FeatureVector{1, 0, 0}, items)
	names := []string{got[0].Name, got[1].Name, got[2].Name, got[3].Name}
	assert.Equal(t, []string{"best", "first", "second", "third"}, names)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(FeatureVector{1}, nil))
}

func TestRankMismatchPanics(t *testing.T) {
	items := []Candidate{{Name: "x", Vector: FeatureVector{1, 0}}}
	assert.Panics(t, func() {
		Rank(FeatureVector{1, 0, 0}, items)
	})
}

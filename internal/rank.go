package internal

import (
	"fmt"
	"math"
	"sort"
)

// DimensionMismatchError is raised (as a panic) when vectors from different
// feature spaces are compared.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Want, e.Got)
}

type Candidate struct {
	Name   string
	Vector FeatureVector
}

type Scored struct {
	Name  string
	Score float64 // 0-1 for non-negative features, higher is better
}

// CosineSimilarity returns dot(a, b) / (|a| |b|), or 0 when either norm is zero.
// It panics with *DimensionMismatchError if the lengths differ.
func CosineSimilarity(a, b FeatureVector) float64 {
	if len(a) != len(b) {
		panic(&DimensionMismatchError{Want: len(a), Got: len(b)})
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / math.Sqrt(normA*normB)
}

// Rank scores every candidate against query and orders them by descending score.
// Equal scores keep the order of items.
func Rank(query FeatureVector, items []Candidate) []Scored {
	results := make([]Scored, len(items))
	for i, item := range items {
		results[i] = Scored{
			Name:  item.Name,
			Score: CosineSimilarity(query, item.Vector),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

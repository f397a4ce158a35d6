package search

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// L2Distance computes the Euclidean distance between two vectors. Returns
// +Inf for mismatched or empty vectors so they sort behind every real match.
func L2Distance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Match holds a snippet ID and its distance to the query vector.
type Match struct {
	snippetID uuid.UUID
	distance  float64
}

// NewMatch creates a new Match.
func NewMatch(snippetID uuid.UUID, distance float64) Match {
	return Match{
		snippetID: snippetID,
		distance:  distance,
	}
}

// SnippetID returns the snippet identifier.
func (m Match) SnippetID() uuid.UUID { return m.snippetID }

// Distance returns the L2 distance to the query.
func (m Match) Distance() float64 { return m.distance }

// TopKNearest finds the k embeddings closest to the query vector, ordered by
// ascending distance. The sort is stable so ties keep insertion order.
func TopKNearest(query []float64, embeddings []Embedding, k int) []Match {
	if len(embeddings) == 0 || k <= 0 {
		return []Match{}
	}

	matches := make([]Match, 0, len(embeddings))
	for _, e := range embeddings {
		matches = append(matches, NewMatch(e.snippetID, L2Distance(query, e.vector)))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}

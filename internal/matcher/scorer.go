package matcher

import (
	"context"
	"math"
)

// Scorer encodes text into a fixed-length vector for similarity scoring.
// Implementations must be safe for concurrent use. The matcher treats the
// scorer as optional: without one, keyword scoring is the only pass, which
// is a fully supported mode rather than a degradation.
type Scorer interface {
	Encode(ctx context.Context, text string) ([]float64, error)
}

// cosine returns the cosine similarity of a and b. Mismatched or zero
// vectors score 0.
func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
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
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

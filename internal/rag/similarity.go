package rag

import "math"

// cosineSimilarity returns the normalized dot product of two vectors.
// Mismatched lengths score 0 (only the overlapping prefix would be
// meaningless). A zero-norm operand also scores 0 rather than dividing by
// zero, so degenerate embeddings can never produce NaN.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

package ranking

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// recencyTau is the decay constant in minutes (half-life ~125 minutes).
const recencyTau = 180.0

var nonWord = regexp.MustCompile(`\W+`)

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched or empty vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
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

// Jaccard returns the token-set Jaccard similarity of two texts. Tokens are
// lowercased and split on non-word-character runs; no stemming.
func Jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	union := make(map[string]struct{}, len(setA)+len(setB))
	intersection := 0
	for tok := range setA {
		union[tok] = struct{}{}
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	for tok := range setB {
		union[tok] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range nonWord.Split(strings.ToLower(s), -1) {
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}

// RecencyScore returns exp(-minutesSince/tau): 1.0 for brand-new items,
// decaying toward 0 as they age.
func RecencyScore(createdAt, now time.Time) float64 {
	minutes := now.Sub(createdAt).Minutes()
	if minutes < 0 {
		minutes = 0
	}
	return math.Exp(-minutes / recencyTau)
}

// MeanVector returns the element-wise mean of equal-dimensional vectors,
// or nil when the input is empty.
func MeanVector(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	mean := make([]float64, dim)
	for _, v := range vectors {
		for i := 0; i < dim && i < len(v); i++ {
			mean[i] += v[i]
		}
	}
	for i := range mean {
		mean[i] /= float64(len(vectors))
	}
	return mean
}

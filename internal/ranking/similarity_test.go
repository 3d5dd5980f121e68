package ranking

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical vectors", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"opposite vectors", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal vectors", []float64{1, 0}, []float64{0, 1}, 0},
		{"mismatched dimensions", []float64{1, 2}, []float64{1, 2, 3}, 0},
		{"empty input", nil, []float64{1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical texts", "hello world", "hello world", 1},
		{"disjoint texts", "alpha beta", "gamma delta", 0},
		{"half overlap", "a b", "b c", 1.0 / 3.0},
		{"case insensitive", "Hello World", "hello world", 1},
		{"punctuation split", "hello, world!", "hello world", 1},
		{"both empty", "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRecencyScore(t *testing.T) {
	now := time.Now()

	if got := RecencyScore(now, now); !almostEqual(got, 1) {
		t.Errorf("fresh item scored %v, want 1", got)
	}

	// exp(-180/180) = 1/e after one tau.
	oneTau := RecencyScore(now.Add(-180*time.Minute), now)
	if !almostEqual(oneTau, math.Exp(-1)) {
		t.Errorf("one-tau item scored %v, want %v", oneTau, math.Exp(-1))
	}

	// Strictly decreasing with age.
	newer := RecencyScore(now.Add(-10*time.Minute), now)
	older := RecencyScore(now.Add(-60*time.Minute), now)
	if newer <= older {
		t.Errorf("expected newer item to outscore older: %v vs %v", newer, older)
	}

	// Future timestamps clamp to 1.
	if got := RecencyScore(now.Add(5*time.Minute), now); !almostEqual(got, 1) {
		t.Errorf("future item scored %v, want 1", got)
	}
}

func TestMeanVector(t *testing.T) {
	if MeanVector(nil) != nil {
		t.Error("expected nil for empty input")
	}

	mean := MeanVector([][]float64{{1, 2}, {3, 4}})
	if !almostEqual(mean[0], 2) || !almostEqual(mean[1], 3) {
		t.Errorf("MeanVector = %v, want [2 3]", mean)
	}

	single := MeanVector([][]float64{{0.5, -0.5}})
	if !almostEqual(single[0], 0.5) || !almostEqual(single[1], -0.5) {
		t.Errorf("MeanVector single = %v, want [0.5 -0.5]", single)
	}
}

package ranking

import (
	"sort"
	"time"

	"github.com/mkarpis/notifly/internal/models"
)

// Score weights: relevance (or type boost in degraded mode) dominates,
// recency keeps fresh items near the top.
const (
	relevanceWeight = 0.6
	recencyWeight   = 0.4
)

// Type boosts for degraded-mode scoring. A follow is the strongest social
// signal, a post from someone you follow comes next.
const (
	boostFollow  = 0.3
	boostPost    = 0.2
	boostDefault = 0.1
)

// Strategy scores a single notification against a user's current interest
// state. Scores only define a total order within one ranking pass.
type Strategy interface {
	Score(n models.Notification, now time.Time) float64
}

// EmbeddingStrategy scores with cosine similarity between the user's
// interest vector and the notification's precomputed embedding, falling back
// to lexical overlap when either side is missing.
type EmbeddingStrategy struct {
	// Interest is the centroid of the user's recent engagement embeddings;
	// nil when no vectors could be computed.
	Interest []float64
	// InterestText is a free-text interest signal used for the Jaccard
	// fallback when no embedding path is available.
	InterestText string
}

func (s *EmbeddingStrategy) Score(n models.Notification, now time.Time) float64 {
	relevance := 0.0
	switch {
	case s.Interest != nil && n.Meta != nil && len(n.Meta.Embedding) > 0:
		// Remap cosine from [-1,1] to [0,1].
		relevance = (CosineSimilarity(n.Meta.Embedding, s.Interest) + 1) / 2
	case s.InterestText != "":
		relevance = Jaccard(n.Text, s.InterestText)
	}
	return relevanceWeight*relevance + recencyWeight*RecencyScore(n.CreatedAt, now)
}

// HeuristicStrategy is the degraded mode used when no embedding provider is
// configured: a fixed per-type boost plus recency. Deterministic and
// explainable with zero external calls.
type HeuristicStrategy struct{}

func (HeuristicStrategy) Score(n models.Notification, now time.Time) float64 {
	return relevanceWeight*typeBoost(n.Type) + recencyWeight*RecencyScore(n.CreatedAt, now)
}

func typeBoost(notificationType string) float64 {
	switch notificationType {
	case models.NotificationNewFollow:
		return boostFollow
	case models.NotificationNewPost:
		return boostPost
	default:
		return boostDefault
	}
}

// Ranked pairs a notification with its computed score.
type Ranked struct {
	Notification models.Notification
	Score        float64
}

// RankAll scores every notification with the given strategy.
func RankAll(notifications []models.Notification, strategy Strategy, now time.Time) []Ranked {
	ranked := make([]Ranked, len(notifications))
	for i, n := range notifications {
		ranked[i] = Ranked{Notification: n, Score: strategy.Score(n, now)}
	}
	return ranked
}

// SortRanked orders by score descending; equal scores break ties by
// created_at descending so the newest item wins.
func SortRanked(ranked []Ranked) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Notification.CreatedAt.After(ranked[j].Notification.CreatedAt)
	})
}

package ranking

import (
	"context"
	"log"

	"github.com/mkarpis/notifly/internal/embedding"
	"github.com/mkarpis/notifly/internal/repositories"
)

// interestWindow is how many recent reactions feed the interest vector.
const interestWindow = 20

// InterestBuilder aggregates a user's recent engagement into a single
// interest vector: the unweighted centroid of the embeddings of the posts
// the user recently reacted to.
type InterestBuilder struct {
	reactionRepository repositories.ReactionRepository
	postRepository     repositories.PostRepository
	provider           embedding.Provider
}

// NewInterestBuilder creates a new InterestBuilder
func NewInterestBuilder(reactionRepo repositories.ReactionRepository, postRepo repositories.PostRepository, provider embedding.Provider) *InterestBuilder {
	return &InterestBuilder{
		reactionRepository: reactionRepo,
		postRepository:     postRepo,
		provider:           provider,
	}
}

// BuildInterestVector returns the mean embedding of the posts behind the
// user's last reactions, or nil when no embedding could be obtained.
// Per-text embedding failures are skipped, not fatal.
func (b *InterestBuilder) BuildInterestVector(ctx context.Context, userID string) ([]float64, error) {
	reactions, err := b.reactionRepository.GetRecentByUserID(ctx, userID, interestWindow)
	if err != nil {
		return nil, err
	}
	if len(reactions) == 0 {
		return nil, nil
	}

	postIDs := make([]string, 0, len(reactions))
	for _, r := range reactions {
		postIDs = append(postIDs, r.PostID)
	}
	posts, err := b.postRepository.GetPostsByIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	contentByID := make(map[string]string, len(posts))
	for _, p := range posts {
		contentByID[p.ID] = p.Content
	}

	var vectors [][]float64
	for _, r := range reactions {
		content := contentByID[r.PostID]
		if content == "" {
			continue
		}
		vector, err := b.provider.Embed(ctx, content)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("skipping embedding for post %s: %v", r.PostID, err)
			continue
		}
		vectors = append(vectors, vector)
	}

	return MeanVector(vectors), nil
}

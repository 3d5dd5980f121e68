package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/mkarpis/notifly/internal/embedding"
	"github.com/mkarpis/notifly/internal/models"
	"github.com/mkarpis/notifly/internal/ranking"
	"github.com/mkarpis/notifly/internal/repositories"
)

// ErrNotFound is returned when a mark-read target does not exist.
var ErrNotFound = errors.New("notification not found")

// Sort modes for List
const (
	SortChrono = "chrono"
	SortAI     = "ai"
)

// DefaultLimit caps a notification page when the caller gives no limit.
const DefaultLimit = 50

// ListOptions are the query parameters for List
type ListOptions struct {
	Sort       string `query:"sort"`
	UnreadOnly bool   `query:"unreadOnly"`
	Limit      int    `query:"limit"`
}

// View is the outbound notification representation, the stored row enriched
// with the actor's display name and, for AI-ranked queries, the rank score.
// Views are copies; scoring never writes back to the store.
type View struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Type       string    `json:"type"`
	ActorID    string    `json:"actorId"`
	ActorName  string    `json:"actorName"`
	ObjectType string    `json:"objectType,omitempty"`
	ObjectID   string    `json:"objectId,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
	Read       bool      `json:"read"`
	AIScore    *float64  `json:"aiScore,omitempty"`
}

// Service retrieves a user's notifications, optionally re-ranked by the
// relevance scorer, and owns the mark-as-read mutation.
type Service struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
	interestBuilder        *ranking.InterestBuilder
	provider               embedding.Provider
}

// NewService creates a new notification query Service
func NewService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	interestBuilder *ranking.InterestBuilder,
	provider embedding.Provider,
) *Service {
	return &Service{
		notificationRepository: notificationRepo,
		userRepository:         userRepo,
		interestBuilder:        interestBuilder,
		provider:               provider,
	}
}

// List returns the user's notifications. Chrono mode is a plain
// created_at-descending page; AI mode re-scores the already-capped page
// (degraded heuristic when no provider is configured) and re-sorts by score
// with newest-first tie-breaking.
func (s *Service) List(ctx context.Context, userID string, opts ListOptions) ([]View, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	notifications, err := s.notificationRepository.GetByUserID(ctx, userID, opts.UnreadOnly, limit)
	if err != nil {
		return nil, err
	}

	var scores map[string]float64
	if opts.Sort == SortAI {
		ranked, err := s.rank(ctx, userID, notifications)
		if err != nil {
			return nil, err
		}
		ranking.SortRanked(ranked)
		scores = make(map[string]float64, len(ranked))
		notifications = notifications[:0]
		for _, r := range ranked {
			notifications = append(notifications, r.Notification)
			scores[r.Notification.ID] = r.Score
		}
	}

	return s.toViews(ctx, notifications, scores)
}

// rank scores one page of notifications, choosing degraded or full mode by
// provider availability.
func (s *Service) rank(ctx context.Context, userID string, notifications []models.Notification) ([]ranking.Ranked, error) {
	now := time.Now()

	if !s.provider.Available() {
		return ranking.RankAll(notifications, ranking.HeuristicStrategy{}, now), nil
	}

	interest, err := s.interestBuilder.BuildInterestVector(ctx, userID)
	if err != nil {
		// Interest failures degrade ranking quality, they never fail the query.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		interest = nil
	}
	strategy := &ranking.EmbeddingStrategy{Interest: interest}
	return ranking.RankAll(notifications, strategy, now), nil
}

// toViews attaches actor display names through a single batch lookup.
func (s *Service) toViews(ctx context.Context, notifications []models.Notification, scores map[string]float64) ([]View, error) {
	actorIDSet := make(map[string]struct{}, len(notifications))
	for _, n := range notifications {
		if n.ActorID != "" {
			actorIDSet[n.ActorID] = struct{}{}
		}
	}
	actorIDs := make([]string, 0, len(actorIDSet))
	for id := range actorIDSet {
		actorIDs = append(actorIDs, id)
	}

	actors, err := s.userRepository.GetUsersByIDs(ctx, actorIDs)
	if err != nil {
		return nil, err
	}
	nameByID := make(map[string]string, len(actors))
	for _, a := range actors {
		nameByID[a.ID] = a.Name
	}

	views := make([]View, 0, len(notifications))
	for _, n := range notifications {
		actorName := nameByID[n.ActorID]
		if actorName == "" {
			actorName = n.ActorID
		}
		view := View{
			ID:         n.ID,
			UserID:     n.UserID,
			Type:       n.Type,
			ActorID:    n.ActorID,
			ActorName:  actorName,
			ObjectType: n.ObjectType,
			ObjectID:   n.ObjectID,
			Text:       n.Text,
			CreatedAt:  n.CreatedAt,
			Read:       n.Read,
		}
		if scores != nil {
			if score, ok := scores[n.ID]; ok {
				view.AIScore = &score
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// MarkRead flips the read flag to true and returns the updated record.
// Already-read notifications are a no-op success; a missing ID is ErrNotFound.
func (s *Service) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	notification, err := s.notificationRepository.MarkAsRead(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return notification, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.notificationRepository.GetUnreadCount(ctx, userID)
}

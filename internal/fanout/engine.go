package fanout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mkarpis/notifly/internal/models"
	"github.com/mkarpis/notifly/internal/repositories"
)

// notificationTextLimit caps the text carried on a fan-out notification.
const notificationTextLimit = 140

// Receipt acknowledges a handled event with the identifiers of everything
// it created.
type Receipt struct {
	PostID          string   `json:"createdPost,omitempty"`
	LikedPostID     string   `json:"likedPost,omitempty"`
	FollowID        string   `json:"followId,omitempty"`
	NotificationIDs []string `json:"notificationIds,omitempty"`
}

// Engine consumes action events, performs the primary domain write
// (post/reaction/follow) and fans the event out as notification rows to
// every eligible recipient.
//
// The primary write always commits before any notification row is created;
// notification failures after that point are logged and tolerated rather
// than rolled back (at-least-once, best-effort delivery).
type Engine struct {
	userRepository         repositories.UserRepository
	postRepository         repositories.PostRepository
	followRepository       repositories.FollowRepository
	reactionRepository     repositories.ReactionRepository
	notificationRepository repositories.NotificationRepository
}

// NewEngine creates a new fan-out Engine
func NewEngine(
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	followRepo repositories.FollowRepository,
	reactionRepo repositories.ReactionRepository,
	notificationRepo repositories.NotificationRepository,
) *Engine {
	return &Engine{
		userRepository:         userRepo,
		postRepository:         postRepo,
		followRepository:       followRepo,
		reactionRepository:     reactionRepo,
		notificationRepository: notificationRepo,
	}
}

// HandleEvent processes one inbound event. Validation failures return a
// typed error with no side effects. Unrecognized event types are recorded as
// diagnostic notifications instead of being rejected, to keep the demo
// resilient to malformed events.
func (e *Engine) HandleEvent(ctx context.Context, event models.Event) (*Receipt, error) {
	if event.ActorID == "" {
		return nil, fmt.Errorf("%w: actorId required", ErrValidation)
	}
	if _, err := e.userRepository.GetUserByID(ctx, event.ActorID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, event.ActorID)
	}

	switch event.Type {
	case models.EventNewPost:
		return e.handleNewPost(ctx, event)
	case models.EventNewLike:
		return e.handleNewLike(ctx, event)
	case models.EventNewFollow:
		return e.handleNewFollow(ctx, event)
	default:
		return e.handleUnknown(ctx, event)
	}
}

// handleNewPost creates the post, then notifies every follower of the actor
// that still exists as a user, plus an optional explicit extra recipient.
func (e *Engine) handleNewPost(ctx context.Context, event models.Event) (*Receipt, error) {
	content := event.Text
	if content == "" {
		content = fmt.Sprintf("New post from user %s", event.ActorID)
	}

	post := &models.Post{
		ID:        uuid.NewString(),
		AuthorID:  event.ActorID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := e.postRepository.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	receipt := &Receipt{PostID: post.ID}

	followerIDs, err := e.followRepository.GetFollowerIDs(ctx, event.ActorID)
	if err != nil {
		log.Printf("fan-out: follower lookup for %s failed: %v", event.ActorID, err)
		return receipt, nil
	}
	recipients := e.existingUserIDs(ctx, followerIDs)

	notified := make(map[string]bool, len(recipients))
	text := truncate(content, notificationTextLimit)
	for _, followerID := range recipients {
		id := e.notify(ctx, &models.Notification{
			ID:         uuid.NewString(),
			UserID:     followerID,
			Type:       models.NotificationNewPost,
			ActorID:    event.ActorID,
			ObjectType: "post",
			ObjectID:   post.ID,
			Text:       text,
			CreatedAt:  time.Now(),
		})
		if id != "" {
			receipt.NotificationIDs = append(receipt.NotificationIDs, id)
			notified[followerID] = true
		}
	}

	// Demo convenience: an explicit extra recipient, deduplicated against
	// followers already notified.
	if event.NotifyUserID != "" && !notified[event.NotifyUserID] {
		if _, err := e.userRepository.GetUserByID(ctx, event.NotifyUserID); err == nil {
			id := e.notify(ctx, &models.Notification{
				ID:         uuid.NewString(),
				UserID:     event.NotifyUserID,
				Type:       models.NotificationNewPost,
				ActorID:    event.ActorID,
				ObjectType: "post",
				ObjectID:   post.ID,
				Text:       text,
				CreatedAt:  time.Now(),
			})
			if id != "" {
				receipt.NotificationIDs = append(receipt.NotificationIDs, id)
			}
		}
	}

	return receipt, nil
}

// handleNewLike records a like on the most recent post by the target user
// (when given and valid), else the most recent post system-wide, and
// notifies the post's author unless the actor liked their own post.
func (e *Engine) handleNewLike(ctx context.Context, event models.Event) (*Receipt, error) {
	targetUserID := event.TargetUserID
	if targetUserID == "" {
		targetUserID = event.ObjectID
	}

	var post *models.Post
	var err error
	if targetUserID != "" {
		post, err = e.postRepository.GetLatestPostByAuthor(ctx, targetUserID)
		if err != nil {
			return nil, fmt.Errorf("resolve target post: %w", err)
		}
	}
	if post == nil {
		post, err = e.postRepository.GetLatestPost(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve target post: %w", err)
		}
	}
	if post == nil {
		return nil, ErrNoPostAvailable
	}

	reaction := &models.Reaction{
		ID:        uuid.NewString(),
		PostID:    post.ID,
		UserID:    event.ActorID,
		Type:      models.ReactionLike,
		CreatedAt: time.Now(),
	}
	if err := e.reactionRepository.CreateReaction(ctx, reaction); err != nil {
		return nil, fmt.Errorf("create reaction: %w", err)
	}

	receipt := &Receipt{LikedPostID: post.ID}

	if post.AuthorID != event.ActorID {
		id := e.notify(ctx, &models.Notification{
			ID:         uuid.NewString(),
			UserID:     post.AuthorID,
			Type:       models.NotificationNewLike,
			ActorID:    event.ActorID,
			ObjectType: "post",
			ObjectID:   post.ID,
			Text:       "Someone liked your post",
			CreatedAt:  time.Now(),
		})
		if id != "" {
			receipt.NotificationIDs = append(receipt.NotificationIDs, id)
		}
	}

	if event.NotifyUserID != "" && event.NotifyUserID != post.AuthorID {
		if _, err := e.userRepository.GetUserByID(ctx, event.NotifyUserID); err == nil {
			id := e.notify(ctx, &models.Notification{
				ID:         uuid.NewString(),
				UserID:     event.NotifyUserID,
				Type:       models.NotificationNewLike,
				ActorID:    event.ActorID,
				ObjectType: "post",
				ObjectID:   post.ID,
				Text:       "Someone liked your post",
				CreatedAt:  time.Now(),
			})
			if id != "" {
				receipt.NotificationIDs = append(receipt.NotificationIDs, id)
			}
		}
	}

	return receipt, nil
}

// handleNewFollow creates the follow edge idempotently (a duplicate edge is
// silently skipped, not an error) and always notifies the followee.
func (e *Engine) handleNewFollow(ctx context.Context, event models.Event) (*Receipt, error) {
	followeeID := event.FolloweeID
	if followeeID == "" {
		followeeID = event.ObjectID
	}
	if followeeID == "" {
		return nil, fmt.Errorf("%w: followeeId required", ErrValidation)
	}
	if _, err := e.userRepository.GetUserByID(ctx, followeeID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFolloweeNotFound, followeeID)
	}

	existing, err := e.followRepository.GetFollow(ctx, event.ActorID, followeeID)
	if err != nil {
		return nil, fmt.Errorf("lookup follow edge: %w", err)
	}

	receipt := &Receipt{}
	if existing != nil {
		receipt.FollowID = existing.ID
	} else {
		follow := &models.Follow{
			ID:         uuid.NewString(),
			FollowerID: event.ActorID,
			FolloweeID: followeeID,
			CreatedAt:  time.Now(),
		}
		if err := e.followRepository.CreateFollow(ctx, follow); err != nil {
			// A concurrent identical event may have won the race on the
			// unique index; treat that as the duplicate-skip case.
			if again, lookupErr := e.followRepository.GetFollow(ctx, event.ActorID, followeeID); lookupErr == nil && again != nil {
				receipt.FollowID = again.ID
			} else {
				return nil, fmt.Errorf("create follow: %w", err)
			}
		} else {
			receipt.FollowID = follow.ID
		}
	}

	id := e.notify(ctx, &models.Notification{
		ID:         uuid.NewString(),
		UserID:     followeeID,
		Type:       models.NotificationNewFollow,
		ActorID:    event.ActorID,
		ObjectType: "user",
		ObjectID:   followeeID,
		Text:       "Started following you",
		CreatedAt:  time.Now(),
	})
	if id != "" {
		receipt.NotificationIDs = append(receipt.NotificationIDs, id)
	}

	if event.NotifyUserID != "" && event.NotifyUserID != followeeID {
		if _, err := e.userRepository.GetUserByID(ctx, event.NotifyUserID); err == nil {
			id := e.notify(ctx, &models.Notification{
				ID:         uuid.NewString(),
				UserID:     event.NotifyUserID,
				Type:       models.NotificationNewFollow,
				ActorID:    event.ActorID,
				ObjectType: "user",
				ObjectID:   followeeID,
				Text:       "Started following you",
				CreatedAt:  time.Now(),
			})
			if id != "" {
				receipt.NotificationIDs = append(receipt.NotificationIDs, id)
			}
		}
	}

	return receipt, nil
}

// handleUnknown records a diagnostic notification for any unrecognized
// event type instead of rejecting it.
func (e *Engine) handleUnknown(ctx context.Context, event models.Event) (*Receipt, error) {
	recipient := event.NotifyUserID
	if recipient == "" {
		recipient = event.ActorID
	}
	notificationType := event.Type
	if notificationType == "" {
		notificationType = models.NotificationUnknown
	}
	text := event.Text
	if text == "" {
		text = "event"
	}

	notification := &models.Notification{
		ID:         uuid.NewString(),
		UserID:     recipient,
		Type:       notificationType,
		ActorID:    event.ActorID,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Text:       text,
		CreatedAt:  time.Now(),
	}
	if err := e.notificationRepository.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("record diagnostic event: %w", err)
	}
	return &Receipt{NotificationIDs: []string{notification.ID}}, nil
}

// notify creates one notification row, returning its ID or "" on failure.
// Failures here are non-fatal to the primary write.
func (e *Engine) notify(ctx context.Context, notification *models.Notification) string {
	if err := e.notificationRepository.CreateNotification(ctx, notification); err != nil {
		log.Printf("fan-out: notification for %s failed: %v", notification.UserID, err)
		return ""
	}
	return notification.ID
}

// existingUserIDs filters candidate IDs to those that reference existing
// users, using one batch lookup.
func (e *Engine) existingUserIDs(ctx context.Context, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	users, err := e.userRepository.GetUsersByIDs(ctx, ids)
	if err != nil {
		log.Printf("fan-out: user batch lookup failed: %v", err)
		return nil
	}
	existing := make(map[string]bool, len(users))
	for _, u := range users {
		existing[u.ID] = true
	}
	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		if existing[id] {
			filtered = append(filtered, id)
		}
	}
	return filtered
}

// truncate keeps at most limit runes, replacing the tail with an ellipsis
// when the text is longer.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-1]) + "…"
}

package fanout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/mkarpis/notifly/internal/models"
	"github.com/mkarpis/notifly/internal/repositories"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	// One connection so every query sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.Reaction{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	engine := NewEngine(
		repositories.NewGormUserRepository(db),
		repositories.NewGormPostRepository(db),
		repositories.NewGormFollowRepository(db),
		repositories.NewGormReactionRepository(db),
		repositories.NewGormNotificationRepository(db),
	)
	return engine, db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.NewString(), Name: name, CreatedAt: time.Now()}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

func createFollow(t *testing.T, db *gorm.DB, followerID, followeeID string) {
	t.Helper()
	follow := &models.Follow{
		ID:         uuid.NewString(),
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now(),
	}
	if err := db.Create(follow).Error; err != nil {
		t.Fatalf("failed to create follow: %v", err)
	}
}

func countNotifications(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count notifications: %v", err)
	}
	return count
}

func TestHandleEventRejectsUnknownActor(t *testing.T) {
	engine, db := newTestEngine(t)

	_, err := engine.HandleEvent(context.Background(), models.Event{
		Type:    models.EventNewPost,
		ActorID: "nobody",
	})
	if !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound, got %v", err)
	}

	// A rejected event must leave no partial rows behind.
	var posts int64
	db.Model(&models.Post{}).Count(&posts)
	if posts != 0 {
		t.Errorf("expected no posts after rejected event, got %d", posts)
	}
	var notifications int64
	db.Model(&models.Notification{}).Count(&notifications)
	if notifications != 0 {
		t.Errorf("expected no notifications after rejected event, got %d", notifications)
	}
}

func TestHandleEventRejectsMissingActorID(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.HandleEvent(context.Background(), models.Event{Type: models.EventNewPost})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewPostNotifiesEveryFollower(t *testing.T) {
	engine, db := newTestEngine(t)

	author := createUser(t, db, "Alice")
	followers := []*models.User{
		createUser(t, db, "Bob"),
		createUser(t, db, "Charlie"),
		createUser(t, db, "Diana"),
	}
	for _, f := range followers {
		createFollow(t, db, f.ID, author.ID)
	}

	receipt, err := engine.HandleEvent(context.Background(), models.Event{
		Type:    models.EventNewPost,
		ActorID: author.ID,
		Text:    "hello followers",
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if receipt.PostID == "" {
		t.Fatal("expected a created post ID in the receipt")
	}
	if len(receipt.NotificationIDs) != len(followers) {
		t.Fatalf("expected %d notifications, got %d", len(followers), len(receipt.NotificationIDs))
	}

	for _, f := range followers {
		var n models.Notification
		if err := db.First(&n, "user_id = ?", f.ID).Error; err != nil {
			t.Fatalf("follower %s got no notification: %v", f.Name, err)
		}
		if n.Type != models.NotificationNewPost {
			t.Errorf("expected type new_post, got %s", n.Type)
		}
		if n.ObjectID != receipt.PostID {
			t.Errorf("notification references post %s, want %s", n.ObjectID, receipt.PostID)
		}
		if n.Text != "hello followers" {
			t.Errorf("unexpected notification text %q", n.Text)
		}
	}
}

func TestNewPostDefaultContent(t *testing.T) {
	engine, db := newTestEngine(t)
	author := createUser(t, db, "Alice")

	receipt, err := engine.HandleEvent(context.Background(), models.Event{
		Type:    models.EventNewPost,
		ActorID: author.ID,
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	var post models.Post
	if err := db.First(&post, "id = ?", receipt.PostID).Error; err != nil {
		t.Fatalf("post not found: %v", err)
	}
	want := "New post from user " + author.ID
	if post.Content != want {
		t.Errorf("expected default content %q, got %q", want, post.Content)
	}
}

func TestNewPostTruncatesNotificationText(t *testing.T) {
	engine, db := newTestEngine(t)
	author := createUser(t, db, "Alice")
	follower := createUser(t, db, "Bob")
	createFollow(t, db, follower.ID, author.ID)

	long := strings.Repeat("x", 200)
	if _, err := engine.HandleEvent(context.Background(), models.Event{
		Type:    models.EventNewPost,
		ActorID: author.ID,
		Text:    long,
	}); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	var n models.Notification
	if err := db.First(&n, "user_id = ?", follower.ID).Error; err != nil {
		t.Fatalf("notification not found: %v", err)
	}
	runes := []rune(n.Text)
	if len(runes) != 140 {
		t.Fatalf("expected 140 runes, got %d", len(runes))
	}
	if runes[len(runes)-1] != '…' {
		t.Errorf("expected ellipsis marker at the end, got %q", string(runes[len(runes)-1]))
	}
	if string(runes[:139]) != strings.Repeat("x", 139) {
		t.Error("expected the first 139 runes of the original content")
	}
}

func TestNewPostNotifyUserIDDeduplicated(t *testing.T) {
	engine, db := newTestEngine(t)
	author := createUser(t, db, "Alice")
	follower := createUser(t, db, "Bob")
	createFollow(t, db, follower.ID, author.ID)

	// notifyUserId pointing at an existing follower must not double-notify.
	receipt, err := engine.HandleEvent(context.Background(), models.Event{
		Type:         models.EventNewPost,
		ActorID:      author.ID,
		NotifyUserID: follower.ID,
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(receipt.NotificationIDs) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(receipt.NotificationIDs))
	}
	if got := countNotifications(t, db, follower.ID); got != 1 {
		t.Errorf("expected exactly 1 notification for follower, got %d", got)
	}
}

func TestNewPostNotifyUserIDExtraRecipient(t *testing.T) {
	engine, db := newTestEngine(t)
	author := createUser(t, db, "Alice")
	follower := createUser(t, db, "Bob")
	extra := createUser(t, db, "Eve")
	createFollow(t, db, follower.ID, author.ID)

	receipt, err := engine.HandleEvent(context.Background(), models.Event{
		Type:         models.EventNewPost,
		ActorID:      author.ID,
		NotifyUserID: extra.ID,
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(receipt.NotificationIDs) != 2 {
		t.Fatalf("expected 2 notifications (follower + extra), got %d", len(receipt.NotificationIDs))
	}
	if got := countNotifications(t, db, extra.ID); got != 1 {
		t.Errorf("expected 1 notification for extra recipient, got %d", got)
	}
}

func TestNewPostSkipsNonexistentNotifyUser(t *testing.T) {
	engine, db := newTestEngine(t)
	author := createUser(t, db, "Alice")

	receipt, err := engine.HandleEvent(context.Background(), models.Event{
		Type:         models.EventNewPost,
		ActorID:      author.ID,
		NotifyUserID: "ghost",
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(receipt.NotificationIDs) != 0 {
		t.Fatalf("expected no notifications, got %d", len(receipt.NotificationIDs))
	}
	var total int64
	db.Model(&models.Notification{}).Count(&total)
	if total != 0 {
		t.Errorf("expected no notification rows, got %d", total)
	}
}

func TestNewLikeWithoutAnyPost(t *testing.T) {
	engine, db := newTestEngine(t)
	actor := createUser(t, db, "Alice")

	_, err := engine.HandleEvent(context.Background(), models.Event{
		Type:    models.EventNewLike,
		ActorID: actor.ID,
	})
	if !errors.Is(err, ErrNoPostAvailable) {
		t.Fatalf("expected ErrNoPostAvailable, got %v", err)
	}

	var reactions int64
	db.Model(&models.Reaction{}).Count(&reactions)
	if reactions != 0 {
		t.Errorf("expected no reaction rows, got %d", reactions)
	}
}

func TestNewLikeTargetsLatestPostByTargetUser(t *testing.T) {
	engine, db := newTestEngine(t)
	author := createUser(t, db, "Alice")
	other := createUser(t, db, "Bob")
	liker := createUser(t, db, "Charlie")

	old := &models.Post{ID: uuid.NewString(), AuthorID: author.ID, Content: "old", CreatedAt: time.Now().Add(-2 * time.Hour)}
	latest := &models.Post{ID: uuid.NewString(), AuthorID: author.ID, Content: "latest", CreatedAt: time.Now().Add(-1 * time.Hour)}
	newest := &models.Post{ID: uuid.NewString(), AuthorID: other.ID, Content: "newest overall", CreatedAt: time.Now()}
	for _, p := range []*models.Post{old, latest, newest} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("failed to create post: %v", err)
		}
	}

	receipt, err := engine.HandleEvent(context.Background(), models.Event{
		Type:         models.EventNewLike,
		ActorID:      liker.ID,
		TargetUserID: author.ID,
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if receipt.LikedPostID != latest.ID {
		t.Errorf("expected latest post by target %s, got %s", latest.ID, receipt.LikedPostID)
	}

	var reaction models.Reaction
	if err := db.First(&reaction, "post_id = ?", latest.ID).Error; err != nil {
		t.Fatalf("reaction not found: %v", err)
	}
	if reaction.Type != models.ReactionLike {
		t.Errorf("expected like reaction, got %s", reaction.Type)
	}
	if got := countNotifications(t, db, author.ID); got != 1 {
		t.Errorf("expected 1 notification for the author, got %d", got)
	}
}

func TestNewLikeFallsBackToLatestPostOverall(t *testing.T) {
	engine, db := newTestEngine(t)
	author := createUser(t, db, "Alice")
	liker := createUser(t, db, "Bob")

	post := &models.Post{ID: uuid.NewString(), AuthorID: author.ID, Content: "only post", CreatedAt: time.Now()}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	// The target user has no posts; the like lands on the latest overall.
	receipt, err := engine.HandleEvent(context.Background(), models.Event{
		Type:         models.EventNewLike,
		ActorID:      liker.ID,
		TargetUserID: liker.ID,
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if receipt.LikedPostID != post.ID {
		t.Errorf("expected fallback to latest post %s, got %s", post.ID, receipt.LikedPostID)
	}
}

func TestNewLikeOwnPostCreatesNoNotification(t *testing.T) {
	engine, db := newTestEngine(t)
	author := createUser(t, db, "Alice")

	post := &models.Post{ID: uuid.NewString(), AuthorID: author.ID, Content: "mine", CreatedAt: time.Now()}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	receipt, err := engine.HandleEvent(context.Background(), models.Event{
		Type:    models.EventNewLike,
		ActorID: author.ID,
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(receipt.NotificationIDs) != 0 {
		t.Errorf("expected no notifications for self-like, got %d", len(receipt.NotificationIDs))
	}

	// The reaction itself is still recorded.
	var reactions int64
	db.Model(&models.Reaction{}).Count(&reactions)
	if reactions != 1 {
		t.Errorf("expected 1 reaction, got %d", reactions)
	}
}

func TestRepeatedLikesAllRecorded(t *testing.T) {
	engine, db := newTestEngine(t)
	author := createUser(t, db, "Alice")
	liker := createUser(t, db, "Bob")

	post := &models.Post{ID: uuid.NewString(), AuthorID: author.ID, Content: "popular", CreatedAt: time.Now()}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := engine.HandleEvent(context.Background(), models.Event{
			Type:    models.EventNewLike,
			ActorID: liker.ID,
		}); err != nil {
			t.Fatalf("HandleEvent %d failed: %v", i, err)
		}
	}

	var reactions int64
	db.Model(&models.Reaction{}).Where("post_id = ? AND user_id = ?", post.ID, liker.ID).Count(&reactions)
	if reactions != 3 {
		t.Errorf("expected 3 reaction rows, got %d", reactions)
	}
}

func TestNewFollowIsIdempotent(t *testing.T) {
	engine, db := newTestEngine(t)
	follower := createUser(t, db, "Alice")
	followee := createUser(t, db, "Bob")

	event := models.Event{
		Type:       models.EventNewFollow,
		ActorID:    follower.ID,
		FolloweeID: followee.ID,
	}

	var firstFollowID string
	for i := 0; i < 3; i++ {
		receipt, err := engine.HandleEvent(context.Background(), event)
		if err != nil {
			t.Fatalf("replay %d failed: %v", i, err)
		}
		if receipt.FollowID == "" {
			t.Fatalf("replay %d returned no follow ID", i)
		}
		if firstFollowID == "" {
			firstFollowID = receipt.FollowID
		} else if receipt.FollowID != firstFollowID {
			t.Errorf("replay %d returned follow %s, want %s", i, receipt.FollowID, firstFollowID)
		}
	}

	var edges int64
	db.Model(&models.Follow{}).Where("follower_id = ? AND followee_id = ?", follower.ID, followee.ID).Count(&edges)
	if edges != 1 {
		t.Fatalf("expected exactly 1 follow edge after replays, got %d", edges)
	}

	// Every replay still notifies the followee.
	if got := countNotifications(t, db, followee.ID); got != 3 {
		t.Errorf("expected 3 follow notifications, got %d", got)
	}
}

func TestNewFollowValidation(t *testing.T) {
	engine, db := newTestEngine(t)
	actor := createUser(t, db, "Alice")

	tests := []struct {
		name    string
		event   models.Event
		wantErr error
	}{
		{
			name:    "missing followee field",
			event:   models.Event{Type: models.EventNewFollow, ActorID: actor.ID},
			wantErr: ErrValidation,
		},
		{
			name:    "nonexistent followee",
			event:   models.Event{Type: models.EventNewFollow, ActorID: actor.ID, FolloweeID: "ghost"},
			wantErr: ErrFolloweeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.HandleEvent(context.Background(), tt.event)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	var edges int64
	db.Model(&models.Follow{}).Count(&edges)
	if edges != 0 {
		t.Errorf("expected no follow edges after rejected events, got %d", edges)
	}
}

func TestNewFollowAcceptsObjectIDAlias(t *testing.T) {
	engine, db := newTestEngine(t)
	follower := createUser(t, db, "Alice")
	followee := createUser(t, db, "Bob")

	receipt, err := engine.HandleEvent(context.Background(), models.Event{
		Type:     models.EventNewFollow,
		ActorID:  follower.ID,
		ObjectID: followee.ID,
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if receipt.FollowID == "" {
		t.Fatal("expected a follow ID")
	}
	if got := countNotifications(t, db, followee.ID); got != 1 {
		t.Errorf("expected 1 notification for followee, got %d", got)
	}
}

func TestUnknownEventTypeRecordsDiagnostic(t *testing.T) {
	engine, db := newTestEngine(t)
	actor := createUser(t, db, "Alice")

	receipt, err := engine.HandleEvent(context.Background(), models.Event{
		Type:    "mystery_event",
		ActorID: actor.ID,
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(receipt.NotificationIDs) != 1 {
		t.Fatalf("expected 1 diagnostic notification, got %d", len(receipt.NotificationIDs))
	}

	var n models.Notification
	if err := db.First(&n, "id = ?", receipt.NotificationIDs[0]).Error; err != nil {
		t.Fatalf("diagnostic notification not found: %v", err)
	}
	if n.Type != "mystery_event" {
		t.Errorf("expected type mystery_event, got %s", n.Type)
	}
	if n.UserID != actor.ID {
		t.Errorf("expected diagnostic recipient %s, got %s", actor.ID, n.UserID)
	}
	if n.Text != "event" {
		t.Errorf("expected default text \"event\", got %q", n.Text)
	}
}

func TestEmptyEventTypeRecordedAsUnknown(t *testing.T) {
	engine, db := newTestEngine(t)
	actor := createUser(t, db, "Alice")

	receipt, err := engine.HandleEvent(context.Background(), models.Event{ActorID: actor.ID})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	var n models.Notification
	if err := db.First(&n, "id = ?", receipt.NotificationIDs[0]).Error; err != nil {
		t.Fatalf("notification not found: %v", err)
	}
	if n.Type != models.NotificationUnknown {
		t.Errorf("expected type unknown, got %s", n.Type)
	}
}

func TestUnknownEventPrefersNotifyUserID(t *testing.T) {
	engine, db := newTestEngine(t)
	actor := createUser(t, db, "Alice")
	recipient := createUser(t, db, "Bob")

	receipt, err := engine.HandleEvent(context.Background(), models.Event{
		Type:         "weird",
		ActorID:      actor.ID,
		NotifyUserID: recipient.ID,
		Text:         "something odd",
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	var n models.Notification
	if err := db.First(&n, "id = ?", receipt.NotificationIDs[0]).Error; err != nil {
		t.Fatalf("notification not found: %v", err)
	}
	if n.UserID != recipient.ID {
		t.Errorf("expected recipient %s, got %s", recipient.ID, n.UserID)
	}
	if n.Text != "something odd" {
		t.Errorf("unexpected text %q", n.Text)
	}
}

// TestPostWithoutFollowersScenario covers the end-to-end demo scenario:
// Bob follows nobody, so Alice's post reaches him only through an explicit
// notifyUserId.
func TestPostWithoutFollowersScenario(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := createUser(t, db, "Alice")
	bob := createUser(t, db, "Bob")

	if _, err := engine.HandleEvent(context.Background(), models.Event{
		Type:    models.EventNewPost,
		ActorID: alice.ID,
		Text:    "first post",
	}); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if got := countNotifications(t, db, bob.ID); got != 0 {
		t.Fatalf("expected zero notifications for Bob without a follow edge, got %d", got)
	}

	if _, err := engine.HandleEvent(context.Background(), models.Event{
		Type:         models.EventNewPost,
		ActorID:      alice.ID,
		Text:         "second post",
		NotifyUserID: bob.ID,
	}); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if got := countNotifications(t, db, bob.ID); got != 1 {
		t.Fatalf("expected exactly one notification for Bob via notifyUserId, got %d", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short text unchanged", "hello", 140, "hello"},
		{"exact limit unchanged", strings.Repeat("a", 10), 10, strings.Repeat("a", 10)},
		{"over limit truncated", strings.Repeat("a", 11), 10, strings.Repeat("a", 9) + "…"},
		{"multibyte runes counted as one", strings.Repeat("é", 12), 10, strings.Repeat("é", 9) + "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.limit); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

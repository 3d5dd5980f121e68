package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mkarpis/notifly/internal/embedding"
	"github.com/mkarpis/notifly/internal/models"
	"github.com/mkarpis/notifly/internal/repositories"
)

// demoUser is a seed persona.
type demoUser struct {
	Name string
	Role string
	Bio  string
}

// Demo users with roles and personalities for better interaction
var demoUsers = []demoUser{
	{"Alice", "Tech Lead", "Full-stack developer passionate about clean code"},
	{"Bob", "Designer", "UI/UX designer with an eye for detail"},
	{"Charlie", "Product Manager", "Turning ideas into reality"},
	{"Diana", "Marketing", "Digital marketing specialist"},
	{"Eve", "Developer", "Backend developer extraordinaire"},
	{"Frank", "Content Creator", "Creating engaging content daily"},
	{"Grace", "Developer", "Frontend specialist focusing on React"},
	{"Henry", "DevOps", "Automation and infrastructure expert"},
	{"Ivy", "QA Engineer", "Finding bugs before they find you"},
	{"Jack", "Developer", "Full-stack developer who loves TypeScript"},
}

var postTopics = []string{
	"Just finished a new feature! 🚀",
	"Thoughts on modern web development...",
	"Excited to share my latest project!",
	"Team collaboration at its best 🤝",
	"Learning something new today:",
	"Quick tip for fellow developers:",
}

var comments = []string{
	"Great work! 👏",
	"This is impressive!",
	"Thanks for sharing!",
	"Interesting perspective 🤔",
	"Looking forward to more!",
	"Really helpful, thanks!",
}

// Result reports what a reseed created.
type Result struct {
	Users         int `json:"users"`
	Follows       int `json:"follows"`
	Posts         int `json:"posts"`
	Reactions     int `json:"reactions"`
	Notifications int `json:"notifications"`
}

// Seeder atomically clears and repopulates the store with demo data. It is
// the only component that deletes entities.
type Seeder struct {
	userRepository         repositories.UserRepository
	postRepository         repositories.PostRepository
	followRepository       repositories.FollowRepository
	reactionRepository     repositories.ReactionRepository
	notificationRepository repositories.NotificationRepository
	provider               embedding.Provider

	// mu serializes reseed runs; a bulk delete-then-recreate must never
	// interleave with another reseed.
	mu sync.Mutex
}

// NewSeeder creates a new Seeder
func NewSeeder(
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	followRepo repositories.FollowRepository,
	reactionRepo repositories.ReactionRepository,
	notificationRepo repositories.NotificationRepository,
	provider embedding.Provider,
) *Seeder {
	return &Seeder{
		userRepository:         userRepo,
		postRepository:         postRepo,
		followRepository:       followRepo,
		reactionRepository:     reactionRepo,
		notificationRepository: notificationRepo,
		provider:               provider,
	}
}

// Reseed clears every table and repopulates the demo dataset. In fast mode
// notifications are created without embeddings; the slow path calls the
// provider per notification so AI ranking has vectors to work with.
func (s *Seeder) Reseed(ctx context.Context, fast bool) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Printf("seed: starting (fast=%v)", fast)

	// Children first so no row ever references a deleted parent.
	if err := s.notificationRepository.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear notifications: %w", err)
	}
	if err := s.reactionRepository.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear reactions: %w", err)
	}
	if err := s.postRepository.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear posts: %w", err)
	}
	if err := s.followRepository.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear follows: %w", err)
	}
	if err := s.userRepository.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clear users: %w", err)
	}

	users := make([]models.User, 0, len(demoUsers))
	for _, d := range demoUsers {
		user := models.User{
			ID:        uuid.NewString(),
			Name:      d.Name,
			Bio:       fmt.Sprintf("%s - %s", d.Role, d.Bio),
			CreatedAt: time.Now(),
		}
		if err := s.userRepository.CreateUser(ctx, &user); err != nil {
			return nil, fmt.Errorf("create user %s: %w", d.Name, err)
		}
		users = append(users, user)
	}

	follows := s.buildFollows(users)
	for i := range follows {
		if err := s.followRepository.CreateFollow(ctx, &follows[i]); err != nil {
			return nil, fmt.Errorf("create follow: %w", err)
		}
	}

	posts := s.buildPosts(users)
	for i := range posts {
		if err := s.postRepository.CreatePost(ctx, &posts[i]); err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
	}

	reactions := s.buildReactions(users, posts)
	for i := range reactions {
		if err := s.reactionRepository.CreateReaction(ctx, &reactions[i]); err != nil {
			return nil, fmt.Errorf("create reaction: %w", err)
		}
	}

	notifications := s.buildNotifications(follows, posts, reactions)
	if fast {
		if err := s.notificationRepository.CreateNotifications(ctx, notifications); err != nil {
			return nil, fmt.Errorf("create notifications: %w", err)
		}
	} else {
		for i := range notifications {
			s.attachEmbedding(ctx, &notifications[i])
			if err := s.notificationRepository.CreateNotification(ctx, &notifications[i]); err != nil {
				return nil, fmt.Errorf("create notification: %w", err)
			}
		}
	}

	result := &Result{
		Users:         len(users),
		Follows:       len(follows),
		Posts:         len(posts),
		Reactions:     len(reactions),
		Notifications: len(notifications),
	}
	log.Printf("seed: completed %+v", result)
	return result, nil
}

// buildFollows gives every user 2-4 random follows, deduplicated.
func (s *Seeder) buildFollows(users []models.User) []models.Follow {
	var follows []models.Follow
	seen := make(map[string]bool)
	for _, user := range users {
		numFollows := rand.Intn(3) + 2
		for i := 0; i < numFollows; i++ {
			other := users[rand.Intn(len(users))]
			if other.ID == user.ID {
				continue
			}
			key := user.ID + "/" + other.ID
			if seen[key] {
				continue
			}
			seen[key] = true
			follows = append(follows, models.Follow{
				ID:         uuid.NewString(),
				FollowerID: user.ID,
				FolloweeID: other.ID,
				CreatedAt:  time.Now(),
			})
		}
	}
	return follows
}

// buildPosts gives every user 1-2 persona-flavored posts.
func (s *Seeder) buildPosts(users []models.User) []models.Post {
	var posts []models.Post
	for _, user := range users {
		numPosts := rand.Intn(2) + 1
		for i := 0; i < numPosts; i++ {
			posts = append(posts, models.Post{
				ID:        uuid.NewString(),
				AuthorID:  user.ID,
				Content:   generatePostContent(),
				CreatedAt: time.Now(),
			})
		}
	}
	return posts
}

// buildReactions adds 0-1 reactions per post from a random non-author.
func (s *Seeder) buildReactions(users []models.User, posts []models.Post) []models.Reaction {
	var reactions []models.Reaction
	for _, post := range posts {
		if rand.Intn(2) == 0 {
			continue
		}
		reactor := users[rand.Intn(len(users))]
		if reactor.ID == post.AuthorID {
			continue
		}
		reactionType := models.ReactionLike
		text := ""
		if rand.Float64() >= 0.7 {
			reactionType = models.ReactionComment
			text = generateComment()
		}
		reactions = append(reactions, models.Reaction{
			ID:        uuid.NewString(),
			PostID:    post.ID,
			UserID:    reactor.ID,
			Type:      reactionType,
			Text:      text,
			CreatedAt: time.Now(),
		})
	}
	return reactions
}

// buildNotifications derives the notification rows the fan-out engine would
// have produced for the seeded follows, posts and reactions.
func (s *Seeder) buildNotifications(follows []models.Follow, posts []models.Post, reactions []models.Reaction) []models.Notification {
	var notifications []models.Notification

	for _, f := range follows {
		notifications = append(notifications, models.Notification{
			ID:         uuid.NewString(),
			UserID:     f.FolloweeID,
			Type:       models.NotificationNewFollow,
			ActorID:    f.FollowerID,
			ObjectType: "user",
			ObjectID:   f.FolloweeID,
			Text:       "Someone started following you.",
			CreatedAt:  time.Now(),
		})
	}

	followersByFollowee := make(map[string][]string)
	for _, f := range follows {
		followersByFollowee[f.FolloweeID] = append(followersByFollowee[f.FolloweeID], f.FollowerID)
	}
	postByID := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		postByID[p.ID] = p
		for _, followerID := range followersByFollowee[p.AuthorID] {
			notifications = append(notifications, models.Notification{
				ID:         uuid.NewString(),
				UserID:     followerID,
				Type:       models.NotificationNewPost,
				ActorID:    p.AuthorID,
				ObjectType: "post",
				ObjectID:   p.ID,
				Text:       truncate(p.Content, 60),
				CreatedAt:  time.Now(),
			})
		}
	}

	for _, r := range reactions {
		post, ok := postByID[r.PostID]
		if !ok || post.AuthorID == r.UserID {
			continue
		}
		notification := models.Notification{
			ID:        uuid.NewString(),
			UserID:    post.AuthorID,
			ActorID:   r.UserID,
			ObjectID:  post.ID,
			CreatedAt: time.Now(),
		}
		if r.Type == models.ReactionLike {
			notification.Type = models.NotificationNewLike
			notification.ObjectType = "post"
			notification.Text = "Someone liked your post"
		} else {
			notification.Type = models.NotificationNewComment
			notification.ObjectType = "comment"
			notification.Text = truncate(r.Text, 60)
		}
		notifications = append(notifications, notification)
	}

	return notifications
}

// attachEmbedding populates Meta.Embedding via the provider, skipping on
// any failure.
func (s *Seeder) attachEmbedding(ctx context.Context, n *models.Notification) {
	if !s.provider.Available() || n.Text == "" {
		return
	}
	vector, err := s.provider.Embed(ctx, n.Text)
	if err != nil {
		log.Printf("seed: embedding for notification %s failed: %v", n.ID, err)
		return
	}
	n.Meta = &models.NotificationMeta{Embedding: vector}
}

func generatePostContent() string {
	topic := postTopics[rand.Intn(len(postTopics))]
	return fmt.Sprintf("%s #coding #tech #development", topic)
}

func generateComment() string {
	return comments[rand.Intn(len(comments))]
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

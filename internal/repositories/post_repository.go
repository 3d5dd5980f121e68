package repositories

import (
	"context"
	"errors"

	"github.com/mkarpis/notifly/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error)
	GetPostsByAuthorID(ctx context.Context, authorID string, limit int) ([]models.Post, error)
	// GetLatestPostByAuthor returns the most recent post by the given author,
	// or nil when the author has none.
	GetLatestPostByAuthor(ctx context.Context, authorID string) (*models.Post, error)
	// GetLatestPost returns the most recent post system-wide, or nil when the
	// store holds no posts at all.
	GetLatestPost(ctx context.Context) (*models.Post, error)
	DeleteAll(ctx context.Context) error
}

// GormPostRepository implements PostRepository on top of gorm
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *GormPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *GormPostRepository) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var posts []models.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *GormPostRepository) GetPostsByAuthorID(ctx context.Context, authorID string, limit int) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).Where("author_id = ?", authorID).
		Order("created_at DESC").Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *GormPostRepository) GetLatestPostByAuthor(ctx context.Context, authorID string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Where("author_id = ?", authorID).
		Order("created_at DESC").First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *GormPostRepository) GetLatestPost(ctx context.Context) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Order("created_at DESC").First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *GormPostRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Post{}).Error
}

package repositories

import (
	"context"
	"errors"

	"github.com/mkarpis/notifly/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow edge operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	GetFollow(ctx context.Context, followerID, followeeID string) (*models.Follow, error)
	// GetFollowerIDs returns the IDs of every user following userID
	// (reverse lookup on the followee column).
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
	GetFollows(ctx context.Context) ([]models.Follow, error)
	DeleteAll(ctx context.Context) error
}

// GormFollowRepository implements FollowRepository on top of gorm
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GormFollowRepository
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

func (r *GormFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

// GetFollow returns the follow edge between the two users, or nil when no
// such edge exists.
func (r *GormFollowRepository) GetFollow(ctx context.Context, followerID, followeeID string) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		First(&follow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *GormFollowRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *GormFollowRepository) GetFollows(ctx context.Context) ([]models.Follow, error) {
	var follows []models.Follow
	if err := r.db.WithContext(ctx).Find(&follows).Error; err != nil {
		return nil, err
	}
	return follows, nil
}

func (r *GormFollowRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Follow{}).Error
}

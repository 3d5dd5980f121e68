package repositories

import (
	"context"

	"github.com/mkarpis/notifly/internal/models"
	"gorm.io/gorm"
)

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	CreateReaction(ctx context.Context, reaction *models.Reaction) error
	// GetRecentByUserID returns the user's most recent reactions,
	// newest first, capped at limit.
	GetRecentByUserID(ctx context.Context, userID string, limit int) ([]models.Reaction, error)
	DeleteAll(ctx context.Context) error
}

// GormReactionRepository implements ReactionRepository on top of gorm
type GormReactionRepository struct {
	db *gorm.DB
}

// NewGormReactionRepository creates a new GormReactionRepository
func NewGormReactionRepository(db *gorm.DB) *GormReactionRepository {
	return &GormReactionRepository{db: db}
}

func (r *GormReactionRepository) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *GormReactionRepository) GetRecentByUserID(ctx context.Context, userID string, limit int) ([]models.Reaction, error) {
	var reactions []models.Reaction
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&reactions).Error; err != nil {
		return nil, err
	}
	return reactions, nil
}

func (r *GormReactionRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Reaction{}).Error
}

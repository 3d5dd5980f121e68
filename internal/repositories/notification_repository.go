package repositories

import (
	"context"
	"errors"

	"github.com/mkarpis/notifly/internal/models"
	"gorm.io/gorm"
)

// ErrNotificationNotFound is returned when a notification ID does not exist.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	CreateNotifications(ctx context.Context, notifications []models.Notification) error
	// GetByUserID returns the recipient's notifications ordered by
	// created_at descending, optionally restricted to unread rows,
	// capped at limit.
	GetByUserID(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	MarkAsRead(ctx context.Context, id string) (*models.Notification, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	DeleteAll(ctx context.Context) error
}

// GormNotificationRepository implements NotificationRepository on top of gorm
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// CreateNotifications inserts a batch of notification rows in one statement.
func (r *GormNotificationRepository) CreateNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

func (r *GormNotificationRepository) GetByUserID(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	var notifications []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *GormNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// MarkAsRead flips the read flag to true and returns the updated row.
// Marking an already-read notification is a no-op success.
func (r *GormNotificationRepository) MarkAsRead(ctx context.Context, id string) (*models.Notification, error) {
	notification, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification.Read {
		return notification, nil
	}
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).Update("read", true).Error; err != nil {
		return nil, err
	}
	notification.Read = true
	return notification, nil
}

func (r *GormNotificationRepository) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).Count(&count).Error
	return count, err
}

func (r *GormNotificationRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Notification{}).Error
}

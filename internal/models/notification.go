package models

import "time"

// Notification types produced by the fan-out engine
const (
	NotificationNewPost    = "new_post"
	NotificationNewLike    = "new_like"
	NotificationNewFollow  = "new_follow"
	NotificationNewComment = "new_comment"
	NotificationUnknown    = "unknown"
)

// NotificationMeta carries optional ranking metadata. The embedding is only
// present when the seeder (slow mode) or fan-out had a provider available.
type NotificationMeta struct {
	Embedding []float64 `json:"embedding,omitempty"`
}

// Notification represents a per-recipient notification row. Rows are created
// exclusively by the fan-out engine and the seeder; the only mutation is the
// one-way read flag flip.
type Notification struct {
	ID         string            `json:"id" gorm:"primaryKey;size:36"`
	UserID     string            `json:"user_id" gorm:"size:36;index"` // recipient
	Type       string            `json:"type" gorm:"size:30;index"`
	ActorID    string            `json:"actor_id" gorm:"size:36;index"`
	ObjectType string            `json:"object_type,omitempty" gorm:"size:20"` // post, user, comment
	ObjectID   string            `json:"object_id,omitempty" gorm:"size:36"`
	Text       string            `json:"text"`
	Read       bool              `json:"read" gorm:"default:false;index"`
	CreatedAt  time.Time         `json:"created_at" gorm:"index"`
	Meta       *NotificationMeta `json:"meta,omitempty" gorm:"serializer:json"`
}

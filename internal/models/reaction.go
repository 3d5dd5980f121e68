package models

import "time"

// Reaction types
const (
	ReactionLike    = "like"
	ReactionComment = "comment"
)

// Reaction represents a like or comment on a post. Repeated likes by the
// same user on the same post are all recorded; there is no uniqueness
// constraint here.
type Reaction struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	PostID    string    `json:"post_id" gorm:"size:36;index"`
	UserID    string    `json:"user_id" gorm:"size:36;index"`
	Type      string    `json:"type" gorm:"size:20"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

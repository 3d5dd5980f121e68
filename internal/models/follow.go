package models

import "time"

// Follow represents a follow edge between two users. The composite unique
// index guarantees at most one edge per (follower, followee) pair.
type Follow struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	FollowerID string    `json:"follower_id" gorm:"size:36;index;uniqueIndex:idx_follower_followee"`
	FolloweeID string    `json:"followee_id" gorm:"size:36;index;uniqueIndex:idx_follower_followee"`
	CreatedAt  time.Time `json:"created_at"`
}

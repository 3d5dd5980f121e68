package models

import "time"

// Post represents a social media post
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	AuthorID  string    `json:"author_id" gorm:"size:36;index"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

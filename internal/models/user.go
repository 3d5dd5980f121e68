package models

import "time"

// User represents a demo user. Users are created by the seeder and are
// immutable afterwards; there is no per-user delete API.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

// UserCompact is the reduced shape returned by the user listing endpoint.
type UserCompact struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ToCompact converts a User to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name}
}

package models

import "stockdesk/internal/session"

// User represents a desk operator account
type User struct {
	Base
	Username string       `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Password string       `gorm:"size:255;not null" json:"-"`
	Role     session.Role `gorm:"size:20;not null;index;default:USER" json:"role"`
}

// Identity returns the session identity for u.
func (u *User) Identity() session.Identity {
	return session.Identity{Username: u.Username, UserID: u.ID, Role: u.Role}
}

package models

import (
	"regexp"
	"time"
)

// User represents a registered account. The password column always holds
// a bcrypt digest, never cleartext.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:50;default:user" json:"role"` // admin, user
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether the address matches the standard pattern.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsAdmin is the single capability predicate for admin-gated operations.
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

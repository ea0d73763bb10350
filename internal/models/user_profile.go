package models

import "time"

// UserProfile holds the public-facing attributes of an account.
// Nickname defaults to the email local part at registration.
type UserProfile struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Nickname    string     `gorm:"size:255;not null" json:"nickname"`
	Avatar      []byte     `gorm:"type:blob" json:"-"`
	Bio         string     `gorm:"type:text" json:"bio"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }

// AvatarMIME sniffs the avatar content type from magic numbers.
// Defaults to image/png when the payload is empty or unknown.
func (p *UserProfile) AvatarMIME() string {
	return SniffImageMIME(p.Avatar)
}

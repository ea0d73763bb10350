package models

import "time"

// News is an admin-published announcement. Dates are typed columns, not
// markers embedded in the body text.
type News struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (News) TableName() string { return "news" }

// Documentation is an admin-maintained reference article.
type Documentation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Category  string    `gorm:"size:100;default:general" json:"category"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Documentation) TableName() string { return "documentation" }

// FAQ is a user question with an optional admin answer.
type FAQ struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Question   string    `gorm:"type:text;not null" json:"question"`
	Answered   bool      `gorm:"default:false" json:"answered"`
	AnswerText string    `gorm:"type:text" json:"answer_text"`
	AdminID    *uint     `json:"admin_id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (FAQ) TableName() string { return "faq" }

// Media file types.
const (
	MediaImage     = "image"
	MediaVideo     = "video"
	MediaMarkdown  = "md"
	MediaInstaller = "installer"
)

// MediaFile holds an admin-uploaded binary (installer builds, site media).
type MediaFile struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Type string `gorm:"size:16;not null" json:"type"`
	Data []byte `gorm:"type:blob" json:"-"`
}

func (MediaFile) TableName() string { return "media_files" }

// MediaMeta describes one MediaFile for listing pages.
type MediaMeta struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AdminID     uint      `gorm:"not null" json:"admin_id"`
	MediaID     *uint     `gorm:"uniqueIndex" json:"media_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (MediaMeta) TableName() string { return "media_meta" }

// ValidMediaType reports whether t is one of the known media types.
func ValidMediaType(t string) bool {
	switch t {
	case MediaImage, MediaVideo, MediaMarkdown, MediaInstaller:
		return true
	}
	return false
}

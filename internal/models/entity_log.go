package models

import "time"

// Entity log actions.
const (
	LogActionAdd    = "add"
	LogActionChange = "change"
	LogActionDelete = "delete"
)

// Entity type tags recorded in the audit log.
const (
	EntityUserProfile    = "user_profile"
	EntityRole           = "role"
	EntityProjects       = "projects"
	EntityProjectMeta    = "project_meta"
	EntityProjectChanges = "project_changes"
	EntityShared         = "shared"
	EntityFriendship     = "friendship"
	EntityMediaFiles     = "media_files"
	EntityMediaMeta      = "media_meta"
	EntityDocumentation  = "documentation"
	EntityFAQ            = "faq"
)

// EntityLog is the append-only record of domain mutations. The core only
// writes it; nothing in the request path reads it back.
type EntityLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Action     string    `gorm:"size:16;not null" json:"action"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	EntityType string    `gorm:"size:32;index;not null" json:"entity_type"`
	EntityID   int64     `gorm:"not null" json:"entity_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (EntityLog) TableName() string { return "entity_logs" }

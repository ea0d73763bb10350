package models

import (
	"strings"
	"time"
)

// Project is the ownership record for an uploaded work. Content lives in
// ProjectVersion rows; visibility is computed per request, never stored.
type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	// No gorm default tag: GORM would skip a false value on insert and
	// let the column default win. The service always sets it explicitly.
	Private   bool      `gorm:"not null" json:"private"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

// ProjectVersion is one content snapshot. PrevVersionID chains snapshots
// newest-first; the first version of a project has no back-reference.
type ProjectVersion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProjectID     uint      `gorm:"index;not null" json:"project_id"`
	PrevVersionID *uint     `json:"prev_version_id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Data          []byte    `gorm:"type:blob;not null" json:"-"`
	Weight        float64   `gorm:"type:decimal(10,2);not null" json:"weight"` // MiB, 2 decimals
	Type          string    `gorm:"size:16;not null" json:"type"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ProjectVersion) TableName() string { return "project_versions" }

// ProjectChange is an immutable note recorded on every mutating
// project operation.
type ProjectChange struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"index;not null" json:"project_id"`
	ChangerID   uint      `gorm:"not null" json:"changer_id"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ProjectChange) TableName() string { return "project_changes" }

// Shared grants one non-owner access to one project. The grant is created
// by the owner and removable by the receiver.
type Shared struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProjectID  uint      `gorm:"index;not null" json:"project_id"`
	ReceiverID uint      `gorm:"index;not null" json:"receiver_id"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Shared) TableName() string { return "shared_projects" }

// projectTypes is the fixed allow-list of declared file types.
var projectTypes = map[string]bool{
	"ourp": true,
	"json": true,
	"pdf":  true,
	"tiff": true,
	"jpg":  true,
	"md":   true,
	"txt":  true,
	"png":  true,
	"jpeg": true,
	"svg":  true,
	"bmp":  true,
}

// NormalizeProjectType lower-cases a declared extension and reports
// whether it belongs to the allow-list.
func NormalizeProjectType(ext string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
	return t, projectTypes[t]
}

package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ourpaint/ourpainthub/backend/internal/models"
	"github.com/ourpaint/ourpainthub/backend/pkg/apperr"
)

// maxProjectBytes caps an uploaded payload at 100 MiB, checked on the
// exact byte length before any rounding.
const maxProjectBytes = 100 << 20

// WeightMiB converts a byte count to MiB rounded half-up to two decimals.
// The stored weight is display metadata; the size ceiling is enforced on
// raw bytes, not on this value.
func WeightMiB(size int) float64 {
	hundredths := (int64(size)*100 + (1 << 19)) >> 20
	return float64(hundredths) / 100
}

// ProjectService owns project lifecycle, versioning, sharing and the
// visibility rules around them.
type ProjectService struct {
	db      *gorm.DB
	friends *FriendshipService
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{
		db:      db,
		friends: NewFriendshipService(db),
	}
}

// ProjectSummary is one project in a listing, flattened from the project
// row, its newest version and its latest change note.
type ProjectSummary struct {
	ID          uint    `json:"id"`
	OwnerID     uint    `json:"owner_id"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Type        string  `json:"type"`
	Private     bool    `json:"private"`
	Description string  `json:"description"`
}

// ReceivedProject is one entry in the recipient's shared-with-me listing.
type ReceivedProject struct {
	SharedID    uint    `json:"shared_id"`
	ProjectID   uint    `json:"project_id"`
	OwnerEmail  string  `json:"owner_email"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Type        string  `json:"type"`
	Private     bool    `json:"private"`
	Comment     string  `json:"comment"`
	Description string  `json:"description"`
}

// DownloadResult carries the newest payload and its suggested filename.
type DownloadResult struct {
	Filename string
	Data     []byte
	Type     string
}

// ChangeEntry is one line of a project's change history.
type ChangeEntry struct {
	ID           uint   `json:"id"`
	ChangerID    uint   `json:"changer_id"`
	ChangerEmail string `json:"changer_email"`
	Description  string `json:"description"`
	CreatedAt    string `json:"created_at"`
}

// VersionInfo is one snapshot in the version chain, newest first.
type VersionInfo struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Weight    float64 `json:"weight"`
	Type      string  `json:"type"`
	CreatedAt string  `json:"created_at"`
}

func (s *ProjectService) userExists(id uint) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Internal("failed to look up user")
	}
	if count == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (s *ProjectService) getProject(id uint) (*models.Project, error) {
	var project models.Project
	err := s.db.First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("project not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load project")
	}
	return &project, nil
}

// headVersion returns the newest snapshot of a project.
func (s *ProjectService) headVersion(projectID uint) (*models.ProjectVersion, error) {
	var version models.ProjectVersion
	err := s.db.Where("project_id = ?", projectID).Order("id DESC").First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("project has no versions")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load project version")
	}
	return &version, nil
}

// canAccess reports whether actor may open the project's content:
// the owner always, anyone holding a share grant otherwise.
func (s *ProjectService) canAccess(actorID uint, project *models.Project) (bool, error) {
	if project.OwnerID == actorID {
		return true, nil
	}
	var count int64
	err := s.db.Model(&models.Shared{}).
		Where("project_id = ? AND receiver_id = ?", project.ID, actorID).
		Count(&count).Error
	if err != nil {
		return false, apperr.Internal("failed to check project access")
	}
	return count > 0, nil
}

func validateProjectName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("project name is required")
	}
	if len(name) > 255 {
		return "", apperr.Validation("project name must be at most 255 characters")
	}
	return name, nil
}

func validatePayload(data []byte) error {
	if len(data) == 0 {
		return apperr.Validation("project file is required")
	}
	if len(data) > maxProjectBytes {
		return apperr.Validation("project file exceeds the 100 MB limit")
	}
	return nil
}

type CreateProjectRequest struct {
	OwnerID     uint
	Name        string
	Data        []byte
	Extension   string
	Private     bool
	Description string
}

// Create stores a new project with its first version and an initial
// change note.
func (s *ProjectService) Create(req *CreateProjectRequest) (*ProjectSummary, error) {
	if err := s.userExists(req.OwnerID); err != nil {
		return nil, err
	}
	name, err := validateProjectName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(req.Data); err != nil {
		return nil, err
	}
	fileType, ok := models.NormalizeProjectType(req.Extension)
	if !ok {
		return nil, apperr.Validation(fmt.Sprintf("unsupported file type %q", req.Extension))
	}

	project := models.Project{
		OwnerID: req.OwnerID,
		Private: req.Private,
	}
	description := fmt.Sprintf("Added project %q", name)
	if note := strings.TrimSpace(req.Description); note != "" {
		description += ". " + note
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return apperr.Internal("failed to create project")
		}
		version := models.ProjectVersion{
			ProjectID: project.ID,
			Name:      name,
			Data:      req.Data,
			Weight:    WeightMiB(len(req.Data)),
			Type:      fileType,
		}
		if err := tx.Create(&version).Error; err != nil {
			return apperr.Internal("failed to create project version")
		}
		change := models.ProjectChange{
			ProjectID:   project.ID,
			ChangerID:   req.OwnerID,
			Description: description,
		}
		if err := tx.Create(&change).Error; err != nil {
			return apperr.Internal("failed to record project change")
		}
		return nil
	})
	if txErr != nil {
		var appErr *apperr.Error
		if errors.As(txErr, &appErr) {
			return nil, appErr
		}
		return nil, apperr.Internal("failed to create project")
	}

	RecordEntity(models.LogActionAdd, req.OwnerID, models.EntityProjects, int64(project.ID))

	return &ProjectSummary{
		ID:          project.ID,
		OwnerID:     project.OwnerID,
		Name:        name,
		Weight:      WeightMiB(len(req.Data)),
		Type:        fileType,
		Private:     project.Private,
		Description: description,
	}, nil
}

type UpdateProjectRequest struct {
	ActorID   uint
	ProjectID uint
	Name      *string
	Data      []byte
	Extension string
	Private   *bool
	Note      string
}

// Update applies a partial change to a project. A new payload appends a
// version to the chain; a name-only change edits the newest version in
// place. A change note is recorded only when something actually changed
// or the caller supplied an explicit note.
func (s *ProjectService) Update(req *UpdateProjectRequest) (*ProjectSummary, error) {
	if err := s.userExists(req.ActorID); err != nil {
		return nil, err
	}
	project, err := s.getProject(req.ProjectID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canAccess(req.ActorID, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("no access to this project")
	}
	head, err := s.headVersion(project.ID)
	if err != nil {
		return nil, err
	}

	var changed []string

	newName := head.Name
	if req.Name != nil {
		name, err := validateProjectName(*req.Name)
		if err != nil {
			return nil, err
		}
		if name != head.Name {
			changed = append(changed, fmt.Sprintf("name: %q -> %q", head.Name, name))
			newName = name
		}
	}

	privacyChanged := false
	if req.Private != nil && *req.Private != project.Private {
		privacyChanged = true
		if *req.Private {
			changed = append(changed, "visibility: public -> private")
		} else {
			changed = append(changed, "visibility: private -> public")
		}
	}

	newData := len(req.Data) > 0
	fileType := head.Type
	if newData {
		if err := validatePayload(req.Data); err != nil {
			return nil, err
		}
		if req.Extension != "" {
			t, ok := models.NormalizeProjectType(req.Extension)
			if !ok {
				return nil, apperr.Validation(fmt.Sprintf("unsupported file type %q", req.Extension))
			}
			fileType = t
		}
		changed = append(changed, fmt.Sprintf("file updated (%.2f MB, %s)", WeightMiB(len(req.Data)), fileType))
	}

	note := strings.TrimSpace(req.Note)
	result := &ProjectSummary{
		ID:      project.ID,
		OwnerID: project.OwnerID,
		Name:    newName,
		Weight:  head.Weight,
		Type:    fileType,
		Private: project.Private,
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if privacyChanged {
			if err := tx.Model(project).Update("private", *req.Private).Error; err != nil {
				return apperr.Internal("failed to update project visibility")
			}
			result.Private = *req.Private
		}

		if newData {
			version := models.ProjectVersion{
				ProjectID:     project.ID,
				PrevVersionID: &head.ID,
				Name:          newName,
				Data:          req.Data,
				Weight:        WeightMiB(len(req.Data)),
				Type:          fileType,
			}
			if err := tx.Create(&version).Error; err != nil {
				return apperr.Internal("failed to create project version")
			}
			result.Weight = version.Weight
		} else if newName != head.Name {
			if err := tx.Model(head).Update("name", newName).Error; err != nil {
				return apperr.Internal("failed to rename project")
			}
		}

		description := note
		if description == "" && len(changed) > 0 {
			description = "Changed: " + strings.Join(changed, "; ")
		}
		if description != "" {
			change := models.ProjectChange{
				ProjectID:   project.ID,
				ChangerID:   req.ActorID,
				Description: description,
			}
			if err := tx.Create(&change).Error; err != nil {
				return apperr.Internal("failed to record project change")
			}
			result.Description = description
		}
		return nil
	})
	if txErr != nil {
		var appErr *apperr.Error
		if errors.As(txErr, &appErr) {
			return nil, appErr
		}
		return nil, apperr.Internal("failed to update project")
	}

	if note != "" || len(changed) > 0 {
		RecordEntity(models.LogActionChange, req.ActorID, models.EntityProjects, int64(project.ID))
	}
	return result, nil
}

// Delete removes a project with all versions, change notes and share
// grants. Owner only.
func (s *ProjectService) Delete(actorID, projectID uint) error {
	if err := s.userExists(actorID); err != nil {
		return err
	}
	project, err := s.getProject(projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != actorID {
		return apperr.Forbidden("only the owner can delete a project")
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectChange{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Shared{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectVersion{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	if txErr != nil {
		return apperr.Internal("failed to delete project")
	}

	RecordEntity(models.LogActionDelete, actorID, models.EntityProjects, int64(projectID))
	return nil
}

// Share grants recipient access to a public project owned by ownerID.
// The two users must be accepted friends.
func (s *ProjectService) Share(ownerID, projectID, recipientID uint, comment string) (uint, error) {
	if err := s.userExists(ownerID); err != nil {
		return 0, err
	}
	project, err := s.getProject(projectID)
	if err != nil {
		return 0, err
	}
	if project.OwnerID != ownerID {
		return 0, apperr.Forbidden("only the owner can share a project")
	}
	if project.Private {
		return 0, apperr.Forbidden("a private project cannot be shared")
	}
	if recipientID == ownerID {
		return 0, apperr.Forbidden("cannot share a project with yourself")
	}
	if err := s.userExists(recipientID); err != nil {
		return 0, err
	}
	friends, err := s.friends.AreFriends(ownerID, recipientID)
	if err != nil {
		return 0, err
	}
	if !friends {
		return 0, apperr.Forbidden("projects can only be shared with friends")
	}

	grant := models.Shared{
		ProjectID:  projectID,
		ReceiverID: recipientID,
		Comment:    strings.TrimSpace(comment),
	}
	if err := s.db.Create(&grant).Error; err != nil {
		return 0, apperr.Internal("failed to share project")
	}

	RecordEntity(models.LogActionAdd, ownerID, models.EntityShared, int64(grant.ID))
	return grant.ID, nil
}

// Unshare removes a share grant. Only its receiver may do so; a repeat
// call reports NotFound because the grant is gone.
func (s *ProjectService) Unshare(actorID, sharedID uint) error {
	if err := s.userExists(actorID); err != nil {
		return err
	}
	var grant models.Shared
	err := s.db.First(&grant, sharedID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("shared project not found")
	}
	if err != nil {
		return apperr.Internal("failed to load shared project")
	}
	if grant.ReceiverID != actorID {
		return apperr.Forbidden("only the receiver can remove a shared project")
	}
	if err := s.db.Delete(&grant).Error; err != nil {
		return apperr.Internal("failed to remove shared project")
	}
	RecordEntity(models.LogActionDelete, actorID, models.EntityShared, int64(sharedID))
	return nil
}

// ListVisible returns subject's projects as seen by viewer: everything
// for the subject themself, public plus all for accepted friends,
// public only for everyone else. Newest first.
func (s *ProjectService) ListVisible(subjectID, viewerID uint) ([]ProjectSummary, error) {
	if err := s.userExists(subjectID); err != nil {
		return nil, err
	}
	if err := s.userExists(viewerID); err != nil {
		return nil, err
	}

	seeAll := subjectID == viewerID
	if !seeAll {
		friends, err := s.friends.AreFriends(subjectID, viewerID)
		if err != nil {
			return nil, err
		}
		seeAll = friends
	}

	query := s.db.Where("owner_id = ?", subjectID)
	if !seeAll {
		query = query.Where("private = ?", false)
	}
	var projects []models.Project
	if err := query.Order("id DESC").Find(&projects).Error; err != nil {
		return nil, apperr.Internal("failed to list projects")
	}

	result := make([]ProjectSummary, 0, len(projects))
	for _, project := range projects {
		summary, err := s.summarize(&project)
		if err != nil {
			return nil, err
		}
		result = append(result, *summary)
	}
	return result, nil
}

func (s *ProjectService) summarize(project *models.Project) (*ProjectSummary, error) {
	head, err := s.headVersion(project.ID)
	if err != nil {
		return nil, err
	}
	return &ProjectSummary{
		ID:          project.ID,
		OwnerID:     project.OwnerID,
		Name:        head.Name,
		Weight:      head.Weight,
		Type:        head.Type,
		Private:     project.Private,
		Description: s.latestChange(project.ID),
	}, nil
}

func (s *ProjectService) latestChange(projectID uint) string {
	var change models.ProjectChange
	err := s.db.Where("project_id = ?", projectID).Order("id DESC").First(&change).Error
	if err != nil || change.Description == "" {
		return "no description"
	}
	return change.Description
}

// ListReceived returns the share grants held by viewer, newest first.
func (s *ProjectService) ListReceived(viewerID uint) ([]ReceivedProject, error) {
	if err := s.userExists(viewerID); err != nil {
		return nil, err
	}

	var grants []models.Shared
	err := s.db.Where("receiver_id = ?", viewerID).Order("id DESC").Find(&grants).Error
	if err != nil {
		return nil, apperr.Internal("failed to list shared projects")
	}

	result := make([]ReceivedProject, 0, len(grants))
	for _, grant := range grants {
		project, err := s.getProject(grant.ProjectID)
		if err != nil {
			// The project may have been deleted out from under the grant.
			if apperr.IsKind(err, apperr.KindNotFound) {
				continue
			}
			return nil, err
		}
		head, err := s.headVersion(project.ID)
		if err != nil {
			return nil, err
		}
		var owner models.User
		if err := s.db.First(&owner, project.OwnerID).Error; err != nil {
			return nil, apperr.Internal("failed to load project owner")
		}
		result = append(result, ReceivedProject{
			SharedID:    grant.ID,
			ProjectID:   project.ID,
			OwnerEmail:  owner.Email,
			Name:        head.Name,
			Weight:      head.Weight,
			Type:        head.Type,
			Private:     project.Private,
			Comment:     grant.Comment,
			Description: s.latestChange(project.ID),
		})
	}
	return result, nil
}

// Download returns the newest payload of a project. Owner or share
// receiver only.
func (s *ProjectService) Download(actorID, projectID uint) (*DownloadResult, error) {
	if err := s.userExists(actorID); err != nil {
		return nil, err
	}
	project, err := s.getProject(projectID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canAccess(actorID, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("no access to this project")
	}
	head, err := s.headVersion(project.ID)
	if err != nil {
		return nil, err
	}
	if len(head.Data) == 0 {
		return nil, apperr.NotFound("project file not found")
	}
	return &DownloadResult{
		Filename: fmt.Sprintf("%s.%s", head.Name, head.Type),
		Data:     head.Data,
		Type:     head.Type,
	}, nil
}

// History returns the change notes of a project, newest first. Owner or
// share receiver only.
func (s *ProjectService) History(actorID, projectID uint) ([]ChangeEntry, error) {
	if err := s.userExists(actorID); err != nil {
		return nil, err
	}
	project, err := s.getProject(projectID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canAccess(actorID, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("no access to this project")
	}

	var changes []models.ProjectChange
	err = s.db.Where("project_id = ?", projectID).Order("id DESC").Find(&changes).Error
	if err != nil {
		return nil, apperr.Internal("failed to load project history")
	}

	result := make([]ChangeEntry, 0, len(changes))
	for _, change := range changes {
		var changer models.User
		email := ""
		if err := s.db.First(&changer, change.ChangerID).Error; err == nil {
			email = changer.Email
		}
		result = append(result, ChangeEntry{
			ID:           change.ID,
			ChangerID:    change.ChangerID,
			ChangerEmail: email,
			Description:  change.Description,
			CreatedAt:    change.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return result, nil
}

// Versions walks the snapshot chain from the newest version back to the
// first. Owner or share receiver only.
func (s *ProjectService) Versions(actorID, projectID uint) ([]VersionInfo, error) {
	if err := s.userExists(actorID); err != nil {
		return nil, err
	}
	project, err := s.getProject(projectID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canAccess(actorID, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("no access to this project")
	}

	head, err := s.headVersion(project.ID)
	if err != nil {
		return nil, err
	}

	var result []VersionInfo
	current := head
	for {
		result = append(result, VersionInfo{
			ID:        current.ID,
			Name:      current.Name,
			Weight:    current.Weight,
			Type:      current.Type,
			CreatedAt: current.CreatedAt.Format("2006-01-02 15:04:05"),
		})
		if current.PrevVersionID == nil {
			break
		}
		var prev models.ProjectVersion
		if err := s.db.First(&prev, *current.PrevVersionID).Error; err != nil {
			break
		}
		current = &prev
	}
	return result, nil
}

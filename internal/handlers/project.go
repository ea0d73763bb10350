package handlers

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ourpaint/ourpainthub/backend/internal/middleware"
	"github.com/ourpaint/ourpainthub/backend/internal/services"
	"github.com/ourpaint/ourpainthub/backend/pkg/response"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func readUpload(c *gin.Context, field string) (data []byte, ext string, ok bool, err error) {
	file, ferr := c.FormFile(field)
	if ferr != nil {
		return nil, "", false, nil
	}
	f, err := file.Open()
	if err != nil {
		return nil, "", false, err
	}
	defer f.Close()
	data, err = io.ReadAll(f)
	if err != nil {
		return nil, "", false, err
	}
	ext = strings.TrimPrefix(filepath.Ext(file.Filename), ".")
	return data, ext, true, nil
}

// Create stores a new project from a multipart upload.
// Fields: name, file, private (default true), description.
func (h *ProjectHandler) Create(c *gin.Context) {
	data, ext, hasFile, err := readUpload(c, "file")
	if err != nil {
		response.ServerError(c, "failed to read upload")
		return
	}
	if !hasFile {
		response.BadRequest(c, "file is required")
		return
	}

	private := true
	if v := c.PostForm("private"); v == "false" || v == "0" {
		private = false
	}

	project, err := h.projectService.Create(&services.CreateProjectRequest{
		OwnerID:     middleware.GetUserID(c),
		Name:        c.PostForm("name"),
		Data:        data,
		Extension:   ext,
		Private:     private,
		Description: c.PostForm("description"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// List returns the projects of a user as visible to the caller.
// Defaults to the caller's own projects; ?user_id= views someone else's.
func (h *ProjectHandler) List(c *gin.Context) {
	viewerID := middleware.GetUserID(c)
	subjectID := viewerID
	if v := c.Query("user_id"); v != "" {
		id, ok := parseQueryID(c, v)
		if !ok {
			return
		}
		subjectID = id
	}

	projects, err := h.projectService.ListVisible(subjectID, viewerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, projects)
}

func parseQueryID(c *gin.Context, v string) (uint, bool) {
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid user_id")
		return 0, false
	}
	return uint(id), true
}

// Update applies a partial change: any of name, file, private and an
// optional note, as multipart form data.
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	req := services.UpdateProjectRequest{
		ActorID:   middleware.GetUserID(c),
		ProjectID: projectID,
		Note:      c.PostForm("note"),
	}

	if name, exists := c.GetPostForm("name"); exists {
		req.Name = &name
	}
	if v, exists := c.GetPostForm("private"); exists {
		private := v != "false" && v != "0"
		req.Private = &private
	}

	data, ext, hasFile, err := readUpload(c, "file")
	if err != nil {
		response.ServerError(c, "failed to read upload")
		return
	}
	if hasFile {
		req.Data = data
		req.Extension = ext
	}

	project, err := h.projectService.Update(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Delete removes a project and everything attached to it.
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.projectService.Delete(middleware.GetUserID(c), projectID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Download streams the newest payload of a project.
func (h *ProjectHandler) Download(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.projectService.Download(middleware.GetUserID(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := mime.TypeByExtension("." + result.Type)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, contentType, result.Data)
}

// History returns the change notes of a project, newest first.
func (h *ProjectHandler) History(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	history, err := h.projectService.History(middleware.GetUserID(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, history)
}

// Versions returns the snapshot chain of a project, newest first.
func (h *ProjectHandler) Versions(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	versions, err := h.projectService.Versions(middleware.GetUserID(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, versions)
}

type shareRequest struct {
	UserID  uint   `json:"user_id" binding:"required"`
	Comment string `json:"comment"`
}

// Share grants a friend access to a public project.
func (h *ProjectHandler) Share(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "user_id is required")
		return
	}

	sharedID, err := h.projectService.Share(middleware.GetUserID(c), projectID, req.UserID, req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"shared_id": sharedID})
}

// Received lists the share grants held by the caller.
func (h *ProjectHandler) Received(c *gin.Context) {
	projects, err := h.projectService.ListReceived(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, projects)
}

// Unshare removes a share grant the caller received.
func (h *ProjectHandler) Unshare(c *gin.Context) {
	sharedID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.projectService.Unshare(middleware.GetUserID(c), sharedID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

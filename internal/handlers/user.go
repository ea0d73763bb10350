package handlers

import (
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ourpaint/ourpainthub/backend/internal/middleware"
	"github.com/ourpaint/ourpainthub/backend/internal/services"
	"github.com/ourpaint/ourpainthub/backend/pkg/response"
)

// maxAvatarBytes caps avatar uploads at 5 MiB.
const maxAvatarBytes = 5 << 20

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// List returns the member directory, excluding the caller.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(middleware.GetUserID(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// GetProfile returns another user's public profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

type updateProfileRequest struct {
	Nickname    *string `form:"nickname"`
	Bio         *string `form:"bio"`
	DateOfBirth *string `form:"date_of_birth"` // YYYY-MM-DD
}

// UpdateProfile applies a partial update to the caller's profile.
// Accepts multipart form data so the avatar can ride along.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "invalid profile fields")
		return
	}

	update := services.UpdateProfileRequest{
		Nickname: req.Nickname,
		Bio:      req.Bio,
	}

	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			response.BadRequest(c, "date_of_birth must be YYYY-MM-DD")
			return
		}
		update.DateOfBirth = &dob
	}

	if file, err := c.FormFile("avatar"); err == nil {
		if file.Size > maxAvatarBytes {
			response.BadRequest(c, "avatar exceeds the 5 MB limit")
			return
		}
		f, err := file.Open()
		if err != nil {
			response.ServerError(c, "failed to read avatar")
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			response.ServerError(c, "failed to read avatar")
			return
		}
		update.Avatar = data
	}

	profile, err := h.userService.UpdateProfile(middleware.GetUserID(c), &update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// Avatar streams a user's avatar image.
func (h *UserHandler) Avatar(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	data, mimeType, err := h.userService.Avatar(userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(200, mimeType, data)
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetRole changes a user's role (admin only).
func (h *UserHandler) SetRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "role is required")
		return
	}
	if err := h.userService.SetRole(middleware.GetUserID(c), userID, req.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

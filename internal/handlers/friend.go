package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ourpaint/ourpainthub/backend/internal/middleware"
	"github.com/ourpaint/ourpainthub/backend/internal/services"
	"github.com/ourpaint/ourpainthub/backend/pkg/response"
)

type FriendHandler struct {
	friendService *services.FriendshipService
}

func NewFriendHandler(friendService *services.FriendshipService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// List returns the caller's accepted friends.
func (h *FriendHandler) List(c *gin.Context) {
	friends, err := h.friendService.ListFriends(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, friends)
}

// Incoming returns pending requests awaiting the caller's answer.
func (h *FriendHandler) Incoming(c *gin.Context) {
	requests, err := h.friendService.ListIncoming(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, requests)
}

// Outgoing returns pending requests the caller has sent.
func (h *FriendHandler) Outgoing(c *gin.Context) {
	requests, err := h.friendService.ListOutgoing(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, requests)
}

type addFriendRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// Add sends a friend request, or accepts a pending one coming the
// other way.
func (h *FriendHandler) Add(c *gin.Context) {
	var req addFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "user_id is required")
		return
	}

	status, err := h.friendService.RequestOrAccept(middleware.GetUserID(c), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"status": status})
}

type respondRequest struct {
	Action string `json:"action" binding:"required"` // accept, decline
}

// Respond accepts or declines a pending request from the user in the path.
func (h *FriendHandler) Respond(c *gin.Context) {
	requesterID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "action is required")
		return
	}

	status, err := h.friendService.Respond(middleware.GetUserID(c), requesterID, req.Action)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"status": status})
}

// Cancel withdraws a request the caller sent to the user in the path.
func (h *FriendHandler) Cancel(c *gin.Context) {
	recipientID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.friendService.Cancel(middleware.GetUserID(c), recipientID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Remove ends an accepted friendship with the user in the path.
func (h *FriendHandler) Remove(c *gin.Context) {
	otherID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.friendService.Unfriend(middleware.GetUserID(c), otherID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

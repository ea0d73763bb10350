package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ourpaint/ourpainthub/backend/internal/services"
	"github.com/ourpaint/ourpainthub/backend/pkg/response"
)

// SystemLogHandler exposes the operational and entity audit logs to admins.
type SystemLogHandler struct {
	logService       *services.SystemLogService
	entityLogService *services.EntityLogService
}

func NewSystemLogHandler(logService *services.SystemLogService, entityLogService *services.EntityLogService) *SystemLogHandler {
	return &SystemLogHandler{logService: logService, entityLogService: entityLogService}
}

// List returns filtered, paginated system logs.
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	result, err := h.logService.List(&req)
	if err != nil {
		response.ServerError(c, "failed to list logs")
		return
	}
	response.Success(c, result)
}

// Modules returns the distinct module names seen in the logs.
func (h *SystemLogHandler) Modules(c *gin.Context) {
	modules, err := h.logService.GetModules()
	if err != nil {
		response.ServerError(c, "failed to list modules")
		return
	}
	response.Success(c, modules)
}

// EntityLogs returns filtered, paginated entity audit records.
func (h *SystemLogHandler) EntityLogs(c *gin.Context) {
	var req services.EntityLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	result, err := h.entityLogService.List(&req)
	if err != nil {
		response.ServerError(c, "failed to list entity logs")
		return
	}
	response.Success(c, result)
}

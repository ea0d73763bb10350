package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ourpaint/ourpainthub/backend/pkg/response"
)

// Health reports service liveness.
func Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

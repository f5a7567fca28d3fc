package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/defense-portal-api/internal/service"
	"github.com/noah-isme/defense-portal-api/pkg/response"
)

// ProcessHandler exposes the destructive admin actions on process data.
type ProcessHandler struct {
	snapshots *service.SnapshotService
}

// NewProcessHandler constructs ProcessHandler.
func NewProcessHandler(snapshots *service.SnapshotService) *ProcessHandler {
	return &ProcessHandler{snapshots: snapshots}
}

// Reset godoc
// @Summary Wipe all submissions and schedules, keeping an undo snapshot
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/process/reset [post]
func (h *ProcessHandler) Reset(c *gin.Context) {
	if err := h.snapshots.ResetProcessData(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "reset"}, nil)
}

// UndoReset godoc
// @Summary Restore process data from the retained snapshot
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /admin/process/undo-reset [post]
func (h *ProcessHandler) UndoReset(c *gin.Context) {
	if err := h.snapshots.UndoReset(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "restored"}, nil)
}

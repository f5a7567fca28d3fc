package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/defense-portal-api/internal/service"
	"github.com/noah-isme/defense-portal-api/pkg/response"
)

// DashboardHandler exposes the staff dashboard endpoints.
type DashboardHandler struct {
	dashboard *service.DashboardService
	revisions *service.RevisionService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService, revisions *service.RevisionService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, revisions: revisions}
}

// Stats godoc
// @Summary Workflow progress counters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Overdue godoc
// @Summary Submissions stuck in revision past the due window
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/overdue [get]
func (h *DashboardHandler) Overdue(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.revisions.Overdue(c.Request.Context()), nil)
}

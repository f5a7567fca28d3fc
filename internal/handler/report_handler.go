package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/defense-portal-api/internal/service"
	"github.com/noah-isme/defense-portal-api/pkg/response"
)

// ReportHandler serves downloadable staff reports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// SubmissionsCSV godoc
// @Summary Download the submission register as CSV
// @Tags Reports
// @Produce text/csv
// @Param phase query string false "proposal or skripsi"
// @Success 200 {file} file
// @Router /reports/submissions.csv [get]
func (h *ReportHandler) SubmissionsCSV(c *gin.Context) {
	data, err := h.reports.SubmissionsCSV(c.Request.Context(), c.Query("phase"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("submissions-%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}

// SchedulesPDF godoc
// @Summary Download the defense calendar as PDF
// @Tags Reports
// @Produce application/pdf
// @Success 200 {file} file
// @Router /reports/schedules.pdf [get]
func (h *ReportHandler) SchedulesPDF(c *gin.Context) {
	data, err := h.reports.SchedulesPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("defense-schedule-%s.pdf", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

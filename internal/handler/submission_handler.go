package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/defense-portal-api/internal/dto"
	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/service"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
	"github.com/noah-isme/defense-portal-api/pkg/response"
)

// SubmissionHandler exposes the registration workflow endpoints.
type SubmissionHandler struct {
	submissions *service.SubmissionService
}

// NewSubmissionHandler constructs SubmissionHandler.
func NewSubmissionHandler(submissions *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Register godoc
// @Summary Register a phase for a student, overwriting any previous attempt
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.RegisterSubmissionRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Register(c *gin.Context) {
	var req dto.RegisterSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sub, err := h.submissions.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// List godoc
// @Summary List submissions
// @Tags Submissions
// @Produce json
// @Param phase query string false "proposal or skripsi"
// @Param status query string false "Workflow status"
// @Param npm query string false "Student NPM"
// @Success 200 {object} response.Envelope
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	var query dto.SubmissionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	subs, err := h.submissions.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}

// Get godoc
// @Summary Get submission detail
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	sub, err := h.submissions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Lookup godoc
// @Summary Find the live submission for a student and phase
// @Tags Submissions
// @Produce json
// @Param npm query string true "Student NPM"
// @Param phase query string true "proposal or skripsi"
// @Success 200 {object} response.Envelope
// @Router /submissions/lookup [get]
func (h *SubmissionHandler) Lookup(c *gin.Context) {
	sub, err := h.submissions.Lookup(c.Request.Context(), c.Query("npm"), models.Phase(c.Query("phase")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// ValidateFile godoc
// @Summary Record a staff decision for one requirement
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission id"
// @Param reqId path string true "Requirement id"
// @Param payload body dto.ValidateFileRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/validations/{reqId} [put]
func (h *SubmissionHandler) ValidateFile(c *gin.Context) {
	var req dto.ValidateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sub, err := h.submissions.ValidateFile(c.Request.Context(), c.Param("id"), c.Param("reqId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// ResetValidation godoc
// @Summary Remove a recorded decision so the requirement reads unreviewed
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission id"
// @Param reqId path string true "Requirement id"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/validations/{reqId} [delete]
func (h *SubmissionHandler) ResetValidation(c *gin.Context) {
	sub, err := h.submissions.ResetFileValidation(c.Request.Context(), c.Param("id"), c.Param("reqId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// SubmitRevision godoc
// @Summary Merge corrected documents and clear all decisions
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission id"
// @Param payload body dto.SubmitRevisionRequest true "Files payload"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/revision [post]
func (h *SubmissionHandler) SubmitRevision(c *gin.Context) {
	var req dto.SubmitRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sub, err := h.submissions.SubmitRevision(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

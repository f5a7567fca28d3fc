package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/defense-portal-api/internal/dto"
	"github.com/noah-isme/defense-portal-api/internal/service"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
	"github.com/noah-isme/defense-portal-api/pkg/response"
)

// RevisionHandler exposes the library-staff revision clearance endpoints.
type RevisionHandler struct {
	revisions *service.RevisionService
}

// NewRevisionHandler constructs RevisionHandler.
func NewRevisionHandler(revisions *service.RevisionService) *RevisionHandler {
	return &RevisionHandler{revisions: revisions}
}

// Queue godoc
// @Summary List submissions awaiting revision clearance
// @Tags Revisions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /revisions [get]
func (h *RevisionHandler) Queue(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.revisions.PendingQueue(c.Request.Context()), nil)
}

// ValidateFile godoc
// @Summary Record a decision on a revision document
// @Tags Revisions
// @Accept json
// @Produce json
// @Param id path string true "Submission id"
// @Param reqId path string true "Requirement id"
// @Param payload body dto.ValidateFileRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /revisions/{id}/validations/{reqId} [put]
func (h *RevisionHandler) ValidateFile(c *gin.Context) {
	var req dto.ValidateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sub, err := h.revisions.ValidateFile(c.Request.Context(), c.Param("id"), c.Param("reqId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// SetHardcopy godoc
// @Summary Record the physical hardcopy check
// @Tags Revisions
// @Accept json
// @Produce json
// @Param id path string true "Submission id"
// @Param payload body dto.HardcopyRequest true "Hardcopy payload"
// @Success 200 {object} response.Envelope
// @Router /revisions/{id}/hardcopy [put]
func (h *RevisionHandler) SetHardcopy(c *gin.Context) {
	var req dto.HardcopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sub, err := h.revisions.SetHardcopy(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Finalize godoc
// @Summary Clear the phase once hardcopy and all revision documents pass
// @Tags Revisions
// @Produce json
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /revisions/{id}/finalize [post]
func (h *RevisionHandler) Finalize(c *gin.Context) {
	sub, err := h.revisions.Finalize(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// RepairStatus godoc
// @Summary Report which revision documents were rejected
// @Tags Revisions
// @Produce json
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Router /revisions/{id}/repair-status [get]
func (h *RevisionHandler) RepairStatus(c *gin.Context) {
	status, err := h.revisions.RepairStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

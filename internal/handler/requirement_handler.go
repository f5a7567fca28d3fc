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

// RequirementHandler exposes the requirement catalog endpoints.
type RequirementHandler struct {
	catalog *service.CatalogService
}

// NewRequirementHandler constructs RequirementHandler.
func NewRequirementHandler(catalog *service.CatalogService) *RequirementHandler {
	return &RequirementHandler{catalog: catalog}
}

func catalogScope(c *gin.Context) (models.Phase, models.CatalogStage) {
	phase := models.Phase(c.DefaultQuery("phase", string(models.PhaseProposal)))
	stage := models.CatalogStage(c.DefaultQuery("stage", string(models.StageRegistration)))
	return phase, stage
}

// List godoc
// @Summary List the requirement catalog for a phase and stage
// @Tags Requirements
// @Produce json
// @Param phase query string false "proposal or skripsi"
// @Param stage query string false "registration or revision"
// @Success 200 {object} response.Envelope
// @Router /requirements [get]
func (h *RequirementHandler) List(c *gin.Context) {
	phase, stage := catalogScope(c)
	reqs, err := h.catalog.List(phase, stage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// Upsert godoc
// @Summary Create or update a catalog requirement
// @Tags Requirements
// @Accept json
// @Produce json
// @Param phase query string false "proposal or skripsi"
// @Param stage query string false "registration or revision"
// @Param payload body dto.UpsertRequirementRequest true "Requirement payload"
// @Success 200 {object} response.Envelope
// @Router /requirements [put]
func (h *RequirementHandler) Upsert(c *gin.Context) {
	var req dto.UpsertRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	phase, stage := catalogScope(c)
	requirement := models.Requirement{
		ID:            req.ID,
		Label:         req.Label,
		Description:   req.Description,
		Required:      req.Required,
		AcceptedTypes: req.AcceptedTypes,
	}
	if err := h.catalog.Upsert(phase, stage, requirement); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requirement, nil)
}

// Remove godoc
// @Summary Delete a catalog requirement
// @Tags Requirements
// @Produce json
// @Param id path string true "Requirement id"
// @Param phase query string false "proposal or skripsi"
// @Param stage query string false "registration or revision"
// @Success 204
// @Router /requirements/{id} [delete]
func (h *RequirementHandler) Remove(c *gin.Context) {
	phase, stage := catalogScope(c)
	if err := h.catalog.Remove(phase, stage, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/defense-portal-api/internal/dto"
	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/service"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
	"github.com/noah-isme/defense-portal-api/pkg/response"
)

// ScheduleHandler exposes the defense scheduling endpoints.
type ScheduleHandler struct {
	scheduling *service.SchedulingService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(scheduling *service.SchedulingService) *ScheduleHandler {
	return &ScheduleHandler{scheduling: scheduling}
}

// Propose godoc
// @Summary Propose a defense session for a validated submission
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Propose(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sched, err := h.scheduling.Propose(c.Request.Context(), req)
	if err != nil {
		var conflict *models.ScheduleConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, response.Envelope{
				Error: appErrors.Clone(appErrors.ErrConflict, conflict.Message),
				Data:  conflict,
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, sched)
}

// List godoc
// @Summary List all defense schedules
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.scheduling.List(c.Request.Context()), nil)
}

// Upcoming godoc
// @Summary List upcoming sessions within the next N days
// @Tags Schedules
// @Produce json
// @Param days query int false "Window in days, default 3"
// @Success 200 {object} response.Envelope
// @Router /schedules/upcoming [get]
func (h *ScheduleHandler) Upcoming(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "3"))
	response.JSON(c, http.StatusOK, h.scheduling.Upcoming(c.Request.Context(), days), nil)
}

// Complete godoc
// @Summary Mark a session as held and move the student into revision
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule id"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/complete [post]
func (h *ScheduleHandler) Complete(c *gin.Context) {
	sched, err := h.scheduling.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sched, nil)
}

// Reset godoc
// @Summary Delete a schedule and push the submission back to rejected
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule id"
// @Param payload body dto.ResetScheduleRequest true "Reset reason"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Reset(c *gin.Context) {
	var req dto.ResetScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "reset reason is required"))
		return
	}
	if err := h.scheduling.Reset(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Rooms godoc
// @Summary List defense rooms
// @Tags Rooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *ScheduleHandler) Rooms(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.scheduling.Rooms(), nil)
}

// AddRoom godoc
// @Summary Register a defense room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param payload body dto.AddRoomRequest true "Room payload"
// @Success 201 {object} response.Envelope
// @Router /rooms [post]
func (h *ScheduleHandler) AddRoom(c *gin.Context) {
	var req dto.AddRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "room name is required"))
		return
	}
	if err := h.scheduling.AddRoom(req.Name); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"name": req.Name})
}

// RemoveRoom godoc
// @Summary Delete a defense room
// @Tags Rooms
// @Produce json
// @Param name path string true "Room name"
// @Success 204
// @Router /rooms/{name} [delete]
func (h *ScheduleHandler) RemoveRoom(c *gin.Context) {
	if err := h.scheduling.RemoveRoom(c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

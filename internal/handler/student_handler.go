package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/defense-portal-api/internal/dto"
	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/service"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
	"github.com/noah-isme/defense-portal-api/pkg/response"
)

// StudentHandler exposes the student master directory endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name or NPM"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var filter models.StudentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get a student by NPM
// @Tags Students
// @Produce json
// @Param npm path string true "Student NPM"
// @Success 200 {object} response.Envelope
// @Router /students/{npm} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Find(c.Request.Context(), c.Param("npm"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Import godoc
// @Summary Import the student master list from a CSV file
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Router /students/import [post]
func (h *StudentHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read uploaded file"))
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := h.students.Import(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// BulkDelete godoc
// @Summary Delete students by NPM, keeping an undo stash
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.BulkDeleteStudentsRequest true "NPMs to delete"
// @Success 200 {object} response.Envelope
// @Router /students/bulk-delete [post]
func (h *StudentHandler) BulkDelete(c *gin.Context) {
	var req dto.BulkDeleteStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	deleted, err := h.students.BulkDelete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}

// UndoDelete godoc
// @Summary Restore the last bulk delete, skipping NPMs that exist again
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /students/undo-delete [post]
func (h *StudentHandler) UndoDelete(c *gin.Context) {
	result, err := h.students.UndoDelete(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

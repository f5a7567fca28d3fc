package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/defense-portal-api/internal/service"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
	"github.com/noah-isme/defense-portal-api/pkg/response"
)

// UploadHandler stores submitted documents and serves signed downloads.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Store godoc
// @Summary Upload a document and receive its file record
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) Store(c *gin.Context) {
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

	record, err := h.uploads.Store(c.Request.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Download godoc
// @Summary Download a stored document via its signed token
// @Tags Uploads
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /uploads/{token} [get]
func (h *UploadHandler) Download(c *gin.Context) {
	path, err := h.uploads.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.File(path)
}

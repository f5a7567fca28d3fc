package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/service"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
	"github.com/noah-isme/defense-portal-api/pkg/response"
)

// AuthHandler exposes the staff login endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary Staff login with the shared role password
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

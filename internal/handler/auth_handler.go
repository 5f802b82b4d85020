package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mlima-cursos/matricula-api/internal/models"
	appErrors "github.com/mlima-cursos/matricula-api/pkg/errors"
	"github.com/mlima-cursos/matricula-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// AuthHandler exposes the admin login endpoint.
type AuthHandler struct {
	service  authService
	validate *validator.Validate
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service authService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{service: service, validate: validate}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "email and password are required"))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

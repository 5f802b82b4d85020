package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mlima-cursos/matricula-api/internal/dto"
	appErrors "github.com/mlima-cursos/matricula-api/pkg/errors"
)

type checkoutService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error)
	CheckStatus(ctx context.Context, paymentID string) (*dto.StatusResponse, error)
	Existing(ctx context.Context, email, cpf string) (*dto.ExistingResponse, error)
}

// CheckoutHandler exposes the public enrollment endpoints. These speak the
// plain JSON contract the enrollment form consumes, not the admin envelope.
type CheckoutHandler struct {
	service  checkoutService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCheckoutHandler constructs the handler.
func NewCheckoutHandler(service checkoutService, validate *validator.Validate, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: service, validate: validate, logger: logger}
}

// Register handles POST /enrollment.
func (h *CheckoutHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, "payload inválido"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, validationMessage(err)))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusCreated
	if resp.Resume {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// Status handles GET /enrollment/status/:paymentId.
func (h *CheckoutHandler) Status(c *gin.Context) {
	paymentID := c.Param("paymentId")
	if paymentID == "" {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, "referência de pagamento ausente"))
		return
	}

	resp, err := h.service.CheckStatus(c.Request.Context(), paymentID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Existing handles GET /enrollment/existing.
func (h *CheckoutHandler) Existing(c *gin.Context) {
	email := c.Query("email")
	cpf := c.Query("cpf")
	if email == "" && cpf == "" {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, "informe e-mail ou CPF"))
		return
	}

	resp, err := h.service.Existing(c.Request.Context(), email, cpf)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) fail(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("checkout_request_failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(appErr.Status, gin.H{"success": false, "message": appErr.Message})
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return "campo obrigatório: " + fe.Field()
		case "email":
			return "e-mail inválido"
		case "cpf":
			return "CPF inválido"
		}
	}
	return "dados inválidos"
}

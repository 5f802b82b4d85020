package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mlima-cursos/matricula-api/internal/models"
	"github.com/mlima-cursos/matricula-api/internal/service"
	"github.com/mlima-cursos/matricula-api/pkg/response"
)

type adminService interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, *models.Pagination, error)
	Export(ctx context.Context, format string) (*service.ExportResult, error)
}

// AdminHandler exposes the back-office enrollment endpoints.
type AdminHandler struct {
	service adminService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(service adminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// List handles GET /admin/enrollments.
func (h *AdminHandler) List(c *gin.Context) {
	filter := models.EnrollmentFilter{
		Status:    models.EnrollmentStatus(c.Query("status")),
		Modality:  models.Modality(c.Query("modality")),
		Search:    c.Query("search"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	enrollments, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Export handles GET /admin/enrollments/export.
func (h *AdminHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatCSV)

	result, err := h.service.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

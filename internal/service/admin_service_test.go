package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlima-cursos/matricula-api/internal/models"
	appErrors "github.com/mlima-cursos/matricula-api/pkg/errors"
	"github.com/mlima-cursos/matricula-api/pkg/export"
)

type fakeLister struct {
	enrollments []models.Enrollment
	total       int
}

func (f *fakeLister) List(context.Context, models.EnrollmentFilter) ([]models.Enrollment, int, error) {
	return f.enrollments, f.total, nil
}

func (f *fakeLister) ListAll(context.Context) ([]models.Enrollment, error) {
	return f.enrollments, nil
}

func sampleEnrollments() []models.Enrollment {
	paymentID := "1001"
	return []models.Enrollment{
		{
			ID:        "enr-1",
			Name:      "Maria Souza",
			Email:     "maria@example.com",
			CPF:       "52998224725",
			Modality:  models.ModalityWithMaterial,
			Amount:    799,
			Status:    models.EnrollmentStatusPaid,
			PaymentID: &paymentID,
			CreatedAt: time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestAdminListPagination(t *testing.T) {
	svc := NewAdminService(&fakeLister{enrollments: sampleEnrollments(), total: 42}, export.NewCSVExporter(), export.NewPDFExporter())

	enrollments, pagination, err := svc.List(context.Background(), models.EnrollmentFilter{Page: 2, PageSize: 10})
	require.NoError(t, err)

	assert.Len(t, enrollments, 1)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 10, pagination.PageSize)
	assert.Equal(t, 42, pagination.TotalCount)
}

func TestAdminExportCSV(t *testing.T) {
	svc := NewAdminService(&fakeLister{enrollments: sampleEnrollments()}, export.NewCSVExporter(), export.NewPDFExporter())

	result, err := svc.Export(context.Background(), ExportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "matriculas-"))

	content := string(result.Content)
	assert.Contains(t, content, "Nome,Email,CPF")
	assert.Contains(t, content, "maria@example.com")
	assert.Contains(t, content, "799.00")
}

func TestAdminExportPDF(t *testing.T) {
	svc := NewAdminService(&fakeLister{enrollments: sampleEnrollments()}, export.NewCSVExporter(), export.NewPDFExporter())

	result, err := svc.Export(context.Background(), ExportFormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestAdminExportUnknownFormat(t *testing.T) {
	svc := NewAdminService(&fakeLister{}, export.NewCSVExporter(), export.NewPDFExporter())

	_, err := svc.Export(context.Background(), "xlsx")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

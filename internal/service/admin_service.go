package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mlima-cursos/matricula-api/internal/models"
	appErrors "github.com/mlima-cursos/matricula-api/pkg/errors"
	"github.com/mlima-cursos/matricula-api/pkg/export"
)

// Export formats supported by the admin console.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type enrollmentLister interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, int, error)
	ListAll(ctx context.Context) ([]models.Enrollment, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// AdminService serves the back-office listing and export operations.
type AdminService struct {
	store enrollmentLister
	csv   datasetRenderer
	pdf   pdfRenderer
}

// NewAdminService constructs the admin service.
func NewAdminService(store enrollmentLister, csv datasetRenderer, pdf pdfRenderer) *AdminService {
	return &AdminService{store: store, csv: csv, pdf: pdf}
}

// List returns a filtered, paginated page of enrollments.
func (s *AdminService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, *models.Pagination, error) {
	enrollments, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	return enrollments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ExportResult holds a rendered export document.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Export renders every enrollment into the requested document format.
func (s *AdminService) Export(ctx context.Context, format string) (*ExportResult, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	enrollments, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	dataset := enrollmentDataset(enrollments)
	stamp := time.Now().UTC().Format("20060102-150405")

	if format == ExportFormatCSV {
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("matriculas-%s.csv", stamp),
		}, nil
	}

	content, err := s.pdf.Render(dataset, "Matrículas")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportResult{
		Content:     content,
		ContentType: "application/pdf",
		Filename:    fmt.Sprintf("matriculas-%s.pdf", stamp),
	}, nil
}

func enrollmentDataset(enrollments []models.Enrollment) export.Dataset {
	headers := []string{"Nome", "Email", "CPF", "Telefone", "Modalidade", "Valor", "Status", "Pagamento", "Criado em"}
	rows := make([]map[string]string, 0, len(enrollments))
	for _, e := range enrollments {
		paymentID := ""
		if e.PaymentID != nil {
			paymentID = *e.PaymentID
		}
		rows = append(rows, map[string]string{
			"Nome":       e.Name,
			"Email":      e.Email,
			"CPF":        e.CPF,
			"Telefone":   e.Phone,
			"Modalidade": string(e.Modality),
			"Valor":      fmt.Sprintf("%.2f", e.Amount),
			"Status":     string(e.Status),
			"Pagamento":  paymentID,
			"Criado em":  e.CreatedAt.Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

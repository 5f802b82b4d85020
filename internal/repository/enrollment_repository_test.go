package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/mlima-cursos/matricula-api/internal/models"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func enrollmentRows() *sqlmock.Rows {
	paymentID := "1001"
	return sqlmock.NewRows([]string{"id", "name", "email", "cpf", "phone", "modality", "amount", "status", "payment_id", "created_at", "updated_at"}).
		AddRow("enr-1", "Maria Souza", "maria@example.com", "52998224725", "11999990000", models.ModalityWithMaterial, 799.0, models.EnrollmentStatusPending, &paymentID, time.Now(), time.Now())
}

func TestEnrollmentRepositoryCountByStatus(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments WHERE status = $1")).
		WithArgs(models.EnrollmentStatusPaid).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	count, err := repo.CountByStatus(context.Background(), models.EnrollmentStatusPaid)
	require.NoError(t, err)
	require.Equal(t, 17, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindByIdentity(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments WHERE email = $1 OR cpf = $2 LIMIT 1")).
		WithArgs("maria@example.com", "52998224725").
		WillReturnRows(enrollmentRows())

	enrollment, err := repo.FindByIdentity(context.Background(), "maria@example.com", "52998224725")
	require.NoError(t, err)
	require.Equal(t, "enr-1", enrollment.ID)
	require.NotNil(t, enrollment.PaymentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindByIdentityNotFound(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("FROM enrollments WHERE email").
		WithArgs("ghost@example.com", "00000000191").
		WillReturnError(sql.ErrNoRows)

	enrollment, err := repo.FindByIdentity(context.Background(), "ghost@example.com", "00000000191")
	require.Nil(t, enrollment)
	require.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{
		Name:     "Maria Souza",
		Email:    "maria@example.com",
		CPF:      "52998224725",
		Modality: models.ModalityWithMaterial,
		Amount:   799,
	}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	require.NotEmpty(t, enrollment.ID)
	require.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
	require.False(t, enrollment.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("enr-1", models.EnrollmentStatusPaid, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "enr-1", models.EnrollmentStatusPaid))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryAttachPayment(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET payment_id = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("enr-1", "1001", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AttachPayment(context.Background(), "enr-1", "1001"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments WHERE status = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.EnrollmentStatusPaid).
		WillReturnRows(enrollmentRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments WHERE status = $1")).
		WithArgs(models.EnrollmentStatusPaid).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	enrollments, total, err := repo.List(context.Background(), models.EnrollmentFilter{Status: models.EnrollmentStatusPaid})
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

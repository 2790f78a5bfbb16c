package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/edunexia/portal-api/internal/models"
)

func newSimplifiedRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func simplifiedRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "external_id", "student_name", "student_email", "student_phone", "student_document",
		"course_id", "full_price", "discounted_price", "status", "user_id", "enrollment_id", "created_by",
		"created_at", "updated_at",
	})
}

func TestSimplifiedRepositoryCreateFillsExternalID(t *testing.T) {
	db, mock, cleanup := newSimplifiedRepoMock(t)
	defer cleanup()

	repo := NewSimplifiedEnrollmentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO simplified_enrollments")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))

	se := &models.SimplifiedEnrollment{
		StudentName:  "Maria Souza",
		StudentEmail: "maria@example.com",
		CourseID:     3,
	}
	require.NoError(t, repo.Create(context.Background(), se))
	require.Equal(t, int64(10), se.ID)
	require.NotEmpty(t, se.ExternalID)
	require.Equal(t, models.SimplifiedStatusPending, se.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSimplifiedRepositoryFindByExternalID(t *testing.T) {
	db, mock, cleanup := newSimplifiedRepoMock(t)
	defer cleanup()

	repo := NewSimplifiedEnrollmentRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, external_id, student_name")).
		WithArgs("ext-10").
		WillReturnRows(simplifiedRows().AddRow(
			int64(10), "ext-10", "Maria Souza", "maria@example.com", "", "",
			int64(3), nil, nil, "payment_confirmed", nil, nil, nil, now, now,
		))

	se, err := repo.FindByExternalID(context.Background(), "ext-10")
	require.NoError(t, err)
	require.Equal(t, int64(10), se.ID)
	require.Equal(t, models.SimplifiedStatusPaymentConfirmed, se.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSimplifiedRepositoryFindByIDNoRows(t *testing.T) {
	db, mock, cleanup := newSimplifiedRepoMock(t)
	defer cleanup()

	repo := NewSimplifiedEnrollmentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, external_id, student_name")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 99)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSimplifiedRepositoryListPendingConversion(t *testing.T) {
	db, mock, cleanup := newSimplifiedRepoMock(t)
	defer cleanup()

	repo := NewSimplifiedEnrollmentRepository(db)
	now := time.Now()
	mock.ExpectQuery("FROM simplified_enrollments WHERE status = .* ORDER BY created_at ASC").
		WithArgs(models.SimplifiedStatusPaymentConfirmed).
		WillReturnRows(simplifiedRows().
			AddRow(int64(1), "ext-1", "A", "a@example.com", "", "", int64(3), nil, nil, "payment_confirmed", nil, nil, nil, now, now).
			AddRow(int64(2), "ext-2", "B", "b@example.com", "", "", int64(3), nil, nil, "payment_confirmed", nil, nil, nil, now, now))

	records, err := repo.ListPendingConversion(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSimplifiedRepositoryListIncomplete(t *testing.T) {
	db, mock, cleanup := newSimplifiedRepoMock(t)
	defer cleanup()

	repo := NewSimplifiedEnrollmentRepository(db)
	now := time.Now()
	mock.ExpectQuery("FROM simplified_enrollments WHERE status IN .* AND enrollment_id IS NULL").
		WithArgs(models.SimplifiedStatusPaymentConfirmed, models.SimplifiedStatusConverted).
		WillReturnRows(simplifiedRows().
			AddRow(int64(4), "ext-4", "C", "c@example.com", "", "", int64(3), nil, nil, "converted", nil, nil, nil, now, now))

	records, err := repo.ListIncomplete(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Nil(t, records[0].EnrollmentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSimplifiedRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newSimplifiedRepoMock(t)
	defer cleanup()

	repo := NewSimplifiedEnrollmentRepository(db)
	now := time.Now()
	mock.ExpectQuery("FROM simplified_enrollments WHERE status = .* AND course_id = ").
		WithArgs(models.SimplifiedStatusPending, int64(3)).
		WillReturnRows(simplifiedRows().
			AddRow(int64(1), "ext-1", "A", "a@example.com", "", "", int64(3), nil, nil, "pending", nil, nil, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM simplified_enrollments")).
		WithArgs(models.SimplifiedStatusPending, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.SimplifiedEnrollmentFilter{
		Status:   models.SimplifiedStatusPending,
		CourseID: 3,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSimplifiedRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newSimplifiedRepoMock(t)
	defer cleanup()

	repo := NewSimplifiedEnrollmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE simplified_enrollments SET status")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 10, models.SimplifiedStatusPaymentConfirmed))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSimplifiedRepositoryLinkUser(t *testing.T) {
	db, mock, cleanup := newSimplifiedRepoMock(t)
	defer cleanup()

	repo := NewSimplifiedEnrollmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE simplified_enrollments SET user_id")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.LinkUser(context.Background(), 10, 42))
	require.NoError(t, mock.ExpectationsWereMet())
}

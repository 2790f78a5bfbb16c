package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edunexia/portal-api/internal/models"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
)

type mockSimplifiedRepo struct {
	record    *models.SimplifiedEnrollment
	findErr   error
	created   []*models.SimplifiedEnrollment
	createErr error
	updated   map[int64]models.SimplifiedEnrollmentStatus
}

func (m *mockSimplifiedRepo) Create(ctx context.Context, se *models.SimplifiedEnrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	se.ID = int64(len(m.created) + 1)
	m.created = append(m.created, se)
	return nil
}

func (m *mockSimplifiedRepo) FindByID(ctx context.Context, id int64) (*models.SimplifiedEnrollment, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.record, nil
}

func (m *mockSimplifiedRepo) List(ctx context.Context, filter models.SimplifiedEnrollmentFilter) ([]models.SimplifiedEnrollment, int, error) {
	if m.record == nil {
		return nil, 0, nil
	}
	return []models.SimplifiedEnrollment{*m.record}, 1, nil
}

func (m *mockSimplifiedRepo) UpdateStatus(ctx context.Context, id int64, status models.SimplifiedEnrollmentStatus) error {
	if m.updated == nil {
		m.updated = make(map[int64]models.SimplifiedEnrollmentStatus)
	}
	m.updated[id] = status
	return nil
}

func newSimplifiedServiceForTest(repo *mockSimplifiedRepo, logs *mockStatusLogWriterWithList, courses *mockCourseReader) *SimplifiedEnrollmentService {
	return NewSimplifiedEnrollmentService(repo, logs, courses, validator.New(), zap.NewNop())
}

type mockStatusLogWriterWithList struct {
	logs []*models.StatusLog
	err  error
}

func (m *mockStatusLogWriterWithList) Create(ctx context.Context, log *models.StatusLog) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockStatusLogWriterWithList) ListBySimplifiedEnrollment(ctx context.Context, simplifiedID int64) ([]models.StatusLog, error) {
	out := make([]models.StatusLog, 0, len(m.logs))
	for _, l := range m.logs {
		if l.SimplifiedEnrollmentID == simplifiedID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func TestCheckoutCreatesPendingRecord(t *testing.T) {
	repo := &mockSimplifiedRepo{}
	courses := &mockCourseReader{course: &models.Course{ID: 3, Name: "MBA em Gestão", Active: true}}
	svc := newSimplifiedServiceForTest(repo, &mockStatusLogWriterWithList{}, courses)

	se, err := svc.Checkout(context.Background(), CheckoutRequest{
		StudentName:  "Maria Souza",
		StudentEmail: "maria@example.com",
		CourseID:     3,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SimplifiedStatusPending, se.Status)
	assert.Equal(t, int64(3), se.CourseID)
	require.Len(t, repo.created, 1)
}

func TestCheckoutRejectsInvalidPayload(t *testing.T) {
	svc := newSimplifiedServiceForTest(&mockSimplifiedRepo{}, &mockStatusLogWriterWithList{}, &mockCourseReader{})

	_, err := svc.Checkout(context.Background(), CheckoutRequest{StudentName: "Maria"}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCheckoutRejectsUnknownCourse(t *testing.T) {
	svc := newSimplifiedServiceForTest(&mockSimplifiedRepo{}, &mockStatusLogWriterWithList{}, &mockCourseReader{err: sql.ErrNoRows})

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		StudentName:  "Maria Souza",
		StudentEmail: "maria@example.com",
		CourseID:     99,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCancelPendingRecord(t *testing.T) {
	repo := &mockSimplifiedRepo{record: &models.SimplifiedEnrollment{ID: 10, Status: models.SimplifiedStatusPending}}
	logs := &mockStatusLogWriterWithList{}
	svc := newSimplifiedServiceForTest(repo, logs, &mockCourseReader{})

	actor := int64(1)
	require.NoError(t, svc.Cancel(context.Background(), 10, &actor, "desistência"))
	assert.Equal(t, models.SimplifiedStatusCancelled, repo.updated[10])

	require.Len(t, logs.logs, 1)
	assert.Equal(t, models.SimplifiedStatusPending, logs.logs[0].FromStatus)
	assert.Equal(t, models.SimplifiedStatusCancelled, logs.logs[0].ToStatus)
	assert.Equal(t, "desistência", logs.logs[0].Reason)
}

func TestCancelRejectsConvertedRecord(t *testing.T) {
	enrollmentID := int64(7)
	repo := &mockSimplifiedRepo{record: &models.SimplifiedEnrollment{
		ID:           10,
		Status:       models.SimplifiedStatusConverted,
		EnrollmentID: &enrollmentID,
	}}
	svc := newSimplifiedServiceForTest(repo, &mockStatusLogWriterWithList{}, &mockCourseReader{})

	err := svc.Cancel(context.Background(), 10, nil, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updated)
}

func TestCancelAlreadyCancelledIsNoop(t *testing.T) {
	repo := &mockSimplifiedRepo{record: &models.SimplifiedEnrollment{ID: 10, Status: models.SimplifiedStatusCancelled}}
	svc := newSimplifiedServiceForTest(repo, &mockStatusLogWriterWithList{}, &mockCourseReader{})

	require.NoError(t, svc.Cancel(context.Background(), 10, nil, ""))
	assert.Empty(t, repo.updated)
}

func TestLogsReturnsHistory(t *testing.T) {
	repo := &mockSimplifiedRepo{record: &models.SimplifiedEnrollment{ID: 10, Status: models.SimplifiedStatusPaymentConfirmed}}
	logs := &mockStatusLogWriterWithList{logs: []*models.StatusLog{
		{SimplifiedEnrollmentID: 10, FromStatus: models.SimplifiedStatusPending, ToStatus: models.SimplifiedStatusPaymentConfirmed},
		{SimplifiedEnrollmentID: 11, FromStatus: models.SimplifiedStatusPending, ToStatus: models.SimplifiedStatusCancelled},
	}}
	svc := newSimplifiedServiceForTest(repo, logs, &mockCourseReader{})

	history, err := svc.Logs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.SimplifiedStatusPaymentConfirmed, history[0].ToStatus)
}

func TestLogsUnknownRecord(t *testing.T) {
	svc := newSimplifiedServiceForTest(&mockSimplifiedRepo{findErr: sql.ErrNoRows}, &mockStatusLogWriterWithList{}, &mockCourseReader{})

	_, err := svc.Logs(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edunexia/portal-api/internal/models"
	"github.com/edunexia/portal-api/internal/repository"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
)

type mockConverterSimplifiedRepo struct {
	record      *models.SimplifiedEnrollment
	findErr     error
	linkedUsers map[int64]int64
	linkErr     error
}

func (m *mockConverterSimplifiedRepo) FindByID(ctx context.Context, id int64) (*models.SimplifiedEnrollment, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.record, nil
}

func (m *mockConverterSimplifiedRepo) LinkUser(ctx context.Context, id, userID int64) error {
	if m.linkErr != nil {
		return m.linkErr
	}
	if m.linkedUsers == nil {
		m.linkedUsers = make(map[int64]int64)
	}
	m.linkedUsers[id] = userID
	return nil
}

type mockEnrollmentReader struct {
	exists bool
	err    error
}

func (m *mockEnrollmentReader) ExistsForSimplified(ctx context.Context, simplifiedID int64) (bool, error) {
	return m.exists, m.err
}

type mockCourseReader struct {
	course *models.Course
	err    error
}

func (m *mockCourseReader) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.course, nil
}

type mockProvisioner struct {
	result *ProvisionResult
	err    error
	calls  int
}

func (m *mockProvisioner) Provision(ctx context.Context, se *models.SimplifiedEnrollment) (*ProvisionResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockContractBuilder struct {
	contract *models.Contract
	calls    int
}

func (m *mockContractBuilder) Build(studentID int64, course *models.Course, se *models.SimplifiedEnrollment, ov *ContractOverrides) *models.Contract {
	m.calls++
	return m.contract
}

type mockConversionWriter struct {
	result    *repository.ConversionResult
	err       error
	calls     int
	lastSE    *models.SimplifiedEnrollment
	lastLog   *models.StatusLog
	studentID int64
}

func (m *mockConversionWriter) Convert(ctx context.Context, se *models.SimplifiedEnrollment, studentID int64, contract *models.Contract, log *models.StatusLog) (*repository.ConversionResult, error) {
	m.calls++
	m.lastSE = se
	m.lastLog = log
	m.studentID = studentID
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockNotifier struct {
	sent  bool
	calls int
	last  WelcomeData
}

func (m *mockNotifier) SendCredentials(ctx context.Context, data WelcomeData) bool {
	m.calls++
	m.last = data
	return m.sent
}

type mockLocker struct {
	acquired   bool
	acquireErr error
	released   bool
}

func (m *mockLocker) Acquire(ctx context.Context, simplifiedID int64, ttl time.Duration) (bool, error) {
	return m.acquired, m.acquireErr
}

func (m *mockLocker) Release(ctx context.Context, simplifiedID int64) error {
	m.released = true
	return nil
}

func confirmedEnrollment() *models.SimplifiedEnrollment {
	full := 18000.0
	return &models.SimplifiedEnrollment{
		ID:              10,
		StudentName:     "Maria Souza",
		StudentEmail:    "maria@example.com",
		StudentDocument: "123.456.789-00",
		CourseID:        3,
		FullPrice:       &full,
		Status:          models.SimplifiedStatusPaymentConfirmed,
	}
}

func newConverterForTest(
	simplified *mockConverterSimplifiedRepo,
	enrollments *mockEnrollmentReader,
	courses *mockCourseReader,
	provisioner *mockProvisioner,
	contracts *mockContractBuilder,
	conversions *mockConversionWriter,
	notifier *mockNotifier,
	locker *mockLocker,
) *ConverterService {
	return NewConverterService(simplified, enrollments, courses, provisioner, contracts, conversions, notifier, locker, nil, time.Minute, zap.NewNop())
}

func TestConverterSyncHappyPath(t *testing.T) {
	simplified := &mockConverterSimplifiedRepo{record: confirmedEnrollment()}
	enrollments := &mockEnrollmentReader{}
	courses := &mockCourseReader{course: &models.Course{ID: 3, Code: "MBA01", Name: "MBA em Gestão"}}
	provisioner := &mockProvisioner{result: &ProvisionResult{User: &models.User{ID: 42, Email: "maria@example.com"}, Created: true, PlainPassword: "12345678900"}}
	contracts := &mockContractBuilder{contract: &models.Contract{Number: "MBA01-42-000123"}}
	conversions := &mockConversionWriter{result: &repository.ConversionResult{EnrollmentID: 7, ContractID: 8}}
	notifier := &mockNotifier{sent: true}
	locker := &mockLocker{acquired: true}

	svc := newConverterForTest(simplified, enrollments, courses, provisioner, contracts, conversions, notifier, locker)

	err := svc.Sync(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, conversions.calls)
	assert.Equal(t, int64(42), conversions.studentID)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, "12345678900", notifier.last.Password)
	assert.True(t, locker.released)

	require.NotNil(t, conversions.lastLog)
	assert.Equal(t, models.SimplifiedStatusPaymentConfirmed, conversions.lastLog.FromStatus)
	assert.Equal(t, models.SimplifiedStatusConverted, conversions.lastLog.ToStatus)
}

func TestConverterSyncIdempotentWhenLinked(t *testing.T) {
	record := confirmedEnrollment()
	enrollmentID := int64(7)
	record.EnrollmentID = &enrollmentID
	record.Status = models.SimplifiedStatusConverted

	conversions := &mockConversionWriter{}
	provisioner := &mockProvisioner{}
	svc := newConverterForTest(
		&mockConverterSimplifiedRepo{record: record},
		&mockEnrollmentReader{},
		&mockCourseReader{},
		provisioner,
		&mockContractBuilder{},
		conversions,
		&mockNotifier{sent: true},
		&mockLocker{acquired: true},
	)

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.Sync(context.Background(), 10))
	}
	assert.Zero(t, conversions.calls)
	assert.Zero(t, provisioner.calls)
}

func TestConverterSyncIdempotentWhenEnrollmentExists(t *testing.T) {
	conversions := &mockConversionWriter{}
	svc := newConverterForTest(
		&mockConverterSimplifiedRepo{record: confirmedEnrollment()},
		&mockEnrollmentReader{exists: true},
		&mockCourseReader{},
		&mockProvisioner{},
		&mockContractBuilder{},
		conversions,
		&mockNotifier{sent: true},
		&mockLocker{acquired: true},
	)

	require.NoError(t, svc.Sync(context.Background(), 10))
	assert.Zero(t, conversions.calls)
}

func TestConverterSyncRejectsUnconfirmedPayment(t *testing.T) {
	record := confirmedEnrollment()
	record.Status = models.SimplifiedStatusPending

	svc := newConverterForTest(
		&mockConverterSimplifiedRepo{record: record},
		&mockEnrollmentReader{},
		&mockCourseReader{},
		&mockProvisioner{},
		&mockContractBuilder{},
		&mockConversionWriter{},
		&mockNotifier{sent: true},
		&mockLocker{acquired: true},
	)

	err := svc.Sync(context.Background(), 10)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotConvertible.Code, appErr.Code)
}

func TestConverterSyncNotFound(t *testing.T) {
	svc := newConverterForTest(
		&mockConverterSimplifiedRepo{findErr: sql.ErrNoRows},
		&mockEnrollmentReader{},
		&mockCourseReader{},
		&mockProvisioner{},
		&mockContractBuilder{},
		&mockConversionWriter{},
		&mockNotifier{sent: true},
		&mockLocker{acquired: true},
	)

	err := svc.Sync(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestConverterSyncMissingCourseKeepsAccount(t *testing.T) {
	provisioner := &mockProvisioner{result: &ProvisionResult{User: &models.User{ID: 42}, Created: true}}
	contracts := &mockContractBuilder{}
	conversions := &mockConversionWriter{}

	svc := newConverterForTest(
		&mockConverterSimplifiedRepo{record: confirmedEnrollment()},
		&mockEnrollmentReader{},
		&mockCourseReader{err: sql.ErrNoRows},
		provisioner,
		contracts,
		conversions,
		&mockNotifier{sent: true},
		&mockLocker{acquired: true},
	)

	err := svc.Sync(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 1, provisioner.calls)
	assert.Zero(t, contracts.calls)
	assert.Zero(t, conversions.calls)
}

func TestConverterSyncEmailFailureIsNotFatal(t *testing.T) {
	notifier := &mockNotifier{sent: false}
	svc := newConverterForTest(
		&mockConverterSimplifiedRepo{record: confirmedEnrollment()},
		&mockEnrollmentReader{},
		&mockCourseReader{course: &models.Course{ID: 3, Code: "MBA01", Name: "MBA em Gestão"}},
		&mockProvisioner{result: &ProvisionResult{User: &models.User{ID: 42, Email: "maria@example.com"}, Created: true, PlainPassword: "x"}},
		&mockContractBuilder{contract: &models.Contract{}},
		&mockConversionWriter{result: &repository.ConversionResult{EnrollmentID: 7, ContractID: 8}},
		notifier,
		&mockLocker{acquired: true},
	)

	require.NoError(t, svc.Sync(context.Background(), 10))
	assert.Equal(t, 1, notifier.calls)
}

func TestConverterSyncConcurrentWinnerIsNoop(t *testing.T) {
	svc := newConverterForTest(
		&mockConverterSimplifiedRepo{record: confirmedEnrollment()},
		&mockEnrollmentReader{},
		&mockCourseReader{course: &models.Course{ID: 3, Code: "MBA01", Name: "MBA em Gestão"}},
		&mockProvisioner{result: &ProvisionResult{User: &models.User{ID: 42, Email: "maria@example.com"}}},
		&mockContractBuilder{contract: &models.Contract{}},
		&mockConversionWriter{err: repository.ErrAlreadyLinked},
		&mockNotifier{sent: true},
		&mockLocker{acquired: true},
	)

	require.NoError(t, svc.Sync(context.Background(), 10))
}

func TestConverterSyncLockHeld(t *testing.T) {
	svc := newConverterForTest(
		&mockConverterSimplifiedRepo{record: confirmedEnrollment()},
		&mockEnrollmentReader{},
		&mockCourseReader{},
		&mockProvisioner{},
		&mockContractBuilder{},
		&mockConversionWriter{},
		&mockNotifier{sent: true},
		&mockLocker{acquired: false},
	)

	err := svc.Sync(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConversionLocked.Code, appErrors.FromError(err).Code)
}

func TestConverterSyncProceedsWhenLockUnavailable(t *testing.T) {
	locker := &mockLocker{acquireErr: errors.New("redis down")}
	conversions := &mockConversionWriter{result: &repository.ConversionResult{EnrollmentID: 7, ContractID: 8}}
	svc := newConverterForTest(
		&mockConverterSimplifiedRepo{record: confirmedEnrollment()},
		&mockEnrollmentReader{},
		&mockCourseReader{course: &models.Course{ID: 3, Code: "MBA01", Name: "MBA em Gestão"}},
		&mockProvisioner{result: &ProvisionResult{User: &models.User{ID: 42, Email: "maria@example.com"}}},
		&mockContractBuilder{contract: &models.Contract{}},
		conversions,
		&mockNotifier{sent: true},
		locker,
	)

	require.NoError(t, svc.Sync(context.Background(), 10))
	assert.Equal(t, 1, conversions.calls)
	assert.False(t, locker.released)
}

func TestFixStudentAccountLinksUser(t *testing.T) {
	simplified := &mockConverterSimplifiedRepo{record: confirmedEnrollment()}
	notifier := &mockNotifier{sent: true}
	svc := newConverterForTest(
		simplified,
		&mockEnrollmentReader{},
		&mockCourseReader{course: &models.Course{ID: 3, Name: "MBA em Gestão"}},
		&mockProvisioner{result: &ProvisionResult{User: &models.User{ID: 42, Email: "maria@example.com", Username: "maria@example.com"}, Created: true, PlainPassword: "seed"}},
		&mockContractBuilder{},
		&mockConversionWriter{},
		notifier,
		&mockLocker{acquired: true},
	)

	user, err := svc.FixStudentAccount(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, int64(42), simplified.linkedUsers[10])
	assert.Equal(t, 1, notifier.calls)
}

func TestFixStudentAccountNotFound(t *testing.T) {
	svc := newConverterForTest(
		&mockConverterSimplifiedRepo{findErr: sql.ErrNoRows},
		&mockEnrollmentReader{},
		&mockCourseReader{},
		&mockProvisioner{},
		&mockContractBuilder{},
		&mockConversionWriter{},
		&mockNotifier{sent: true},
		&mockLocker{acquired: true},
	)

	_, err := svc.FixStudentAccount(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/edunexia/portal-api/internal/models"
	"github.com/edunexia/portal-api/internal/repository"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
)

const conversionReason = "Conversão automática após confirmação de pagamento"

type converterSimplifiedRepository interface {
	FindByID(ctx context.Context, id int64) (*models.SimplifiedEnrollment, error)
	LinkUser(ctx context.Context, id, userID int64) error
}

type converterEnrollmentReader interface {
	ExistsForSimplified(ctx context.Context, simplifiedID int64) (bool, error)
}

type converterCourseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

type accountProvisioner interface {
	Provision(ctx context.Context, se *models.SimplifiedEnrollment) (*ProvisionResult, error)
}

type contractBuilder interface {
	Build(studentID int64, course *models.Course, se *models.SimplifiedEnrollment, ov *ContractOverrides) *models.Contract
}

type conversionWriter interface {
	Convert(ctx context.Context, se *models.SimplifiedEnrollment, studentID int64, contract *models.Contract, log *models.StatusLog) (*repository.ConversionResult, error)
}

type credentialNotifier interface {
	SendCredentials(ctx context.Context, data WelcomeData) bool
}

type conversionLocker interface {
	Acquire(ctx context.Context, simplifiedID int64, ttl time.Duration) (bool, error)
	Release(ctx context.Context, simplifiedID int64) error
}

// ConverterService drives the enrollment-to-student-account state
// transition: it validates the simplified enrollment, provisions the
// account, converts the record into a formal enrollment with its contract in
// one transaction, and delivers credentials best-effort.
type ConverterService struct {
	simplified  converterSimplifiedRepository
	enrollments converterEnrollmentReader
	courses     converterCourseReader
	provisioner accountProvisioner
	contracts   contractBuilder
	conversions conversionWriter
	notifier    credentialNotifier
	locks       conversionLocker
	metrics     *MetricsService
	lockTTL     time.Duration
	logger      *zap.Logger
}

// NewConverterService constructs ConverterService. metrics may be nil.
func NewConverterService(
	simplified converterSimplifiedRepository,
	enrollments converterEnrollmentReader,
	courses converterCourseReader,
	provisioner accountProvisioner,
	contracts contractBuilder,
	conversions conversionWriter,
	notifier credentialNotifier,
	locks conversionLocker,
	metrics *MetricsService,
	lockTTL time.Duration,
	logger *zap.Logger,
) *ConverterService {
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConverterService{
		simplified:  simplified,
		enrollments: enrollments,
		courses:     courses,
		provisioner: provisioner,
		contracts:   contracts,
		conversions: conversions,
		notifier:    notifier,
		locks:       locks,
		metrics:     metrics,
		lockTTL:     lockTTL,
		logger:      logger,
	}
}

// Sync converts one simplified enrollment. A nil return covers both a real
// conversion and the idempotent no-op on an already-converted record; typed
// errors describe every failure mode. Safe to retry: nothing irreversible
// happens outside the conversion transaction except account provisioning,
// which is idempotent by email.
func (s *ConverterService) Sync(ctx context.Context, id int64) error {
	err := s.sync(ctx, id)
	if s.metrics != nil {
		if err != nil {
			s.metrics.ObserveConversion(ConversionOutcomeFailure)
		} else {
			s.metrics.ObserveConversion(ConversionOutcomeSuccess)
		}
	}
	return err
}

func (s *ConverterService) sync(ctx context.Context, id int64) error {
	if s.locks != nil {
		acquired, err := s.locks.Acquire(ctx, id, s.lockTTL)
		if err != nil {
			s.logger.Warn("conversion lock unavailable, relying on database constraints", zap.Int64("id", id), zap.Error(err))
		} else if !acquired {
			return appErrors.Clone(appErrors.ErrConversionLocked, "")
		} else {
			defer func() {
				if err := s.locks.Release(context.WithoutCancel(ctx), id); err != nil {
					s.logger.Warn("failed to release conversion lock", zap.Int64("id", id), zap.Error(err))
				}
			}()
		}
	}

	se, err := s.simplified.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "simplified enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load simplified enrollment")
	}

	// Idempotency guard. The formal-enrollment link is the real key: a
	// record flagged converted but missing its link (a crash between the
	// legacy system's two writes) is still eligible so recovery can finish
	// the job.
	if se.EnrollmentID != nil {
		s.logger.Debug("simplified enrollment already converted", zap.Int64("id", id))
		return nil
	}
	linked, err := s.enrollments.ExistsForSimplified(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check conversion link")
	}
	if linked {
		s.logger.Debug("formal enrollment already linked", zap.Int64("id", id))
		return nil
	}

	if se.Status != models.SimplifiedStatusPaymentConfirmed && se.Status != models.SimplifiedStatusConverted {
		return appErrors.Clone(appErrors.ErrNotConvertible, "enrollment payment is not confirmed")
	}

	result, err := s.provisioner.Provision(ctx, se)
	if err != nil {
		return err
	}

	course, err := s.courses.FindByID(ctx, se.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The account provisioned above is kept; it is harmless and
			// will be reused on retry.
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	contract := s.contracts.Build(result.User.ID, course, se, nil)
	statusLog := &models.StatusLog{
		SimplifiedEnrollmentID: se.ID,
		FromStatus:             se.Status,
		ToStatus:               models.SimplifiedStatusConverted,
		Reason:                 conversionReason,
		ChangedBy:              se.CreatedBy,
	}

	conversion, err := s.conversions.Convert(ctx, se, result.User.ID, contract, statusLog)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyLinked) {
			s.logger.Info("conversion already completed concurrently", zap.Int64("id", id))
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "conversion transaction failed")
	}

	s.sendCredentials(ctx, se, result, course)

	s.logger.Info("simplified enrollment converted",
		zap.Int64("id", se.ID),
		zap.Int64("enrollment_id", conversion.EnrollmentID),
		zap.Int64("contract_id", conversion.ContractID),
		zap.Int64("student_id", result.User.ID),
		zap.Bool("account_created", result.Created),
	)
	return nil
}

// FixStudentAccount is the standalone repair path for records whose account
// link is broken: find-or-create the account, attach it, resend credentials.
func (s *ConverterService) FixStudentAccount(ctx context.Context, id int64) (*models.User, error) {
	se, err := s.simplified.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "simplified enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load simplified enrollment")
	}

	result, err := s.provisioner.Provision(ctx, se)
	if err != nil {
		return nil, err
	}

	if err := s.simplified.LinkUser(ctx, se.ID, result.User.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link account")
	}

	var course *models.Course
	if c, err := s.courses.FindByID(ctx, se.CourseID); err == nil {
		course = c
	}
	s.sendCredentials(ctx, se, result, course)

	return result.User, nil
}

func (s *ConverterService) sendCredentials(ctx context.Context, se *models.SimplifiedEnrollment, result *ProvisionResult, course *models.Course) {
	password := result.PlainPassword
	if password == "" {
		password = DigitsOnly(se.StudentDocument)
	}
	courseName := ""
	if course != nil {
		courseName = course.Name
	}

	sent := s.notifier.SendCredentials(ctx, WelcomeData{
		Name:       se.StudentName,
		Login:      result.User.Email,
		Password:   password,
		CourseName: courseName,
	})
	if !sent {
		if s.metrics != nil {
			s.metrics.ObserveEmailFailure()
		}
		s.logger.Warn("credentials email not delivered", zap.Int64("id", se.ID), zap.String("email", result.User.Email))
	}
}

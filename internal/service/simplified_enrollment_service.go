package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunexia/portal-api/internal/models"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
)

type simplifiedEnrollmentRepository interface {
	Create(ctx context.Context, se *models.SimplifiedEnrollment) error
	FindByID(ctx context.Context, id int64) (*models.SimplifiedEnrollment, error)
	List(ctx context.Context, filter models.SimplifiedEnrollmentFilter) ([]models.SimplifiedEnrollment, int, error)
	UpdateStatus(ctx context.Context, id int64, status models.SimplifiedEnrollmentStatus) error
}

type statusLogRepository interface {
	Create(ctx context.Context, log *models.StatusLog) error
	ListBySimplifiedEnrollment(ctx context.Context, simplifiedID int64) ([]models.StatusLog, error)
}

type checkoutCourseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// CheckoutRequest is the public checkout payload creating a lead record.
type CheckoutRequest struct {
	StudentName     string   `json:"student_name" validate:"required"`
	StudentEmail    string   `json:"student_email" validate:"required,email"`
	StudentPhone    string   `json:"student_phone"`
	StudentDocument string   `json:"student_document"`
	CourseID        int64    `json:"course_id" validate:"required,gt=0"`
	FullPrice       *float64 `json:"full_price" validate:"omitempty,gte=0"`
	DiscountedPrice *float64 `json:"discounted_price" validate:"omitempty,gte=0"`
}

// SimplifiedEnrollmentService manages the checkout lead records around the
// conversion pipeline.
type SimplifiedEnrollmentService struct {
	repo      simplifiedEnrollmentRepository
	logs      statusLogRepository
	courses   checkoutCourseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSimplifiedEnrollmentService constructs SimplifiedEnrollmentService.
func NewSimplifiedEnrollmentService(repo simplifiedEnrollmentRepository, logs statusLogRepository, courses checkoutCourseReader, validate *validator.Validate, logger *zap.Logger) *SimplifiedEnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimplifiedEnrollmentService{repo: repo, logs: logs, courses: courses, validator: validate, logger: logger}
}

// Checkout creates a new simplified enrollment in pending state.
func (s *SimplifiedEnrollmentService) Checkout(ctx context.Context, req CheckoutRequest, createdBy *int64) (*models.SimplifiedEnrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checkout payload")
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	se := &models.SimplifiedEnrollment{
		StudentName:     req.StudentName,
		StudentEmail:    req.StudentEmail,
		StudentPhone:    req.StudentPhone,
		StudentDocument: req.StudentDocument,
		CourseID:        req.CourseID,
		FullPrice:       req.FullPrice,
		DiscountedPrice: req.DiscountedPrice,
		Status:          models.SimplifiedStatusPending,
		CreatedBy:       createdBy,
	}
	if err := s.repo.Create(ctx, se); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create simplified enrollment")
	}
	return se, nil
}

// List returns lead records with pagination metadata.
func (s *SimplifiedEnrollmentService) List(ctx context.Context, filter models.SimplifiedEnrollmentFilter) ([]models.SimplifiedEnrollment, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list simplified enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single lead record.
func (s *SimplifiedEnrollmentService) Get(ctx context.Context, id int64) (*models.SimplifiedEnrollment, error) {
	se, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "simplified enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load simplified enrollment")
	}
	return se, nil
}

// Cancel aborts a lead record that has not converted yet.
func (s *SimplifiedEnrollmentService) Cancel(ctx context.Context, id int64, actor *int64, reason string) error {
	se, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if se.Converted() {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "enrollment already converted")
	}
	if se.Status == models.SimplifiedStatusCancelled {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, id, models.SimplifiedStatusCancelled); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel enrollment")
	}

	if reason == "" {
		reason = "Cancelamento manual"
	}
	if err := s.logs.Create(ctx, &models.StatusLog{
		SimplifiedEnrollmentID: id,
		FromStatus:             se.Status,
		ToStatus:               models.SimplifiedStatusCancelled,
		Reason:                 reason,
		ChangedBy:              actor,
	}); err != nil {
		s.logger.Warn("failed to record cancellation log", zap.Int64("id", id), zap.Error(err))
	}
	return nil
}

// Logs returns the status transition history for a lead record.
func (s *SimplifiedEnrollmentService) Logs(ctx context.Context, id int64) ([]models.StatusLog, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	logs, err := s.logs.ListBySimplifiedEnrollment(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list status logs")
	}
	return logs, nil
}

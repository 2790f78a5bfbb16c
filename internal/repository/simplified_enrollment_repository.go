package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunexia/portal-api/internal/models"
)

// SimplifiedEnrollmentRepository handles persistence of checkout lead records.
type SimplifiedEnrollmentRepository struct {
	db *sqlx.DB
}

// NewSimplifiedEnrollmentRepository constructs the repository.
func NewSimplifiedEnrollmentRepository(db *sqlx.DB) *SimplifiedEnrollmentRepository {
	return &SimplifiedEnrollmentRepository{db: db}
}

const simplifiedColumns = `id, external_id, student_name, student_email, student_phone, student_document,
course_id, full_price, discounted_price, status, user_id, enrollment_id, created_by, created_at, updated_at`

// Create persists a new simplified enrollment and fills in the generated
// identifier and external UUID.
func (r *SimplifiedEnrollmentRepository) Create(ctx context.Context, se *models.SimplifiedEnrollment) error {
	if se.ExternalID == "" {
		se.ExternalID = uuid.NewString()
	}
	if se.Status == "" {
		se.Status = models.SimplifiedStatusPending
	}
	now := time.Now().UTC()
	se.CreatedAt = now
	se.UpdatedAt = now
	const query = `INSERT INTO simplified_enrollments
        (external_id, student_name, student_email, student_phone, student_document, course_id, full_price, discounted_price, status, created_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id`
	if err := r.db.GetContext(ctx, &se.ID, query,
		se.ExternalID, se.StudentName, se.StudentEmail, se.StudentPhone, se.StudentDocument,
		se.CourseID, se.FullPrice, se.DiscountedPrice, se.Status, se.CreatedBy, se.CreatedAt, se.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create simplified enrollment: %w", err)
	}
	return nil
}

// FindByID returns a simplified enrollment by its numeric identifier.
func (r *SimplifiedEnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.SimplifiedEnrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM simplified_enrollments WHERE id = $1 LIMIT 1`, simplifiedColumns)
	var se models.SimplifiedEnrollment
	if err := r.db.GetContext(ctx, &se, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find simplified enrollment by id: %w", err)
	}
	return &se, nil
}

// FindByExternalID returns a simplified enrollment by its external UUID,
// the reference carried by payment-gateway webhooks.
func (r *SimplifiedEnrollmentRepository) FindByExternalID(ctx context.Context, externalID string) (*models.SimplifiedEnrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM simplified_enrollments WHERE external_id = $1 LIMIT 1`, simplifiedColumns)
	var se models.SimplifiedEnrollment
	if err := r.db.GetContext(ctx, &se, query, externalID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find simplified enrollment by external id: %w", err)
	}
	return &se, nil
}

// List returns simplified enrollments filtered by the provided criteria.
func (r *SimplifiedEnrollmentRepository) List(ctx context.Context, filter models.SimplifiedEnrollmentFilter) ([]models.SimplifiedEnrollment, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.CourseID > 0 {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(student_name ILIKE $%d OR student_email ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at":   "created_at",
		"student_name": "student_name",
		"status":       "status",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM simplified_enrollments%s ORDER BY %s %s LIMIT %d OFFSET %d`,
		simplifiedColumns, clause, orderBy, order, size, offset)

	var records []models.SimplifiedEnrollment
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list simplified enrollments: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM simplified_enrollments" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count simplified enrollments: %w", err)
	}
	return records, total, nil
}

// ListPendingConversion returns records sitting in payment_confirmed waiting
// for the converter, oldest first.
func (r *SimplifiedEnrollmentRepository) ListPendingConversion(ctx context.Context, limit int) ([]models.SimplifiedEnrollment, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT %s FROM simplified_enrollments WHERE status = $1 ORDER BY created_at ASC LIMIT %d`, simplifiedColumns, limit)
	var records []models.SimplifiedEnrollment
	if err := r.db.SelectContext(ctx, &records, query, models.SimplifiedStatusPaymentConfirmed); err != nil {
		return nil, fmt.Errorf("list pending conversions: %w", err)
	}
	return records, nil
}

// ListIncomplete returns records that should have converted but are missing
// their formal-enrollment link, including ones already flagged converted.
func (r *SimplifiedEnrollmentRepository) ListIncomplete(ctx context.Context, limit int) ([]models.SimplifiedEnrollment, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT %s FROM simplified_enrollments WHERE status IN ($1, $2) AND enrollment_id IS NULL ORDER BY created_at ASC LIMIT %d`,
		simplifiedColumns, limit)
	var records []models.SimplifiedEnrollment
	if err := r.db.SelectContext(ctx, &records, query, models.SimplifiedStatusPaymentConfirmed, models.SimplifiedStatusConverted); err != nil {
		return nil, fmt.Errorf("list incomplete conversions: %w", err)
	}
	return records, nil
}

// UpdateStatus advances the checkout status of a record.
func (r *SimplifiedEnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.SimplifiedEnrollmentStatus) error {
	const query = `UPDATE simplified_enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update simplified enrollment status: %w", err)
	}
	return nil
}

// LinkUser attaches a provisioned account to the record. Used by the
// standalone account-repair path; the conversion transaction sets the link
// itself.
func (r *SimplifiedEnrollmentRepository) LinkUser(ctx context.Context, id, userID int64) error {
	const query = `UPDATE simplified_enrollments SET user_id = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("link user to simplified enrollment: %w", err)
	}
	return nil
}

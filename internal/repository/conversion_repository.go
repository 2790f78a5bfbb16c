package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/edunexia/portal-api/internal/models"
)

// ErrAlreadyLinked signals that another conversion won the race and a formal
// enrollment is already attached to the simplified enrollment. Callers treat
// it as an idempotent success, not a failure.
var ErrAlreadyLinked = errors.New("simplified enrollment already has a formal enrollment")

const uniqueViolation = pq.ErrorCode("23505")

// ConversionResult carries the identifiers produced by a conversion.
type ConversionResult struct {
	EnrollmentID int64
	ContractID   int64
}

// ConversionRepository executes the conversion write sequence atomically:
// formal-enrollment insert, simplified-enrollment terminal flip, contract
// insert and status-log append commit or roll back together.
type ConversionRepository struct {
	db *sqlx.DB
}

// NewConversionRepository constructs the repository.
func NewConversionRepository(db *sqlx.DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}

// Convert runs the conversion transaction for the given simplified
// enrollment. The contract's enrollment reference is filled from the freshly
// inserted row. The unique constraint on enrollments.simplified_enrollment_id
// turns a concurrent duplicate into ErrAlreadyLinked.
func (r *ConversionRepository) Convert(ctx context.Context, se *models.SimplifiedEnrollment, studentID int64, contract *models.Contract, log *models.StatusLog) (*ConversionResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin conversion: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()

	var enrollmentID int64
	const insertEnrollment = `INSERT INTO enrollments (student_id, course_id, simplified_enrollment_id, status, enrolled_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`
	if err := tx.GetContext(ctx, &enrollmentID, insertEnrollment,
		studentID, se.CourseID, se.ID, models.EnrollmentStatusActive, now, now, now,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyLinked
		}
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}

	const updateSimplified = `UPDATE simplified_enrollments SET status = $2, user_id = $3, enrollment_id = $4, updated_at = $5 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateSimplified,
		se.ID, models.SimplifiedStatusConverted, studentID, enrollmentID, now,
	); err != nil {
		return nil, fmt.Errorf("mark simplified enrollment converted: %w", err)
	}

	var contractID int64
	const insertContract = `INSERT INTO contracts (enrollment_id, student_id, course_id, number, type, status, total_value, installments, installment_value, discount_percent, payment_method, start_date, end_date, campus, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING id`
	if err := tx.GetContext(ctx, &contractID, insertContract,
		enrollmentID, contract.StudentID, contract.CourseID, contract.Number, contract.Type,
		contract.Status, contract.TotalValue, contract.Installments, contract.InstallmentValue,
		contract.DiscountPercent, contract.PaymentMethod, contract.StartDate, contract.EndDate,
		contract.Campus, now, now,
	); err != nil {
		return nil, fmt.Errorf("insert contract: %w", err)
	}

	const insertLog = `INSERT INTO status_logs (simplified_enrollment_id, from_status, to_status, reason, changed_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insertLog,
		se.ID, log.FromStatus, log.ToStatus, log.Reason, log.ChangedBy, now,
	); err != nil {
		return nil, fmt.Errorf("insert status log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit conversion: %w", err)
	}

	return &ConversionResult{EnrollmentID: enrollmentID, ContractID: contractID}, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

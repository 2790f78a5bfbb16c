package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edunexia/portal-api/internal/models"
)

// StatusLogRepository appends and reads simplified-enrollment audit entries.
type StatusLogRepository struct {
	db *sqlx.DB
}

// NewStatusLogRepository constructs the repository.
func NewStatusLogRepository(db *sqlx.DB) *StatusLogRepository {
	return &StatusLogRepository{db: db}
}

// Create appends an audit entry.
func (r *StatusLogRepository) Create(ctx context.Context, log *models.StatusLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO status_logs (simplified_enrollment_id, from_status, to_status, reason, changed_by, created_at)
        VALUES (:simplified_enrollment_id, :from_status, :to_status, :reason, :changed_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create status log: %w", err)
	}
	return nil
}

// ListBySimplifiedEnrollment returns the transition history for a record,
// oldest first.
func (r *StatusLogRepository) ListBySimplifiedEnrollment(ctx context.Context, simplifiedID int64) ([]models.StatusLog, error) {
	const query = `SELECT id, simplified_enrollment_id, from_status, to_status, reason, changed_by, created_at
        FROM status_logs WHERE simplified_enrollment_id = $1 ORDER BY created_at ASC`
	var logs []models.StatusLog
	if err := r.db.SelectContext(ctx, &logs, query, simplifiedID); err != nil {
		return nil, fmt.Errorf("list status logs: %w", err)
	}
	return logs, nil
}

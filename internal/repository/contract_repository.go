package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/edunexia/portal-api/internal/models"
)

// ContractRepository handles read access to educational contracts. Inserts
// happen inside the conversion transaction.
type ContractRepository struct {
	db *sqlx.DB
}

// NewContractRepository constructs the repository.
func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

const contractColumns = `id, enrollment_id, student_id, course_id, number, type, status, total_value,
installments, installment_value, discount_percent, payment_method, start_date, end_date, campus, created_at, updated_at`

// FindByID returns a contract by identifier.
func (r *ContractRepository) FindByID(ctx context.Context, id int64) (*models.Contract, error) {
	query := fmt.Sprintf(`SELECT %s FROM contracts WHERE id = $1 LIMIT 1`, contractColumns)
	var contract models.Contract
	if err := r.db.GetContext(ctx, &contract, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find contract by id: %w", err)
	}
	return &contract, nil
}

// FindDetailByID returns a contract with student and course context.
func (r *ContractRepository) FindDetailByID(ctx context.Context, id int64) (*models.ContractDetail, error) {
	const query = `SELECT ct.id, ct.enrollment_id, ct.student_id, ct.course_id, ct.number, ct.type, ct.status,
        ct.total_value, ct.installments, ct.installment_value, ct.discount_percent, ct.payment_method,
        ct.start_date, ct.end_date, ct.campus, ct.created_at, ct.updated_at,
        u.full_name AS student_name, c.name AS course_name, c.code AS course_code
        FROM contracts ct
        LEFT JOIN users u ON u.id = ct.student_id
        LEFT JOIN courses c ON c.id = ct.course_id
        WHERE ct.id = $1`
	var detail models.ContractDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find contract detail: %w", err)
	}
	return &detail, nil
}

// List returns contracts filtered by the provided criteria.
func (r *ContractRepository) List(ctx context.Context, filter models.ContractFilter) ([]models.Contract, int, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID > 0 {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID > 0 {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf(`SELECT %s FROM contracts%s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		contractColumns, clause, size, offset)

	var contracts []models.Contract
	if err := r.db.SelectContext(ctx, &contracts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM contracts" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
	}
	return contracts, total, nil
}

package models

import "time"

// ContractType classifies an educational contract by course category.
type ContractType string

const (
	ContractSegundaGraduacao ContractType = "SEGUNDA_GRADUACAO"
	ContractPosGraduacao     ContractType = "POS_GRADUACAO"
	ContractMBA              ContractType = "MBA"
	ContractTecnico          ContractType = "TECNICO"
	ContractCursoLivre       ContractType = "CURSO_LIVRE"
	ContractGraduacao        ContractType = "GRADUACAO"
)

// ContractStatus tracks the signature lifecycle of a contract.
type ContractStatus string

const (
	ContractStatusPending   ContractStatus = "pending"
	ContractStatusSigned    ContractStatus = "signed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// Contract is the persisted educational agreement describing financial
// terms and validity period of a student's enrollment in a course. Exactly
// one contract is created per successful conversion.
type Contract struct {
	ID               int64          `db:"id" json:"id"`
	EnrollmentID     int64          `db:"enrollment_id" json:"enrollment_id"`
	StudentID        int64          `db:"student_id" json:"student_id"`
	CourseID         int64          `db:"course_id" json:"course_id"`
	Number           string         `db:"number" json:"number"`
	Type             ContractType   `db:"type" json:"type"`
	Status           ContractStatus `db:"status" json:"status"`
	TotalValue       float64        `db:"total_value" json:"total_value"`
	Installments     int            `db:"installments" json:"installments"`
	InstallmentValue float64        `db:"installment_value" json:"installment_value"`
	DiscountPercent  float64        `db:"discount_percent" json:"discount_percent"`
	PaymentMethod    string         `db:"payment_method" json:"payment_method"`
	StartDate        time.Time      `db:"start_date" json:"start_date"`
	EndDate          time.Time      `db:"end_date" json:"end_date"`
	Campus           string         `db:"campus" json:"campus"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// ContractDetail contains a contract with student and course context.
type ContractDetail struct {
	Contract
	StudentName string `db:"student_name" json:"student_name"`
	CourseName  string `db:"course_name" json:"course_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
}

// ContractFilter captures filtering criteria for listing contracts.
type ContractFilter struct {
	StudentID int64
	CourseID  int64
	Status    ContractStatus
	Type      ContractType
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

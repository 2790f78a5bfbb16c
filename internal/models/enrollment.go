package models

import "time"

// EnrollmentStatus represents lifecycle states of a formal enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusSuspended EnrollmentStatus = "SUSPENDED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
)

// Enrollment is the authoritative enrollment record created once a
// simplified enrollment converts. simplified_enrollment_id carries a unique
// constraint so a retried conversion can never attach a second formal
// enrollment to the same lead.
type Enrollment struct {
	ID                     int64            `db:"id" json:"id"`
	StudentID              int64            `db:"student_id" json:"student_id"`
	CourseID               int64            `db:"course_id" json:"course_id"`
	SimplifiedEnrollmentID *int64           `db:"simplified_enrollment_id" json:"simplified_enrollment_id,omitempty"`
	Status                 EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt             time.Time        `db:"enrolled_at" json:"enrolled_at"`
	CreatedAt              time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail contains an enrollment with student and course context.
type EnrollmentDetail struct {
	Enrollment
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	CourseName   string `db:"course_name" json:"course_name"`
	CourseCode   string `db:"course_code" json:"course_code"`
}

// EnrollmentFilter captures filtering criteria for listing enrollments.
type EnrollmentFilter struct {
	StudentID int64
	CourseID  int64
	Status    EnrollmentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

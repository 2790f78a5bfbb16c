package models

import "time"

// SimplifiedEnrollmentStatus tracks the checkout lifecycle of a lead record.
type SimplifiedEnrollmentStatus string

const (
	SimplifiedStatusPending          SimplifiedEnrollmentStatus = "pending"
	SimplifiedStatusPaymentPending   SimplifiedEnrollmentStatus = "payment_pending"
	SimplifiedStatusPaymentConfirmed SimplifiedEnrollmentStatus = "payment_confirmed"
	SimplifiedStatusConverted        SimplifiedEnrollmentStatus = "converted"
	SimplifiedStatusCancelled        SimplifiedEnrollmentStatus = "cancelled"
	SimplifiedStatusFailed           SimplifiedEnrollmentStatus = "failed"
)

// SimplifiedEnrollment is the lightweight pre-payment record created at
// checkout. Once payment is confirmed it is converted into a formal
// enrollment, a student account and an educational contract. Converted
// records are terminal and never deleted.
type SimplifiedEnrollment struct {
	ID              int64                      `db:"id" json:"id"`
	ExternalID      string                     `db:"external_id" json:"external_id"`
	StudentName     string                     `db:"student_name" json:"student_name"`
	StudentEmail    string                     `db:"student_email" json:"student_email"`
	StudentPhone    string                     `db:"student_phone" json:"student_phone,omitempty"`
	StudentDocument string                     `db:"student_document" json:"student_document,omitempty"`
	CourseID        int64                      `db:"course_id" json:"course_id"`
	FullPrice       *float64                   `db:"full_price" json:"full_price,omitempty"`
	DiscountedPrice *float64                   `db:"discounted_price" json:"discounted_price,omitempty"`
	Status          SimplifiedEnrollmentStatus `db:"status" json:"status"`
	UserID          *int64                     `db:"user_id" json:"user_id,omitempty"`
	EnrollmentID    *int64                     `db:"enrollment_id" json:"enrollment_id,omitempty"`
	CreatedBy       *int64                     `db:"created_by" json:"created_by,omitempty"`
	CreatedAt       time.Time                  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time                  `db:"updated_at" json:"updated_at"`
}

// Converted reports whether the record already reached its terminal state.
// A linked formal enrollment counts even if the status flip was lost.
func (se *SimplifiedEnrollment) Converted() bool {
	return se.Status == SimplifiedStatusConverted || se.EnrollmentID != nil
}

// SimplifiedEnrollmentFilter captures list criteria for the admin surface.
type SimplifiedEnrollmentFilter struct {
	Status    SimplifiedEnrollmentStatus
	CourseID  int64
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

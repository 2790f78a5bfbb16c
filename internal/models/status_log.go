package models

import "time"

// StatusLog is an append-only audit entry recording a simplified-enrollment
// status transition. Written by the conversion pipeline and the payment
// webhook, read by the admin timeline view.
type StatusLog struct {
	ID                     int64                      `db:"id" json:"id"`
	SimplifiedEnrollmentID int64                      `db:"simplified_enrollment_id" json:"simplified_enrollment_id"`
	FromStatus             SimplifiedEnrollmentStatus `db:"from_status" json:"from_status"`
	ToStatus               SimplifiedEnrollmentStatus `db:"to_status" json:"to_status"`
	Reason                 string                     `db:"reason" json:"reason"`
	ChangedBy              *int64                     `db:"changed_by" json:"changed_by,omitempty"`
	CreatedAt              time.Time                  `db:"created_at" json:"created_at"`
}

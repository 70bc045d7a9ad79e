package view

import "github.com/prashanttechie/portfolio-project/internal/modules/enrollments"

// EnrollmentStatus is what the checkout page polls while the webhook settles.
type EnrollmentStatus struct {
	EnrollmentID  uint   `json:"enrollmentId"`
	CourseID      uint   `json:"courseId"`
	PaymentStatus string `json:"paymentStatus"`
	State         string `json:"state"` // processing|confirmed|failed|refunded
	Source        string `json:"source,omitempty"`
}

func EnrollmentStatusFrom(e enrollments.Enrollment) EnrollmentStatus {
	return EnrollmentStatus{
		EnrollmentID:  e.ID,
		CourseID:      e.CourseID,
		PaymentStatus: string(e.PaymentStatus),
		State:         e.PaymentStatus.State(),
		Source:        string(e.StatusSource),
	}
}

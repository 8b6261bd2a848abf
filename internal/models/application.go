package models

import "time"

type ApplicationStatus string

const (
	ApplicationStatusInReview         ApplicationStatus = "in_review"
	ApplicationStatusPendingPayment   ApplicationStatus = "pending_payment"
	ApplicationStatusPaymentCompleted ApplicationStatus = "payment_completed"
	ApplicationStatusApproved         ApplicationStatus = "approved"
	ApplicationStatusRejected         ApplicationStatus = "rejected"
	ApplicationStatusWaitlisted       ApplicationStatus = "waitlisted"
)

// Terminal reports whether no further transition is allowed out of the status.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationStatusApproved || s == ApplicationStatusRejected
}

// NextStepHint is the learner-facing one-liner shown next to the status badge.
func (s ApplicationStatus) NextStepHint() string {
	switch s {
	case ApplicationStatusInReview:
		return "Your application is being reviewed."
	case ApplicationStatusPendingPayment:
		return "Payment is required to continue."
	case ApplicationStatusPaymentCompleted:
		return "Payment received; awaiting final approval."
	case ApplicationStatusApproved:
		return "You are enrolled."
	case ApplicationStatusRejected:
		return "Your application was not accepted."
	case ApplicationStatusWaitlisted:
		return "You are on the waitlist."
	default:
		return "-"
	}
}

// LearnerApplication links a learner to a course and carries the lifecycle
// status driven by the approval pipeline.
type LearnerApplication struct {
	ID                string
	LearnerID         string
	CourseID          string
	Status            ApplicationStatus
	DecisionReason    string
	PaymentReference  string
	PaymentRemindedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ApplicationView is the learner-dashboard projection. CourseTitle degrades to
// "-" when the course row cannot be resolved.
type ApplicationView struct {
	ID          string
	CourseID    string
	CourseTitle string
	Status      ApplicationStatus
	NextStep    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplicationDocument is a compliance document attached to an application,
// stored in the object store under ObjectKey.
type ApplicationDocument struct {
	ID            string
	ApplicationID string
	ObjectKey     string
	Filename      string
	ContentType   string
	SizeBytes     int64
	UploadedAt    time.Time
}

// PaymentReminderTarget is an application stuck in pending_payment together
// with the contact details needed to nudge the learner.
type PaymentReminderTarget struct {
	ApplicationID string
	CourseTitle   string
	LearnerEmail  string
	LearnerName   string
}

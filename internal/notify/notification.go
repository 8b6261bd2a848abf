package notify

// Kind names a notification template. Kinds are keyed by entity and target
// status so the worker can resolve subject and body without further lookups.
type Kind string

const (
	KindLearnerApplicationReceived Kind = "learner.application.received"
	KindLearnerPaymentRequired     Kind = "learner.payment.required"
	KindLearnerPaymentReminder     Kind = "learner.payment.reminder"
	KindLearnerWaitlisted          Kind = "learner.application.waitlisted"
	KindLearnerApproved            Kind = "learner.application.approved"
	KindLearnerRejected            Kind = "learner.application.rejected"

	KindInstructorReceived  Kind = "instructor.profile.received"
	KindInstructorApproved  Kind = "instructor.profile.approved"
	KindInstructorSuspended Kind = "instructor.profile.suspended"

	KindCourseApproved  Kind = "course.approved"
	KindCourseSuspended Kind = "course.suspended"
)

// Notification is a single email to be delivered at least once. Duplicate
// delivery on retry is acceptable; a silently dropped notification is not.
type Notification struct {
	Kind           Kind
	RecipientEmail string
	RecipientName  string
	Data           map[string]string
}

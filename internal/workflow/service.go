package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"coursehub/internal/ids"
	"coursehub/internal/models"
	"coursehub/internal/notify"
)

// ErrDuplicateApplication is returned by ApplicationStore.Create when the
// learner already has a live application or enrollment for the course.
var ErrDuplicateApplication = errors.New("duplicate application")

// AccountStore persists user accounts. SetProfileStatusIf performs a
// conditional update and reports false when the current status no longer
// matches from, so exactly one of two racing callers wins.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (models.User, error)
	SetProfileStatusIf(ctx context.Context, id string, from, to models.AccountStatus) (bool, error)
}

type CourseStore interface {
	GetByID(ctx context.Context, id string) (models.Course, error)
	SetStatusIf(ctx context.Context, id string, from, to models.CourseStatus) (bool, error)
}

// ApplicationStore persists learner applications. ApproveAndEnroll moves the
// application to approved and inserts the enrollment in a single transaction;
// it reports false when the conditional update misses or the enrollment
// already exists, leaving no partial state either way.
type ApplicationStore interface {
	GetByID(ctx context.Context, id string) (models.LearnerApplication, error)
	Create(ctx context.Context, app models.LearnerApplication) error
	SetStatusIf(ctx context.Context, id string, from, to models.ApplicationStatus, reason string) (bool, error)
	MarkPaymentCompleted(ctx context.Context, id string, from models.ApplicationStatus, reference string) (bool, error)
	ApproveAndEnroll(ctx context.Context, id string, from models.ApplicationStatus, enr models.Enrollment) (bool, error)
}

// Dispatcher enqueues a notification for asynchronous delivery.
type Dispatcher interface {
	Enqueue(ctx context.Context, n notify.Notification) error
}

// Outcome reports a committed status change. NotifyErr carries a
// *NotificationError when the follow-up email could not be enqueued; the
// status change stands regardless.
type Outcome struct {
	Status    string
	NotifyErr error
}

// Service implements the lifecycle workflow operations. Every status write
// goes through the transition table first and through a conditional update
// second, so an illegal or stale transition never reaches the datastore.
type Service struct {
	accounts   AccountStore
	courses    CourseStore
	apps       ApplicationStore
	dispatcher Dispatcher
	log        zerolog.Logger
}

func NewService(accounts AccountStore, courses CourseStore, apps ApplicationStore, dispatcher Dispatcher, log zerolog.Logger) *Service {
	return &Service{
		accounts:   accounts,
		courses:    courses,
		apps:       apps,
		dispatcher: dispatcher,
		log:        log,
	}
}

func (s *Service) enqueue(ctx context.Context, n notify.Notification) error {
	if err := s.dispatcher.Enqueue(ctx, n); err != nil {
		s.log.Error().Err(err).Str("kind", string(n.Kind)).Str("recipient", n.RecipientEmail).
			Msg("notification enqueue failed")
		return &NotificationError{Err: err}
	}
	return nil
}

// --- instructor profile operations ---

func (s *Service) ApproveInstructor(ctx context.Context, id string) (Outcome, error) {
	return s.setInstructorStatus(ctx, id, models.AccountStatusApproved, notify.KindInstructorApproved, "")
}

func (s *Service) SuspendInstructor(ctx context.Context, id, reason string) (Outcome, error) {
	return s.setInstructorStatus(ctx, id, models.AccountStatusSuspended, notify.KindInstructorSuspended, reason)
}

func (s *Service) ReinstateInstructor(ctx context.Context, id string) (Outcome, error) {
	return s.setInstructorStatus(ctx, id, models.AccountStatusApproved, notify.KindInstructorApproved, "")
}

// BanInstructor is terminal. The suspension template doubles as the ban
// notice; the reason carries the distinction.
func (s *Service) BanInstructor(ctx context.Context, id, reason string) (Outcome, error) {
	return s.setInstructorStatus(ctx, id, models.AccountStatusBanned, notify.KindInstructorSuspended, reason)
}

func (s *Service) setInstructorStatus(ctx context.Context, id string, to models.AccountStatus, kind notify.Kind, reason string) (Outcome, error) {
	acct, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if acct.Role != models.UserRoleInstructor {
		return Outcome{}, NewValidationError("id", "account is not an instructor")
	}
	if !CanTransition(EntityAccount, string(acct.ProfileStatus), string(to), ActorSuperAdmin) {
		return Outcome{}, &InvalidTransitionError{Entity: EntityAccount, ID: id, From: string(acct.ProfileStatus), To: string(to)}
	}

	ok, err := s.accounts.SetProfileStatusIf(ctx, id, acct.ProfileStatus, to)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, s.staleAccount(ctx, id, string(to))
	}

	notifyErr := s.enqueue(ctx, notify.Notification{
		Kind:           kind,
		RecipientEmail: acct.Email,
		RecipientName:  acct.DisplayName,
		Data:           map[string]string{"reason": reason},
	})
	return Outcome{Status: string(to), NotifyErr: notifyErr}, nil
}

func (s *Service) staleAccount(ctx context.Context, id, to string) error {
	current, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return &InvalidTransitionError{Entity: EntityAccount, ID: id, From: string(current.ProfileStatus), To: to}
}

// --- course operations ---

func (s *Service) ApproveCourse(ctx context.Context, id string) (Outcome, error) {
	return s.setCourseStatus(ctx, id, models.CourseStatusApproved, notify.KindCourseApproved, "")
}

func (s *Service) SuspendCourse(ctx context.Context, id, reason string) (Outcome, error) {
	return s.setCourseStatus(ctx, id, models.CourseStatusSuspended, notify.KindCourseSuspended, reason)
}

func (s *Service) ReinstateCourse(ctx context.Context, id string) (Outcome, error) {
	return s.setCourseStatus(ctx, id, models.CourseStatusApproved, notify.KindCourseApproved, "")
}

func (s *Service) BanCourse(ctx context.Context, id, reason string) (Outcome, error) {
	return s.setCourseStatus(ctx, id, models.CourseStatusBanned, notify.KindCourseSuspended, reason)
}

func (s *Service) setCourseStatus(ctx context.Context, id string, to models.CourseStatus, kind notify.Kind, reason string) (Outcome, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if !CanTransition(EntityCourse, string(course.Status), string(to), ActorSuperAdmin) {
		return Outcome{}, &InvalidTransitionError{Entity: EntityCourse, ID: id, From: string(course.Status), To: string(to)}
	}

	ok, err := s.courses.SetStatusIf(ctx, id, course.Status, to)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		current, err := s.courses.GetByID(ctx, id)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{}, &InvalidTransitionError{Entity: EntityCourse, ID: id, From: string(current.Status), To: string(to)}
	}

	// The owning instructor personalizes the notification; a missing row
	// degrades the email, not the committed transition.
	var notifyErr error
	if instructor, err := s.accounts.GetByID(ctx, course.InstructorID); err != nil {
		notifyErr = &NotificationError{Err: err}
		s.log.Error().Err(err).Str("course_id", id).Msg("instructor lookup for notification failed")
	} else {
		notifyErr = s.enqueue(ctx, notify.Notification{
			Kind:           kind,
			RecipientEmail: instructor.Email,
			RecipientName:  instructor.DisplayName,
			Data:           map[string]string{"course_title": course.Title, "reason": reason},
		})
	}
	return Outcome{Status: string(to), NotifyErr: notifyErr}, nil
}

// --- learner application operations ---

// SubmitApplication creates a new application in in_review and sends the
// registration notification. It refuses courses that are not approved and
// instructors whose profile status supersedes the course status.
func (s *Service) SubmitApplication(ctx context.Context, learner models.User, courseID string) (models.LearnerApplication, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return models.LearnerApplication{}, err
	}
	if course.Status != models.CourseStatusApproved {
		return models.LearnerApplication{}, NewValidationError("course_id", "course is not open for registration")
	}
	instructor, err := s.accounts.GetByID(ctx, course.InstructorID)
	if err != nil {
		return models.LearnerApplication{}, err
	}
	if !instructor.Active() {
		return models.LearnerApplication{}, NewValidationError("course_id", "course instructor is not active")
	}

	app := models.LearnerApplication{
		ID:        ids.New(),
		LearnerID: learner.ID,
		CourseID:  courseID,
		Status:    models.ApplicationStatusInReview,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, ErrDuplicateApplication) {
			return models.LearnerApplication{}, NewValidationError("course_id", "an application or enrollment for this course already exists")
		}
		return models.LearnerApplication{}, err
	}

	if err := s.enqueue(ctx, notify.Notification{
		Kind:           notify.KindLearnerApplicationReceived,
		RecipientEmail: learner.Email,
		RecipientName:  learner.DisplayName,
		Data:           map[string]string{"course_title": course.Title},
	}); err != nil {
		s.log.Warn().Str("application_id", app.ID).Msg("registration notification not enqueued")
	}
	return app, nil
}

// RequestPayment moves an application to pending_payment and notifies the
// learner that payment is due.
func (s *Service) RequestPayment(ctx context.Context, id string) (Outcome, error) {
	return s.setApplicationStatus(ctx, id, models.ApplicationStatusPendingPayment, ActorSuperAdmin, notify.KindLearnerPaymentRequired, "")
}

// ConfirmPayment records a payment confirmation from the payment flow. This is
// the only system-actor transition.
func (s *Service) ConfirmPayment(ctx context.Context, id, reference string) (Outcome, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	to := models.ApplicationStatusPaymentCompleted
	if !CanTransition(EntityApplication, string(app.Status), string(to), ActorSystem) {
		return Outcome{}, &InvalidTransitionError{Entity: EntityApplication, ID: id, From: string(app.Status), To: string(to)}
	}

	ok, err := s.apps.MarkPaymentCompleted(ctx, id, app.Status, reference)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, s.staleApplication(ctx, id, string(to))
	}
	return Outcome{Status: string(to)}, nil
}

// ApproveLearnerApplication is the composite operation: one transaction moves
// the application to approved and inserts the enrollment, then the learner
// final-approval notification is enqueued. Exactly one of two racing approvals
// can win the conditional update; the loser reports InvalidTransitionError and
// no second enrollment is ever created.
func (s *Service) ApproveLearnerApplication(ctx context.Context, id string) (Outcome, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	to := models.ApplicationStatusApproved
	if !CanTransition(EntityApplication, string(app.Status), string(to), ActorSuperAdmin) {
		return Outcome{}, &InvalidTransitionError{Entity: EntityApplication, ID: id, From: string(app.Status), To: string(to)}
	}

	course, err := s.courses.GetByID(ctx, app.CourseID)
	if err != nil {
		return Outcome{}, err
	}
	instructor, err := s.accounts.GetByID(ctx, course.InstructorID)
	if err != nil {
		return Outcome{}, err
	}
	if !instructor.Active() {
		return Outcome{}, NewValidationError("application_id", "course instructor is not active")
	}
	if course.Status != models.CourseStatusApproved {
		return Outcome{}, NewValidationError("application_id", "course is not approved")
	}

	enr := models.Enrollment{
		ID:             ids.New(),
		LearnerID:      app.LearnerID,
		CourseID:       app.CourseID,
		InstructorID:   course.InstructorID,
		ApplicationID:  app.ID,
		EnrollmentDate: time.Now().UTC(),
	}
	ok, err := s.apps.ApproveAndEnroll(ctx, id, app.Status, enr)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, s.staleApplication(ctx, id, string(to))
	}

	var notifyErr error
	if learner, err := s.accounts.GetByID(ctx, app.LearnerID); err != nil {
		notifyErr = &NotificationError{Err: err}
		s.log.Error().Err(err).Str("application_id", id).Msg("learner lookup for notification failed")
	} else {
		notifyErr = s.enqueue(ctx, notify.Notification{
			Kind:           notify.KindLearnerApproved,
			RecipientEmail: learner.Email,
			RecipientName:  learner.DisplayName,
			Data:           map[string]string{"course_title": course.Title},
		})
	}
	return Outcome{Status: string(to), NotifyErr: notifyErr}, nil
}

func (s *Service) RejectLearnerApplication(ctx context.Context, id, reason string) (Outcome, error) {
	return s.setApplicationStatus(ctx, id, models.ApplicationStatusRejected, ActorSuperAdmin, notify.KindLearnerRejected, reason)
}

func (s *Service) WaitlistApplication(ctx context.Context, id string) (Outcome, error) {
	return s.setApplicationStatus(ctx, id, models.ApplicationStatusWaitlisted, ActorSuperAdmin, notify.KindLearnerWaitlisted, "")
}

// ResumeApplication pulls a waitlisted application back into review. No
// notification; the learner hears about the next decision instead.
func (s *Service) ResumeApplication(ctx context.Context, id string) (Outcome, error) {
	return s.setApplicationStatus(ctx, id, models.ApplicationStatusInReview, ActorSuperAdmin, "", "")
}

func (s *Service) setApplicationStatus(ctx context.Context, id string, to models.ApplicationStatus, actor Actor, kind notify.Kind, reason string) (Outcome, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if !CanTransition(EntityApplication, string(app.Status), string(to), actor) {
		return Outcome{}, &InvalidTransitionError{Entity: EntityApplication, ID: id, From: string(app.Status), To: string(to)}
	}

	ok, err := s.apps.SetStatusIf(ctx, id, app.Status, to, reason)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, s.staleApplication(ctx, id, string(to))
	}

	var notifyErr error
	if kind != "" {
		notifyErr = s.notifyLearner(ctx, app, kind, reason)
	}
	return Outcome{Status: string(to), NotifyErr: notifyErr}, nil
}

func (s *Service) notifyLearner(ctx context.Context, app models.LearnerApplication, kind notify.Kind, reason string) error {
	learner, err := s.accounts.GetByID(ctx, app.LearnerID)
	if err != nil {
		s.log.Error().Err(err).Str("application_id", app.ID).Msg("learner lookup for notification failed")
		return &NotificationError{Err: err}
	}
	data := map[string]string{"reason": reason}
	if course, err := s.courses.GetByID(ctx, app.CourseID); err == nil {
		data["course_title"] = course.Title
	} else {
		data["course_title"] = "-"
	}
	return s.enqueue(ctx, notify.Notification{
		Kind:           kind,
		RecipientEmail: learner.Email,
		RecipientName:  learner.DisplayName,
		Data:           data,
	})
}

func (s *Service) staleApplication(ctx context.Context, id, to string) error {
	current, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return &InvalidTransitionError{Entity: EntityApplication, ID: id, From: string(current.Status), To: to}
}

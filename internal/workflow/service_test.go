package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/internal/models"
	"coursehub/internal/notify"
)

type fakeAccounts struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, &NotFoundError{Entity: EntityAccount, ID: id}
	}
	return u, nil
}

func (f *fakeAccounts) SetProfileStatusIf(_ context.Context, id string, from, to models.AccountStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.ProfileStatus != from {
		return false, nil
	}
	u.ProfileStatus = to
	f.users[id] = u
	return true, nil
}

type fakeCourses struct {
	mu      sync.Mutex
	courses map[string]models.Course
}

func (f *fakeCourses) GetByID(_ context.Context, id string) (models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return models.Course{}, &NotFoundError{Entity: EntityCourse, ID: id}
	}
	return c, nil
}

func (f *fakeCourses) SetStatusIf(_ context.Context, id string, from, to models.CourseStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	f.courses[id] = c
	return true, nil
}

// fakeApps mirrors the datastore guarantees the service relies on: conditional
// status updates and an enrollment insert that is atomic with the approval.
type fakeApps struct {
	mu          sync.Mutex
	apps        map[string]models.LearnerApplication
	enrollments []models.Enrollment
}

func (f *fakeApps) GetByID(_ context.Context, id string) (models.LearnerApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return models.LearnerApplication{}, &NotFoundError{Entity: EntityApplication, ID: id}
	}
	return a, nil
}

func (f *fakeApps) Create(_ context.Context, app models.LearnerApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.apps {
		if existing.LearnerID == app.LearnerID && existing.CourseID == app.CourseID &&
			existing.Status != models.ApplicationStatusRejected {
			return ErrDuplicateApplication
		}
	}
	for _, e := range f.enrollments {
		if e.LearnerID == app.LearnerID && e.CourseID == app.CourseID {
			return ErrDuplicateApplication
		}
	}
	f.apps[app.ID] = app
	return nil
}

func (f *fakeApps) SetStatusIf(_ context.Context, id string, from, to models.ApplicationStatus, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	a.DecisionReason = reason
	f.apps[id] = a
	return true, nil
}

func (f *fakeApps) MarkPaymentCompleted(_ context.Context, id string, from models.ApplicationStatus, reference string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = models.ApplicationStatusPaymentCompleted
	a.PaymentReference = reference
	f.apps[id] = a
	return true, nil
}

func (f *fakeApps) ApproveAndEnroll(_ context.Context, id string, from models.ApplicationStatus, enr models.Enrollment) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok || a.Status != from {
		return false, nil
	}
	for _, e := range f.enrollments {
		if e.LearnerID == enr.LearnerID && e.CourseID == enr.CourseID {
			return false, nil
		}
	}
	a.Status = models.ApplicationStatusApproved
	f.apps[id] = a
	f.enrollments = append(f.enrollments, enr)
	return true, nil
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []notify.Notification
	fail error
}

func (f *fakeDispatcher) Enqueue(_ context.Context, n notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeDispatcher) byKind(kind notify.Kind) []notify.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notify.Notification
	for _, n := range f.sent {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	accounts   *fakeAccounts
	courses    *fakeCourses
	apps       *fakeApps
	dispatcher *fakeDispatcher
	svc        *Service
}

// newFixture seeds an approved instructor, an approved course, a learner and
// one application in the given status.
func newFixture(appStatus models.ApplicationStatus) *fixture {
	f := &fixture{
		accounts: &fakeAccounts{users: map[string]models.User{
			"instr-1":   {ID: "instr-1", Email: "ines@example.com", DisplayName: "Ines", Role: models.UserRoleInstructor, ProfileStatus: models.AccountStatusApproved},
			"learner-1": {ID: "learner-1", Email: "lena@example.com", DisplayName: "Lena", Role: models.UserRoleLearner, ProfileStatus: models.AccountStatusApproved},
		}},
		courses: &fakeCourses{courses: map[string]models.Course{
			"course-1": {ID: "course-1", InstructorID: "instr-1", Title: "Intro to Gardening", Status: models.CourseStatusApproved},
		}},
		apps: &fakeApps{apps: map[string]models.LearnerApplication{
			"app-1": {ID: "app-1", LearnerID: "learner-1", CourseID: "course-1", Status: appStatus},
		}},
		dispatcher: &fakeDispatcher{},
	}
	f.svc = NewService(f.accounts, f.courses, f.apps, f.dispatcher, zerolog.Nop())
	return f
}

func TestApproveApplicationCreatesEnrollment(t *testing.T) {
	f := newFixture(models.ApplicationStatusInReview)

	out, err := f.svc.ApproveLearnerApplication(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "approved", out.Status)
	assert.NoError(t, out.NotifyErr)

	require.Len(t, f.apps.enrollments, 1)
	enr := f.apps.enrollments[0]
	assert.Equal(t, "learner-1", enr.LearnerID)
	assert.Equal(t, "course-1", enr.CourseID)
	assert.Equal(t, "instr-1", enr.InstructorID)
	assert.Equal(t, "app-1", enr.ApplicationID)
	assert.NotEmpty(t, enr.ID)
	assert.False(t, enr.EnrollmentDate.IsZero())

	got := f.dispatcher.byKind(notify.KindLearnerApproved)
	require.Len(t, got, 1)
	assert.Equal(t, "lena@example.com", got[0].RecipientEmail)
	assert.Equal(t, "Intro to Gardening", got[0].Data["course_title"])
}

func TestConcurrentApprovalsEnrollOnce(t *testing.T) {
	f := newFixture(models.ApplicationStatusInReview)

	const callers = 2
	errs := make([]error, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.ApproveLearnerApplication(context.Background(), "app-1")
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		var ite *InvalidTransitionError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &ite):
			conflicted++
			assert.Equal(t, "approved", ite.From)
			assert.Equal(t, "approved", ite.To)
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	assert.Len(t, f.apps.enrollments, 1)
	assert.Len(t, f.dispatcher.byKind(notify.KindLearnerApproved), 1)
}

func TestRejectCreatesNoEnrollment(t *testing.T) {
	f := newFixture(models.ApplicationStatusInReview)

	out, err := f.svc.RejectLearnerApplication(context.Background(), "app-1", "incomplete paperwork")
	require.NoError(t, err)
	assert.Equal(t, "rejected", out.Status)
	assert.Empty(t, f.apps.enrollments)
	assert.Equal(t, "incomplete paperwork", f.apps.apps["app-1"].DecisionReason)

	got := f.dispatcher.byKind(notify.KindLearnerRejected)
	require.Len(t, got, 1)
	assert.Equal(t, "incomplete paperwork", got[0].Data["reason"])

	// Terminal: nothing moves a rejected application.
	_, err = f.svc.ApproveLearnerApplication(context.Background(), "app-1")
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Empty(t, f.apps.enrollments)
}

func TestNotificationFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(models.ApplicationStatusInReview)
	f.dispatcher.fail = errors.New("stream unavailable")

	out, err := f.svc.ApproveLearnerApplication(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "approved", out.Status)

	var ne *NotificationError
	require.ErrorAs(t, out.NotifyErr, &ne)

	assert.Equal(t, models.ApplicationStatusApproved, f.apps.apps["app-1"].Status)
	assert.Len(t, f.apps.enrollments, 1)
}

func TestApproveWithInactiveInstructorRefused(t *testing.T) {
	f := newFixture(models.ApplicationStatusInReview)
	u := f.accounts.users["instr-1"]
	u.ProfileStatus = models.AccountStatusSuspended
	f.accounts.users["instr-1"] = u

	_, err := f.svc.ApproveLearnerApplication(context.Background(), "app-1")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, f.apps.enrollments)
	assert.Equal(t, models.ApplicationStatusInReview, f.apps.apps["app-1"].Status)
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture(models.ApplicationStatusPendingPayment)

	out, err := f.svc.ConfirmPayment(context.Background(), "app-1", "txn-4711")
	require.NoError(t, err)
	assert.Equal(t, "payment_completed", out.Status)
	assert.Equal(t, "txn-4711", f.apps.apps["app-1"].PaymentReference)

	// A second confirmation is stale.
	_, err = f.svc.ConfirmPayment(context.Background(), "app-1", "txn-4712")
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "txn-4711", f.apps.apps["app-1"].PaymentReference)
}

func TestConfirmPaymentRequiresPendingPayment(t *testing.T) {
	f := newFixture(models.ApplicationStatusInReview)

	_, err := f.svc.ConfirmPayment(context.Background(), "app-1", "txn-1")
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "in_review", ite.From)
}

func TestSuspendPendingCourseRefused(t *testing.T) {
	f := newFixture(models.ApplicationStatusInReview)
	c := f.courses.courses["course-1"]
	c.Status = models.CourseStatusPending
	f.courses.courses["course-1"] = c

	_, err := f.svc.SuspendCourse(context.Background(), "course-1", "spam")
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "pending", ite.From)
	assert.Equal(t, models.CourseStatusPending, f.courses.courses["course-1"].Status)
	assert.Empty(t, f.dispatcher.sent)
}

func TestSuspendInstructorNotifiesWithReason(t *testing.T) {
	f := newFixture(models.ApplicationStatusInReview)

	out, err := f.svc.SuspendInstructor(context.Background(), "instr-1", "policy violation")
	require.NoError(t, err)
	assert.Equal(t, "suspended", out.Status)
	assert.Equal(t, models.AccountStatusSuspended, f.accounts.users["instr-1"].ProfileStatus)

	got := f.dispatcher.byKind(notify.KindInstructorSuspended)
	require.Len(t, got, 1)
	assert.Equal(t, "ines@example.com", got[0].RecipientEmail)
	assert.Equal(t, "policy violation", got[0].Data["reason"])
}

func TestInstructorStatusRejectsNonInstructors(t *testing.T) {
	f := newFixture(models.ApplicationStatusInReview)

	_, err := f.svc.SuspendInstructor(context.Background(), "learner-1", "nope")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestUnknownApplicationNotFound(t *testing.T) {
	f := newFixture(models.ApplicationStatusInReview)

	_, err := f.svc.ApproveLearnerApplication(context.Background(), "missing")
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, EntityApplication, nfe.Entity)
}

func TestSubmitApplication(t *testing.T) {
	f := newFixture(models.ApplicationStatusRejected)
	learner := f.accounts.users["learner-1"]

	app, err := f.svc.SubmitApplication(context.Background(), learner, "course-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusInReview, app.Status)
	assert.NotEmpty(t, app.ID)

	got := f.dispatcher.byKind(notify.KindLearnerApplicationReceived)
	require.Len(t, got, 1)
	assert.Equal(t, "Intro to Gardening", got[0].Data["course_title"])

	// A live application blocks a second one for the same course.
	_, err = f.svc.SubmitApplication(context.Background(), learner, "course-1")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestSubmitApplicationRefusesUnapprovedCourse(t *testing.T) {
	f := newFixture(models.ApplicationStatusRejected)
	c := f.courses.courses["course-1"]
	c.Status = models.CourseStatusSuspended
	f.courses.courses["course-1"] = c

	_, err := f.svc.SubmitApplication(context.Background(), f.accounts.users["learner-1"], "course-1")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestResumeWaitlistedSendsNoNotification(t *testing.T) {
	f := newFixture(models.ApplicationStatusWaitlisted)

	out, err := f.svc.ResumeApplication(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "in_review", out.Status)
	assert.NoError(t, out.NotifyErr)
	assert.Empty(t, f.dispatcher.sent)
}

func TestWaitlistThenApprove(t *testing.T) {
	f := newFixture(models.ApplicationStatusInReview)

	_, err := f.svc.WaitlistApplication(context.Background(), "app-1")
	require.NoError(t, err)

	// Approval straight off the waitlist is not allowed; the application has
	// to come back into review first.
	_, err = f.svc.ApproveLearnerApplication(context.Background(), "app-1")
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)

	_, err = f.svc.ResumeApplication(context.Background(), "app-1")
	require.NoError(t, err)

	out, err := f.svc.ApproveLearnerApplication(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "approved", out.Status)
	assert.Len(t, f.apps.enrollments, 1)
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatusTerminal(t *testing.T) {
	assert.True(t, ApplicationStatusApproved.Terminal())
	assert.True(t, ApplicationStatusRejected.Terminal())

	for _, s := range []ApplicationStatus{
		ApplicationStatusInReview,
		ApplicationStatusPendingPayment,
		ApplicationStatusPaymentCompleted,
		ApplicationStatusWaitlisted,
	} {
		assert.False(t, s.Terminal(), "status %s", s)
	}
}

func TestNextStepHint(t *testing.T) {
	for _, s := range []ApplicationStatus{
		ApplicationStatusInReview,
		ApplicationStatusPendingPayment,
		ApplicationStatusPaymentCompleted,
		ApplicationStatusApproved,
		ApplicationStatusRejected,
		ApplicationStatusWaitlisted,
	} {
		assert.NotEqual(t, "-", s.NextStepHint(), "status %s", s)
	}
	assert.Equal(t, "-", ApplicationStatus("bogus").NextStepHint())
}

func TestUserActive(t *testing.T) {
	u := User{ProfileStatus: AccountStatusApproved}
	assert.True(t, u.Active())

	for _, s := range []AccountStatus{AccountStatusPending, AccountStatusSuspended, AccountStatusBanned} {
		u.ProfileStatus = s
		assert.False(t, u.Active(), "status %s", s)
	}
}

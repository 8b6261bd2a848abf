package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKinds = []Kind{
	KindLearnerApplicationReceived,
	KindLearnerPaymentRequired,
	KindLearnerPaymentReminder,
	KindLearnerWaitlisted,
	KindLearnerApproved,
	KindLearnerRejected,
	KindInstructorReceived,
	KindInstructorApproved,
	KindInstructorSuspended,
	KindCourseApproved,
	KindCourseSuspended,
}

// Every kind must have a subject and a body template that executes cleanly,
// even with an empty data map.
func TestRenderAllKinds(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(string(kind), func(t *testing.T) {
			subject, body, err := Render(Notification{
				Kind:           kind,
				RecipientEmail: "lena@example.com",
				RecipientName:  "Lena",
				Data: map[string]string{
					"course_title": "Intro to Gardening",
					"reason":       "capacity reached",
				},
			})
			require.NoError(t, err)
			assert.NotEmpty(t, subject)
			assert.Contains(t, body, "Lena")
		})
	}
}

func TestRenderEmptyData(t *testing.T) {
	for _, kind := range allKinds {
		_, _, err := Render(Notification{
			Kind:           kind,
			RecipientEmail: "lena@example.com",
			RecipientName:  "Lena",
		})
		require.NoError(t, err, "kind %s", kind)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	_, _, err := Render(Notification{Kind: "learner.application.teleported", RecipientEmail: "x@example.com"})
	assert.Error(t, err)
}

func TestRenderBlankRecipientName(t *testing.T) {
	_, body, err := Render(Notification{
		Kind:           KindLearnerApproved,
		RecipientEmail: "lena@example.com",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "-")
}

func TestDecodeMessageRoundTrip(t *testing.T) {
	values := map[string]any{
		"kind":            string(KindLearnerApproved),
		"recipient_email": "lena@example.com",
		"recipient_name":  "Lena",
		"data":            `{"course_title":"Intro to Gardening"}`,
	}

	n, err := DecodeMessage(values)
	require.NoError(t, err)
	assert.Equal(t, KindLearnerApproved, n.Kind)
	assert.Equal(t, "lena@example.com", n.RecipientEmail)
	assert.Equal(t, "Intro to Gardening", n.Data["course_title"])
}

func TestDecodeMessageMissingRecipient(t *testing.T) {
	_, err := DecodeMessage(map[string]any{"kind": string(KindLearnerApproved)})
	assert.Error(t, err)
}

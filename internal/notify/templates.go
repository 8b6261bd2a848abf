package notify

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var subjects = map[Kind]string{
	KindLearnerApplicationReceived: "We received your course application",
	KindLearnerPaymentRequired:     "Payment required for your application",
	KindLearnerPaymentReminder:     "Reminder: payment pending for your application",
	KindLearnerWaitlisted:          "You are on the waitlist",
	KindLearnerApproved:            "You are enrolled!",
	KindLearnerRejected:            "Update on your course application",

	KindInstructorReceived:  "Your instructor profile is under review",
	KindInstructorApproved:  "Your instructor profile is approved",
	KindInstructorSuspended: "Your instructor profile has been suspended",

	KindCourseApproved:  "Your course is approved",
	KindCourseSuspended: "Your course has been suspended",
}

var bodies = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// templateContext is what each body template executes against.
type templateContext struct {
	RecipientName string
	Data          map[string]string
}

// Render resolves subject and body for a notification. Unknown kinds are an
// error so a bad producer surfaces in the dead-letter stream instead of
// sending an empty email.
func Render(n Notification) (subject, body string, err error) {
	subject, ok := subjects[n.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", n.Kind)
	}

	name := n.RecipientName
	if name == "" {
		name = "-"
	}
	var buf bytes.Buffer
	if err := bodies.ExecuteTemplate(&buf, string(n.Kind)+".tmpl", templateContext{
		RecipientName: name,
		Data:          n.Data,
	}); err != nil {
		return "", "", fmt.Errorf("render %s: %w", n.Kind, err)
	}
	return subject, buf.String(), nil
}

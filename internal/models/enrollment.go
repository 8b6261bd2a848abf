package models

import "time"

// Enrollment is the durable record of a learner's accepted membership in a
// course. It is created exactly once, inside the same transaction that moves
// the application to approved, and never mutated afterwards.
type Enrollment struct {
	ID             string
	LearnerID      string
	CourseID       string
	InstructorID   string
	ApplicationID  string
	EnrollmentDate time.Time
}

// EnrollmentView is the learner-dashboard projection of an enrollment.
type EnrollmentView struct {
	ID             string
	CourseID       string
	CourseTitle    string
	InstructorName string
	EnrollmentDate time.Time
}

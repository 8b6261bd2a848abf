package models

import "time"

type CourseStatus string

const (
	CourseStatusPending   CourseStatus = "pending"
	CourseStatusApproved  CourseStatus = "approved"
	CourseStatusSuspended CourseStatus = "suspended"
	CourseStatusBanned    CourseStatus = "banned"
)

type Course struct {
	ID           string
	InstructorID string
	Title        string
	Description  string
	PriceCents   int64
	Status       CourseStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CourseListing is the public/catalog projection of a course. InstructorName
// degrades to "-" when the owning instructor row cannot be resolved.
type CourseListing struct {
	ID             string
	Title          string
	Description    string
	PriceCents     int64
	Status         CourseStatus
	InstructorName string
}

package models

import "time"

type UserRole string

const (
	UserRoleLearner    UserRole = "learner"
	UserRoleInstructor UserRole = "instructor"
	UserRoleSuperAdmin UserRole = "super_admin"
)

type AccountStatus string

const (
	AccountStatusPending   AccountStatus = "pending"
	AccountStatusApproved  AccountStatus = "approved"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusBanned    AccountStatus = "banned"
)

// User is an account of any role. Instructors start out pending and go through
// super-admin review; learners are approved at signup.
type User struct {
	ID            string
	Email         string
	PasswordHash  []byte
	DisplayName   string
	Role          UserRole
	ProfileStatus AccountStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Active reports whether the profile status permits acting on the platform.
// Suspended and banned supersede any course or application status.
func (u User) Active() bool {
	return u.ProfileStatus == AccountStatusApproved
}

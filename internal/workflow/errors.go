package workflow

import "fmt"

// FieldError reports a problem with a specific input field.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError rejects an operation before any write. Maps to 400.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("%s: %s", e.Fields[0].Field, e.Fields[0].Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

// NotFoundError means the entity id does not exist. Maps to 404.
type NotFoundError struct {
	Entity EntityKind
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InvalidTransitionError refuses a status change that is not in the transition
// table, naming the current and attempted status. Maps to 409.
type InvalidTransitionError struct {
	Entity EntityKind
	ID     string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s: illegal transition %s -> %s", e.Entity, e.ID, e.From, e.To)
}

// NotificationError reports a failed enqueue after an already committed status
// change. It is returned alongside success and must never reverse the write.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification dispatch failed: %v", e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

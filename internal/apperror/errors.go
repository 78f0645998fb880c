// Package apperror defines the error taxonomy shared by the core packages,
// the service layer and the HTTP handlers.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication is returned for a missing, malformed or expired token.
	ErrAuthentication = errors.New("authentication failed")

	// ErrInvalidTransition is returned when a task status change is not an edge of the workflow graph.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotAMember is returned when an assignee or comment author is not a project member.
	ErrNotAMember = errors.New("user is not a member of the project")

	// ErrNotFound is returned when a referenced project, task, comment or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique resource already exists.
	ErrConflict = errors.New("already exists")
)

// Reason explains why an authorization request was denied.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNotAMember       Reason = "NotAMember"
	ReasonNotAuthor        Reason = "NotAuthor"
	ReasonInsufficientRole Reason = "InsufficientRole"
)

// AuthorizationDenied is returned when the permission engine rejects an action.
type AuthorizationDenied struct {
	Reason Reason
}

func (e *AuthorizationDenied) Error() string {
	return fmt.Sprintf("authorization denied: %s", e.Reason)
}

// Denied builds an AuthorizationDenied error for reason.
func Denied(reason Reason) error {
	return &AuthorizationDenied{Reason: reason}
}

// ValidationError reports a malformed input value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a datastore failure. Callers may retry; the core never does.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError unless it is nil or already part of the taxonomy.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// DenialReason returns the reason carried by err, if err is an AuthorizationDenied.
func DenialReason(err error) (Reason, bool) {
	var denied *AuthorizationDenied
	if errors.As(err, &denied) {
		return denied.Reason, true
	}
	return ReasonNone, false
}

package apperrors

import (
	"errors"
	"fmt"
)

// Authentication failures. These never carry request detail so that
// handlers cannot leak which part of a credential was wrong.
var (
	ErrMissingToken    = errors.New("authorization token missing")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrInvalidAdminKey = errors.New("invalid admin API key")
)

// PermissionError is returned when an authenticated caller is not
// allowed to perform the requested action.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return "permission denied: " + e.Reason
}

func NotOwner() *PermissionError {
	return &PermissionError{Reason: "caller does not own this resource"}
}

func NotAdmin() *PermissionError {
	return &PermissionError{Reason: "admin access required"}
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a missing (or removed) entity.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func NotFound(entity string) *NotFoundError {
	return &NotFoundError{Entity: entity}
}

// ConflictError reports an illegal state transition. Current is the
// state the entity was in, Attempted names the rejected transition.
type ConflictError struct {
	Current   string
	Attempted string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot %s in state %s", e.Attempted, e.Current)
}

func Conflict(current, attempted string) *ConflictError {
	return &ConflictError{Current: current, Attempted: attempted}
}

// IsPermission reports whether err is a PermissionError.
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

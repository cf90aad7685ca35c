// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInUse         = errors.New("entity is still referenced")

	// Validation errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidID    = errors.New("invalid ID")
	ErrInvalidInput = errors.New("invalid input")

	// Storage errors
	ErrInternal               = errors.New("internal error")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "film", "user", "social"
	Op      string // Operation that failed, e.g., "Create", "AddLike"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message, shown to API clients
	Field   string // Offending field for validation errors (optional)
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Internal wraps a storage failure. Domain errors pass through untouched so
// that a repository can call it on every error path.
func Internal(domain, op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return WrapError(domain, op, ErrInternal, "Не удалось выполнить операцию с хранилищем", err)
}

// ═══════════════════════════════════════════════════════════════════════════
// Validation
// ═══════════════════════════════════════════════════════════════════════════

// Violation describes a single broken field constraint.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Violations is the ordered result of a validator run.
type Violations []Violation

// Add appends a violation.
func (v *Violations) Add(field, reason string) {
	*v = append(*v, Violation{Field: field, Reason: reason})
}

// Empty reports whether no constraint was broken.
func (v Violations) Empty() bool {
	return len(v) == 0
}

// Err converts the first violation into a validation DomainError (fail-fast).
func (v Violations) Err(domain, op string) error {
	if len(v) == 0 {
		return nil
	}
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    ErrValidation,
		Message: v[0].Reason,
		Field:   v[0].Field,
	}
}

// NewValidationError is a shortcut for a single-field validation failure.
func NewValidationError(domain, op, field, reason string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    ErrValidation,
		Message: reason,
		Field:   field,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Classification helpers
// ═══════════════════════════════════════════════════════════════════════════

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInUse checks if the error reports a still-referenced entity.
func IsInUse(err error) bool {
	return errors.Is(err, ErrInUse)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput)
}

// IsInternal checks if the error is a storage-layer failure.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal) ||
		errors.Is(err, ErrConcurrentModification)
}

// FieldOf returns the offending field of a validation error, if any.
func FieldOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}

// MessageOf returns the client-facing message of a domain error. Errors that
// are not domain errors get a generic message.
func MessageOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "Внутренняя ошибка сервера"
}

package base

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// RepositoryError represents a failed store operation.
type RepositoryError struct {
	Operation string
	Table     string
	Cause     error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Table, e.Cause)
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// EntityNotFoundError represents a missing entity.
type EntityNotFoundError struct {
	Table      string
	Identifier string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s with %s not found", e.Table, e.Identifier)
}

// ValidationError represents invalid input caught before any store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// UnavailableError represents an unreachable backing store. Handlers map it
// to 503 so callers can tell connectivity problems from bad requests.
type UnavailableError struct {
	Store string
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Store, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

func NewEntityNotFoundError(table, identifier string) *EntityNotFoundError {
	return &EntityNotFoundError{Table: table, Identifier: identifier}
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func NewUnavailableError(store string, cause error) *UnavailableError {
	return &UnavailableError{Store: store, Cause: cause}
}

// --- Helpers ---

// HandleDBError converts gorm errors into the repository taxonomy.
func HandleDBError(operation, table, identifier string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewEntityNotFoundError(table, identifier)
	}
	return WrapDBError(operation, table, err)
}

// WrapDBError wraps a database error with operation context.
func WrapDBError(operation, table string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Operation: operation, Table: table, Cause: err}
}

func IsEntityNotFound(err error) bool {
	var target *EntityNotFoundError
	return errors.As(err, &target)
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target *UnavailableError
	return errors.As(err, &target)
}

package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller's role may not invoke the operation at all.
var ErrForbidden = errors.New("operation not permitted for role")

// ErrNoMatch indicates that bulk criteria resolved to zero eligible rows.
var ErrNoMatch = errors.New("no transactions matched the given criteria")

// ErrConflict indicates the resource state changed underneath the caller
// (e.g. the row was locked between read and write). Retry with fresh state.
var ErrConflict = errors.New("resource state conflict")

// ErrInternal indicates an unexpected store-level failure.
var ErrInternal = errors.New("internal error")

// AppError wraps an underlying error with an HTTP-ish status code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound via errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// FieldLockedError reports that the caller may invoke the operation but the
// named fields are not writable given the transaction's current lock state.
// It is a client-correctable bad request, deliberately distinct from
// ErrForbidden so the caller can be told "notes only" rather than "forbidden".
type FieldLockedError struct {
	Fields []string
	// TransactionIDs carries the offending rows for bulk operations.
	TransactionIDs []string
}

func (e *FieldLockedError) Error() string {
	msg := fmt.Sprintf("transaction is locked; fields not writable: %s", strings.Join(e.Fields, ", "))
	if len(e.TransactionIDs) > 0 {
		msg += fmt.Sprintf(" (locked transactions: %s)", strings.Join(e.TransactionIDs, ", "))
	}
	return msg
}

// NewFieldLockedError creates a FieldLockedError with deterministically ordered fields.
func NewFieldLockedError(fields []string, transactionIDs ...string) *FieldLockedError {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	return &FieldLockedError{Fields: sorted, TransactionIDs: transactionIDs}
}

// ValidationError enumerates every missing or invalid input field in one
// response, keyed by field name.
type ValidationError struct {
	Violations map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e.Violations[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is(err, ErrValidation) match a ValidationError.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError from field -> reason pairs.
func NewValidationError(violations map[string]string) *ValidationError {
	return &ValidationError{Violations: violations}
}

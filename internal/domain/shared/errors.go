package shared

import "errors"

// Error codes used across the ledger
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeScheduleAmbiguous   = "SCHEDULE_AMBIGUOUS"
	CodeScheduleNotFound    = "SCHEDULE_NOT_FOUND"
	CodeInspectionFailed    = "INSPECTION_FAILED"
	CodeDeletionFailed      = "DELETION_FAILED"
	CodeAuditWriteFailed    = "AUDIT_WRITE_FAILED"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code.
// This lets callers write errors.Is(err, shared.ErrNotFound).
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error carrying an underlying cause
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// NewValidationError creates a VALIDATION_ERROR with the given message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates a NOT_FOUND error with the given message
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrValidation          = NewDomainError(CodeValidation, "Invalid input provided")
	ErrInvalidStatus       = NewDomainError(CodeInvalidStatus, "Invalid status")
	ErrScheduleAmbiguous   = NewDomainError(CodeScheduleAmbiguous, "Fee schedule is ambiguous")
	ErrScheduleNotFound    = NewDomainError(CodeScheduleNotFound, "Fee schedule entry not found")
	ErrInspectionFailed    = NewDomainError(CodeInspectionFailed, "Relationship inspection failed")
	ErrDeletionFailed      = NewDomainError(CodeDeletionFailed, "Deletion failed")
	ErrAuditWriteFailed    = NewDomainError(CodeAuditWriteFailed, "Audit write failed")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
)

// ErrorCode extracts the domain error code from err, or "" when err is not a DomainError
func ErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

package shared

import "fmt"

// DomainError represents a business rule violation
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Common error codes
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeTenantSuspended  = "TENANT_SUSPENDED"
	ErrCodeCapacityExceeded = "CAPACITY_EXCEEDED"
	ErrCodeQuotaExceeded    = "QUOTA_EXCEEDED"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeUpstreamFailure  = "UPSTREAM_FAILURE"
	ErrCodeMisconfiguration = "MISCONFIGURATION"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// NewAlreadyExistsError creates an already exists error
func NewAlreadyExistsError(resource string) *DomainError {
	return NewDomainError(ErrCodeAlreadyExists, fmt.Sprintf("%s already exists", resource))
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidInput, message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *DomainError {
	return NewDomainError(ErrCodeUnauthorized, message)
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *DomainError {
	return NewDomainError(ErrCodeForbidden, message)
}

// NewTenantSuspendedError signals that the tenant account is suspended
func NewTenantSuspendedError() *DomainError {
	return NewDomainError(ErrCodeTenantSuspended, "account suspended, contact support")
}

// NewCapacityExceededError signals a hard capacity ceiling (payment required)
func NewCapacityExceededError(message string) *DomainError {
	return NewDomainError(ErrCodeCapacityExceeded, message)
}

// NewQuotaExceededError signals an exhausted usage window
func NewQuotaExceededError(message string) *DomainError {
	return NewDomainError(ErrCodeQuotaExceeded, message)
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *DomainError {
	return NewDomainError(ErrCodeConflict, message)
}

// NewUpstreamFailureError signals a failed call to an external provider
func NewUpstreamFailureError(message string) *DomainError {
	return NewDomainError(ErrCodeUpstreamFailure, message)
}

// NewMisconfigurationError signals missing provisioning rows or settings
func NewMisconfigurationError(message string) *DomainError {
	return NewDomainError(ErrCodeMisconfiguration, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *DomainError {
	return NewDomainError(ErrCodeInternalError, message)
}

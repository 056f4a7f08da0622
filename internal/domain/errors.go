package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeCapabilityUnavailable = "CAPABILITY_UNAVAILABLE"
	ErrCodeStorageFailure        = "STORAGE_FAILURE"
	ErrCodeInvalidOperation      = "INVALID_OPERATION"
	ErrCodeInternalError         = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyChunkContent       = NewDomainError(ErrCodeValidation, "chunk content must not be empty")
	ErrWrongEmbeddingDimension = NewDomainError(ErrCodeValidation, "embedding has wrong dimension")
	ErrInvalidSourceType       = NewDomainError(ErrCodeValidation, "invalid source type")
	ErrMalformedVectorText     = NewDomainError(ErrCodeValidation, "malformed vector text")
	ErrBlankQuery              = NewDomainError(ErrCodeValidation, "query must not be blank")
	ErrMissingFilename         = NewDomainError(ErrCodeValidation, "filename is missing")
)

// Not found errors
var (
	ErrChunkNotFound        = NewDomainError(ErrCodeNotFound, "knowledge chunk not found")
	ErrImportRecordNotFound = NewDomainError(ErrCodeNotFound, "import record not found")
)

// Capability errors
var (
	ErrParserUnavailable = NewDomainError(ErrCodeCapabilityUnavailable, "no parser registered for file type")
)

// Operation errors
var (
	ErrImportRecordTerminal = NewDomainError(ErrCodeInvalidOperation, "import record is already terminal")
)

// NewStorageFailure wraps a storage-engine error. Fatal for the current
// operation, surfaced as-is, no automatic retry at this layer.
func NewStorageFailure(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeStorageFailure, "storage operation failed", err)
}

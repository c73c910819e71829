package domain

import "fmt"

// DomainError represents a pipeline-specific error
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
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeConfig     = "CONFIG_ERROR"
	ErrCodeService    = "SERVICE_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeParse      = "PARSE_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidChunkParams    = NewDomainError(ErrCodeValidation, "chunk overlap must satisfy 0 <= overlap < chunk size")
	ErrDocumentCountMismatch = NewDomainError(ErrCodeValidation, "documents and metadatas must have equal length")
	ErrUnknownCollection     = NewDomainError(ErrCodeValidation, "unknown collection name")
	ErrEmptyQuery            = NewDomainError(ErrCodeValidation, "query text cannot be empty")
)

// Config errors
var (
	ErrVoiceLanguageMissing = NewDomainError(ErrCodeConfig, "tone config has no voice entry for language")
	ErrDisclaimerMissing    = NewDomainError(ErrCodeConfig, "tone config has no disclaimer for language")
)

// Service errors
var (
	ErrGenerationExhausted = NewDomainError(ErrCodeService, "generation service retries exhausted")
)

// Not found errors
var (
	ErrSourceNotFound = NewDomainError(ErrCodeNotFound, "source file or directory not found")
)

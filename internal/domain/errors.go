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
	// ErrCodeValidation covers user-correctable input problems (bad URL, empty
	// query); surfaced as 4xx.
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeNotFound covers missing resources.
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeUpstream covers transcript/LLM/vector-store outages; retryable by
	// the caller, surfaced as 502 with the detail kept in logs.
	ErrCodeUpstream = "UPSTREAM_UNAVAILABLE"
	// ErrCodeInternalError covers everything else.
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidVideoURL = NewDomainError(ErrCodeValidation, "invalid YouTube URL")
	ErrEmptyQuery      = NewDomainError(ErrCodeValidation, "query is required")
	ErrMissingVideoID  = NewDomainError(ErrCodeValidation, "video id is required")
)

// Not found errors. A video with no transcript or no indexed chunks is a valid
// empty result in most flows; these errors are reserved for the cases where the
// caller asked for something that has to exist.
var (
	ErrTranscriptUnavailable = NewDomainError(ErrCodeNotFound, "no transcript available for this video")
	ErrVideoNotIndexed       = NewDomainError(ErrCodeNotFound, "video has not been processed yet")
	ErrJobNotFound           = NewDomainError(ErrCodeNotFound, "ingest job not found")
)

// Upstream errors
var (
	ErrTranscriptProvider = NewDomainError(ErrCodeUpstream, "transcript provider request failed")
	ErrModelProvider      = NewDomainError(ErrCodeUpstream, "model provider request failed")
	ErrVectorStore        = NewDomainError(ErrCodeUpstream, "vector store request failed")
)

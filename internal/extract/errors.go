package extract

import (
	"errors"
	"fmt"
)

// Common extraction errors
var (
	// ErrMalformedResponse is returned when the inference-service response
	// cannot be parsed into the expected eight-field schema, or when the
	// amount field cannot be coerced to a numeric value.
	ErrMalformedResponse = errors.New("malformed extraction response")

	// ErrService is returned when the inference-service call itself failed
	// (network, authentication, quota).
	ErrService = errors.New("inference service call failed")

	// ErrEmptyResponse is returned when the service replied with no content.
	ErrEmptyResponse = errors.New("inference service returned an empty response")

	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("missing inference service API key: set OPENAI_API_KEY")
)

// ExtractError wraps errors with additional context about an extraction failure.
type ExtractError struct {
	// Op is the operation that failed (e.g., "Extract", "ParseResponse").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string

	// PageIndex is the 1-based page index being extracted (0 if unknown).
	PageIndex int
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("extract: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	if e.PageIndex > 0 {
		return fmt.Sprintf("extract: %s failed (page %d): %v", e.Op, e.PageIndex, e.Err)
	}
	return fmt.Sprintf("extract: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExtractError creates a new ExtractError with the specified operation and underlying error.
func NewExtractError(op string, err error, details string) *ExtractError {
	return &ExtractError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

package document

import (
	"errors"
	"fmt"
)

// ErrDecomposition is returned when a document cannot be split into page
// images at all (corrupt PDF, zero pages). It is fatal for that document
// only; the rest of the batch continues.
var ErrDecomposition = errors.New("document could not be decomposed into pages")

// DocumentError ties a decomposition failure to the document it came from.
type DocumentError struct {
	// Name is the source document name.
	Name string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	return fmt.Sprintf("document: decomposing %q failed: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *DocumentError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

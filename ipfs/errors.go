package ipfs

import (
	"errors"
	"fmt"
)

// Sentinel errors for content store operations.
var (
	// ErrEmptyPayload is returned when an upload is attempted with no bytes.
	ErrEmptyPayload = errors.New("ipfs: empty payload")

	// ErrInvalidLocator is returned when a content locator is not a
	// well-formed CIDv0 string.
	ErrInvalidLocator = errors.New("ipfs: invalid content locator")

	// ErrNotFound is returned when the store has no content for a locator.
	ErrNotFound = errors.New("ipfs: content not found")

	// ErrUnavailable is returned when the store cannot be reached.
	ErrUnavailable = errors.New("ipfs: store unavailable")
)

// UploadError is returned when an upload's retry budget is exhausted.
type UploadError struct {
	// Attempts is the number of upload attempts that were made.
	Attempts int

	// Err is the error from the final attempt.
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("ipfs: upload failed after %d attempts: %s", e.Attempts, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

package certledger

import (
	"errors"
	"fmt"

	"github.com/meigma/certledger/digest"
	"github.com/meigma/certledger/ipfs"
	"github.com/meigma/certledger/ledger"
)

// ErrInvalidInput is returned when caller-supplied data fails validation
// before any side effect is attempted.
var ErrInvalidInput = errors.New("certledger: invalid input")

// Errors re-exported from ledger.
var (
	// ErrAlreadyExists is returned when a certificate identifier is
	// already bound in the ledger.
	ErrAlreadyExists = ledger.ErrAlreadyExists

	// ErrNotFound is returned when no record is bound to an identifier.
	ErrNotFound = ledger.ErrNotFound

	// ErrLedgerUnavailable is returned when the ledger cannot be reached.
	ErrLedgerUnavailable = ledger.ErrUnavailable
)

// Errors re-exported from ipfs.
var (
	// ErrInvalidLocator is returned when a content locator is malformed.
	ErrInvalidLocator = ipfs.ErrInvalidLocator

	// ErrContentNotFound is returned when the content store has no bytes
	// for a locator.
	ErrContentNotFound = ipfs.ErrNotFound

	// ErrStoreUnavailable is returned when the content store cannot be
	// reached.
	ErrStoreUnavailable = ipfs.ErrUnavailable
)

// ErrEmptyPayload is returned when a payload contains no bytes.
var ErrEmptyPayload = digest.ErrEmptyPayload

// Stage identifies where an issuance attempt failed.
type Stage string

// Issuance stages, in execution order.
const (
	StageValidate    Stage = "validate"
	StageUpload      Stage = "upload"
	StageDuplicateID Stage = "duplicate-id"
	StageLedger      Stage = "ledger"
)

// IssuanceError is returned when an issuance attempt aborts. Stage names
// the step that failed; steps after it were never attempted, so a failed
// issuance leaves no partial ledger record.
type IssuanceError struct {
	// Stage is the step that failed.
	Stage Stage

	// ID is the certificate identifier from the request.
	ID string

	// Err is the underlying collaborator error.
	Err error
}

func (e *IssuanceError) Error() string {
	return fmt.Sprintf("certledger: issue %s: stage %s: %s", e.ID, e.Stage, e.Err)
}

func (e *IssuanceError) Unwrap() error {
	return e.Err
}

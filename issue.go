package certledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meigma/certledger/digest"
	"github.com/meigma/certledger/ledger"
)

// maxFutureIssue bounds how far in the future an issue date may lie. The
// date is caller-supplied and not checked against wall-clock beyond this;
// an issue date centuries out is caller error, not policy.
const maxFutureIssue = 100 * 365 * 24 * time.Hour

// IssueRequest carries the inputs for issuing one certificate.
type IssueRequest struct {
	// ID is the certificate identifier, the ledger primary key.
	ID string

	// HolderName and CourseName are free-text metadata.
	HolderName string
	CourseName string

	// IssueDate is the issue time in unix seconds.
	IssueDate int64

	// Payload is the rendered certificate image.
	Payload []byte
}

func (r IssueRequest) validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("%w: empty certificate id", ErrInvalidInput)
	case strings.TrimSpace(r.HolderName) == "":
		return fmt.Errorf("%w: empty holder name", ErrInvalidInput)
	case strings.TrimSpace(r.CourseName) == "":
		return fmt.Errorf("%w: empty course name", ErrInvalidInput)
	case r.IssueDate <= 0:
		return fmt.Errorf("%w: issue date %d is not a valid point in time", ErrInvalidInput, r.IssueDate)
	case time.Unix(r.IssueDate, 0).After(time.Now().Add(maxFutureIssue)):
		return fmt.Errorf("%w: issue date %d is unreasonably far in the future", ErrInvalidInput, r.IssueDate)
	case len(r.Payload) == 0:
		return fmt.Errorf("%w: %s", ErrInvalidInput, digest.ErrEmptyPayload)
	}
	return nil
}

// Issue registers a new certificate: it fingerprints the payload, uploads
// it to the content store, and commits the record to the ledger.
//
// The steps run in that order and each failure aborts the rest, so a
// failed call never leaves a partial or duplicate ledger record. A failed
// call may leave an unreferenced blob in the content store; the store is
// content-addressed, so orphaned blobs are harmless.
//
// Failures are surfaced as [*IssuanceError] naming the stage that failed.
// A duplicate identifier is reported with [StageDuplicateID] and unwraps
// to [ErrAlreadyExists].
func (c *Client) Issue(ctx context.Context, req IssueRequest) (Record, error) {
	if err := req.validate(); err != nil {
		return Record{}, &IssuanceError{Stage: StageValidate, ID: req.ID, Err: err}
	}

	fingerprint, err := digest.FromBytes(req.Payload)
	if err != nil {
		return Record{}, &IssuanceError{Stage: StageValidate, ID: req.ID, Err: err}
	}

	uploadCtx, cancelUpload := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancelUpload()
	locator, err := c.store.Upload(uploadCtx, req.Payload)
	if err != nil {
		return Record{}, &IssuanceError{Stage: StageUpload, ID: req.ID, Err: err}
	}

	record := Record{
		ID:             req.ID,
		HolderName:     req.HolderName,
		CourseName:     req.CourseName,
		IssueDate:      req.IssueDate,
		ContentLocator: locator,
		ContentDigest:  fingerprint,
	}

	// Ledger writes are not retried: a retried register can report a
	// spurious AlreadyExists for our own earlier write.
	ledgerCtx, cancelLedger := context.WithTimeout(ctx, c.ledgerTimeout)
	defer cancelLedger()
	if err := c.ledger.Register(ledgerCtx, record); err != nil {
		if errors.Is(err, ledger.ErrAlreadyExists) {
			return Record{}, &IssuanceError{Stage: StageDuplicateID, ID: req.ID, Err: err}
		}
		return Record{}, &IssuanceError{Stage: StageLedger, ID: req.ID, Err: err}
	}

	c.log().Info("issued certificate",
		"id", record.ID,
		"locator", record.ContentLocator,
		"digest", record.ContentDigest,
	)
	return record, nil
}

// Package ledger defines the boundary to the authoritative certificate
// ledger: an append-only, key-indexed store of committed records.
//
// The ledger supports no update or delete. A record's presence under its
// identifier is permanent, and registration of an already-bound identifier
// fails with [ErrAlreadyExists]. That atomic register-once semantic is the
// only concurrency guarantee the rest of the system relies on.
package ledger

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for ledger operations.
var (
	// ErrAlreadyExists is returned when a record is already bound to the
	// identifier being registered.
	ErrAlreadyExists = errors.New("ledger: certificate id already exists")

	// ErrNotFound is returned by Lookup when no record is bound to the
	// identifier.
	ErrNotFound = errors.New("ledger: certificate not found")

	// ErrUnavailable is returned when the ledger cannot be reached.
	ErrUnavailable = errors.New("ledger: unavailable")
)

// Record is a committed certificate record. Records are immutable once
// registered; every field is written exactly once, at issuance.
type Record struct {
	// ID is the caller-supplied certificate identifier, the primary key.
	ID string

	// HolderName and CourseName are free-text metadata, opaque to the
	// integrity protocol.
	HolderName string
	CourseName string

	// IssueDate is the caller-supplied issue time in unix seconds.
	IssueDate int64

	// ContentLocator addresses the certificate image in the content store.
	ContentLocator string

	// ContentDigest is the fingerprint of the image bytes at issuance,
	// 64 lowercase hex characters.
	ContentDigest string
}

// IssueTime returns the issue date as a time.Time in UTC.
func (r Record) IssueTime() time.Time {
	return time.Unix(r.IssueDate, 0).UTC()
}

// Ledger is the client boundary to the certificate ledger.
type Ledger interface {
	// Register commits a record under its identifier. It is atomic from
	// the caller's point of view: after a nil return the full record is
	// visible to Lookup; after an error none of it is. Registering an
	// identifier that is already bound returns ErrAlreadyExists.
	Register(ctx context.Context, record Record) error

	// Lookup returns the record bound to id, or ErrNotFound. It never
	// mutates ledger state and is safe to call with malformed identifiers.
	Lookup(ctx context.Context, id string) (Record, error)
}

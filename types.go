package certledger

import (
	"github.com/meigma/certledger/ipfs"
	"github.com/meigma/certledger/ledger"
)

// Record is a committed certificate record, re-exported from ledger.
type Record = ledger.Record

// Ledger is the append-only certificate ledger boundary, re-exported
// from ledger.
type Ledger = ledger.Ledger

// UploadError is returned when an upload's retry budget is exhausted,
// re-exported from ipfs.
type UploadError = ipfs.UploadError

// Outcome is the result of a verification call. It is computed per call
// and never persisted.
//
// RecordExists and ContentUnmodified are deliberately independent: a
// record can exist while its content is unverified (no payload supplied)
// or modified (digest mismatch). Callers must not treat existence as a
// tamper check.
type Outcome struct {
	// RecordExists reports whether the identifier resolves to a record.
	RecordExists bool

	// ContentUnmodified reports whether the supplied payload's
	// fingerprint matches the fingerprint recorded at issuance. It is
	// false when no payload was supplied or compared.
	ContentUnmodified bool

	// Metadata echoed from the record when it exists.
	HolderName     string
	CourseName     string
	IssueDate      int64
	ContentLocator string
}

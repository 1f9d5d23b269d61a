package certledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meigma/certledger/digest"
	"github.com/meigma/certledger/ledger"
)

// Verify answers whether id resolves to a record and, when payload is
// non-empty, whether the payload is byte-identical to the content issued
// under it.
//
// An unknown id yields a zero outcome and no error: absence is a valid
// negative result, not a failure. An empty payload yields
// {RecordExists: true, ContentUnmodified: false} with echoed metadata —
// existence and content integrity are reported independently, and an
// unverified payload is never conflated with a modified one.
func (c *Client) Verify(ctx context.Context, id string, payload []byte) (Outcome, error) {
	record, found, err := c.lookup(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		return Outcome{}, nil
	}

	outcome := echo(record)
	if len(payload) == 0 {
		c.log().Debug("verified existence only", "id", id)
		return outcome, nil
	}

	fingerprint, err := digest.FromBytes(payload)
	if err != nil {
		return Outcome{}, fmt.Errorf("fingerprint payload: %w", err)
	}
	outcome.ContentUnmodified = fingerprint == record.ContentDigest

	c.log().Debug("verified content",
		"id", id,
		"unmodified", outcome.ContentUnmodified,
	)
	return outcome, nil
}

// VerifyHolder answers whether id resolves to a record whose holder name
// matches holderName, compared case-insensitively. It is for verifiers
// who have no image to fingerprint and want identity confirmation only:
// the outcome never asserts content integrity.
//
// A record whose holder does not match is reported exactly like a
// missing record, so the call does not leak whether an identifier exists
// under a different name.
func (c *Client) VerifyHolder(ctx context.Context, holderName, id string) (Outcome, error) {
	record, found, err := c.lookup(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if !found || !strings.EqualFold(record.HolderName, holderName) {
		return Outcome{}, nil
	}

	c.log().Debug("verified holder identity", "id", id)
	return echo(record), nil
}

// VerifyStored fetches the bytes at the record's own locator from the
// content store and compares their fingerprint against the recorded one.
// It detects divergence between the store and the ledger without the
// caller supplying any bytes.
func (c *Client) VerifyStored(ctx context.Context, id string) (Outcome, error) {
	record, found, err := c.lookup(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		return Outcome{}, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()
	payload, err := c.store.Fetch(fetchCtx, record.ContentLocator)
	if err != nil {
		return Outcome{}, fmt.Errorf("fetch stored content: %w", err)
	}

	fingerprint, err := digest.FromBytes(payload)
	if err != nil {
		return Outcome{}, fmt.Errorf("fingerprint stored content: %w", err)
	}

	outcome := echo(record)
	outcome.ContentUnmodified = fingerprint == record.ContentDigest
	return outcome, nil
}

// lookup resolves id, mapping ErrNotFound to a negative result.
func (c *Client) lookup(ctx context.Context, id string) (Record, bool, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, c.ledgerTimeout)
	defer cancel()

	record, err := c.ledger.Lookup(lookupCtx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	return record, true, nil
}

// echo builds an outcome carrying the record's metadata. ContentUnmodified
// starts false; only an explicit digest comparison sets it.
func echo(record Record) Outcome {
	return Outcome{
		RecordExists:   true,
		HolderName:     record.HolderName,
		CourseName:     record.CourseName,
		IssueDate:      record.IssueDate,
		ContentLocator: record.ContentLocator,
	}
}

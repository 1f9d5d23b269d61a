// Package digest computes content fingerprints for certificate payloads.
//
// A fingerprint is the sha256 digest of the exact payload bytes, encoded
// as 64 lowercase hex characters. The encoding is part of the wire
// contract: the ledger stores fingerprints verbatim and verifiers compare
// them as strings.
package digest

import (
	"errors"
	"fmt"
	"io"

	godigest "github.com/opencontainers/go-digest"
)

// HexLength is the length of an encoded fingerprint.
const HexLength = 64

// ErrEmptyPayload is returned when a payload contains no bytes. An empty
// source is never a valid certificate image.
var ErrEmptyPayload = errors.New("digest: empty payload")

// ErrInvalidDigest is returned when an encoded fingerprint is malformed.
var ErrInvalidDigest = errors.New("digest: invalid digest")

// FromBytes computes the fingerprint of payload.
//
// The result is deterministic: identical byte sequences always produce
// identical fingerprints, regardless of payload size.
func FromBytes(payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", ErrEmptyPayload
	}
	return godigest.SHA256.FromBytes(payload).Encoded(), nil
}

// FromReader computes the fingerprint of everything readable from r.
//
// An unreadable or empty source is rejected the same way as an empty
// byte slice.
func FromReader(r io.Reader) (string, error) {
	digester := godigest.SHA256.Digester()
	n, err := io.Copy(digester.Hash(), r)
	if err != nil {
		return "", fmt.Errorf("read payload: %w", err)
	}
	if n == 0 {
		return "", ErrEmptyPayload
	}
	return digester.Digest().Encoded(), nil
}

// Validate checks that s is a well-formed encoded fingerprint.
func Validate(s string) error {
	if len(s) != HexLength {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidDigest, len(s), HexLength)
	}
	if err := godigest.NewDigestFromEncoded(godigest.SHA256, s).Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDigest, err)
	}
	return nil
}

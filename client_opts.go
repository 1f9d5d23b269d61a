package certledger

import (
	"errors"
	"log/slog"
	"time"

	"github.com/meigma/certledger/ledger"
)

var (
	errMissingLedger = errors.New("certledger: no ledger configured")
	errMissingStore  = errors.New("certledger: no content store configured")
)

// Option configures a Client.
type Option func(*Client) error

// WithLedger sets the certificate ledger. Required.
func WithLedger(l ledger.Ledger) Option {
	return func(c *Client) error {
		if l == nil {
			return errMissingLedger
		}
		c.ledger = l
		return nil
	}
}

// WithStore sets the content-addressed store. Required.
func WithStore(s Store) Option {
	return func(c *Client) error {
		if s == nil {
			return errMissingStore
		}
		c.store = s
		return nil
	}
}

// WithLogger sets the logger used for operation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithUploadTimeout overrides the per-call content store upload timeout.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return errors.New("certledger: upload timeout must be positive")
		}
		c.uploadTimeout = d
		return nil
	}
}

// WithLedgerTimeout overrides the per-call ledger timeout.
func WithLedgerTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return errors.New("certledger: ledger timeout must be positive")
		}
		c.ledgerTimeout = d
		return nil
	}
}

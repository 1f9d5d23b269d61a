package certledger

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/meigma/certledger/ledger"
)

// Default request-level timeouts for collaborator calls.
const (
	// DefaultUploadTimeout bounds a single Issue call's content store
	// upload, including its retry budget.
	DefaultUploadTimeout = 30 * time.Second

	// DefaultLedgerTimeout bounds a single ledger read or write.
	DefaultLedgerTimeout = 10 * time.Second
)

// Store is the content-addressed store boundary.
//
// Upload must be idempotent per content: uploading identical bytes yields
// a usable locator each time. Fetch returns the exact bytes previously
// stored for a locator.
type Store interface {
	Upload(ctx context.Context, payload []byte) (string, error)
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// Client composes the ledger and content store into the issuance and
// verification workflows.
//
// A Client holds no mutable state beyond its collaborator handles; all
// operations are independent request/response calls and safe for
// concurrent use.
type Client struct {
	ledger ledger.Ledger
	store  Store
	logger *slog.Logger

	uploadTimeout time.Duration
	ledgerTimeout time.Duration
}

// NewClient creates a client from the given options. [WithLedger] and
// [WithStore] are required.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		uploadTimeout: DefaultUploadTimeout,
		ledgerTimeout: DefaultLedgerTimeout,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.ledger == nil {
		return nil, errMissingLedger
	}
	if c.store == nil {
		return nil, errMissingStore
	}
	return c, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger
}

// Content returns the stored bytes for a locator. It is a read-through to
// the content store for callers that serve or download issued images.
func (c *Client) Content(ctx context.Context, locator string) ([]byte, error) {
	return c.store.Fetch(ctx, locator)
}

package certledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/certledger/digest"
	"github.com/meigma/certledger/ledger"
)

// issuedRecord returns a record as the ledger would hold it for payload.
func issuedRecord(t *testing.T, payload []byte) ledger.Record {
	t.Helper()

	fingerprint, err := digest.FromBytes(payload)
	require.NoError(t, err)

	return ledger.Record{
		ID:             "CERT-1",
		HolderName:     "Alice",
		CourseName:     "CS101",
		IssueDate:      1700000000,
		ContentLocator: testLocator,
		ContentDigest:  fingerprint,
	}
}

func ledgerWith(record ledger.Record) *mockLedger {
	return &mockLedger{
		LookupFunc: func(_ context.Context, id string) (ledger.Record, error) {
			if id == record.ID {
				return record, nil
			}
			return ledger.Record{}, ledger.ErrNotFound
		},
	}
}

func TestClient_Verify(t *testing.T) {
	t.Parallel()

	original := []byte("original image")
	record := issuedRecord(t, original)

	tests := []struct {
		name    string
		id      string
		payload []byte
		want    Outcome
	}{
		{
			name:    "unknown id",
			id:      "CERT-MISSING",
			payload: original,
			want:    Outcome{},
		},
		{
			name:    "original payload",
			id:      "CERT-1",
			payload: original,
			want: Outcome{
				RecordExists:      true,
				ContentUnmodified: true,
				HolderName:        "Alice",
				CourseName:        "CS101",
				IssueDate:         1700000000,
				ContentLocator:    testLocator,
			},
		},
		{
			name:    "mutated payload",
			id:      "CERT-1",
			payload: []byte("original image, retouched"),
			want: Outcome{
				RecordExists:      true,
				ContentUnmodified: false,
				HolderName:        "Alice",
				CourseName:        "CS101",
				IssueDate:         1700000000,
				ContentLocator:    testLocator,
			},
		},
		{
			// No payload means unverified, never "modified".
			name:    "no payload",
			id:      "CERT-1",
			payload: nil,
			want: Outcome{
				RecordExists:      true,
				ContentUnmodified: false,
				HolderName:        "Alice",
				CourseName:        "CS101",
				IssueDate:         1700000000,
				ContentLocator:    testLocator,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, ledgerWith(record), &mockStore{})

			outcome, err := c.Verify(context.Background(), tt.id, tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome)
		})
	}
}

func TestClient_VerifyLedgerUnavailable(t *testing.T) {
	t.Parallel()

	led := &mockLedger{
		LookupFunc: func(context.Context, string) (ledger.Record, error) {
			return ledger.Record{}, ledger.ErrUnavailable
		},
	}
	c := newTestClient(t, led, &mockStore{})

	_, err := c.Verify(context.Background(), "CERT-1", []byte("payload"))
	require.ErrorIs(t, err, ErrLedgerUnavailable)
}

func TestClient_VerifyHolder(t *testing.T) {
	t.Parallel()

	record := issuedRecord(t, []byte("original image"))

	tests := []struct {
		name       string
		holderName string
		id         string
		wantExists bool
	}{
		{name: "exact match", holderName: "Alice", id: "CERT-1", wantExists: true},
		{name: "case-insensitive match", holderName: "alice", id: "CERT-1", wantExists: true},
		{name: "uppercase match", holderName: "ALICE", id: "CERT-1", wantExists: true},
		// A holder mismatch is indistinguishable from a missing record.
		{name: "wrong holder", holderName: "Mallory", id: "CERT-1", wantExists: false},
		{name: "unknown id", holderName: "Alice", id: "CERT-MISSING", wantExists: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, ledgerWith(record), &mockStore{})

			outcome, err := c.VerifyHolder(context.Background(), tt.holderName, tt.id)
			require.NoError(t, err)

			if !tt.wantExists {
				assert.Equal(t, Outcome{}, outcome)
				return
			}
			assert.True(t, outcome.RecordExists)
			assert.False(t, outcome.ContentUnmodified, "identity verification never asserts content integrity")
			assert.Equal(t, "Alice", outcome.HolderName)
			assert.Equal(t, "CS101", outcome.CourseName)
		})
	}
}

func TestClient_VerifyStored(t *testing.T) {
	t.Parallel()

	original := []byte("original image")
	record := issuedRecord(t, original)

	t.Run("intact content", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{
			FetchFunc: func(_ context.Context, locator string) ([]byte, error) {
				assert.Equal(t, testLocator, locator)
				return original, nil
			},
		}
		c := newTestClient(t, ledgerWith(record), store)

		outcome, err := c.VerifyStored(context.Background(), "CERT-1")
		require.NoError(t, err)
		assert.True(t, outcome.RecordExists)
		assert.True(t, outcome.ContentUnmodified)
	})

	t.Run("diverged content", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{
			FetchFunc: func(context.Context, string) ([]byte, error) {
				return []byte("different bytes"), nil
			},
		}
		c := newTestClient(t, ledgerWith(record), store)

		outcome, err := c.VerifyStored(context.Background(), "CERT-1")
		require.NoError(t, err)
		assert.True(t, outcome.RecordExists)
		assert.False(t, outcome.ContentUnmodified)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, ledgerWith(record), &mockStore{})

		outcome, err := c.VerifyStored(context.Background(), "CERT-MISSING")
		require.NoError(t, err)
		assert.Equal(t, Outcome{}, outcome)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		fetchErr := errors.New("store down")
		store := &mockStore{
			FetchFunc: func(context.Context, string) ([]byte, error) {
				return nil, fetchErr
			},
		}
		c := newTestClient(t, ledgerWith(record), store)

		_, err := c.VerifyStored(context.Background(), "CERT-1")
		require.ErrorIs(t, err, fetchErr)
	})
}

// TestIssueVerifyRoundTrip walks the full issuance and verification flow
// against in-memory fakes.
func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	led := newFakeLedger()
	store := newFakeStore()
	c := newTestClient(t, led, store)
	ctx := context.Background()

	imgA := []byte("imgA: rendered certificate")
	imgB := []byte("imgB: a different image")

	record, err := c.Issue(ctx, IssueRequest{
		ID:         "CERT-1",
		HolderName: "Alice",
		CourseName: "CS101",
		IssueDate:  1700000000,
		Payload:    imgA,
	})
	require.NoError(t, err)

	wantDigest, err := digest.FromBytes(imgA)
	require.NoError(t, err)
	assert.Equal(t, wantDigest, record.ContentDigest)

	// Issuing the same id again fails and leaves exactly one record.
	_, err = c.Issue(ctx, IssueRequest{
		ID:         "CERT-1",
		HolderName: "Mallory",
		CourseName: "CS999",
		IssueDate:  1700000001,
		Payload:    imgB,
	})
	require.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, 1, led.len())

	outcome, err := c.Verify(ctx, "CERT-1", imgA)
	require.NoError(t, err)
	assert.True(t, outcome.RecordExists)
	assert.True(t, outcome.ContentUnmodified)

	outcome, err = c.Verify(ctx, "CERT-1", imgB)
	require.NoError(t, err)
	assert.True(t, outcome.RecordExists)
	assert.False(t, outcome.ContentUnmodified)

	outcome, err = c.VerifyHolder(ctx, "alice", "CERT-1")
	require.NoError(t, err)
	assert.True(t, outcome.RecordExists)

	outcome, err = c.VerifyStored(ctx, "CERT-1")
	require.NoError(t, err)
	assert.True(t, outcome.ContentUnmodified)

	content, err := c.Content(ctx, record.ContentLocator)
	require.NoError(t, err)
	assert.Equal(t, imgA, content)
}

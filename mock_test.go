package certledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/meigma/certledger/ledger"
)

// mockLedger implements ledger.Ledger with settable behavior.
type mockLedger struct {
	RegisterFunc func(ctx context.Context, record ledger.Record) error
	LookupFunc   func(ctx context.Context, id string) (ledger.Record, error)

	registerCalls []ledger.Record
}

func (m *mockLedger) Register(ctx context.Context, record ledger.Record) error {
	m.registerCalls = append(m.registerCalls, record)
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, record)
	}
	return nil
}

func (m *mockLedger) Lookup(ctx context.Context, id string) (ledger.Record, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, id)
	}
	return ledger.Record{}, ledger.ErrNotFound
}

// mockStore implements Store with settable behavior.
type mockStore struct {
	UploadFunc func(ctx context.Context, payload []byte) (string, error)
	FetchFunc  func(ctx context.Context, locator string) ([]byte, error)

	uploadCalls int
}

func (m *mockStore) Upload(ctx context.Context, payload []byte) (string, error) {
	m.uploadCalls++
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, payload)
	}
	return testLocator, nil
}

func (m *mockStore) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, locator)
	}
	return nil, fmt.Errorf("mockStore: no FetchFunc configured")
}

// fakeLedger is an in-memory append-only ledger for end-to-end tests.
type fakeLedger struct {
	mu      sync.Mutex
	records map[string]ledger.Record
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[string]ledger.Record)}
}

func (f *fakeLedger) Register(_ context.Context, record ledger.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[record.ID]; ok {
		return fmt.Errorf("%w: %s", ledger.ErrAlreadyExists, record.ID)
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeLedger) Lookup(_ context.Context, id string) (ledger.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return ledger.Record{}, fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
	}
	return record, nil
}

func (f *fakeLedger) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// fakeStore is an in-memory content-addressed store for end-to-end tests.
type fakeStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	next  func(payload []byte) string
}

func newFakeStore() *fakeStore {
	counter := 0
	return &fakeStore{
		blobs: make(map[string][]byte),
		next: func([]byte) string {
			counter++
			return fmt.Sprintf("QmFake%058d", counter)
		},
	}
}

func (f *fakeStore) Upload(_ context.Context, payload []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Content addressing: identical bytes reuse the existing locator.
	for locator, blob := range f.blobs {
		if string(blob) == string(payload) {
			return locator, nil
		}
	}
	locator := f.next(payload)
	f.blobs[locator] = append([]byte(nil), payload...)
	return locator, nil
}

func (f *fakeStore) Fetch(_ context.Context, locator string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, ok := f.blobs[locator]
	if !ok {
		return nil, fmt.Errorf("fakeStore: %s not stored", locator)
	}
	return append([]byte(nil), blob...), nil
}

// Package sqlite provides a SQLite-backed ledger for single-node
// deployments that do not run against an external chain.
//
// The store is append-only: rows are inserted exactly once and never
// updated or deleted. The primary key on the certificate identifier makes
// concurrent registration of the same identifier resolve to exactly one
// winner.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/meigma/certledger/ledger"
)

// certificateRow is the gorm model backing a ledger record.
type certificateRow struct {
	ID             string `gorm:"primaryKey;size:128"`
	HolderName     string
	CourseName     string
	IssueDate      int64
	ContentLocator string `gorm:"size:128"`
	ContentDigest  string `gorm:"size:64"`
	CreatedAt      time.Time
}

func (certificateRow) TableName() string {
	return "certificates"
}

// Store is a SQLite-backed implementation of [ledger.Ledger].
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New opens (or creates) a ledger database under dataDir. An empty dataDir
// opens a shared in-memory database, useful for testing.
func New(dataDir string, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}

	var db *gorm.DB
	var err error
	gormCfg := &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
	if dataDir == "" {
		// cache=shared lets multiple connections see the same in-memory database
		db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open in-memory ledger: %w", err)
		}
	} else {
		if _, err := os.Stat(dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read data dir: %w", err)
			}
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		dbPath := filepath.Join(dataDir, "ledger.sqlite")
		connOpts := "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		db, err = gorm.Open(sqlite.Open(dbPath+"?"+connOpts), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open ledger database: %w", err)
		}
	}

	if err := db.AutoMigrate(&certificateRow{}); err != nil {
		return nil, fmt.Errorf("migrate ledger schema: %w", err)
	}

	s.db = db
	return s, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (s *Store) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.logger
}

// Register commits a record. Registering an identifier that is already
// bound returns [ledger.ErrAlreadyExists] and leaves the existing record
// untouched.
func (s *Store) Register(ctx context.Context, record ledger.Record) error {
	row := certificateRow{
		ID:             record.ID,
		HolderName:     record.HolderName,
		CourseName:     record.CourseName,
		IssueDate:      record.IssueDate,
		ContentLocator: record.ContentLocator,
		ContentDigest:  record.ContentDigest,
	}

	result := s.db.WithContext(ctx).Create(&row)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return fmt.Errorf("%w: %s", ledger.ErrAlreadyExists, record.ID)
		}
		return fmt.Errorf("%w: %s", ledger.ErrUnavailable, result.Error)
	}

	s.log().Debug("registered certificate", "id", record.ID, "locator", record.ContentLocator)
	return nil
}

// Lookup returns the record bound to id, or [ledger.ErrNotFound].
func (s *Store) Lookup(ctx context.Context, id string) (ledger.Record, error) {
	var row certificateRow
	result := s.db.WithContext(ctx).First(&row, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ledger.Record{}, fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
		}
		return ledger.Record{}, fmt.Errorf("%w: %s", ledger.ErrUnavailable, result.Error)
	}

	return ledger.Record{
		ID:             row.ID,
		HolderName:     row.HolderName,
		CourseName:     row.CourseName,
		IssueDate:      row.IssueDate,
		ContentLocator: row.ContentLocator,
		ContentDigest:  row.ContentDigest,
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isDuplicateKey reports whether err is a primary key violation. The gorm
// error translator covers most cases; the string check catches drivers
// that surface the raw sqlite message.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Package duckdb implements the query-execution core against an embedded
// DuckDB file: one connection, a denylist gate in front of it, a bounded
// executor with cooperative interrupt, and the projector/importer/validator
// operations callers see as tools.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sync/atomic"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/duckgate/duckgate/internal/query"
	"github.com/duckgate/duckgate/internal/storage"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Options struct {
	// QueryTimeout is the wall-clock deadline enforced per gated statement.
	QueryTimeout time.Duration
	// Store is the optional object store the importer can pull source
	// files from. Nil disables the object_store import source.
	Store storage.ObjectStore
	// SampleRows is the default row limit for Sample when the caller
	// passes none.
	SampleRows int
	Logger     *slog.Logger
}

// DB owns the single connection to one DuckDB file. All statement execution
// routes through its bounded executor; the handle is never shared with two
// in-flight statements.
type DB struct {
	path       string
	db         *sql.DB
	exec       *executor
	store      storage.ObjectStore
	sampleRows int
	logger     *slog.Logger
	closed     atomic.Bool
}

// Open opens the database at path, or synthesizes the sample dataset first
// when path is the reserved bootstrap identifier. A missing file at any
// other path is query.ErrNotFound; a file that exists but is not a valid
// database container is query.ErrOpenFailure wrapping the driver error.
func Open(path string, opts Options) (*DB, error) {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 60 * time.Second
	}
	if opts.SampleRows <= 0 {
		opts.SampleRows = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat database file: %w", err)
		}
		if path != query.BootstrapPath {
			return nil, fmt.Errorf("%w: database file %q", query.ErrNotFound, path)
		}
		if err := createSampleDatabase(path); err != nil {
			return nil, fmt.Errorf("bootstrap sample database: %w", err)
		}
		logger.Info("bootstrapped sample database", slog.String("path", path))
	}

	handle, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", query.ErrOpenFailure, err)
	}
	// One logical connection per gateway instance.
	handle.SetMaxOpenConns(1)
	if err := handle.PingContext(context.Background()); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("%w: %v", query.ErrOpenFailure, err)
	}

	d := &DB{
		path:       path,
		db:         handle,
		store:      opts.Store,
		sampleRows: opts.SampleRows,
		logger:     logger,
	}
	d.exec = newExecutor(handle, opts.QueryTimeout)
	return d, nil
}

// Close releases the handle. Any operation after Close fails fast with
// query.ErrClosed rather than silently no-opping.
func (d *DB) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	d.exec.stop()
	return d.db.Close()
}

func (d *DB) checkOpen() error {
	if d.closed.Load() {
		return fmt.Errorf("%w: %s", query.ErrClosed, d.path)
	}
	return nil
}

func validateIdentifier(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", query.ErrInvalidIdentifier, name)
	}
	return nil
}

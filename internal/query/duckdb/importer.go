package duckdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/duckgate/duckgate/internal/observability"
	"github.com/duckgate/duckgate/internal/query"
	"github.com/duckgate/duckgate/internal/storage"
)

// ImportSource selects where the importer reads the source file from.
type ImportSource string

const (
	SourceFilesystem  ImportSource = "filesystem"
	SourceObjectStore ImportSource = "object_store"
)

// Import bulk-loads a CSV or JSON file into a new table whose schema is
// inferred by the engine's reader. The statement runs through the bounded
// executor (the timeout applies) but deliberately not through the gate:
// CREATE is not a denied keyword, and the source path must not be able to
// trip the denylist scan.
func (d *DB) Import(ctx context.Context, format query.ImportFormat, table, source string, from ImportSource) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if err := validateIdentifier(table); err != nil {
		return err
	}

	var reader string
	switch query.ImportFormat(strings.ToLower(strings.TrimSpace(string(format)))) {
	case query.FormatCSV:
		reader = "read_csv"
	case query.FormatJSON:
		reader = "read_json"
	default:
		return fmt.Errorf("%w: %q (supported formats are csv and json)", query.ErrUnsupportedFormat, format)
	}

	localPath := source
	switch from {
	case SourceObjectStore:
		staged, cleanup, err := d.stageObject(ctx, source)
		if err != nil {
			return err
		}
		defer cleanup()
		localPath = staged
	case SourceFilesystem, "":
		if _, err := os.Stat(source); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %q", query.ErrNotFound, source)
			}
			return fmt.Errorf("stat import file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported import source %q", from)
	}

	statement := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s(%s)", table, reader, quoteString(localPath))
	if _, err := d.exec.execute(ctx, statement); err != nil {
		return fmt.Errorf("import into %q: %w", table, err)
	}
	observability.IncrementImports(string(query.ImportFormat(strings.ToLower(string(format)))))
	d.logger.Info("imported data",
		"table", table,
		"format", strings.ToLower(string(format)),
		"source", source,
	)
	return nil
}

// stageObject downloads an object-store source into a temp file the engine
// can read. The caller owns the cleanup.
func (d *DB) stageObject(ctx context.Context, key string) (string, func(), error) {
	if d.store == nil {
		return "", nil, fmt.Errorf("object store import source is not configured")
	}
	if _, err := d.store.Stat(ctx, key); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", nil, fmt.Errorf("%w: object %q", query.ErrNotFound, key)
		}
		return "", nil, fmt.Errorf("stat object %q: %w", key, err)
	}

	reader, err := d.store.Get(ctx, key)
	if err != nil {
		return "", nil, fmt.Errorf("get object %q: %w", key, err)
	}
	defer func() { _ = reader.Close() }()

	workDir, err := os.MkdirTemp("", "duckgate-import-")
	if err != nil {
		return "", nil, fmt.Errorf("create staging dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(workDir) }

	localPath := filepath.Join(workDir, filepath.Base(key))
	if err := writeFile(localPath, reader); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("stage object %q: %w", key, err)
	}
	return localPath, cleanup, nil
}

func quoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

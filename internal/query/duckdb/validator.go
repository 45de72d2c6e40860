package duckdb

import (
	"context"
	"fmt"
)

// IsValid asks the engine to plan the statement without executing it and
// collapses every planning failure to false. It never returns an error.
//
// This path deliberately bypasses the statement gate: a DELETE must be
// checkable for validity even though Execute would refuse to run it. Valid
// does not imply safe to execute.
func (d *DB) IsValid(ctx context.Context, sqlText string) bool {
	if d.checkOpen() != nil {
		return false
	}
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("EXPLAIN (FORMAT JSON) %s", sqlText))
	if err != nil {
		return false
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
	}
	return rows.Err() == nil
}

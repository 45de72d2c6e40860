// Package query holds the result shapes and error taxonomy shared by the
// execution core and its callers.
package query

import "time"

// BootstrapPath is the reserved database path that triggers synthetic
// sample-data creation on open instead of a not-found failure. It exists for
// self-contained demos and tests only and is matched by exact string
// equality.
const BootstrapPath = "test_sample_db.duckdb"

// Result is the uniform tabular shape returned for one statement. Rows are
// fully materialized except for insertions, where only RowsAffected is set.
type Result struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
	Duration     time.Duration
}

// ColumnDef describes one column of a table as reported by the engine's
// introspection pragma.
type ColumnDef struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	PrimaryKey bool   `json:"primary_key"`
}

// ColumnStats carries the per-column summary statistics. Fields that do not
// apply to a column's type are nil.
type ColumnStats struct {
	Column        string `json:"column"`
	Count         any    `json:"count"`
	CountDistinct any    `json:"count_distinct"`
	NullCount     any    `json:"null_count"`
	Min           any    `json:"min"`
	Max           any    `json:"max"`
	Avg           any    `json:"avg"`
	Std           any    `json:"std"`
	Q25           any    `json:"q25"`
	Q50           any    `json:"q50"`
	Q75           any    `json:"q75"`
	Mode          any    `json:"mode"`
}

// TableSchema bundles column descriptors, row count and statistics for one
// table. It is computed on demand and never cached.
type TableSchema struct {
	TableName  string        `json:"table_name"`
	Columns    []ColumnDef   `json:"columns"`
	RowCount   int64         `json:"row_count"`
	Statistics []ColumnStats `json:"statistics"`
}

// ImportFormat is a bulk-load source format accepted by the importer.
type ImportFormat string

const (
	FormatCSV  ImportFormat = "csv"
	FormatJSON ImportFormat = "json"
)

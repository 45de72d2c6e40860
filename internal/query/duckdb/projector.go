package duckdb

import (
	"context"
	"fmt"

	"github.com/duckgate/duckgate/internal/query"
)

const listTablesSQL = "SELECT table_name FROM information_schema.tables WHERE table_schema='main'"

// Positions in the PRAGMA table_info result. The remaining columns (cid,
// default value) are ignored.
const (
	tableInfoName    = 1
	tableInfoType    = 2
	tableInfoNotNull = 3
	tableInfoPK      = 5
)

// SUMMARIZE column order is a versioned contract with the engine: 11 fixed
// positions plus an optional trailing mode column. Fewer than 11 columns
// fails loudly instead of misassigning.
const summarizeMinColumns = 11

// ListTables returns the user tables of the primary schema in engine order.
func (d *DB) ListTables(ctx context.Context) ([]string, error) {
	result, err := d.Execute(ctx, listTablesSQL)
	if err != nil {
		return nil, err
	}
	tables := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		name, ok := row[0].(string)
		if !ok {
			return nil, fmt.Errorf("unexpected table name value %#v", row[0])
		}
		tables = append(tables, name)
	}
	return tables, nil
}

// Sample returns up to numRows rows of the table in engine order.
func (d *DB) Sample(ctx context.Context, table string, numRows int) (query.Result, error) {
	if err := validateIdentifier(table); err != nil {
		return query.Result{}, err
	}
	if numRows <= 0 {
		numRows = d.sampleRows
	}
	result, err := d.Execute(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, numRows))
	if err != nil {
		if isCatalogError(err) {
			return query.Result{}, fmt.Errorf("%w: %q: %v", query.ErrUnknownTable, table, err)
		}
		return query.Result{}, err
	}
	return result, nil
}

// SchemaAndStats assembles column descriptors, the row count and per-column
// summary statistics from three dependent introspection queries. It is
// computed on demand and never cached.
func (d *DB) SchemaAndStats(ctx context.Context, table string) (query.TableSchema, error) {
	if err := validateIdentifier(table); err != nil {
		return query.TableSchema{}, err
	}

	schemaResult, err := d.Execute(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		if isCatalogError(err) {
			return query.TableSchema{}, fmt.Errorf("%w: %q: %v", query.ErrUnknownTable, table, err)
		}
		return query.TableSchema{}, err
	}

	columns := make([]query.ColumnDef, 0, len(schemaResult.Rows))
	for _, row := range schemaResult.Rows {
		if len(row) <= tableInfoPK {
			return query.TableSchema{}, fmt.Errorf("table_info shape changed: got %d columns", len(row))
		}
		columns = append(columns, query.ColumnDef{
			Name:       asString(row[tableInfoName]),
			Type:       asString(row[tableInfoType]),
			NotNull:    asBool(row[tableInfoNotNull]),
			PrimaryKey: asBool(row[tableInfoPK]),
		})
	}

	countResult, err := d.Execute(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	if err != nil {
		return query.TableSchema{}, err
	}
	if len(countResult.Rows) != 1 || len(countResult.Rows[0]) != 1 {
		return query.TableSchema{}, fmt.Errorf("unexpected row count result shape")
	}
	rowCount, err := asInt64(countResult.Rows[0][0])
	if err != nil {
		return query.TableSchema{}, fmt.Errorf("row count: %w", err)
	}

	statsResult, err := d.Execute(ctx, fmt.Sprintf("SUMMARIZE %s", table))
	if err != nil {
		return query.TableSchema{}, err
	}

	stats := make([]query.ColumnStats, 0, len(statsResult.Rows))
	for _, row := range statsResult.Rows {
		if len(row) < summarizeMinColumns {
			return query.TableSchema{}, fmt.Errorf("summary shape changed: got %d columns, want at least %d", len(row), summarizeMinColumns)
		}
		stat := query.ColumnStats{
			Column:        asString(row[0]),
			Count:         row[1],
			CountDistinct: row[2],
			NullCount:     row[3],
			Min:           row[4],
			Max:           row[5],
			Avg:           row[6],
			Std:           row[7],
			Q25:           row[8],
			Q50:           row[9],
			Q75:           row[10],
		}
		if len(row) > summarizeMinColumns {
			stat.Mode = row[summarizeMinColumns]
		}
		stats = append(stats, stat)
	}

	return query.TableSchema{
		TableName:  table,
		Columns:    columns,
		RowCount:   rowCount,
		Statistics: stats,
	}, nil
}

func asString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case []byte:
		return string(typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func asBool(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case int64:
		return typed != 0
	case string:
		return typed == "true" || typed == "1"
	default:
		return false
	}
}

func asInt64(value any) (int64, error) {
	switch typed := value.(type) {
	case int64:
		return typed, nil
	case int32:
		return int64(typed), nil
	case int:
		return int64(typed), nil
	case uint64:
		return int64(typed), nil
	case float64:
		return int64(typed), nil
	default:
		return 0, fmt.Errorf("unexpected integer value %#v", value)
	}
}

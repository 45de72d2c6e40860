package duckdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/duckgate/duckgate/internal/query"
)

func TestListTablesStableAcrossCalls(t *testing.T) {
	gateway := openSample(t)

	first, err := gateway.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	second, err := gateway.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables() second call error = %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("table count changed across calls: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("table order changed across calls: %v vs %v", first, second)
		}
	}
}

func TestSampleReturnsRowsInEngineOrder(t *testing.T) {
	gateway := openSample(t)

	result, err := gateway.Sample(context.Background(), "books", 10)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if len(result.Rows) != 8 {
		t.Fatalf("rows = %d, want all 8 books", len(result.Rows))
	}
	if len(result.Columns) != 6 {
		t.Fatalf("columns = %v", result.Columns)
	}

	limited, err := gateway.Sample(context.Background(), "books", 3)
	if err != nil {
		t.Fatalf("Sample(3) error = %v", err)
	}
	if len(limited.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(limited.Rows))
	}
}

func TestSampleUnknownTable(t *testing.T) {
	gateway := openSample(t)

	_, err := gateway.Sample(context.Background(), "non_existent_table", 10)
	if !errors.Is(err, query.ErrUnknownTable) {
		t.Fatalf("Sample() error = %v, want ErrUnknownTable", err)
	}
}

func TestSampleRejectsInvalidIdentifier(t *testing.T) {
	gateway := openSample(t)

	for _, table := range []string{"books; DROP TABLE books", "a-b", "ta ble", "", "books'"} {
		_, err := gateway.Sample(context.Background(), table, 10)
		if !errors.Is(err, query.ErrInvalidIdentifier) {
			t.Fatalf("Sample(%q) error = %v, want ErrInvalidIdentifier", table, err)
		}
	}
}

func TestSchemaAndStatsBooks(t *testing.T) {
	gateway := openSample(t)

	schema, err := gateway.SchemaAndStats(context.Background(), "books")
	if err != nil {
		t.Fatalf("SchemaAndStats() error = %v", err)
	}
	if schema.TableName != "books" {
		t.Fatalf("TableName = %q", schema.TableName)
	}
	if schema.RowCount != 8 {
		t.Fatalf("RowCount = %d, want 8", schema.RowCount)
	}
	if len(schema.Columns) != 6 {
		t.Fatalf("columns = %d, want 6", len(schema.Columns))
	}

	want := map[string]bool{
		"book_id": true, "title": true, "author_id": true,
		"publication_year": true, "genre": true, "price": true,
	}
	for _, column := range schema.Columns {
		if !want[column.Name] {
			t.Fatalf("unexpected column %q", column.Name)
		}
	}

	var pk, notNull int
	for _, column := range schema.Columns {
		if column.PrimaryKey {
			pk++
		}
		if column.NotNull {
			notNull++
		}
	}
	if pk != 1 {
		t.Fatalf("primary key columns = %d, want 1", pk)
	}
	if notNull < 2 {
		t.Fatalf("not-null columns = %d, want at least book_id and title", notNull)
	}

	if len(schema.Statistics) != 6 {
		t.Fatalf("statistics rows = %d, want one per column", len(schema.Statistics))
	}
	statColumns := map[string]bool{}
	for _, stat := range schema.Statistics {
		statColumns[stat.Column] = true
	}
	for name := range want {
		if !statColumns[name] {
			t.Fatalf("statistics missing column %q", name)
		}
	}
}

func TestSchemaAndStatsUnknownTable(t *testing.T) {
	gateway := openSample(t)

	_, err := gateway.SchemaAndStats(context.Background(), "non_existent_table")
	if !errors.Is(err, query.ErrUnknownTable) {
		t.Fatalf("SchemaAndStats() error = %v, want ErrUnknownTable", err)
	}
}

func TestExecuteInsertAgainstEngine(t *testing.T) {
	gateway := openSample(t)

	result, err := gateway.Execute(context.Background(), "INSERT INTO authors (author_id, name, birth_year, country) VALUES (6, 'Ursula K. Le Guin', 1929, 'United States')")
	if err != nil {
		t.Fatalf("Execute(INSERT) error = %v", err)
	}
	if len(result.Rows) != 0 {
		t.Fatalf("insert materialized %d rows", len(result.Rows))
	}

	count, err := gateway.Execute(context.Background(), "SELECT COUNT(*) FROM authors")
	if err != nil {
		t.Fatalf("count after insert: %v", err)
	}
	n, err := asInt64(count.Rows[0][0])
	if err != nil || n != 6 {
		t.Fatalf("author count = %v (%v), want 6", count.Rows[0][0], err)
	}
}

func TestExecuteTimeoutLeavesConnectionUsable(t *testing.T) {
	t.Chdir(t.TempDir())
	gateway, err := Open(query.BootstrapPath, Options{QueryTimeout: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = gateway.Close() })

	start := time.Now()
	_, err = gateway.Execute(context.Background(), "SELECT COUNT(*) FROM range(100000000) a, range(100000) b")
	elapsed := time.Since(start)
	if !errors.Is(err, query.ErrTimeout) {
		t.Fatalf("Execute(slow) error = %v, want ErrTimeout", err)
	}
	if elapsed > 10*time.Second {
		t.Fatalf("timeout after %v, want roughly the 200ms deadline", elapsed)
	}

	result, err := gateway.Execute(context.Background(), "SELECT COUNT(*) FROM books")
	if err != nil {
		t.Fatalf("follow-up query after interrupt: %v", err)
	}
	n, err := asInt64(result.Rows[0][0])
	if err != nil || n != 8 {
		t.Fatalf("book count after interrupt = %v (%v)", result.Rows[0][0], err)
	}
}

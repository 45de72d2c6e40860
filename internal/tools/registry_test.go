package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/duckgate/duckgate/internal/query"
	"github.com/duckgate/duckgate/internal/query/duckdb"
)

type fakeGateway struct {
	tables     []string
	executeErr error
	lastSQL    string
	lastTable  string
	lastLimit  int
	imported   []string
}

func (f *fakeGateway) Execute(_ context.Context, sql string) (query.Result, error) {
	f.lastSQL = sql
	if f.executeErr != nil {
		return query.Result{}, f.executeErr
	}
	return query.Result{
		Columns:  []string{"n"},
		Rows:     [][]any{{int64(1)}},
		Duration: 5 * time.Millisecond,
	}, nil
}

func (f *fakeGateway) ListTables(_ context.Context) ([]string, error) {
	return f.tables, nil
}

func (f *fakeGateway) Sample(_ context.Context, table string, limit int) (query.Result, error) {
	f.lastTable = table
	f.lastLimit = limit
	return query.Result{Columns: []string{"a"}, Rows: [][]any{{"x"}}}, nil
}

func (f *fakeGateway) SchemaAndStats(_ context.Context, table string) (query.TableSchema, error) {
	return query.TableSchema{TableName: table, RowCount: 1}, nil
}

func (f *fakeGateway) IsValid(_ context.Context, sql string) bool {
	return sql == "SELECT 1"
}

func (f *fakeGateway) Import(_ context.Context, _ query.ImportFormat, table, _ string, _ duckdb.ImportSource) error {
	f.imported = append(f.imported, table)
	return nil
}

func TestNewRegistersBuiltinTools(t *testing.T) {
	registry := New(&fakeGateway{})

	want := []string{
		"describe_database",
		"execute_query",
		"get_sample_data",
		"get_table_schema",
		"get_tables",
		"import_data",
		"validate_query",
	}
	descriptors := registry.List()
	if len(descriptors) != len(want) {
		t.Fatalf("registered tools = %d, want %d", len(descriptors), len(want))
	}
	for i, descriptor := range descriptors {
		if descriptor.Name != want[i] {
			t.Fatalf("tool[%d] = %q, want %q", i, descriptor.Name, want[i])
		}
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	registry := New(&fakeGateway{})
	err := registry.Register(Tool{
		Name:    "execute_query",
		Handler: func(context.Context, json.RawMessage) (any, error) { return nil, nil },
	})
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	registry := New(&fakeGateway{})
	_, err := registry.Dispatch(context.Background(), "no_such_tool", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("Dispatch() error = %v, want ErrUnknownTool", err)
	}
}

func TestDispatchExecuteQuery(t *testing.T) {
	gateway := &fakeGateway{}
	registry := New(gateway)

	payload, err := registry.Dispatch(context.Background(), "execute_query", json.RawMessage(`{"query": "SELECT 1"}`))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	result, ok := payload.(executeQueryResult)
	if !ok {
		t.Fatalf("payload type = %T", payload)
	}
	if len(result.Rows) != 1 || result.DurationMs != 5 {
		t.Fatalf("result = %+v", result)
	}
	if gateway.lastSQL != "SELECT 1" {
		t.Fatalf("gateway saw %q", gateway.lastSQL)
	}
}

func TestDispatchExecuteQueryRequiresQuery(t *testing.T) {
	registry := New(&fakeGateway{})
	_, err := registry.Dispatch(context.Background(), "execute_query", json.RawMessage(`{"query": "  "}`))
	if !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("Dispatch() error = %v, want ErrInvalidArguments", err)
	}
}

func TestDispatchPreservesGatewayErrors(t *testing.T) {
	gateway := &fakeGateway{executeErr: query.ErrForbidden}
	registry := New(gateway)

	_, err := registry.Dispatch(context.Background(), "execute_query", json.RawMessage(`{"query": "DELETE FROM t"}`))
	if !errors.Is(err, query.ErrForbidden) {
		t.Fatalf("Dispatch() error = %v, want ErrForbidden passed through", err)
	}
}

func TestDispatchSampleDefaults(t *testing.T) {
	gateway := &fakeGateway{}
	registry := New(gateway)

	if _, err := registry.Dispatch(context.Background(), "get_sample_data", json.RawMessage(`{"table_name": "books"}`)); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if gateway.lastTable != "books" || gateway.lastLimit != 0 {
		t.Fatalf("gateway saw table=%q limit=%d", gateway.lastTable, gateway.lastLimit)
	}
}

func TestDispatchDescribeDatabase(t *testing.T) {
	gateway := &fakeGateway{tables: []string{"authors", "books"}}
	registry := New(gateway)

	payload, err := registry.Dispatch(context.Background(), "describe_database", nil)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	response, ok := payload.(map[string]any)
	if !ok {
		t.Fatalf("payload type = %T", payload)
	}
	if response["table_count"] != 2 {
		t.Fatalf("table_count = %v", response["table_count"])
	}
	schemas, ok := response["tables"].(map[string]query.TableSchema)
	if !ok || len(schemas) != 2 {
		t.Fatalf("tables = %#v", response["tables"])
	}
}

func TestDispatchValidateQuery(t *testing.T) {
	registry := New(&fakeGateway{})

	payload, err := registry.Dispatch(context.Background(), "validate_query", json.RawMessage(`{"query": "SELECT 1"}`))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if payload.(map[string]any)["valid"] != true {
		t.Fatalf("payload = %#v", payload)
	}

	payload, err = registry.Dispatch(context.Background(), "validate_query", json.RawMessage(`{"query": "NOT SQL"}`))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if payload.(map[string]any)["valid"] != false {
		t.Fatalf("payload = %#v", payload)
	}
}

func TestDispatchImportData(t *testing.T) {
	gateway := &fakeGateway{}
	registry := New(gateway)

	payload, err := registry.Dispatch(context.Background(), "import_data", json.RawMessage(`{"file_type": "csv", "table_name": "staged", "file_path": "/tmp/data.csv"}`))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if payload.(map[string]any)["created"] != true {
		t.Fatalf("payload = %#v", payload)
	}
	if len(gateway.imported) != 1 || gateway.imported[0] != "staged" {
		t.Fatalf("imported = %v", gateway.imported)
	}
}

func TestImportDataRequiresImporterRole(t *testing.T) {
	registry := New(&fakeGateway{})
	tool, ok := registry.Lookup("import_data")
	if !ok {
		t.Fatal("import_data not registered")
	}
	if len(tool.RequiredRoles) != 2 {
		t.Fatalf("required roles = %v, want query_user and importer", tool.RequiredRoles)
	}
}

func TestDispatchMalformedArguments(t *testing.T) {
	registry := New(&fakeGateway{})
	_, err := registry.Dispatch(context.Background(), "execute_query", json.RawMessage(`{"query": 42}`))
	if !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("Dispatch() error = %v, want ErrInvalidArguments", err)
	}
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/duckgate/duckgate/internal/auth"
	"github.com/duckgate/duckgate/internal/query"
	"github.com/duckgate/duckgate/internal/query/duckdb"
)

type executeQueryArgs struct {
	Query string `json:"query"`
}

type executeQueryResult struct {
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	RowsAffected int64    `json:"rows_affected"`
	DurationMs   int64    `json:"duration_ms"`
}

type tableArgs struct {
	TableName string `json:"table_name"`
}

type sampleArgs struct {
	TableName string `json:"table_name"`
	NumRows   int    `json:"num_rows"`
}

type validateArgs struct {
	Query string `json:"query"`
}

type importArgs struct {
	FileType  string `json:"file_type"`
	TableName string `json:"table_name"`
	FilePath  string `json:"file_path"`
	Source    string `json:"source"`
}

func builtinTools(gateway Gateway) []Tool {
	queryUser := []string{auth.RoleQueryUser}
	return []Tool{
		{
			Name:          "execute_query",
			Description:   "Run a SQL statement through the gate and bounded executor.",
			RequiredRoles: queryUser,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var request executeQueryArgs
				if err := decodeArgs(args, &request); err != nil {
					return nil, err
				}
				if strings.TrimSpace(request.Query) == "" {
					return nil, fmt.Errorf("%w: query is required", ErrInvalidArguments)
				}
				result, err := gateway.Execute(ctx, request.Query)
				if err != nil {
					return nil, err
				}
				return executeQueryResult{
					Columns:      result.Columns,
					Rows:         result.Rows,
					RowsAffected: result.RowsAffected,
					DurationMs:   result.Duration.Milliseconds(),
				}, nil
			},
		},
		{
			Name:          "get_tables",
			Description:   "List the user tables in the attached database.",
			RequiredRoles: queryUser,
			Handler: func(ctx context.Context, _ json.RawMessage) (any, error) {
				tables, err := gateway.ListTables(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]any{"tables": tables}, nil
			},
		},
		{
			Name:          "get_table_schema",
			Description:   "Describe one table's columns, row count and per-column statistics.",
			RequiredRoles: queryUser,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var request tableArgs
				if err := decodeArgs(args, &request); err != nil {
					return nil, err
				}
				if request.TableName == "" {
					return nil, fmt.Errorf("%w: table_name is required", ErrInvalidArguments)
				}
				return gateway.SchemaAndStats(ctx, request.TableName)
			},
		},
		{
			Name:          "get_sample_data",
			Description:   "Fetch the first rows of a table in engine order.",
			RequiredRoles: queryUser,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var request sampleArgs
				if err := decodeArgs(args, &request); err != nil {
					return nil, err
				}
				if request.TableName == "" {
					return nil, fmt.Errorf("%w: table_name is required", ErrInvalidArguments)
				}
				result, err := gateway.Sample(ctx, request.TableName, request.NumRows)
				if err != nil {
					return nil, err
				}
				return map[string]any{"columns": result.Columns, "rows": result.Rows}, nil
			},
		},
		{
			Name:          "describe_database",
			Description:   "Describe every user table, including columns and statistics.",
			RequiredRoles: queryUser,
			Handler: func(ctx context.Context, _ json.RawMessage) (any, error) {
				tables, err := gateway.ListTables(ctx)
				if err != nil {
					return nil, err
				}
				schemas := make(map[string]query.TableSchema, len(tables))
				for _, table := range tables {
					schema, err := gateway.SchemaAndStats(ctx, table)
					if err != nil {
						return nil, fmt.Errorf("describe table %q: %w", table, err)
					}
					schemas[table] = schema
				}
				return map[string]any{"table_count": len(tables), "tables": schemas}, nil
			},
		},
		{
			Name:          "validate_query",
			Description:   "Check whether a statement parses and plans, without executing it.",
			RequiredRoles: queryUser,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var request validateArgs
				if err := decodeArgs(args, &request); err != nil {
					return nil, err
				}
				if strings.TrimSpace(request.Query) == "" {
					return nil, fmt.Errorf("%w: query is required", ErrInvalidArguments)
				}
				return map[string]any{"valid": gateway.IsValid(ctx, request.Query)}, nil
			},
		},
		{
			Name:          "import_data",
			Description:   "Bulk-load a CSV or JSON file into a new table.",
			RequiredRoles: []string{auth.RoleQueryUser, auth.RoleImporter},
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var request importArgs
				if err := decodeArgs(args, &request); err != nil {
					return nil, err
				}
				if request.TableName == "" || request.FilePath == "" {
					return nil, fmt.Errorf("%w: table_name and file_path are required", ErrInvalidArguments)
				}
				err := gateway.Import(ctx, query.ImportFormat(request.FileType), request.TableName, request.FilePath, duckdb.ImportSource(request.Source))
				if err != nil {
					return nil, err
				}
				return map[string]any{"created": true, "table_name": request.TableName}, nil
			},
		},
	}
}

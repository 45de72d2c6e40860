package duckgatectl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("duckgatectl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "DuckGate API base URL")
	apiKey := fs.String("api-key", defaults.APIKey, "API key for authenticated requests")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 10*time.Second), "HTTP timeout (e.g. 10s)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	command := strings.TrimSpace(fs.Arg(0))
	rest := fs.Args()[1:]

	method := http.MethodPost
	path := ""
	var payload any
	switch command {
	case "health":
		method, path = http.MethodGet, "/v1/health"
	case "ready":
		method, path = http.MethodGet, "/v1/ready"
	case "tools":
		method, path = http.MethodGet, "/v1/tools"
	case "query":
		if len(rest) != 1 {
			_, _ = fmt.Fprintln(stderr, "usage: duckgatectl query <sql>")
			return 2
		}
		path = "/v1/tools/execute_query"
		payload = map[string]any{"query": rest[0]}
	case "tables":
		path = "/v1/tools/get_tables"
	case "schema":
		if len(rest) != 1 {
			_, _ = fmt.Fprintln(stderr, "usage: duckgatectl schema <table>")
			return 2
		}
		path = "/v1/tools/get_table_schema"
		payload = map[string]any{"table_name": rest[0]}
	case "sample":
		if len(rest) < 1 || len(rest) > 2 {
			_, _ = fmt.Fprintln(stderr, "usage: duckgatectl sample <table> [rows]")
			return 2
		}
		body := map[string]any{"table_name": rest[0]}
		if len(rest) == 2 {
			rows, err := strconv.Atoi(rest[1])
			if err != nil {
				_, _ = fmt.Fprintf(stderr, "invalid row count %q\n", rest[1])
				return 2
			}
			body["num_rows"] = rows
		}
		path = "/v1/tools/get_sample_data"
		payload = body
	case "describe":
		path = "/v1/tools/describe_database"
	case "validate":
		if len(rest) != 1 {
			_, _ = fmt.Fprintln(stderr, "usage: duckgatectl validate <sql>")
			return 2
		}
		path = "/v1/tools/validate_query"
		payload = map[string]any{"query": rest[0]}
	case "import":
		if len(rest) < 3 || len(rest) > 4 {
			_, _ = fmt.Fprintln(stderr, "usage: duckgatectl import <csv|json> <table> <path> [filesystem|object_store]")
			return 2
		}
		body := map[string]any{"file_type": rest[0], "table_name": rest[1], "file_path": rest[2]}
		if len(rest) == 4 {
			body["source"] = rest[3]
		}
		path = "/v1/tools/import_data"
		payload = body
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}

	endpoint := strings.TrimRight(*baseURL, "/") + path
	code, responseBody, err := doRequest(ctx, client, method, endpoint, *apiKey, payload)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}

	if code >= 400 {
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", code, strings.TrimSpace(string(responseBody)))
		return 1
	}

	if pretty, ok := prettyJSON(responseBody); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
		return 0
	}
	if len(responseBody) > 0 {
		_, _ = fmt.Fprintln(stdout, string(responseBody))
	}
	return 0
}

func doRequest(ctx context.Context, client *http.Client, method, url, apiKey string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(apiKey) != "" {
		req.Header.Set("X-API-Key", strings.TrimSpace(apiKey))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, responseBody, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: duckgatectl [flags] <command>")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health                              GET /v1/health")
	_, _ = fmt.Fprintln(w, "  ready                               GET /v1/ready")
	_, _ = fmt.Fprintln(w, "  tools                               GET /v1/tools")
	_, _ = fmt.Fprintln(w, "  query <sql>                         run a statement")
	_, _ = fmt.Fprintln(w, "  tables                              list tables")
	_, _ = fmt.Fprintln(w, "  schema <table>                      table schema and statistics")
	_, _ = fmt.Fprintln(w, "  sample <table> [rows]               first rows of a table")
	_, _ = fmt.Fprintln(w, "  describe                            describe every table")
	_, _ = fmt.Fprintln(w, "  validate <sql>                      check a statement without running it")
	_, _ = fmt.Fprintln(w, "  import <fmt> <table> <path> [src]   bulk-load csv or json")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}

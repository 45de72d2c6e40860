package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/duckgate/duckgate/internal/observability"
	"github.com/duckgate/duckgate/internal/query"
)

// runner is the slice of *sql.DB the executor needs. Tests substitute a
// sqlmock-backed handle.
type runner interface {
	QueryContext(ctx context.Context, sql string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, sql string, args ...any) (sql.Result, error)
}

type job struct {
	ctx   context.Context
	sql   string
	reply chan jobResult
}

type jobResult struct {
	result query.Result
	err    error
}

// executor runs statements on one long-lived worker goroutine. Calls are
// serialized structurally by the worker; the caller blocks on the reply
// channel up to the configured timeout, and on expiry cancels the job's
// execution context, which the driver translates into an interrupt on the
// in-flight engine operation. The worker is never force-killed: it keeps the
// single-flight slot until the engine call unwinds, so the connection stays
// safe to reuse.
type executor struct {
	db      runner
	timeout time.Duration
	jobs    chan *job
	done    chan struct{}
}

func newExecutor(db runner, timeout time.Duration) *executor {
	e := &executor{
		db:      db,
		timeout: timeout,
		jobs:    make(chan *job),
		done:    make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *executor) stop() {
	close(e.done)
}

// execute runs one already-gated statement under the wall-clock deadline.
func (e *executor) execute(ctx context.Context, sqlText string) (query.Result, error) {
	execCtx, cancel := context.WithCancel(context.Background())
	j := &job{ctx: execCtx, sql: sqlText, reply: make(chan jobResult, 1)}

	select {
	case e.jobs <- j:
	case <-e.done:
		cancel()
		return query.Result{}, query.ErrClosed
	case <-ctx.Done():
		cancel()
		return query.Result{}, ctx.Err()
	}

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-j.reply:
		cancel()
		return res.result, res.err
	case <-timer.C:
		// Interrupt before reporting the timeout; the worker observes the
		// cancellation, unwinds, and releases the slot for the next call.
		cancel()
		observability.IncrementInterrupts()
		return query.Result{}, fmt.Errorf("%w: query exceeded timeout of %s and was interrupted", query.ErrTimeout, e.timeout)
	case <-ctx.Done():
		cancel()
		observability.IncrementInterrupts()
		return query.Result{}, ctx.Err()
	}
}

func (e *executor) run() {
	for {
		select {
		case <-e.done:
			return
		case j := <-e.jobs:
			j.reply <- e.runJob(j)
		}
	}
}

func (e *executor) runJob(j *job) jobResult {
	start := time.Now()

	// Insertions may not produce a meaningful row set; do not fetch.
	if isInsert(j.sql) {
		res, err := e.db.ExecContext(j.ctx, j.sql)
		if err != nil {
			return jobResult{err: fmt.Errorf("execute statement: %w", err)}
		}
		affected, err := res.RowsAffected()
		if err != nil {
			affected = 0
		}
		return jobResult{result: query.Result{RowsAffected: affected, Duration: time.Since(start)}}
	}

	rows, err := e.db.QueryContext(j.ctx, j.sql)
	if err != nil {
		return jobResult{err: fmt.Errorf("execute statement: %w", err)}
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return jobResult{err: fmt.Errorf("statement columns: %w", err)}
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return jobResult{err: fmt.Errorf("scan row: %w", err)}
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return jobResult{err: fmt.Errorf("iterate rows: %w", err)}
	}

	return jobResult{result: query.Result{
		Columns:  columns,
		Rows:     resultRows,
		Duration: time.Since(start),
	}}
}

func isInsert(sqlText string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sqlText)), "INSERT")
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

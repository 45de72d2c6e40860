package duckdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/duckgate/duckgate/internal/gate"
	"github.com/duckgate/duckgate/internal/observability"
	"github.com/duckgate/duckgate/internal/query"
)

// Execute runs a free-form statement: denylist gate first (before the
// connection is touched), then the bounded executor. Denied statements fail
// with query.ErrForbidden naming the matched keywords and never reach the
// engine.
func (d *DB) Execute(ctx context.Context, sqlText string) (query.Result, error) {
	if err := d.checkOpen(); err != nil {
		return query.Result{}, err
	}

	if decision := gate.Classify(sqlText); !decision.Allowed {
		observability.ObserveQuery(observability.OutcomeDenied, 0)
		return query.Result{}, fmt.Errorf("%w: %s", query.ErrForbidden, strings.Join(decision.Keywords, ", "))
	}

	start := time.Now()
	result, err := d.exec.execute(ctx, sqlText)
	elapsed := time.Since(start)
	switch {
	case err == nil:
		observability.ObserveQuery(observability.OutcomeOK, elapsed)
	case errors.Is(err, query.ErrTimeout):
		observability.ObserveQuery(observability.OutcomeTimeout, elapsed)
		d.logger.Warn("query interrupted on timeout", "sql_bytes", len(sqlText))
	default:
		observability.ObserveQuery(observability.OutcomeError, elapsed)
	}
	return result, err
}

// isCatalogError reports whether the engine failed because a referenced
// relation is absent from the catalog.
func isCatalogError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Catalog Error")
}

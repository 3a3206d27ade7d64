package testutil

import (
	"context"
	"sync"

	"github.com/mik629/ktorm/internal/expr"
	"github.com/mik629/ktorm/internal/rowset"
)

// Executor is the statement executor surface wrapped by CountingDatabase.
type Executor interface {
	FormatExpression(q expr.QueryExpression, beautify bool) (string, []any, error)
	ExecuteQuery(ctx context.Context, q expr.QueryExpression) (*rowset.RowSet, error)
}

// CountingDatabase records every statement executed through it.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type CountingDatabase struct {
	inner Executor

	mu       sync.Mutex
	executed []expr.QueryExpression
	formats  int
}

// NewCountingDatabase wraps inner.
func NewCountingDatabase(inner Executor) *CountingDatabase {
	return &CountingDatabase{inner: inner}
}

// FormatExpression delegates to the wrapped executor.
func (d *CountingDatabase) FormatExpression(q expr.QueryExpression, beautify bool) (string, []any, error) {
	d.mu.Lock()
	d.formats++
	d.mu.Unlock()
	return d.inner.FormatExpression(q, beautify)
}

// ExecuteQuery records q and delegates to the wrapped executor.
func (d *CountingDatabase) ExecuteQuery(ctx context.Context, q expr.QueryExpression) (*rowset.RowSet, error) {
	d.mu.Lock()
	d.executed = append(d.executed, q)
	d.mu.Unlock()
	return d.inner.ExecuteQuery(ctx, q)
}

// Executions returns the number of statements executed so far.
func (d *CountingDatabase) Executions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.executed)
}

// Executed returns the executed expressions in order.
func (d *CountingDatabase) Executed() []expr.QueryExpression {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]expr.QueryExpression(nil), d.executed...)
}

// Formats returns the number of FormatExpression calls so far.
func (d *CountingDatabase) Formats() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.formats
}

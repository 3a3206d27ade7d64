package dsl

import (
	"context"
	"fmt"

	"github.com/mik629/ktorm/internal/expr"
	"github.com/mik629/ktorm/internal/rowset"
)

// SQL returns the beautified SQL text of the Query and its parameters.
func (q *Query) SQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.statement == nil {
		sql, params, err := q.db.FormatExpression(q.expression, true)
		if err != nil {
			return "", nil, fmt.Errorf("format query: %w", err)
		}
		q.statement = &statement{sql: sql, params: params}
	}
	return q.statement.sql, append([]any(nil), q.statement.params...), nil
}

// RowSet executes the Query on first use and returns its rows.
func (q *Query) RowSet(ctx context.Context) (*rowset.RowSet, error) {
	if q.err != nil {
		return nil, q.err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rowSetLocked(ctx)
}

func (q *Query) rowSetLocked(ctx context.Context) (*rowset.RowSet, error) {
	if q.rowSet != nil {
		return q.rowSet, nil
	}
	rs, err := q.db.ExecuteQuery(ctx, q.expression)
	if err != nil {
		return nil, err
	}
	q.rowSet = rs
	return rs, nil
}

// TotalRecords returns the number of rows the Query matches ignoring its
// pagination.
//
// Without pagination this is the size of the row set. With pagination a
// separate count statement is executed, so the result reflects every
// matching row even though RowSet only holds one page.
func (q *Query) TotalRecords(ctx context.Context) (int, error) {
	if q.err != nil {
		return 0, q.err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.total != nil {
		return *q.total, nil
	}

	var total int
	if !expr.HasPagination(q.expression) {
		rs, err := q.rowSetLocked(ctx)
		if err != nil {
			return 0, err
		}
		total = rs.Len()
	} else {
		n, err := q.countRecords(ctx)
		if err != nil {
			return 0, err
		}
		total = n
	}

	q.total = &total
	return total, nil
}

func (q *Query) countRecords(ctx context.Context) (int, error) {
	count, err := expr.ToCountExpression(q.expression)
	if err != nil {
		return 0, err
	}

	rs, err := q.db.ExecuteQuery(ctx, count)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}

	row, ok := rs.Row(0)
	if !ok {
		sql, _, _ := q.db.FormatExpression(count, false)
		return 0, expr.NewEmptyCountResultError(sql)
	}
	n, ok := rowset.ToInt64(row.At(0))
	if !ok {
		return 0, fmt.Errorf("count records: unexpected count value %v (%T)", row.At(0), row.At(0))
	}
	return int(n), nil
}

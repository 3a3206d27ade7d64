package dsl

import (
	"context"

	"github.com/mik629/ktorm/internal/expr"
	"github.com/mik629/ktorm/internal/rowset"
)

// Database renders and executes expression trees. *store.Store implements it.
type Database interface {
	// FormatExpression renders q to SQL text and its ordered parameters.
	FormatExpression(q expr.QueryExpression, beautify bool) (string, []any, error)

	// ExecuteQuery runs q and returns its materialized result.
	ExecuteQuery(ctx context.Context, q expr.QueryExpression) (*rowset.RowSet, error)
}

// Source is the FROM part of a query under construction.
type Source struct {
	db     Database
	source expr.QuerySource
}

// From starts a query over source, usually a table.
func From(db Database, source expr.QuerySource) *Source {
	return &Source{db: db, source: source}
}

// Source returns the underlying source expression.
func (s *Source) Source() expr.QuerySource {
	return s.source
}

// InnerJoin joins right on condition.
func (s *Source) InnerJoin(right expr.QuerySource, on expr.ScalarExpression) *Source {
	return s.join(expr.InnerJoin, right, on)
}

// LeftJoin left-outer-joins right on condition.
func (s *Source) LeftJoin(right expr.QuerySource, on expr.ScalarExpression) *Source {
	return s.join(expr.LeftJoin, right, on)
}

// RightJoin right-outer-joins right on condition.
func (s *Source) RightJoin(right expr.QuerySource, on expr.ScalarExpression) *Source {
	return s.join(expr.RightJoin, right, on)
}

// CrossJoin forms the cartesian product with right.
func (s *Source) CrossJoin(right expr.QuerySource) *Source {
	return s.join(expr.CrossJoin, right, nil)
}

func (s *Source) join(t expr.JoinType, right expr.QuerySource, on expr.ScalarExpression) *Source {
	return &Source{db: s.db, source: expr.Join(t, s.source, right, on)}
}

// Select builds a query returning columns. No columns selects all of them.
func (s *Source) Select(columns ...expr.ColumnDeclaring) *Query {
	return NewQuery(s.db, expr.NewSelect(s.source, columns...))
}

// SelectDistinct is Select with duplicate rows removed.
func (s *Source) SelectDistinct(columns ...expr.ColumnDeclaring) *Query {
	return NewQuery(s.db, expr.NewSelectDistinct(s.source, columns...))
}

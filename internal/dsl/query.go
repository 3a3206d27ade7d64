package dsl

import (
	"fmt"
	"sync"

	"github.com/mik629/ktorm/internal/expr"
	"github.com/mik629/ktorm/internal/rowset"
)

// Query is an expression tree bound to a database.
//
// A Query is immutable apart from its private caches and is safe for
// concurrent use. It must not be copied; always pass *Query.
type Query struct {
	db         Database
	expression expr.QueryExpression
	err        error

	mu        sync.Mutex
	statement *statement
	rowSet    *rowset.RowSet
	total     *int
}

type statement struct {
	sql    string
	params []any
}

// NewQuery binds an existing expression tree to db.
func NewQuery(db Database, expression expr.QueryExpression) *Query {
	if expression == nil {
		return &Query{db: db, err: fmt.Errorf("nil query expression")}
	}
	return &Query{db: db, expression: expression}
}

// Expression returns the tree this Query executes. For a failed Query it
// is the last tree built before the failure.
func (q *Query) Expression() expr.QueryExpression {
	return q.expression
}

// Database returns the database the Query is bound to.
func (q *Query) Database() Database {
	return q.db
}

// Err returns the error of the first failed transformation, if any.
func (q *Query) Err() error {
	return q.err
}

// derive applies fn to the tree and wraps the result in a fresh Query with
// empty caches. A failed Query is returned as is.
func (q *Query) derive(fn func(expr.QueryExpression) (expr.QueryExpression, error)) *Query {
	if q.err != nil {
		return q
	}
	next, err := fn(q.expression)
	if err != nil {
		return &Query{db: q.db, expression: q.expression, err: err}
	}
	return &Query{db: q.db, expression: next}
}

// Where filters the rows of a select. Fails with an invalid-shape error on
// a union.
func (q *Query) Where(condition expr.ScalarExpression) *Query {
	return q.derive(func(e expr.QueryExpression) (expr.QueryExpression, error) {
		return expr.WithWhere(e, condition)
	})
}

// WhereWithConditions lets build append any number of predicates and
// filters by their conjunction. When build appends nothing the receiver is
// returned unchanged.
//
//	q.WhereWithConditions(func(c *[]expr.ScalarExpression) {
//	    if minSalary > 0 {
//	        *c = append(*c, expr.Gte(salary, minSalary))
//	    }
//	})
func (q *Query) WhereWithConditions(build func(conditions *[]expr.ScalarExpression)) *Query {
	return q.whereWith(build, expr.CombineConditions)
}

// WhereWithOrConditions is WhereWithConditions combining with OR.
func (q *Query) WhereWithOrConditions(build func(conditions *[]expr.ScalarExpression)) *Query {
	return q.whereWith(build, expr.CombineOrConditions)
}

func (q *Query) whereWith(build func(*[]expr.ScalarExpression), combine func([]expr.ScalarExpression) expr.ScalarExpression) *Query {
	if q.err != nil {
		return q
	}
	var conditions []expr.ScalarExpression
	build(&conditions)
	if len(conditions) == 0 {
		return q
	}
	return q.Where(combine(conditions))
}

// GroupBy groups the rows of a select. Fails with an invalid-shape error
// on a union.
func (q *Query) GroupBy(columns ...expr.ScalarExpression) *Query {
	return q.derive(func(e expr.QueryExpression) (expr.QueryExpression, error) {
		return expr.WithGroupBy(e, columns...)
	})
}

// Having filters groups. Fails with an invalid-shape error on a union.
func (q *Query) Having(condition expr.ScalarExpression) *Query {
	return q.derive(func(e expr.QueryExpression) (expr.QueryExpression, error) {
		return expr.WithHaving(e, condition)
	})
}

// OrderBy sets the result ordering. On a union the orderings must match
// aliased columns of the left-most select and are rewritten to the alias;
// an unmatched ordering fails with an unresolved-reference error.
func (q *Query) OrderBy(orders ...expr.OrderByExpression) *Query {
	return q.derive(func(e expr.QueryExpression) (expr.QueryExpression, error) {
		return expr.WithOrderBy(e, orders...)
	})
}

// Limit paginates the result. Limit(0, 0) returns the receiver unchanged.
func (q *Query) Limit(offset, limit int) *Query {
	if q.err == nil && offset == 0 && limit == 0 {
		return q
	}
	return q.derive(func(e expr.QueryExpression) (expr.QueryExpression, error) {
		return expr.WithLimit(e, offset, limit)
	})
}

// Union combines the rows of q and right, removing duplicates.
func (q *Query) Union(right *Query) *Query {
	return q.union(right, false)
}

// UnionAll combines the rows of q and right, keeping duplicates.
func (q *Query) UnionAll(right *Query) *Query {
	return q.union(right, true)
}

func (q *Query) union(right *Query, all bool) *Query {
	if right.err != nil && q.err == nil {
		return &Query{db: q.db, expression: q.expression, err: right.err}
	}
	return q.derive(func(e expr.QueryExpression) (expr.QueryExpression, error) {
		return expr.NewUnion(e, right.expression, all), nil
	})
}

// String returns the single-line SQL of the Query, or the error text.
func (q *Query) String() string {
	if q.err != nil {
		return "error: " + q.err.Error()
	}
	sql, _, err := q.db.FormatExpression(q.expression, false)
	if err != nil {
		return "error: " + err.Error()
	}
	return sql
}

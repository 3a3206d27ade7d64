package expr

import (
	"fmt"
	"slices"
)

// WithWhere returns a copy of q with its filter set to condition.
// Fails with ErrCodeInvalidShape on a union root.
func WithWhere(q QueryExpression, condition ScalarExpression) (QueryExpression, error) {
	switch query := q.(type) {
	case *SelectExpression:
		c := *query
		c.Where = condition
		return &c, nil
	case *UnionExpression:
		return nil, NewInvalidShapeError("where", q)
	default:
		return nil, newUnsupportedError(q)
	}
}

// WithGroupBy returns a copy of q grouped by columns.
// Fails with ErrCodeInvalidShape on a union root.
func WithGroupBy(q QueryExpression, columns ...ScalarExpression) (QueryExpression, error) {
	switch query := q.(type) {
	case *SelectExpression:
		c := *query
		c.GroupBy = slices.Clone(columns)
		return &c, nil
	case *UnionExpression:
		return nil, NewInvalidShapeError("group by", q)
	default:
		return nil, newUnsupportedError(q)
	}
}

// WithHaving returns a copy of q with its post-grouping filter set.
// Fails with ErrCodeInvalidShape on a union root.
func WithHaving(q QueryExpression, condition ScalarExpression) (QueryExpression, error) {
	switch query := q.(type) {
	case *SelectExpression:
		c := *query
		c.Having = condition
		return &c, nil
	case *UnionExpression:
		return nil, NewInvalidShapeError("having", q)
	default:
		return nil, newUnsupportedError(q)
	}
}

// WithOrderBy returns a copy of q ordered by orders.
//
// On a select root the orderings are assigned as given. On a union root
// each ordering is first resolved against the declared output aliases of
// the left-most select branch (see ResolveUnionOrderBy).
func WithOrderBy(q QueryExpression, orders ...OrderByExpression) (QueryExpression, error) {
	switch query := q.(type) {
	case *SelectExpression:
		c := *query
		c.OrderBy = slices.Clone(orders)
		return &c, nil
	case *UnionExpression:
		resolved, err := ResolveUnionOrderBy(query, orders)
		if err != nil {
			return nil, err
		}
		c := *query
		c.OrderBy = resolved
		return &c, nil
	default:
		return nil, newUnsupportedError(q)
	}
}

// WithLimit returns a copy of q paginated by offset and limit.
//
// (0, 0) is a no-op and returns q itself. A zero limit with a positive
// offset skips rows without bounding the result size.
func WithLimit(q QueryExpression, offset, limit int) (QueryExpression, error) {
	if offset < 0 || limit < 0 {
		return nil, &QueryError{
			Code:    ErrCodeInvalidArgument,
			Message: fmt.Sprintf("offset and limit must be non-negative (offset=%d, limit=%d)", offset, limit),
		}
	}
	if offset == 0 && limit == 0 {
		return q, nil
	}

	switch query := q.(type) {
	case *SelectExpression:
		c := *query
		c.Offset, c.Limit = offset, limit
		return &c, nil
	case *UnionExpression:
		c := *query
		c.Offset, c.Limit = offset, limit
		return &c, nil
	default:
		return nil, newUnsupportedError(q)
	}
}

// Pagination returns the offset and limit of q.
func Pagination(q QueryExpression) (offset, limit int) {
	switch query := q.(type) {
	case *SelectExpression:
		return query.Offset, query.Limit
	case *UnionExpression:
		return query.Offset, query.Limit
	default:
		return 0, 0
	}
}

// HasPagination reports whether q carries pagination bounds.
func HasPagination(q QueryExpression) bool {
	offset, limit := Pagination(q)
	return offset != 0 || limit != 0
}

// OrderByOf returns the ordering list of q.
func OrderByOf(q QueryExpression) []OrderByExpression {
	switch query := q.(type) {
	case *SelectExpression:
		return query.OrderBy
	case *UnionExpression:
		return query.OrderBy
	default:
		return nil
	}
}

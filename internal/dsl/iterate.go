package dsl

import (
	"context"
	"iter"

	"github.com/mik629/ktorm/internal/rowset"
)

// Iterator returns a new forward-only iterator over the Query's rows.
// The Query executes once; later iterators reuse the same rows.
func (q *Query) Iterator(ctx context.Context) (*rowset.Iterator, error) {
	rs, err := q.RowSet(ctx)
	if err != nil {
		return nil, err
	}
	return rs.Iterator(), nil
}

// All returns a sequence of the Query's rows with their positions.
//
//	rows, err := q.All(ctx)
//	if err != nil {
//	    return err
//	}
//	for i, row := range rows {
//	    fmt.Println(i, row.String("name"))
//	}
func (q *Query) All(ctx context.Context) (iter.Seq2[int, rowset.Row], error) {
	rs, err := q.RowSet(ctx)
	if err != nil {
		return nil, err
	}
	return rs.All(), nil
}

// Map applies fn to every row of q.
func Map[T any](ctx context.Context, q *Query, fn func(rowset.Row) T) ([]T, error) {
	rs, err := q.RowSet(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, rs.Len())
	for _, row := range rs.All() {
		out = append(out, fn(row))
	}
	return out, nil
}

// MapNotNull applies fn to every row of q and keeps the results fn
// reports as present.
func MapNotNull[T any](ctx context.Context, q *Query, fn func(rowset.Row) (T, bool)) ([]T, error) {
	rs, err := q.RowSet(ctx)
	if err != nil {
		return nil, err
	}
	var out []T
	for _, row := range rs.All() {
		if v, ok := fn(row); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Associate builds a map from the key/value pair fn returns for every row.
// Later rows overwrite earlier ones with the same key.
func Associate[K comparable, V any](ctx context.Context, q *Query, fn func(rowset.Row) (K, V)) (map[K]V, error) {
	rs, err := q.RowSet(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[K]V, rs.Len())
	for _, row := range rs.All() {
		k, v := fn(row)
		out[k] = v
	}
	return out, nil
}

// ForEachIndexed calls fn with every row of q and its position.
func ForEachIndexed(ctx context.Context, q *Query, fn func(int, rowset.Row)) error {
	rs, err := q.RowSet(ctx)
	if err != nil {
		return err
	}
	for i, row := range rs.All() {
		fn(i, row)
	}
	return nil
}

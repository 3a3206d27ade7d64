// Package dsl provides the Query object: an immutable expression tree bound
// to a database, with lazily computed, memoized views of its results.
//
// Every transformation returns a new *Query and never touches the receiver.
// A transformation that fails yields a Query carrying the error; later
// transformations pass it through unchanged and every view returns it, so
// a chain only needs one check at the end:
//
//	q := dsl.From(db, employees).
//		Select(expr.Declare(name), expr.Declare(salary)).
//		Where(expr.Gt(salary, 100)).
//		OrderBy(expr.Desc(salary)).
//		Limit(10, 5)
//	rows, err := q.RowSet(ctx)
//
// The rendered SQL, the row set and the total record count are each
// computed at most once per Query and are never shared between Queries,
// even ones derived from the same root. Failed computations are not
// cached and run again on the next call.
package dsl

// Package expr provides the immutable expression tree for SQL SELECT and
// UNION statements.
//
// A statement is a tree rooted at a QueryExpression. There are exactly two
// query shapes:
//
//	*SelectExpression  SELECT <columns> FROM <source> WHERE ... GROUP BY ...
//	                   HAVING ... ORDER BY ... LIMIT ... OFFSET ...
//	*UnionExpression   <left> UNION [ALL] <right> ORDER BY ... LIMIT ...
//
// # Immutability
//
// Nodes are never mutated after construction. Every transformation (With*
// functions, NewUnion, ...) takes the prior root and returns a new root that
// shares untouched sub-trees with it. A published tree is therefore safe to
// read from many goroutines.
//
// # Sealed Interfaces
//
// SQLExpression, ScalarExpression, QuerySource and QueryExpression are
// sealed with marker methods, so only types in this package implement them.
// Type switches over QueryExpression have two cases plus a default that
// reports ErrCodeUnsupportedExpression.
//
// # Shape Restrictions
//
// Filtering, grouping and post-grouping filters only exist on the select
// shape. Applying them to a union root fails with ErrCodeInvalidShape; the
// caller filters each branch before combining them.
//
// Ordering on a union root is resolved against the output aliases of the
// left-most select branch (see ResolveUnionOrderBy), because after a union
// only those aliases name columns of the combined result.
package expr

// Package store is the SQLite-backed statement executor used by queries.
//
// A Store owns one database handle and knows how to turn an expression tree
// into SQL text and parameters (FormatExpression) and how to run it into an
// offline row set (ExecuteQuery). Every statement is logged at Debug level
// with its text, parameters, a per-execution id and the number of rows read.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The pool is limited to a single connection, which also keeps ":memory:"
// databases coherent across statements.
package store

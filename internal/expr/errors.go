package expr

import (
	"errors"
	"fmt"
)

// QueryError represents a fault raised while building or evaluating a query.
//
// Query errors include:
//   - Invalid shape: where/group-by/having applied to a union root
//   - Unresolved reference: a union ordering matches no output alias
//   - Empty count result: the count statement returned no row
//   - Invalid argument: e.g. negative pagination bounds
//
// None of these are retried; they indicate misuse or an inconsistent
// collaborator and are returned to the caller as-is.
type QueryError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Expression is the offending node, if any.
	Expression SQLExpression
}

// ErrorCode categorizes query errors.
type ErrorCode string

const (
	// ErrCodeInvalidShape indicates a select-only operation on a union root.
	ErrCodeInvalidShape ErrorCode = "INVALID_SHAPE"

	// ErrCodeUnresolvedReference indicates a union ordering that matches no
	// declared output alias of the left branch.
	ErrCodeUnresolvedReference ErrorCode = "UNRESOLVED_REFERENCE"

	// ErrCodeEmptyCountResult indicates the count statement yielded no row.
	ErrCodeEmptyCountResult ErrorCode = "EMPTY_COUNT_RESULT"

	// ErrCodeInvalidArgument indicates an out-of-range parameter.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeUnsupportedExpression indicates a node type outside the tree grammar.
	ErrCodeUnsupportedExpression ErrorCode = "UNSUPPORTED_EXPRESSION"
)

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidShape returns true if the error is an invalid-shape error.
// Uses errors.As to handle wrapped errors.
func IsInvalidShape(err error) bool {
	return hasCode(err, ErrCodeInvalidShape)
}

// IsUnresolvedReference returns true if the error is an unresolved-reference error.
func IsUnresolvedReference(err error) bool {
	return hasCode(err, ErrCodeUnresolvedReference)
}

// IsEmptyCountResult returns true if the error is an empty-count-result error.
func IsEmptyCountResult(err error) bool {
	return hasCode(err, ErrCodeEmptyCountResult)
}

// IsInvalidArgument returns true if the error is an invalid-argument error.
func IsInvalidArgument(err error) bool {
	return hasCode(err, ErrCodeInvalidArgument)
}

func hasCode(err error, code ErrorCode) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}

// NewInvalidShapeError creates a QueryError for a select-only operation
// applied to a union root.
func NewInvalidShapeError(operation string, q QueryExpression) *QueryError {
	return &QueryError{
		Code:       ErrCodeInvalidShape,
		Message:    fmt.Sprintf("%s is not supported on a union query, apply it to each branch before the union", operation),
		Expression: q,
	}
}

// NewUnresolvedReferenceError creates a QueryError for a union ordering
// that cannot be matched to a declared output alias.
func NewUnresolvedReferenceError(e ScalarExpression) *QueryError {
	return &QueryError{
		Code:       ErrCodeUnresolvedReference,
		Message:    fmt.Sprintf("could not find the ordering column %s in the declared columns of the union, alias it explicitly", Describe(e)),
		Expression: e,
	}
}

// NewEmptyCountResultError creates a QueryError for a count statement that
// returned no rows.
func NewEmptyCountResultError(sql string) *QueryError {
	return &QueryError{
		Code:    ErrCodeEmptyCountResult,
		Message: fmt.Sprintf("no result found for sql: %s", sql),
	}
}

func newUnsupportedError(e SQLExpression) *QueryError {
	return &QueryError{
		Code:       ErrCodeUnsupportedExpression,
		Message:    fmt.Sprintf("unsupported query expression type: %T", e),
		Expression: e,
	}
}

package cli

import (
	"errors"
	"fmt"

	"github.com/mik629/ktorm/internal/expr"
	"github.com/mik629/ktorm/internal/querydef"
)

// Error code constants - unified across all CLI commands. Query file load
// and validation errors keep their querydef codes (E2xx).
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeDatabase     = "E008" // Database open or statement failure
	ErrCodeInvalidQuery = "E009" // Query cannot be built (shape, reference, argument)
	ErrCodeCountFailed  = "E010" // Count statement returned no row
)

// failure writes err through the formatter and returns the ExitError the
// command should fail with.
func failure(formatter *OutputFormatter, code int, errCode, message string, details any) error {
	_ = formatter.Error(errCode, message, details)
	return NewExitError(code, fmt.Sprintf("%s: %s", errCode, message))
}

// queryFailure classifies an error from loading, building or running a
// query definition.
func queryFailure(formatter *OutputFormatter, err error) error {
	var loadErr *querydef.LoadError
	if errors.As(err, &loadErr) {
		code := ExitCommandError
		if loadErr.Code == querydef.ErrCodeReadFailed {
			return failure(formatter, code, ErrCodeNotFound, loadErr.Error(), nil)
		}
		return failure(formatter, code, loadErr.Code, loadErr.Error(), nil)
	}

	var validationErrs querydef.ValidationErrors
	if errors.As(err, &validationErrs) {
		return failure(formatter, ExitFailure, validationErrs[0].Code, validationErrs.Error(), []querydef.ValidationError(validationErrs))
	}

	var validationErr *querydef.ValidationError
	if errors.As(err, &validationErr) {
		return failure(formatter, ExitFailure, validationErr.Code, validationErr.Error(), nil)
	}

	var queryErr *expr.QueryError
	if errors.As(err, &queryErr) {
		errCode := ErrCodeInvalidQuery
		if queryErr.Code == expr.ErrCodeEmptyCountResult {
			errCode = ErrCodeCountFailed
		}
		return failure(formatter, ExitFailure, errCode, queryErr.Message, map[string]string{"kind": string(queryErr.Code)})
	}

	return failure(formatter, ExitCommandError, ErrCodeDatabase, err.Error(), nil)
}

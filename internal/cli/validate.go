package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mik629/ktorm/internal/expr"
	"github.com/mik629/ktorm/internal/querydef"
)

// FileValidation holds the validation result of one query file.
type FileValidation struct {
	File   string                     `json:"file"`
	Valid  bool                       `json:"valid"`
	Errors []querydef.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <query-file>...",
		Short: "Validate query definitions without running them",
		Long: `Validate query definitions without a database.

Each file is parsed, checked against the query schema and built into a
query, so unknown table qualifiers and union orderings that name no
declared column are reported too. All files are checked; every error is
reported.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	results := make([]FileValidation, 0, len(paths))
	errCount := 0
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		result := ValidateFile(path)
		errCount += len(result.Errors)
		results = append(results, result)
	}

	if errCount > 0 {
		return outputValidationErrors(formatter, results, errCount)
	}
	return outputValidateSuccess(formatter, results)
}

// ValidateFile loads and builds one query definition and reports every
// problem found.
func ValidateFile(path string) FileValidation {
	result := FileValidation{File: path}

	def, err := querydef.Load(path)
	if err == nil {
		_, err = querydef.Build(newOfflineDatabase(), def)
	}
	if err != nil {
		result.Errors = toValidationErrors(err)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func toValidationErrors(err error) []querydef.ValidationError {
	var errs querydef.ValidationErrors
	if errors.As(err, &errs) {
		return errs
	}

	var single *querydef.ValidationError
	if errors.As(err, &single) {
		return []querydef.ValidationError{*single}
	}

	var loadErr *querydef.LoadError
	if errors.As(err, &loadErr) {
		return []querydef.ValidationError{{Field: "load", Message: loadErr.Error(), Code: loadErr.Code}}
	}

	var queryErr *expr.QueryError
	if errors.As(err, &queryErr) {
		return []querydef.ValidationError{{Field: "query", Message: queryErr.Message, Code: ErrCodeInvalidQuery}}
	}

	return []querydef.ValidationError{{Field: "query", Message: err.Error(), Code: ErrCodeGeneric}}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, results []FileValidation) error {
	if formatter.Format == "json" {
		return formatter.Success(results)
	}

	for _, r := range results {
		fmt.Fprintf(formatter.Writer, "✓ %s\n", r.File)
	}
	return nil
}

// outputValidationErrors outputs every file result with its errors.
func outputValidationErrors(formatter *OutputFormatter, results []FileValidation, errCount int) error {
	if formatter.Format == "json" {
		var first querydef.ValidationError
		for _, r := range results {
			if len(r.Errors) > 0 {
				first = r.Errors[0]
				break
			}
		}

		response := CLIResponse{
			Status: "error",
			Data:   results,
			Error: &CLIError{
				Code:    first.Code,
				Message: first.Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", errCount))
	}

	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(formatter.Writer, "✓ %s\n", r.File)
			continue
		}
		fmt.Fprintf(formatter.Writer, "✗ %s\n", r.File)
		for _, e := range r.Errors {
			fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", e.Code, e.Field, e.Message)
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", errCount))
}

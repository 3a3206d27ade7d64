package querydef

import (
	"fmt"
	"strings"
)

// Validation error codes.
const (
	ErrMissingFrom       = "E210" // source table is required
	ErrInvalidOperator   = "E211" // unknown operator or bad operand
	ErrInvalidAggregate  = "E212" // unknown aggregate function
	ErrInvalidJoin       = "E213" // malformed join
	ErrInvalidPagination = "E214" // negative offset or limit
	ErrInvalidCombine    = "E215" // combine is neither and nor or
	ErrMissingColumn     = "E216" // column reference is required
	ErrUnknownQualifier  = "E217" // qualifier names no table in scope
)

// ValidationError is one problem found in a definition.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors lists every problem found in a definition.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

var operators = map[string]bool{
	"=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true,
	"like": true, "in": true, "not in": true, "is null": true, "is not null": true,
}

var aggregates = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
}

var joinTypes = map[string]bool{
	"": true, "inner": true, "left": true, "right": true, "cross": true,
}

// Validate checks a definition and its unions.
// Returns all errors found (does not fail-fast).
func Validate(def *Definition) ValidationErrors {
	v := &validator{}
	v.definition("", def)
	return v.errs
}

type validator struct {
	errs ValidationErrors
}

func (v *validator) add(field, code, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func (v *validator) definition(prefix string, def *Definition) {
	if strings.TrimSpace(def.From) == "" {
		v.add(prefix+"from", ErrMissingFrom, "source table is required")
	}

	switch strings.ToLower(def.Combine) {
	case "", "and", "or":
	default:
		v.add(prefix+"combine", ErrInvalidCombine, "must be \"and\" or \"or\", got %q", def.Combine)
	}

	for i, j := range def.Joins {
		v.join(fmt.Sprintf("%sjoins[%d]", prefix, i), j)
	}

	for i, c := range def.Columns {
		v.column(fmt.Sprintf("%scolumns[%d]", prefix, i), c)
	}

	for i, c := range def.Where {
		v.condition(fmt.Sprintf("%swhere[%d]", prefix, i), c)
	}

	for i, g := range def.GroupBy {
		if strings.TrimSpace(g) == "" {
			v.add(fmt.Sprintf("%sgroup_by[%d]", prefix, i), ErrMissingColumn, "column reference is required")
		}
	}

	for i, c := range def.Having {
		v.condition(fmt.Sprintf("%shaving[%d]", prefix, i), c)
	}

	for i, o := range def.OrderBy {
		if strings.TrimSpace(o.Column) == "" {
			v.add(fmt.Sprintf("%sorder_by[%d].column", prefix, i), ErrMissingColumn, "column reference is required")
		}
	}

	if def.Offset < 0 {
		v.add(prefix+"offset", ErrInvalidPagination, "must be non-negative, got %d", def.Offset)
	}
	if def.Limit < 0 {
		v.add(prefix+"limit", ErrInvalidPagination, "must be non-negative, got %d", def.Limit)
	}

	for i, u := range def.Unions {
		field := fmt.Sprintf("%sunions[%d].query", prefix, i)
		if u.Query == nil {
			v.add(field, ErrMissingFrom, "union query is required")
			continue
		}
		v.definition(field+".", u.Query)
	}
}

func (v *validator) join(field string, j Join) {
	if strings.TrimSpace(j.Table) == "" {
		v.add(field+".table", ErrInvalidJoin, "joined table is required")
	}
	typ := strings.ToLower(j.Type)
	if !joinTypes[typ] {
		v.add(field+".type", ErrInvalidJoin, "unknown join type %q", j.Type)
		return
	}
	if typ == "cross" {
		if j.On != nil {
			v.add(field+".on", ErrInvalidJoin, "cross join takes no condition")
		}
		return
	}
	if j.On == nil || j.On.Left == "" || j.On.Right == "" {
		v.add(field+".on", ErrInvalidJoin, "%s join requires on.left and on.right", joinTypeName(typ))
	}
}

func joinTypeName(typ string) string {
	if typ == "" {
		return "inner"
	}
	return typ
}

func (v *validator) column(field string, c Column) {
	agg := strings.ToLower(c.Aggregate)
	if agg != "" && !aggregates[agg] {
		v.add(field+".aggregate", ErrInvalidAggregate, "unknown aggregate %q", c.Aggregate)
		return
	}
	if agg != "count" && (c.Column == "" || c.Column == "*") {
		v.add(field+".column", ErrMissingColumn, "column reference is required")
	}
	if agg == "" && c.Distinct {
		v.add(field+".distinct", ErrInvalidAggregate, "distinct requires an aggregate")
	}
}

func (v *validator) condition(field string, c Condition) {
	agg := strings.ToLower(c.Aggregate)
	if agg != "" && !aggregates[agg] {
		v.add(field+".aggregate", ErrInvalidAggregate, "unknown aggregate %q", c.Aggregate)
	}
	if agg != "count" && (c.Column == "" || c.Column == "*") {
		v.add(field+".column", ErrMissingColumn, "column reference is required")
	}

	op := strings.ToLower(c.Op)
	switch {
	case !operators[op]:
		v.add(field+".op", ErrInvalidOperator, "unknown operator %q", c.Op)
	case op == "in" || op == "not in":
		if list, ok := c.Value.([]any); !ok || len(list) == 0 {
			v.add(field+".value", ErrInvalidOperator, "%s requires a non-empty list", op)
		}
	case op == "is null" || op == "is not null":
		if c.Value != nil {
			v.add(field+".value", ErrInvalidOperator, "%s takes no value", op)
		}
	default:
		if c.Value == nil {
			v.add(field+".value", ErrInvalidOperator, "%s requires a value", op)
		}
	}
}

package querydef

import (
	"fmt"
	"strings"

	"github.com/mik629/ktorm/internal/dsl"
	"github.com/mik629/ktorm/internal/expr"
)

// Build turns a validated definition into a query bound to db.
//
// Filters, grouping and having apply to the definition's own select. Unions
// are then added left to right, and ordering and pagination apply to the
// combined result.
func Build(db dsl.Database, def *Definition) (*dsl.Query, error) {
	q, err := build(db, def, "")
	if err != nil {
		return nil, err
	}
	if err := q.Err(); err != nil {
		return nil, err
	}
	return q, nil
}

func build(db dsl.Database, def *Definition, prefix string) (*dsl.Query, error) {
	root := table(def.From, def.Alias)
	sc := scope{prefix: prefix, tables: map[string]*expr.TableExpression{root.Label(): root}}

	src := dsl.From(db, root)
	for i, j := range def.Joins {
		t := table(j.Table, j.Alias)
		sc.tables[t.Label()] = t

		if strings.EqualFold(j.Type, "cross") {
			src = src.CrossJoin(t)
			continue
		}
		if j.On == nil {
			return nil, sc.fail(fmt.Sprintf("joins[%d].on", i), ErrInvalidJoin, "join condition is required")
		}
		left, err := sc.column(fmt.Sprintf("joins[%d].on.left", i), j.On.Left)
		if err != nil {
			return nil, err
		}
		right, err := sc.column(fmt.Sprintf("joins[%d].on.right", i), j.On.Right)
		if err != nil {
			return nil, err
		}
		on := expr.Eq(left, right)

		switch strings.ToLower(j.Type) {
		case "left":
			src = src.LeftJoin(t, on)
		case "right":
			src = src.RightJoin(t, on)
		default:
			src = src.InnerJoin(t, on)
		}
	}

	columns := make([]expr.ColumnDeclaring, 0, len(def.Columns))
	for i, c := range def.Columns {
		decl, err := sc.declare(fmt.Sprintf("columns[%d]", i), c)
		if err != nil {
			return nil, err
		}
		columns = append(columns, decl)
	}

	var q *dsl.Query
	if def.Distinct {
		q = src.SelectDistinct(columns...)
	} else {
		q = src.Select(columns...)
	}

	where, err := sc.conditions("where", def.Where)
	if err != nil {
		return nil, err
	}
	collect := func(c *[]expr.ScalarExpression) { *c = append(*c, where...) }
	if strings.EqualFold(def.Combine, "or") {
		q = q.WhereWithOrConditions(collect)
	} else {
		q = q.WhereWithConditions(collect)
	}

	if len(def.GroupBy) > 0 {
		groups := make([]expr.ScalarExpression, 0, len(def.GroupBy))
		for i, g := range def.GroupBy {
			col, err := sc.column(fmt.Sprintf("group_by[%d]", i), g)
			if err != nil {
				return nil, err
			}
			groups = append(groups, col)
		}
		q = q.GroupBy(groups...)
	}

	having, err := sc.conditions("having", def.Having)
	if err != nil {
		return nil, err
	}
	if len(having) > 0 {
		q = q.Having(expr.CombineConditions(having))
	}

	for i, u := range def.Unions {
		field := fmt.Sprintf("%sunions[%d].query", prefix, i)
		if u.Query == nil {
			return nil, &ValidationError{Field: field, Code: ErrMissingFrom, Message: "union query is required"}
		}
		right, err := build(db, u.Query, field+".")
		if err != nil {
			return nil, err
		}
		if u.All {
			q = q.UnionAll(right)
		} else {
			q = q.Union(right)
		}
	}

	if len(def.OrderBy) > 0 {
		orders := make([]expr.OrderByExpression, 0, len(def.OrderBy))
		for i, o := range def.OrderBy {
			col, err := sc.column(fmt.Sprintf("order_by[%d].column", i), o.Column)
			if err != nil {
				return nil, err
			}
			if o.Desc {
				orders = append(orders, expr.Desc(col))
			} else {
				orders = append(orders, expr.Asc(col))
			}
		}
		q = q.OrderBy(orders...)
	}

	return q.Limit(def.Offset, def.Limit), nil
}

func table(name, alias string) *expr.TableExpression {
	t := expr.Table(name)
	if alias != "" {
		t = t.As(alias)
	}
	return t
}

// scope resolves column references against the tables of one definition.
type scope struct {
	prefix string
	tables map[string]*expr.TableExpression
}

func (sc scope) fail(field, code, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   sc.prefix + field,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// column resolves "qualifier.name" or a bare "name".
func (sc scope) column(field, ref string) (*expr.ColumnExpression, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, sc.fail(field, ErrMissingColumn, "column reference is required")
	}
	qualifier, name, ok := strings.Cut(ref, ".")
	if !ok {
		return expr.Col(ref), nil
	}
	t, found := sc.tables[qualifier]
	if !found {
		return nil, sc.fail(field, ErrUnknownQualifier, "%q does not name a table of this query", qualifier)
	}
	return t.Column(name), nil
}

// operand resolves a column reference, optionally wrapped in an aggregate.
// "*" and the empty reference count rows.
func (sc scope) operand(field, ref, aggregate string, distinct bool) (expr.ScalarExpression, error) {
	if aggregate == "" {
		col, err := sc.column(field, ref)
		if err != nil {
			return nil, err
		}
		return col, nil
	}

	var arg expr.ScalarExpression
	if ref != "" && ref != "*" {
		col, err := sc.column(field, ref)
		if err != nil {
			return nil, err
		}
		arg = col
	}
	return &expr.AggregateExpression{
		Type:     expr.AggregateType(strings.ToUpper(aggregate)),
		Argument: arg,
		Distinct: distinct,
	}, nil
}

func (sc scope) declare(field string, c Column) (expr.ColumnDeclaring, error) {
	e, err := sc.operand(field+".column", c.Column, c.Aggregate, c.Distinct)
	if err != nil {
		return expr.ColumnDeclaring{}, err
	}
	if c.Alias != "" {
		return expr.As(e, c.Alias), nil
	}
	return expr.Declare(e), nil
}

func (sc scope) conditions(field string, conds []Condition) ([]expr.ScalarExpression, error) {
	out := make([]expr.ScalarExpression, 0, len(conds))
	for i, c := range conds {
		e, err := sc.condition(fmt.Sprintf("%s[%d]", field, i), c)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (sc scope) condition(field string, c Condition) (expr.ScalarExpression, error) {
	left, err := sc.operand(field+".column", c.Column, c.Aggregate, false)
	if err != nil {
		return nil, err
	}

	switch op := strings.ToLower(c.Op); op {
	case "=":
		return expr.Eq(left, c.Value), nil
	case "<>":
		return expr.NotEq(left, c.Value), nil
	case "<":
		return expr.Lt(left, c.Value), nil
	case "<=":
		return expr.Lte(left, c.Value), nil
	case ">":
		return expr.Gt(left, c.Value), nil
	case ">=":
		return expr.Gte(left, c.Value), nil
	case "like":
		return expr.Like(left, c.Value), nil
	case "in", "not in":
		values, ok := c.Value.([]any)
		if !ok {
			return nil, sc.fail(field+".value", ErrInvalidOperator, "%s requires a list", op)
		}
		if op == "in" {
			return expr.In(left, values...), nil
		}
		return expr.NotIn(left, values...), nil
	case "is null":
		return expr.IsNull(left), nil
	case "is not null":
		return expr.IsNotNull(left), nil
	default:
		return nil, sc.fail(field+".op", ErrInvalidOperator, "unknown operator %q", c.Op)
	}
}

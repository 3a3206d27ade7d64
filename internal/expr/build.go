package expr

import "slices"

// Table creates a table source.
func Table(name string) *TableExpression {
	return &TableExpression{Name: name}
}

// As returns a copy of the table under the given alias.
func (t *TableExpression) As(alias string) *TableExpression {
	return &TableExpression{Name: t.Name, Alias: alias}
}

// Column creates a reference to a column of this table.
func (t *TableExpression) Column(name string) *ColumnExpression {
	return &ColumnExpression{Table: t, Name: name}
}

// Col creates a bare column reference with no table qualifier.
func Col(name string) *ColumnExpression {
	return &ColumnExpression{Name: name}
}

// Arg binds a literal value as a statement parameter.
func Arg(v any) *Argument {
	return &Argument{Value: v}
}

// True returns the literal true expression, the identity of AND.
func True() *Argument {
	return &Argument{Value: true}
}

// False returns the literal false expression, the identity of OR.
func False() *Argument {
	return &Argument{Value: false}
}

// operand converts v to a scalar expression, binding plain values as arguments.
func operand(v any) ScalarExpression {
	if e, ok := v.(ScalarExpression); ok {
		return e
	}
	return &Argument{Value: v}
}

func binary(t BinaryType, left ScalarExpression, right any) *BinaryExpression {
	return &BinaryExpression{Type: t, Left: left, Right: operand(right)}
}

// Eq builds left = right. Right may be an expression or a plain value.
func Eq(left ScalarExpression, right any) *BinaryExpression { return binary(OpEqual, left, right) }

// NotEq builds left <> right.
func NotEq(left ScalarExpression, right any) *BinaryExpression {
	return binary(OpNotEqual, left, right)
}

// Lt builds left < right.
func Lt(left ScalarExpression, right any) *BinaryExpression { return binary(OpLess, left, right) }

// Lte builds left <= right.
func Lte(left ScalarExpression, right any) *BinaryExpression {
	return binary(OpLessEqual, left, right)
}

// Gt builds left > right.
func Gt(left ScalarExpression, right any) *BinaryExpression { return binary(OpGreater, left, right) }

// Gte builds left >= right.
func Gte(left ScalarExpression, right any) *BinaryExpression {
	return binary(OpGreaterEqual, left, right)
}

// Like builds left LIKE pattern.
func Like(left ScalarExpression, pattern any) *BinaryExpression {
	return binary(OpLike, left, pattern)
}

// Plus builds left + right.
func Plus(left ScalarExpression, right any) *BinaryExpression { return binary(OpPlus, left, right) }

// Minus builds left - right.
func Minus(left ScalarExpression, right any) *BinaryExpression {
	return binary(OpMinus, left, right)
}

// And builds left AND right.
func And(left, right ScalarExpression) *BinaryExpression {
	return &BinaryExpression{Type: OpAnd, Left: left, Right: right}
}

// Or builds left OR right.
func Or(left, right ScalarExpression) *BinaryExpression {
	return &BinaryExpression{Type: OpOr, Left: left, Right: right}
}

// Not builds NOT operand.
func Not(operand ScalarExpression) *UnaryExpression {
	return &UnaryExpression{Type: OpNot, Operand: operand}
}

// IsNull builds operand IS NULL.
func IsNull(operand ScalarExpression) *UnaryExpression {
	return &UnaryExpression{Type: OpIsNull, Operand: operand}
}

// IsNotNull builds operand IS NOT NULL.
func IsNotNull(operand ScalarExpression) *UnaryExpression {
	return &UnaryExpression{Type: OpIsNotNull, Operand: operand}
}

// In builds left IN (values...).
func In(left ScalarExpression, values ...any) *InListExpression {
	return &InListExpression{Left: left, Values: operands(values)}
}

// NotIn builds left NOT IN (values...).
func NotIn(left ScalarExpression, values ...any) *InListExpression {
	return &InListExpression{Left: left, Values: operands(values), NotIn: true}
}

func operands(values []any) []ScalarExpression {
	out := make([]ScalarExpression, len(values))
	for i, v := range values {
		out[i] = operand(v)
	}
	return out
}

// Count builds COUNT(e), or COUNT(*) when e is nil.
func Count(e ScalarExpression) *AggregateExpression {
	return &AggregateExpression{Type: AggCount, Argument: e}
}

// CountDistinct builds COUNT(DISTINCT e).
func CountDistinct(e ScalarExpression) *AggregateExpression {
	return &AggregateExpression{Type: AggCount, Argument: e, Distinct: true}
}

// Sum builds SUM(e).
func Sum(e ScalarExpression) *AggregateExpression {
	return &AggregateExpression{Type: AggSum, Argument: e}
}

// Avg builds AVG(e).
func Avg(e ScalarExpression) *AggregateExpression {
	return &AggregateExpression{Type: AggAvg, Argument: e}
}

// Min builds MIN(e).
func Min(e ScalarExpression) *AggregateExpression {
	return &AggregateExpression{Type: AggMin, Argument: e}
}

// Max builds MAX(e).
func Max(e ScalarExpression) *AggregateExpression {
	return &AggregateExpression{Type: AggMax, Argument: e}
}

// Declare declares e as an output column. A column reference is exposed
// under its own name; any other expression has no alias.
func Declare(e ScalarExpression) ColumnDeclaring {
	if c, ok := e.(*ColumnExpression); ok {
		return ColumnDeclaring{Expression: e, Alias: c.Name}
	}
	return ColumnDeclaring{Expression: e}
}

// DeclareAll declares every expression with Declare.
func DeclareAll(es ...ScalarExpression) []ColumnDeclaring {
	out := make([]ColumnDeclaring, len(es))
	for i, e := range es {
		out[i] = Declare(e)
	}
	return out
}

// As declares e as an output column under an explicit alias.
func As(e ScalarExpression, alias string) ColumnDeclaring {
	return ColumnDeclaring{Expression: e, Alias: alias}
}

// Asc orders by e ascending.
func Asc(e ScalarExpression) OrderByExpression {
	return OrderByExpression{Expression: e, OrderType: Ascending}
}

// Desc orders by e descending.
func Desc(e ScalarExpression) OrderByExpression {
	return OrderByExpression{Expression: e, OrderType: Descending}
}

// Join joins two sources.
func Join(t JoinType, left, right QuerySource, on ScalarExpression) *JoinExpression {
	return &JoinExpression{Type: t, Left: left, Right: right, Condition: on}
}

// SubQuery uses q as a source under alias.
func SubQuery(q QueryExpression, alias string) *SubQueryExpression {
	return &SubQueryExpression{Query: q, Alias: alias}
}

// CombineConditions reduces conditions with AND, folding from the left.
// An empty list yields the literal true expression, never nil.
func CombineConditions(conditions []ScalarExpression) ScalarExpression {
	return combine(conditions, OpAnd, True())
}

// CombineOrConditions reduces conditions with OR, folding from the left.
// An empty list yields the literal false expression, never nil.
func CombineOrConditions(conditions []ScalarExpression) ScalarExpression {
	return combine(conditions, OpOr, False())
}

func combine(conditions []ScalarExpression, op BinaryType, identity ScalarExpression) ScalarExpression {
	if len(conditions) == 0 {
		return identity
	}
	acc := conditions[0]
	for _, c := range conditions[1:] {
		acc = &BinaryExpression{Type: op, Left: acc, Right: c}
	}
	return acc
}

// NewSelect builds a select root over from. Zero columns selects every
// column; the column list is then empty, not nil.
func NewSelect(from QuerySource, columns ...ColumnDeclaring) *SelectExpression {
	cols := slices.Clone(columns)
	if cols == nil {
		cols = []ColumnDeclaring{}
	}
	return &SelectExpression{Columns: cols, From: from}
}

// NewSelectDistinct is NewSelect with DISTINCT.
func NewSelectDistinct(from QuerySource, columns ...ColumnDeclaring) *SelectExpression {
	s := NewSelect(from, columns...)
	s.Distinct = true
	return s
}

// NewUnion combines two queries. The left query's declared columns become
// the schema visible to a later ordering on the result.
func NewUnion(left, right QueryExpression, all bool) *UnionExpression {
	return &UnionExpression{Left: left, Right: right, IsAll: all}
}

package expr

// SQLExpression is the root of every node in the expression tree.
//
// This is a sealed interface - only types in this package implement it.
type SQLExpression interface {
	sqlExpression()
}

// ScalarExpression is a node that evaluates to a single value per row:
// column references, bound arguments, operators and aggregates.
type ScalarExpression interface {
	SQLExpression
	scalarExpression()
}

// QuerySource is a node that can appear in a FROM clause.
//
// Source types:
//   - *TableExpression: a named table
//   - *JoinExpression: two sources joined on a condition
//   - *SubQueryExpression: a nested query with an alias
type QuerySource interface {
	SQLExpression
	querySource()
}

// QueryExpression is the root of a statement.
//
// Query types:
//   - *SelectExpression: a single select over one source
//   - *UnionExpression: two queries combined by UNION or UNION ALL
//
// Both shapes carry their own ordering and pagination, which apply to the
// result of that node (for a union, the combined result).
type QueryExpression interface {
	SQLExpression
	queryExpression()
}

// BinaryType is the SQL operator of a BinaryExpression.
type BinaryType string

const (
	OpAnd          BinaryType = "AND"
	OpOr           BinaryType = "OR"
	OpEqual        BinaryType = "="
	OpNotEqual     BinaryType = "<>"
	OpLess         BinaryType = "<"
	OpLessEqual    BinaryType = "<="
	OpGreater      BinaryType = ">"
	OpGreaterEqual BinaryType = ">="
	OpLike         BinaryType = "LIKE"
	OpPlus         BinaryType = "+"
	OpMinus        BinaryType = "-"
	OpTimes        BinaryType = "*"
	OpDiv          BinaryType = "/"
)

// UnaryType is the operator of a UnaryExpression.
type UnaryType string

const (
	OpNot       UnaryType = "NOT"
	OpIsNull    UnaryType = "IS NULL"
	OpIsNotNull UnaryType = "IS NOT NULL"
	OpNegate    UnaryType = "-"
)

// AggregateType is the function of an AggregateExpression.
type AggregateType string

const (
	AggCount AggregateType = "COUNT"
	AggSum   AggregateType = "SUM"
	AggAvg   AggregateType = "AVG"
	AggMin   AggregateType = "MIN"
	AggMax   AggregateType = "MAX"
)

// OrderType is the direction of an OrderByExpression.
type OrderType int

const (
	Ascending OrderType = iota
	Descending
)

// String returns the SQL keyword for this direction.
func (t OrderType) String() string {
	if t == Descending {
		return "DESC"
	}
	return "ASC"
}

// JoinType is the kind of a JoinExpression.
type JoinType string

const (
	InnerJoin JoinType = "INNER JOIN"
	LeftJoin  JoinType = "LEFT JOIN"
	RightJoin JoinType = "RIGHT JOIN"
	CrossJoin JoinType = "CROSS JOIN"
)

// ColumnExpression references a column of a source.
//
// Table is nil for a bare reference, which is how output aliases are
// addressed from an outer scope (e.g. ORDER BY of a union).
type ColumnExpression struct {
	Table *TableExpression
	Name  string
}

func (*ColumnExpression) sqlExpression()    {}
func (*ColumnExpression) scalarExpression() {}

// Argument is a literal value bound as a statement parameter.
type Argument struct {
	Value any
}

func (*Argument) sqlExpression()    {}
func (*Argument) scalarExpression() {}

// BinaryExpression applies an infix operator to two operands.
type BinaryExpression struct {
	Type  BinaryType
	Left  ScalarExpression
	Right ScalarExpression
}

func (*BinaryExpression) sqlExpression()    {}
func (*BinaryExpression) scalarExpression() {}

// UnaryExpression applies a prefix (NOT, -) or postfix (IS NULL) operator.
type UnaryExpression struct {
	Type    UnaryType
	Operand ScalarExpression
}

func (*UnaryExpression) sqlExpression()    {}
func (*UnaryExpression) scalarExpression() {}

// AggregateExpression is an aggregate function call.
// A nil Argument renders as COUNT(*).
type AggregateExpression struct {
	Type     AggregateType
	Argument ScalarExpression
	Distinct bool
}

func (*AggregateExpression) sqlExpression()    {}
func (*AggregateExpression) scalarExpression() {}

// InListExpression tests membership of Left in Values.
type InListExpression struct {
	Left   ScalarExpression
	Values []ScalarExpression
	NotIn  bool
}

func (*InListExpression) sqlExpression()    {}
func (*InListExpression) scalarExpression() {}

// ColumnDeclaring declares one output column of a select: the underlying
// expression and the name it is exposed under.
//
// Alias is empty when the column has no externally visible name (e.g. an
// undeclared aggregate); such columns cannot be referenced by an ordering
// on a union.
type ColumnDeclaring struct {
	Expression ScalarExpression
	Alias      string
}

func (*ColumnDeclaring) sqlExpression() {}

// OrderByExpression is one entry of an ORDER BY list.
type OrderByExpression struct {
	Expression ScalarExpression
	OrderType  OrderType
}

func (*OrderByExpression) sqlExpression() {}

// TableExpression is a named table, optionally aliased.
type TableExpression struct {
	Name  string
	Alias string
}

func (*TableExpression) sqlExpression() {}
func (*TableExpression) querySource()   {}

// Label returns the name used to qualify columns of this table.
func (t *TableExpression) Label() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// JoinExpression joins two sources. Condition is nil for a cross join.
type JoinExpression struct {
	Type      JoinType
	Left      QuerySource
	Right     QuerySource
	Condition ScalarExpression
}

func (*JoinExpression) sqlExpression() {}
func (*JoinExpression) querySource()   {}

// SubQueryExpression uses a query as a source under Alias.
type SubQueryExpression struct {
	Query QueryExpression
	Alias string
}

func (*SubQueryExpression) sqlExpression() {}
func (*SubQueryExpression) querySource()   {}

// SelectExpression is the select shape.
//
// Semantics:
//
//	SELECT [DISTINCT] <Columns> FROM <From> WHERE <Where>
//	GROUP BY <GroupBy> HAVING <Having> ORDER BY <OrderBy>
//	LIMIT <Limit> OFFSET <Offset>
//
// An empty Columns list selects every column. Offset and Limit of zero
// mean no pagination.
type SelectExpression struct {
	Columns  []ColumnDeclaring
	From     QuerySource
	Where    ScalarExpression
	GroupBy  []ScalarExpression
	Having   ScalarExpression
	OrderBy  []OrderByExpression
	Distinct bool
	Offset   int
	Limit    int
}

func (*SelectExpression) sqlExpression()   {}
func (*SelectExpression) queryExpression() {}

// UnionExpression is the union shape.
//
// Semantics:
//
//	<Left> UNION [ALL] <Right> ORDER BY <OrderBy> LIMIT <Limit> OFFSET <Offset>
//
// The output schema is the column list of the left-most select branch.
type UnionExpression struct {
	Left    QueryExpression
	Right   QueryExpression
	IsAll   bool
	OrderBy []OrderByExpression
	Offset  int
	Limit   int
}

func (*UnionExpression) sqlExpression()   {}
func (*UnionExpression) queryExpression() {}

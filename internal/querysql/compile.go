package querysql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mik629/ktorm/internal/expr"
)

// SQLCompiler renders an expression tree to parameterized SQL for SQLite.
//
// CRITICAL: All argument values are parameterized (never interpolated).
// Only identifiers and pagination bounds appear literally in the text.
//
// Rendering is deterministic: the same tree always yields the same text and
// parameter list. Beautify only changes whitespace.
type SQLCompiler struct {
	// Beautify puts each clause on its own line and indents sub-queries.
	Beautify bool

	// IndentSize is the number of spaces per nesting level when beautifying.
	IndentSize int
}

// NewSQLCompiler creates a new SQLCompiler producing single-line SQL.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{IndentSize: 2}
}

// Compile converts a query expression to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q expr.QueryExpression) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	s := &compileState{compiler: c}
	if err := s.writeQuery(q); err != nil {
		return "", nil, err
	}
	return s.sb.String(), s.params, nil
}

// compileState accumulates the text and parameters of one Compile call.
type compileState struct {
	compiler *SQLCompiler
	sb       strings.Builder
	params   []any
	depth    int
}

func (s *compileState) write(parts ...string) {
	for _, p := range parts {
		s.sb.WriteString(p)
	}
}

// newLine separates two clauses.
func (s *compileState) newLine() {
	if s.compiler.Beautify {
		s.breakLine()
		return
	}
	s.sb.WriteByte(' ')
}

// breakLine starts a new indented line when beautifying and writes nothing
// otherwise.
func (s *compileState) breakLine() {
	if !s.compiler.Beautify {
		return
	}
	s.sb.WriteByte('\n')
	s.sb.WriteString(strings.Repeat(" ", s.depth*s.compiler.IndentSize))
}

// writeNested renders q inside parentheses, one level deeper.
func (s *compileState) writeNested(q expr.QueryExpression) error {
	s.write("(")
	s.depth++
	s.breakLine()
	if err := s.writeQuery(q); err != nil {
		return err
	}
	s.depth--
	s.breakLine()
	s.write(")")
	return nil
}

func (s *compileState) writeQuery(q expr.QueryExpression) error {
	switch query := q.(type) {
	case *expr.SelectExpression:
		return s.writeSelect(query)
	case *expr.UnionExpression:
		return s.writeUnion(query)
	default:
		return fmt.Errorf("unsupported query type: %T", q)
	}
}

func (s *compileState) writeSelect(q *expr.SelectExpression) error {
	s.write("SELECT ")
	if q.Distinct {
		s.write("DISTINCT ")
	}
	if err := s.writeColumns(q.Columns); err != nil {
		return err
	}

	s.newLine()
	s.write("FROM ")
	if err := s.writeSource(q.From); err != nil {
		return fmt.Errorf("compile from: %w", err)
	}

	if q.Where != nil {
		s.newLine()
		s.write("WHERE ")
		if err := s.writeScalar(q.Where); err != nil {
			return fmt.Errorf("compile where: %w", err)
		}
	}

	if len(q.GroupBy) > 0 {
		s.newLine()
		s.write("GROUP BY ")
		for i, g := range q.GroupBy {
			if i > 0 {
				s.write(", ")
			}
			if err := s.writeScalar(g); err != nil {
				return fmt.Errorf("compile group by: %w", err)
			}
		}
	}

	if q.Having != nil {
		s.newLine()
		s.write("HAVING ")
		if err := s.writeScalar(q.Having); err != nil {
			return fmt.Errorf("compile having: %w", err)
		}
	}

	return s.writeOrderAndPagination(q.OrderBy, q.Offset, q.Limit)
}

// writeUnion renders a compound select. SQLite forbids parentheses around
// compound members and ORDER BY/LIMIT inside them, so such members are
// wrapped as SELECT * FROM (...). A union on the right is wrapped too, to
// keep its grouping.
func (s *compileState) writeUnion(q *expr.UnionExpression) error {
	if err := s.writeBranch(q.Left, true); err != nil {
		return err
	}

	s.newLine()
	if q.IsAll {
		s.write("UNION ALL")
	} else {
		s.write("UNION")
	}
	s.newLine()

	if err := s.writeBranch(q.Right, false); err != nil {
		return err
	}

	return s.writeOrderAndPagination(q.OrderBy, q.Offset, q.Limit)
}

func (s *compileState) writeBranch(q expr.QueryExpression, left bool) error {
	_, isUnion := q.(*expr.UnionExpression)
	wrap := len(expr.OrderByOf(q)) > 0 || expr.HasPagination(q) || (isUnion && !left)
	if !wrap {
		return s.writeQuery(q)
	}
	s.write("SELECT * FROM ")
	return s.writeNested(q)
}

func (s *compileState) writeOrderAndPagination(orders []expr.OrderByExpression, offset, limit int) error {
	if len(orders) > 0 {
		s.newLine()
		s.write("ORDER BY ")
		for i, o := range orders {
			if i > 0 {
				s.write(", ")
			}
			if err := s.writeScalar(o.Expression); err != nil {
				return fmt.Errorf("compile order by: %w", err)
			}
			if o.OrderType == expr.Descending {
				s.write(" DESC")
			}
		}
	}

	if offset != 0 || limit != 0 {
		// SQLite requires LIMIT before OFFSET; -1 means unbounded.
		if limit == 0 {
			limit = -1
		}
		s.newLine()
		s.write("LIMIT ", strconv.Itoa(limit))
		if offset != 0 {
			s.write(" OFFSET ", strconv.Itoa(offset))
		}
	}
	return nil
}

// writeColumns renders the select list; an empty list is the wildcard.
func (s *compileState) writeColumns(columns []expr.ColumnDeclaring) error {
	if len(columns) == 0 {
		s.write("*")
		return nil
	}
	for i, col := range columns {
		if i > 0 {
			s.write(", ")
		}
		if err := s.writeScalar(col.Expression); err != nil {
			return fmt.Errorf("compile column %d: %w", i, err)
		}
		if needsAlias(col) {
			s.write(" AS ", quoteIdent(col.Alias))
		}
	}
	return nil
}

// needsAlias reports whether the declared alias differs from the name the
// database would give the column anyway.
func needsAlias(col expr.ColumnDeclaring) bool {
	if col.Alias == "" {
		return false
	}
	if c, ok := col.Expression.(*expr.ColumnExpression); ok && c.Name == col.Alias {
		return false
	}
	return true
}

func (s *compileState) writeSource(src expr.QuerySource) error {
	switch source := src.(type) {
	case *expr.TableExpression:
		s.write(quoteIdent(source.Name))
		if source.Alias != "" {
			s.write(" ", quoteIdent(source.Alias))
		}
		return nil
	case *expr.JoinExpression:
		return s.writeJoin(source)
	case *expr.SubQueryExpression:
		if err := s.writeNested(source.Query); err != nil {
			return err
		}
		s.write(" ", quoteIdent(source.Alias))
		return nil
	default:
		return fmt.Errorf("unsupported source type: %T", src)
	}
}

func (s *compileState) writeJoin(j *expr.JoinExpression) error {
	if err := s.writeSource(j.Left); err != nil {
		return err
	}
	s.write(" ", string(j.Type), " ")

	_, nested := j.Right.(*expr.JoinExpression)
	if nested {
		s.write("(")
	}
	if err := s.writeSource(j.Right); err != nil {
		return err
	}
	if nested {
		s.write(")")
	}

	if j.Condition != nil && j.Type != expr.CrossJoin {
		s.write(" ON ")
		if err := s.writeScalar(j.Condition); err != nil {
			return fmt.Errorf("compile join condition: %w", err)
		}
	}
	return nil
}

// Operator precedence, loosest first. Atoms bind tightest.
const (
	precOr = iota + 1
	precAnd
	precNot
	precCompare
	precAdditive
	precMultiplicative
	precUnary
	precAtom
)

func precedence(e expr.ScalarExpression) int {
	switch v := e.(type) {
	case *expr.BinaryExpression:
		switch v.Type {
		case expr.OpOr:
			return precOr
		case expr.OpAnd:
			return precAnd
		case expr.OpPlus, expr.OpMinus:
			return precAdditive
		case expr.OpTimes, expr.OpDiv:
			return precMultiplicative
		default:
			return precCompare
		}
	case *expr.UnaryExpression:
		switch v.Type {
		case expr.OpNot:
			return precNot
		case expr.OpNegate:
			return precUnary
		default:
			return precCompare
		}
	case *expr.InListExpression:
		return precCompare
	default:
		return precAtom
	}
}

// writeOperand renders e, parenthesized when it binds looser than minPrec.
func (s *compileState) writeOperand(e expr.ScalarExpression, minPrec int) error {
	if precedence(e) < minPrec {
		s.write("(")
		if err := s.writeScalar(e); err != nil {
			return err
		}
		s.write(")")
		return nil
	}
	return s.writeScalar(e)
}

// writeScalar compiles a scalar expression.
// CRITICAL: Argument values are NEVER interpolated - always "?".
func (s *compileState) writeScalar(e expr.ScalarExpression) error {
	switch v := e.(type) {
	case *expr.ColumnExpression:
		if v.Table != nil {
			s.write(quoteIdent(v.Table.Label()), ".")
		}
		s.write(quoteIdent(v.Name))
		return nil

	case *expr.Argument:
		s.write("?")
		s.params = append(s.params, v.Value)
		return nil

	case *expr.BinaryExpression:
		p := precedence(v)
		if err := s.writeOperand(v.Left, p); err != nil {
			return err
		}
		s.write(" ", string(v.Type), " ")
		// Right operands of equal precedence are parenthesized to keep
		// left-associative grouping.
		return s.writeOperand(v.Right, p+1)

	case *expr.UnaryExpression:
		switch v.Type {
		case expr.OpNot:
			s.write("NOT ")
			return s.writeOperand(v.Operand, precNot)
		case expr.OpNegate:
			s.write("-")
			return s.writeOperand(v.Operand, precUnary)
		default:
			if err := s.writeOperand(v.Operand, precCompare+1); err != nil {
				return err
			}
			s.write(" ", string(v.Type))
			return nil
		}

	case *expr.AggregateExpression:
		s.write(string(v.Type), "(")
		if v.Distinct {
			s.write("DISTINCT ")
		}
		if v.Argument == nil {
			s.write("*")
		} else if err := s.writeScalar(v.Argument); err != nil {
			return err
		}
		s.write(")")
		return nil

	case *expr.InListExpression:
		if err := s.writeOperand(v.Left, precCompare+1); err != nil {
			return err
		}
		if v.NotIn {
			s.write(" NOT IN (")
		} else {
			s.write(" IN (")
		}
		for i, value := range v.Values {
			if i > 0 {
				s.write(", ")
			}
			if err := s.writeScalar(value); err != nil {
				return err
			}
		}
		s.write(")")
		return nil

	default:
		return fmt.Errorf("unsupported scalar expression type: %T", e)
	}
}

var plainIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reserved lists keywords that must be quoted when used as identifiers.
var reserved = map[string]bool{
	"all": true, "and": true, "as": true, "asc": true, "by": true,
	"desc": true, "distinct": true, "from": true, "group": true,
	"having": true, "in": true, "index": true, "is": true, "join": true,
	"like": true, "limit": true, "not": true, "null": true, "offset": true,
	"on": true, "or": true, "order": true, "select": true, "table": true,
	"union": true, "where": true,
}

// quoteIdent NFC-normalizes an identifier and double-quotes it unless it
// is a plain, non-reserved name.
func quoteIdent(name string) string {
	name = norm.NFC.String(name)
	if plainIdent.MatchString(name) && !reserved[strings.ToLower(name)] {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

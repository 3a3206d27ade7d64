package querysql

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mik629/ktorm/internal/expr"
)

var (
	employees = expr.Table("employees")
	empName   = employees.Column("name")
	empSalary = employees.Column("salary")
	empDept   = employees.Column("department_id")
	managers  = expr.Table("managers")
)

func mustCompile(t *testing.T, c *SQLCompiler, q expr.QueryExpression) (string, []any) {
	t.Helper()
	sql, params, err := c.Compile(q)
	require.NoError(t, err)
	return sql, params
}

func assertGolden(t *testing.T, name string, sql string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(sql+"\n"))
}

func beautifier() *SQLCompiler {
	c := NewSQLCompiler()
	c.Beautify = true
	return c
}

func TestCompile_Golden(t *testing.T) {
	t.Run("select_where_order_limit", func(t *testing.T) {
		var q expr.QueryExpression = expr.NewSelect(employees, expr.Declare(empName), expr.As(empSalary, "pay"))
		q, err := expr.WithWhere(q, expr.And(expr.Eq(empDept, 3), expr.Gt(empSalary, 1000)))
		require.NoError(t, err)
		q, err = expr.WithOrderBy(q, expr.Desc(empSalary), expr.Asc(empName))
		require.NoError(t, err)
		q, err = expr.WithLimit(q, 10, 5)
		require.NoError(t, err)

		sql, params := mustCompile(t, beautifier(), q)
		assert.Equal(t, []any{3, 1000}, params)
		assertGolden(t, "select_where_order_limit", sql)
	})

	t.Run("union_all_order_limit", func(t *testing.T) {
		var q expr.QueryExpression = expr.NewUnion(
			expr.NewSelect(employees, expr.DeclareAll(empName, empSalary)...),
			expr.NewSelect(managers, expr.DeclareAll(managers.Column("name"), managers.Column("salary"))...),
			true,
		)
		q, err := expr.WithOrderBy(q, expr.Desc(empSalary))
		require.NoError(t, err)
		q, err = expr.WithLimit(q, 0, 3)
		require.NoError(t, err)

		sql, params := mustCompile(t, beautifier(), q)
		assert.Empty(t, params)
		assertGolden(t, "union_all_order_limit", sql)
	})

	t.Run("count_grouped", func(t *testing.T) {
		s := expr.NewSelect(employees, expr.Declare(empDept), expr.As(expr.Count(nil), "n"))
		s.GroupBy = []expr.ScalarExpression{empDept}
		s.Having = expr.Gt(expr.Count(nil), 2)
		s.Limit = 4

		count, err := expr.ToCountExpression(s)
		require.NoError(t, err)

		sql, params := mustCompile(t, beautifier(), count)
		assert.Equal(t, []any{2}, params)
		assertGolden(t, "count_grouped", sql)
	})

	t.Run("union_branch_wrapped", func(t *testing.T) {
		left := expr.NewSelect(employees, expr.Declare(empName))
		left.OrderBy = []expr.OrderByExpression{expr.Asc(empName)}
		left.Limit = 2
		right := expr.NewSelect(managers, expr.Declare(managers.Column("name")))

		sql, _ := mustCompile(t, beautifier(), expr.NewUnion(left, right, false))
		assertGolden(t, "union_branch_wrapped", sql)
	})
}

func TestCompile_SimpleSelect(t *testing.T) {
	sql, params := mustCompile(t, NewSQLCompiler(), expr.NewSelect(employees))

	assert.Equal(t, "SELECT * FROM employees", sql)
	assert.Empty(t, params)
}

func TestCompile_Distinct(t *testing.T) {
	sql, _ := mustCompile(t, NewSQLCompiler(), expr.NewSelectDistinct(employees, expr.Declare(empDept)))
	assert.Equal(t, "SELECT DISTINCT employees.department_id FROM employees", sql)
}

func TestCompile_NoStringInterpolation(t *testing.T) {
	dangerousValue := "'; DROP TABLE employees; --"

	s := expr.NewSelect(employees)
	s.Where = expr.Eq(empName, dangerousValue)

	sql, params := mustCompile(t, NewSQLCompiler(), s)

	assert.NotContains(t, sql, dangerousValue, "Value MUST NOT be interpolated into SQL")
	assert.Equal(t, []any{dangerousValue}, params)
	assert.Contains(t, sql, "employees.name = ?")
}

func TestCompile_Precedence(t *testing.T) {
	a := expr.Eq(empName, "a")
	b := expr.Eq(empName, "b")
	c := expr.Gt(empSalary, 1)

	testCases := []struct {
		name     string
		where    expr.ScalarExpression
		expected string
	}{
		{
			name:     "left-folded AND is flat",
			where:    expr.CombineConditions([]expr.ScalarExpression{a, b, c}),
			expected: "employees.name = ? AND employees.name = ? AND employees.salary > ?",
		},
		{
			name:     "OR under AND is parenthesized",
			where:    expr.And(expr.Or(a, b), c),
			expected: "(employees.name = ? OR employees.name = ?) AND employees.salary > ?",
		},
		{
			name:     "AND under OR is not",
			where:    expr.Or(expr.And(a, b), c),
			expected: "employees.name = ? AND employees.name = ? OR employees.salary > ?",
		},
		{
			name:     "right-nested same precedence keeps grouping",
			where:    expr.Eq(empSalary, expr.Minus(empSalary, expr.Minus(empDept, 1))),
			expected: "employees.salary = employees.salary - (employees.department_id - ?)",
		},
		{
			name:     "NOT over comparison",
			where:    expr.Not(expr.Or(a, b)),
			expected: "NOT (employees.name = ? OR employees.name = ?)",
		},
		{
			name:     "IS NULL",
			where:    expr.IsNull(empDept),
			expected: "employees.department_id IS NULL",
		},
		{
			name:     "NOT IN list",
			where:    expr.NotIn(empDept, 1, 2, 3),
			expected: "employees.department_id NOT IN (?, ?, ?)",
		},
		{
			name:     "literal true",
			where:    expr.CombineConditions(nil),
			expected: "?",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := expr.NewSelect(employees)
			s.Where = tc.where

			sql, _ := mustCompile(t, NewSQLCompiler(), s)
			assert.Equal(t, "SELECT * FROM employees WHERE "+tc.expected, sql)
		})
	}
}

func TestCompile_Aggregates(t *testing.T) {
	s := expr.NewSelect(employees,
		expr.Declare(empDept),
		expr.As(expr.Count(nil), "n"),
		expr.As(expr.CountDistinct(empName), "names"),
		expr.As(expr.Sum(empSalary), "total"),
		expr.As(expr.Avg(empSalary), "mean"),
	)
	s.GroupBy = []expr.ScalarExpression{empDept}

	sql, _ := mustCompile(t, NewSQLCompiler(), s)
	assert.Equal(t,
		"SELECT employees.department_id, COUNT(*) AS n, COUNT(DISTINCT employees.name) AS names, "+
			"SUM(employees.salary) AS total, AVG(employees.salary) AS mean "+
			"FROM employees GROUP BY employees.department_id",
		sql)
}

func TestCompile_Joins(t *testing.T) {
	e := expr.Table("employees").As("e")
	d := expr.Table("departments").As("d")
	l := expr.Table("locations")

	t.Run("inner join with aliases", func(t *testing.T) {
		src := expr.Join(expr.InnerJoin, e, d, expr.Eq(e.Column("department_id"), d.Column("id")))
		s := expr.NewSelect(src, expr.Declare(e.Column("name")), expr.As(d.Column("name"), "department"))

		sql, _ := mustCompile(t, NewSQLCompiler(), s)
		assert.Equal(t, "SELECT e.name, d.name AS department FROM employees e INNER JOIN departments d ON e.department_id = d.id", sql)
	})

	t.Run("left-deep chain", func(t *testing.T) {
		first := expr.Join(expr.LeftJoin, e, d, expr.Eq(e.Column("department_id"), d.Column("id")))
		src := expr.Join(expr.CrossJoin, first, l, nil)

		sql, _ := mustCompile(t, NewSQLCompiler(), expr.NewSelect(src))
		assert.Equal(t, "SELECT * FROM employees e LEFT JOIN departments d ON e.department_id = d.id CROSS JOIN locations", sql)
	})

	t.Run("right-nested join is parenthesized", func(t *testing.T) {
		inner := expr.Join(expr.InnerJoin, d, l, expr.Eq(d.Column("location_id"), l.Column("id")))
		src := expr.Join(expr.RightJoin, e, inner, expr.Eq(e.Column("department_id"), d.Column("id")))

		sql, _ := mustCompile(t, NewSQLCompiler(), expr.NewSelect(src))
		assert.Equal(t, "SELECT * FROM employees e RIGHT JOIN (departments d INNER JOIN locations ON d.location_id = locations.id) ON e.department_id = d.id", sql)
	})
}

func TestCompile_Unions(t *testing.T) {
	mgr := expr.NewSelect(managers, expr.Declare(managers.Column("name")))
	emp := expr.NewSelect(employees, expr.Declare(empName))
	ctr := expr.NewSelect(expr.Table("contractors"), expr.Declare(expr.Table("contractors").Column("name")))

	t.Run("left-nested union is flat", func(t *testing.T) {
		q := expr.NewUnion(expr.NewUnion(emp, mgr, false), ctr, true)
		sql, _ := mustCompile(t, NewSQLCompiler(), q)
		assert.Equal(t, "SELECT employees.name FROM employees UNION SELECT managers.name FROM managers UNION ALL SELECT contractors.name FROM contractors", sql)
	})

	t.Run("right-nested union is wrapped", func(t *testing.T) {
		q := expr.NewUnion(emp, expr.NewUnion(mgr, ctr, true), false)
		sql, _ := mustCompile(t, NewSQLCompiler(), q)
		assert.Equal(t, "SELECT employees.name FROM employees UNION SELECT * FROM (SELECT managers.name FROM managers UNION ALL SELECT contractors.name FROM contractors)", sql)
	})

	t.Run("offset without limit", func(t *testing.T) {
		q, err := expr.WithLimit(expr.NewUnion(emp, mgr, true), 4, 0)
		require.NoError(t, err)
		sql, _ := mustCompile(t, NewSQLCompiler(), q)
		assert.Equal(t, "SELECT employees.name FROM employees UNION ALL SELECT managers.name FROM managers LIMIT -1 OFFSET 4", sql)
	})
}

func TestCompile_ParamsInOrder(t *testing.T) {
	left := expr.NewSelect(employees, expr.Declare(empName))
	left.Where = expr.Eq(empDept, 1)
	right := expr.NewSelect(managers, expr.Declare(managers.Column("name")))
	right.Where = expr.In(managers.Column("level"), "senior", "staff")

	_, params := mustCompile(t, NewSQLCompiler(), expr.NewUnion(left, right, true))
	assert.Equal(t, []any{1, "senior", "staff"}, params)
}

func TestCompile_Deterministic(t *testing.T) {
	s := expr.NewSelect(employees, expr.DeclareAll(empName, empSalary)...)
	s.Where = expr.Like(empName, "a%")

	first, firstParams := mustCompile(t, NewSQLCompiler(), s)
	for i := 0; i < 10; i++ {
		sql, params := mustCompile(t, NewSQLCompiler(), s)
		assert.Equal(t, first, sql)
		assert.Equal(t, firstParams, params)
	}

	// Beautified text differs only in whitespace.
	pretty, _ := mustCompile(t, beautifier(), s)
	assert.Equal(t, first, collapseWhitespace(pretty))
}

func TestCompile_QuotesIdentifiers(t *testing.T) {
	orders := expr.Table("order")
	s := expr.NewSelect(orders, expr.Declare(orders.Column("group")), expr.As(orders.Column("total"), "grand total"))

	sql, _ := mustCompile(t, NewSQLCompiler(), s)
	assert.Equal(t, `SELECT "order"."group", "order".total AS "grand total" FROM "order"`, sql)
}

func TestCompile_NormalizesIdentifiers(t *testing.T) {
	// "é" as e + combining acute (NFD) is rendered in NFC.
	table := expr.Table("cafe\u0301")
	sql, _ := mustCompile(t, NewSQLCompiler(), expr.NewSelect(table))
	assert.Equal(t, "SELECT * FROM \"caf\u00e9\"", sql)
}

func TestCompile_Errors(t *testing.T) {
	_, _, err := NewSQLCompiler().Compile(nil)
	require.Error(t, err)

	s := expr.NewSelect(nil)
	_, _, err = NewSQLCompiler().Compile(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source type")
}

func collapseWhitespace(s string) string {
	out := make([]byte, 0, len(s))
	space := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '\n' || ch == ' ' {
			space = true
			continue
		}
		if space && len(out) > 0 {
			out = append(out, ' ')
		}
		space = false
		out = append(out, ch)
	}
	return string(out)
}

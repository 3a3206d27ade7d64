package querydef

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mik629/ktorm/internal/expr"
	"github.com/mik629/ktorm/internal/testutil"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	def, err := Load("testdata/high_earners.yaml")
	require.NoError(t, err)

	assert.Equal(t, "employees", def.From)
	assert.Equal(t, "e", def.Alias)
	assert.Len(t, def.Columns, 2)
	require.Len(t, def.Where, 2)
	assert.Equal(t, ">", def.Where[0].Op)
	assert.Equal(t, []any{"engineer", "seller"}, def.Where[1].Value)
	assert.Equal(t, []Order{{Column: "e.salary", Desc: true}}, def.OrderBy)
	assert.Equal(t, 3, def.Limit)
}

func TestBuild_YAML(t *testing.T) {
	db := testutil.OpenEmployees(t)
	ctx := context.Background()

	def, err := Load("testdata/high_earners.yaml")
	require.NoError(t, err)
	q, err := Build(db, def)
	require.NoError(t, err)

	rs, err := q.RowSet(ctx)
	require.NoError(t, err)
	var names []string
	for _, row := range rs.All() {
		names = append(names, row.String("name"))
	}
	assert.Equal(t, []string{"emp37", "emp36", "emp34"}, names)

	total, err := q.TotalRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestBuild_CUEGroupedJoin(t *testing.T) {
	db := testutil.OpenEmployees(t)

	def, err := Load("testdata/headcount.cue")
	require.NoError(t, err)
	require.Len(t, def.Joins, 1)
	assert.Equal(t, &JoinOn{Left: "e.department_id", Right: "d.id"}, def.Joins[0].On)

	q, err := Build(db, def)
	require.NoError(t, err)

	type headcount struct {
		department string
		people     int64
		top        int64
	}
	rs, err := q.RowSet(context.Background())
	require.NoError(t, err)
	var got []headcount
	for _, row := range rs.All() {
		got = append(got, headcount{row.String("department"), row.Int64("headcount"), row.Int64("top_salary")})
	}
	assert.Equal(t, []headcount{
		{"engineering", 13, 235},
		{"operations", 12, 225},
		{"sales", 12, 230},
	}, got)
}

func TestBuild_JSONUnion(t *testing.T) {
	db := testutil.OpenEmployees(t)
	ctx := context.Background()

	def, err := Load("testdata/two_departments.json")
	require.NoError(t, err)
	require.Len(t, def.Unions, 1)
	assert.True(t, def.Unions[0].All)

	q, err := Build(db, def)
	require.NoError(t, err)

	u, ok := q.Expression().(*expr.UnionExpression)
	require.True(t, ok)
	assert.True(t, u.IsAll)
	assert.Equal(t, []expr.OrderByExpression{expr.Desc(expr.Col("salary"))}, u.OrderBy)

	rs, err := q.RowSet(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, rs.Len())
	top, _ := rs.Row(0)
	assert.Equal(t, "emp37", top.String("who"))

	total, err := q.TotalRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
}

func TestBuild_CombineOr(t *testing.T) {
	db := testutil.OpenEmployees(t)

	q, err := Build(db, &Definition{
		From:    "employees",
		Combine: "or",
		Where: []Condition{
			{Column: "department_id", Op: "=", Value: 1},
			{Column: "department_id", Op: "=", Value: 2},
		},
	})
	require.NoError(t, err)

	sel := q.Expression().(*expr.SelectExpression)
	assert.Equal(t, expr.Or(expr.Eq(expr.Col("department_id"), 1), expr.Eq(expr.Col("department_id"), 2)), sel.Where)

	total, err := q.TotalRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, total)
}

func TestBuild_NullTestsAndLeftJoin(t *testing.T) {
	db := testutil.OpenEmployees(t)

	q, err := Build(db, &Definition{
		From:  "employees",
		Alias: "e",
		Joins: []Join{{Type: "left", Table: "employees", Alias: "m", On: &JoinOn{Left: "e.manager_id", Right: "m.id"}}},
		Columns: []Column{
			{Column: "e.name"},
			{Column: "m.name", Alias: "manager"},
		},
		Where:   []Condition{{Column: "e.manager_id", Op: "is null"}},
		OrderBy: []Order{{Column: "e.id"}},
	})
	require.NoError(t, err)

	rs, err := q.RowSet(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, rs.Len())
	for _, row := range rs.All() {
		assert.Nil(t, row.Get("manager"))
	}
}

func TestBuild_UnknownQualifier(t *testing.T) {
	db := testutil.OpenEmployees(t)

	_, err := Build(db, &Definition{
		From:    "employees",
		Columns: []Column{{Column: "x.name"}},
	})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ErrUnknownQualifier, verr.Code)
	assert.Equal(t, "columns[0].column", verr.Field)
}

func TestBuild_UnionOrderingMustBeDeclared(t *testing.T) {
	db := testutil.OpenEmployees(t)
	branch := func() *Definition {
		return &Definition{From: "employees", Columns: []Column{{Column: "employees.name"}}}
	}

	def := branch()
	def.Unions = []Union{{Query: branch()}}
	def.OrderBy = []Order{{Column: "employees.salary"}}

	_, err := Build(db, def)
	require.Error(t, err)
	assert.True(t, expr.IsUnresolvedReference(err))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
		contains string
	}{
		{
			name:     "unknown yaml field",
			file:     "typo.yaml",
			content:  "form: employees\n",
			wantCode: ErrCodeParseFailed,
			contains: "form",
		},
		{
			name:     "unsupported extension",
			file:     "query.txt",
			content:  "from: employees\n",
			wantCode: ErrCodeUnsupportedFormat,
			contains: "query.txt",
		},
		{
			name:     "cue syntax",
			file:     "broken.cue",
			content:  "from: \"employees\"\ncolumns: [\n",
			wantCode: ErrCodeParseFailed,
		},
		{
			name:     "cue negative limit",
			file:     "bad.cue",
			content:  "from: \"employees\"\nlimit: -1\n",
			wantCode: ErrCodeSchema,
			contains: "limit",
		},
		{
			name:     "cue unknown field",
			file:     "closed.cue",
			content:  "from: \"employees\"\nfrm: 1\n",
			wantCode: ErrCodeSchema,
		},
		{
			name:     "cue unknown operator",
			file:     "op.json",
			content:  `{"from": "employees", "where": [{"column": "id", "op": "between", "value": 1}]}`,
			wantCode: ErrCodeSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "got %T: %v", err, err)
			assert.Equal(t, tt.wantCode, loadErr.Code)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeReadFailed, loadErr.Code)
}

func TestLoad_ValidationErrors(t *testing.T) {
	path := writeFile(t, "invalid.yaml", `
from: ""
combine: xor
joins:
  - {table: departments, type: left}
where:
  - {column: salary, op: between, value: 1}
unions:
  - {all: true}
limit: -1
`)

	_, err := Load(path)
	require.Error(t, err)

	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))

	codes := map[string]string{}
	for _, e := range errs {
		codes[e.Field] = e.Code
	}
	assert.Equal(t, map[string]string{
		"from":            ErrMissingFrom,
		"combine":         ErrInvalidCombine,
		"joins[0].on":     ErrInvalidJoin,
		"where[0].op":     ErrInvalidOperator,
		"limit":           ErrInvalidPagination,
		"unions[0].query": ErrMissingFrom,
	}, codes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		def   Definition
		field string
		code  string
	}{
		{
			name:  "aggregate without column",
			def:   Definition{From: "t", Columns: []Column{{Aggregate: "sum"}}},
			field: "columns[0].column",
			code:  ErrMissingColumn,
		},
		{
			name:  "unknown aggregate",
			def:   Definition{From: "t", Columns: []Column{{Column: "x", Aggregate: "median"}}},
			field: "columns[0].aggregate",
			code:  ErrInvalidAggregate,
		},
		{
			name:  "in without list",
			def:   Definition{From: "t", Where: []Condition{{Column: "x", Op: "in", Value: 3}}},
			field: "where[0].value",
			code:  ErrInvalidOperator,
		},
		{
			name:  "comparison without value",
			def:   Definition{From: "t", Where: []Condition{{Column: "x", Op: "="}}},
			field: "where[0].value",
			code:  ErrInvalidOperator,
		},
		{
			name:  "cross join with condition",
			def:   Definition{From: "t", Joins: []Join{{Type: "cross", Table: "u", On: &JoinOn{Left: "a", Right: "b"}}}},
			field: "joins[0].on",
			code:  ErrInvalidJoin,
		},
		{
			name:  "nested union",
			def:   Definition{From: "t", Unions: []Union{{Query: &Definition{From: "u", Offset: -2}}}},
			field: "unions[0].query.offset",
			code:  ErrInvalidPagination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.def)
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.code, errs[0].Code)
		})
	}

	assert.Empty(t, Validate(&Definition{
		From:    "t",
		Columns: []Column{{Aggregate: "count"}, {Column: "x", Aggregate: "count", Distinct: true}},
		Having:  []Condition{{Aggregate: "count", Op: ">", Value: 1}},
	}))
}

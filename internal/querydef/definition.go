// Package querydef loads declarative query definitions from YAML, CUE or
// JSON files and builds them into dsl queries.
//
// A definition names its source table, optional joins, output columns,
// filters, grouping, ordering, pagination and unions:
//
//	from: employees
//	alias: e
//	columns:
//	  - column: e.name
//	  - column: e.salary
//	where:
//	  - {column: e.salary, op: ">", value: 100}
//	order_by:
//	  - {column: e.salary, desc: true}
//	limit: 10
//
// Column references are "qualifier.column", where the qualifier is the
// alias (or name) of the table or a join, or a bare column name.
package querydef

// Definition is one query.
type Definition struct {
	// From is the source table name. Required.
	From string `yaml:"from" json:"from"`

	// Alias optionally renames the source table.
	Alias string `yaml:"alias,omitempty" json:"alias,omitempty"`

	// Distinct removes duplicate rows.
	Distinct bool `yaml:"distinct,omitempty" json:"distinct,omitempty"`

	// Joins are applied to the source in order.
	Joins []Join `yaml:"joins,omitempty" json:"joins,omitempty"`

	// Columns are the output columns. Empty selects every column.
	Columns []Column `yaml:"columns,omitempty" json:"columns,omitempty"`

	// Where filters rows. Conditions are combined with Combine.
	Where []Condition `yaml:"where,omitempty" json:"where,omitempty"`

	// Combine is "and" (default) or "or".
	Combine string `yaml:"combine,omitempty" json:"combine,omitempty"`

	// GroupBy lists grouping column references.
	GroupBy []string `yaml:"group_by,omitempty" json:"group_by,omitempty"`

	// Having filters groups. Conditions are always combined with AND.
	Having []Condition `yaml:"having,omitempty" json:"having,omitempty"`

	// Unions are combined with this query, left to right.
	Unions []Union `yaml:"unions,omitempty" json:"unions,omitempty"`

	// OrderBy orders the result. With unions it applies to the combined
	// result and must name columns declared by this query.
	OrderBy []Order `yaml:"order_by,omitempty" json:"order_by,omitempty"`

	// Offset and Limit paginate the result. Zero means unset.
	Offset int `yaml:"offset,omitempty" json:"offset,omitempty"`
	Limit  int `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// Join is one joined table.
type Join struct {
	// Type is "inner" (default), "left", "right" or "cross".
	Type  string `yaml:"type,omitempty" json:"type,omitempty"`
	Table string `yaml:"table" json:"table"`
	Alias string `yaml:"alias,omitempty" json:"alias,omitempty"`

	// On joins when the two referenced columns are equal. Not used by
	// cross joins.
	On *JoinOn `yaml:"on,omitempty" json:"on,omitempty"`
}

// JoinOn is an equality join condition.
type JoinOn struct {
	Left  string `yaml:"left" json:"left"`
	Right string `yaml:"right" json:"right"`
}

// Column is one output column.
type Column struct {
	// Column is a column reference; "*" or empty is allowed with the
	// count aggregate.
	Column string `yaml:"column,omitempty" json:"column,omitempty"`

	// Alias names the output column. Plain columns default to their name.
	Alias string `yaml:"alias,omitempty" json:"alias,omitempty"`

	// Aggregate is one of count, sum, avg, min, max.
	Aggregate string `yaml:"aggregate,omitempty" json:"aggregate,omitempty"`

	// Distinct applies to the aggregate argument.
	Distinct bool `yaml:"distinct,omitempty" json:"distinct,omitempty"`
}

// Condition compares a column (or an aggregate of it) with a value.
type Condition struct {
	Column    string `yaml:"column,omitempty" json:"column,omitempty"`
	Aggregate string `yaml:"aggregate,omitempty" json:"aggregate,omitempty"`

	// Op is one of =, <>, <, <=, >, >=, like, in, not in, is null,
	// is not null.
	Op string `yaml:"op" json:"op"`

	// Value is the bound argument. A list for in and not in, unused for
	// the null tests.
	Value any `yaml:"value,omitempty" json:"value,omitempty"`
}

// Order is one ordering entry.
type Order struct {
	Column string `yaml:"column" json:"column"`
	Desc   bool   `yaml:"desc,omitempty" json:"desc,omitempty"`
}

// Union combines another query with this one.
type Union struct {
	All   bool        `yaml:"all,omitempty" json:"all,omitempty"`
	Query *Definition `yaml:"query" json:"query"`
}

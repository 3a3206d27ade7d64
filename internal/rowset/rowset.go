// Package rowset provides an offline, randomly addressable view over the
// result of one executed statement.
//
// A RowSet is fully materialized when it is built, so it stays readable
// after the underlying *sql.Rows is closed. Values are addressed by the
// column label the database reported (the declared alias of the column),
// or by position. A RowSet is immutable and safe for concurrent reads.
package rowset

import (
	"database/sql"
	"fmt"
	"iter"
	"strings"
)

// RowSet is an immutable, in-memory result set.
type RowSet struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New builds a RowSet from column labels and row values. Each row must
// have one value per column.
func New(columns []string, rows [][]any) (*RowSet, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(columns))
		}
	}

	rs := &RowSet{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		rows:    rows,
	}
	for i, c := range columns {
		// First occurrence wins for duplicate labels.
		if _, exists := rs.index[c]; !exists {
			rs.index[c] = i
		}
	}
	if rs.rows == nil {
		rs.rows = [][]any{}
	}
	return rs, nil
}

// FromRows drains rows into a RowSet. The caller still owns rows and is
// responsible for closing it.
func FromRows(rows *sql.Rows) (*RowSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			// The driver may reuse byte buffers between rows.
			if b, ok := v.([]byte); ok {
				values[i] = append([]byte(nil), b...)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return New(columns, data)
}

// Columns returns the column labels in result order.
func (rs *RowSet) Columns() []string {
	return append([]string(nil), rs.columns...)
}

// Len returns the number of rows.
func (rs *RowSet) Len() int {
	return len(rs.rows)
}

// ColumnIndex returns the position of the column labeled label. Labels are
// matched exactly first, then case-insensitively.
func (rs *RowSet) ColumnIndex(label string) (int, bool) {
	if i, ok := rs.index[label]; ok {
		return i, true
	}
	for i, c := range rs.columns {
		if strings.EqualFold(c, label) {
			return i, true
		}
	}
	return -1, false
}

// Row returns the row at position i.
func (rs *RowSet) Row(i int) (Row, bool) {
	if i < 0 || i >= len(rs.rows) {
		return Row{}, false
	}
	return Row{set: rs, pos: i}, true
}

// Iterator returns a new forward-only iterator positioned before the first
// row. Iterators are independent of each other.
func (rs *RowSet) Iterator() *Iterator {
	return &Iterator{set: rs, pos: -1}
}

// All yields every row with its position.
func (rs *RowSet) All() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i := range rs.rows {
			if !yield(i, Row{set: rs, pos: i}) {
				return
			}
		}
	}
}

// Iterator walks a RowSet forward.
//
// Usage:
//
//	it := rs.Iterator()
//	for it.Next() {
//	    name := it.Row().String("name")
//	}
type Iterator struct {
	set *RowSet
	pos int
}

// Next advances to the next row and reports whether one exists.
func (it *Iterator) Next() bool {
	if it.pos+1 >= len(it.set.rows) {
		it.pos = len(it.set.rows)
		return false
	}
	it.pos++
	return true
}

// Row returns the current row. It must only be called after Next returned true.
func (it *Iterator) Row() Row {
	return Row{set: it.set, pos: it.pos}
}

// Index returns the position of the current row.
func (it *Iterator) Index() int {
	return it.pos
}

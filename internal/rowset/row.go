package rowset

import (
	"fmt"
	"strconv"
	"time"
)

// Row is a view of one row of a RowSet. It is a small value and stays
// valid for the lifetime of the RowSet.
type Row struct {
	set *RowSet
	pos int
}

// Index returns the position of the row in its RowSet.
func (r Row) Index() int {
	return r.pos
}

// Lookup returns the value of the column labeled label.
func (r Row) Lookup(label string) (any, bool) {
	i, ok := r.set.ColumnIndex(label)
	if !ok {
		return nil, false
	}
	return r.set.rows[r.pos][i], true
}

// Get returns the value of the column labeled label, or nil if the column
// does not exist or is NULL.
func (r Row) Get(label string) any {
	v, _ := r.Lookup(label)
	return v
}

// At returns the value at column position i.
func (r Row) At(i int) any {
	if i < 0 || i >= len(r.set.columns) {
		return nil
	}
	return r.set.rows[r.pos][i]
}

// Values returns a copy of the row's values in column order.
func (r Row) Values() []any {
	return append([]any(nil), r.set.rows[r.pos]...)
}

// Map returns the row as a label to value map.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.set.columns))
	for i, c := range r.set.columns {
		if _, exists := m[c]; !exists {
			m[c] = r.set.rows[r.pos][i]
		}
	}
	return m
}

// String returns the column as a string; NULL and missing columns are "".
func (r Row) String(label string) string {
	s, _ := ToString(r.Get(label))
	return s
}

// Int64 returns the column as an int64; NULL and unconvertible values are 0.
func (r Row) Int64(label string) int64 {
	n, _ := ToInt64(r.Get(label))
	return n
}

// Float64 returns the column as a float64; NULL and unconvertible values are 0.
func (r Row) Float64(label string) float64 {
	f, _ := ToFloat64(r.Get(label))
	return f
}

// Bool returns the column as a bool; NULL and unconvertible values are false.
func (r Row) Bool(label string) bool {
	switch v := r.Get(label).(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case []byte:
		b, _ := strconv.ParseBool(string(v))
		return b
	default:
		return false
	}
}

// ToString converts a driver value to a string.
func ToString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	case time.Time:
		return val.Format(time.RFC3339Nano), true
	default:
		return fmt.Sprintf("%v", val), true
	}
}

// ToInt64 converts a driver value to an int64.
func ToInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case float64:
		return int64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		return n, err == nil
	case []byte:
		n, err := strconv.ParseInt(string(val), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// ToFloat64 converts a driver value to a float64.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(string(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

package expr

// countAlias names the sub-select wrapped by ToCountExpression.
const countAlias = "tmp_count"

// ToCountExpression derives the statement that counts the rows q would
// return without pagination.
//
// Ordering and pagination are dropped. A simple select (no grouping,
// having, distinct or aggregate column) keeps its source and filter and
// has its output replaced by COUNT(*). Every other shape is wrapped:
//
//	SELECT COUNT(*) FROM (<q without ordering and pagination>) tmp_count
func ToCountExpression(q QueryExpression) (*SelectExpression, error) {
	stripped, err := stripOrderAndPagination(q)
	if err != nil {
		return nil, err
	}

	if sel, ok := stripped.(*SelectExpression); ok && isSimpleSelect(sel) {
		c := *sel
		c.Columns = []ColumnDeclaring{{Expression: Count(nil)}}
		return &c, nil
	}

	return NewSelect(SubQuery(stripped, countAlias), ColumnDeclaring{Expression: Count(nil)}), nil
}

// stripOrderAndPagination removes ordering and pagination from the root.
// Branch orderings of a union are kept since they may bound a branch.
func stripOrderAndPagination(q QueryExpression) (QueryExpression, error) {
	switch query := q.(type) {
	case *SelectExpression:
		c := *query
		c.OrderBy, c.Offset, c.Limit = nil, 0, 0
		return &c, nil
	case *UnionExpression:
		c := *query
		c.OrderBy, c.Offset, c.Limit = nil, 0, 0
		return &c, nil
	default:
		return nil, newUnsupportedError(q)
	}
}

func isSimpleSelect(s *SelectExpression) bool {
	if len(s.GroupBy) > 0 || s.Having != nil || s.Distinct {
		return false
	}
	for _, col := range s.Columns {
		if containsAggregate(col.Expression) {
			return false
		}
	}
	return true
}

func containsAggregate(e ScalarExpression) bool {
	switch v := e.(type) {
	case *AggregateExpression:
		return true
	case *BinaryExpression:
		return containsAggregate(v.Left) || containsAggregate(v.Right)
	case *UnaryExpression:
		return containsAggregate(v.Operand)
	default:
		return false
	}
}

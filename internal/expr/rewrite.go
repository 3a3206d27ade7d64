package expr

// ResolveUnionOrderBy rewrites orderings written against the underlying
// columns of a union's left-most select into bare references to that
// select's declared output aliases.
//
// Only the left spine is consulted: the left branch defines the union's
// output schema and the other branches correspond to it by position.
// An ordering matches a declaration when the declaration has an alias and
// its expression is structurally equal (see Equal) to the ordering's
// expression. The direction of each ordering is preserved.
//
// Returns ErrCodeUnresolvedReference for the first ordering with no match.
func ResolveUnionOrderBy(u *UnionExpression, orders []OrderByExpression) ([]OrderByExpression, error) {
	leaf, err := LeftmostSelect(u)
	if err != nil {
		return nil, err
	}

	resolved := make([]OrderByExpression, 0, len(orders))
	for _, order := range orders {
		alias, ok := findAlias(leaf.Columns, order.Expression)
		if !ok {
			return nil, NewUnresolvedReferenceError(order.Expression)
		}
		resolved = append(resolved, OrderByExpression{
			Expression: Col(alias),
			OrderType:  order.OrderType,
		})
	}
	return resolved, nil
}

// findAlias returns the alias of the first declaration whose expression
// equals e.
func findAlias(columns []ColumnDeclaring, e ScalarExpression) (string, bool) {
	for _, decl := range columns {
		if decl.Alias == "" {
			continue
		}
		if Equal(decl.Expression, e) {
			return decl.Alias, true
		}
	}
	return "", false
}

// LeftmostSelect descends the left spine of q to its select leaf.
//
// Every well-formed tree ends in a select on its left spine; a nil or
// foreign node on the spine is reported as ErrCodeUnsupportedExpression.
func LeftmostSelect(q QueryExpression) (*SelectExpression, error) {
	for {
		switch query := q.(type) {
		case *SelectExpression:
			if query == nil {
				return nil, newUnsupportedError(q)
			}
			return query, nil
		case *UnionExpression:
			if query == nil {
				return nil, newUnsupportedError(q)
			}
			q = query.Left
		case nil:
			return nil, &QueryError{
				Code:    ErrCodeUnsupportedExpression,
				Message: "union has no select on its left spine",
			}
		default:
			return nil, newUnsupportedError(q)
		}
	}
}

package expr

import (
	"fmt"
	"reflect"
	"strings"
)

// Equal reports whether two expressions are structurally equal: same node
// types, same operators, same identifiers and equal argument values.
// Pointer identity is irrelevant.
func Equal(a, b SQLExpression) bool {
	return reflect.DeepEqual(a, b)
}

// Describe returns a compact, human-readable form of a scalar expression
// for error messages. It is not valid SQL.
func Describe(e ScalarExpression) string {
	switch v := e.(type) {
	case nil:
		return "<nil>"
	case *ColumnExpression:
		if v.Table != nil {
			return v.Table.Label() + "." + v.Name
		}
		return v.Name
	case *Argument:
		return fmt.Sprintf("%v", v.Value)
	case *BinaryExpression:
		return fmt.Sprintf("(%s %s %s)", Describe(v.Left), v.Type, Describe(v.Right))
	case *UnaryExpression:
		if v.Type == OpNot || v.Type == OpNegate {
			return fmt.Sprintf("%s %s", v.Type, Describe(v.Operand))
		}
		return fmt.Sprintf("%s %s", Describe(v.Operand), v.Type)
	case *AggregateExpression:
		arg := "*"
		if v.Argument != nil {
			arg = Describe(v.Argument)
		}
		if v.Distinct {
			arg = "DISTINCT " + arg
		}
		return fmt.Sprintf("%s(%s)", v.Type, arg)
	case *InListExpression:
		parts := make([]string, len(v.Values))
		for i, value := range v.Values {
			parts[i] = Describe(value)
		}
		op := "IN"
		if v.NotIn {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", Describe(v.Left), op, strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("%T", e)
	}
}

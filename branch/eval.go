package branch

import "github.com/viant/javalineage/graph"

func toLong(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func toStr(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func constNodeNumeric(n *graph.Node) (int64, bool) {
	switch n.ConstKind {
	case graph.ConstInt, graph.ConstLong:
		return n.IntValue, true
	case graph.ConstBoolean:
		if n.BoolValue {
			return 1, true
		}
		return 0, true
	case graph.ConstFloat, graph.ConstDouble:
		return int64(n.FloatValue), true
	}
	return 0, false
}

func constNodeString(n *graph.Node) (string, bool) {
	if n.ConstKind == graph.ConstString {
		return n.StringValue, true
	}
	return "", false
}

// evaluateComparison evaluates "assumed op comparand": long-typed numeric
// coercion (booleans as 0/1) when both sides are numeric; for EQ/NE with a
// non-numeric side, falls back to reference-level (string) equality;
// ordering operators on non-numeric non-null sides yield "unknown".
func evaluateComparison(op graph.ComparisonOperator, assumed interface{}, comparand *graph.Node) string {
	if aLong, aOK := toLong(assumed); aOK {
		if cLong, cOK := constNodeNumeric(comparand); cOK {
			return boolStr(compareLong(op, aLong, cLong))
		}
	}

	switch op {
	case graph.EQ, graph.NE:
		aStr, aIsStr := toStr(assumed)
		cStr, cIsStr := constNodeString(comparand)
		equal := false
		if aIsStr && cIsStr {
			equal = aStr == cStr
		}
		if op == graph.EQ {
			return boolStr(equal)
		}
		return boolStr(!equal)
	default:
		return "unknown"
	}
}

func compareLong(op graph.ComparisonOperator, a, b int64) bool {
	switch op {
	case graph.EQ:
		return a == b
	case graph.NE:
		return a != b
	case graph.LT:
		return a < b
	case graph.GE:
		return a >= b
	case graph.GT:
		return a > b
	case graph.LE:
		return a <= b
	}
	return false
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func constantEquals(n *graph.Node, value interface{}) bool {
	if l, ok := toLong(value); ok {
		if cl, ok2 := constNodeNumeric(n); ok2 {
			return l == cl
		}
	}
	if s, ok := toStr(value); ok {
		if cs, ok2 := constNodeString(n); ok2 {
			return s == cs
		}
	}
	return false
}

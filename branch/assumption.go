package branch

import "github.com/viant/javalineage/graph"

// Assumption states that every call site matching Pattern (optionally
// constrained to carry ArgumentValue at ArgumentIndex) is assumed to
// evaluate to AssumedValue. AssumedValue and ArgumentValue are int64 (or
// int), bool, or string — the only literal shapes a branch condition's
// comparand can be.
type Assumption struct {
	Pattern       graph.MethodPattern
	ArgumentIndex *int
	ArgumentValue interface{}
	AssumedValue  interface{}
}

// WithArgument returns a copy of a constrained to argument index idx
// equalling value.
func (a Assumption) WithArgument(idx int, value interface{}) Assumption {
	a.ArgumentIndex = &idx
	a.ArgumentValue = value
	return a
}

package query

import (
	"context"
	"strings"

	"github.com/viant/javalineage/dataflow"
	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

// ComplianceCheck is an optional caller-supplied predicate applied verbatim
// to every matching field, per DESIGN.md's Open Question decision: the
// engine does not interpret "compliance" itself, it only surfaces the
// caller's verdict.
type ComplianceCheck func(field descriptor.FieldDescriptor) bool

// FieldTypeResult is one field whose declared type matched a requested
// type pattern.
type FieldTypeResult struct {
	Field         descriptor.FieldDescriptor
	DeclaringType descriptor.TypeDescriptor
	IsCompliant   bool
}

// FindFieldsOfType scans every FieldNode whose field-type class matches any
// of typePatterns (exact match, or a "*"-suffixed prefix match). When check
// is non-nil it is applied to every match and its verdict is surfaced
// verbatim as IsCompliant; a nil check yields true.
func FindFieldsOfType(ctx context.Context, g *graph.Graph, typePatterns []string, check ComplianceCheck) ([]FieldTypeResult, error) {
	seen := map[string]bool{}
	var out []FieldTypeResult
	for _, n := range g.NodesOfKind(graph.KindField) {
		if ctx.Err() != nil {
			return nil, dataflow.ErrCancelled
		}
		key := n.Field.Key()
		if seen[key] {
			continue
		}
		if !matchesAnyTypePattern(n.Field.Type.ClassName, typePatterns) {
			continue
		}
		seen[key] = true
		compliant := true
		if check != nil {
			compliant = check(n.Field)
		}
		out = append(out, FieldTypeResult{
			Field:         n.Field,
			DeclaringType: n.Field.DeclaringClass,
			IsCompliant:   compliant,
		})
	}
	return out, nil
}

func matchesAnyTypePattern(className string, patterns []string) bool {
	for _, p := range patterns {
		if strings.HasSuffix(p, "*") {
			if strings.HasPrefix(className, strings.TrimSuffix(p, "*")) {
				return true
			}
			continue
		}
		if className == p {
			return true
		}
	}
	return false
}

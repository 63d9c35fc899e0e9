package endpoint

import (
	"strings"

	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/typehierarchy"
)

// schemaRegistry accumulates components.schemas entries while recursively
// translating TypeStructures into Schema objects, short-circuiting cycles
// and depth-limit breaches to a $ref of the already-registered (possibly
// still-empty) schema.
type schemaRegistry struct {
	schemas  map[string]Schema
	inflight map[string]bool
	maxDepth int
}

var scalarMapping = map[string]Schema{
	"int": {Type: "integer", Format: "int32"}, "java.lang.Integer": {Type: "integer", Format: "int32"},
	"short": {Type: "integer", Format: "int32"}, "java.lang.Short": {Type: "integer", Format: "int32"},
	"byte": {Type: "integer", Format: "int32"}, "java.lang.Byte": {Type: "integer", Format: "int32"},
	"long": {Type: "integer", Format: "int64"}, "java.lang.Long": {Type: "integer", Format: "int64"},
	"float": {Type: "number", Format: "float"}, "java.lang.Float": {Type: "number", Format: "float"},
	"double": {Type: "number", Format: "double"}, "java.lang.Double": {Type: "number", Format: "double"},
	"java.math.BigDecimal": {Type: "number", Format: "double"},
	"boolean":              {Type: "boolean"}, "java.lang.Boolean": {Type: "boolean"},
	"java.lang.String": {Type: "string"}, "char": {Type: "string"}, "java.lang.Character": {Type: "string"},
	"java.util.Date": {Type: "string", Format: "date"}, "java.time.LocalDate": {Type: "string", Format: "date"},
	"java.time.LocalDateTime": {Type: "string", Format: "date-time"},
	"java.time.ZonedDateTime": {Type: "string", Format: "date-time"},
	"java.time.Instant":       {Type: "string", Format: "date-time"},
}

var collectionClasses = map[string]bool{
	"java.util.List": true, "java.util.Collection": true, "java.util.Set": true,
	"java.util.ArrayList": true, "java.util.LinkedList": true, "java.util.HashSet": true,
}

var mapClasses = map[string]bool{
	"java.util.Map": true, "java.util.HashMap": true, "java.util.TreeMap": true,
}

// schemaForResult renders a whole TypeHierarchyResult's response shape: a
// single schema, or oneOf when more than one structure was discovered.
func (r *schemaRegistry) schemaForResult(result *typehierarchy.TypeHierarchyResult) Schema {
	switch len(result.ReturnStructures) {
	case 0:
		return Schema{Type: "object"}
	case 1:
		return r.schemaForStructure(result.ReturnStructures[0], 0)
	default:
		var oneOf []Schema
		for _, s := range result.ReturnStructures {
			oneOf = append(oneOf, r.schemaForStructure(s, 0))
		}
		return Schema{OneOf: oneOf}
	}
}

// schemaForStructure translates one TypeStructure into a Schema, registering
// it under components.schemas and returning a $ref once it has fields.
func (r *schemaRegistry) schemaForStructure(ts *typehierarchy.TypeStructure, depth int) Schema {
	if sc, ok := scalarMapping[ts.ClassName]; ok {
		return sc
	}
	if ts.ClassName == "" || ts.ClassName == "void" {
		return Schema{Type: "object"}
	}
	if isArrayOrCollection(ts.ClassName) {
		return r.arraySchema(ts, depth)
	}
	if mapClasses[ts.ClassName] {
		return Schema{Type: "object", AdditionalProperties: &Schema{Type: "object"}}
	}
	if ts.ClassName == "java.lang.Object" || ts.ClassName == "Object" {
		if arg, ok := ts.TypeArguments["T"]; ok {
			return r.schemaForStructure(arg, depth)
		}
		return Schema{Type: "object"}
	}

	if r.inflight == nil {
		r.inflight = map[string]bool{}
	}
	simple := ts.SimpleName
	if depth >= r.maxDepth || r.inflight[ts.ClassName] {
		return Schema{Ref: refFor(simple)}
	}
	if len(ts.Fields) == 0 && len(ts.TypeArguments) == 0 {
		return Schema{Type: "object", Description: simple}
	}

	r.inflight[ts.ClassName] = true
	defer delete(r.inflight, ts.ClassName)

	if _, already := r.schemas[simple]; !already {
		r.schemas[simple] = Schema{Type: "object"}
		props := map[string]Schema{}
		// Generic bindings surface as properties under their inferred
		// parameter name (T, T1, ...); a declared field of the same name wins.
		for name, arg := range ts.TypeArguments {
			props[name] = r.schemaForStructure(arg, depth+1)
		}
		for name, fs := range ts.Fields {
			if fs.IsJSONIgnored {
				delete(props, name)
				continue
			}
			key := name
			if fs.JSONName != "" {
				key = fs.JSONName
			}
			props[key] = r.schemaForField(fs, depth+1)
		}
		r.schemas[simple] = Schema{Type: "object", Properties: props}
	}
	return Schema{Ref: refFor(simple)}
}

func (r *schemaRegistry) schemaForField(fs *typehierarchy.FieldStructure, depth int) Schema {
	if len(fs.ActualTypes) > 0 {
		if len(fs.ActualTypes) == 1 {
			return r.schemaForStructure(fs.ActualTypes[0], depth)
		}
		var oneOf []Schema
		for _, t := range fs.ActualTypes {
			oneOf = append(oneOf, r.schemaForStructure(t, depth))
		}
		return Schema{OneOf: oneOf}
	}
	if sc, ok := scalarMapping[fs.DeclaredType.ClassName]; ok {
		return sc
	}
	if isArrayOrCollection(fs.DeclaredType.ClassName) {
		return r.arraySchemaFromDeclared(fs.DeclaredType, depth)
	}
	if mapClasses[fs.DeclaredType.ClassName] {
		return Schema{Type: "object", AdditionalProperties: &Schema{Type: "object"}}
	}
	return r.schemaForStructure(typeStructureOf(fs.DeclaredType), depth)
}

func (r *schemaRegistry) arraySchema(ts *typehierarchy.TypeStructure, depth int) Schema {
	if arg, ok := ts.TypeArguments["T"]; ok {
		return Schema{Type: "array", Items: schemaPtr(r.schemaForStructure(arg, depth+1))}
	}
	return Schema{Type: "array", Items: &Schema{Type: "object"}}
}

func (r *schemaRegistry) arraySchemaFromDeclared(t descriptor.TypeDescriptor, depth int) Schema {
	if len(t.TypeArguments) > 0 {
		return Schema{Type: "array", Items: schemaPtr(r.schemaForStructure(typeStructureOf(t.TypeArguments[0]), depth+1))}
	}
	return Schema{Type: "array", Items: &Schema{Type: "object"}}
}

func typeStructureOf(t descriptor.TypeDescriptor) *typehierarchy.TypeStructure {
	return typehierarchy.NewBareTypeStructure(t)
}

func schemaPtr(s Schema) *Schema { return &s }

func isArrayOrCollection(className string) bool {
	return collectionClasses[className] || strings.HasSuffix(className, "[]")
}

func refFor(simpleName string) string {
	return "#/components/schemas/" + simpleName
}

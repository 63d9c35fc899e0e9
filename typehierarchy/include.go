package typehierarchy

import "strings"

// boxedOrPrimitive is the fixed set of primitive/boxed scalar types that are
// always surfaced as fields even when outside the configured include set.
var boxedOrPrimitive = map[string]bool{
	"int": true, "java.lang.Integer": true,
	"long": true, "java.lang.Long": true,
	"short": true, "java.lang.Short": true,
	"byte": true, "java.lang.Byte": true,
	"float": true, "java.lang.Float": true,
	"double": true, "java.lang.Double": true,
	"boolean": true, "java.lang.Boolean": true,
	"char": true, "java.lang.Character": true,
	"java.lang.String":     true,
	"java.math.BigDecimal": true,
	"java.math.BigInteger": true,
}

// dateTimeTypes is the fixed set of date/time types always surfaced.
var dateTimeTypes = map[string]bool{
	"java.util.Date":          true,
	"java.time.LocalDate":     true,
	"java.time.LocalDateTime": true,
	"java.time.ZonedDateTime": true,
	"java.time.Instant":       true,
}

// containerTypes is the fixed set of standard collection/map container
// types always surfaced, their element/value type resolved separately.
var containerTypes = map[string]bool{
	"java.util.List":       true,
	"java.util.Collection": true,
	"java.util.Set":        true,
	"java.util.Map":        true,
}

// isStandardType reports whether className is a recognised primitive,
// boxed, date-time or container type — always analysable regardless of
// include/exclude package filters.
func isStandardType(className string) bool {
	base := strings.TrimSuffix(className, "[]")
	return boxedOrPrimitive[base] || dateTimeTypes[base] || containerTypes[base]
}

// isAnalysable reports whether className is worth expanding into a full
// TypeStructure: not Object/void/unknown, not excluded, and either no
// include filter or a matching one — unless it's a standard type, which is
// always analysable.
func (cfg Config) isAnalysable(className string) bool {
	if className == "" || className == "java.lang.Object" || className == "void" || className == "unknown" {
		return false
	}
	if isStandardType(className) {
		return true
	}
	if hasAnyPrefix(className, cfg.ExcludePackages) {
		return false
	}
	if len(cfg.IncludePackages) == 0 {
		return true
	}
	return hasAnyPrefix(className, cfg.IncludePackages)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}

// isConcrete reports whether className is usable as an "actual type": not
// Object, not void, not unknown.
func isConcrete(className string) bool {
	return className != "" && className != "java.lang.Object" && className != "void" && className != "unknown"
}

func isSyntheticFieldName(name string) bool {
	return strings.HasPrefix(name, "$") || strings.HasPrefix(name, "this$")
}

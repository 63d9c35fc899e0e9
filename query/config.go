// Package query composes the dataflow, typehierarchy and branch packages
// into the typed result DSL the CLI and endpoint layers present to callers:
// argument-constant discovery, actual-return-type discovery, structural
// type-hierarchy lookup and field-by-type search.
package query

import (
	"github.com/viant/javalineage/dataflow"
	"github.com/viant/javalineage/typehierarchy"
)

// Config bounds every query operation; it embeds the dataflow and
// typehierarchy configs so a single value configures the whole layer.
type Config struct {
	Dataflow      dataflow.AnalysisConfig
	TypeHierarchy typehierarchy.Config
}

// DefaultConfig mirrors the component defaults.
func DefaultConfig() Config {
	return Config{
		Dataflow:      dataflow.DefaultConfig(),
		TypeHierarchy: typehierarchy.DefaultConfig(),
	}
}

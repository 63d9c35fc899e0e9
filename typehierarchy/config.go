package typehierarchy

import "github.com/viant/javalineage/dataflow"

// Config tunes a typehierarchy.Analyzer: depth/inter-procedural bounds
// shared with the dataflow package, plus the include/exclude package
// filters that decide which discovered types are worth expanding.
type Config struct {
	dataflow.AnalysisConfig
	IncludePackages []string
	ExcludePackages []string
}

// DefaultConfig mirrors dataflow.DefaultConfig with no package filters.
func DefaultConfig() Config {
	return Config{AnalysisConfig: dataflow.DefaultConfig()}
}

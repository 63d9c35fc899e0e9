// Package dataflow implements the backward/forward slicing analysis over a
// built graph.Graph: given a start node, trace DataFlowEdges to recover the
// constants, fields and parameters that can reach it (or that it can reach),
// together with the path each source propagated along.
package dataflow

// AnalysisConfig bounds and tunes a slice operation.
type AnalysisConfig struct {
	MaxDepth         int
	InterProcedural  bool
	ContextSensitive bool
	FlowSensitive    bool
}

// DefaultConfig bounds traversal depth and enables inter-procedural tracing;
// context/flow sensitivity is left to the caller.
func DefaultConfig() AnalysisConfig {
	return AnalysisConfig{MaxDepth: 25, InterProcedural: true}
}

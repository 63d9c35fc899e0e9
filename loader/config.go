package loader

import "io"

// Option configures a LoaderConfig in the functional-options style.
type Option func(*LoaderConfig)

// LoaderConfig controls which classes the loader ingests and how.
type LoaderConfig struct {
	IncludePackages  []string
	ExcludePackages  []string
	IncludeLibraries bool
	LibraryFilters   []string
	BuildCallGraph   bool
	VerboseSink      io.Writer
}

// NewConfig builds a LoaderConfig from options, all fields zero-valued by
// default (IncludePackages empty means "accept all").
func NewConfig(opts ...Option) LoaderConfig {
	var c LoaderConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithIncludePackages restricts loading to classes under the given prefixes.
func WithIncludePackages(prefixes ...string) Option {
	return func(c *LoaderConfig) { c.IncludePackages = prefixes }
}

// WithExcludePackages excludes classes under the given prefixes.
func WithExcludePackages(prefixes ...string) Option {
	return func(c *LoaderConfig) { c.ExcludePackages = prefixes }
}

// WithIncludeLibraries toggles whether library archives under <root>/lib are
// walked in addition to the primary class root.
func WithIncludeLibraries(include bool) Option {
	return func(c *LoaderConfig) { c.IncludeLibraries = include }
}

// WithLibraryFilters restricts which library archive file names (by glob)
// are considered when IncludeLibraries is set.
func WithLibraryFilters(globs ...string) Option {
	return func(c *LoaderConfig) { c.LibraryFilters = globs }
}

// WithBuildCallGraph sets LoaderConfig.BuildCallGraph. The loader does not
// read this flag and records no CallEdges either way; call targets are
// available only through CallSiteNode.Callee.
func WithBuildCallGraph(build bool) Option {
	return func(c *LoaderConfig) { c.BuildCallGraph = build }
}

// WithVerboseSink sets the destination for per-class parse-failure warnings.
func WithVerboseSink(w io.Writer) Option {
	return func(c *LoaderConfig) { c.VerboseSink = w }
}

// includes reports whether fqn passes the include/exclude package filters.
func (c LoaderConfig) includes(fqn string) bool {
	if len(c.ExcludePackages) > 0 && hasAnyPrefix(fqn, c.ExcludePackages) {
		return false
	}
	if len(c.IncludePackages) == 0 {
		return true
	}
	return hasAnyPrefix(fqn, c.IncludePackages)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}

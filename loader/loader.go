// Package loader implements the bytecode provider: it walks a project
// (directory, plain archive, or web-application archive), parses every
// included class, and populates a graph.Builder per the program-graph data
// model. It consumes the classfile package for the actual binary decoding.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
	"github.com/viant/javalineage/loader/classfile"
)

// LoadSummary reports coarse statistics about one Load call, surfaced to
// callers that want visibility beyond the returned graph (e.g. the CLI's
// verbose channel or the obs package's metrics).
type LoadSummary struct {
	ClassesSeen    int
	ClassesLoaded  int
	ClassesSkipped int
	MethodsLoaded  int
	Errors         []string
}

// Load walks inputPath per cfg and returns a fully built Graph. Individual
// unparseable classes/methods are recorded as skipped and do not abort the
// load; a failure to even enumerate the input (missing path, corrupt archive
// index) returns a non-nil error, as does every class failing to parse.
func Load(ctx context.Context, inputPath string, cfg LoaderConfig) (*graph.Graph, LoadSummary, error) {
	entries, err := resolveInput(ctx, inputPath, cfg)
	if err != nil {
		return nil, LoadSummary{}, err
	}

	var included []classEntry
	for _, e := range entries {
		if e.isLibrary && !cfg.IncludeLibraries {
			continue
		}
		if !cfg.includes(e.fqn) {
			continue
		}
		included = append(included, e)
	}

	summary := LoadSummary{ClassesSeen: len(entries)}
	if len(included) == 0 {
		b := graph.NewBuilder()
		g, buildErr := b.Build()
		return g, summary, buildErr
	}

	builder := graph.NewBuilder()
	alloc := &descriptor.Allocator{}
	fields := newFieldRegistry()

	results := make([]loadResult, len(included))

	workerCount := runtime.NumCPU()
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(included) {
		workerCount = len(included)
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					results[i] = loadResult{skipped: true, err: "cancelled"}
					continue
				}
				results[i] = loadOne(builder, alloc, fields, included[i], cfg)
			}
		}()
	}
	for i := range included {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, summary, fmt.Errorf("loader: cancelled: %w", err)
	}

	for _, r := range results {
		if r.skipped {
			summary.ClassesSkipped++
			summary.Errors = append(summary.Errors, r.err)
			continue
		}
		summary.ClassesLoaded++
		summary.MethodsLoaded += r.methods
	}

	if summary.ClassesLoaded == 0 {
		return nil, summary, fmt.Errorf("loader: every class failed to parse (%d attempted)", summary.ClassesSkipped)
	}

	g, err := builder.Build()
	if err != nil {
		return nil, summary, fmt.Errorf("loader: %w", err)
	}
	return g, summary, nil
}

type loadResult struct {
	methods int
	err     string
	skipped bool
}

func loadOne(b *graph.Builder, alloc *descriptor.Allocator, fields *fieldRegistry, entry classEntry, cfg LoaderConfig) loadResult {
	class, err := classfile.Parse(bytes.NewReader(entry.data))
	if err != nil {
		msg := fmt.Sprintf("%s: %v", entry.fqn, err)
		warnf(cfg, "javalineage: skipping class %s: %v", entry.fqn, err)
		return loadResult{skipped: true, err: msg}
	}

	cp := class.ConstantPool

	b.AddTypeEdge(class.ThisClass, class.SuperClass, graph.Extends)
	for _, iface := range class.Interfaces {
		b.AddTypeEdge(class.ThisClass, iface, graph.Implements)
	}

	for _, f := range class.Fields {
		fd := descriptor.FieldDescriptor{
			DeclaringClass: descriptor.NewType(class.ThisClass),
			Name:           f.Name,
			Type:           parseFieldDescriptor(f.Descriptor),
		}
		fields.nodeID(b, alloc, fd, f.AccessFlags.Has(classfile.AccStatic))

		hint := serializationHint(f.Annotations(cp))
		if hint.JSONName != "" || hint.IsIgnored {
			b.AddFieldHint(class.ThisClass, f.Name, hint)
		}
	}

	methodCount := 0
	for _, m := range class.Methods {
		params, ret := parseMethodDescriptor(m.Descriptor)
		method := descriptor.MethodDescriptor{
			DeclaringClass: descriptor.NewType(class.ThisClass),
			Name:           m.Name,
			ParameterTypes: params,
			ReturnType:     ret,
		}
		b.AddMethod(method)
		methodCount++

		if annos := m.Annotations(cp); len(annos) > 0 {
			types := make([]string, 0, len(annos))
			for _, a := range annos {
				types = append(types, a.Type)
			}
			b.AddMethodAnnotations(method.Signature(), types)

			if hint := serializationHint(annos); isAccessorName(m.Name) && (hint.JSONName != "" || hint.IsIgnored) {
				b.AddAccessorHint(class.ThisClass, m.Name, hint)
			}
		}

		emitMethodBody(b, alloc, fields, class, cp, m, method, cfg)
	}

	emitClassEndpoints(b, class, cp)

	return loadResult{methods: methodCount}
}

func isAccessorName(name string) bool {
	return hasAnyPrefix(name, []string{"get", "is"})
}

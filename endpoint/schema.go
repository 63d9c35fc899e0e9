// Package endpoint synthesizes an OpenAPI-3.0.3-shaped document from the
// HTTP routes the loader extracted (graph.EndpointInfo) plus the structural
// return-type shape the typehierarchy package discovers for each handler.
package endpoint

import (
	"context"
	"sort"
	"strings"

	"github.com/viant/javalineage/graph"
	"github.com/viant/javalineage/query"
	"github.com/viant/javalineage/typehierarchy"
)

// Document is the OpenAPI root object, kept deliberately small: only the
// fields the synthesizer populates are modelled.
type Document struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Paths      map[string]PathItem `json:"paths"`
	Components Components          `json:"components,omitempty"`
}

// Info is the required OpenAPI info object.
type Info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// PathItem maps a lowercase HTTP verb to its Operation.
type PathItem map[string]Operation

// Operation is one path+verb's OpenAPI operation object.
type Operation struct {
	OperationID string              `json:"operationId"`
	Tags        []string            `json:"tags"`
	Responses   map[string]Response `json:"responses"`
}

// Response is a single status-code response entry.
type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MediaType pairs a content type with its schema.
type MediaType struct {
	Schema Schema `json:"schema"`
}

// Schema is the OpenAPI schema object; fields are emitted selectively by the
// synthesizer depending on which kind of type it describes.
type Schema struct {
	Type                 string            `json:"type,omitempty"`
	Format               string            `json:"format,omitempty"`
	Ref                  string            `json:"$ref,omitempty"`
	Items                *Schema           `json:"items,omitempty"`
	AdditionalProperties *Schema           `json:"additionalProperties,omitempty"`
	Properties           map[string]Schema `json:"properties,omitempty"`
	Description          string            `json:"description,omitempty"`
	OneOf                []Schema          `json:"oneOf,omitempty"`
}

// Components holds the registered schema definitions, keyed by simple name.
type Components struct {
	Schemas map[string]Schema `json:"schemas,omitempty"`
}

// Options configures a synthesis run. PathPattern/HTTPMethod restrict which
// recorded endpoints are synthesized, with the same matching semantics as
// Graph.Endpoints; zero values mean "all".
type Options struct {
	Title          string
	Version        string
	Query          query.Config
	MaxSchemaDepth int
	PathPattern    string
	HTTPMethod     graph.HTTPMethod
}

// DefaultOptions mirrors the typehierarchy package's default depth.
func DefaultOptions() Options {
	return Options{
		Title:          "javalineage discovered API",
		Version:        "0.0.0",
		Query:          query.DefaultConfig(),
		MaxSchemaDepth: 25,
	}
}

// Synthesize builds an OpenAPI document from every endpoint recorded in g.
// Cancelling ctx aborts with dataflow.ErrCancelled.
func Synthesize(ctx context.Context, g *graph.Graph, opts Options) (*Document, error) {
	doc := &Document{
		OpenAPI: "3.0.3",
		Info:    Info{Title: opts.Title, Version: opts.Version},
		Paths:   map[string]PathItem{},
	}
	reg := &schemaRegistry{schemas: map[string]Schema{}, maxDepth: opts.MaxSchemaDepth}

	endpoints := g.Endpoints(opts.PathPattern, opts.HTTPMethod)
	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return endpoints[i].HTTPMethod < endpoints[j].HTTPMethod
	})

	analyzer := typehierarchy.NewAnalyzer(g, opts.Query.TypeHierarchy)

	for _, ep := range endpoints {
		result, err := analyzer.AnalyzeMethod(ctx, ep.Method)
		if err != nil {
			return nil, err
		}
		contentType := "application/json"
		if len(ep.Produces) > 0 {
			contentType = ep.Produces[0]
		}

		controllerSimple := ep.Method.DeclaringClass.SimpleName()
		op := Operation{
			OperationID: controllerSimple + "_" + ep.Method.Name,
			Tags:        []string{controllerSimple},
			Responses: map[string]Response{
				"200": {
					Description: "successful response",
					Content: map[string]MediaType{
						contentType: {Schema: reg.schemaForResult(result)},
					},
				},
			},
		}

		item, ok := doc.Paths[ep.Path]
		if !ok {
			item = PathItem{}
		}
		item[strings.ToLower(string(ep.HTTPMethod))] = op
		doc.Paths[ep.Path] = item
	}

	if len(reg.schemas) > 0 {
		doc.Components = Components{Schemas: reg.schemas}
	}
	return doc, nil
}

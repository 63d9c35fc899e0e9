package loader

import (
	"strings"

	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
	"github.com/viant/javalineage/loader/classfile"
)

const (
	annoRestController = "org.springframework.web.bind.annotation.RestController"
	annoController     = "org.springframework.stereotype.Controller"
	annoRequestMapping = "org.springframework.web.bind.annotation.RequestMapping"
	annoGetMapping     = "org.springframework.web.bind.annotation.GetMapping"
	annoPostMapping    = "org.springframework.web.bind.annotation.PostMapping"
	annoPutMapping     = "org.springframework.web.bind.annotation.PutMapping"
	annoDeleteMapping  = "org.springframework.web.bind.annotation.DeleteMapping"
	annoPatchMapping   = "org.springframework.web.bind.annotation.PatchMapping"

	annoJsonProperty = "com.fasterxml.jackson.annotation.JsonProperty"
	annoJsonIgnore   = "com.fasterxml.jackson.annotation.JsonIgnore"
)

var mappingHTTPMethod = map[string]graph.HTTPMethod{
	annoGetMapping:    graph.GET,
	annoPostMapping:   graph.POST,
	annoPutMapping:    graph.PUT,
	annoDeleteMapping: graph.DELETE,
	annoPatchMapping:  graph.PATCH,
}

// isControllerClass reports whether a class carries a recognised controller
// marker annotation.
func isControllerClass(annos []classfile.Annotation) bool {
	for _, a := range annos {
		if a.Type == annoRestController || a.Type == annoController {
			return true
		}
	}
	return false
}

// classMappingDefaults extracts the controller's base path plus default
// produces/consumes from its class-level @RequestMapping, if present.
func classMappingDefaults(annos []classfile.Annotation) (basePaths []string, produces, consumes []string) {
	for _, a := range annos {
		if a.Type != annoRequestMapping {
			continue
		}
		basePaths = mappingPaths(a)
		produces = stringArrayElement(a, "produces")
		consumes = stringArrayElement(a, "consumes")
	}
	if len(basePaths) == 0 {
		basePaths = []string{""}
	}
	return basePaths, produces, consumes
}

// handlerMapping is one (httpMethod, path) pair declared on a handler
// method, along with its own produces/consumes overrides.
type handlerMapping struct {
	Method             graph.HTTPMethod
	Path               string
	Produces, Consumes []string
}

// methodEndpoints extracts zero or more (httpMethod, path) pairs declared on
// a handler method via @RequestMapping or an HTTP-method-specific mapping
// annotation.
func methodEndpoints(annos []classfile.Annotation) []handlerMapping {
	var out []handlerMapping
	for _, a := range annos {
		if httpMethod, ok := mappingHTTPMethod[a.Type]; ok {
			paths := mappingPaths(a)
			if len(paths) == 0 {
				paths = []string{""}
			}
			for _, p := range paths {
				out = append(out, handlerMapping{Method: httpMethod, Path: p, Produces: stringArrayElement(a, "produces"), Consumes: stringArrayElement(a, "consumes")})
			}
			continue
		}
		if a.Type == annoRequestMapping {
			paths := mappingPaths(a)
			if len(paths) == 0 {
				paths = []string{""}
			}
			httpMethods := stringArrayElement(a, "method")
			if len(httpMethods) == 0 {
				httpMethods = []string{string(graph.ANY)}
			}
			for _, p := range paths {
				for _, hm := range httpMethods {
					out = append(out, handlerMapping{Method: graph.HTTPMethod(lastSegment(hm)), Path: p, Produces: stringArrayElement(a, "produces"), Consumes: stringArrayElement(a, "consumes")})
				}
			}
		}
	}
	return out
}

// mappingPaths reads the "value" or "path" element, which may be a single
// string or an array of strings.
func mappingPaths(a classfile.Annotation) []string {
	if v, ok := a.Elements["value"]; ok {
		return elementStrings(v)
	}
	if v, ok := a.Elements["path"]; ok {
		return elementStrings(v)
	}
	return nil
}

func stringArrayElement(a classfile.Annotation, name string) []string {
	if v, ok := a.Elements[name]; ok {
		return elementStrings(v)
	}
	return nil
}

func elementStrings(v classfile.ElementValue) []string {
	if v.Tag == classfile.TagArray2 {
		var out []string
		for _, e := range v.ArrayValues {
			out = append(out, elementScalarString(e))
		}
		return out
	}
	if s := elementScalarString(v); s != "" {
		return []string{s}
	}
	return nil
}

func elementScalarString(v classfile.ElementValue) string {
	switch v.Tag {
	case classfile.TagString2:
		return v.StringValue
	case classfile.TagEnum2:
		return v.EnumConst
	}
	return ""
}

func lastSegment(enumConstOrFQN string) string {
	if idx := strings.LastIndexByte(enumConstOrFQN, '.'); idx >= 0 {
		return enumConstOrFQN[idx+1:]
	}
	return enumConstOrFQN
}

// joinPath composes a controller base path with a handler path via '/',
// collapsing repeated separators.
func joinPath(base, rel string) string {
	joined := strings.TrimRight(base, "/")
	if rel = strings.TrimLeft(rel, "/"); rel != "" {
		joined += "/" + rel
	}
	for strings.Contains(joined, "//") {
		joined = strings.ReplaceAll(joined, "//", "/")
	}
	if joined == "" {
		return "/"
	}
	if !strings.HasPrefix(joined, "/") {
		joined = "/" + joined
	}
	return joined
}

// serializationHint derives a Jackson-style hint from a field's or
// accessor's annotations.
func serializationHint(annos []classfile.Annotation) graph.SerializationHint {
	var hint graph.SerializationHint
	for _, a := range annos {
		switch a.Type {
		case annoJsonIgnore:
			hint.IsIgnored = true
		case annoJsonProperty:
			if v, ok := a.Elements["value"]; ok {
				hint.JSONName = elementScalarString(v)
			}
		}
	}
	return hint
}

// emitClassEndpoints registers every EndpointInfo declared by a controller
// class's handler methods.
func emitClassEndpoints(b *graph.Builder, class *classfile.ClassFile, cp *classfile.ConstantPool) {
	classAnnos := class.Annotations()
	if !isControllerClass(classAnnos) {
		return
	}
	basePaths, classProduces, classConsumes := classMappingDefaults(classAnnos)

	for _, m := range class.Methods {
		methodAnnos := m.Annotations(cp)
		for _, ep := range methodEndpoints(methodAnnos) {
			produces := ep.Produces
			if len(produces) == 0 {
				produces = classProduces
			}
			consumes := ep.Consumes
			if len(consumes) == 0 {
				consumes = classConsumes
			}
			params, ret := parseMethodDescriptor(m.Descriptor)
			method := descriptor.MethodDescriptor{
				DeclaringClass: descriptor.NewType(class.ThisClass),
				Name:           m.Name,
				ParameterTypes: params,
				ReturnType:     ret,
			}
			for _, base := range basePaths {
				b.AddEndpoint(graph.EndpointInfo{
					Method:     method,
					HTTPMethod: ep.Method,
					Path:       joinPath(base, ep.Path),
					Produces:   produces,
					Consumes:   consumes,
				})
			}
		}
	}
}

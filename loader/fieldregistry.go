package loader

import (
	"sync"

	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

// fieldRegistry deduplicates FieldNode creation across the whole load so a
// (class, field) pair is represented by exactly one node id, satisfying the
// data-model invariant that a FieldNode appears at most once per graph. It
// is shared by the per-class field emission pass and by every method body's
// getfield/putfield/getstatic/putstatic handling, and must be safe for the
// parallel per-class worker pool.
type fieldRegistry struct {
	mu  sync.Mutex
	ids map[string]descriptor.NodeID
}

func newFieldRegistry() *fieldRegistry {
	return &fieldRegistry{ids: make(map[string]descriptor.NodeID)}
}

// nodeID returns the existing node id for (declaringClass, name), creating
// and registering a new FieldNode on first reference.
func (r *fieldRegistry) nodeID(b *graph.Builder, alloc *descriptor.Allocator, fd descriptor.FieldDescriptor, isStatic bool) descriptor.NodeID {
	key := fd.Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[key]; ok {
		return id
	}
	id := alloc.Next()
	b.AddNode(&graph.Node{ID: id, Kind: graph.KindField, Field: fd, IsStatic: isStatic})
	r.ids[key] = id
	return id
}

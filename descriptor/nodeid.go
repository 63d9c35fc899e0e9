package descriptor

import "sync/atomic"

// NodeID is a dense, process-wide allocated identity. Two nodes are equal
// iff their ids are equal.
type NodeID uint32

// Allocator hands out monotonically increasing NodeIDs. The zero value is
// ready to use. A fresh Allocator should be used per isolated graph build;
// Reset exists purely for test harnesses and must never be called
// concurrently with a live graph.
type Allocator struct {
	counter uint32
}

// Next returns the next NodeID, starting from 0.
func (a *Allocator) Next() NodeID {
	return NodeID(atomic.AddUint32(&a.counter, 1) - 1)
}

// Reset rewinds the allocator to 0. Testing affordance only: IDs minted
// before and after a reset may alias, so callers must never mix graphs
// built before and after a reset.
func (a *Allocator) Reset() {
	atomic.StoreUint32(&a.counter, 0)
}

// globalAllocator backs the package-level helpers used when callers don't
// need an isolated allocator (e.g. one-shot CLI runs).
var globalAllocator Allocator

// NextGlobal returns the next id from the process-wide allocator.
func NextGlobal() NodeID { return globalAllocator.Next() }

// ResetGlobal rewinds the process-wide allocator. Test-harness affordance
// only; see Allocator.Reset.
func ResetGlobal() { globalAllocator.Reset() }

// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package allocator

import "deepsea/errs"

// Generic adapts a host-supplied allocator, expressed as a
// set of function values, to the Allocator interface, so it
// can be injected anywhere an Allocator handle is accepted
// without that code depending on the concrete host type.
type Generic struct {
	AllocFunc   func(size, alignment uintptr) (Ptr, error)
	FreeFunc    func(p Ptr) error
	ReallocFunc func(p Ptr, size, alignment uintptr) (Ptr, error)
	StatsFunc   func() Stats
}

// Alloc implements Allocator.
func (g *Generic) Alloc(size, alignment uintptr) (Ptr, error) {
	return g.AllocFunc(size, alignment)
}

// Free implements Allocator.
func (g *Generic) Free(p Ptr) error { return g.FreeFunc(p) }

// Realloc implements Allocator. If ReallocFunc is nil, the
// host allocator does not support resizing and every call
// fails with InvalidArgument.
func (g *Generic) Realloc(p Ptr, size, alignment uintptr) (Ptr, error) {
	if g.ReallocFunc == nil {
		return nil, errs.New("Generic.Realloc", errs.InvalidArgument)
	}
	return g.ReallocFunc(p, size, alignment)
}

// Stats implements Allocator. If StatsFunc is nil, a zero
// Stats is returned.
func (g *Generic) Stats() Stats {
	if g.StatsFunc == nil {
		return Stats{}
	}
	return g.StatsFunc()
}

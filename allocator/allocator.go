// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package allocator implements the pluggable allocator
// abstraction that every other DeepSea package obtains raw
// memory through.
// It follows engine/storage.go's pattern of guarding a
// bitm-indexed pool behind a mutex, generalized from a
// single mesh buffer to a family of allocator kinds.
package allocator

import (
	"sync/atomic"
	"unsafe"

	"deepsea/errs"
)

// Ptr is an opaque handle to an allocated block.
// It is non-nil for any successful allocation of non-zero
// size.
type Ptr = unsafe.Pointer

// MaxAlignment is the largest alignment any allocator in
// this package will honor.
const MaxAlignment = 4096

// Allocator is satisfied by every allocator kind.
type Allocator interface {
	// Alloc reserves size bytes aligned to alignment, which
	// must be a power of two. size == 0 returns (nil, nil).
	Alloc(size uintptr, alignment uintptr) (Ptr, error)

	// Free releases a block previously returned by Alloc.
	// Freeing nil succeeds and is a no-op.
	Free(p Ptr) error

	// Realloc resizes the block p to size, aligned to
	// alignment, preserving min(old size, size) bytes of
	// content. p == nil behaves like Alloc; size == 0
	// behaves like Free(p), returning (nil, nil). What
	// "resize in place" means is allocator-kind-specific: a
	// System allocator always moves the block, a Pool
	// allocator never does (every chunk is already
	// chunkSize), and a Buffer allocator moves unless p is
	// already the last allocation.
	Realloc(p Ptr, size uintptr, alignment uintptr) (Ptr, error)

	// Stats returns the allocator's current accounting
	// counters.
	Stats() Stats
}

// Stats holds the atomically maintained accounting counters
// common to every allocator kind.
type Stats struct {
	// Size is the number of bytes currently outstanding.
	Size int64

	// CurrentAllocations is the number of outstanding
	// Alloc calls not yet matched by Free.
	CurrentAllocations int64

	// TotalAllocations is the number of Alloc calls that
	// have ever succeeded.
	TotalAllocations int64
}

// counters is embedded by every concrete allocator to share
// the atomic bookkeeping logic.
type counters struct {
	size       atomic.Int64
	current    atomic.Int64
	total      atomic.Int64
}

func (c *counters) stats() Stats {
	return Stats{
		Size:               c.size.Load(),
		CurrentAllocations: c.current.Load(),
		TotalAllocations:   c.total.Load(),
	}
}

func (c *counters) recordAlloc(n int64) {
	c.size.Add(n)
	c.current.Add(1)
	c.total.Add(1)
}

func (c *counters) recordFree(n int64) {
	c.size.Add(-n)
	c.current.Add(-1)
}

// isPow2 reports whether n is a power of two.
func isPow2(n uintptr) bool { return n != 0 && n&(n-1) == 0 }

// checkAlignment validates an (alignment) pair shared by
// every allocator's Alloc.
func checkAlignment(op string, alignment uintptr, max uintptr) error {
	if alignment == 0 || !isPow2(alignment) || alignment > max {
		return errs.New(op, errs.InvalidArgument)
	}
	return nil
}

// alignUp rounds n up to the nearest multiple of alignment,
// which must be a power of two.
func alignUp(n, alignment uintptr) uintptr {
	return (n + alignment - 1) &^ (alignment - 1)
}

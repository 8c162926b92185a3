// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package profile defines the hook table used to instrument
// frame execution and scoped regions of code.
// It follows driver.Register's pattern of a single,
// mutex-protected global cell rather than a full registry,
// since only one profiler can be active at a time.
package profile

import (
	"runtime"
	"sync"
)

// ScopeKind identifies the kind of region a Scope call
// brackets.
type ScopeKind int

// Scope kinds.
const (
	Function ScopeKind = iota
	Scope
	Wait
	Lock
)

// Hooks is the set of callbacks a profiler implementation
// provides. Any nil field disables profiling entirely: a
// half-installed hook table is treated the same as none, so
// callers never need to nil-check individual hooks.
type Hooks struct {
	FrameBegin func(frame uint64)
	FrameEnd   func(frame uint64)

	// ScopeBegin receives the call site (file, function,
	// line) of the Push/ScopeBegin call that opened the
	// region, alongside its kind and name, so a profiler
	// implementation can attribute samples back to source
	// without callers threading that information through
	// any other channel.
	ScopeBegin func(kind ScopeKind, name, file, function string, line int) (id uint64)
	ScopeEnd   func(id uint64)
	Stat       func(name string, value float64)
	GPUBegin   func(name string) (id uint64)
	GPUEnd     func(id uint64)
}

func (h Hooks) complete() bool {
	return h.FrameBegin != nil && h.FrameEnd != nil &&
		h.ScopeBegin != nil && h.ScopeEnd != nil &&
		h.Stat != nil && h.GPUBegin != nil && h.GPUEnd != nil
}

var (
	mu      sync.Mutex
	hooks   Hooks
	enabled bool
)

// Register installs h as the active profiler.
// It self-disables (Enabled reports false, and every call
// below becomes a no-op) unless every hook in h is non-nil.
func Register(h Hooks) {
	mu.Lock()
	defer mu.Unlock()
	hooks = h
	enabled = h.complete()
}

// Unregister disables profiling.
func Unregister() {
	mu.Lock()
	defer mu.Unlock()
	hooks = Hooks{}
	enabled = false
}

// Enabled reports whether a complete hook table is
// currently registered.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

func current() (Hooks, bool) {
	mu.Lock()
	defer mu.Unlock()
	return hooks, enabled
}

// FrameBegin marks the start of frame.
func FrameBegin(frame uint64) {
	if h, ok := current(); ok {
		h.FrameBegin(frame)
	}
}

// FrameEnd marks the end of frame.
func FrameEnd(frame uint64) {
	if h, ok := current(); ok {
		h.FrameEnd(frame)
	}
}

// callSite reports the file, function and line of the frame
// skip levels above callSite itself (skip == 1 is callSite's
// caller).
func callSite(skip int) (file, function string, line int) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", "", 0
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		function = fn.Name()
	}
	return file, function, line
}

// ScopeBegin marks entry into a region of kind, named name,
// attributing it to the immediate caller's file, function
// and line. The returned id, and whether profiling is
// enabled, must be passed to ScopeEnd.
func ScopeBegin(kind ScopeKind, name string) (id uint64, on bool) {
	file, function, line := callSite(2)
	if h, ok := current(); ok {
		return h.ScopeBegin(kind, name, file, function, line), true
	}
	return 0, false
}

// ScopeEnd closes the region identified by id.
// Callers that received on == false from ScopeBegin must
// not call ScopeEnd.
func ScopeEnd(id uint64) {
	if h, ok := current(); ok {
		h.ScopeEnd(id)
	}
}

// Push begins a scope of kind, named name, attributed to the
// caller of Push, and returns a closer that ends it. If
// profiling is disabled, Push still returns a valid no-op
// closer, so callers can unconditionally `defer
// profile.Push(...)()` around a region without checking
// whether a profiler is registered.
func Push(kind ScopeKind, name string) func() {
	file, function, line := callSite(2)
	mu.Lock()
	h, ok := hooks, enabled
	mu.Unlock()
	if !ok {
		return func() {}
	}
	id := h.ScopeBegin(kind, name, file, function, line)
	return func() { ScopeEnd(id) }
}

// StatReport reports a named numeric statistic for the
// current frame (e.g., resource context count, allocator
// bytes in use, item-list entry count).
func StatReport(name string, value float64) {
	if h, ok := current(); ok {
		h.Stat(name, value)
	}
}

// GPUBegin marks the start of a GPU-timed region.
func GPUBegin(name string) (id uint64, on bool) {
	if h, ok := current(); ok {
		return h.GPUBegin(name), true
	}
	return 0, false
}

// GPUEnd closes the GPU-timed region identified by id.
func GPUEnd(id uint64) {
	if h, ok := current(); ok {
		h.GPUEnd(id)
	}
}

// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"runtime"
	"sync/atomic"
)

// fullscreenVertex is a single corner of the shared
// fullscreen-quad geometry.
type fullscreenVertex struct{ X, Y int16 }

// fullscreenQuad is the shared geometry every
// FullScreenResolve list binds: four corners at
// ±INT16_MAX, drawn as a triangle strip.
var fullscreenQuad = [4]fullscreenVertex{
	{-32767, -32767},
	{32767, -32767},
	{-32767, 32767},
	{32767, 32767},
}

// fsgLock guards fsgRefCount with a spinlock, mirroring the
// source's ad-hoc spinlock-protected refcount around the
// shared fullscreen geometry.
var (
	fsgLock    atomic.Bool
	fsgRefCount int
)

func fsgAcquire() {
	for !fsgLock.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
	fsgRefCount++
	fsgLock.Store(false)
}

func fsgRelease() {
	for !fsgLock.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
	fsgRefCount--
	fsgLock.Store(false)
}

// FSGRefCount reports the shared fullscreen geometry's
// current reference count (0 when no FullScreenResolve list
// is live). It exists to make the acquire-on-first,
// release-on-last behavior observable in tests.
func FSGRefCount() int {
	for !fsgLock.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
	n := fsgRefCount
	fsgLock.Store(false)
	return n
}

// FullScreenResolve draws a full-screen triangle strip with a
// given shader, material and dynamic-state triple. Every live
// FullScreenResolve shares the same quad geometry, acquired
// on first construction and released on last Destroy.
type FullScreenResolve struct {
	Shader       any
	Material     any
	DynamicState any

	// Recorder, if set, is invoked by Commit with the
	// current shader/material/dynamic-state triple. It
	// stands in for the bind/draw/unbind command recording
	// a real command buffer would perform.
	Recorder func(shader, material, dynState any)

	destroyed bool
}

// NewFullScreenResolve creates a FullScreenResolve list,
// acquiring a reference to the shared quad geometry.
func NewFullScreenResolve(shader, material, dynState any) *FullScreenResolve {
	fsgAcquire()
	return &FullScreenResolve{Shader: shader, Material: material, DynamicState: dynState}
}

// Commit implements Committer: it records a bind/draw/unbind
// of the list's shader+material+dynamic-state triple against
// the shared fullscreen quad.
func (l *FullScreenResolve) Commit(view, cmd any) {
	if l.Recorder != nil {
		l.Recorder(l.Shader, l.Material, l.DynamicState)
	}
}

// Hash implements ItemList.
func (l *FullScreenResolve) Hash() uint64 { return hashString("FullScreenResolve") }

// Equal implements ItemList: two lists are equivalent when
// they share the same shader, material and dynamic state.
func (l *FullScreenResolve) Equal(other ItemList) bool {
	o, ok := other.(*FullScreenResolve)
	return ok && o.Shader == l.Shader && o.Material == l.Material && o.DynamicState == l.DynamicState
}

// GlobalValueCount implements ItemList.
func (l *FullScreenResolve) GlobalValueCount() int { return 0 }

// Destroy implements ItemList, releasing this list's
// reference to the shared quad geometry. It is safe to call
// more than once.
func (l *FullScreenResolve) Destroy() {
	if l.destroyed {
		return
	}
	l.destroyed = true
	fsgRelease()
}

// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package resource manages the per-thread gate that GPU-
// adjacent operations (buffer/texture/shader creation,
// map/unmap, copy) must pass through, and the class-level
// accounting of created resources.
// Each worker thread's gate is carried explicitly on its
// *thread.Thread, since Go has no raw thread-local storage
// to stash it in, following the guard-style approach thread.go
// already establishes for per-thread state.
package resource

import (
	"sync/atomic"

	"deepsea/config"
	"deepsea/errs"
	"deepsea/log"
	"deepsea/thread"
)

// Class identifies the kind of GPU-adjacent resource being
// accounted for.
type Class int

// Resource classes.
const (
	Buffer Class = iota
	Texture
	ShaderModule
	Shader
	Material
	MaterialDesc
	ShaderVariableGroup
	VariableGroupDesc
	Framebuffer
	Renderbuffer
	Geometry
	Fence

	numClasses
)

// String implements fmt.Stringer.
func (c Class) String() string {
	switch c {
	case Buffer:
		return "buffer"
	case Texture:
		return "texture"
	case ShaderModule:
		return "shader module"
	case Shader:
		return "shader"
	case Material:
		return "material"
	case MaterialDesc:
		return "material desc"
	case ShaderVariableGroup:
		return "shader variable group"
	case VariableGroupDesc:
		return "variable group desc"
	case Framebuffer:
		return "framebuffer"
	case Renderbuffer:
		return "renderbuffer"
	case Geometry:
		return "geometry"
	case Fence:
		return "fence"
	default:
		return "unknown resource"
	}
}

// Context gates GPU-adjacent calls made from a worker
// thread. It is created by Manager.CreateContext and must be
// destroyed by Manager.DestroyContext.
type Context struct {
	mgr *Manager
	th  *thread.Thread
}

// Release destroys ctx. It is equivalent to calling
// Manager.DestroyContext(ctx's thread) directly.
func (c *Context) Release() error {
	return c.mgr.DestroyContext(c.th)
}

// Manager owns the resource-context gate and the per-class
// creation counters.
type Manager struct {
	count   atomic.Int64
	maxCtx  int
	classes [numClasses]atomic.Int64
}

// NewManager creates a Manager that allows at most
// config.Current().MaxResourceContext concurrently acquired
// contexts.
func NewManager() *Manager {
	return &Manager{maxCtx: config.Current().MaxResourceContext}
}

// CreateContext acquires a Context bound to th.
// It fails with errs.PermissionDenied on the main thread, if
// th already holds a context, or if the manager is already
// at its context limit.
func (m *Manager) CreateContext(th *thread.Thread) (*Context, error) {
	const op = "Manager.CreateContext"
	if th == thread.Main {
		return nil, errs.New(op, errs.PermissionDenied)
	}
	if th.Context() != nil {
		return nil, errs.New(op, errs.PermissionDenied)
	}

	for {
		cur := m.count.Load()
		if int(cur) >= m.maxCtx {
			return nil, errs.New(op, errs.PermissionDenied)
		}
		if m.count.CompareAndSwap(cur, cur+1) {
			break
		}
	}

	ctx := &Context{mgr: m, th: th}
	th.SetContext(ctx)
	return ctx, nil
}

// DestroyContext releases th's Context, clearing its gate.
// Destroying a thread with no context set is a no-op
// success.
func (m *Manager) DestroyContext(th *thread.Thread) error {
	if th.Context() == nil {
		return nil
	}
	th.SetContext(nil)
	m.count.Add(-1)
	return nil
}

// CanUseResources reports whether th may issue GPU-adjacent
// calls: true on the main thread, or when th holds a
// Context.
func (m *Manager) CanUseResources(th *thread.Thread) bool {
	return th == thread.Main || th.Context() != nil
}

// ContextCount returns the number of Contexts currently
// acquired.
func (m *Manager) ContextCount() int { return int(m.count.Load()) }

// Created records the successful creation of one resource of
// class c.
func (m *Manager) Created(c Class) { m.classes[c].Add(1) }

// Destroyed records the successful destruction of one
// resource of class c.
func (m *Manager) Destroyed(c Class) { m.classes[c].Add(-1) }

// Count returns the current outstanding count for class c.
func (m *Manager) Count(c Class) int64 { return m.classes[c].Load() }

// Shutdown logs a leak report for every resource class with
// a non-zero outstanding count.
func (m *Manager) Shutdown() {
	for c := Class(0); c < numClasses; c++ {
		if n := m.classes[c].Load(); n != 0 {
			log.Warnf("resource", "leaked %d %s resource(s)", n, c)
		}
	}
}

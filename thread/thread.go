// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package thread models the worker threads that drive scene
// execution and resource acquisition.
// Go has no thread-local storage, so the per-thread resource
// context that the original design attaches implicitly is
// instead carried as an explicit field on *Thread, acquired
// and released the way a mutex guard would be.
package thread

import (
	"context"
	"runtime"
	"runtime/pprof"
	"sync/atomic"
	"time"

	"deepsea/profile"
)

// ID identifies a Thread.
type ID uint64

var nextID atomic.Uint64

// Thread is a logical worker thread.
// It wraps a goroutine with an identity and a slot for the
// resource-manager handle that the thread currently holds,
// mirroring the layouts field pattern used elsewhere in the
// codebase (a slice/pointer of atomics guarded by the type
// that owns it, rather than a package-level map).
type Thread struct {
	id      ID
	name    string
	started atomic.Bool
	done    chan struct{}
	ctx     atomic.Pointer[any]

	// lastErrKind holds the most recent errs.Kind recorded on
	// this thread via SetLastErrorKind, encoded as int32 so
	// this package does not need to import errs (which itself
	// wants to import thread to implement errs.Log). noLastErrorKind
	// means none has been recorded yet.
	lastErrKind atomic.Int32
}

// noLastErrorKind is stored in a Thread's lastErrKind field
// until SetLastErrorKind is first called on it.
const noLastErrorKind = -1

// Main is the sentinel Thread representing the thread that
// created the runtime (id 0). It is never started or joined.
var Main = newThread(0)

func newThread(id ID) *Thread {
	t := &Thread{id: id}
	t.lastErrKind.Store(noLastErrorKind)
	return t
}

// New creates a Thread that has not yet been started.
func New() *Thread {
	t := newThread(ID(nextID.Add(1)))
	t.done = make(chan struct{})
	return t
}

// ID returns the thread's identity.
func (t *Thread) ID() ID { return t.id }

// Name returns the name given to t in Create, or "" if t has
// not been started.
func (t *Thread) Name() string { return t.name }

// Started reports whether Create has been called on t.
func (t *Thread) Started() bool { return t.started.Load() }

// Create starts fn running on a new goroutine bound to t,
// under name. Go has no equivalent of setting an OS-level
// thread name, since goroutines are not OS threads; name is
// instead attached as a pprof label on the goroutine, so it
// shows up in goroutine profiles and CPU profiles the same
// way an OS thread name would in a native profiler. Calling
// Create on an already-started Thread, or on Main, has no
// effect.
func (t *Thread) Create(name string, fn func()) {
	if t == Main || !t.started.CompareAndSwap(false, true) {
		return
	}
	t.name = name
	go func() {
		defer close(t.done)
		pprof.Do(context.Background(), pprof.Labels("thread", name), func(context.Context) {
			fn()
		})
	}()
}

// Join blocks until t's function returns.
// Joining a Thread that was never started, or Main, returns
// immediately.
func (t *Thread) Join() {
	if t == Main || !t.started.Load() {
		return
	}
	<-t.done
}

// Detach is equivalent to Join but does not block; it
// reports whether the thread's function has already
// returned.
func (t *Thread) Detach() bool {
	if t == Main {
		return true
	}
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// SetContext stores an opaque resource-context handle on t,
// replacing whatever was previously stored.
// It returns the handle that was replaced, or nil.
func (t *Thread) SetContext(ctx any) any {
	var p *any
	if ctx != nil {
		p = &ctx
	}
	prev := t.ctx.Swap(p)
	if prev == nil {
		return nil
	}
	return *prev
}

// Context returns the resource-context handle currently set
// on t, or nil if none is set.
func (t *Thread) Context() any {
	p := t.ctx.Load()
	if p == nil {
		return nil
	}
	return *p
}

// SetLastErrorKind records k, an errs.Kind encoded as int32,
// as the most recent error kind observed while running on t.
// Go has no thread-local storage to hold this implicitly, so
// errs.Log takes the Thread it should record against
// explicitly, the same way resource.Manager's context gate
// does.
func (t *Thread) SetLastErrorKind(k int32) { t.lastErrKind.Store(k) }

// LastErrorKind returns the most recent kind recorded by
// SetLastErrorKind, and whether any has been recorded yet.
func (t *Thread) LastErrorKind() (kind int32, ok bool) {
	k := t.lastErrKind.Load()
	return k, k != noLastErrorKind
}

// Yield is a hint that the calling goroutine is willing to
// let other work run.
func Yield() { runtime.Gosched() }

// Sleep pauses the calling goroutine for d. name identifies
// the wait in the profiler's Wait scope, so a profiler
// implementation can report which sleep call a thread is
// blocked in.
func Sleep(name string, d time.Duration) {
	defer profile.Push(profile.Wait, name)()
	time.Sleep(d)
}

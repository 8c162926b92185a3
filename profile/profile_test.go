// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package profile

import (
	"strings"
	"testing"
)

func TestRegisterRequiresAllHooks(t *testing.T) {
	defer Unregister()

	Register(Hooks{
		FrameBegin: func(uint64) {},
		FrameEnd:   func(uint64) {},
	})
	if Enabled() {
		t.Fatal("Register: partial hook table reported as enabled")
	}

	var calls int
	full := Hooks{
		FrameBegin: func(uint64) { calls++ },
		FrameEnd:   func(uint64) { calls++ },
		ScopeBegin: func(ScopeKind, string, string, string, int) uint64 { calls++; return 1 },
		ScopeEnd:   func(uint64) { calls++ },
		Stat:       func(string, float64) { calls++ },
		GPUBegin:   func(string) uint64 { calls++; return 1 },
		GPUEnd:     func(uint64) { calls++ },
	}
	Register(full)
	if !Enabled() {
		t.Fatal("Register: complete hook table reported as disabled")
	}

	FrameBegin(0)
	id, on := ScopeBegin(Function, "alloc")
	if !on {
		t.Fatal("ScopeBegin: on\nhave false\nwant true")
	}
	ScopeEnd(id)
	StatReport("contexts", 4)
	gid, _ := GPUBegin("draw")
	GPUEnd(gid)
	FrameEnd(0)

	if calls != 7 {
		t.Fatalf("calls\nhave %d\nwant 7", calls)
	}
}

func TestUnregisterDisables(t *testing.T) {
	Register(Hooks{
		FrameBegin: func(uint64) {},
		FrameEnd:   func(uint64) {},
		ScopeBegin: func(ScopeKind, string, string, string, int) uint64 { return 0 },
		ScopeEnd:   func(uint64) {},
		Stat:       func(string, float64) {},
		GPUBegin:   func(string) uint64 { return 0 },
		GPUEnd:     func(uint64) {},
	})
	Unregister()
	if Enabled() {
		t.Fatal("Unregister: still enabled")
	}
	if _, on := ScopeBegin(Scope, "x"); on {
		t.Fatal("ScopeBegin after Unregister: on\nhave true\nwant false")
	}
}

func TestScopeBeginCallSiteAttribution(t *testing.T) {
	defer Unregister()

	var gotFile, gotFunction string
	var gotLine int
	Register(Hooks{
		FrameBegin: func(uint64) {},
		FrameEnd:   func(uint64) {},
		ScopeBegin: func(_ ScopeKind, _, file, function string, line int) uint64 {
			gotFile, gotFunction, gotLine = file, function, line
			return 1
		},
		ScopeEnd: func(uint64) {},
		Stat:     func(string, float64) {},
		GPUBegin: func(string) uint64 { return 0 },
		GPUEnd:   func(uint64) {},
	})

	id, on := ScopeBegin(Wait, "call-site-test")
	if !on {
		t.Fatal("ScopeBegin: on\nhave false\nwant true")
	}
	ScopeEnd(id)

	if !strings.HasSuffix(gotFile, "profile_test.go") {
		t.Fatalf("ScopeBegin: file\nhave %q\nwant suffix profile_test.go", gotFile)
	}
	if !strings.Contains(gotFunction, "TestScopeBeginCallSiteAttribution") {
		t.Fatalf("ScopeBegin: function\nhave %q\nwant to contain TestScopeBeginCallSiteAttribution", gotFunction)
	}
	if gotLine == 0 {
		t.Fatal("ScopeBegin: line\nhave 0\nwant the call site's line number")
	}
}

func TestPushReturnsCloserAndAttributesCallSite(t *testing.T) {
	defer Unregister()

	var began, ended bool
	var gotFunction string
	Register(Hooks{
		FrameBegin: func(uint64) {},
		FrameEnd:   func(uint64) {},
		ScopeBegin: func(kind ScopeKind, name, _, function string, _ int) uint64 {
			began = true
			gotFunction = function
			if kind != Wait || name != "sleep" {
				t.Fatalf("Push: (kind, name)\nhave (%v, %q)\nwant (Wait, sleep)", kind, name)
			}
			return 7
		},
		ScopeEnd: func(id uint64) {
			ended = true
			if id != 7 {
				t.Fatalf("Push: ScopeEnd id\nhave %d\nwant 7", id)
			}
		},
		Stat:     func(string, float64) {},
		GPUBegin: func(string) uint64 { return 0 },
		GPUEnd:   func(uint64) {},
	})

	end := Push(Wait, "sleep")
	if !began {
		t.Fatal("Push: ScopeBegin hook did not run")
	}
	if !strings.Contains(gotFunction, "TestPushReturnsCloserAndAttributesCallSite") {
		t.Fatalf("Push: function\nhave %q\nwant to contain TestPushReturnsCloserAndAttributesCallSite", gotFunction)
	}
	end()
	if !ended {
		t.Fatal("Push: closer did not call ScopeEnd")
	}
}

func TestPushNoopWhenDisabled(t *testing.T) {
	Unregister()
	// Must be safe to call without checking Enabled first.
	end := Push(Function, "noop")
	end()
}

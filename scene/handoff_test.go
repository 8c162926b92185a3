// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"testing"

	"deepsea/linear"
)

// TestHandoffContinuity exercises the reparent-transition
// scenario: a node moved from one parent to another must keep
// its pre-handoff world placement at the instant of handoff,
// then converge exactly to ordinary parent composition once
// the transition elapses.
func TestHandoffContinuity(t *testing.T) {
	const transition = float32(0.5)

	sc := NewScene()
	hl := NewHandoffList(transition)
	hl.AttachTree(sc.Tree)
	sc.Register("handoff", hl)

	oldParentTyp := NewType("anchor", nil)
	oldParent := New(oldParentTyp, nil, translation(0, 0, 0))
	oldParentTN := sc.AddNode(oldParent, NoTreeNode)

	newParentTyp := NewType("anchor", nil)
	newParent := New(newParentTyp, nil, translation(10, 20, 30))
	newParentTN := sc.AddNode(newParent, NoTreeNode)

	childTyp := NewType("prop", nil)
	child := New(childTyp, []string{"handoff"}, translation(1, 2, 3))
	childTN := sc.AddNode(child, oldParentTN)

	sc.Update(0)

	preWorld := *sc.Tree.World(childTN)

	if _, ok := sc.Tree.ItemData(childTN, 0).(EntryID); !ok {
		t.Fatal("ItemData: HandoffList did not record an EntryID")
	}
	sc.Reparent(childTN, newParentTN)

	sc.Update(0)
	postWorld := *sc.Tree.World(childTN)
	if !m4Near(&preWorld, &postWorld, 1e-5) {
		t.Fatalf("World immediately after handoff\nhave %v\nwant %v", postWorld, preWorld)
	}

	const step = float32(1.0 / 60.0)
	for elapsed := float32(0); elapsed < transition+step; elapsed += step {
		sc.Update(step)
	}

	var want linear.M4
	want.Mul(sc.Tree.World(newParentTN), child.Local())
	got := *sc.Tree.World(childTN)
	if !m4Near(&got, &want, 1e-5) {
		t.Fatalf("World after transition elapsed\nhave %v\nwant %v", got, want)
	}
}

// buildHandoffAncestorScene wires a grandparent G with two
// children P1/P2 and a handoff-listed node C under P1,
// reparents C to P2, then moves G by delta before advancing
// the transition by one step, returning C's resulting world.
func buildHandoffAncestorScene(t *testing.T, transition float32, delta linear.V3) linear.M4 {
	t.Helper()
	sc := NewScene()
	hl := NewHandoffList(transition)
	hl.AttachTree(sc.Tree)
	sc.Register("handoff", hl)

	anchorTyp := NewType("anchor", nil)
	grandparent := New(anchorTyp, nil, translation(0, 0, 0))
	gTN := sc.AddNode(grandparent, NoTreeNode)

	p1 := New(anchorTyp, nil, translation(0, 0, 0))
	p1TN := sc.AddNode(p1, gTN)

	p2 := New(anchorTyp, nil, translation(5, 0, 0))
	p2TN := sc.AddNode(p2, gTN)

	childTyp := NewType("prop", nil)
	child := New(childTyp, []string{"handoff"}, translation(1, 0, 0))
	childTN := sc.AddNode(child, p1TN)

	sc.Update(0)
	sc.Reparent(childTN, p2TN)

	grandparent.SetLocal(translation(delta[0], delta[1], delta[2]))
	// Flush the tree once with dt == 0 so World(gTN) reflects
	// the new local transform before the next tick's
	// PreTransformUpdate reads it (PreTransformUpdate runs
	// before the transform walk within a single Update call).
	sc.Update(0)

	const step = float32(1.0 / 60.0)
	sc.Update(step)
	return *sc.Tree.World(childTN)
}

// TestHandoffCommonAncestorTracking exercises the case
// SceneHandoffList.c's ancestor walk exists for: the node's
// previous and new parent (P1 and P2) are both attached under
// a shared grandparent (G), so prevAncestor and newAncestor
// resolve to a common ancestor above either of them. Moving
// that common ancestor mid-transition must shift the
// interpolated pose along with it, which only holds if the
// handoff pose is decomposed relative to the common ancestor
// rather than relative to the raw, frozen world transform
// captured at handoff time.
func TestHandoffCommonAncestorTracking(t *testing.T) {
	const transition = float32(0.5)
	delta := linear.V3{100, 0, 0}

	stationary := buildHandoffAncestorScene(t, transition, linear.V3{})
	moved := buildHandoffAncestorScene(t, transition, delta)

	stationaryT, movedT := stationary[3], moved[3]
	var shift linear.V4
	shift.Sub(&movedT, &stationaryT)
	for i := range delta {
		if !near(shift[i], delta[i], 1e-4) {
			t.Fatalf("shift from moving the common ancestor\nhave %v\nwant %v", shift, delta)
		}
	}
}

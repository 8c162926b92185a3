// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

import "deepsea/linear"

// HandoffList decouples a node's transform from its parent
// across a reparent: the node keeps its pre-handoff world
// placement, then slerps/lerps toward the new parent's
// transform over TransitionTime, so the node appears to
// remain world-stationary at the moment of handoff.
type HandoffList struct {
	// TransitionTime is the duration, in the same units as
	// the dt passed to PreTransformUpdate, over which a
	// reparented node's transform is interpolated.
	TransitionTime float32

	table *EntryTable[handoffEntry]
	tree  *Tree
}

type handoffEntry struct {
	tn        TreeNodeID
	newParent TreeNodeID
	ancestor  TreeNodeID
	elapsed   float32
	active    bool
	fromT     linear.V3
	fromR     linear.Q
	fromS     linear.V3
}

// commonAncestor finds the nearest TreeNode that is an
// ancestor of both a and b (inclusive), or NoTreeNode if
// they share none (i.e. both are roots of disjoint trees).
// This mirrors SceneHandoffList.c's reparentNode: walk every
// ancestor of a, and for each one walk b's ancestor chain
// looking for a match.
func commonAncestor(tree *Tree, a, b TreeNodeID) TreeNodeID {
	for ; a != NoTreeNode; a = tree.Parent(a) {
		for c := b; c != NoTreeNode; c = tree.Parent(c) {
			if c == a {
				return a
			}
		}
	}
	return NoTreeNode
}

// NewHandoffList creates a HandoffList that interpolates
// reparented nodes over transitionTime.
func NewHandoffList(transitionTime float32) *HandoffList {
	return &HandoffList{TransitionTime: transitionTime, table: NewEntryTable[handoffEntry]()}
}

// AddNode implements NodeAdder; it never declines.
func (l *HandoffList) AddNode(n *Node, tn TreeNodeID, itemData any) (EntryID, bool) {
	return l.table.Add(handoffEntry{tn: tn}), true
}

// RemoveNode implements NodeRemover.
func (l *HandoffList) RemoveNode(tn TreeNodeID, id EntryID) { l.table.Remove(id) }

// relativeTransform expresses world in the space of
// ancestor, i.e. ancestor.World⁻¹ ⋅ world. NoTreeNode (no
// common ancestor was found, so the implicit global root
// applies) is treated as an identity transform.
func relativeTransform(tree *Tree, ancestor TreeNodeID, world *linear.M4) linear.M4 {
	if ancestor == NoTreeNode {
		return *world
	}
	var inv, rel linear.M4
	inv.AffineInvert(tree.World(ancestor))
	rel.Mul(&inv, world)
	return rel
}

// ReparentNode implements NodeReparenter. It walks
// prevAncestor's and newAncestor's ancestor chains to find
// the nearest TreeNode common to both, then decomposes the
// node's current world transform *relative to that common
// ancestor* (not its raw world transform) as the
// interpolation's starting pose, per SceneHandoffList.c's
// reparentNode. The node's tree transform is pinned to its
// pre-handoff world placement via baseTransform/
// noParentTransform until the transition completes.
func (l *HandoffList) ReparentNode(id EntryID, prevAncestor, newAncestor TreeNodeID) {
	e, ok := l.table.Get(id)
	if !ok {
		return
	}
	tree := l.tree
	if tree == nil {
		return
	}
	ancestor := commonAncestor(tree, prevAncestor, newAncestor)

	w := *tree.World(e.tn)
	rel := relativeTransform(tree, ancestor, &w)
	t, r, s := rel.Decompose()

	e.ancestor = ancestor
	e.newParent = newAncestor
	e.elapsed = 0
	e.active = true
	e.fromT, e.fromR, e.fromS = t, r, s

	tree.SetNoParentTransform(e.tn, true)
	tree.SetBaseTransform(e.tn, &w)
}

// AttachTree binds the Tree this list observes, since
// Scene.Register does not otherwise give a list access to
// the Tree it will observe. It must be called once, before
// any node using this list is added.
func (l *HandoffList) AttachTree(tree *Tree) { l.tree = tree }

// PreTransformUpdate implements PreTransformUpdater: it
// advances every in-progress handoff and, once
// TransitionTime has elapsed, releases the node back to
// ordinary parent-relative propagation.
func (l *HandoffList) PreTransformUpdate(sc *Scene, dt float32) {
	l.table.All(func(_ EntryID, e *handoffEntry) {
		if !e.active {
			return
		}
		e.elapsed += dt
		if e.elapsed >= l.TransitionTime {
			e.active = false
			l.tree.SetNoParentTransform(e.tn, false)
			l.tree.SetBaseTransform(e.tn, nil)
			return
		}
		alpha := e.elapsed / l.TransitionTime

		parentWorld := l.tree.World(e.newParent)
		var target linear.M4
		target.Mul(parentWorld, l.tree.Node(e.tn).Local())
		targetRel := relativeTransform(l.tree, e.ancestor, &target)
		toT, toR, toS := targetRel.Decompose()

		var t, s linear.V3
		var r linear.Q
		t.Lerp(&e.fromT, &toT, alpha)
		s.Lerp(&e.fromS, &toS, alpha)
		r.Slerp(&e.fromR, &toR, alpha)

		var interpRel, interp linear.M4
		interpRel.Compose(&t, &r, &s)
		if e.ancestor == NoTreeNode {
			interp = interpRel
		} else {
			interp.Mul(l.tree.World(e.ancestor), &interpRel)
		}
		l.tree.SetBaseTransform(e.tn, &interp)
	})
}

// Hash implements ItemList.
func (l *HandoffList) Hash() uint64 { return hashString("HandoffList") }

// Equal implements ItemList: two HandoffLists are equivalent
// when they share the same TransitionTime.
func (l *HandoffList) Equal(other ItemList) bool {
	o, ok := other.(*HandoffList)
	return ok && o.TransitionTime == l.TransitionTime
}

// GlobalValueCount implements ItemList.
func (l *HandoffList) GlobalValueCount() int { return 0 }

// Destroy implements ItemList.
func (l *HandoffList) Destroy() { l.table.Compact() }

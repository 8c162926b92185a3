// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package scene implements the runtime's node/tree graph and
// the per-frame item-list execution pipeline that walks it.
// The dense, bitm-indexed storage and depth-first traversal
// follow the shape of the teacher's node.Graph, generalized
// from a single flat transform graph into the richer
// node/tree-node split the resource model requires.
package scene

import (
	"sync/atomic"

	"deepsea/linear"
)

// Type describes a class of Node.
// setupParentType, when non-nil, lets a type declare itself
// a specialization of another, so IsOfType can walk the
// resulting chain the way a downcast check would.
type Type struct {
	Name   string
	parent *Type
}

// NewType creates a Type. If parent is non-nil, t is
// considered to be a specialization of parent (and of
// parent's own ancestors).
func NewType(name string, parent *Type) *Type {
	return &Type{Name: name, parent: parent}
}

// IsOfType reports whether t is other, or a specialization
// of other.
func (t *Type) IsOfType(other *Type) bool {
	for p := t; p != nil; p = p.parent {
		if p == other {
			return true
		}
	}
	return false
}

// Node is a refcounted scene-graph node. A Node's identity is
// its type plus the static set of item lists it declares;
// each placement of a Node into a Tree produces a distinct
// TreeNode sharing that identity.
type Node struct {
	typ       *Type
	itemLists []string
	local     linear.M4

	refCount atomic.Int32
	children []*Node

	// UserData is opaque data associated with the node.
	UserData any

	// UserDataDestroy, if non-nil, runs once on UserData
	// after children have been released but before
	// DestroyFunc, when the node's reference count reaches
	// zero.
	UserDataDestroy func(any)

	// DestroyFunc, if non-nil, runs once, after children and
	// UserData have been released, when the node's reference
	// count reaches zero.
	DestroyFunc func(*Node)
}

// New creates a Node of the given type with a reference
// count of 1. itemLists names the item lists that should be
// asked to observe every TreeNode instantiating this Node.
func New(typ *Type, itemLists []string, local linear.M4) *Node {
	n := &Node{typ: typ, itemLists: itemLists, local: local}
	n.refCount.Store(1)
	return n
}

// Type returns the node's Type.
func (n *Node) Type() *Type { return n.typ }

// IsOfType reports whether the node's type is, or
// specializes, t.
func (n *Node) IsOfType(t *Type) bool { return n.typ.IsOfType(t) }

// ItemLists returns the names of the item lists this node
// declares.
func (n *Node) ItemLists() []string { return n.itemLists }

// Local returns the node's local transform. Callers must not
// mutate the result.
func (n *Node) Local() *linear.M4 { return &n.local }

// SetLocal replaces the node's local transform.
func (n *Node) SetLocal(m linear.M4) { n.local = m }

// AddChild adds c as a child of n, taking a strong reference
// to it. A child may be added to more than one parent; its
// destructor runs only once its reference count reaches
// zero.
func (n *Node) AddChild(c *Node) {
	c.AddRef()
	n.children = append(n.children, c)
}

// Children returns n's children. Callers must not mutate the
// result.
func (n *Node) Children() []*Node { return n.children }

// AddRef atomically increments n's reference count.
func (n *Node) AddRef() { n.refCount.Add(1) }

// RefCount returns the node's current reference count.
func (n *Node) RefCount() int32 { return n.refCount.Load() }

// FreeRef atomically decrements n's reference count. At
// zero, n's children are released first, then
// UserDataDestroy runs on UserData, then DestroyFunc runs on
// n, each only if set.
func (n *Node) FreeRef() {
	if n.refCount.Add(-1) != 0 {
		return
	}
	for _, c := range n.children {
		c.FreeRef()
	}
	n.children = nil
	if n.UserDataDestroy != nil {
		n.UserDataDestroy(n.UserData)
	}
	if n.DestroyFunc != nil {
		n.DestroyFunc(n)
	}
}

// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

import "deepsea/linear"

// TransformSet is the per-instance data TransformData
// computes and uploads for each registered node.
type TransformSet struct {
	World                 linear.M4
	WorldView             linear.M4
	WorldViewInvTranspose linear.M3
	WorldViewProj         linear.M4
}

type transformEntry struct {
	tn  TreeNodeID
	out TransformSet
}

// TransformData computes {world, worldView,
// worldViewInvTranspose, worldViewProj} for every node it
// observes and keeps the result on that node's entry, one
// TransformSet per entry, readable through Entry. No GPU
// buffer is written.
type TransformData struct {
	table *EntryTable[transformEntry]
}

// NewTransformData creates an empty TransformData list.
func NewTransformData() *TransformData {
	return &TransformData{table: NewEntryTable[transformEntry]()}
}

// AddNode implements NodeAdder; it never declines.
func (l *TransformData) AddNode(n *Node, tn TreeNodeID, itemData any) (EntryID, bool) {
	return l.table.Add(transformEntry{tn: tn}), true
}

// RemoveNode implements NodeRemover.
func (l *TransformData) RemoveNode(tn TreeNodeID, id EntryID) { l.table.Remove(id) }

// Update implements Updater: it recomputes every entry's
// TransformSet from the Tree's current world transforms and
// the Scene's view/projection.
func (l *TransformData) Update(sc *Scene, dt float32) {
	l.table.All(func(_ EntryID, e *transformEntry) {
		world := sc.Tree.World(e.tn)
		e.out.World = *world
		e.out.WorldView.Mul(&sc.View, world)
		e.out.WorldViewInvTranspose.InverseTranspose(&e.out.WorldView)
		e.out.WorldViewProj.Mul(&sc.Proj, &e.out.WorldView)
	})
}

// Entry returns the TransformSet computed for id, if it is
// still live.
func (l *TransformData) Entry(id EntryID) (TransformSet, bool) {
	e, ok := l.table.Get(id)
	if !ok {
		return TransformSet{}, false
	}
	return e.out, true
}

// Len reports the number of live entries (after draining
// pending removals).
func (l *TransformData) Len() int {
	l.table.Compact()
	return l.table.Len()
}

// Hash implements ItemList.
func (l *TransformData) Hash() uint64 { return hashString("TransformData") }

// Equal implements ItemList: every TransformData list is
// considered equivalent to every other, since none of them
// carry identity-bearing configuration.
func (l *TransformData) Equal(other ItemList) bool {
	_, ok := other.(*TransformData)
	return ok
}

// GlobalValueCount implements ItemList.
func (l *TransformData) GlobalValueCount() int { return 0 }

// Destroy implements ItemList.
func (l *TransformData) Destroy() { l.table.Compact() }

// HashString is a small FNV-1a implementation used to seed
// the common hash that ItemList.Hash returns for lists of the
// same type, including ones defined outside this package
// (e.g. vector.DrawPrepare).
func HashString(s string) uint64 {
	const offset, prime = 14695981039346656037, 1099511628211
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

// hashString is kept as the in-package spelling used by this
// file's sibling lists.
func hashString(s string) uint64 { return HashString(s) }

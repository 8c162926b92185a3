// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

import "deepsea/linear"

// Scene ties a Tree together with the named ItemLists that
// observe it and the per-frame view/projection state those
// lists consult.
//
// Lists is keyed by name for AddNode/RemoveNode lookups; order
// holds the names in registration order so that every
// lifecycle hook is driven in a stable, registration order
// sequence across frames, per the per-frame control flow.
type Scene struct {
	Tree  *Tree
	Lists map[string]ItemList
	order []string

	View linear.M4
	Proj linear.M4
}

// NewScene creates an empty Scene.
func NewScene() *Scene {
	return &Scene{Tree: NewTree(), Lists: make(map[string]ItemList)}
}

// Register associates an ItemList with name, so that Nodes
// declaring name among their ItemLists are offered to it.
// Re-registering an existing name replaces the list in place
// without changing its position in the registration order.
func (sc *Scene) Register(name string, list ItemList) {
	if _, ok := sc.Lists[name]; !ok {
		sc.order = append(sc.order, name)
	}
	sc.Lists[name] = list
}

// AddNode instantiates n into the Tree under parent, offering
// it to every ItemList it names that implements NodeAdder.
func (sc *Scene) AddNode(n *Node, parent TreeNodeID) TreeNodeID {
	tn := sc.Tree.Insert(n, parent)
	for i, name := range n.ItemLists() {
		list, ok := sc.Lists[name]
		if !ok {
			continue
		}
		adder, ok := list.(NodeAdder)
		if !ok {
			continue
		}
		id, ok := adder.AddNode(n, tn, n.UserData)
		if !ok {
			continue
		}
		sc.Tree.SetItemData(tn, i, id)
	}
	return tn
}

// RemoveNode detaches tn, first notifying every ItemList that
// accepted it (via NodeRemover) so lazy-removal bookkeeping
// runs before the underlying Node's reference is released.
func (sc *Scene) RemoveNode(tn TreeNodeID) {
	n := sc.Tree.Node(tn)
	for i, name := range n.ItemLists() {
		list, ok := sc.Lists[name]
		if !ok {
			continue
		}
		remover, ok := list.(NodeRemover)
		if !ok {
			continue
		}
		if id, ok := sc.Tree.ItemData(tn, i).(EntryID); ok && id != NoEntry {
			remover.RemoveNode(tn, id)
		}
	}
	sc.Tree.Remove(tn)
}

// Reparent moves tn to newParent, then notifies every
// NodeReparenter list tn declares so that lists computing
// their own node placement (e.g. a handoff list) can react to
// the change of ancestry, mirroring how AddNode/RemoveNode
// drive NodeAdder/NodeRemover.
func (sc *Scene) Reparent(tn, newParent TreeNodeID) {
	prevParent := sc.Tree.Parent(tn)
	sc.Tree.Reparent(tn, newParent)
	n := sc.Tree.Node(tn)
	for i, name := range n.ItemLists() {
		list, ok := sc.Lists[name]
		if !ok {
			continue
		}
		reparenter, ok := list.(NodeReparenter)
		if !ok {
			continue
		}
		if id, ok := sc.Tree.ItemData(tn, i).(EntryID); ok && id != NoEntry {
			reparenter.ReparentNode(id, prevParent, newParent)
		}
	}
}

// Update runs one frame: PreTransformUpdate on every list
// that implements it (in registration order), the transform
// walk, then Update on every list that implements it (in
// registration order).
func (sc *Scene) Update(dt float32) {
	for _, name := range sc.order {
		if p, ok := sc.Lists[name].(PreTransformUpdater); ok {
			p.PreTransformUpdate(sc, dt)
		}
	}
	sc.Tree.Update()
	for _, name := range sc.order {
		if u, ok := sc.Lists[name].(Updater); ok {
			u.Update(sc, dt)
		}
	}
}

// PreRenderPass runs PreRenderPass on every registered list
// that implements it, in registration order, before the
// frame's first render pass begins.
func (sc *Scene) PreRenderPass(view, cmd any) {
	for _, name := range sc.order {
		if p, ok := sc.Lists[name].(PreRenderPasser); ok {
			p.PreRenderPass(view, cmd)
		}
	}
}

// Commit runs Commit on every registered list that implements
// it, in registration order, during the frame's owning
// subpass.
func (sc *Scene) Commit(view, cmd any) {
	for _, name := range sc.order {
		if c, ok := sc.Lists[name].(Committer); ok {
			c.Commit(view, cmd)
		}
	}
}

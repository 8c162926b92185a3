// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

// ItemList is the minimal contract every scene item list
// satisfies. Because spec-level lists only implement "any
// subset" of the full hook table, the per-hook capabilities
// (NodeAdder, Updater, Committer, ...) are modeled as
// separate interfaces a concrete list opts into, the way
// io.Reader/io.Writer compose instead of one do-everything
// interface.
type ItemList interface {
	// Hash seeds a hash shared by every list of the same
	// type, for use when a scene deduplicates equivalent
	// lists.
	Hash() uint64

	// Equal reports whether other is an equivalent list
	// (same shader, material, render state and other
	// identity-bearing fields).
	Equal(other ItemList) bool

	// GlobalValueCount is the number of named, shared
	// material values this list publishes into a view's
	// global value dictionary.
	GlobalValueCount() int

	// Destroy tears the list down. Implementations that
	// support removal must drain pending removals first so
	// every entry's destructor runs exactly once.
	Destroy()
}

// NodeAdder is implemented by lists that observe node
// attachment.
type NodeAdder interface {
	// AddNode is called on attachment. Returning ok == false
	// declines to observe the node.
	AddNode(n *Node, tn TreeNodeID, itemData any) (id EntryID, ok bool)
}

// NodeRemover is implemented by lists that observe
// detachment. Implementations must only enqueue id for lazy
// removal (e.g. via EntryTable.Remove); actual compaction
// happens the next time the list iterates its entries.
type NodeRemover interface {
	RemoveNode(tn TreeNodeID, id EntryID)
}

// NodeReparenter is implemented by lists (e.g. a handoff
// list) that react to a subtree being moved to a new parent.
type NodeReparenter interface {
	ReparentNode(id EntryID, prevAncestor, newAncestor TreeNodeID)
}

// PreTransformUpdater is implemented by lists that must run
// before the per-frame transform walk, typically to mutate a
// tree node's base transform.
type PreTransformUpdater interface {
	PreTransformUpdate(sc *Scene, dt float32)
}

// Updater is implemented by lists with per-frame stateful
// logic that runs after the transform walk.
type Updater interface {
	Update(sc *Scene, dt float32)
}

// PreRenderPasser is implemented by lists that must record
// commands before the first render pass of the frame.
type PreRenderPasser interface {
	PreRenderPass(view any, cmd any)
}

// Committer is implemented by lists that record draw commands
// during their owning subpass.
type Committer interface {
	Commit(view any, cmd any)
}

// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

import "deepsea/log"

// Emitter is a single node's particle simulation state, as
// created by EmitterNode.CreateEmitter. ParticlePrepare owns
// its lifetime from AddNode through the matching RemoveNode
// (or Destroy, for whatever is still live at teardown).
type Emitter interface {
	// Step advances the emitter by dt, given the node's
	// current tree placement.
	Step(tn TreeNodeID, dt float32) error
	// Destroy releases the emitter's resources.
	Destroy()
}

// EmitterNode is implemented by a Node's itemData when it
// wants ParticlePrepare to manage an Emitter on its behalf.
type EmitterNode interface {
	// CreateEmitter creates the Emitter this node drives,
	// given the TreeNodeID it was just instantiated as.
	CreateEmitter(tn TreeNodeID) (Emitter, error)
}

type particleEntry struct {
	tn      TreeNodeID
	emitter Emitter
}

// ParticlePrepare steps particle-system simulation state
// before rendering. It observes node attachment the same way
// TransformData/HandoffList do: for every node whose itemData
// implements EmitterNode, it creates and owns an Emitter for
// the lifetime of that node's attachment, stepping every live
// emitter once per frame.
type ParticlePrepare struct {
	table *EntryTable[particleEntry]
}

// NewParticlePrepare creates an empty ParticlePrepare list.
func NewParticlePrepare() *ParticlePrepare {
	return &ParticlePrepare{table: NewEntryTable[particleEntry]()}
}

// AddNode implements NodeAdder. It declines any node whose
// itemData is not an EmitterNode, or whose CreateEmitter call
// fails.
func (l *ParticlePrepare) AddNode(n *Node, tn TreeNodeID, itemData any) (EntryID, bool) {
	const op = "ParticlePrepare.AddNode"
	en, ok := itemData.(EmitterNode)
	if !ok {
		return NoEntry, false
	}
	emitter, err := en.CreateEmitter(tn)
	if err != nil || emitter == nil {
		log.Warnf(op, "failed to create particle emitter: %v", err)
		return NoEntry, false
	}
	return l.table.Add(particleEntry{tn: tn, emitter: emitter}), true
}

// RemoveNode implements NodeRemover. The emitter is destroyed
// immediately; only the entry's removal from the dense array
// is deferred to the next Compact, per the lazy-removal
// contract.
func (l *ParticlePrepare) RemoveNode(tn TreeNodeID, id EntryID) {
	if e, ok := l.table.Get(id); ok {
		e.emitter.Destroy()
	}
	l.table.Remove(id)
}

// Update implements Updater: it drains pending removals, then
// steps every live entry's Emitter by dt.
func (l *ParticlePrepare) Update(sc *Scene, dt float32) {
	const op = "ParticlePrepare.Update"
	l.table.All(func(_ EntryID, e *particleEntry) {
		if err := e.emitter.Step(e.tn, dt); err != nil {
			log.Warnf(op, "failed to step particle emitter: %v", err)
		}
	})
}

// Len reports the number of live entries (after draining
// pending removals).
func (l *ParticlePrepare) Len() int {
	l.table.Compact()
	return l.table.Len()
}

// Hash implements ItemList.
func (l *ParticlePrepare) Hash() uint64 { return hashString("ParticlePrepare") }

// Equal implements ItemList.
func (l *ParticlePrepare) Equal(other ItemList) bool {
	_, ok := other.(*ParticlePrepare)
	return ok
}

// GlobalValueCount implements ItemList.
func (l *ParticlePrepare) GlobalValueCount() int { return 0 }

// Destroy implements ItemList. Entries still pending removal
// at teardown had their Emitter destroyed already by
// RemoveNode; anything still live is destroyed here before the
// table itself is dropped.
func (l *ParticlePrepare) Destroy() {
	l.table.All(func(_ EntryID, e *particleEntry) { e.emitter.Destroy() })
}

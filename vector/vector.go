// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package vector implements the per-frame prepare pass for
// text and vector-image scene nodes: re-running layout and
// re-uploading a node's render buffer only when its layout
// has actually changed, following the same dense-table,
// lazy-removal shape scene.EntryTable already establishes
// for per-node per-list bookkeeping.
package vector

import "deepsea/scene"

// Version is a monotonically increasing counter a node bumps
// every time its layout changes.
type Version uint64

// Entry is anything DrawPrepare can walk: a laid-out text
// node or a vector-image node. A text entry relayouts and
// re-uploads its render buffer on a version change; a
// vector-image entry only ever needs Refresh, since its
// geometry comes from an external rasterizer rather than a
// render buffer this package owns.
type Entry interface {
	// LayoutVersion returns the entry's current version.
	// DrawPrepare compares this against the version observed
	// at the last Update to decide whether to relayout.
	LayoutVersion() Version
}

// Relayouter is implemented by text entries: when their
// version changes, Update calls Relayout to rerun text
// layout and re-upload the render buffer.
type Relayouter interface {
	Entry
	Relayout()
}

// Refresher is implemented by entries (typically vector-image
// ones) that can re-stage texture deltas: when the version is
// unchanged, Update calls Refresh so the entry can re-stage them
// (e.g. an atlas eviction) without a full relayout.
type Refresher interface {
	Entry
	Refresh()
}

type prepareEntry struct {
	tn      scene.TreeNodeID
	entry   Entry
	version Version
}

// DrawPrepare walks attached text and vector-image nodes
// once per frame: if an entry's LayoutVersion differs from
// the version cached at the previous Update, it reruns
// layout (Relayout) and re-uploads; otherwise it calls
// Refresh to re-stage any texture deltas.
type DrawPrepare struct {
	table *scene.EntryTable[prepareEntry]
}

// NewDrawPrepare creates an empty DrawPrepare list, its
// dense table pre-sized the same way scene's own item lists
// are (see scene.NewEntryTable).
func NewDrawPrepare() *DrawPrepare {
	return &DrawPrepare{table: scene.NewEntryTable[prepareEntry]()}
}

// AddNode implements scene.NodeAdder. itemData must be an
// Entry (a Relayouter for text nodes, a Refresher for
// vector-image nodes); AddNode declines any node whose
// itemData is not an Entry.
func (l *DrawPrepare) AddNode(n *scene.Node, tn scene.TreeNodeID, itemData any) (scene.EntryID, bool) {
	e, ok := itemData.(Entry)
	if !ok {
		return scene.NoEntry, false
	}
	id := l.table.Add(prepareEntry{tn: tn, entry: e, version: e.LayoutVersion() - 1})
	return id, true
}

// RemoveNode implements scene.NodeRemover.
func (l *DrawPrepare) RemoveNode(tn scene.TreeNodeID, id scene.EntryID) { l.table.Remove(id) }

// Update implements scene.Updater: for every live entry, it
// compares the node's current LayoutVersion against the
// version observed last frame. On a mismatch it relayouts
// (text entries) or treats the version as adopted
// (vector-image entries, which have no Relayout hook);
// otherwise it calls Refresh, when the entry supports it.
func (l *DrawPrepare) Update(sc *scene.Scene, dt float32) {
	l.table.All(func(_ scene.EntryID, e *prepareEntry) {
		cur := e.entry.LayoutVersion()
		if cur != e.version {
			if r, ok := e.entry.(Relayouter); ok {
				r.Relayout()
			}
			e.version = cur
			return
		}
		if r, ok := e.entry.(Refresher); ok {
			r.Refresh()
		}
	})
}

// Len reports the number of live entries.
func (l *DrawPrepare) Len() int {
	l.table.Compact()
	return l.table.Len()
}

// Hash implements scene.ItemList.
func (l *DrawPrepare) Hash() uint64 { return scene.HashString("DrawPrepare") }

// Equal implements scene.ItemList: every DrawPrepare list is
// equivalent to every other, since none of them carry
// identity-bearing configuration.
func (l *DrawPrepare) Equal(other scene.ItemList) bool {
	_, ok := other.(*DrawPrepare)
	return ok
}

// GlobalValueCount implements scene.ItemList.
func (l *DrawPrepare) GlobalValueCount() int { return 0 }

// Destroy implements scene.ItemList.
func (l *DrawPrepare) Destroy() { l.table.Compact() }

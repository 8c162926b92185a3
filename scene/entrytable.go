// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

import "deepsea/config"

// EntryID identifies a per-instance entry held by an
// ItemList. IDs are never reused, following the "manual
// counters, do not reuse" guidance for item-list bookkeeping.
type EntryID uint64

// NoEntry is returned by AddNode to decline observing a
// node.
const NoEntry EntryID = 0

type tableEntry[T any] struct {
	id   EntryID
	data T
}

// EntryTable is the dense-array-plus-pending-remove storage
// every lazily-removing ItemList is built on. A removal only
// appends to a side buffer; the dense array itself is
// compacted in one pass the next time Compact is called, so
// removing an entry from within an iteration over All never
// invalidates indices the iteration has already seen.
type EntryTable[T any] struct {
	entries []tableEntry[T]
	index   map[EntryID]int
	pending []EntryID
	nextID  uint64
}

// NewEntryTable creates an EntryTable with its dense array
// and index map pre-sized for
// config.Current().ItemListInitialEntries entries, avoiding
// the series of reallocations a freshly zero-valued table
// would otherwise incur as an item list fills up.
func NewEntryTable[T any]() *EntryTable[T] {
	n := config.Current().ItemListInitialEntries
	return &EntryTable[T]{
		entries: make([]tableEntry[T], 0, n),
		index:   make(map[EntryID]int, n),
	}
}

// Add appends a new entry and returns its ID.
func (t *EntryTable[T]) Add(data T) EntryID {
	t.nextID++
	id := EntryID(t.nextID)
	if t.index == nil {
		t.index = make(map[EntryID]int)
	}
	t.index[id] = len(t.entries)
	t.entries = append(t.entries, tableEntry[T]{id: id, data: data})
	return id
}

// Remove schedules id for removal at the next Compact call.
// Removing an ID that is already pending, or that does not
// exist, is a no-op.
func (t *EntryTable[T]) Remove(id EntryID) {
	if _, ok := t.index[id]; !ok {
		return
	}
	for _, p := range t.pending {
		if p == id {
			return
		}
	}
	t.pending = append(t.pending, id)
}

// Compact drains the pending-remove buffer, dropping those
// entries from the dense array in a single O(n+m) pass.
func (t *EntryTable[T]) Compact() {
	if len(t.pending) == 0 {
		return
	}
	drop := make(map[EntryID]bool, len(t.pending))
	for _, id := range t.pending {
		drop[id] = true
		delete(t.index, id)
	}
	t.pending = t.pending[:0]
	out := t.entries[:0]
	for _, e := range t.entries {
		if drop[e.id] {
			continue
		}
		t.index[e.id] = len(out)
		out = append(out, e)
	}
	t.entries = out
}

// Get returns a pointer to the data associated with id.
// The pointer is invalidated by the next Add or Compact
// call.
func (t *EntryTable[T]) Get(id EntryID) (*T, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return &t.entries[i].data, true
}

// Len returns the number of entries not yet compacted away,
// including ones pending removal.
func (t *EntryTable[T]) Len() int { return len(t.entries) }

// All calls fn for every live entry, after compacting pending
// removals. Removals fn makes are compacted once the walk
// ends, so they have taken effect when All returns. fn must
// not call Add.
func (t *EntryTable[T]) All(fn func(id EntryID, data *T)) {
	t.Compact()
	for i := range t.entries {
		fn(t.entries[i].id, &t.entries[i].data)
	}
	t.Compact()
}

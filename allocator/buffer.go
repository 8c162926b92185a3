// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package allocator

import (
	"sync"
	"unsafe"

	"deepsea/config"
	"deepsea/errs"
)

// Buffer is a bump-pointer allocator over a caller-supplied
// slice. Free is a no-op; Reset reclaims the whole buffer in
// O(1).
type Buffer struct {
	counters

	mu       sync.Mutex
	buf      []byte
	off      uintptr
	lastPtr  Ptr
	lastSize uintptr
}

// NewBuffer creates a Buffer allocator over buf.
func NewBuffer(buf []byte) *Buffer { return &Buffer{buf: buf} }

// NewBufferDefault creates a Buffer allocator backed by a
// fresh chunk of config.Current().BufferChunk bytes, taken
// from sys.
func NewBufferDefault(sys *System) (*Buffer, error) {
	const op = "NewBufferDefault"
	size := uintptr(config.Current().BufferChunk)
	p, err := sys.Alloc(size, MaxAlignment)
	if err != nil {
		return nil, errs.Wrap(op, errs.KindOf(err), err)
	}
	return NewBuffer(unsafe.Slice((*byte)(p), int(size))), nil
}

// Alloc implements Allocator. Blocks are aligned by their
// absolute address, so any power-of-two alignment is
// honored, at the cost of skipped padding bytes.
func (b *Buffer) Alloc(size, alignment uintptr) (Ptr, error) {
	const op = "Buffer.Alloc"
	if size == 0 {
		return nil, nil
	}
	if alignment == 0 || !isPow2(alignment) {
		return nil, errs.New(op, errs.InvalidArgument)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	base := uintptr(unsafe.Pointer(unsafe.SliceData(b.buf)))
	start := alignUp(base+b.off, alignment) - base
	if start+size > uintptr(len(b.buf)) {
		return nil, errs.New(op, errs.OutOfMemory)
	}
	p := unsafe.Pointer(&b.buf[start])
	b.off = start + size
	b.lastPtr = p
	b.lastSize = size
	b.recordAlloc(int64(size))
	return p, nil
}

// Free implements Allocator. It is always a no-op, per the
// bump-pointer design: individual blocks are never reclaimed,
// only the whole buffer at once via Reset.
func (b *Buffer) Free(Ptr) error { return nil }

// Realloc implements Allocator. Only the most recent
// allocation can be resized: a bump allocator keeps no
// bookkeeping for earlier blocks, so their original size
// (needed to preserve content) is unknown, and nothing has
// reclaimed the space past them anyway. Resizing the most
// recent allocation grows or shrinks in place when the
// buffer has room and alignment allows it; otherwise the
// bump pointer is rolled back past it and a fresh block is
// taken, with its content copied forward.
func (b *Buffer) Realloc(p Ptr, size, alignment uintptr) (Ptr, error) {
	const op = "Buffer.Realloc"
	if p == nil {
		return b.Alloc(size, alignment)
	}
	if size == 0 {
		return nil, b.Free(p)
	}
	if alignment == 0 || !isPow2(alignment) {
		return nil, errs.New(op, errs.InvalidArgument)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if p != b.lastPtr {
		return nil, errs.New(op, errs.InvalidArgument)
	}
	oldSize := b.lastSize
	base := uintptr(unsafe.Pointer(unsafe.SliceData(b.buf)))
	pOff := uintptr(p) - base

	if uintptr(p)%alignment == 0 && pOff+size <= uintptr(len(b.buf)) {
		b.off = pOff + size
		b.size.Add(int64(size) - int64(oldSize))
		b.lastSize = size
		return p, nil
	}

	b.off = pOff
	start := alignUp(base+b.off, alignment) - base
	if start+size > uintptr(len(b.buf)) {
		b.off = pOff + oldSize
		return nil, errs.New(op, errs.OutOfMemory)
	}
	p2 := unsafe.Pointer(&b.buf[start])
	n := oldSize
	if size < n {
		n = size
	}
	copy(unsafe.Slice((*byte)(p2), n), unsafe.Slice((*byte)(p), n))
	b.off = start + size
	b.size.Add(int64(size) - int64(oldSize))
	b.lastPtr = p2
	b.lastSize = size
	return p2, nil
}

// Stats implements Allocator.
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats()
}

// Reset reclaims the entire buffer in O(1).
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.off = 0
	b.lastPtr = nil
	b.lastSize = 0
	b.size.Store(0)
	b.current.Store(0)
}

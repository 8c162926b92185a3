// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package allocator

import (
	"sync"
	"unsafe"

	"deepsea/config"
	"deepsea/errs"
	"deepsea/internal/bitm"
)

const poolSentinel = -1

// Pool is a fixed-capacity allocator over a caller-supplied
// buffer, handing out chunkSize-sized slots from an
// intrusive free list whose links live in the chunks
// themselves.
//
// Only chunks that have ever been freed carry a written link
// word; an untouched chunk is assumed to link to the next
// chunk in sequence, so constructing a Pool over a fresh
// buffer is O(1) regardless of chunkCount.
type Pool struct {
	counters

	mu         sync.Mutex
	buf        []byte
	chunkSize  uintptr
	chunkCount int
	freeHead   int32
	freeCount  int
	touched    bitm.Bitm[uint8]
}

// NewPool creates a Pool handing out chunks of chunkSize
// bytes from buf, which must be exactly
// chunkSize*chunkCount bytes long. chunkSize must be at
// least 4 (to hold a free-list link word) and a multiple of
// the platform allocation alignment.
func NewPool(buf []byte, chunkSize uintptr, chunkCount int) (*Pool, error) {
	const op = "NewPool"
	if chunkSize < 4 || chunkCount <= 0 || uintptr(len(buf)) != chunkSize*uintptr(chunkCount) {
		return nil, errs.New(op, errs.InvalidArgument)
	}
	return &Pool{
		buf:        buf,
		chunkSize:  chunkSize,
		chunkCount: chunkCount,
		freeHead:   0,
		freeCount:  chunkCount,
	}, nil
}

// NewPoolDefault creates a Pool of chunkSize-byte chunks,
// sized to config.Current().PoolBlock chunks, backing it
// with a block allocated from sys.
func NewPoolDefault(sys *System, chunkSize uintptr) (*Pool, error) {
	const op = "NewPoolDefault"
	count := config.Current().PoolBlock
	buf, err := sys.Alloc(chunkSize*uintptr(count), MaxAlignment)
	if err != nil {
		return nil, errs.Wrap(op, errs.KindOf(err), err)
	}
	return NewPool(unsafe.Slice((*byte)(buf), int(chunkSize)*count), chunkSize, count)
}

func (p *Pool) nextOf(idx int) int32 {
	if p.touched.Len() > idx && p.touched.IsSet(idx) {
		off := uintptr(idx) * p.chunkSize
		return int32(p.buf[off]) | int32(p.buf[off+1])<<8 |
			int32(p.buf[off+2])<<16 | int32(p.buf[off+3])<<24
	}
	if idx+1 == p.chunkCount {
		return poolSentinel
	}
	return int32(idx + 1)
}

func (p *Pool) writeLink(idx int, next int32) {
	off := uintptr(idx) * p.chunkSize
	p.buf[off] = byte(next)
	p.buf[off+1] = byte(next >> 8)
	p.buf[off+2] = byte(next >> 16)
	p.buf[off+3] = byte(next >> 24)
	if p.touched.Len() <= idx {
		// Grow takes a count of backing Uints (8 bits
		// apiece for uint8), not a bit count.
		need := idx - p.touched.Len() + 1
		p.touched.Grow((need + 7) / 8)
	}
	p.touched.Set(idx)
}

// Alloc implements Allocator.
func (p *Pool) Alloc(size, alignment uintptr) (Ptr, error) {
	const op = "Pool.Alloc"
	if size == 0 {
		return nil, nil
	}
	if size > p.chunkSize {
		return nil, errs.New(op, errs.InvalidArgument)
	}
	if err := checkAlignment(op, alignment, MaxAlignment); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.freeHead == poolSentinel {
		return nil, errs.New(op, errs.OutOfMemory)
	}
	idx := int(p.freeHead)
	p.freeHead = p.nextOf(idx)
	p.freeCount--
	p.recordAlloc(int64(p.chunkSize))

	off := uintptr(idx) * p.chunkSize
	return unsafe.Pointer(&p.buf[off]), nil
}

// Free implements Allocator. Freeing nil is a no-op.
func (p *Pool) Free(ptr Ptr) error {
	const op = "Pool.Free"
	if ptr == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	off := uintptr(ptr) - uintptr(unsafe.Pointer(&p.buf[0]))
	if off >= uintptr(len(p.buf)) || off%p.chunkSize != 0 {
		return errs.New(op, errs.InvalidArgument)
	}
	idx := int(off / p.chunkSize)

	p.writeLink(idx, p.freeHead)
	p.freeHead = int32(idx)
	p.freeCount++
	p.recordFree(int64(p.chunkSize))
	return nil
}

// Realloc implements Allocator. Every chunk is already sized
// chunkSize, so resizing in place is always possible as long
// as size still fits; the returned pointer is always ptr
// unchanged.
func (p *Pool) Realloc(ptr Ptr, size, alignment uintptr) (Ptr, error) {
	const op = "Pool.Realloc"
	if ptr == nil {
		return p.Alloc(size, alignment)
	}
	if size == 0 {
		return nil, p.Free(ptr)
	}
	if size > p.chunkSize {
		return nil, errs.New(op, errs.InvalidArgument)
	}
	if err := checkAlignment(op, alignment, MaxAlignment); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	off := uintptr(ptr) - uintptr(unsafe.Pointer(&p.buf[0]))
	if off >= uintptr(len(p.buf)) || off%p.chunkSize != 0 {
		return nil, errs.New(op, errs.InvalidArgument)
	}
	return ptr, nil
}

// Stats implements Allocator.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats()
}

// Reset releases every outstanding allocation in O(1),
// without examining individual chunks.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freeHead = 0
	p.freeCount = p.chunkCount
	p.touched = bitm.Bitm[uint8]{}
	p.size.Store(0)
	p.current.Store(0)
}

// Validate walks the free list and reports whether its
// length and bounds are consistent with freeCount.
func (p *Pool) Validate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for idx := p.freeHead; idx != poolSentinel; {
		if idx < 0 || int(idx) >= p.chunkCount {
			return false
		}
		n++
		if n > p.chunkCount {
			// A cycle: the chain is longer than the pool
			// could possibly allow.
			return false
		}
		idx = p.nextOf(int(idx))
	}
	return n == p.freeCount
}

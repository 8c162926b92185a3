// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package text implements a batched vertex/index buffer for
// rendering a single laid-out text run in one draw call per
// partition, following the split between host-visible
// staging and device buffers that engine/staging.go and
// engine/texture.go establish for the teacher's own upload
// path.
package text

import (
	"deepsea/driver"
	"deepsea/errs"
	"deepsea/resource"
)

// GlyphClass partitions a laid-out text run's glyphs into the
// two independently drawable halves of a RenderBuffer.
type GlyphClass int

// Glyph classes.
const (
	// Standard glyphs come from the font atlas and share one
	// shader/material/texture.
	Standard GlyphClass = iota
	// Icon glyphs are externally provided images that may
	// require a different shader/material/texture.
	Icon
)

// String implements fmt.Stringer.
func (c GlyphClass) String() string {
	if c == Icon {
		return "icon"
	}
	return "standard"
}

// Glyph is the minimal view a RenderBuffer needs of one
// glyph in a laid-out text run. Width and Height are the
// glyph's 2D geometry extents; a glyph with zero area (e.g.
// whitespace) is skipped by Add. Data is opaque per-glyph
// state (atlas rect, color, ...) forwarded to the Writer
// untouched.
type Glyph struct {
	Class         GlyphClass
	Width, Height float32
	Data          any
}

// empty reports whether g covers zero area and should be
// skipped.
func (g Glyph) empty() bool { return g.Width == 0 || g.Height == 0 }

// Layout is a laid-out run of text (or icons), as produced
// by an external text shaper. RenderBuffer only ever reads a
// contiguous [lo, hi) range of it.
type Layout interface {
	// Len returns the number of glyphs in the layout.
	Len() int
	// Glyph returns the i'th glyph, 0 <= i < Len().
	Glyph(i int) Glyph
}

// Writer populates the vertexCount vertices (1 for
// Tessellated, 4 for Indexed geometry) reserved for g at dst,
// using the given vertex format. dst is exactly
// vertexCount * vertex-size-of(format) bytes.
type Writer func(g Glyph, dst []byte, format driver.VertexFmt, vertexCount int)

// GeometryMode selects how each glyph is expanded into
// drawable geometry.
type GeometryMode int

const (
	// Indexed emits 4 vertices + 6 indices per glyph, the
	// index type chosen by vertex count (16-bit if
	// 4*maxGlyphs < 65536, else 32-bit).
	Indexed GeometryMode = iota
	// Tessellated emits 1 vertex per glyph and no indices;
	// the tessellation stage of the pipeline expands each
	// vertex into a quad. Only valid when the backend
	// reports tessellation support.
	Tessellated
)

// quad index pattern, relative to a glyph's first vertex,
// for the canonical winding order of an Indexed partition.
var quadIndices = [6]uint32{0, 1, 2, 2, 1, 3}

type partition struct {
	class     GlyphClass
	max       int
	count     int
	vertSize  int
	vertCount int // vertices per glyph: 1 or 4
	byteOff   int64
	byteSize  int64
	idxOff    int64 // byte offset into the index buffer, Indexed mode only
	idxSize   int64

	dirty    bool
	dirtyLo  int64
	dirtyHi  int64
	idxDirty bool
	idxLo    int64
	idxHi    int64
}

func (p *partition) reset() {
	p.count = 0
	p.dirty = false
	p.dirtyLo, p.dirtyHi = 0, 0
	p.idxDirty = false
	p.idxLo, p.idxHi = 0, 0
}

func (p *partition) markVertex(lo, hi int64) {
	if !p.dirty {
		p.dirty, p.dirtyLo, p.dirtyHi = true, lo, hi
		return
	}
	if lo < p.dirtyLo {
		p.dirtyLo = lo
	}
	if hi > p.dirtyHi {
		p.dirtyHi = hi
	}
}

func (p *partition) markIndex(lo, hi int64) {
	if !p.idxDirty {
		p.idxDirty, p.idxLo, p.idxHi = true, lo, hi
		return
	}
	if lo < p.idxLo {
		p.idxLo = lo
	}
	if hi > p.idxHi {
		p.idxHi = hi
	}
}

// RenderBuffer batches a text layout into a single vertex
// buffer (plus an optional index buffer) for one draw per
// partition.
type RenderBuffer struct {
	mode     GeometryMode
	format   driver.VertexFmt
	vertSize int
	idxFmt   driver.IndexFmt

	std  partition
	icon partition

	staging driver.Buffer // host-visible scratch; Add writes here
	vbuf    driver.Buffer // device vertex buffer; Commit copies into this
	ibuf    driver.Buffer // device index buffer; nil when mode == Tessellated

	mgr *resource.Manager

	// threshold is the fraction of a partition's capacity
	// that, once a single Commit's dirty range reaches it in
	// either partition, makes Commit upload the whole buffer
	// instead of the exact dirty ranges. A tunable promoted
	// from the "three-quarters full" heuristic (spec Design
	// Notes), set by New's threshold argument;
	// config.Current().TextBufferFullThreshold holds the 0.75
	// default, which New does not read itself.
	threshold float64
}

// vertexSize returns the byte size of one vertex in format.
func vertexSize(format driver.VertexFmt) int {
	switch format {
	case driver.Int8, driver.UInt8:
		return 1
	case driver.Int8x2, driver.UInt8x2:
		return 2
	case driver.Int8x3, driver.UInt8x3:
		return 3
	case driver.Int8x4, driver.UInt8x4:
		return 4
	case driver.Int16, driver.UInt16:
		return 2
	case driver.Int16x2, driver.UInt16x2:
		return 4
	case driver.Int16x3, driver.UInt16x3:
		return 6
	case driver.Int16x4, driver.UInt16x4:
		return 8
	case driver.Int32, driver.UInt32, driver.Float32:
		return 4
	case driver.Int32x2, driver.UInt32x2, driver.Float32x2:
		return 8
	case driver.Int32x3, driver.UInt32x3, driver.Float32x3:
		return 12
	case driver.Int32x4, driver.UInt32x4, driver.Float32x4:
		return 16
	default:
		return 0
	}
}

// New creates a RenderBuffer, taking ownership of staging,
// vbuf and ibuf: each is recorded against mgr as a created
// resource.Buffer, and Destroy releases them and records
// their destruction. vbuf (and ibuf, for Indexed mode) must
// be host-visible or backed by a staging path; staging is the
// scratch buffer Add writes into and Commit copies from. vbuf
// must be sized for at least (maxStandardGlyphs+maxIconGlyphs)
// glyphs at vertSize(format) bytes per vertex (times 1 or 4
// vertices per glyph depending on mode); ibuf, when non-nil,
// must be sized for (maxStandardGlyphs+maxIconGlyphs)*6
// indices.
func New(mode GeometryMode, format driver.VertexFmt, maxStandardGlyphs, maxIconGlyphs int, staging, vbuf, ibuf driver.Buffer, threshold float64, mgr *resource.Manager) (*RenderBuffer, error) {
	const op = "text.New"
	if maxStandardGlyphs < 0 || maxIconGlyphs < 0 {
		return nil, errs.New(op, errs.InvalidArgument)
	}
	vs := vertexSize(format)
	if vs == 0 {
		return nil, errs.New(op, errs.InvalidArgument)
	}
	vertsPerGlyph := 4
	if mode == Tessellated {
		vertsPerGlyph = 1
	}
	total := maxStandardGlyphs + maxIconGlyphs
	if int64(vbuf.Cap()) < int64(total*vertsPerGlyph*vs) {
		return nil, errs.New(op, errs.Size)
	}
	idxFmt := driver.Index16
	if 4*total >= 65536 {
		idxFmt = driver.Index32
	}
	if mode == Indexed {
		if ibuf == nil {
			return nil, errs.New(op, errs.InvalidArgument)
		}
		if int64(ibuf.Cap()) < int64(total*6)*int64(idxFmt) {
			return nil, errs.New(op, errs.Size)
		}
	} else if ibuf != nil {
		return nil, errs.New(op, errs.InvalidArgument)
	}

	rb := &RenderBuffer{
		mode:      mode,
		format:    format,
		vertSize:  vs,
		idxFmt:    idxFmt,
		staging:   staging,
		vbuf:      vbuf,
		ibuf:      ibuf,
		threshold: threshold,
		mgr:       mgr,
	}
	rb.std = partition{class: Standard, max: maxStandardGlyphs, vertSize: vs, vertCount: vertsPerGlyph, byteOff: 0, byteSize: int64(maxStandardGlyphs * vertsPerGlyph * vs)}
	rb.icon = partition{class: Icon, max: maxIconGlyphs, vertSize: vs, vertCount: vertsPerGlyph, byteOff: rb.std.byteSize, byteSize: int64(maxIconGlyphs * vertsPerGlyph * vs)}
	vertTotal := rb.std.byteSize + rb.icon.byteSize
	if mode == Indexed {
		// The index region of the staging buffer follows the
		// vertex region, so the two never alias the same bytes.
		rb.std.idxOff = vertTotal
		rb.std.idxSize = int64(maxStandardGlyphs*6) * int64(idxFmt)
		rb.icon.idxOff = rb.std.idxOff + rb.std.idxSize
		rb.icon.idxSize = int64(maxIconGlyphs*6) * int64(idxFmt)
	}
	stagingNeed := vertTotal
	if mode == Indexed {
		stagingNeed += rb.std.idxSize + rb.icon.idxSize
	}
	if staging.Cap() < stagingNeed {
		return nil, errs.New(op, errs.Size)
	}

	if mgr != nil {
		mgr.Created(resource.Buffer)
		mgr.Created(resource.Buffer)
		if ibuf != nil {
			mgr.Created(resource.Buffer)
		}
	}
	return rb, nil
}

// Destroy releases the vertex, index (if present) and staging
// buffers owned by rb and records their destruction against
// the Manager given to New.
func (rb *RenderBuffer) Destroy() {
	rb.staging.Destroy()
	rb.vbuf.Destroy()
	if rb.ibuf != nil {
		rb.ibuf.Destroy()
	}
	if rb.mgr != nil {
		rb.mgr.Destroyed(resource.Buffer)
		rb.mgr.Destroyed(resource.Buffer)
		if rb.ibuf != nil {
			rb.mgr.Destroyed(resource.Buffer)
		}
	}
}

func (rb *RenderBuffer) partitionFor(c GlyphClass) *partition {
	if c == Icon {
		return &rb.icon
	}
	return &rb.std
}

// StandardCount returns the number of standard glyphs
// currently queued.
func (rb *RenderBuffer) StandardCount() int { return rb.std.count }

// IconCount returns the number of icon glyphs currently
// queued.
func (rb *RenderBuffer) IconCount() int { return rb.icon.count }

// Add iterates layout's [lo, hi) glyph range, skipping
// zero-area (whitespace) glyphs, and for every remaining
// glyph invokes writer to populate its vertices. It fails
// with errs.OutOfRange, without mutating any state, if doing
// so would exceed either partition's capacity.
func (rb *RenderBuffer) Add(layout Layout, lo, hi int, writer Writer) error {
	const op = "text.RenderBuffer.Add"
	if lo < 0 || hi > layout.Len() || lo > hi {
		return errs.New(op, errs.InvalidArgument)
	}

	var nstd, nicon int
	for i := lo; i < hi; i++ {
		g := layout.Glyph(i)
		if g.empty() {
			continue
		}
		if g.Class == Icon {
			nicon++
		} else {
			nstd++
		}
	}
	if rb.std.count+nstd > rb.std.max || rb.icon.count+nicon > rb.icon.max {
		return errs.New(op, errs.OutOfRange)
	}

	sbytes := rb.staging.Bytes()

	for i := lo; i < hi; i++ {
		g := layout.Glyph(i)
		if g.empty() {
			continue
		}
		p := rb.partitionFor(g.Class)
		voff := p.byteOff + int64(p.count*p.vertCount*p.vertSize)
		vsz := int64(p.vertCount * p.vertSize)
		dst := sbytes[voff : voff+vsz]
		writer(g, dst, rb.format, p.vertCount)
		p.markVertex(voff, voff+vsz)

		if rb.mode == Indexed {
			base := uint32(p.count * p.vertCount)
			ioff := p.idxOff + int64(p.count*6)*int64(rb.idxFmt)
			isz := int64(6) * int64(rb.idxFmt)
			writeIndices(sbytes[ioff:ioff+isz], rb.idxFmt, base)
			p.markIndex(ioff, ioff+isz)
		}
		p.count++
	}
	return nil
}

func writeIndices(dst []byte, fmtSize driver.IndexFmt, base uint32) {
	for i, q := range quadIndices {
		v := base + q
		switch fmtSize {
		case driver.Index16:
			dst[i*2] = byte(v)
			dst[i*2+1] = byte(v >> 8)
		case driver.Index32:
			dst[i*4] = byte(v)
			dst[i*4+1] = byte(v >> 8)
			dst[i*4+2] = byte(v >> 16)
			dst[i*4+3] = byte(v >> 24)
		}
	}
}

// Commit uploads the staging buffer's dirty bytes onto the
// device vertex/index buffers. If either partition's dirty
// range covers threshold or more of its capacity, the
// whole buffer is uploaded instead, amortizing more copies
// against fewer calls.
func (rb *RenderBuffer) Commit(copyFn func(dst, src driver.Buffer, dstOff, srcOff, size int64)) {
	full := rb.fullFor(&rb.std) || rb.fullFor(&rb.icon)
	if full {
		copyFn(rb.vbuf, rb.staging, 0, 0, rb.vbuf.Cap())
		if rb.ibuf != nil {
			copyFn(rb.ibuf, rb.staging, 0, rb.std.idxOff, rb.ibuf.Cap())
		}
	} else {
		rb.commitRange(&rb.std, copyFn)
		rb.commitRange(&rb.icon, copyFn)
	}
	rb.std.dirty, rb.std.idxDirty = false, false
	rb.icon.dirty, rb.icon.idxDirty = false, false
}

func (rb *RenderBuffer) fullFor(p *partition) bool {
	if !p.dirty || p.byteSize == 0 {
		return false
	}
	used := float64(p.dirtyHi-p.dirtyLo) / float64(p.byteSize)
	return used >= rb.threshold
}

func (rb *RenderBuffer) commitRange(p *partition, copyFn func(dst, src driver.Buffer, dstOff, srcOff, size int64)) {
	if p.dirty {
		copyFn(rb.vbuf, rb.staging, p.dirtyLo, p.dirtyLo, p.dirtyHi-p.dirtyLo)
	}
	if p.idxDirty && rb.ibuf != nil {
		dstOff := p.idxLo - rb.std.idxOff
		copyFn(rb.ibuf, rb.staging, dstOff, p.idxLo, p.idxHi-p.idxLo)
	}
}

// DrawFunc issues one draw call for a partition: draw covers
// [firstVertex, firstVertex+vertCount) for Tessellated mode,
// or the equivalent indexed range for Indexed mode.
type DrawFunc func(class GlyphClass, firstVertex, vertCount int, indexed bool, firstIndex, idxCount int)

// Draw issues one draw (or indexed draw) per non-empty
// partition via draw.
func (rb *RenderBuffer) Draw(draw DrawFunc) {
	rb.drawPartition(&rb.std, draw)
	rb.drawPartition(&rb.icon, draw)
}

func (rb *RenderBuffer) drawPartition(p *partition, draw DrawFunc) {
	if p.count == 0 {
		return
	}
	firstVertex := int(p.byteOff) / rb.vertSize
	if rb.mode == Tessellated {
		draw(p.class, firstVertex, p.count, false, 0, 0)
		return
	}
	firstIndex := int((p.idxOff - rb.std.idxOff) / int64(rb.idxFmt))
	draw(p.class, firstVertex, p.count*4, true, firstIndex, p.count*6)
}

// Clear resets both glyph counters without touching GPU
// state; a subsequent Add starts writing from each
// partition's beginning again.
func (rb *RenderBuffer) Clear() {
	rb.std.reset()
	rb.icon.reset()
}

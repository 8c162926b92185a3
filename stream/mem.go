// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package stream

import (
	"io"

	"deepsea/errs"
)

// MemStream is a Stream backed by an in-memory byte slice.
// It is the concrete Stream used for archives mapped fully
// into memory (e.g., embedded resources).
type MemStream struct {
	buf    []byte
	off    int64
	closed bool
}

// NewMemStream creates a MemStream that reads from and
// appends to buf. buf is not copied.
func NewMemStream(buf []byte) *MemStream { return &MemStream{buf: buf} }

// Bytes returns the stream's current backing slice.
func (s *MemStream) Bytes() []byte { return s.buf }

func (s *MemStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, errs.New("MemStream.Read", errs.InvalidArgument)
	}
	if s.off >= int64(len(s.buf)) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.off:])
	s.off += int64(n)
	return n, nil
}

func (s *MemStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, errs.New("MemStream.Write", errs.InvalidArgument)
	}
	end := s.off + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	n := copy(s.buf[s.off:end], p)
	s.off = end
	return n, nil
}

func (s *MemStream) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = s.off
	case io.SeekEnd:
		base = int64(len(s.buf))
	default:
		return 0, errs.New("MemStream.Seek", errs.InvalidArgument)
	}
	pos := base + offset
	if pos < 0 {
		return 0, errs.New("MemStream.Seek", errs.OutOfRange)
	}
	s.off = pos
	return pos, nil
}

func (s *MemStream) Tell() (int64, error) { return s.off, nil }

func (s *MemStream) Remaining() (int64, error) {
	n := int64(len(s.buf)) - s.off
	if n < 0 {
		n = 0
	}
	return n, nil
}

// Flush is a no-op: a MemStream has no backing storage to
// synchronize with.
func (s *MemStream) Flush() error { return nil }

func (s *MemStream) Close() error {
	s.closed = true
	return nil
}

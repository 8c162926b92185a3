// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package stream defines the byte-oriented I/O abstraction
// used to read and write archived resources, and the endian
// helpers needed to decode the runtime's binary formats, the
// way gltf/glb.go leans on encoding/binary for chunked
// binary parsing.
package stream

import (
	"encoding/binary"
	"io"
	"math"
	"math/bits"

	"deepsea/errs"
)

// Stream is a seekable byte stream.
// A nil method set is never required: implementations that
// cannot seek, flush or be written to simply return an
// *errs.E of Kind errs.InvalidArgument.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer

	// Seek repositions the stream. whence is one of
	// io.SeekStart, io.SeekCurrent or io.SeekEnd.
	Seek(offset int64, whence int) (int64, error)

	// Tell returns the current offset.
	Tell() (int64, error)

	// Remaining returns the number of bytes between the
	// current offset and the end of the stream.
	Remaining() (int64, error)

	// Flush writes any buffered data to the underlying
	// storage.
	Flush() error
}

// ReadUntilEnd reads from r until io.EOF, returning
// everything it read.
func ReadUntilEnd(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap("stream.ReadUntilEnd", errs.IO, err)
	}
	return b, nil
}

// Endian helpers.
//
// These wrap encoding/binary for the fixed-width integer and
// float encodings used by archive headers and mesh/text
// buffers; callers pick LE or BE explicitly rather than
// relying on host byte order.

// PutU16 writes v to b (len(b) >= 2) using order.
func PutU16(b []byte, v uint16, order binary.ByteOrder) { order.PutUint16(b, v) }

// U16 reads a uint16 from b (len(b) >= 2) using order.
func U16(b []byte, order binary.ByteOrder) uint16 { return order.Uint16(b) }

// PutU32 writes v to b (len(b) >= 4) using order.
func PutU32(b []byte, v uint32, order binary.ByteOrder) { order.PutUint32(b, v) }

// U32 reads a uint32 from b (len(b) >= 4) using order.
func U32(b []byte, order binary.ByteOrder) uint32 { return order.Uint32(b) }

// PutU64 writes v to b (len(b) >= 8) using order.
func PutU64(b []byte, v uint64, order binary.ByteOrder) { order.PutUint64(b, v) }

// U64 reads a uint64 from b (len(b) >= 8) using order.
func U64(b []byte, order binary.ByteOrder) uint64 { return order.Uint64(b) }

// PutF32 writes v to b (len(b) >= 4) using order.
func PutF32(b []byte, v float32, order binary.ByteOrder) {
	order.PutUint32(b, math.Float32bits(v))
}

// F32 reads a float32 from b (len(b) >= 4) using order.
func F32(b []byte, order binary.ByteOrder) float32 {
	return math.Float32frombits(order.Uint32(b))
}

// PutF64 writes v to b (len(b) >= 8) using order.
func PutF64(b []byte, v float64, order binary.ByteOrder) {
	order.PutUint64(b, math.Float64bits(v))
}

// F64 reads a float64 from b (len(b) >= 8) using order.
func F64(b []byte, order binary.ByteOrder) float64 {
	return math.Float64frombits(order.Uint64(b))
}

// Swap16 reverses the byte order of v. Swap16(Swap16(v)) == v
// for every v.
func Swap16(v uint16) uint16 { return bits.ReverseBytes16(v) }

// Swap32 reverses the byte order of v. Swap32(Swap32(v)) == v
// for every v.
func Swap32(v uint32) uint32 { return bits.ReverseBytes32(v) }

// Swap64 reverses the byte order of v. Swap64(Swap64(v)) == v
// for every v.
func Swap64(v uint64) uint64 { return bits.ReverseBytes64(v) }

// SwapIfBE16 swaps v's byte order only if the host is
// big-endian, i.e. it returns v in little-endian form
// regardless of host order.
func SwapIfBE16(v uint16) uint16 {
	if hostBigEndian {
		return Swap16(v)
	}
	return v
}

// SwapIfBE32 is SwapIfBE16 for a uint32.
func SwapIfBE32(v uint32) uint32 {
	if hostBigEndian {
		return Swap32(v)
	}
	return v
}

// SwapIfBE64 is SwapIfBE16 for a uint64.
func SwapIfBE64(v uint64) uint64 {
	if hostBigEndian {
		return Swap64(v)
	}
	return v
}

// SwapIfLE16 swaps v's byte order only if the host is
// little-endian, i.e. it returns v in big-endian form
// regardless of host order.
func SwapIfLE16(v uint16) uint16 {
	if !hostBigEndian {
		return Swap16(v)
	}
	return v
}

// SwapIfLE32 is SwapIfLE16 for a uint32.
func SwapIfLE32(v uint32) uint32 {
	if !hostBigEndian {
		return Swap32(v)
	}
	return v
}

// SwapIfLE64 is SwapIfLE16 for a uint64.
func SwapIfLE64(v uint64) uint64 {
	if !hostBigEndian {
		return Swap64(v)
	}
	return v
}

// hostBigEndian reports the host's native byte order via
// encoding/binary.NativeEndian, rather than assuming a target
// architecture.
var hostBigEndian = binary.NativeEndian.String() == "BigEndian"

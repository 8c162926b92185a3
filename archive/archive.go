// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package archive resolves resource paths against one or
// more backing stores and opens them as streams, the way
// gltf's GLB reader treats its input as an opaque io.Reader
// regardless of where the bytes come from.
package archive

import (
	"deepsea/errs"
	"deepsea/stream"
)

// Root identifies where a ResourcePath is rooted.
type Root int

// Roots.
const (
	// Embedded resources are compiled into the binary
	// (e.g., via go:embed) and are always read-only.
	Embedded Root = iota

	// Local resources live on the host filesystem.
	Local

	// Dynamic resources are produced or mutated at run
	// time (e.g., procedurally generated textures) and
	// are kept in memory.
	Dynamic
)

// String implements fmt.Stringer.
func (r Root) String() string {
	switch r {
	case Embedded:
		return "embedded"
	case Local:
		return "local"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// ResourcePath names a resource relative to one of the
// archive roots.
type ResourcePath struct {
	Root Root
	Path string
}

// PathStatus describes the outcome of resolving a
// ResourcePath against an archive.
type PathStatus int

// Path statuses.
const (
	// StatusOK means the path resolved to a readable file.
	StatusOK PathStatus = iota

	// StatusNotFound means no archive entry exists at that
	// path (spec's Missing).
	StatusNotFound

	// StatusDirectory means the path resolved to a
	// directory rather than a file (spec's ExistsDirectory).
	StatusDirectory

	// StatusDenied means the resource exists but could not
	// be statted (spec's Error).
	StatusDenied
)

// DirEntry is one entry returned while iterating a Dir.
type DirEntry struct {
	Name  string
	IsDir bool
}

// Dir iterates the entries of a directory opened with
// FileArchive.OpenDir. "." and ".." are never yielded.
type Dir interface {
	// Next advances to the next entry, returning false once
	// the directory is exhausted or on error.
	Next() (DirEntry, bool, error)

	// Close releases resources held by the iterator.
	Close() error
}

// FileArchive resolves and opens resources.
type FileArchive interface {
	// Stat reports whether path exists in the archive and
	// can be opened.
	Stat(path ResourcePath) PathStatus

	// Open opens path for reading and writing.
	// write must be false for archives that only support
	// read access (Embedded archives always reject it with
	// errs.PermissionDenied).
	Open(path ResourcePath, write bool) (stream.Stream, error)

	// OpenDir opens path as a directory for iteration.
	// It fails with errs.NotFound if path does not exist in
	// this archive. A path that names a file also fails:
	// with errs.NotFound in EmbeddedArchive and
	// DynamicArchive, and with errs.IO in LocalArchive.
	OpenDir(path ResourcePath) (Dir, error)
}

// sliceDir implements Dir over a pre-listed slice of
// entries, the common shape shared by Local and Embedded:
// both list their directory eagerly at OpenDir time rather
// than holding an OS-level cursor open across calls.
type sliceDir struct {
	entries []DirEntry
	pos     int
}

func (d *sliceDir) Next() (DirEntry, bool, error) {
	if d.pos >= len(d.entries) {
		return DirEntry{}, false, nil
	}
	e := d.entries[d.pos]
	d.pos++
	return e, true, nil
}

func (d *sliceDir) Close() error { return nil }

// errWrongRoot returns the error an archive's Open and
// OpenDir methods report when asked to resolve a
// ResourcePath rooted elsewhere.
func errWrongRoot(op string, path ResourcePath) error {
	return errs.New(op, errs.InvalidArgument)
}

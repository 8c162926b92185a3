// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package archive

import (
	"io/fs"

	"deepsea/errs"
	"deepsea/stream"
)

// EmbeddedArchive resolves ResourcePaths rooted at Embedded
// against an fs.FS, typically produced by a go:embed
// directive in client code.
type EmbeddedArchive struct {
	fsys fs.FS
}

// NewEmbeddedArchive creates an EmbeddedArchive backed by
// fsys.
func NewEmbeddedArchive(fsys fs.FS) *EmbeddedArchive { return &EmbeddedArchive{fsys: fsys} }

// Stat implements FileArchive.
func (a *EmbeddedArchive) Stat(path ResourcePath) PathStatus {
	if path.Root != Embedded {
		return StatusNotFound
	}
	info, err := fs.Stat(a.fsys, path.Path)
	switch {
	case err != nil:
		return StatusNotFound
	case info.IsDir():
		return StatusDirectory
	default:
		return StatusOK
	}
}

// OpenDir implements FileArchive.
func (a *EmbeddedArchive) OpenDir(path ResourcePath) (Dir, error) {
	const op = "EmbeddedArchive.OpenDir"
	if path.Root != Embedded {
		return nil, errWrongRoot(op, path)
	}
	ents, err := fs.ReadDir(a.fsys, path.Path)
	if err != nil {
		return nil, errs.Wrap(op, errs.NotFound, err)
	}
	d := &sliceDir{entries: make([]DirEntry, len(ents))}
	for i, e := range ents {
		d.entries[i] = DirEntry{Name: e.Name(), IsDir: e.IsDir()}
	}
	return d, nil
}

// Open implements FileArchive. Embedded archives are
// read-only: write requests always fail with
// errs.PermissionDenied.
func (a *EmbeddedArchive) Open(path ResourcePath, write bool) (stream.Stream, error) {
	if path.Root != Embedded {
		return nil, errWrongRoot("EmbeddedArchive", path)
	}
	if write {
		return nil, errs.New("EmbeddedArchive.Open", errs.PermissionDenied)
	}
	b, err := fs.ReadFile(a.fsys, path.Path)
	if err != nil {
		return nil, errs.Wrap("EmbeddedArchive.Open", errs.NotFound, err)
	}
	return stream.NewMemStream(b), nil
}

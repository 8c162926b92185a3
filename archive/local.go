// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package archive

import (
	"io"
	"os"
	"path/filepath"

	"deepsea/errs"
	"deepsea/stream"
)

// LocalArchive resolves ResourcePaths rooted at Local
// against a directory on the host filesystem.
type LocalArchive struct {
	dir string
}

// NewLocalArchive creates a LocalArchive rooted at dir.
func NewLocalArchive(dir string) *LocalArchive { return &LocalArchive{dir: dir} }

func (a *LocalArchive) resolve(path ResourcePath) (string, error) {
	if path.Root != Local {
		return "", errWrongRoot("LocalArchive", path)
	}
	return filepath.Join(a.dir, filepath.FromSlash(path.Path)), nil
}

// Stat implements FileArchive.
func (a *LocalArchive) Stat(path ResourcePath) PathStatus {
	full, err := a.resolve(path)
	if err != nil {
		return StatusNotFound
	}
	info, err := os.Stat(full)
	switch {
	case os.IsNotExist(err):
		return StatusNotFound
	case err != nil:
		return StatusDenied
	case info.IsDir():
		return StatusDirectory
	default:
		return StatusOK
	}
}

// OpenDir implements FileArchive. Entries are listed
// eagerly; "." and ".." never appear because os.ReadDir
// does not report them.
func (a *LocalArchive) OpenDir(path ResourcePath) (Dir, error) {
	const op = "LocalArchive.OpenDir"
	full, err := a.resolve(path)
	if err != nil {
		return nil, err
	}
	ents, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(op, errs.NotFound, err)
		}
		return nil, errs.Wrap(op, errs.IO, err)
	}
	d := &sliceDir{entries: make([]DirEntry, len(ents))}
	for i, e := range ents {
		d.entries[i] = DirEntry{Name: e.Name(), IsDir: e.IsDir()}
	}
	return d, nil
}

// Open implements FileArchive.
func (a *LocalArchive) Open(path ResourcePath, write bool) (stream.Stream, error) {
	full, err := a.resolve(path)
	if err != nil {
		return nil, err
	}
	flag := os.O_RDONLY
	if write {
		flag = os.O_RDWR | os.O_CREATE
	}
	f, err := os.OpenFile(full, flag, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap("LocalArchive.Open", errs.NotFound, err)
		}
		if os.IsPermission(err) {
			return nil, errs.Wrap("LocalArchive.Open", errs.PermissionDenied, err)
		}
		return nil, errs.Wrap("LocalArchive.Open", errs.IO, err)
	}
	return &fileStream{f: f}, nil
}

// fileStream adapts *os.File to the stream.Stream interface.
type fileStream struct{ f *os.File }

func (s *fileStream) Read(p []byte) (int, error)  { return s.f.Read(p) }
func (s *fileStream) Write(p []byte) (int, error) { return s.f.Write(p) }
func (s *fileStream) Close() error                { return s.f.Close() }

func (s *fileStream) Seek(offset int64, whence int) (int64, error) {
	return s.f.Seek(offset, whence)
}

func (s *fileStream) Tell() (int64, error) { return s.f.Seek(0, io.SeekCurrent) }

func (s *fileStream) Remaining() (int64, error) {
	cur, err := s.Tell()
	if err != nil {
		return 0, err
	}
	info, err := s.f.Stat()
	if err != nil {
		return 0, errs.Wrap("fileStream.Remaining", errs.IO, err)
	}
	return info.Size() - cur, nil
}

func (s *fileStream) Flush() error { return s.f.Sync() }

// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package archive

import (
	"sync"

	"deepsea/errs"
	"deepsea/stream"
)

// DynamicArchive holds resources produced or mutated at run
// time. Unlike Local and Embedded, a Dynamic resource need
// not exist until the first Open(path, true) call creates
// it.
type DynamicArchive struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewDynamicArchive creates an empty DynamicArchive.
func NewDynamicArchive() *DynamicArchive {
	return &DynamicArchive{data: make(map[string][]byte)}
}

// Stat implements FileArchive.
func (a *DynamicArchive) Stat(path ResourcePath) PathStatus {
	if path.Root != Dynamic {
		return StatusNotFound
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if _, ok := a.data[path.Path]; !ok {
		return StatusNotFound
	}
	return StatusOK
}

// Open implements FileArchive. Opening a path that does not
// yet exist with write == true creates it.
func (a *DynamicArchive) Open(path ResourcePath, write bool) (stream.Stream, error) {
	if path.Root != Dynamic {
		return nil, errWrongRoot("DynamicArchive", path)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.data[path.Path]
	if !ok {
		if !write {
			return nil, errs.New("DynamicArchive.Open", errs.NotFound)
		}
		b = nil
	}
	s := stream.NewMemStream(b)
	if write {
		return &trackedStream{MemStream: s, archive: a, key: path.Path}, nil
	}
	return s, nil
}

// OpenDir implements FileArchive. DynamicArchive is a flat
// key/value namespace with no subdirectories, so only the
// root path ("") can be opened as a directory; its entries
// are the archive's current keys.
func (a *DynamicArchive) OpenDir(path ResourcePath) (Dir, error) {
	const op = "DynamicArchive.OpenDir"
	if path.Root != Dynamic {
		return nil, errWrongRoot(op, path)
	}
	if path.Path != "" {
		return nil, errs.New(op, errs.NotFound)
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	d := &sliceDir{entries: make([]DirEntry, 0, len(a.data))}
	for k := range a.data {
		d.entries = append(d.entries, DirEntry{Name: k})
	}
	return d, nil
}

// trackedStream writes back into its owning DynamicArchive
// on Close, so mutations survive past the Stream's lifetime.
type trackedStream struct {
	*stream.MemStream
	archive *DynamicArchive
	key     string
}

func (s *trackedStream) Close() error {
	s.archive.mu.Lock()
	s.archive.data[s.key] = s.Bytes()
	s.archive.mu.Unlock()
	return s.MemStream.Close()
}

// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package archive

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestLocalArchive(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), []byte("payload"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	a := NewLocalArchive(dir)

	p := ResourcePath{Root: Local, Path: "a.bin"}
	if st := a.Stat(p); st != StatusOK {
		t.Fatalf("Stat\nhave %v\nwant %v", st, StatusOK)
	}
	if st := a.Stat(ResourcePath{Root: Local, Path: "missing.bin"}); st != StatusNotFound {
		t.Fatalf("Stat(missing)\nhave %v\nwant %v", st, StatusNotFound)
	}

	s, err := a.Open(p, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	b, err := io.ReadAll(s)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(b) != "payload" {
		t.Fatalf("Open/Read\nhave %q\nwant %q", b, "payload")
	}
}

func TestLocalArchiveOpenDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	a := NewLocalArchive(dir)

	if st := a.Stat(ResourcePath{Root: Local, Path: "sub"}); st != StatusDirectory {
		t.Fatalf("Stat(dir)\nhave %v\nwant %v", st, StatusDirectory)
	}

	d, err := a.OpenDir(ResourcePath{Root: Local, Path: ""})
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	defer d.Close()

	got := map[string]bool{}
	for {
		e, ok, err := d.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		if e.Name == "." || e.Name == ".." {
			t.Fatalf("Next: yielded %q", e.Name)
		}
		got[e.Name] = e.IsDir
	}
	if isDir, ok := got["a.bin"]; !ok || isDir {
		t.Fatalf("a.bin entry\nhave ok=%v isDir=%v\nwant ok=true isDir=false", ok, isDir)
	}
	if isDir, ok := got["sub"]; !ok || !isDir {
		t.Fatalf("sub entry\nhave ok=%v isDir=%v\nwant ok=true isDir=true", ok, isDir)
	}
}

func TestLocalArchiveWrongRoot(t *testing.T) {
	a := NewLocalArchive(t.TempDir())
	_, err := a.Open(ResourcePath{Root: Embedded, Path: "x"}, false)
	if err == nil {
		t.Fatal("Open: expected error for wrong root")
	}
}

func TestEmbeddedArchive(t *testing.T) {
	fsys := fstest.MapFS{
		"icons/gear.png": &fstest.MapFile{Data: []byte("png-bytes")},
	}
	a := NewEmbeddedArchive(fsys)
	p := ResourcePath{Root: Embedded, Path: "icons/gear.png"}
	if st := a.Stat(p); st != StatusOK {
		t.Fatalf("Stat\nhave %v\nwant %v", st, StatusOK)
	}
	s, err := a.Open(p, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := a.Open(p, true); err == nil {
		t.Fatal("Open(write=true): expected PermissionDenied, got nil error")
	}
	b, _ := io.ReadAll(s)
	if string(b) != "png-bytes" {
		t.Fatalf("Open/Read\nhave %q\nwant %q", b, "png-bytes")
	}
}

func TestEmbeddedArchiveOpenDir(t *testing.T) {
	fsys := fstest.MapFS{
		"icons/gear.png":  &fstest.MapFile{Data: []byte("png-bytes")},
		"icons/bolt.png":  &fstest.MapFile{Data: []byte("png-bytes")},
		"icons/sub/a.txt": &fstest.MapFile{Data: []byte("x")},
	}
	a := NewEmbeddedArchive(fsys)
	d, err := a.OpenDir(ResourcePath{Root: Embedded, Path: "icons"})
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	defer d.Close()
	n := 0
	for {
		_, ok, err := d.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		n++
	}
	if n != 3 {
		t.Fatalf("entry count\nhave %d\nwant 3", n)
	}
}

func TestDynamicArchiveOpenDir(t *testing.T) {
	a := NewDynamicArchive()
	s, err := a.Open(ResourcePath{Root: Dynamic, Path: "k1"}, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Close()

	d, err := a.OpenDir(ResourcePath{Root: Dynamic, Path: ""})
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	defer d.Close()
	e, ok, err := d.Next()
	if err != nil || !ok {
		t.Fatalf("Next\nhave (%v, %v, %v)\nwant (entry, true, nil)", e, ok, err)
	}
	if e.Name != "k1" {
		t.Fatalf("entry name\nhave %q\nwant %q", e.Name, "k1")
	}
	if _, _, err := d.Next(); err != nil {
		t.Fatalf("Next(exhausted): %v", err)
	}
}

func TestDynamicArchive(t *testing.T) {
	a := NewDynamicArchive()
	p := ResourcePath{Root: Dynamic, Path: "scratch"}

	if st := a.Stat(p); st != StatusNotFound {
		t.Fatalf("Stat(new)\nhave %v\nwant %v", st, StatusNotFound)
	}
	if _, err := a.Open(p, false); err == nil {
		t.Fatal("Open(read, nonexistent): expected error")
	}

	s, err := a.Open(p, true)
	if err != nil {
		t.Fatalf("Open(write): %v", err)
	}
	if _, err := s.Write([]byte("state")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if st := a.Stat(p); st != StatusOK {
		t.Fatalf("Stat(after write)\nhave %v\nwant %v", st, StatusOK)
	}
	s2, err := a.Open(p, false)
	if err != nil {
		t.Fatalf("Open(read): %v", err)
	}
	b, _ := io.ReadAll(s2)
	if string(b) != "state" {
		t.Fatalf("reopen\nhave %q\nwant %q", b, "state")
	}
}

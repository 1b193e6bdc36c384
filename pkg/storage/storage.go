// Package storage abstracts the block storage and clock collaborators of the
// player so the parsing core can run against real files, embedded assets or
// in-memory fixtures alike.
package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// File is a bounded, seekable handle to one stored object. Reads are
// synchronous and fail-fast; no retry policy is applied at this layer.
type File interface {
	io.Reader
	io.Seeker
	io.Closer

	// Size reports the total length of the object in bytes.
	Size() (int64, error)
}

// Storage opens objects by name.
type Storage interface {
	Open(name string) (File, error)
}

// Dir is a Storage rooted at a directory of the local filesystem.
type Dir struct {
	root string
}

func NewDir(root string) *Dir {
	return &Dir{root: root}
}

func (d *Dir) Open(name string) (File, error) {
	f, err := os.Open(filepath.Join(d.root, name))
	if err != nil {
		return nil, err
	}
	return &osFile{f: f}, nil
}

type osFile struct {
	f *os.File
}

func (o *osFile) Read(p []byte) (int, error)                { return o.f.Read(p) }
func (o *osFile) Seek(off int64, whence int) (int64, error) { return o.f.Seek(off, whence) }
func (o *osFile) Close() error                              { return o.f.Close() }

func (o *osFile) Size() (int64, error) {
	info, err := o.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Mem is a Storage backed by an in-memory map. It backs the test suites and
// doubles as a carrier for assets embedded in firmware images.
type Mem struct {
	files map[string][]byte
}

func NewMem() *Mem {
	return &Mem{files: make(map[string][]byte)}
}

// Put stores a copy of data under name, replacing any previous content.
func (m *Mem) Put(name string, data []byte) {
	m.files[name] = append([]byte(nil), data...)
}

func (m *Mem) Open(name string) (File, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("storage: open %s: %w", name, os.ErrNotExist)
	}
	return &memFile{r: bytes.NewReader(data)}, nil
}

// Names lists the stored object names in sorted order.
func (m *Mem) Names() []string {
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type memFile struct {
	r      *bytes.Reader
	closed bool
}

func (m *memFile) Read(p []byte) (int, error) {
	if m.closed {
		return 0, os.ErrClosed
	}
	return m.r.Read(p)
}

func (m *memFile) Seek(off int64, whence int) (int64, error) {
	if m.closed {
		return 0, os.ErrClosed
	}
	return m.r.Seek(off, whence)
}

func (m *memFile) Size() (int64, error) {
	if m.closed {
		return 0, os.ErrClosed
	}
	return m.r.Size(), nil
}

func (m *memFile) Close() error {
	m.closed = true
	return nil
}

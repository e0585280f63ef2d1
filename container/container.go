package container

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Container owns a set of named members, each independently openable as a
// stream. Implementations: filesystem
// directory, zip archive, and a single-file pass-through for formats that
// are never multi-file.
type Container interface {
	// Members lists the member names this container holds, in a stable
	// order.
	Members() []string
	// Open returns a readable Stream for the named member.
	Open(name string) (*Stream, error)
	// Close releases any resources the container itself holds open
	// (e.g. the zip.ReadCloser); it does not close streams already
	// handed out by Open.
	Close() error
}

// dirContainer is a Container backed by a filesystem directory.
type dirContainer struct {
	root string
}

// OpenDir returns a Container over the files directly inside dir.
func OpenDir(dir string) (Container, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	_ = entries // validated eagerly so a bad path fails at open time
	return &dirContainer{root: dir}, nil
}

func (c *dirContainer) Members() []string {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func (c *dirContainer) Open(name string) (*Stream, error) {
	return OpenFile(filepath.Join(c.root, name))
}

func (c *dirContainer) Close() error { return nil }

// zipContainer is a Container backed by a zip archive.
type zipContainer struct {
	rc *zip.ReadCloser
}

// OpenZip returns a Container over the members of a zip archive.
func OpenZip(path string) (Container, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &zipContainer{rc: rc}, nil
}

func (c *zipContainer) Members() []string {
	names := make([]string, 0, len(c.rc.File))
	for _, f := range c.rc.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func (c *zipContainer) Open(name string) (*Stream, error) {
	for _, f := range c.rc.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		return Open(rc, name)
	}
	return nil, fmt.Errorf("container: zip member %q not found", name)
}

func (c *zipContainer) Close() error { return c.rc.Close() }

// singleFileContainer wraps a bare stream that never has siblings: the
// only member is its own name.
type singleFileContainer struct {
	s *Stream
}

// OpenSingle returns a Container with exactly one member wrapping an
// already-open Stream, used when a format's Container flag
// is false but the caller's plumbing always wants a Container.
func OpenSingle(s *Stream) Container {
	return &singleFileContainer{s: s}
}

func (c *singleFileContainer) Members() []string { return []string{c.s.Name()} }

func (c *singleFileContainer) Open(name string) (*Stream, error) {
	if name != c.s.Name() {
		return nil, fmt.Errorf("container: no member named %q", name)
	}
	return c.s, nil
}

func (c *singleFileContainer) Close() error { return nil }

package bitfont

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
)

var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// openContainer picks the Container implementation for path: a directory
// becomes a dirContainer, a zip archive a zipContainer, anything else a
// singleFileContainer wrapping one Stream.
// It also returns the name of the member Load should identify and
// decode first.
func openContainer(path string) (container.Container, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", &IoError{Op: "stat", Err: err}
	}
	if info.IsDir() {
		c, err := container.OpenDir(path)
		if err != nil {
			return nil, "", &IoError{Op: "open dir", Err: err}
		}
		members := c.Members()
		if len(members) == 0 {
			return nil, "", &BadStructureError{Format: "container", Reason: "directory has no members"}
		}
		primary, ok := choosePrimary(members)
		if !ok {
			primary = members[0]
		}
		return c, primary, nil
	}

	head := make([]byte, 4)
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &IoError{Op: "open", Err: err}
	}
	n, _ := f.Read(head)
	f.Close()

	if n >= 4 && bytes.Equal(head[:4], zipMagic) {
		c, err := container.OpenZip(path)
		if err != nil {
			return nil, "", &IoError{Op: "open zip", Err: err}
		}
		members := c.Members()
		primary, ok := choosePrimary(members)
		if !ok && len(members) > 0 {
			primary = members[0]
		}
		return c, primary, nil
	}

	s, err := container.OpenFile(path)
	if err != nil {
		return nil, "", &IoError{Op: "open", Err: err}
	}
	name := filepath.Base(path)
	return container.OpenSingle(s), name, nil
}

// choosePrimary prefers the member whose suffix is recognized by a
// registered loader, so a directory or zip containing both a .fnt
// descriptor and a .png spritesheet (BMFont) is entered
// through the descriptor rather than the image.
func choosePrimary(members []string) (string, bool) {
	for _, m := range members {
		for _, l := range loaders {
			if matchesSuffix(m, l.Suffixes) {
				return m, true
			}
		}
	}
	return "", false
}

// Load opens path (a single file, a gzip-compressed file, a directory,
// or a zip archive) and decodes it via whichever registered Loader's
// Identify match succeeds. d may be nil.
func Load(path string, d Diagnostics) ([]*font.Font, error) {
	d = diag(d)

	c, primary, err := openContainer(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	s, err := c.Open(primary)
	if err != nil {
		return nil, &IoError{Op: "open member", Err: err}
	}
	defer s.Close()

	l, err := Identify(s, primary)
	if err != nil {
		return nil, err
	}
	fonts, err := l.Decode(s, c, d)
	if err != nil {
		return nil, fmt.Errorf("bitfont: load %s: %w", path, err)
	}
	return fonts, nil
}

// LoadStream decodes an already-open Stream directly, without touching
// the filesystem, for callers that already hold an io.Reader.
func LoadStream(s *container.Stream, name string, d Diagnostics) ([]*font.Font, error) {
	d = diag(d)
	l, err := Identify(s, name)
	if err != nil {
		return nil, err
	}
	return l.Decode(s, container.OpenSingle(s), d)
}

package bitfont

import (
	"bytes"

	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
)

// LoaderFunc decodes a stream (optionally backed by a Container, for
// multi-file formats) into one or more Fonts.
type LoaderFunc func(s *container.Stream, c container.Container, d Diagnostics) ([]*font.Font, error)

// SaverFunc encodes one or more Fonts to a writable stream.
type SaverFunc func(w *container.Stream, fonts []*font.Font, d Diagnostics) error

// Magic is a byte sequence matched as a prefix at stream offset 0.
type Magic []byte

// Loader is a format registry entry for decoding.
type Loader struct {
	Name      string
	Suffixes  []string
	Magics    []Magic
	MultiFont bool
	Container bool
	Decode    LoaderFunc
}

// Saver is a format registry entry for encoding, linked to the Loader
// whose suffix set it shares").
type Saver struct {
	Name      string
	Suffixes  []string
	Container bool
	Encode    SaverFunc
}

var (
	loaders []*Loader
	savers  []*Saver
)

// RegisterLoader adds l to the loader registry. Format subpackages call
// this from an init() func, the way image.RegisterFormat lets
// image/png, image/gif etc. register themselves for side effect; callers
// of this module blank-import the format packages they want available
// (see codec/all).
func RegisterLoader(l *Loader) {
	loaders = append(loaders, l)
}

// RegisterSaver adds s to the saver registry, inheriting suffixes from
// the named loader if s.Suffixes is empty.
func RegisterSaver(s *Saver) {
	if len(s.Suffixes) == 0 {
		for _, l := range loaders {
			if l.Name == s.Name {
				s.Suffixes = l.Suffixes
				break
			}
		}
	}
	savers = append(savers, s)
}

func hasMagic(prefix []byte, l *Loader) bool {
	for _, m := range l.Magics {
		if len(prefix) >= len(m) && bytes.Equal(prefix[:len(m)], []byte(m)) {
			return true
		}
	}
	return false
}

func matchesSuffix(name string, suffixes []string) bool {
	lower := toLowerASCII(name)
	for _, suf := range suffixes {
		s := toLowerASCII(suf)
		if len(lower) >= len(s) && lower[len(lower)-len(s):] == s {
			return true
		}
	}
	return false
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

// maxMagicPeek bounds how many bytes Identify needs to peek: the
// longest magic sequence registered plus headroom.
const maxMagicPeek = 16

// Identify returns the Loader whose magic matches the stream's first
// bytes, falling back to suffix lookup against name.
func Identify(s *container.Stream, name string) (*Loader, error) {
	prefix, err := container.Peek(s, maxMagicPeek)
	if err != nil && len(prefix) == 0 {
		return nil, &IoError{Op: "identify", Err: err}
	}
	for _, l := range loaders {
		if hasMagic(prefix, l) {
			return l, nil
		}
	}
	if name != "" {
		for _, l := range loaders {
			if matchesSuffix(name, l.Suffixes) {
				return l, nil
			}
		}
	}
	return nil, &UnknownFormatError{Name: name}
}

// LoaderByName returns the registered Loader with the given canonical
// name, for callers that want to bypass auto-detection.
func LoaderByName(name string) (*Loader, bool) {
	for _, l := range loaders {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// SaverByName returns the registered Saver with the given canonical name.
func SaverByName(name string) (*Saver, bool) {
	for _, s := range savers {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Loaders returns the registered loaders, in registration order.
func Loaders() []*Loader { return append([]*Loader(nil), loaders...) }

// Savers returns the registered savers, in registration order.
func Savers() []*Saver { return append([]*Saver(nil), savers...) }

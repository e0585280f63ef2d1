// Package container implements the stream and container abstractions:
// a readable/writable stream that tolerates non-seekable sources,
// transparent gzip interposition, and the directory/zip/single-file
// Container implementations multi-file formats
// (BMFont's .fnt + spritesheet, some Mac/CPI bundles) need.
package container

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stream is a readable or writable byte stream, optionally backed by a
// seekable source. Position reports the logical (post-gzip, post-BOM)
// offset; streams that cannot seek (stdio) still report it, just without
// the ability to rewind.
type Stream struct {
	r        io.Reader
	w        io.Writer
	closer   io.Closer
	seeker   io.Seeker
	name     string
	readable bool
	writable bool
	pos      int64
}

// Name returns the stream's origin name, or "" if anonymous (e.g. stdin).
func (s *Stream) Name() string { return s.name }

// Readable reports whether Read is valid on this stream.
func (s *Stream) Readable() bool { return s.readable }

// Writable reports whether Write is valid on this stream.
func (s *Stream) Writable() bool { return s.writable }

// Position returns the number of bytes read or written through this
// stream's logical view so far.
func (s *Stream) Position() int64 { return s.pos }

// Seekable reports whether Seek is supported.
func (s *Stream) Seekable() bool { return s.seeker != nil }

func (s *Stream) Read(p []byte) (int, error) {
	if !s.readable {
		return 0, fmt.Errorf("container: stream %q is not readable", s.name)
	}
	n, err := s.r.Read(p)
	s.pos += int64(n)
	return n, err
}

func (s *Stream) Write(p []byte) (int, error) {
	if !s.writable {
		return 0, fmt.Errorf("container: stream %q is not writable", s.name)
	}
	n, err := s.w.Write(p)
	s.pos += int64(n)
	return n, err
}

// Seek repositions a seekable stream; it returns an error for streams
// that do not support seeking (e.g. stdio), rather than panicking.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.seeker == nil {
		return 0, fmt.Errorf("container: stream %q does not support seeking", s.name)
	}
	n, err := s.seeker.Seek(offset, whence)
	if err == nil {
		s.pos = n
	}
	return n, err
}

// Close releases the underlying resource, flushing any stream wrapper
// (gzip, text decode) first.
func (s *Stream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Mode selects whether Open returns a stream for reading or writing.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

var gzipMagic = []byte{0x1f, 0x8b}

// Open wraps r as a readable Stream, transparently interposing a gzip
// reader when the input's magic bytes are 1F 8B. name is
// used only for diagnostics and suffix-based gzip detection fallback.
func Open(r io.Reader, name string) (*Stream, error) {
	br := bufio.NewReader(r)
	peeked, err := br.Peek(2)
	isGzip := err == nil && bytes.Equal(peeked, gzipMagic)
	if !isGzip && strings.HasSuffix(strings.ToLower(name), ".gz") {
		isGzip = true
	}
	if !isGzip {
		return &Stream{r: br, name: name, readable: true}, nil
	}
	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("container: %s: gzip header: %w", name, err)
	}
	return &Stream{r: gz, closer: gz, name: strings.TrimSuffix(name, ".gz"), readable: true}, nil
}

// OpenFile opens path for reading as a Stream, per Open's gzip rules.
func OpenFile(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s, err := Open(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.seeker = f
	if s.closer == nil {
		s.closer = f
	} else {
		inner := s.closer
		outer := f
		s.closer = closerFunc(func() error {
			err1 := inner.Close()
			err2 := outer.Close()
			if err1 != nil {
				return err1
			}
			return err2
		})
	}
	return s, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Create opens path for writing as a Stream.
func Create(path string) (*Stream, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Stream{w: f, closer: f, seeker: f, name: path, writable: true}, nil
}

// NewWriter wraps an arbitrary io.Writer as a writable Stream, used for
// in-memory buffers and for stdout.
func NewWriter(w io.Writer, name string) *Stream {
	closer, _ := w.(io.Closer)
	return &Stream{w: w, closer: closer, name: name, writable: true}
}

// Peek returns the next n bytes of a stream without advancing Position.
// Seekable or not, Peek reads the bytes into an internal buffer and
// prepends them to subsequent Reads.
func Peek(s *Stream, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(s.r, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return buf[:read], err
	}
	s.r = io.MultiReader(bytes.NewReader(buf[:read]), s.r)
	return buf[:read], nil
}

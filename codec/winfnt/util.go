package winfnt

import (
	"bytes"
	"io"
)

func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

// byteReader wraps a byte slice as an io.Reader for bitio.NewReader,
// since the FNT decoder needs random-access slicing (char tables,
// string pool) alongside sequential header decode.
func byteReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}

package bitfont

import (
	"fmt"

	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
)

// Save encodes fonts with the named format's Saver and writes the result
// to path. d may be nil.
func Save(path string, fonts []*font.Font, formatName string, d Diagnostics) error {
	d = diag(d)
	sv, ok := SaverByName(formatName)
	if !ok {
		return &UnknownFormatError{Name: formatName}
	}
	w, err := container.Create(path)
	if err != nil {
		return &IoError{Op: "create", Err: err}
	}
	defer w.Close()

	if err := sv.Encode(w, fonts, d); err != nil {
		return fmt.Errorf("bitfont: save %s as %s: %w", path, formatName, err)
	}
	return nil
}

// SaveStream encodes fonts to an already-open writable Stream.
func SaveStream(w *container.Stream, fonts []*font.Font, formatName string, d Diagnostics) error {
	d = diag(d)
	sv, ok := SaverByName(formatName)
	if !ok {
		return &UnknownFormatError{Name: formatName}
	}
	return sv.Encode(w, fonts, d)
}

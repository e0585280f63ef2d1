// Package bitfont is the root of the font codec layer: the format
// registry, the stream/container plumbing's public entry points
// (Load/Save), the error taxonomy, and the Diagnostics/Options
// conventions every codec shares.
//
// Errors are small typed structs, each implementing error and
// Unwrap() error, rather than a generic error-code enum or sentinel
// values.
package bitfont

import "fmt"

// UnknownFormatError is returned when no loader's magic or suffix matched
// on load.
type UnknownFormatError struct {
	Name string // the stream or file name, if known
}

func (err *UnknownFormatError) Error() string {
	if err.Name == "" {
		return "bitfont: unknown format"
	}
	return fmt.Sprintf("bitfont: unknown format: %s", err.Name)
}

// UnsupportedVersionError is returned when a format's magic matched but
// the specific revision is not implemented.
type UnsupportedVersionError struct {
	Format  string
	Version string
}

func (err *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("bitfont: %s: unsupported version %s", err.Format, err.Version)
}

// BadStructureError indicates an internally inconsistent file: a
// truncated header, an offset outside the file, or block sizes that
// disagree.
type BadStructureError struct {
	Format string
	Reason string
	Err    error
}

func (err *BadStructureError) Error() string {
	msg := fmt.Sprintf("bitfont: %s: malformed: %s", err.Format, err.Reason)
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *BadStructureError) Unwrap() error { return err.Err }

// UnsupportedFeatureError indicates a recognized-but-unimplemented
// feature: colour/antialiased/greyscale glyphs, Amiga ColorFont, FNT
// ABC/COLORFONT v3 flags, or multiple character labels headed for a
// single-codepoint format.
type UnsupportedFeatureError struct {
	Format  string
	Feature string
}

func (err *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("bitfont: %s: unsupported feature: %s", err.Format, err.Feature)
}

// ConstraintViolatedError indicates that, on encode, a glyph property
// would overflow a byte-sized field, or an input violates a format's
// single-font-only requirement.
type ConstraintViolatedError struct {
	Format string
	Reason string
}

func (err *ConstraintViolatedError) Error() string {
	return fmt.Sprintf("bitfont: %s: constraint violated: %s", err.Format, err.Reason)
}

// CharsetUnknownError is non-fatal on decode (the raw id is stored
// instead) and fatal on encode only when the format requires a known
// mapping and the encoder's documented fallback still fails to apply.
type CharsetUnknownError struct {
	Format string
	Raw    string
}

func (err *CharsetUnknownError) Error() string {
	return fmt.Sprintf("bitfont: %s: unknown charset %q", err.Format, err.Raw)
}

// IoError wraps an underlying stream failure, preserving it for
// errors.Is/As.
type IoError struct {
	Op  string
	Err error
}

func (err *IoError) Error() string {
	return fmt.Sprintf("bitfont: %s: %s", err.Op, err.Err)
}

func (err *IoError) Unwrap() error { return err.Err }

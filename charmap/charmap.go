// Package charmap implements the bidirectional mapping between format-
// native charset codes (Windows dfCharSet bytes, CPI codepage numbers)
// and canonical charmap names. Charmap tables proper are an external
// data dependency; this package is the narrow slice of it the codecs
// need directly (byte/rune
// translation for the single-byte and DBCS legacy encodings that appear
// in Windows FNT, BMFont and CPI headers), backed by
// golang.org/x/text/encoding wherever it already covers the encoding.
package charmap

import (
	"fmt"

	xcharmap "golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// Map translates between a single- or double-byte codepoint and a Unicode
// scalar value for one named charmap.
type Map interface {
	// Name is the canonical charmap name, e.g. "windows-1252".
	Name() string
	// ToRune decodes a codepoint (as a format-native byte string) to a
	// Unicode scalar value. ok is false if the codepoint is unmapped.
	ToRune(codepoint []byte) (r rune, ok bool)
	// ToCodepoint encodes a Unicode scalar value back to a codepoint byte
	// string. ok is false if the charmap has no codepoint for r.
	ToCodepoint(r rune) (codepoint []byte, ok bool)
}

type singleByte struct {
	name string
	enc  *xcharmap.Charmap
}

func (m singleByte) Name() string { return m.name }

func (m singleByte) ToRune(codepoint []byte) (rune, bool) {
	if len(codepoint) != 1 {
		return 0, false
	}
	r := m.enc.DecodeByte(codepoint[0])
	if r == '�' && codepoint[0] != 0xbd {
		return 0, false
	}
	return r, true
}

func (m singleByte) ToCodepoint(r rune) ([]byte, bool) {
	b, ok := m.enc.EncodeRune(r)
	if !ok {
		return nil, false
	}
	return []byte{b}, true
}

type identity struct{ name string }

func (m identity) Name() string { return m.name }
func (m identity) ToRune(codepoint []byte) (rune, bool) {
	if len(codepoint) == 0 {
		return 0, false
	}
	return rune(codepoint[0]), true
}
func (m identity) ToCodepoint(r rune) ([]byte, bool) {
	if r < 0 || r > 0x10ffff {
		return nil, false
	}
	return []byte{byte(r)}, true
}

type shiftJIS struct{}

func (shiftJIS) Name() string { return "windows-932" }
func (shiftJIS) ToRune(codepoint []byte) (rune, bool) {
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(codepoint)
	if err != nil || len(decoded) == 0 {
		return 0, false
	}
	r := []rune(string(decoded))
	if len(r) != 1 {
		return 0, false
	}
	return r[0], true
}
func (shiftJIS) ToCodepoint(r rune) ([]byte, bool) {
	encoded, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(string(r)))
	if err != nil || len(encoded) == 0 {
		return nil, false
	}
	return encoded, true
}

var registry = map[string]Map{
	"windows-1252":     singleByte{"windows-1252", xcharmap.Windows1252},
	"mac-roman":        singleByte{"mac-roman", xcharmap.Macintosh},
	"cp437":            singleByte{"cp437", xcharmap.CodePage437},
	"cp850":            singleByte{"cp850", xcharmap.CodePage850},
	"cp852":            singleByte{"cp852", xcharmap.CodePage852},
	"cp866":            singleByte{"cp866", xcharmap.CodePage866},
	"iso8859-1":        singleByte{"iso8859-1", xcharmap.ISO8859_1},
	"windows-932":      shiftJIS{},
	"unicode":          identity{"unicode"},
	"zx-spectrum":      identity{"zx-spectrum"},
	"amstrad-cpm-plus": identity{"amstrad-cpm-plus"},
}

// Lookup returns the Map registered under the given canonical name.
func Lookup(name string) (Map, bool) {
	m, ok := registry[name]
	return m, ok
}

// windowsCharSet maps a Windows FNT/FON dfCharSet byte to a canonical
// charmap name. dfCharSet 0x01 (DEFAULT) intentionally has no entry:
// decoders treat it as "no encoding".
var windowsCharSet = map[byte]string{
	0x00: "windows-1252", // ANSI_CHARSET
	0x02: "unicode",      // SYMBOL_CHARSET: no reliable mapping, treated as unicode passthrough
	0x4d: "mac-roman",    // MAC_CHARSET
	0xcc: "windows-932",  // SHIFTJIS_CHARSET
	0xff: "cp437",        // OEM_CHARSET
	0xb1: "iso8859-1",    // HEBREW-ish placeholder retained for round trip only
}

// FromWindowsCharSet translates a Windows dfCharSet byte to a canonical
// charmap name. ok is false for DEFAULT (0x01) or an unrecognized value;
// callers should fall back to storing the raw byte in the
// "windows.dfCharSet" property so unknown codes still round-trip.
func FromWindowsCharSet(charSet byte) (name string, ok bool) {
	if charSet == 0x01 {
		return "", false
	}
	name, ok = windowsCharSet[charSet]
	return name, ok
}

// ToWindowsCharSet is the inverse of FromWindowsCharSet, used by the FNT
// encoder. Unknown names fall back to OEM (0xff); the mapping is
// deliberately asymmetric (DEFAULT decodes as "no encoding" but
// re-encodes as OEM).
func ToWindowsCharSet(name string) byte {
	for cs, n := range windowsCharSet {
		if n == name {
			return cs
		}
	}
	return 0xff
}

// cpiCodepage maps an MS-DOS/CPI codepage number to a canonical charmap
// name where one is known; otherwise the raw number round-trips through
// the "cpi.codepage" property and the
// synthetic encoding name "cp<nnn>".
var cpiCodepage = map[int]string{
	437: "cp437",
	850: "cp850",
	852: "cp852",
	866: "cp866",
}

// FromCPICodepage translates a CPI codepage number to a canonical charmap
// name if known, and always also returns the synthetic "cp<nnn>"
// encoding name used as the Font's "encoding" property.
func FromCPICodepage(codepage int) (canonical string, synthetic string) {
	return cpiCodepage[codepage], fmt.Sprintf("cp%d", codepage)
}

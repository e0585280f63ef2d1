package bitfont_test

import (
	"bytes"
	"compress/gzip"
	"testing"

	"bitfont.dev/go/bitfont"
	_ "bitfont.dev/go/bitfont/codec/all"
	"bitfont.dev/go/bitfont/container"
)

// TestIdentifyByMagic feeds the first bytes of a fixture of every
// magic-carrying format into the dispatcher and checks the right loader
// comes back.
func TestIdentifyByMagic(t *testing.T) {
	for _, tc := range []struct {
		name  string
		data  []byte
		want  string
	}{
		{"fnt-v1", []byte{0x00, 0x01, 0x00, 0x00}, "windows-fnt"},
		{"fnt-v2", []byte{0x00, 0x02, 0x00, 0x00}, "windows-fnt"},
		{"fnt-v3", []byte{0x00, 0x03, 0x00, 0x00}, "windows-fnt"},
		{"fon", []byte("MZ\x90\x00"), "windows-fon"},
		{"bmf-binary", []byte("BMF\x03"), "bmfont"},
		{"amiga-hunk", []byte{0x00, 0x00, 0x03, 0xf3}, "amiga"},
		{"cpi-msdos", append([]byte{0xff}, []byte("FONT   ")...), "cpi"},
		{"cpi-nt", append([]byte{0xff}, []byte("FONT.NT")...), "cpi"},
		{"cpi-drfont", append([]byte{0x7f}, []byte("DRFONT ")...), "cpi"},
		{"daisydot-2", []byte("DAISY-DOT NLQ FO"), "daisydot"},
		{"daisydot-3", []byte{'3', 0x9b}, "daisydot"},
		{"pcr", []byte{'K', 'P', 'G', 0x01, 0x02, 0x20, 0x01, 0x08}, "pcr"},
		{"rexxcom", []byte{0xeb, 0x4d, 0x00}, "rexxcom"},
		{"psfcom", []byte{0xeb, 0x04, 0xeb, 0xc3}, "psfcom"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, err := container.Open(bytes.NewReader(tc.data), "")
			if err != nil {
				t.Fatal(err)
			}
			l, err := bitfont.Identify(s, "")
			if err != nil {
				t.Fatal(err)
			}
			if l.Name != tc.want {
				t.Errorf("Identify = %q, want %q", l.Name, tc.want)
			}
		})
	}
}

// TestIdentifyBySuffix covers the formats with no stand-alone magic.
func TestIdentifyBySuffix(t *testing.T) {
	for _, tc := range []struct {
		filename string
		want     string
	}{
		{"font.fzx", "fzx"},
		{"FONT.FZX", "fzx"},
		{"strike.raw", "raw"},
		{"sys.iigs", "iigs"},
		{"chicago.nfnt", "mac-nfnt"},
	} {
		t.Run(tc.filename, func(t *testing.T) {
			s, err := container.Open(bytes.NewReader([]byte{0x00}), tc.filename)
			if err != nil {
				t.Fatal(err)
			}
			l, err := bitfont.Identify(s, tc.filename)
			if err != nil {
				t.Fatal(err)
			}
			if l.Name != tc.want {
				t.Errorf("Identify(%q) = %q, want %q", tc.filename, l.Name, tc.want)
			}
		})
	}
}

// TestIdentifyUnknown checks the dispatcher fails with UnknownFormatError
// when neither magic nor suffix matches.
func TestIdentifyUnknown(t *testing.T) {
	s, err := container.Open(bytes.NewReader([]byte("not a font at all")), "mystery.xyz")
	if err != nil {
		t.Fatal(err)
	}
	_, err = bitfont.Identify(s, "mystery.xyz")
	if err == nil {
		t.Fatal("expected an error for unknown input")
	}
	if _, ok := err.(*bitfont.UnknownFormatError); !ok {
		t.Errorf("error type = %T, want *UnknownFormatError", err)
	}
}

// TestIdentifyGzipTransparent checks that a gzip-compressed fixture is
// identified by its inner magic, the gzip layer being interposed by
// container.Open.
func TestIdentifyGzipTransparent(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte{0x00, 0x02, 0x00, 0x00}); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	s, err := container.Open(bytes.NewReader(buf.Bytes()), "font.fnt.gz")
	if err != nil {
		t.Fatal(err)
	}
	l, err := bitfont.Identify(s, s.Name())
	if err != nil {
		t.Fatal(err)
	}
	if l.Name != "windows-fnt" {
		t.Errorf("Identify = %q, want \"windows-fnt\"", l.Name)
	}
}

// TestSaverInheritsSuffixes checks the saver/loader linkage: a saver
// registered without suffixes serves the suffix set of the loader
// sharing its name.
func TestSaverInheritsSuffixes(t *testing.T) {
	s, ok := bitfont.SaverByName("windows-fnt")
	if !ok {
		t.Fatal("no windows-fnt saver registered")
	}
	if len(s.Suffixes) == 0 {
		t.Fatal("windows-fnt saver inherited no suffixes")
	}
	found := false
	for _, suf := range s.Suffixes {
		if suf == ".fnt" {
			found = true
		}
	}
	if !found {
		t.Errorf("suffixes = %v, want to include .fnt", s.Suffixes)
	}
}

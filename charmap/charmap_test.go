package charmap

import (
	"testing"
)

func TestLookupRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		charmap   string
		codepoint []byte
		want      rune
	}{
		{"windows-1252", []byte{0x41}, 'A'},
		{"windows-1252", []byte{0xe9}, 'é'},
		{"cp437", []byte{0xe1}, 'ß'},
		{"mac-roman", []byte{0x8e}, 'é'},
		{"iso8859-1", []byte{0xe9}, 'é'},
		{"windows-932", []byte{0x82, 0xa0}, 'あ'},
		{"unicode", []byte{0x41}, 'A'},
	} {
		t.Run(tc.charmap, func(t *testing.T) {
			m, ok := Lookup(tc.charmap)
			if !ok {
				t.Fatalf("Lookup(%q) failed", tc.charmap)
			}
			r, ok := m.ToRune(tc.codepoint)
			if !ok || r != tc.want {
				t.Fatalf("ToRune(% x) = %q, %v, want %q", tc.codepoint, r, ok, tc.want)
			}
			back, ok := m.ToCodepoint(r)
			if !ok || string(back) != string(tc.codepoint) {
				t.Errorf("ToCodepoint(%q) = % x, %v, want % x", r, back, ok, tc.codepoint)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("klingon-1"); ok {
		t.Error("Lookup of an unregistered charmap should fail")
	}
}

func TestWindowsCharSet(t *testing.T) {
	if name, ok := FromWindowsCharSet(0x00); !ok || name != "windows-1252" {
		t.Errorf("FromWindowsCharSet(0x00) = %q, %v", name, ok)
	}
	// DEFAULT (0x01) means "no encoding" on decode.
	if _, ok := FromWindowsCharSet(0x01); ok {
		t.Error("FromWindowsCharSet(0x01) should report no mapping")
	}
	if _, ok := FromWindowsCharSet(0x77); ok {
		t.Error("FromWindowsCharSet of an unknown byte should report no mapping")
	}
	if cs := ToWindowsCharSet("windows-1252"); cs != 0x00 {
		t.Errorf("ToWindowsCharSet(windows-1252) = %#x, want 0", cs)
	}
	// unknown names fall back to OEM.
	if cs := ToWindowsCharSet("no-such-charmap"); cs != 0xff {
		t.Errorf("ToWindowsCharSet fallback = %#x, want 0xff", cs)
	}
}

func TestCPICodepage(t *testing.T) {
	canonical, synthetic := FromCPICodepage(437)
	if canonical != "cp437" || synthetic != "cp437" {
		t.Errorf("FromCPICodepage(437) = %q, %q", canonical, synthetic)
	}
	canonical, synthetic = FromCPICodepage(1234)
	if canonical != "" || synthetic != "cp1234" {
		t.Errorf("FromCPICodepage(1234) = %q, %q", canonical, synthetic)
	}
}

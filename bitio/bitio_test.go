package bitio

import (
	"bytes"
	"testing"
)

func TestCeilDiv(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{0, 8, 0}, {1, 8, 1}, {8, 8, 1}, {9, 8, 2}, {16, 8, 2},
	}
	for _, c := range cases {
		if got := CeilDiv(c.a, c.b); got != c.want {
			t.Errorf("CeilDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestU16RoundTrip(t *testing.T) {
	for _, order := range []Order{LittleEndian, BigEndian} {
		buf := make([]byte, 2)
		PutU16(buf, 0xabcd, order)
		if got := U16(buf, order); got != 0xabcd {
			t.Errorf("order=%v: got %x, want abcd", order, got)
		}
	}
}

func TestReaderSequential(t *testing.T) {
	data := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0xff}
	r := NewReader(bytes.NewReader(data), BigEndian)
	v16, err := r.U16()
	if err != nil || v16 != 1 {
		t.Fatalf("U16 = %d, %v", v16, err)
	}
	v32, err := r.U32()
	if err != nil || v32 != 2 {
		t.Fatalf("U32 = %d, %v", v32, err)
	}
	b, err := r.U8()
	if err != nil || b != 0xff {
		t.Fatalf("U8 = %x, %v", b, err)
	}
	if r.Pos() != 7 {
		t.Errorf("Pos() = %d, want 7", r.Pos())
	}
}

func TestGetSetBitMSBFirst(t *testing.T) {
	row := make([]byte, 1)
	SetBit(row, 0, MSBFirst, true)
	if row[0] != 0x80 {
		t.Errorf("row[0] = %x, want 80", row[0])
	}
	if !GetBit(row, 0, MSBFirst) {
		t.Error("expected bit 0 set")
	}
	if GetBit(row, 1, MSBFirst) {
		t.Error("expected bit 1 clear")
	}
}

func TestTransposeColumnsToRows(t *testing.T) {
	// A 2x9 glyph: column 0 is all-ink (needs 2 bytes for 9 rows),
	// column 1 is all-paper.
	col0 := []byte{0xff, 0x80}
	col1 := []byte{0x00, 0x00}
	columns := append(append([]byte{}, col0...), col1...)
	rows := Transpose(columns, 2, 9, MSBFirst)
	bytesPerRow := CeilDiv(2, 8)
	if len(rows) != bytesPerRow*9 {
		t.Fatalf("len(rows) = %d, want %d", len(rows), bytesPerRow*9)
	}
	for y := 0; y < 9; y++ {
		row := rows[y*bytesPerRow : (y+1)*bytesPerRow]
		if !GetBit(row, 0, MSBFirst) {
			t.Errorf("row %d: column 0 should be ink", y)
		}
		if GetBit(row, 1, MSBFirst) {
			t.Errorf("row %d: column 1 should be blank", y)
		}
	}
}

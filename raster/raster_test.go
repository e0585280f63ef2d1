package raster

import "testing"

func checker(w, h int) Raster {
	r := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				r = r.Set(x, y, true)
			}
		}
	}
	return r
}

func TestToFromBytesRoundTrip(t *testing.T) {
	for _, align := range []Align{AlignLeft, AlignRight} {
		r := checker(11, 5)
		data := r.ToBytes(align, 0)
		got := FromBytes(data, 11, 5, align, 0)
		if !got.Equal(r) {
			t.Errorf("align=%v: round trip mismatch", align)
		}
	}
}

func TestCropExpandInverse(t *testing.T) {
	r := checker(6, 6)
	expanded := r.Expand(2, 1, 2, 1, false)
	back := expanded.Crop(2, 1, 2, 1)
	if !back.Equal(r) {
		t.Error("Crop(Expand(r)) != r")
	}
}

func TestTransposeInvolution(t *testing.T) {
	r := checker(4, 7)
	if !r.Transpose().Transpose().Equal(r) {
		t.Error("Transpose twice should be identity")
	}
}

func TestConcatHorizontal(t *testing.T) {
	a := New(2, 2)
	a = a.Set(0, 0, true)
	b := New(3, 2)
	b = b.Set(2, 1, true)
	c := ConcatHorizontal(a, b)
	if c.Width() != 5 || c.Height() != 2 {
		t.Fatalf("unexpected size %dx%d", c.Width(), c.Height())
	}
	if !c.Get(0, 0) || !c.Get(4, 1) {
		t.Error("concatenated pixels not preserved")
	}
}

func TestInkBounds(t *testing.T) {
	r := New(5, 5)
	r = r.Set(1, 1, true).Set(3, 3, true)
	left, bottom, right, top, ok := r.InkBounds()
	if !ok {
		t.Fatal("expected ink")
	}
	if left != 1 || right != 4 {
		t.Errorf("left/right = %d/%d, want 1/4", left, right)
	}
	_ = bottom
	_ = top
}

func TestBlankInkBounds(t *testing.T) {
	r := New(4, 4)
	if _, _, _, _, ok := r.InkBounds(); ok {
		t.Error("blank raster should report no ink bounds")
	}
}

// Package bmfont implements the AngelCode BMFont bitmap font codec: a
// descriptor (binary, text, XML or JSON) plus one or more spritesheet
// images holding the glyph bitmaps in packed rectangles.
package bmfont

// info holds the BMFont "info" block/line.
type info struct {
	face     string
	size     int
	bold     bool
	italic   bool
	unicode  bool
	smooth   bool
	charSet  int
	stretchH int
	aa       int
	padding  [4]int
	spacing  [2]int
	outline  int
}

// common holds the BMFont "common" block/line.
type common struct {
	lineHeight int
	base       int
	scaleW     int
	scaleH     int
	pages      int
	packed     bool
	alphaChnl  int
	redChnl    int
	greenChnl  int
	blueChnl   int
}

// charRec is one "char" block/line entry.
type charRec struct {
	id                 int
	x, y, w, h         int
	xoffset, yoffset   int
	xadvance           int
	page               int
	chnl               int
}

// kerningRec is one "kerning" block/line entry.
type kerningRec struct {
	first, second int
	amount        int
}

// descriptor is the parsed form shared by all four serializations.
type descriptor struct {
	info     info
	common   common
	pages    []string
	chars    []charRec
	kernings []kerningRec
}

package bmfont

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"path"
	"strconv"

	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

func init() {
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:      binaryFormat,
		Suffixes:  []string{".fnt"},
		Magics:    []bitfont.Magic{{'B', 'M', 'F'}},
		Container: true,
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			f, err := Decode(s, c, d)
			if err != nil {
				return nil, err
			}
			return []*font.Font{f}, nil
		},
	})
	bitfont.RegisterSaver(&bitfont.Saver{
		Name:      binaryFormat,
		Container: true,
		Encode: func(w *container.Stream, fonts []*font.Font, d bitfont.Diagnostics) error {
			if len(fonts) == 0 {
				return nil
			}
			return Encode(w, fonts[0], EncodeOptions{})
		},
	})
}

// DecodeOptions configures the BMFont decoder.
type DecodeOptions struct {
	// RequirePages makes a missing or unreadable page image a fatal
	// error. When false, affected glyphs decode with empty rasters and a
	// diagnostic (metrics-only import).
	RequirePages bool
}

// DefaultDecodeOptions requires every page image to be present.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{RequirePages: true}
}

// Decode reads a BMFont descriptor from s, auto-detecting its
// serialization (binary, text, XML or JSON), then loads its page images
// from c and assembles a Font.
func Decode(s *container.Stream, c container.Container, d bitfont.Diagnostics) (*font.Font, error) {
	return DecodeWithOptions(s, c, DefaultDecodeOptions(), d)
}

// DecodeWithOptions is Decode with explicit DecodeOptions.
func DecodeWithOptions(s *container.Stream, c container.Container, opt DecodeOptions, d bitfont.Diagnostics) (*font.Font, error) {
	d = diagOrDefault(d)
	data, err := io.ReadAll(s)
	if err != nil {
		return nil, &bitfont.IoError{Op: "read", Err: err}
	}

	trimmed := bytes.TrimSpace(data)
	var desc descriptor
	switch {
	case len(data) >= 3 && data[0] == 'B' && data[1] == 'M' && data[2] == 'F':
		desc, err = parseBinary(data)
	case len(trimmed) > 0 && trimmed[0] == '<':
		desc, err = parseXML(data)
	case len(trimmed) > 0 && trimmed[0] == '{':
		desc, err = parseJSON(data)
	default:
		desc = parseText(data)
	}
	if err != nil {
		return nil, err
	}

	pages, err := loadPages(desc, c, s.Name(), opt.RequirePages, d)
	if err != nil {
		return nil, err
	}

	for _, c := range desc.chars {
		if c.page < 0 || c.page >= len(pages) {
			d.Warnf("bmfont: char %d references missing page %d, dropped", c.id, c.page)
		}
	}
	glyphs, err := extractGlyphs(desc, pages)
	if err != nil {
		return nil, err
	}

	props := font.NewProperties().
		Set(font.PropFamily, desc.info.face).
		Set(font.PropPointSize, strconv.Itoa(desc.info.size))
	if desc.info.bold {
		props = props.Set(font.PropWeight, "bold")
	}
	if desc.info.italic {
		props = props.Set(font.PropSlant, "italic")
	}
	props = props.Set(font.PropAscent, strconv.Itoa(desc.common.base))
	props = props.Set(font.PropDescent, strconv.Itoa(desc.common.lineHeight-desc.common.base))

	f := font.Build(glyphs, props)
	return applyKerning(f, desc.kernings), nil
}

func applyKerning(f *font.Font, kernings []kerningRec) *font.Font {
	if len(kernings) == 0 {
		return f
	}
	byFirst := map[string][]kerningRec{}
	for _, k := range kernings {
		key := font.CodepointKey(codepointBytesFromID(k.first))
		byFirst[key] = append(byFirst[key], k)
	}
	glyphs := f.Glyphs()
	out := make([]font.Glyph, len(glyphs))
	for i, g := range glyphs {
		ks := byFirst[font.CodepointKey(g.Codepoint)]
		if len(ks) == 0 {
			out[i] = g
			continue
		}
		if g.Kerning == nil {
			g.Kerning = map[string]int{}
		} else {
			cloned := make(map[string]int, len(g.Kerning))
			for k, v := range g.Kerning {
				cloned[k] = v
			}
			g.Kerning = cloned
		}
		for _, k := range ks {
			g.Kerning[font.CodepointKey(codepointBytesFromID(k.second))] = k.amount
		}
		out[i] = g
	}
	return f.WithGlyphs(out)
}

// loadPages opens each "page" file named in desc, resolved relative to
// the descriptor's own member name within c. A nil c (a bare stream with
// no container) only works when the descriptor needs zero pages. With
// require false, a missing or undecodable page yields a nil entry and a
// diagnostic instead of failing the whole decode.
func loadPages(desc descriptor, c container.Container, descName string, require bool, d bitfont.Diagnostics) ([]image.Image, error) {
	dir := path.Dir(descName)
	pages := make([]image.Image, len(desc.pages))
	for i, name := range desc.pages {
		var err error
		if c == nil {
			err = errNoContainer{name: name}
		} else {
			member := name
			if dir != "." && dir != "" {
				member = path.Join(dir, name)
			}
			ps, openErr := c.Open(member)
			if openErr != nil {
				ps, openErr = c.Open(name)
			}
			if openErr != nil {
				err = openErr
			} else {
				img, _, decErr := image.Decode(ps)
				ps.Close()
				if decErr != nil {
					if require {
						return nil, &bitfont.BadStructureError{Format: binaryFormat, Reason: "page " + name + ": " + decErr.Error()}
					}
					err = decErr
				} else {
					pages[i] = img
					continue
				}
			}
		}
		if require {
			return nil, &bitfont.IoError{Op: "open page " + name, Err: err}
		}
		d.Warnf("bmfont: page %s unavailable, decoding metrics only: %v", name, err)
	}
	return pages, nil
}

type errNoContainer struct{ name string }

func (e errNoContainer) Error() string {
	return "bmfont: page " + e.name + " requires a container"
}

// EncodeOptions configures the BMFont encoder.
type EncodeOptions struct {
	Binary   bool
	PageSize int
	PagePrefix string
}

// Encode writes f's BMFont descriptor to w. The
// registry-level Saver only has a single output stream to write to (see
// registry.go's SaverFunc), so it cannot also place the packed page PNGs
// alongside it; EncodePages is the richer entry point that returns both
// the descriptor and the page images for a caller that owns a Container.
func Encode(w *container.Stream, f *font.Font, opt EncodeOptions) error {
	out, _, err := EncodePages(f, opt)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return &bitfont.IoError{Op: "write", Err: err}
	}
	return nil
}

// EncodePages packs f's glyphs onto one or more spritesheet pages with
// the Blackpawn bin packer and returns the serialized descriptor plus
// each page as PNG-encoded bytes, named per the descriptor's "page"
// entries.
func EncodePages(f *font.Font, opt EncodeOptions) (descriptorBytes []byte, pages [][]byte, err error) {
	if opt.PageSize == 0 {
		opt.PageSize = 256
	}
	if opt.PagePrefix == "" {
		opt.PagePrefix = "font"
	}

	glyphs := f.Glyphs()
	rasters := make([]raster.Raster, len(glyphs))
	for i, g := range glyphs {
		rasters[i] = g.Raster
	}
	results := packGlyphs(rasters, opt.PageSize)
	nPages := pageCount(results)

	grids := make([][][]bool, nPages)
	for i := range grids {
		grids[i] = make([][]bool, opt.PageSize)
		for y := range grids[i] {
			grids[i][y] = make([]bool, opt.PageSize)
		}
	}
	for i, g := range glyphs {
		res := results[i]
		grid := grids[res.page]
		for y := 0; y < g.Raster.Height(); y++ {
			for x := 0; x < g.Raster.Width(); x++ {
				if res.y+y < len(grid) && res.x+x < len(grid[0]) {
					grid[res.y+y][res.x+x] = g.Raster.Get(x, y)
				}
			}
		}
	}
	pageImages := make([]image.Image, nPages)
	for i, grid := range grids {
		pageImages[i] = grayFromGrid(grid, opt.PageSize)
	}
	pages = make([][]byte, nPages)
	for i, img := range pageImages {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, nil, &bitfont.IoError{Op: "encode page png", Err: err}
		}
		pages[i] = buf.Bytes()
	}

	var d descriptor
	d.info = info{face: propOrEmpty(f, font.PropFamily)}
	ascent := atoiSafe(propOrEmpty(f, font.PropAscent))
	descent := atoiSafe(propOrEmpty(f, font.PropDescent))
	d.common = common{
		lineHeight: ascent + descent,
		base:       ascent,
		scaleW:     opt.PageSize,
		scaleH:     opt.PageSize,
		pages:      nPages,
	}
	for i := 0; i < nPages; i++ {
		d.pages = append(d.pages, opt.PagePrefix+"_"+strconv.Itoa(i)+".png")
	}
	for i, g := range glyphs {
		res := results[i]
		d.chars = append(d.chars, charRec{
			id:       idFromCodepoint(g.Codepoint),
			x:        res.x, y: res.y, w: res.w, h: res.h,
			xoffset:  0,
			yoffset:  ascent - g.ShiftUp - g.Raster.Height(),
			xadvance: g.AdvanceWidth(),
			page:     res.page,
			chnl:     15,
		})
	}
	for _, g := range glyphs {
		for key, amount := range g.Kerning {
			d.kernings = append(d.kernings, kerningRec{
				first:  idFromCodepoint(g.Codepoint),
				second: idFromCodepoint([]byte(key)),
				amount: amount,
			})
		}
	}

	if opt.Binary {
		descriptorBytes = writeBinary(d)
	} else {
		descriptorBytes = writeText(d)
	}
	return descriptorBytes, pages, nil
}

// grayFromGrid renders a boolean ink grid as an 8-bit grayscale image
// (black ink on white paper), the simplest channel layout a BMFont reader
// can interpret with chnl=15.
func grayFromGrid(grid [][]bool, size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := uint8(0xff)
			if grid[y][x] {
				v = 0x00
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func propOrEmpty(f *font.Font, name font.PropertyName) string {
	v, _ := f.Property(name)
	return v
}

func atoiSafe(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func idFromCodepoint(cp []byte) int {
	n := 0
	for _, b := range cp {
		n = n<<8 | int(b)
	}
	return n
}

func diagOrDefault(d bitfont.Diagnostics) bitfont.Diagnostics {
	if d == nil {
		return bitfont.DiscardDiagnostics{}
	}
	return d
}

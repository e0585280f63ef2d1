package font

import (
	"fmt"

	"bitfont.dev/go/bitfont/charmap"
)

// Font is an ordered, immutable collection of Glyphs plus a two-tier
// property bag. Build is the only constructor; every
// mutator that changes glyphs or properties returns a freshly-Built Font,
// so the derived-property cache never needs explicit invalidation; a new
// Font always starts with a clean cache. WithComment changes neither and
// returns a copy that keeps the existing cache.
type Font struct {
	glyphs   []Glyph
	props    properties
	comments properties // keyed by property name; "" key is the global comment

	byTag       map[string]int
	byCodepoint map[string]int
	byChar      map[string]int

	derived map[PropertyName]string
}

// charKey turns a character label into the map key used by byChar.
func charKey(ch []rune) string { return string(ch) }

// Build assembles a Font from glyphs and a property bag, applying the
// label-synthesis and index-construction invariants:
//
//   - if every glyph lacks both codepoint and character labels, a
//     synthetic codepoint (the glyph's index, as a single byte for
//     index<256 else a big-endian byte string) is assigned;
//   - if an "encoding" property is set, character labels are synthesized
//     from codepoints via the named charmap;
//   - by_tag/by_codepoint/by_char are built consistent with the
//     (possibly synthesized) glyph labels.
func Build(glyphs []Glyph, props Properties) *Font {
	f := &Font{
		glyphs:      append([]Glyph(nil), glyphs...),
		props:       props.p.clone(),
		comments:    newProperties(),
		byTag:       map[string]int{},
		byCodepoint: map[string]int{},
		byChar:      map[string]int{},
		derived:     map[PropertyName]string{},
	}

	allUnlabelled := true
	for _, g := range f.glyphs {
		if g.Codepoint != nil || g.Char != nil {
			allUnlabelled = false
			break
		}
	}
	if allUnlabelled {
		for i := range f.glyphs {
			f.glyphs[i] = f.glyphs[i].WithCodepoint(syntheticCodepoint(i))
		}
	}

	if enc, ok := f.props.get(PropEncoding); ok {
		if cm, ok := charmap.Lookup(enc); ok {
			for i, g := range f.glyphs {
				if g.Char != nil || g.Codepoint == nil {
					continue
				}
				if r, ok := cm.ToRune(g.Codepoint); ok {
					f.glyphs[i] = g.WithChar([]rune{r})
				}
			}
		}
	}

	for i, g := range f.glyphs {
		for _, tag := range g.Tags {
			f.byTag[tag] = i
		}
		if g.Codepoint != nil {
			f.byCodepoint[CodepointKey(g.Codepoint)] = i
		}
		if g.Char != nil {
			f.byChar[charKey(g.Char)] = i
		}
	}

	f.computeDerived()
	return f
}

func syntheticCodepoint(index int) []byte {
	if index < 256 {
		return []byte{byte(index)}
	}
	return []byte{byte(index >> 8), byte(index)}
}

// Glyphs returns the font's glyphs in order. The returned slice shares no
// backing array with the Font's internal state mutators could reach.
func (f *Font) Glyphs() []Glyph {
	return append([]Glyph(nil), f.glyphs...)
}

// Len returns the number of glyphs.
func (f *Font) Len() int { return len(f.glyphs) }

// GlyphByTag looks up a glyph by tag.
func (f *Font) GlyphByTag(tag string) (Glyph, bool) {
	i, ok := f.byTag[tag]
	if !ok {
		return Glyph{}, false
	}
	return f.glyphs[i], true
}

// GlyphByCodepoint looks up a glyph by codepoint label.
func (f *Font) GlyphByCodepoint(codepoint []byte) (Glyph, bool) {
	i, ok := f.byCodepoint[CodepointKey(codepoint)]
	if !ok {
		return Glyph{}, false
	}
	return f.glyphs[i], true
}

// GlyphByChar looks up a glyph by character label.
func (f *Font) GlyphByChar(ch []rune) (Glyph, bool) {
	i, ok := f.byChar[charKey(ch)]
	if !ok {
		return Glyph{}, false
	}
	return f.glyphs[i], true
}

// Property resolves a property name through the two-tier model: an
// explicitly set value wins, otherwise the cached derivation (computed at
// Build time) is returned.
func (f *Font) Property(name PropertyName) (string, bool) {
	if v, ok := f.props.get(name); ok {
		return v, true
	}
	v, ok := f.derived[name]
	return v, ok
}

// SetProperty returns a new Font with the given property set (overriding
// any derivation), recomputing the derived-property cache.
func (f *Font) SetProperty(name PropertyName, value string) *Font {
	props := f.props.clone()
	props.set(name, value)
	return Build(f.glyphs, Properties{p: props})
}

// Comment returns the comment attached to the given property name, or the
// global comment if name is "".
func (f *Font) Comment(name PropertyName) (string, bool) {
	return f.comments.get(name)
}

// WithComment returns a new Font with a comment attached to the given
// property name (or the global comment, for name == "").
func (f *Font) WithComment(name PropertyName, text string) *Font {
	out := *f
	out.comments = f.comments.clone()
	out.comments.set(name, text)
	return &out
}

// EachProperty iterates the explicitly-set properties in the order they
// were assigned.
func (f *Font) EachProperty(fn func(name PropertyName, value string)) {
	f.props.Each(fn)
}

// WithGlyphs returns a new Font with its glyph sequence replaced,
// re-running label synthesis and property derivation; it is the only
// path by which a Font's content changes.
func (f *Font) WithGlyphs(glyphs []Glyph) *Font {
	return Build(glyphs, Properties{p: f.props})
}

func (f *Font) String() string {
	name, _ := f.Property(PropName)
	return fmt.Sprintf("Font(%q, %d glyphs)", name, len(f.glyphs))
}

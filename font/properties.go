package font

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/xdg-go/stringprep"
)

// PropertyName is one of the closed set of canonical Font properties.
type PropertyName string

// The canonical property names. Not every property has a
// derivation rule implemented (see computeDerived in derive.go); those
// without one simply read back as unset unless explicitly assigned.
const (
	PropFamily        PropertyName = "family"
	PropName          PropertyName = "name"
	PropFoundry       PropertyName = "foundry"
	PropCopyright     PropertyName = "copyright"
	PropNotice        PropertyName = "notice"
	PropRevision      PropertyName = "revision"
	PropStyle         PropertyName = "style"
	PropPointSize     PropertyName = "point_size"
	PropWeight        PropertyName = "weight"
	PropSlant         PropertyName = "slant"
	PropSetwidth      PropertyName = "setwidth"
	PropDecoration    PropertyName = "decoration"
	PropDevice        PropertyName = "device"
	PropPixelAspect   PropertyName = "pixel_aspect"
	PropDPI           PropertyName = "dpi"
	PropSpacing       PropertyName = "spacing"
	PropRasterSize    PropertyName = "raster_size"
	PropBoundingBox   PropertyName = "bounding_box"
	PropAverageAdv    PropertyName = "average_advance"
	PropCapAdvance    PropertyName = "cap_advance"
	PropXHeight       PropertyName = "x_height"
	PropCapHeight     PropertyName = "cap_height"
	PropAscent        PropertyName = "ascent"
	PropDescent       PropertyName = "descent"
	PropPixelSize     PropertyName = "pixel_size"
	PropDirection     PropertyName = "direction"
	PropLeftBearing   PropertyName = "left_bearing"
	PropShiftUp       PropertyName = "shift_up"
	PropRightBearing  PropertyName = "right_bearing"
	PropLeading       PropertyName = "leading"
	PropEncoding      PropertyName = "encoding"
	PropDefaultChar   PropertyName = "default_char"
	PropWordBoundary  PropertyName = "word_boundary"
	PropSourceFormat  PropertyName = "source_format"
	PropSourceName    PropertyName = "source_name"
)

// Spacing enumerates the legal values of the spacing property.
type Spacing string

const (
	SpacingProportional Spacing = "proportional"
	SpacingMonospace    Spacing = "monospace"
	SpacingCharacterCell Spacing = "character-cell"
	SpacingMultiCell    Spacing = "multi-cell"
)

// Direction enumerates the legal values of the direction property.
type Direction string

const (
	DirectionLTR Direction = "left-to-right"
	DirectionRTL Direction = "right-to-left"
)

// properties is the ordered string->string bag backing Font's set tier.
// Backed by github.com/emirpasic/gods/maps/linkedhashmap so that
// iteration order, which matters when a codec serializes properties
// back out as, e.g., BMFont info-line key=value pairs, is the order
// properties were set in, not random map order.
type properties struct {
	m *linkedhashmap.Map
}

func newProperties() properties {
	return properties{m: linkedhashmap.New()}
}

func (p properties) clone() properties {
	out := newProperties()
	p.m.Each(func(key, value interface{}) {
		out.m.Put(key, value)
	})
	return out
}

// canonicalize normalizes a property string value with stringprep's
// RFC 4013 (SASLprep) profile so that equivalent Unicode representations
// of the same family/name/foundry compare and round-trip identically.
// SASLprep is built for credential strings, but its Unicode
// normalization and non-ASCII-space-folding rules apply just as well to
// arbitrary display strings such as font names; a value that SASLprep
// rejects outright (e.g. containing prohibited bidirectional mixes) is
// kept as-is rather than discarded.
func canonicalize(name PropertyName, value string) string {
	switch name {
	case PropFamily, PropName, PropFoundry, PropStyle, PropDevice:
		if prepped, err := stringprep.SASLprep.Prepare(value); err == nil {
			return prepped
		}
		return value
	default:
		return value
	}
}

func (p properties) get(name PropertyName) (string, bool) {
	v, ok := p.m.Get(string(name))
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (p properties) set(name PropertyName, value string) {
	p.m.Put(string(name), canonicalize(name, value))
}

func (p properties) delete(name PropertyName) {
	p.m.Remove(string(name))
}

// Each calls f for every explicitly-set property in insertion order.
func (p properties) Each(f func(name PropertyName, value string)) {
	p.m.Each(func(key, value interface{}) {
		f(PropertyName(key.(string)), value.(string))
	})
}

// Properties is the exported builder view of a Font's property bag: the
// argument codec packages outside this package assemble and hand to
// Build, since the underlying linkedhashmap-backed type stays
// unexported.
type Properties struct {
	p properties
}

// NewProperties returns an empty Properties builder.
func NewProperties() Properties {
	return Properties{p: newProperties()}
}

// Set stores value under name, returning the same builder for chaining.
func (b Properties) Set(name PropertyName, value string) Properties {
	b.p.set(name, value)
	return b
}

// Get reads back a previously Set value.
func (b Properties) Get(name PropertyName) (string, bool) {
	return b.p.get(name)
}

// Each iterates the set properties in insertion order.
func (b Properties) Each(f func(name PropertyName, value string)) {
	b.p.Each(f)
}

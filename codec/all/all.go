// Package all blank-imports every codec subpackage so that importing it
// alone registers the complete set of loaders and savers,
// the way image/png, image/gif etc. are pulled in by a single anonymous
// import of a format bundle rather than one per caller.
package all

import (
	_ "bitfont.dev/go/bitfont/codec/amiga"
	_ "bitfont.dev/go/bitfont/codec/bmfont"
	_ "bitfont.dev/go/bitfont/codec/cpi"
	_ "bitfont.dev/go/bitfont/codec/daisydot"
	_ "bitfont.dev/go/bitfont/codec/fzx"
	_ "bitfont.dev/go/bitfont/codec/macfont"
	_ "bitfont.dev/go/bitfont/codec/raw"
	_ "bitfont.dev/go/bitfont/codec/small"
	_ "bitfont.dev/go/bitfont/codec/winfnt"
)

package bmfont

import "bitfont.dev/go/bitfont/raster"

// packNode is one node of the Blackpawn binary-tree bin packer used by
// the encoder to lay glyph rasters out on a spritesheet").
type packNode struct {
	x, y, w, h  int
	used        bool
	left, right *packNode
}

func newPackRoot(w, h int) *packNode {
	return &packNode{w: w, h: h}
}

// insert finds a free leaf at least w x h and splits it, Blackpawn-style:
// a leaf becomes a used rect sized exactly w x h plus two child leaves
// (one beside it, one below), the split direction chosen to keep the
// larger remainder.
func (n *packNode) insert(w, h int) *packNode {
	if n.left != nil || n.right != nil {
		if fit := n.left.insert(w, h); fit != nil {
			return fit
		}
		return n.right.insert(w, h)
	}
	if n.used {
		return nil
	}
	if w > n.w || h > n.h {
		return nil
	}
	if w == n.w && h == n.h {
		n.used = true
		return n
	}
	dw, dh := n.w-w, n.h-h
	if dw > dh {
		n.left = &packNode{x: n.x, y: n.y, w: w, h: n.h}
		n.right = &packNode{x: n.x + w, y: n.y, w: dw, h: n.h}
	} else {
		n.left = &packNode{x: n.x, y: n.y, w: n.w, h: h}
		n.right = &packNode{x: n.x, y: n.y + h, w: n.w, h: dh}
	}
	n.used = true
	return n.left.insert(w, h)
}

// packResult is where a single glyph raster landed on its page.
type packResult struct {
	page       int
	x, y, w, h int
}

// packGlyphs packs rasters onto one or more square pages of side
// pageSize, opening a new page whenever the current one fills up.
func packGlyphs(rasters []raster.Raster, pageSize int) []packResult {
	out := make([]packResult, len(rasters))
	page := 0
	root := newPackRoot(pageSize, pageSize)
	for i, r := range rasters {
		w, h := r.Width()+1, r.Height()+1
		node := root.insert(w, h)
		if node == nil {
			page++
			root = newPackRoot(pageSize, pageSize)
			node = root.insert(w, h)
		}
		if node == nil {
			// glyph itself exceeds pageSize; give it its own oversized page.
			out[i] = packResult{page: page, x: 0, y: 0, w: r.Width(), h: r.Height()}
			page++
			root = newPackRoot(pageSize, pageSize)
			continue
		}
		out[i] = packResult{page: page, x: node.x, y: node.y, w: r.Width(), h: r.Height()}
	}
	return out
}

func pageCount(results []packResult) int {
	max := 0
	for _, r := range results {
		if r.page > max {
			max = r.page
		}
	}
	return max + 1
}

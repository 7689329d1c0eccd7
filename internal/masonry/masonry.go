// Package masonry computes grid-row spans for a masonry layout.
//
// The grid has a fixed row height R and row gap G. An item of rendered
// height H occupies span*R + (span-1)*G pixels, and span is the smallest
// integer for which that covers H:
//
//	span = ceil((H + G) / (R + G))
//
// Treating each row plus its gap as one unit, the item needs enough whole
// units to cover its height plus one trailing gap that is never drawn.
package masonry

// Grid is the row geometry of a rendered grid container.
type Grid struct {
	RowHeight int
	RowGap    int
}

// Valid reports whether spans can be computed against g.
func (g Grid) Valid() bool {
	return g.RowHeight > 0 && g.RowGap >= 0
}

// Height returns the pixel height covered by span rows.
func (g Grid) Height(span int) int {
	if span <= 0 {
		return 0
	}
	return span*g.RowHeight + (span-1)*g.RowGap
}

// Container is the rendering surface the spans are measured against.
type Container interface {
	// Grid returns the container's row geometry. ok is false while the
	// container is not mounted.
	Grid() (g Grid, ok bool)
	// RenderedHeight returns the current rendered height of item id.
	RenderedHeight(id string) (h int, ok bool)
}

// Span returns the number of grid rows an item of height h spans.
// Negative heights count as zero and the result is never below one.
// It panics if rowHeight+rowGap is not positive.
func Span(h, rowHeight, rowGap int) int {
	if h < 0 {
		h = 0
	}
	unit := rowHeight + rowGap
	if unit <= 0 {
		panic("masonry: row height plus gap must be positive")
	}
	span := (h + rowGap + unit - 1) / unit
	if span < 1 {
		span = 1
	}
	return span
}

// Span is Span against g.
func (g Grid) Span(h int) int {
	return Span(h, g.RowHeight, g.RowGap)
}

// Compute rescans every id and returns its span. It returns nil when c is
// nil or its grid is unavailable. Items whose height cannot be read are
// measured as zero and get the minimum span.
func Compute(c Container, ids []string) map[string]int {
	if c == nil {
		return nil
	}
	g, ok := c.Grid()
	if !ok || !g.Valid() {
		return nil
	}

	spans := make(map[string]int, len(ids))
	for _, id := range ids {
		h, _ := c.RenderedHeight(id)
		spans[id] = g.Span(h)
	}
	return spans
}

package masonry

import "sort"

// Breakpoint switches the grid to Columns once the container is at least
// MinWidth wide.
type Breakpoint struct {
	MinWidth int `toml:"min_width" json:"min_width"`
	Columns  int `toml:"columns" json:"columns"`
}

// Breakpoints is an ordered set of responsive column rules.
type Breakpoints []Breakpoint

// DefaultBreakpoints gives 1, 2, 3 and 4 columns at the sm, md and lg widths.
func DefaultBreakpoints() Breakpoints {
	return Breakpoints{
		{MinWidth: 0, Columns: 1},
		{MinWidth: 640, Columns: 2},
		{MinWidth: 768, Columns: 3},
		{MinWidth: 1024, Columns: 4},
	}
}

// Columns returns the column count for a container of the given width.
// It is at least one.
func (bs Breakpoints) Columns(width int) int {
	sorted := make(Breakpoints, len(bs))
	copy(sorted, bs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinWidth < sorted[j].MinWidth })

	cols := 1
	for _, b := range sorted {
		if width >= b.MinWidth && b.Columns > 0 {
			cols = b.Columns
		}
	}
	return cols
}

// Placement locates one item in the grid. Row is zero based and counted in
// grid rows.
type Placement struct {
	Column int
	Row    int
	Span   int
}

// Place assigns items, in order, to the column whose filled height is
// lowest, leftmost on ties. Spans below one count as one.
func Place(spans []int, columns int) []Placement {
	if columns < 1 {
		columns = 1
	}
	heights := make([]int, columns)
	out := make([]Placement, len(spans))
	for i, s := range spans {
		if s < 1 {
			s = 1
		}
		col := 0
		for c := 1; c < columns; c++ {
			if heights[c] < heights[col] {
				col = c
			}
		}
		out[i] = Placement{Column: col, Row: heights[col], Span: s}
		heights[col] += s
	}
	return out
}

// At returns the index of the placement covering (column, row), or -1.
func At(ps []Placement, column, row int) int {
	for i, p := range ps {
		if p.Column == column && row >= p.Row && row < p.Row+p.Span {
			return i
		}
	}
	return -1
}

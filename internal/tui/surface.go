package tui

import (
	"github.com/jfoltran/gallery/internal/gallery"
	"github.com/jfoltran/gallery/internal/masonry"
)

const (
	// gutter is the number of blank cells between two columns.
	gutter = 2
	// tileChrome is the border plus the caption line around a tile's image.
	tileChrome = 3
)

// surface is the terminal grid the gallery view measures tiles against.
// Heights are in lines, widths in cells.
type surface struct {
	grid        masonry.Grid
	breakpoints masonry.Breakpoints

	width int
	dims  map[string]gallery.Dimensions
}

func newSurface(grid masonry.Grid, bps masonry.Breakpoints) *surface {
	if len(bps) == 0 {
		bps = masonry.Breakpoints{{MinWidth: 0, Columns: 1}}
	}
	return &surface{
		grid:        grid,
		breakpoints: bps,
		dims:        make(map[string]gallery.Dimensions),
	}
}

// Grid reports the row geometry. The surface counts as mounted once the
// terminal size is known.
func (s *surface) Grid() (masonry.Grid, bool) {
	return s.grid, s.width > 0
}

// RenderedHeight is the height of the tile for id at the current column
// width. Terminal cells are about twice as tall as they are wide, so the
// image takes half as many lines as it takes cells at its aspect ratio.
func (s *surface) RenderedHeight(id string) (int, bool) {
	d, ok := s.dims[id]
	if !ok || !d.Valid() {
		return 0, false
	}
	inner := s.columnWidth() - 2
	if inner < 1 {
		inner = 1
	}
	lines := (d.HeightAt(inner) + 1) / 2
	if lines < 1 {
		lines = 1
	}
	return lines + tileChrome, true
}

func (s *surface) columns() int {
	return s.breakpoints.Columns(s.width)
}

func (s *surface) columnWidth() int {
	cols := s.columns()
	w := (s.width - (cols-1)*gutter) / cols
	if w < 1 {
		w = 1
	}
	return w
}

// rowTop returns the first line of grid row r.
func (s *surface) rowTop(r int) int {
	return r * (s.grid.RowHeight + s.grid.RowGap)
}

// cellAt maps a line/cell position inside the grid to a column and grid
// row. ok is false in a gutter.
func (s *surface) cellAt(x, line int) (col, row int, ok bool) {
	if x < 0 || line < 0 {
		return 0, 0, false
	}
	stride := s.columnWidth() + gutter
	col = x / stride
	if x%stride >= s.columnWidth() || col >= s.columns() {
		return 0, 0, false
	}
	unit := s.grid.RowHeight + s.grid.RowGap
	if unit <= 0 {
		return 0, 0, false
	}
	return col, line / unit, true
}

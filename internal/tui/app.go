package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/jfoltran/gallery/internal/gallery"
	"github.com/jfoltran/gallery/internal/lister"
	"github.com/jfoltran/gallery/internal/masonry"
	"github.com/jfoltran/gallery/internal/tui/components"
)

// Source is where the gallery gets its listing and image sizes from.
// *gallery.Client implements it.
type Source interface {
	gallery.Fetcher
	Probe(ctx context.Context, src string) (gallery.Dimensions, error)
}

// fetchMsg carries the settled listing fetch into the update loop.
type fetchMsg struct {
	images []lister.Descriptor
	err    error
}

// probeMsg carries one image's load result into the update loop.
type probeMsg struct {
	image lister.Descriptor
	dims  gallery.Dimensions
	err   error
}

// Model is the Bubble Tea model for the terminal gallery.
type Model struct {
	src     Source
	name    string
	ctx     context.Context
	cancel  context.CancelFunc
	view    *gallery.View
	surface *surface
	logger  zerolog.Logger

	selected int
	offset   int
	preview  bool
	height   int
}

// NewModel creates a gallery model mounted under ctx. Cancelling ctx, or
// quitting, discards any result still in flight. name labels the source in
// the status bar.
func NewModel(ctx context.Context, src Source, name string, grid masonry.Grid, bps masonry.Breakpoints, logger zerolog.Logger) Model {
	ctx, cancel := context.WithCancel(ctx)
	s := newSurface(grid, bps)
	return Model{
		src:     src,
		name:    name,
		ctx:     ctx,
		cancel:  cancel,
		view:    gallery.NewView(s),
		surface: s,
		logger:  logger.With().Str("component", "tui").Logger(),
	}
}

// Init starts the listing fetch.
func (m Model) Init() tea.Cmd {
	return fetchImages(m.ctx, m.src)
}

func fetchImages(ctx context.Context, src Source) tea.Cmd {
	return func() tea.Msg {
		imgs, err := src.Fetch(ctx)
		return fetchMsg{images: imgs, err: err}
	}
}

func probeImage(ctx context.Context, src Source, img lister.Descriptor) tea.Cmd {
	return func() tea.Msg {
		dims, err := src.Probe(ctx, img.Src)
		return probeMsg{image: img, dims: dims, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.WindowSizeMsg:
		m.surface.width = msg.Width
		m.height = msg.Height
		m.view.Resize()
		m = m.follow()

	case fetchMsg:
		if !m.view.ApplyFetch(m.ctx, msg.images, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error().Err(msg.err).Msg("error fetching images")
		}
		imgs := m.view.Images()
		cmds := make([]tea.Cmd, 0, len(imgs))
		for _, img := range imgs {
			cmds = append(cmds, probeImage(m.ctx, m.src, img))
		}
		return m, tea.Batch(cmds...)

	case probeMsg:
		if m.ctx.Err() != nil {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error().Err(msg.err).Str("src", msg.image.Src).Msg("failed to load image")
			m.view.ImageFailed(msg.image)
			m = m.clampSelection()
			return m, nil
		}
		m.surface.dims[msg.image.ID] = msg.dims
		m.view.ImageLoaded(msg.image.ID)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case "esc":
		m.preview = false
	case "enter":
		if len(m.view.Images()) > 0 {
			m.preview = !m.preview
		}
	case "down", "j":
		m = m.moveVertical(1)
	case "up", "k":
		m = m.moveVertical(-1)
	case "right", "l":
		m = m.moveHorizontal(1)
	case "left", "h":
		m = m.moveHorizontal(-1)
	case "pgdown":
		m.offset += m.gridHeight()
		m = m.clampOffset()
	case "pgup":
		m.offset -= m.gridHeight()
		m = m.clampOffset()
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if m.preview {
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.preview = false
		}
		return m
	}
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		m.offset += 3
		return m.clampOffset()
	case tea.MouseButtonWheelUp:
		m.offset -= 3
		return m.clampOffset()
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return m
		}
	default:
		return m
	}

	col, row, ok := m.surface.cellAt(msg.X, msg.Y-m.gridTop()+m.offset)
	if !ok || msg.Y < m.gridTop() {
		return m
	}
	if i := masonry.At(m.placements(), col, row); i >= 0 {
		m.selected = i
		m.preview = true
	}
	return m
}

// placements lays out the displayed images for the current width.
func (m Model) placements() []masonry.Placement {
	imgs := m.view.Images()
	spans := make([]int, len(imgs))
	for i, img := range imgs {
		spans[i] = m.view.Span(img.ID)
	}
	return masonry.Place(spans, m.surface.columns())
}

func (m Model) moveVertical(dir int) Model {
	ps := m.placements()
	if len(ps) == 0 {
		return m
	}
	cur := ps[m.selected]
	best := -1
	for i, p := range ps {
		if p.Column != cur.Column || i == m.selected {
			continue
		}
		if dir > 0 && p.Row > cur.Row && (best < 0 || p.Row < ps[best].Row) {
			best = i
		}
		if dir < 0 && p.Row < cur.Row && (best < 0 || p.Row > ps[best].Row) {
			best = i
		}
	}
	if best >= 0 {
		m.selected = best
	}
	return m.follow()
}

func (m Model) moveHorizontal(dir int) Model {
	ps := m.placements()
	if len(ps) == 0 {
		return m
	}
	cur := ps[m.selected]
	col := cur.Column + dir
	if col < 0 || col >= m.surface.columns() {
		return m
	}
	if i := masonry.At(ps, col, cur.Row); i >= 0 {
		m.selected = i
		return m.follow()
	}
	// Nothing at that height: take the lowest item above it, or the first.
	best := -1
	for i, p := range ps {
		if p.Column != col {
			continue
		}
		if best < 0 || (p.Row <= cur.Row && p.Row > ps[best].Row) {
			best = i
		}
	}
	if best >= 0 {
		m.selected = best
	}
	return m.follow()
}

func (m Model) clampSelection() Model {
	if n := len(m.view.Images()); m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	if len(m.view.Images()) == 0 {
		m.preview = false
	}
	return m.clampOffset()
}

// follow scrolls so that the selected tile is visible.
func (m Model) follow() Model {
	ps := m.placements()
	if m.selected >= len(ps) {
		return m.clampOffset()
	}
	p := ps[m.selected]
	top := m.surface.rowTop(p.Row)
	bottom := top + m.surface.grid.Height(p.Span)
	if bottom > m.offset+m.gridHeight() {
		m.offset = bottom - m.gridHeight()
	}
	if top < m.offset {
		m.offset = top
	}
	return m.clampOffset()
}

func (m Model) clampOffset() Model {
	maxOffset := len(m.gridLines()) - m.gridHeight()
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
	return m
}

// gridTop is the number of lines above the grid.
func (m Model) gridTop() int {
	n := 2 // title and status bar
	if m.view.Err() != "" {
		n++
	}
	return n
}

// gridHeight is the number of grid lines that fit on screen.
func (m Model) gridHeight() int {
	h := m.height - m.gridTop() - 1
	if h < 1 {
		h = 1
	}
	return h
}

// gridLines renders the full masonry grid, one string per terminal line.
func (m Model) gridLines() []string {
	imgs := m.view.Images()
	if len(imgs) == 0 || m.surface.width == 0 {
		return nil
	}
	ps := m.placements()
	cw := m.surface.columnWidth()
	blank := strings.Repeat(" ", cw)

	cols := make([][]string, m.surface.columns())
	for i, p := range ps {
		for len(cols[p.Column]) < m.surface.rowTop(p.Row) {
			cols[p.Column] = append(cols[p.Column], blank)
		}
		tile := components.RenderTile(components.Tile{
			Image:    imgs[i],
			Loaded:   m.view.Loaded(imgs[i].ID),
			Selected: i == m.selected,
		}, cw, m.surface.grid.Height(p.Span))
		for _, line := range strings.Split(tile, "\n") {
			cols[p.Column] = append(cols[p.Column], lipgloss.PlaceHorizontal(cw, lipgloss.Left, line))
		}
	}

	height := 0
	for _, c := range cols {
		height = max(height, len(c))
	}
	sep := strings.Repeat(" ", gutter)
	lines := make([]string, height)
	for y := range lines {
		parts := make([]string, len(cols))
		for x, c := range cols {
			if y < len(c) {
				parts[x] = c[y]
			} else {
				parts[x] = blank
			}
		}
		lines[y] = strings.Join(parts, sep)
	}
	return lines
}

// View renders the gallery.
func (m Model) View() string {
	w := m.surface.width
	if w == 0 {
		return "Initializing..."
	}
	if m.view.Loading() {
		return lipgloss.Place(w, m.height, lipgloss.Center, lipgloss.Center,
			loadingStyle.Render("Loading images..."))
	}

	imgs := m.view.Images()
	loaded := 0
	for _, img := range imgs {
		if m.view.Loaded(img.ID) {
			loaded++
		}
	}

	sections := []string{
		titleStyle.Width(w).Render("My Gallery"),
		components.RenderHeader(components.HeaderStats{
			Images:  len(imgs),
			Loaded:  loaded,
			Columns: m.surface.columns(),
			Source:  m.name,
		}, w),
	}
	if msg := m.view.Err(); msg != "" {
		sections = append(sections, errorStyle.Width(w).Align(lipgloss.Center).Render(msg))
	}

	switch {
	case m.preview && m.selected < len(imgs):
		img := imgs[m.selected]
		d := m.surface.dims[img.ID]
		sections = append(sections, components.RenderPreview(img, img.Src, d.Width, d.Height, w, m.gridHeight()))
	case m.view.Empty():
		sections = append(sections, lipgloss.PlaceHorizontal(w, lipgloss.Center, emptyStyle.Render(gallery.EmptyMessage)))
	default:
		lines := m.gridLines()
		end := min(m.offset+m.gridHeight(), len(lines))
		if m.offset < end {
			sections = append(sections, strings.Join(lines[m.offset:end], "\n"))
		}
	}

	sections = append(sections, helpStyle.Render("  ←↓↑→/hjkl: move  enter/click: open  esc: close  pgup/pgdn: scroll  q: quit"))
	return strings.Join(sections, "\n")
}

// Run starts the gallery in fullscreen mode and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, src Source, name string, grid masonry.Grid, bps masonry.Breakpoints, logger zerolog.Logger) error {
	model := NewModel(ctx, src, name, grid, bps, logger)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

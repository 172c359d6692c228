package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/screens"
)

var (
	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(screens.ColorGreyLight)).
			Background(lipgloss.Color(screens.ColorBlueDark)).
			Padding(0, 1)

	errorBarStyle = statusBarStyle.
			Background(lipgloss.Color(screens.ColorRedDark))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(screens.ColorGreyDark)).
			Background(lipgloss.Color(screens.ColorBlue)).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(screens.ColorInputHighlight)).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(screens.ColorGrey))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(screens.ColorInputHighlight)).
			Background(lipgloss.Color(screens.ColorBlueDark)).
			Padding(0, 1)
)

// Cell is one terminal cell of a rendered frame. An empty Text marks the
// second half of a wide rune.
type Cell struct {
	Text string
	Fg   colorful.Color
	Bg   colorful.Color
	Bold bool
}

type cellRect struct{ x0, y0, x1, y1 int }

func (r cellRect) intersect(o cellRect) cellRect {
	return cellRect{max(r.x0, o.x0), max(r.y0, o.y0), min(r.x1, o.x1), min(r.y1, o.y1)}
}

func (r cellRect) empty() bool { return r.x0 >= r.x1 || r.y0 >= r.y1 }

type styleKey struct {
	fg, bg colorful.Color
	bold   bool
}

// Renderer rasterises a scene tree onto a grid of terminal cells. One cell
// is 10x20 pixels times the pixel ratio. Fills and ink are blended over
// what is already painted by the node's world alpha.
type Renderer struct {
	cols, rows int
	ratio      float64
	background colorful.Color
	ink        colorful.Color

	cells  []Cell
	colors map[string]colorful.Color
	styles map[styleKey]lipgloss.Style
}

// NewRenderer returns a renderer for a cols x rows grid.
func NewRenderer(cols, rows int, ratio float64, background, ink string) *Renderer {
	if ratio <= 0 {
		ratio = 1
	}
	r := &Renderer{
		ratio:  ratio,
		colors: make(map[string]colorful.Color),
		styles: make(map[styleKey]lipgloss.Style),
	}
	r.background = r.color(background, colorful.Color{R: 1, G: 1, B: 1})
	r.ink = r.color(ink, colorful.Color{})
	r.Resize(cols, rows)
	return r
}

// Resize changes the grid size.
func (r *Renderer) Resize(cols, rows int) {
	r.cols, r.rows = max(cols, 0), max(rows, 0)
	r.cells = make([]Cell, r.cols*r.rows)
}

// Size returns the grid size in cells.
func (r *Renderer) Size() (int, int) { return r.cols, r.rows }

// Cell returns the cell at x, y from the last Render.
func (r *Renderer) Cell(x, y int) Cell {
	if x < 0 || y < 0 || x >= r.cols || y >= r.rows {
		return Cell{}
	}
	return r.cells[y*r.cols+x]
}

// Render paints root and returns one line per row.
func (r *Renderer) Render(root *scene.Node) string {
	for i := range r.cells {
		r.cells[i] = Cell{Text: " ", Fg: r.ink, Bg: r.background}
	}
	if root != nil {
		r.paint(root, scene.Point{}, cellRect{0, 0, r.cols, r.rows}, 1)
	}
	return r.String()
}

// String encodes the current cells, merging runs that share a style.
func (r *Renderer) String() string {
	var b, run strings.Builder
	for y := range r.rows {
		if y > 0 {
			b.WriteByte('\n')
		}
		var cur styleKey
		for x := range r.cols {
			c := r.cells[y*r.cols+x]
			if c.Text == "" {
				continue
			}
			k := styleKey{fg: c.Fg, bg: c.Bg, bold: c.Bold}
			if run.Len() > 0 && k != cur {
				b.WriteString(r.style(cur).Render(run.String()))
				run.Reset()
			}
			cur = k
			run.WriteString(c.Text)
		}
		if run.Len() > 0 {
			b.WriteString(r.style(cur).Render(run.String()))
			run.Reset()
		}
	}
	return b.String()
}

func (r *Renderer) paint(n *scene.Node, origin scene.Point, clip cellRect, alpha float64) {
	if !n.Visible || n.Alpha <= 0 {
		return
	}
	alpha *= n.Alpha
	g := scene.Point{X: origin.X + n.X, Y: origin.Y + n.Y}
	rect := r.toCells(g, n.Width, n.Height)
	area := rect.intersect(clip)

	if n.Fill != "" && !area.empty() {
		fill := r.color(n.Fill, r.background)
		for y := area.y0; y < area.y1; y++ {
			for x := area.x0; x < area.x1; x++ {
				c := &r.cells[y*r.cols+x]
				c.Bg = c.Bg.BlendRgb(fill, alpha).Clamped()
				c.Text = " "
				c.Bold = false
			}
		}
	}
	if n.Text != "" && !area.empty() {
		r.text(n, rect, area, alpha)
	}

	if n.Clip {
		clip = area
	}
	for _, child := range n.Children() {
		r.paint(child, g, clip, alpha)
	}
}

func (r *Renderer) text(n *scene.Node, rect, area cellRect, alpha float64) {
	inset := int(math.Round(n.Inset / r.cellWidth()))
	left, right := rect.x0+inset, rect.x1-inset
	avail := right - left
	if avail <= 0 {
		return
	}
	s := ansi.Truncate(strings.ReplaceAll(n.Text, "\n", " "), avail, "…")
	w := ansi.StringWidth(s)
	x := left
	switch n.Align {
	case scene.AlignCenter:
		x = left + (avail-w)/2
	case scene.AlignRight:
		x = right - w
	}
	y := rect.y0 + (rect.y1-rect.y0-1)/2
	if y < area.y0 || y >= area.y1 {
		return
	}
	ink := r.ink
	if n.Ink != "" {
		ink = r.color(n.Ink, r.ink)
	}
	for _, ch := range s {
		cw := ansi.StringWidth(string(ch))
		if cw == 0 {
			continue
		}
		if x >= area.x0 && x+cw <= area.x1 {
			c := &r.cells[y*r.cols+x]
			c.Text = string(ch)
			c.Fg = c.Bg.BlendRgb(ink, alpha).Clamped()
			c.Bold = n.Bold
			for i := 1; i < cw; i++ {
				r.cells[y*r.cols+x+i].Text = ""
			}
		}
		x += cw
	}
}

func (r *Renderer) cellWidth() float64 { return 10 * r.ratio }
func (r *Renderer) rowHeight() float64 { return 20 * r.ratio }

func (r *Renderer) toCells(g scene.Point, width, height float64) cellRect {
	cw, rh := r.cellWidth(), r.rowHeight()
	return cellRect{
		x0: int(math.Round(g.X / cw)),
		y0: int(math.Round(g.Y / rh)),
		x1: int(math.Round((g.X + width) / cw)),
		y1: int(math.Round((g.Y + height) / rh)),
	}
}

func (r *Renderer) color(hex string, fallback colorful.Color) colorful.Color {
	if c, ok := r.colors[hex]; ok {
		return c
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	r.colors[hex] = c
	return c
}

func (r *Renderer) style(k styleKey) lipgloss.Style {
	if s, ok := r.styles[k]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(k.fg.Hex())).
		Background(lipgloss.Color(k.bg.Hex())).
		Bold(k.bold)
	r.styles[k] = s
	return s
}

func (a *App) renderFooter(bindings []key.Binding) string {
	bg := lipgloss.Color(screens.ColorBlue)
	keyStyle := helpKeyStyle.Background(bg)
	descStyle := helpDescStyle.Background(bg)
	space := lipgloss.NewStyle().Background(bg).Render(" ")
	sep := lipgloss.NewStyle().Background(bg).Render("  ")

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(help.Key)+space+descStyle.Render(help.Desc))
	}
	content := strings.Join(parts, sep)
	return footerStyle.Width(a.viewWidth()).MaxHeight(1).Render(content)
}

func (a *App) renderStatus() string {
	style, text := statusBarStyle, a.status
	if a.statusErr {
		style = errorBarStyle
	}
	flat := strings.ReplaceAll(text, "\n", " ")
	flat = ansi.Truncate(flat, max(a.viewWidth()-2, 0), "…")
	return style.Width(a.viewWidth()).Render(flat)
}

func (a *App) placeWithFooter(body, statusLine, footer string) string {
	width := a.viewWidth()
	lines := splitLines(body)
	height := len(lines)
	if a.height > 0 {
		height = max(a.height-2, 1)
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]
	for i, line := range lines {
		lines[i] = padRight(ansi.Truncate(line, width, ""), width)
	}
	return strings.Join(lines, "\n") + "\n" + statusLine + "\n" + footer
}

func (a *App) viewWidth() int {
	if a.width > 0 {
		return a.width
	}
	cols, _ := a.renderer.Size()
	return cols
}

func (a *App) helpOverlay(body string) string {
	a.help.ShowAll = true
	box := modalStyle.Render(a.help.View(keyMap{registry: a.keys, scope: scopeFor(a.router.Current())}))
	lines := splitLines(box)
	cols, rows := a.renderer.Size()
	x := max((cols-maxLineWidth(lines))/2, 0)
	y := max((rows-len(lines))/2, 0)
	return overlayAt(body, box, x, y, cols, rows)
}

func overlayAt(base, overlay string, x, y, width, height int) string {
	baseLines := splitLines(base)
	overlayLines := splitLines(overlay)
	overlayWidth := maxLineWidth(overlayLines)
	for i, line := range overlayLines {
		row := y + i
		if row < 0 || row >= len(baseLines) || row >= height {
			continue
		}
		target := padRight(baseLines[row], width)
		left := ansi.Truncate(target, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		overlayLine := padRight(line, overlayWidth)
		pos := x + ansi.StringWidth(overlayLine)
		right := ansi.TruncateLeft(target, pos, "")
		baseLines[row] = left + overlayLine + right
	}
	return strings.Join(baseLines, "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func maxLineWidth(lines []string) int {
	w := 0
	for _, line := range lines {
		w = max(w, ansi.StringWidth(line))
	}
	return w
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

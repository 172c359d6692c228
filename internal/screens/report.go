package screens

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/service"
	"github.com/jask/cashflow/internal/tween"
	"github.com/jask/cashflow/internal/view"
)

// percentColumn is where percentages start, as a share of the width.
const percentColumn = 0.7

// ReportCategoryButton is one category of the report. It expands to show
// its sub-category lines.
type ReportCategoryButton struct {
	*view.Expandable

	header  *scene.Node
	name    *scene.Node
	percent *scene.Node
	total   *scene.Node
	group   service.ReportGroup
}

func (d Deps) reportColumns(parent *scene.Node, name, percent, total string, y float64) (*scene.Node, *scene.Node, *scene.Node) {
	w := d.Width
	px := percentColumn * w
	nameNode := parent.AddChild(d.label("name", name, 0, px))
	nameNode.Y = y
	percentNode := parent.AddChild(d.label("percent", percent, px, w*(1-percentColumn)))
	percentNode.Y = y
	percentNode.Inset = 0
	totalNode := parent.AddChild(d.label("total", total, 0, w))
	totalNode.Y = y
	totalNode.Align = scene.AlignRight
	return nameNode, percentNode, totalNode
}

func newReportCategoryButton(deps Deps, g service.ReportGroup) *ReportCategoryButton {
	w, h := deps.Width, deps.rowHeight()
	node := scene.NewNode("report."+g.Category.Name, w, h)
	node.Clip = true
	node.Fill = ColorGreyLight
	header := node.AddChild(scene.NewNode("header", w, h))
	if g.Category.Color != "" {
		swatch := header.AddChild(scene.NewNode("swatch", deps.cellWidth()/2, h))
		swatch.Fill = g.Category.Color
	}
	name, percent, total := deps.reportColumns(header, g.Category.Name,
		g.Percent.String()+"%", service.FormatAmount(g.TotalCents, deps.CurrencySymbol), 0)
	name.Bold = true

	lines := node.AddChild(scene.NewNode("lines", w, float64(len(g.Lines))*h))
	lines.Y = h
	lines.Fill = ColorGrey
	for i, line := range g.Lines {
		n, p, t := deps.reportColumns(lines, "  "+line.Category.Name,
			line.Percent.String()+"%", service.FormatAmount(line.TotalCents, deps.CurrencySymbol), float64(i)*h)
		n.Ink, p.Ink, t.Ink = ColorBlueDark, ColorBlueDark, ColorBlueDark
	}
	return &ReportCategoryButton{
		Expandable: view.NewExpandable(deps.Env, node, h, lines.Height, deps.ExpandTween, tween.OutExpo),
		header:     header,
		name:       name,
		percent:    percent,
		total:      total,
		group:      g,
	}
}

// Group returns the report group shown.
func (b *ReportCategoryButton) Group() service.ReportGroup { return b.group }

// Percent returns the percent label.
func (b *ReportCategoryButton) Percent() string { return b.percent.Text }

// Total returns the amount label.
func (b *ReportCategoryButton) Total() string { return b.total.Text }

// Report shows spending per category for a month. Left and right arrows
// move between months.
type Report struct {
	*view.Surface
	view.NopHooks

	deps    Deps
	pane    *Pane
	list    *view.List
	summary *Button
	buttons []*ReportCategoryButton
	month   time.Time
	report  service.Report
}

// NewReport builds the report screen.
func NewReport(deps Deps) *Report {
	r := &Report{deps: deps}
	r.pane = NewPane(deps.Env, "report", deps.Width, deps.Height)
	r.pane.Viewport().Fill = ColorGrey
	r.list = view.NewList(r.pane.Content(), 0)
	r.summary = deps.newButton("report.total", "Total", nil)
	r.summary.Node().Fill = ColorGrey
	r.summary.label.Bold = true
	r.Surface = view.NewSurface(deps.Env, r.pane.Viewport(), r, deps.surfaceOptions())
	return r
}

func (r *Report) Name() ScreenName { return ScreenReport }

func (r *Report) Header() HeaderSpec {
	title := TitleReport
	if !r.month.IsZero() {
		title += " · " + r.month.Format("January 2006")
	}
	return HeaderSpec{Title: title, Left: view.HeaderMenu}
}

// Buttons returns the category buttons, largest first.
func (r *Report) Buttons() []*ReportCategoryButton { return r.buttons }

// Data returns the report shown.
func (r *Report) Data() service.Report { return r.report }

// Total returns the total label.
func (r *Report) Total() string { return r.summary.Value() }

// OnUpdate shows the month containing data when it is a time.Time, and the
// current month otherwise.
func (r *Report) OnUpdate(data any, _ view.Mode) error {
	t, ok := data.(time.Time)
	if !ok {
		t = r.deps.now()
	}
	return r.load(t.In(r.deps.location()))
}

func (r *Report) load(t time.Time) error {
	from, to := service.MonthRange(t)
	report, err := r.deps.Reporter.Build(r.deps.context(), from, to)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	r.month, r.report = from, report

	for _, b := range r.buttons {
		b.RemoveEventListener(event.LayoutUpdate, r, r.onLayoutUpdate)
		b.Release()
	}
	r.buttons = r.buttons[:0]
	r.list.Clear()

	r.summary.SetValue(service.FormatAmount(report.TotalCents, r.deps.CurrencySymbol))
	r.list.Add(r.summary)
	var errs []error
	for _, g := range report.Groups {
		b := newReportCategoryButton(r.deps, g)
		if err := b.AddEventListener(event.LayoutUpdate, r, r.onLayoutUpdate); err != nil {
			errs = append(errs, err)
		}
		r.buttons = append(r.buttons, b)
		r.list.Add(b)
	}
	errs = append(errs, r.pane.ScrollTo(0, false))
	return errors.Join(errs...)
}

func (r *Report) onLayoutUpdate(any) error {
	r.list.Layout()
	r.pane.Clamp()
	return nil
}

func (r *Report) OnClick(p scene.Point) error {
	item, _ := r.list.ItemUnderPoint(p)
	b, ok := item.(*ReportCategoryButton)
	if !ok || !b.header.HitTest(p) {
		return nil
	}
	if b.IsOpen() {
		return b.Close(false)
	}
	if err := r.list.CloseAllExcept(b, false); err != nil {
		return err
	}
	return b.Open()
}

func (r *Report) OnHeaderClick(action view.HeaderAction) error {
	if action == view.HeaderMenu {
		return r.deps.navigate(ScreenMenu, view.ModeDefault, nil)
	}
	return nil
}

// HandleKey moves between months.
func (r *Report) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyLeft:
		return true, errCmd(r.load(r.month.AddDate(0, -1, 0)))
	case tea.KeyRight:
		return true, errCmd(r.load(r.month.AddDate(0, 1, 0)))
	}
	return false, nil
}

func (r *Report) Scroll(dy float64) { r.pane.ScrollBy(dy) }

func (r *Report) Release() {
	for _, b := range r.buttons {
		b.Release()
	}
	r.buttons = nil
	r.pane.Release()
	r.Surface.Release()
}

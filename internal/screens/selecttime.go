package screens

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/service"
	"github.com/jask/cashflow/internal/view"
)

const calendarCells = 42

// Calendar is a month grid starting on Monday.
type Calendar struct {
	node  *scene.Node
	title *scene.Node
	prev  *scene.Node
	next  *scene.Node
	days  [calendarCells]*scene.Node
	dates [calendarCells]time.Time

	month    time.Time
	selected time.Time
}

func newCalendar(deps Deps) *Calendar {
	rowH, cell := deps.rowHeight(), deps.cellWidth()
	colW := math.Max(3, math.Floor(deps.Width/7/cell)) * cell
	c := &Calendar{node: scene.NewNode("calendar", deps.Width, 8*rowH)}
	c.node.Fill = ColorGreyLight

	c.title = c.node.AddChild(scene.NewNode("month", deps.Width, rowH))
	c.title.Align = scene.AlignCenter
	c.title.Ink = ColorBlue
	c.title.Bold = true
	c.prev = c.node.AddChild(scene.NewNode("prev", 4*cell, rowH))
	c.prev.Text = "‹"
	c.prev.Inset = cell
	c.prev.Ink = ColorBlue
	c.next = c.node.AddChild(scene.NewNode("next", 4*cell, rowH))
	c.next.X = deps.Width - 4*cell
	c.next.Text = "›"
	c.next.Inset = cell
	c.next.Align = scene.AlignRight
	c.next.Ink = ColorBlue

	for i, wd := range []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"} {
		n := c.node.AddChild(scene.NewNode("weekday", colW, rowH))
		n.X = float64(i) * colW
		n.Y = rowH
		n.Text = wd
		n.Align = scene.AlignCenter
		n.Ink = ColorGreyDark
	}
	for i := range c.days {
		n := c.node.AddChild(scene.NewNode("day."+strconv.Itoa(i), colW, rowH))
		n.X = float64(i%7) * colW
		n.Y = float64(2+i/7) * rowH
		n.Align = scene.AlignCenter
		c.days[i] = n
	}
	return c
}

func (c *Calendar) Node() *scene.Node { return c.node }

// Selected returns the selected date and time.
func (c *Calendar) Selected() time.Time { return c.selected }

// Month returns the first day of the month shown.
func (c *Calendar) Month() time.Time { return c.month }

// Select shows t's month with t selected.
func (c *Calendar) Select(t time.Time) {
	c.selected = t
	c.month = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	c.render()
}

// ShiftMonth moves the grid by n months without changing the selection.
func (c *Calendar) ShiftMonth(n int) {
	c.month = c.month.AddDate(0, n, 0)
	c.render()
}

// SetDay selects d's date, keeping the time of day.
func (c *Calendar) SetDay(d time.Time) {
	s := c.selected
	c.Select(time.Date(d.Year(), d.Month(), d.Day(), s.Hour(), s.Minute(), 0, 0, s.Location()))
}

// Click handles a tap at p and reports whether it hit the calendar.
func (c *Calendar) Click(p scene.Point) bool {
	switch {
	case c.prev.HitTest(p):
		c.ShiftMonth(-1)
		return true
	case c.next.HitTest(p):
		c.ShiftMonth(1)
		return true
	}
	for i, n := range c.days {
		if n.HitTest(p) {
			c.SetDay(c.dates[i])
			return true
		}
	}
	return false
}

func (c *Calendar) render() {
	c.title.Text = c.month.Format("January 2006")
	offset := (int(c.month.Weekday()) + 6) % 7
	start := c.month.AddDate(0, 0, -offset)
	for i, n := range c.days {
		d := start.AddDate(0, 0, i)
		c.dates[i] = d
		n.Text = strconv.Itoa(d.Day())
		n.Fill = ""
		n.Bold = false
		switch {
		case sameDay(d, c.selected):
			n.Fill = ColorBlue
			n.Ink = ColorGreyLight
			n.Bold = true
		case d.Month() != c.month.Month():
			n.Ink = ColorGreyDark
		default:
			n.Ink = ColorBlue
		}
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SelectTime picks the date and time of the transaction being edited.
type SelectTime struct {
	*view.Surface
	view.NopHooks

	deps     Deps
	node     *scene.Node
	input    *scene.Node
	clock    textinput.Model
	calendar *Calendar
}

// NewSelectTime builds the picker.
func NewSelectTime(deps Deps) *SelectTime {
	s := &SelectTime{deps: deps}
	s.node = scene.NewNode("select-time", deps.Width, deps.Height)
	s.node.Clip = true
	s.node.Fill = ColorGrey
	s.input = s.node.AddChild(scene.NewNode("time", deps.Width, deps.rowHeight()))
	s.input.Fill = ColorGrey
	s.input.Inset = deps.cellWidth()
	s.input.Ink = ColorBlue
	s.calendar = newCalendar(deps)
	s.calendar.node.Y = 2 * deps.rowHeight()
	s.node.AddChild(s.calendar.node)
	s.clock = textinput.New()
	s.clock.Prompt = ""
	s.clock.CharLimit = 5
	s.Surface = view.NewSurface(deps.Env, s.node, s, deps.surfaceOptions())
	return s
}

func (s *SelectTime) Name() ScreenName { return ScreenSelectTime }

func (s *SelectTime) Header() HeaderSpec {
	return HeaderSpec{Title: TitleSelectTime, Left: view.HeaderCancel, Right: view.HeaderConfirm}
}

// Calendar returns the month grid.
func (s *SelectTime) Calendar() *Calendar { return s.calendar }

// Clock returns the time-of-day text.
func (s *SelectTime) Clock() string { return s.clock.Value() }

func (s *SelectTime) OnUpdate(data any, _ view.Mode) error {
	loc := s.deps.location()
	t := s.deps.now()
	switch v := data.(type) {
	case *service.Draft:
		if v != nil {
			t = v.Transaction.Date
		}
	case time.Time:
		t = v
	}
	t = t.In(loc)
	s.calendar.Select(t)
	s.clock.Blur()
	s.clock.SetValue(t.Format("15:04"))
	s.render()
	return nil
}

func (s *SelectTime) render() {
	text := "Time: " + s.clock.Value()
	s.input.Ink = ColorBlue
	if s.clock.Focused() {
		text += "▏"
		s.input.Ink = ColorInputHighlight
	}
	s.input.Text = text
}

// Value combines the selected day with the typed time.
func (s *SelectTime) Value() (time.Time, error) {
	clock, err := time.Parse("15:04", strings.TrimSpace(s.clock.Value()))
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: %w", s.clock.Value(), err)
	}
	d := s.calendar.Selected()
	return time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), 0, 0, d.Location()), nil
}

func (s *SelectTime) OnClick(p scene.Point) error {
	if s.input.HitTest(p) {
		s.clock.CursorEnd()
		s.clock.Focus()
		s.render()
		return nil
	}
	if s.clock.Focused() {
		s.clock.Blur()
		s.render()
	}
	s.calendar.Click(p)
	return nil
}

func (s *SelectTime) OnHeaderClick(action view.HeaderAction) error {
	switch action {
	case view.HeaderConfirm:
		t, err := s.Value()
		if err != nil {
			return err
		}
		t = t.UTC()
		req := service.ChangeRequest{Type: service.ChangeUpdate, Date: &t}
		return s.deps.changeTransaction(req, ScreenAddTransaction, editorMode(s.deps.Editor))
	case view.HeaderCancel:
		return s.deps.back(nil, false)
	}
	return nil
}

func (s *SelectTime) OnDisable() {
	s.clock.Blur()
	s.render()
}

// HandleKey edits the time when focused and moves the selected day with
// the arrow keys otherwise.
func (s *SelectTime) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if s.clock.Focused() {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			s.clock.Blur()
			s.render()
			return true, nil
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				if (r < '0' || r > '9') && r != ':' {
					return true, nil
				}
			}
		}
		var cmd tea.Cmd
		s.clock, cmd = s.clock.Update(msg)
		s.render()
		return true, cmd
	}
	days := 0
	switch msg.Type {
	case tea.KeyLeft:
		days = -1
	case tea.KeyRight:
		days = 1
	case tea.KeyUp:
		days = -7
	case tea.KeyDown:
		days = 7
	case tea.KeyPgUp:
		s.calendar.ShiftMonth(-1)
		return true, nil
	case tea.KeyPgDown:
		s.calendar.ShiftMonth(1)
		return true, nil
	default:
		return false, nil
	}
	s.calendar.SetDay(s.calendar.Selected().AddDate(0, 0, days))
	return true, nil
}

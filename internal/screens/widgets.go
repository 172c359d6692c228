package screens

import (
	"math"
	"time"

	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/tween"
	"github.com/jask/cashflow/internal/view"
)

// InputScrollDuration is how long the pane takes to bring a focused input
// to the top.
const InputScrollDuration = 500 * time.Millisecond

// Button is a single-row list item with an action.
type Button struct {
	node   *scene.Node
	label  *scene.Node
	value  *scene.Node
	action func() error
}

func (d Deps) newButton(name, text string, action func() error) *Button {
	node := scene.NewNode(name, d.Width, d.rowHeight())
	node.Fill = ColorGreyLight
	label := node.AddChild(d.label(name+".label", text, 0, d.Width))
	value := node.AddChild(d.label(name+".value", "", 0, d.Width))
	value.Align = scene.AlignRight
	value.Ink = ColorBlueDark
	return &Button{node: node, label: label, value: value, action: action}
}

func (b *Button) Node() *scene.Node { return b.node }

// SetValue sets the right-aligned value text.
func (b *Button) SetValue(text string) { b.value.Text = text }

// Value returns the right-aligned text.
func (b *Button) Value() string { return b.value.Text }

// Label returns the left text.
func (b *Button) Label() string { return b.label.Text }

// Press runs the button action.
func (b *Button) Press() error {
	if b.action == nil {
		return nil
	}
	return b.action()
}

// label returns a transparent one-row text node.
func (d Deps) label(name, text string, x, width float64) *scene.Node {
	n := scene.NewNode(name, width, d.rowHeight())
	n.X = x
	n.Text = text
	n.Ink = ColorBlue
	n.Inset = d.cellWidth()
	return n
}

// pressAt runs the Button under p in list, if any.
func pressAt(list *view.List, p scene.Point) error {
	item, _ := list.ItemUnderPoint(p)
	if b, ok := item.(*Button); ok {
		return b.Press()
	}
	return nil
}

// Pane is a clipped viewport over taller content. ScrollTo can animate with
// its own tween, independent of the screen's show/hide tween.
type Pane struct {
	env      view.Env
	viewport *scene.Node
	content  *scene.Node
	tween    *tween.Driver

	offset     float64
	from, to   float64
	registered bool
}

// NewPane returns a viewport of the given size with an empty content node.
func NewPane(env view.Env, name string, width, height float64) *Pane {
	viewport := scene.NewNode(name, width, height)
	viewport.Clip = true
	content := viewport.AddChild(scene.NewNode(name+".content", width, 0))
	return &Pane{
		env:      env,
		viewport: viewport,
		content:  content,
		tween:    tween.New(InputScrollDuration, tween.OutExpo, env.Listeners),
	}
}

// Viewport returns the clipping node.
func (p *Pane) Viewport() *scene.Node { return p.viewport }

// Content returns the scrolled node.
func (p *Pane) Content() *scene.Node { return p.content }

// Offset returns how far the content is scrolled up.
func (p *Pane) Offset() float64 { return p.offset }

// Max returns the largest valid offset.
func (p *Pane) Max() float64 {
	return math.Max(0, p.content.Height-p.viewport.Height)
}

// Scrolling reports whether an animated scroll is running.
func (p *Pane) Scrolling() bool { return p.tween.Running() }

// ScrollBy moves the content immediately, cancelling any animated scroll.
func (p *Pane) ScrollBy(dy float64) {
	p.stop()
	p.set(p.offset + dy)
}

// ScrollTo moves to offset y, animated or not.
func (p *Pane) ScrollTo(y float64, animate bool) error {
	y = math.Max(0, math.Min(p.Max(), y))
	if !animate || y == p.offset {
		p.stop()
		p.set(y)
		return nil
	}
	if !p.registered {
		if err := p.env.Ticker.AddEventListener(event.Tick, p, p.onTick); err != nil {
			return err
		}
		if err := p.tween.AddEventListener(event.Complete, p, p.onComplete); err != nil {
			p.env.Ticker.RemoveEventListener(event.Tick, p, p.onTick)
			return err
		}
		p.registered = true
	}
	p.from, p.to = p.offset, y
	p.tween.Restart(false)
	return nil
}

// Reveal scrolls the least distance that brings n fully into view.
func (p *Pane) Reveal(n *scene.Node, animate bool) error {
	top := n.Global().Y - p.content.Global().Y
	switch {
	case top < p.offset:
		return p.ScrollTo(top, animate)
	case top+n.Height > p.offset+p.viewport.Height:
		return p.ScrollTo(top+n.Height-p.viewport.Height, animate)
	}
	return nil
}

// Clamp re-applies the scroll limits after the content height changed.
func (p *Pane) Clamp() { p.set(p.offset) }

// Release returns the pane's listener records.
func (p *Pane) Release() {
	p.stop()
	p.tween.Release()
}

func (p *Pane) set(y float64) {
	p.offset = math.Max(0, math.Min(p.Max(), y))
	p.content.Y = -math.Round(p.offset)
}

func (p *Pane) stop() {
	p.tween.Stop()
	if p.registered {
		p.env.Ticker.RemoveEventListener(event.Tick, p, p.onTick)
		p.tween.RemoveEventListener(event.Complete, p, p.onComplete)
		p.registered = false
	}
}

func (p *Pane) onTick(payload any) error {
	delta, _ := payload.(time.Duration)
	if err := p.tween.Advance(delta); err != nil {
		return err
	}
	if p.tween.Running() {
		p.set(p.from + (p.to-p.from)*p.tween.Progress())
		p.env.KeepAwake()
	}
	return nil
}

func (p *Pane) onComplete(any) error {
	p.stop()
	p.set(p.to)
	return nil
}

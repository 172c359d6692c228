package screens

import (
	"math"

	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/view"
)

// headerButtonCells is the width of each header action, in cells.
const headerButtonCells = 10

var headerLabels = map[view.HeaderAction]string{
	view.HeaderMenu:    "≡ Menu",
	view.HeaderAdd:     "+ Add",
	view.HeaderBack:    "‹ Back",
	view.HeaderCancel:  "✕ Cancel",
	view.HeaderConfirm: "✓ Save",
}

// Header is the bar above the screens. Taps on its left and right actions
// are dispatched as event.Click with the view.HeaderAction as payload; the
// shown screen's surface listens for them.
type Header struct {
	node  *scene.Node
	title *scene.Node
	left  *scene.Node
	right *scene.Node

	dispatcher *event.Dispatcher
	input      event.Target
	spec       HeaderSpec
	threshold  float64
	pressed    bool
	down       scene.Point
}

// NewHeader returns a header one row tall spanning width.
func NewHeader(env view.Env, width float64) *Header {
	r := env.PixelRatio
	if r <= 0 {
		r = 1
	}
	rowH := 20 * r
	buttonW := headerButtonCells * 10 * r

	node := scene.NewNode("header", width, rowH)
	node.Fill = ColorBlue
	title := node.AddChild(scene.NewNode("header.title", width, rowH))
	title.Align = scene.AlignCenter
	title.Ink = ColorGreyLight
	title.Bold = true
	left := node.AddChild(scene.NewNode("header.left", buttonW, rowH))
	left.Ink = ColorGrey
	left.Inset = 10 * r
	right := node.AddChild(scene.NewNode("header.right", buttonW, rowH))
	right.X = width - buttonW
	right.Ink = ColorGrey
	right.Align = scene.AlignRight
	right.Inset = 10 * r

	return &Header{
		node:       node,
		title:      title,
		left:       left,
		right:      right,
		dispatcher: event.NewDispatcher(env.Listeners),
		threshold:  view.ClickThreshold * r,
	}
}

// Node returns the header bar.
func (h *Header) Node() *scene.Node { return h.node }

// Spec returns what the header currently shows.
func (h *Header) Spec() HeaderSpec { return h.spec }

// Set changes the title and actions.
func (h *Header) Set(spec HeaderSpec) {
	h.spec = spec
	h.title.Text = spec.Title
	h.left.Text = headerLabels[spec.Left]
	h.right.Text = headerLabels[spec.Right]
}

// Resize stretches the bar to width.
func (h *Header) Resize(width float64) {
	h.node.Width = width
	h.title.Width = width
	h.right.X = width - h.right.Width
}

// Attach listens for taps on input, normally the stage.
func (h *Header) Attach(input event.Target) error {
	if err := input.AddEventListener(event.PointerDown, h, h.onPointerDown); err != nil {
		return err
	}
	if err := input.AddEventListener(event.PointerUp, h, h.onPointerUp); err != nil {
		input.RemoveEventListener(event.PointerDown, h, h.onPointerDown)
		return err
	}
	h.input = input
	return nil
}

// Trigger dispatches action as if it had been tapped. Actions the header
// does not currently show are ignored.
func (h *Header) Trigger(action view.HeaderAction) error {
	if action == view.HeaderNone || (action != h.spec.Left && action != h.spec.Right) {
		return nil
	}
	return h.dispatcher.DispatchEvent(event.Click, action)
}

func (h *Header) AddEventListener(typ event.Type, scope any, handler event.Handler) error {
	return h.dispatcher.AddEventListener(typ, scope, handler)
}

func (h *Header) RemoveEventListener(typ event.Type, scope any, handler event.Handler) {
	h.dispatcher.RemoveEventListener(typ, scope, handler)
}

// Release detaches from input and returns listener records.
func (h *Header) Release() {
	if h.input != nil {
		h.input.RemoveEventListener(event.PointerDown, h, h.onPointerDown)
		h.input.RemoveEventListener(event.PointerUp, h, h.onPointerUp)
		h.input = nil
	}
	h.dispatcher.Release()
}

func (h *Header) onPointerDown(payload any) error {
	p, ok := payload.(scene.Point)
	h.pressed = ok && h.node.HitTest(p)
	h.down = p
	return nil
}

func (h *Header) onPointerUp(payload any) error {
	if !h.pressed {
		return nil
	}
	h.pressed = false
	p, _ := payload.(scene.Point)
	if math.Hypot(p.X-h.down.X, p.Y-h.down.Y) > h.threshold {
		return nil
	}
	switch {
	case h.left.HitTest(p):
		return h.Trigger(h.spec.Left)
	case h.right.HitTest(p):
		return h.Trigger(h.spec.Right)
	}
	return nil
}

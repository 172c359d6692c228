package view

import (
	"math"
	"time"

	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/tween"
)

// DefaultSwipeDuration is the snap tween length.
const DefaultSwipeDuration = 250 * time.Millisecond

type rowState int

const (
	rowIdle rowState = iota
	rowDragging
	rowSnapping
)

// SwipeRow slides a foreground layer over a fixed background to reveal
// actions behind it. Position 0 is closed and -openOffset fully open. The
// row emits event.Complete with itself as payload when a snap settles.
type SwipeRow struct {
	env        Env
	node       *scene.Node
	surface    *scene.Node
	tween      *tween.Driver
	dispatcher *event.Dispatcher

	openOffset    float64
	position      float64
	state         rowState
	downX         float64
	startPosition float64
	from, to      float64
	registered    bool
}

// NewSwipeRow returns a closed row. surface must be a child of node and is
// the layer that moves.
func NewSwipeRow(env Env, node, surface *scene.Node, openOffset float64, duration time.Duration) *SwipeRow {
	if duration <= 0 {
		duration = DefaultSwipeDuration
	}
	node.Clip = true
	return &SwipeRow{
		env:        env,
		node:       node,
		surface:    surface,
		tween:      tween.New(duration, tween.OutCubic, env.Listeners),
		dispatcher: event.NewDispatcher(env.Listeners),
		openOffset: openOffset,
	}
}

// Node returns the row container.
func (r *SwipeRow) Node() *scene.Node { return r.node }

// Surface returns the sliding layer.
func (r *SwipeRow) Surface() *scene.Node { return r.surface }

// Position returns the current horizontal offset.
func (r *SwipeRow) Position() float64 { return r.position }

// OpenOffset returns how far the row slides when open.
func (r *SwipeRow) OpenOffset() float64 { return r.openOffset }

// SetOpenOffset changes the reveal width, clamping the current position.
func (r *SwipeRow) SetOpenOffset(offset float64) {
	r.openOffset = offset
	r.setPosition(r.position)
}

// IsOpen reports whether the row is anywhere but fully closed.
func (r *SwipeRow) IsOpen() bool { return r.position != 0 || r.state == rowDragging }

// Dragging reports whether the row follows the pointer.
func (r *SwipeRow) Dragging() bool { return r.state == rowDragging }

// SwipeStart makes the row follow the pointer horizontally.
func (r *SwipeRow) SwipeStart(Direction) error {
	if err := r.register(); err != nil {
		return err
	}
	r.tween.Stop()
	r.state = rowDragging
	r.downX = r.env.Pointer.PointerPosition().X
	r.startPosition = r.position
	return nil
}

// SwipeEnd snaps to whichever of closed or open is nearer.
func (r *SwipeRow) SwipeEnd() error {
	if r.state != rowDragging {
		return nil
	}
	target := 0.0
	if r.position < -r.openOffset/2 {
		target = -r.openOffset
	}
	return r.snapTo(target)
}

// Open slides the row fully open.
func (r *SwipeRow) Open(immediate bool) error {
	if immediate {
		return r.settle(-r.openOffset)
	}
	return r.snapTo(-r.openOffset)
}

// Close slides the row shut, or snaps it when immediate is set.
func (r *SwipeRow) Close(immediate bool) error {
	if immediate {
		return r.settle(0)
	}
	return r.snapTo(0)
}

func (r *SwipeRow) AddEventListener(typ event.Type, scope any, handler event.Handler) error {
	return r.dispatcher.AddEventListener(typ, scope, handler)
}

func (r *SwipeRow) RemoveEventListener(typ event.Type, scope any, handler event.Handler) {
	r.dispatcher.RemoveEventListener(typ, scope, handler)
}

// Release stops the row and returns its listener records.
func (r *SwipeRow) Release() {
	r.unregister()
	r.tween.Release()
	r.dispatcher.Release()
}

// Reset closes the row without notifying anyone. Pooled rows call it before
// going back to their pool.
func (r *SwipeRow) Reset() {
	r.unregister()
	r.tween.Stop()
	r.state = rowIdle
	r.setPosition(0)
}

func (r *SwipeRow) snapTo(target float64) error {
	if r.position == target && r.state != rowDragging {
		return nil
	}
	if err := r.register(); err != nil {
		return err
	}
	r.from, r.to = r.position, target
	r.state = rowSnapping
	r.tween.Restart(false)
	return nil
}

func (r *SwipeRow) settle(target float64) error {
	r.tween.Stop()
	r.unregister()
	r.state = rowIdle
	r.setPosition(target)
	return r.dispatcher.DispatchEvent(event.Complete, r)
}

func (r *SwipeRow) setPosition(x float64) {
	r.position = math.Max(-r.openOffset, math.Min(0, x))
	r.surface.X = r.position
}

func (r *SwipeRow) register() error {
	if r.registered {
		return nil
	}
	if err := r.env.Ticker.AddEventListener(event.Tick, r, r.onTick); err != nil {
		return err
	}
	if err := r.tween.AddEventListener(event.Complete, r, r.onTweenComplete); err != nil {
		r.env.Ticker.RemoveEventListener(event.Tick, r, r.onTick)
		return err
	}
	r.registered = true
	return nil
}

func (r *SwipeRow) unregister() {
	if !r.registered {
		return
	}
	r.env.Ticker.RemoveEventListener(event.Tick, r, r.onTick)
	r.tween.RemoveEventListener(event.Complete, r, r.onTweenComplete)
	r.registered = false
}

func (r *SwipeRow) onTick(payload any) error {
	switch r.state {
	case rowDragging:
		x := r.env.Pointer.PointerPosition().X
		r.setPosition(r.startPosition + x - r.downX)
	case rowSnapping:
		delta, _ := payload.(time.Duration)
		if err := r.tween.Advance(delta); err != nil {
			return err
		}
		if r.tween.Running() {
			r.setPosition(r.from + (r.to-r.from)*r.tween.Progress())
			r.env.KeepAwake()
		}
	}
	return nil
}

func (r *SwipeRow) onTweenComplete(any) error {
	if r.state != rowSnapping {
		return nil
	}
	return r.settle(r.to)
}

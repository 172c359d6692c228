package view

import (
	"math"
	"time"

	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/logging"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/tween"
)

// Expandable animates a node's height between collapsed and
// collapsed+expansion. It emits event.LayoutUpdate on every height change and
// event.Complete once a transition settles; both carry the Expandable.
type Expandable struct {
	env        Env
	node       *scene.Node
	tween      *tween.Driver
	dispatcher *event.Dispatcher

	state      TransitionState
	collapsed  float64
	expansion  float64
	from, to   float64
	registered bool
}

// NewExpandable returns a closed component sized to collapsed.
func NewExpandable(env Env, node *scene.Node, collapsed, expansion float64, duration time.Duration, easing tween.Easing) *Expandable {
	if duration <= 0 {
		duration = DefaultShowDuration
	}
	node.Height = collapsed
	return &Expandable{
		env:        env,
		node:       node,
		tween:      tween.New(duration, easing, env.Listeners),
		dispatcher: event.NewDispatcher(env.Listeners),
		state:      Closed,
		collapsed:  collapsed,
		expansion:  expansion,
	}
}

// Node returns the animated node.
func (e *Expandable) Node() *scene.Node { return e.node }

// State returns the open/close state.
func (e *Expandable) State() TransitionState { return e.state }

// Height returns the current reported height.
func (e *Expandable) Height() float64 { return e.node.Height }

// IsOpen reports whether the component is open or opening.
func (e *Expandable) IsOpen() bool { return e.state == Open || e.state == Opening }

// Animating reports whether a transition tween is running.
func (e *Expandable) Animating() bool { return e.tween.Running() }

// SetExpansion changes the expanded extra height. An open component snaps
// to the new size.
func (e *Expandable) SetExpansion(expansion float64) error {
	e.expansion = expansion
	if e.state == Open {
		e.node.Height = e.collapsed + expansion
		return e.dispatcher.DispatchEvent(event.LayoutUpdate, e)
	}
	return nil
}

// Open starts opening from CLOSED or CLOSING.
func (e *Expandable) Open() error {
	if e.state != Closed && e.state != Closing {
		e.ignored("open")
		return nil
	}
	if err := e.register(); err != nil {
		return err
	}
	e.state = Opening
	e.from, e.to = e.node.Height, e.collapsed+e.expansion
	e.tween.Restart(false)
	return nil
}

// Close starts closing from OPEN or OPENING. With immediate set the
// component snaps shut without animating. Closing an already closed
// component still emits event.Complete.
func (e *Expandable) Close(immediate bool) error {
	switch e.state {
	case Closed:
		return e.dispatcher.DispatchEvent(event.Complete, e)
	case Closing:
		if !immediate {
			e.ignored("close")
			return nil
		}
	}
	if immediate {
		e.tween.Stop()
		e.unregister()
		e.state = Closed
		e.node.Height = e.collapsed
		if err := e.dispatcher.DispatchEvent(event.LayoutUpdate, e); err != nil {
			return err
		}
		return e.dispatcher.DispatchEvent(event.Complete, e)
	}
	if err := e.register(); err != nil {
		return err
	}
	e.state = Closing
	e.from, e.to = e.node.Height, e.collapsed
	e.tween.Restart(true)
	return nil
}

// Toggle opens a closed component and closes an open one.
func (e *Expandable) Toggle() error {
	if e.IsOpen() {
		return e.Close(false)
	}
	return e.Open()
}

func (e *Expandable) AddEventListener(typ event.Type, scope any, handler event.Handler) error {
	return e.dispatcher.AddEventListener(typ, scope, handler)
}

func (e *Expandable) RemoveEventListener(typ event.Type, scope any, handler event.Handler) {
	e.dispatcher.RemoveEventListener(typ, scope, handler)
}

// Release stops the component and returns its listener records.
func (e *Expandable) Release() {
	e.unregister()
	e.tween.Release()
	e.dispatcher.Release()
}

func (e *Expandable) register() error {
	if e.registered {
		return nil
	}
	if err := e.env.Ticker.AddEventListener(event.Tick, e, e.onTick); err != nil {
		return err
	}
	if err := e.tween.AddEventListener(event.Complete, e, e.onTweenComplete); err != nil {
		e.env.Ticker.RemoveEventListener(event.Tick, e, e.onTick)
		return err
	}
	e.registered = true
	return nil
}

func (e *Expandable) unregister() {
	if !e.registered {
		return
	}
	e.env.Ticker.RemoveEventListener(event.Tick, e, e.onTick)
	e.tween.RemoveEventListener(event.Complete, e, e.onTweenComplete)
	e.registered = false
}

func (e *Expandable) onTick(payload any) error {
	delta, _ := payload.(time.Duration)
	if err := e.tween.Advance(delta); err != nil {
		return err
	}
	if !e.tween.Running() {
		return nil
	}
	e.node.Height = math.Round(e.from + (e.to-e.from)*e.tween.Progress())
	e.env.KeepAwake()
	return e.dispatcher.DispatchEvent(event.LayoutUpdate, e)
}

func (e *Expandable) onTweenComplete(any) error {
	switch e.state {
	case Opening:
		e.state = Open
		e.node.Height = e.collapsed + e.expansion
	case Closing:
		e.state = Closed
		e.node.Height = e.collapsed
	default:
		e.ignored("tween complete")
		return nil
	}
	e.unregister()
	if err := e.dispatcher.DispatchEvent(event.LayoutUpdate, e); err != nil {
		return err
	}
	return e.dispatcher.DispatchEvent(event.Complete, e)
}

func (e *Expandable) ignored(call string) {
	logging.Trace("view.ignored_transition", map[string]any{
		"call":  call,
		"state": e.state.String(),
		"node":  e.node.Name,
	})
}

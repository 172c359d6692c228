// Package ticker provides the process-wide frame source.
//
// Components subscribe to event.Tick only while they have something to
// animate and unsubscribe as soon as they settle. When nothing is subscribed
// the ticker is asleep and the UI loop stops scheduling frames.
package ticker

import (
	"time"

	"github.com/jask/cashflow/internal/event"
)

// DefaultFrameRate is used when a non-positive rate is configured.
const DefaultFrameRate = 60

// Ticker dispatches event.Tick once per frame with the frame delta
// (time.Duration) as payload.
type Ticker struct {
	dispatcher *event.Dispatcher
	frame      time.Duration
	elapsed    time.Duration
	frames     uint64
	busy       bool
}

// New returns a ticker drawing listener records from listeners.
func New(listeners *event.ListenerPool, frameRate int) *Ticker {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return &Ticker{
		dispatcher: event.NewDispatcher(listeners),
		frame:      time.Second / time.Duration(frameRate),
	}
}

// AddEventListener subscribes handler. A new tick subscriber keeps the
// ticker busy so it receives at least one frame.
func (t *Ticker) AddEventListener(typ event.Type, scope any, handler event.Handler) error {
	if err := t.dispatcher.AddEventListener(typ, scope, handler); err != nil {
		return err
	}
	if typ == event.Tick {
		t.busy = true
	}
	return nil
}

func (t *Ticker) RemoveEventListener(typ event.Type, scope any, handler event.Handler) {
	t.dispatcher.RemoveEventListener(typ, scope, handler)
}

// Tick advances the clock by delta and notifies subscribers in registration
// order.
func (t *Ticker) Tick(delta time.Duration) error {
	if delta < 0 {
		delta = 0
	}
	t.elapsed += delta
	t.frames++
	t.busy = false
	return t.dispatcher.DispatchEvent(event.Tick, delta)
}

// KeepAwake asks for another frame after the current one. Subscribers call
// it while an animation is still running.
func (t *Ticker) KeepAwake() { t.busy = true }

// Animating reports whether anything asked for another frame since the last
// tick started.
func (t *Ticker) Animating() bool { return t.busy }

// Step ticks one nominal frame.
func (t *Ticker) Step() error {
	return t.Tick(t.frame)
}

// Awake reports whether anything is subscribed to ticks.
func (t *Ticker) Awake() bool {
	return t.dispatcher.Count(event.Tick) > 0
}

// Subscribers returns the number of tick listeners.
func (t *Ticker) Subscribers() int {
	return t.dispatcher.Count(event.Tick)
}

// Frame returns the nominal frame interval.
func (t *Ticker) Frame() time.Duration { return t.frame }

// Elapsed returns the total time ticked so far.
func (t *Ticker) Elapsed() time.Duration { return t.elapsed }

// Frames returns the number of ticks dispatched.
func (t *Ticker) Frames() uint64 { return t.frames }

// Release drops every subscription.
func (t *Ticker) Release() {
	t.dispatcher.Release()
}

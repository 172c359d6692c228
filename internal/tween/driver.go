// Package tween drives time-bounded progress from 0 to 1.
//
// A Driver does not subscribe to the frame ticker itself. Its owner
// subscribes while the driver runs and forwards each frame delta to Advance.
// Completion is announced with event.Complete on the driver's own
// dispatcher; owners chain state transitions off that event rather than
// polling Running.
package tween

import (
	"time"

	"github.com/jask/cashflow/internal/event"
)

// Driver is a single progress generator.
//
// Progress is exactly 0 when a run starts and exactly 1 when it completes.
// In between it is the easing curve applied to elapsed/duration; a reverse
// run mirrors the curve (1 - easing(1 - t)) so that an ease-out show becomes
// an ease-in hide while still counting up.
type Driver struct {
	duration   time.Duration
	easing     Easing
	elapsed    time.Duration
	progress   float64
	running    bool
	reverse    bool
	dispatcher *event.Dispatcher
}

// completionSlack absorbs the nanoseconds lost when a frame length such as
// time.Second/60 is truncated, so whole frames land on the duration.
const completionSlack = time.Microsecond

// New returns a stopped driver. A nil easing means OutExpo.
func New(duration time.Duration, easing Easing, listeners *event.ListenerPool) *Driver {
	if easing == nil {
		easing = OutExpo
	}
	return &Driver{
		duration:   duration,
		easing:     easing,
		dispatcher: event.NewDispatcher(listeners),
	}
}

// Start begins a run unless one is already in progress.
func (d *Driver) Start(reverse bool) {
	if d.running {
		return
	}
	d.begin(reverse)
}

// Restart begins a new run even if one is in progress.
func (d *Driver) Restart(reverse bool) {
	d.begin(reverse)
}

func (d *Driver) begin(reverse bool) {
	d.reverse = reverse
	d.elapsed = 0
	d.progress = 0
	d.running = true
}

// Stop halts the run without announcing completion.
func (d *Driver) Stop() {
	d.running = false
}

// Advance moves a running driver forward by delta. When the run reaches its
// duration, progress is pinned to 1, the driver stops and event.Complete is
// dispatched with the driver as payload.
func (d *Driver) Advance(delta time.Duration) error {
	if !d.running {
		return nil
	}
	if delta > 0 {
		d.elapsed += delta
	}
	if d.duration-d.elapsed <= completionSlack {
		d.elapsed = d.duration
		d.progress = 1
		d.running = false
		return d.dispatcher.DispatchEvent(event.Complete, d)
	}
	t := float64(d.elapsed) / float64(d.duration)
	var p float64
	if d.reverse {
		p = 1 - d.easing(1-t)
	} else {
		p = d.easing(t)
	}
	d.progress = clampUnit(p)
	return nil
}

// Progress returns eased progress in [0, 1].
func (d *Driver) Progress() float64 { return d.progress }

// Running reports whether the driver is mid-run.
func (d *Driver) Running() bool { return d.running }

// Reversed reports whether the current or last run was reversed.
func (d *Driver) Reversed() bool { return d.reverse }

// Elapsed returns time spent in the current or last run.
func (d *Driver) Elapsed() time.Duration { return d.elapsed }

// Duration returns the run length.
func (d *Driver) Duration() time.Duration { return d.duration }

// SetDuration changes the length of subsequent runs.
func (d *Driver) SetDuration(duration time.Duration) { d.duration = duration }

func (d *Driver) AddEventListener(typ event.Type, scope any, handler event.Handler) error {
	return d.dispatcher.AddEventListener(typ, scope, handler)
}

func (d *Driver) RemoveEventListener(typ event.Type, scope any, handler event.Handler) {
	d.dispatcher.RemoveEventListener(typ, scope, handler)
}

// Release stops the driver and returns its listener records to the pool.
func (d *Driver) Release() {
	d.running = false
	d.dispatcher.Release()
}

// Package view holds the interactive building blocks screens are made of:
// Surface (show/hide lifecycle and tap-vs-swipe input), Expandable
// (open/close height animation), SwipeRow (horizontal reveal) and List.
//
// Everything here runs on the UI loop. Components subscribe to the frame
// ticker only while something is moving and drop the subscription as soon as
// they settle.
package view

import (
	"time"

	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/scene"
)

// TransitionState is the lifecycle position of a Surface or an Expandable.
type TransitionState int

const (
	Hidden TransitionState = iota
	Showing
	Shown
	Hiding
	Closed
	Opening
	Open
	Closing
)

var transitionNames = [...]string{"hidden", "showing", "shown", "hiding", "closed", "opening", "open", "closing"}

func (s TransitionState) String() string {
	if int(s) < len(transitionNames) {
		return transitionNames[s]
	}
	return "unknown"
}

// EventLevel is how much of a Surface's subscription ladder is active.
// Level1 is the ticker plus tween completion; Level2 adds pointer and header
// input.
type EventLevel int

const (
	LevelNone EventLevel = iota
	Level1
	Level2
)

func (l EventLevel) String() string {
	switch l {
	case Level1:
		return "level1"
	case Level2:
		return "level2"
	}
	return "none"
}

// InteractiveState tracks a pointer gesture in progress.
type InteractiveState int

const (
	Idle InteractiveState = iota
	Dragging
	Swiping
)

func (s InteractiveState) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Swiping:
		return "swiping"
	}
	return "idle"
}

// Direction of a horizontal swipe.
type Direction int

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	if d == Right {
		return "right"
	}
	return "left"
}

// Mode selects which optional sub-elements a screen renders.
type Mode int

const (
	ModeDefault Mode = iota
	ModeSelect
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeSelect:
		return "select"
	case ModeEdit:
		return "edit"
	}
	return "default"
}

// HeaderAction is the payload of a header event.Click.
type HeaderAction int

const (
	HeaderNone HeaderAction = iota
	HeaderMenu
	HeaderAdd
	HeaderBack
	HeaderCancel
	HeaderConfirm
)

func (a HeaderAction) String() string {
	switch a {
	case HeaderMenu:
		return "menu"
	case HeaderAdd:
		return "add"
	case HeaderBack:
		return "back"
	case HeaderCancel:
		return "cancel"
	case HeaderConfirm:
		return "confirm"
	}
	return "none"
}

// Pointer reports where the pointer currently is, in stage coordinates.
type Pointer interface {
	PointerPosition() scene.Point
}

// Env carries the shared collaborators every component needs.
type Env struct {
	Ticker     event.Target
	Listeners  *event.ListenerPool
	Input      event.Target
	Header     event.Target
	Pointer    Pointer
	PixelRatio float64
}

// KeepAwake asks the ticker for another frame when it supports that.
func (e Env) KeepAwake() {
	if w, ok := e.Ticker.(interface{ KeepAwake() }); ok {
		w.KeepAwake()
	}
}

func (e Env) ratio() float64 {
	if e.PixelRatio <= 0 {
		return 1
	}
	return e.PixelRatio
}

// Hooks are the points a screen overrides to react to its Surface. Embed
// NopHooks to implement only the ones you need.
type Hooks interface {
	OnEnable() error
	OnDisable()
	OnTick(delta time.Duration) error
	OnClick(p scene.Point) error
	OnHeaderClick(action HeaderAction) error
	SwipeStart(preferScroll bool, dir Direction) error
	SwipeEnd() error
	OnUpdate(data any, mode Mode) error
}

// NopHooks implements Hooks with no-ops.
type NopHooks struct{}

func (NopHooks) OnEnable() error                  { return nil }
func (NopHooks) OnDisable()                       {}
func (NopHooks) OnTick(time.Duration) error       { return nil }
func (NopHooks) OnClick(scene.Point) error        { return nil }
func (NopHooks) OnHeaderClick(HeaderAction) error { return nil }
func (NopHooks) SwipeStart(bool, Direction) error { return nil }
func (NopHooks) SwipeEnd() error                  { return nil }
func (NopHooks) OnUpdate(any, Mode) error         { return nil }

// TransitionEvent is the payload of event.Complete from a Surface.
type TransitionEvent struct {
	Target any
	State  TransitionState
}

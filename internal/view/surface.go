package view

import (
	"math"
	"time"

	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/logging"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/tween"
)

// Gesture thresholds in pixels at pixel ratio 1.
const (
	LeftSwipeThreshold  = 15
	RightSwipeThreshold = 5
	ClickThreshold      = 5
)

// DefaultShowDuration is the show/hide tween length.
const DefaultShowDuration = 400 * time.Millisecond

// SurfaceOptions configures a Surface. Zero values take the defaults.
type SurfaceOptions struct {
	Duration     time.Duration
	Easing       tween.Easing
	Swipe        bool
	PreferScroll bool
	// ClickThreshold in pixels at ratio 1. Defaults to ClickThreshold.
	ClickThreshold float64
	// HitArea receives pointer-down; defaults to the surface node.
	HitArea *scene.Node
}

// Surface is the show/hide lifecycle and the pointer gesture recogniser
// shared by every screen.
//
// Subscriptions are layered: Level1 (ticker and tween completion) is held
// from Show until the hide completes; Level2 (pointer and header input) only
// while fully shown. Calls that are not valid in the current state are
// ignored.
type Surface struct {
	env        Env
	node       *scene.Node
	hitArea    *scene.Node
	owner      Hooks
	tween      *tween.Driver
	dispatcher *event.Dispatcher

	state       TransitionState
	level       EventLevel
	interactive InteractiveState
	mode        Mode

	swipe          bool
	preferScroll   bool
	leftSwipe      float64
	rightSwipe     float64
	clickThreshold float64

	pressed bool
	down    scene.Point
	last    scene.Point

	// alpha runs from fromAlpha to toAlpha over the current tween.
	fromAlpha float64
	toAlpha   float64
}

// NewSurface returns a hidden surface around node. owner receives the hooks
// and is reported as Target when the surface finishes hiding.
func NewSurface(env Env, node *scene.Node, owner Hooks, opts SurfaceOptions) *Surface {
	if owner == nil {
		owner = NopHooks{}
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultShowDuration
	}
	if opts.ClickThreshold <= 0 {
		opts.ClickThreshold = ClickThreshold
	}
	if opts.HitArea == nil {
		opts.HitArea = node
	}
	r := env.ratio()
	node.Visible = false
	node.Alpha = 0
	return &Surface{
		env:            env,
		node:           node,
		hitArea:        opts.HitArea,
		owner:          owner,
		tween:          tween.New(opts.Duration, opts.Easing, env.Listeners),
		dispatcher:     event.NewDispatcher(env.Listeners),
		state:          Hidden,
		swipe:          opts.Swipe,
		preferScroll:   opts.PreferScroll,
		leftSwipe:      LeftSwipeThreshold * r,
		rightSwipe:     RightSwipeThreshold * r,
		clickThreshold: opts.ClickThreshold * r,
	}
}

// Node returns the display node the surface animates.
func (s *Surface) Node() *scene.Node { return s.node }

// State returns the lifecycle state.
func (s *Surface) State() TransitionState { return s.state }

// Level returns the active subscription level.
func (s *Surface) Level() EventLevel { return s.level }

// Interactive returns the gesture state.
func (s *Surface) Interactive() InteractiveState { return s.interactive }

// Mode returns the mode passed to the last Update.
func (s *Surface) Mode() Mode { return s.mode }

// Env returns the collaborators the surface was built with.
func (s *Surface) Env() Env { return s.env }

// SetSwipe toggles gesture tracking for swipes.
func (s *Surface) SetSwipe(enabled bool) { s.swipe = enabled }

// Show starts the show transition from HIDDEN or HIDING.
func (s *Surface) Show() error {
	if s.state != Hidden && s.state != Hiding {
		s.ignored("show")
		return nil
	}
	if err := s.Enable(); err != nil {
		return err
	}
	if s.state == Hidden {
		s.node.Alpha = 0
	}
	s.state = Showing
	s.fromAlpha, s.toAlpha = s.node.Alpha, 1
	s.tween.Restart(false)
	s.node.Visible = true
	s.env.KeepAwake()
	return nil
}

// Hide starts the hide transition from SHOWN or SHOWING. Input is dropped
// immediately; the ticker stays subscribed until the tween completes.
func (s *Surface) Hide() error {
	if s.state != Shown && s.state != Showing {
		s.ignored("hide")
		return nil
	}
	s.Disable()
	s.state = Hiding
	s.fromAlpha, s.toAlpha = s.node.Alpha, 0
	if s.tween.Running() {
		s.tween.Restart(true)
	} else {
		s.tween.Start(true)
	}
	s.env.KeepAwake()
	return nil
}

// Enable registers Level1, and Level2 as well when the surface is shown.
func (s *Surface) Enable() error {
	if s.level == LevelNone {
		if err := s.registerLevel1(); err != nil {
			return err
		}
		if err := s.owner.OnEnable(); err != nil {
			return err
		}
	}
	if s.state == Shown && s.level == Level1 {
		return s.registerLevel2()
	}
	return nil
}

// Disable drops Level2 and abandons any gesture in progress.
func (s *Surface) Disable() {
	if s.level == Level2 {
		s.unregisterLevel2()
	}
	s.interactive = Idle
	s.pressed = false
	s.owner.OnDisable()
}

// Update stores the display mode and hands data to the owner.
func (s *Surface) Update(data any, mode Mode) error {
	s.mode = mode
	return s.owner.OnUpdate(data, mode)
}

func (s *Surface) AddEventListener(typ event.Type, scope any, handler event.Handler) error {
	return s.dispatcher.AddEventListener(typ, scope, handler)
}

func (s *Surface) RemoveEventListener(typ event.Type, scope any, handler event.Handler) {
	s.dispatcher.RemoveEventListener(typ, scope, handler)
}

// Release drops every subscription and returns the surface's listener
// records to the pool.
func (s *Surface) Release() {
	if s.level == Level2 {
		s.unregisterLevel2()
	}
	if s.level == Level1 {
		s.unregisterLevel1()
	}
	s.tween.Release()
	s.dispatcher.Release()
}

func (s *Surface) registerLevel1() error {
	if err := s.env.Ticker.AddEventListener(event.Tick, s, s.onTick); err != nil {
		return err
	}
	if err := s.tween.AddEventListener(event.Complete, s, s.onTweenComplete); err != nil {
		s.env.Ticker.RemoveEventListener(event.Tick, s, s.onTick)
		return err
	}
	s.level = Level1
	return nil
}

func (s *Surface) unregisterLevel1() {
	s.env.Ticker.RemoveEventListener(event.Tick, s, s.onTick)
	s.tween.RemoveEventListener(event.Complete, s, s.onTweenComplete)
	s.level = LevelNone
}

func (s *Surface) registerLevel2() error {
	err := s.env.Input.AddEventListener(event.PointerDown, s, s.onPointerDown)
	if err == nil {
		err = s.env.Input.AddEventListener(event.PointerUp, s, s.onPointerUp)
	}
	if err == nil && s.env.Header != nil {
		err = s.env.Header.AddEventListener(event.Click, s, s.onHeaderClick)
	}
	if err != nil {
		s.unregisterLevel2()
		s.level = Level1
		return err
	}
	s.level = Level2
	return nil
}

func (s *Surface) unregisterLevel2() {
	s.env.Input.RemoveEventListener(event.PointerDown, s, s.onPointerDown)
	s.env.Input.RemoveEventListener(event.PointerUp, s, s.onPointerUp)
	if s.env.Header != nil {
		s.env.Header.RemoveEventListener(event.Click, s, s.onHeaderClick)
	}
	s.level = Level1
}

func (s *Surface) onTick(payload any) error {
	delta, _ := payload.(time.Duration)
	if s.tween.Running() {
		if err := s.tween.Advance(delta); err != nil {
			return err
		}
		if s.tween.Running() && (s.state == Showing || s.state == Hiding) {
			s.node.Alpha = s.fromAlpha + (s.toAlpha-s.fromAlpha)*s.tween.Progress()
			s.env.KeepAwake()
		}
	}
	if s.level == LevelNone {
		return nil
	}
	if s.interactive == Dragging {
		if err := s.detectSwipe(); err != nil {
			return err
		}
	}
	return s.owner.OnTick(delta)
}

// detectSwipe compares the pointer with the previous tick's sample, so only
// a fast enough movement starts a swipe.
func (s *Surface) detectSwipe() error {
	p := s.env.Pointer.PointerPosition()
	dx := p.X - s.last.X
	dy := p.Y - s.last.Y
	s.last = p
	preferScroll := s.preferScroll && math.Abs(dy) > math.Abs(dx)
	switch {
	case dx < -s.leftSwipe:
		s.interactive = Swiping
		return s.owner.SwipeStart(preferScroll, Left)
	case dx > s.rightSwipe:
		s.interactive = Swiping
		return s.owner.SwipeStart(preferScroll, Right)
	}
	return nil
}

func (s *Surface) onTweenComplete(any) error {
	switch s.state {
	case Showing:
		s.state = Shown
		s.node.Alpha = 1
		return s.registerLevel2()
	case Hiding:
		s.unregisterLevel1()
		s.node.Alpha = 0
		s.node.Visible = false
		s.state = Hidden
		return s.dispatcher.DispatchEvent(event.Complete, TransitionEvent{Target: s.owner, State: Hidden})
	default:
		s.ignored("tween complete")
		return nil
	}
}

func (s *Surface) onPointerDown(payload any) error {
	p, ok := payload.(scene.Point)
	if !ok || !s.hitArea.HitTest(p) {
		return nil
	}
	s.pressed = true
	s.down = p
	s.last = p
	if s.swipe {
		s.interactive = Dragging
	}
	return nil
}

func (s *Surface) onPointerUp(payload any) error {
	if !s.pressed {
		return nil
	}
	s.pressed = false
	p, _ := payload.(scene.Point)

	swiped := s.interactive == Swiping
	s.interactive = Idle
	if swiped {
		return s.owner.SwipeEnd()
	}

	dx := p.X - s.down.X
	dy := p.Y - s.down.Y
	dist := dx*dx - dy*dy
	if math.Abs(dist) < s.clickThreshold*s.clickThreshold && (s.state == Showing || s.state == Shown) {
		return s.owner.OnClick(p)
	}
	return nil
}

func (s *Surface) onHeaderClick(payload any) error {
	action, _ := payload.(HeaderAction)
	return s.owner.OnHeaderClick(action)
}

func (s *Surface) ignored(call string) {
	logging.Trace("view.ignored_transition", map[string]any{
		"call":  call,
		"state": s.state.String(),
		"node":  s.node.Name,
	})
}

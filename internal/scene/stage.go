package scene

import "github.com/jask/cashflow/internal/event"

// Stage is the root of the display tree and the source of pointer input.
// Pointer events carry the root-space Point as payload.
type Stage struct {
	Root *Node

	dispatcher *event.Dispatcher
	pointer    Point
	pressed    bool
}

// NewStage returns a stage with an empty root of the given size.
func NewStage(width, height float64, listeners *event.ListenerPool) *Stage {
	return &Stage{
		Root:       NewNode("stage", width, height),
		dispatcher: event.NewDispatcher(listeners),
	}
}

// Resize changes the root size.
func (s *Stage) Resize(width, height float64) {
	s.Root.Width = width
	s.Root.Height = height
}

// PointerPosition returns the last known pointer position.
func (s *Stage) PointerPosition() Point { return s.pointer }

// Pressed reports whether the pointer is currently down.
func (s *Stage) Pressed() bool { return s.pressed }

// PointerDown records a press and notifies listeners.
func (s *Stage) PointerDown(p Point) error {
	s.pointer = p
	s.pressed = true
	return s.dispatcher.DispatchEvent(event.PointerDown, p)
}

// PointerMove records a new pointer position.
func (s *Stage) PointerMove(p Point) error {
	s.pointer = p
	return s.dispatcher.DispatchEvent(event.PointerMove, p)
}

// PointerUp records a release and notifies listeners. Listeners receive the
// release even when it happens outside their node.
func (s *Stage) PointerUp(p Point) error {
	s.pointer = p
	s.pressed = false
	return s.dispatcher.DispatchEvent(event.PointerUp, p)
}

func (s *Stage) AddEventListener(typ event.Type, scope any, handler event.Handler) error {
	return s.dispatcher.AddEventListener(typ, scope, handler)
}

func (s *Stage) RemoveEventListener(typ event.Type, scope any, handler event.Handler) {
	s.dispatcher.RemoveEventListener(typ, scope, handler)
}

// Listeners returns the number of input registrations.
func (s *Stage) Listeners() int { return s.dispatcher.Len() }

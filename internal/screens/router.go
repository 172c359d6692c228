package screens

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/logging"
	"github.com/jask/cashflow/internal/view"
)

// ErrUnknownScreen is returned when a change names a screen that was never
// registered.
var ErrUnknownScreen = errors.New("unknown screen")

// Router keeps the screen stack. On every event.ChangeScreen it updates the
// incoming screen, retitles the header, and runs the outgoing hide and the
// incoming show side by side.
type Router struct {
	bus     event.Target
	header  *Header
	screens map[ScreenName]Screen
	stack   []ScreenName
	hiding  map[Screen]bool
}

// NewRouter returns a router listening on bus once Attach is called.
func NewRouter(bus event.Target, header *Header) *Router {
	return &Router{
		bus:     bus,
		header:  header,
		screens: make(map[ScreenName]Screen),
		hiding:  make(map[Screen]bool),
	}
}

// Register adds a screen. Registering a name twice replaces the screen.
func (r *Router) Register(s Screen) {
	r.screens[s.Name()] = s
}

// Screen returns the registered screen for name.
func (r *Router) Screen(name ScreenName) (Screen, bool) {
	s, ok := r.screens[name]
	return s, ok
}

// Attach starts handling event.ChangeScreen.
func (r *Router) Attach() error {
	return r.bus.AddEventListener(event.ChangeScreen, r, r.onChangeScreen)
}

// Current returns the screen on top of the stack, or nil.
func (r *Router) Current() Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.screens[r.stack[len(r.stack)-1]]
}

// Stack returns a copy of the navigation stack, bottom first.
func (r *Router) Stack() []ScreenName { return slices.Clone(r.stack) }

// Hiding reports how many screens are still fading out.
func (r *Router) Hiding() int { return len(r.hiding) }

// Start shows the first screen.
func (r *Router) Start(name ScreenName, mode view.Mode, data any) error {
	next, ok := r.screens[name]
	if !ok {
		return fmt.Errorf("start %s: %w", name, ErrUnknownScreen)
	}
	r.stack = append(r.stack[:0], name)
	if err := next.Update(data, mode); err != nil {
		return err
	}
	r.header.Set(next.Header())
	return next.Show()
}

// Release drops the bus subscription and every screen's listeners.
func (r *Router) Release() {
	r.bus.RemoveEventListener(event.ChangeScreen, r, r.onChangeScreen)
	for s := range r.hiding {
		s.RemoveEventListener(event.Complete, r, r.onHidden)
	}
	clear(r.hiding)
	for _, s := range r.screens {
		s.Release()
	}
}

func (r *Router) onChangeScreen(payload any) error {
	data, ok := payload.(*ChangeScreenData)
	if !ok {
		return nil
	}
	prev := r.Current()

	var name ScreenName
	update := true
	if data.Screen == ScreenBack {
		if len(r.stack) < 2 {
			return nil
		}
		r.stack = r.stack[:len(r.stack)-1]
		name = r.stack[len(r.stack)-1]
		update = data.UpdateBack
	} else {
		if _, ok := r.screens[data.Screen]; !ok {
			return fmt.Errorf("change screen %s: %w", data.Screen, ErrUnknownScreen)
		}
		name = data.Screen
		if i := slices.Index(r.stack, name); i >= 0 {
			r.stack = r.stack[:i+1]
		} else {
			r.stack = append(r.stack, name)
		}
	}
	next := r.screens[name]

	logging.Trace("router.change", map[string]any{
		"to":    name.String(),
		"mode":  data.Mode.String(),
		"depth": len(r.stack),
	})

	if update {
		mode := data.Mode
		if data.Screen == ScreenBack {
			mode = next.Mode()
		}
		if err := next.Update(data.Data, mode); err != nil {
			return err
		}
	}
	r.header.Set(next.Header())

	if prev == next {
		return nil
	}
	var errs []error
	if prev != nil {
		if err := prev.AddEventListener(event.Complete, r, r.onHidden); err != nil {
			errs = append(errs, err)
		} else {
			r.hiding[prev] = true
		}
		errs = append(errs, prev.Hide())
	}
	delete(r.hiding, next)
	next.RemoveEventListener(event.Complete, r, r.onHidden)
	errs = append(errs, next.Show())
	return errors.Join(errs...)
}

// hiddenHandler is implemented by screens that free resources once they
// are fully hidden.
type hiddenHandler interface {
	OnHidden()
}

func (r *Router) onHidden(payload any) error {
	ev, ok := payload.(view.TransitionEvent)
	if !ok {
		return nil
	}
	s, ok := ev.Target.(Screen)
	if !ok {
		return nil
	}
	s.RemoveEventListener(event.Complete, r, r.onHidden)
	delete(r.hiding, s)
	if h, ok := s.(hiddenHandler); ok {
		h.OnHidden()
	}
	logging.Trace("router.hidden", map[string]any{"screen": s.Name().String()})
	return nil
}

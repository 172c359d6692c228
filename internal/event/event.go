// Package event implements per-owner listener registries backed by a shared
// pool of listener records.
//
// Every component that emits events owns a Dispatcher. Dispatchers do not
// allocate on AddEventListener; they draw a record from a ListenerPool sized
// at startup, and hand it back on RemoveEventListener or Release.
package event

import (
	"reflect"

	"github.com/jask/cashflow/internal/pool"
)

// Type names an event.
type Type string

const (
	Tick              Type = "tick"
	Complete          Type = "complete"
	Click             Type = "click"
	LayoutUpdate      Type = "layoutUpdate"
	PointerDown       Type = "pointerDown"
	PointerUp         Type = "pointerUp"
	PointerMove       Type = "pointerMove"
	Blur              Type = "blur"
	ChangeScreen      Type = "changeScreen"
	ChangeTransaction Type = "changeTransaction"
)

// Handler receives the payload passed to DispatchEvent. A returned error is
// reported to whoever dispatched the event.
type Handler func(payload any) error

// Target is anything listeners can subscribe to.
type Target interface {
	AddEventListener(typ Type, scope any, handler Handler) error
	RemoveEventListener(typ Type, scope any, handler Handler)
}

// Listener is a pooled registration record. A free record has allocated set
// to false and no references; a live one holds exactly one
// (type, scope, handler) tuple.
type Listener struct {
	allocated  bool
	poolIndex  int
	generation uint64
	typ        Type
	scope      any
	handler    Handler
	code       uintptr
}

// Reset clears the record before it goes back to the pool.
func (l *Listener) Reset() {
	l.allocated = false
	l.typ = ""
	l.scope = nil
	l.handler = nil
	l.code = 0
	l.generation++
}

// PoolIndex returns the slot the record occupies.
func (l *Listener) PoolIndex() int { return l.poolIndex }

// Allocated reports whether the record is live.
func (l *Listener) Allocated() bool { return l.allocated }

func (l *Listener) matches(typ Type, scope any, code uintptr) bool {
	return l.typ == typ && l.scope == scope && l.code == code
}

// ListenerPool is the shared store every dispatcher draws from.
type ListenerPool = pool.Pool[*Listener]

// NewListenerPool pre-allocates capacity listener records.
func NewListenerPool(capacity int) *ListenerPool {
	return pool.New("event listeners", capacity, func(i int) *Listener {
		return &Listener{poolIndex: i}
	})
}

// handlerCode identifies a handler by its code pointer. Method values bound
// to different receivers share a code pointer, so identity is always the
// pair (scope, code).
func handlerCode(h Handler) uintptr {
	if h == nil {
		return 0
	}
	return reflect.ValueOf(h).Pointer()
}

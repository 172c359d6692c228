package event

import (
	"errors"
	"fmt"
)

type pending struct {
	record     *Listener
	generation uint64
	handler    Handler
}

// Dispatcher is a listener registry owned by one component.
//
// DispatchEvent snapshots the matching listeners before calling any of them.
// Listeners added while a dispatch is running are not called by it; a
// snapshotted listener that is removed before it is reached is skipped.
type Dispatcher struct {
	pool      *ListenerPool
	listeners []*Listener
	snapshot  []pending
}

// NewDispatcher returns a dispatcher drawing records from p.
func NewDispatcher(p *ListenerPool) *Dispatcher {
	return &Dispatcher{pool: p}
}

// AddEventListener registers handler for typ on behalf of scope. Scope must
// be comparable, normally the owning component's pointer. Registering the same
// (typ, scope, handler) again is a no-op. The only failure is an exhausted
// listener pool.
func (d *Dispatcher) AddEventListener(typ Type, scope any, handler Handler) error {
	if handler == nil {
		return nil
	}
	code := handlerCode(handler)
	for _, l := range d.listeners {
		if l.matches(typ, scope, code) {
			return nil
		}
	}
	l, err := d.pool.Allocate()
	if err != nil {
		return fmt.Errorf("add %s listener: %w", typ, err)
	}
	l.allocated = true
	l.typ = typ
	l.scope = scope
	l.handler = handler
	l.code = code
	d.listeners = append(d.listeners, l)
	return nil
}

// RemoveEventListener drops the matching registration, if any.
func (d *Dispatcher) RemoveEventListener(typ Type, scope any, handler Handler) {
	code := handlerCode(handler)
	for i, l := range d.listeners {
		if l.matches(typ, scope, code) {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			d.pool.Release(l)
			return
		}
	}
}

// DispatchEvent calls every listener registered for typ, in registration
// order. All listeners run even if one fails; their errors are joined.
func (d *Dispatcher) DispatchEvent(typ Type, payload any) error {
	start := len(d.snapshot)
	for _, l := range d.listeners {
		if l.typ == typ {
			d.snapshot = append(d.snapshot, pending{record: l, generation: l.generation, handler: l.handler})
		}
	}
	end := len(d.snapshot)

	var errs []error
	for i := start; i < end; i++ {
		p := d.snapshot[i]
		if !p.record.allocated || p.record.generation != p.generation {
			continue
		}
		if err := p.handler(payload); err != nil {
			errs = append(errs, err)
		}
	}
	clear(d.snapshot[start:end])
	d.snapshot = d.snapshot[:start]
	return errors.Join(errs...)
}

// Has reports whether (typ, scope, handler) is registered.
func (d *Dispatcher) Has(typ Type, scope any, handler Handler) bool {
	code := handlerCode(handler)
	for _, l := range d.listeners {
		if l.matches(typ, scope, code) {
			return true
		}
	}
	return false
}

// Count returns the number of live registrations for typ.
func (d *Dispatcher) Count(typ Type) int {
	n := 0
	for _, l := range d.listeners {
		if l.typ == typ {
			n++
		}
	}
	return n
}

// Len returns the number of live registrations.
func (d *Dispatcher) Len() int { return len(d.listeners) }

// Release returns every record this dispatcher holds to the pool.
func (d *Dispatcher) Release() {
	for _, l := range d.listeners {
		d.pool.Release(l)
	}
	clear(d.listeners)
	d.listeners = d.listeners[:0]
}

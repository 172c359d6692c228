// Package pool provides fixed-capacity arenas of reusable items.
//
// Items are created once, up front, by a factory that receives the slot
// index. Allocate hands out a free slot and Release resets it and puts it
// back. A pool never grows: callers size it for the worst-case number of
// items alive at once, and running out is reported as ErrPoolExhausted.
package pool

import (
	"errors"
	"fmt"

	"github.com/jask/cashflow/internal/logging"
)

// ErrPoolExhausted is returned by Allocate when every slot is in use.
var ErrPoolExhausted = errors.New("pool exhausted")

// Item is implemented by pooled values. Reset must drop every reference the
// item holds so a released slot keeps nothing alive.
type Item interface {
	comparable
	Reset()
}

// Stats is a snapshot of pool usage.
type Stats struct {
	Capacity       int
	Allocated      int
	Peak           int
	DoubleReleases int
}

// Pool is a fixed-capacity arena of T. It is not safe for concurrent use;
// all allocation happens on the UI event loop.
type Pool[T Item] struct {
	name   string
	items  []T
	index  map[T]int
	active []bool
	free   []int
	stats  Stats
}

// New pre-allocates capacity items using factory.
func New[T Item](name string, capacity int, factory func(index int) T) *Pool[T] {
	if capacity < 0 {
		capacity = 0
	}
	p := &Pool[T]{
		name:   name,
		items:  make([]T, capacity),
		index:  make(map[T]int, capacity),
		active: make([]bool, capacity),
		free:   make([]int, 0, capacity),
	}
	for i := 0; i < capacity; i++ {
		item := factory(i)
		p.items[i] = item
		p.index[item] = i
	}
	// push in reverse so slot 0 is handed out first
	for i := capacity - 1; i >= 0; i-- {
		p.free = append(p.free, i)
	}
	p.stats.Capacity = capacity
	return p
}

// Name returns the label used in errors and traces.
func (p *Pool[T]) Name() string { return p.name }

// Allocate marks a free item active and returns it.
func (p *Pool[T]) Allocate() (T, error) {
	var zero T
	if len(p.free) == 0 {
		return zero, fmt.Errorf("%s (capacity %d): %w", p.name, len(p.items), ErrPoolExhausted)
	}
	i := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.active[i] = true
	p.stats.Allocated++
	if p.stats.Allocated > p.stats.Peak {
		p.stats.Peak = p.stats.Allocated
	}
	return p.items[i], nil
}

// Release resets item and returns it to the pool. Releasing an item that is
// already free, or that never came from this pool, is a no-op; double
// releases are counted in Stats.
func (p *Pool[T]) Release(item T) {
	i, ok := p.index[item]
	if !ok {
		return
	}
	if !p.active[i] {
		p.stats.DoubleReleases++
		logging.Trace("pool.double_release", map[string]any{"pool": p.name, "slot": i})
		return
	}
	item.Reset()
	p.active[i] = false
	p.free = append(p.free, i)
	p.stats.Allocated--
}

// Active reports whether item is currently allocated.
func (p *Pool[T]) Active(item T) bool {
	i, ok := p.index[item]
	return ok && p.active[i]
}

// At returns the item in slot i regardless of its state.
func (p *Pool[T]) At(i int) T {
	return p.items[i]
}

// Cap returns the fixed capacity.
func (p *Pool[T]) Cap() int { return len(p.items) }

// Available returns the number of free slots.
func (p *Pool[T]) Available() int { return len(p.free) }

// Stats returns a usage snapshot.
func (p *Pool[T]) Stats() Stats { return p.stats }

package view

import (
	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/scene"
)

// Item is anything a List can stack.
type Item interface {
	Node() *scene.Node
}

// Closer is an item that can be open, such as a SwipeRow or an Expandable.
type Closer interface {
	IsOpen() bool
	Close(immediate bool) error
}

// Swiper is an item that follows a horizontal swipe.
type Swiper interface {
	SwipeStart(dir Direction) error
	SwipeEnd() error
}

// List stacks item nodes vertically inside a container node and tracks the
// one item being swiped.
type List struct {
	node    *scene.Node
	items   []Item
	gap     float64
	swiping Swiper
}

// NewList returns an empty list laid out into node.
func NewList(node *scene.Node, gap float64) *List {
	return &List{node: node, gap: gap}
}

// Node returns the container.
func (l *List) Node() *scene.Node { return l.node }

// Items returns the items in display order. Callers must not modify it.
func (l *List) Items() []Item { return l.items }

// Len returns the number of items.
func (l *List) Len() int { return len(l.items) }

// Add appends an item and lays the list out again.
func (l *List) Add(item Item) {
	l.items = append(l.items, item)
	l.node.AddChild(item.Node())
	l.Layout()
}

// Clear detaches every item and returns them so the caller can release
// pooled ones.
func (l *List) Clear() []Item {
	items := l.items
	l.items = nil
	l.swiping = nil
	l.node.RemoveChildren()
	l.node.Height = 0
	return items
}

// Layout positions items top to bottom and sizes the container to fit.
func (l *List) Layout() float64 {
	y := 0.0
	for i, item := range l.items {
		n := item.Node()
		if i > 0 {
			y += l.gap
		}
		n.Y = y
		y += n.Height
	}
	l.node.Height = y
	return y
}

// Watch reflows the list whenever target reports a layout change.
func (l *List) Watch(target event.Target) error {
	return target.AddEventListener(event.LayoutUpdate, l, l.onLayoutUpdate)
}

// Unwatch stops reflowing on target's layout changes.
func (l *List) Unwatch(target event.Target) {
	target.RemoveEventListener(event.LayoutUpdate, l, l.onLayoutUpdate)
}

func (l *List) onLayoutUpdate(any) error {
	l.Layout()
	return nil
}

// ItemUnderPoint returns the item whose node contains the stage point p, and
// its index, or (nil, -1).
func (l *List) ItemUnderPoint(p scene.Point) (Item, int) {
	for i, item := range l.items {
		if item.Node().HitTest(p) {
			return item, i
		}
	}
	return nil, -1
}

// CloseAllExcept closes every open item other than except.
func (l *List) CloseAllExcept(except Item, immediate bool) error {
	for _, item := range l.items {
		if item == except {
			continue
		}
		c, ok := item.(Closer)
		if !ok || !c.IsOpen() {
			continue
		}
		if err := c.Close(immediate); err != nil {
			return err
		}
	}
	return nil
}

// SwipeStart hands a swipe at p to the item under it, first snapping every
// other open item shut. It returns the item, or nil when nothing swipeable
// is under the point.
func (l *List) SwipeStart(p scene.Point, dir Direction) (Item, error) {
	item, _ := l.ItemUnderPoint(p)
	s, ok := item.(Swiper)
	if !ok {
		return nil, nil
	}
	if err := l.CloseAllExcept(item, true); err != nil {
		return nil, err
	}
	l.swiping = s
	return item, s.SwipeStart(dir)
}

// SwipeEnd releases the item being swiped.
func (l *List) SwipeEnd() error {
	s := l.swiping
	l.swiping = nil
	if s == nil {
		return nil
	}
	return s.SwipeEnd()
}

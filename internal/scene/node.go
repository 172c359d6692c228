// Package scene is a small retained display tree: nodes with a position, a
// size, opacity and visibility, arranged by parent/child containment.
// Coordinates are pixels; a node's X and Y are relative to its parent.
package scene

import "slices"

// Point is a position in pixels.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Align positions a node's text inside its bounds.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Node is one element of the display tree. The paint fields (Fill, Ink,
// Text) are interpreted by the renderer; an empty Fill is transparent.
type Node struct {
	Name    string
	X, Y    float64
	Width   float64
	Height  float64
	Alpha   float64
	Visible bool
	Clip    bool

	Fill  string
	Ink   string
	Text  string
	Inset float64
	Align Align
	Bold  bool

	parent   *Node
	children []*Node
}

// NewNode returns a visible, opaque node of the given size.
func NewNode(name string, width, height float64) *Node {
	return &Node{Name: name, Width: width, Height: height, Alpha: 1, Visible: true}
}

// AddChild appends child, detaching it from any previous parent.
func (n *Node) AddChild(child *Node) *Node {
	return n.AddChildAt(child, len(n.children))
}

// AddChildAt inserts child at index i (clamped to the child count).
func (n *Node) AddChildAt(child *Node, i int) *Node {
	if child == nil {
		return nil
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	n.children = slices.Insert(n.children, i, child)
	child.parent = n
	return child
}

// RemoveChild detaches child and reports whether it was present.
func (n *Node) RemoveChild(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	return true
}

// RemoveChildren detaches every child.
func (n *Node) RemoveChildren() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = n.children[:0]
}

// Contains reports whether child is a direct child of n.
func (n *Node) Contains(child *Node) bool {
	return slices.Contains(n.children, child)
}

// Children returns the child list. Callers must not modify it.
func (n *Node) Children() []*Node { return n.children }

// Parent returns the containing node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Global returns the node's origin in root coordinates.
func (n *Node) Global() Point {
	var p Point
	for cur := n; cur != nil; cur = cur.parent {
		p.X += cur.X
		p.Y += cur.Y
	}
	return p
}

// LocalPosition converts a root-space point into this node's space.
func (n *Node) LocalPosition(global Point) Point {
	o := n.Global()
	return Point{X: global.X - o.X, Y: global.Y - o.Y}
}

// Bounds returns the node's rectangle in its own space.
func (n *Node) Bounds() Rect {
	return Rect{Width: n.Width, Height: n.Height}
}

// WorldVisible reports whether the node and all its ancestors are visible.
func (n *Node) WorldVisible() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if !cur.Visible {
			return false
		}
	}
	return true
}

// WorldAlpha multiplies the opacity of the node and its ancestors.
func (n *Node) WorldAlpha() float64 {
	a := 1.0
	for cur := n; cur != nil; cur = cur.parent {
		a *= cur.Alpha
	}
	return a
}

// HitTest reports whether a root-space point lands on this node while it is
// shown.
func (n *Node) HitTest(global Point) bool {
	if !n.WorldVisible() {
		return false
	}
	return n.Bounds().Contains(n.LocalPosition(global))
}

// Package surface is the retained render tree the list view draws into.
// Nodes hold cell content and string attributes, are positioned relative to
// their parent, and keep parent pointers so hit targets can be walked back up
// to the row that owns them.
package surface

import (
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Rect is an axis-aligned rectangle in cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// Intersect returns the overlap of r and o, empty if they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)

	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}

	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Cell is one terminal cell of node content.
type Cell struct {
	Ch    rune
	Style tcell.Style
}

// Node is an element of the render tree.
type Node struct {
	class     string
	rect      Rect
	translate int
	style     tcell.Style
	cells     [][]Cell
	attrs     map[string]string
	parent    *Node
	children  []*Node
}

// NewNode creates a detached node with the given class name.
func NewNode(class string) *Node {
	return &Node{class: class, style: tcell.StyleDefault}
}

// Class returns the node's class name.
func (n *Node) Class() string { return n.class }

// Parent returns the parent node, nil when detached.
func (n *Node) Parent() *Node { return n.parent }

// Mounted reports whether the node has a parent.
func (n *Node) Mounted() bool { return n.parent != nil }

// Children returns the child nodes in paint order. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// AppendChild mounts child as the last child of n, detaching it from any
// previous parent first.
func (n *Node) AppendChild(child *Node) {
	child.Remove()
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches n from its parent. Detached nodes are left untouched.
func (n *Node) Remove() {
	p := n.parent
	if p == nil {
		return
	}

	if i := slices.Index(p.children, n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}

	n.parent = nil
}

// SetAttr sets attribute key to value.
func (n *Node) SetAttr(key, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}

	n.attrs[key] = value
}

// Attr returns the value of attribute key.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.attrs[key]

	return v, ok
}

// RemoveAttr deletes attribute key.
func (n *Node) RemoveAttr(key string) {
	delete(n.attrs, key)
}

// SetRect positions the node relative to its parent's origin.
func (n *Node) SetRect(r Rect) { n.rect = r }

// Rect returns the node's rectangle relative to its parent.
func (n *Node) Rect() Rect { return n.rect }

// SetTop moves the node vertically, keeping its width and left edge.
func (n *Node) SetTop(y int) { n.rect.Y = y }

// SetHeight changes the node's height.
func (n *Node) SetHeight(h int) { n.rect.H = max(h, 0) }

// SetTranslate shifts every child of n vertically by dy when painting and hit
// testing. The node itself does not move.
func (n *Node) SetTranslate(dy int) { n.translate = dy }

// Translate returns the vertical child shift.
func (n *Node) Translate() int { return n.translate }

// SetStyle sets the fill style used for cells without content.
func (n *Node) SetStyle(style tcell.Style) { n.style = style }

// Style returns the fill style.
func (n *Node) Style() tcell.Style { return n.style }

// SetCells replaces the node content.
func (n *Node) SetCells(rows [][]Cell) { n.cells = rows }

// Cells returns the node content rows.
func (n *Node) Cells() [][]Cell { return n.cells }

// SetLines replaces the node content with plain text in a single style.
// Wide runes occupy two cells; the second is a zero rune.
func (n *Node) SetLines(lines []string, style tcell.Style) {
	rows := make([][]Cell, len(lines))

	for i, line := range lines {
		row := make([]Cell, 0, len(line))

		for _, r := range line {
			row = append(row, Cell{Ch: r, Style: style})

			if runewidth.RuneWidth(r) == 2 {
				row = append(row, Cell{Style: style})
			}
		}

		rows[i] = row
	}

	n.cells = rows
}

// Text returns the content rows as strings, dropping wide-rune padding.
func (n *Node) Text() []string {
	out := make([]string, len(n.cells))

	for i, row := range n.cells {
		rs := make([]rune, 0, len(row))

		for _, c := range row {
			if c.Ch != 0 {
				rs = append(rs, c.Ch)
			}
		}

		out[i] = string(rs)
	}

	return out
}

// AbsRect returns the node rectangle in root coordinates, including every
// ancestor's offset and translate.
func (n *Node) AbsRect() Rect {
	r := n.rect

	for p := n.parent; p != nil; p = p.parent {
		r.X += p.rect.X
		r.Y += p.rect.Y + p.translate
	}

	return r
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}

	for _, c := range n.children {
		c.Walk(fn)
	}
}

// HitTest returns the deepest node containing (x, y), given in the
// coordinate space of n's parent. Later children win over earlier ones.
func (n *Node) HitTest(x, y int) *Node {
	if !n.rect.Contains(x, y) {
		return nil
	}

	lx, ly := x-n.rect.X, y-n.rect.Y-n.translate

	for i := len(n.children) - 1; i >= 0; i-- {
		if hit := n.children[i].HitTest(lx, ly); hit != nil {
			return hit
		}
	}

	return n
}

package surface

import "github.com/gdamore/tcell/v2"

// Painter draws render trees onto a tcell screen, clipped to a rectangle.
type Painter struct {
	screen tcell.Screen
	clip   Rect
}

// NewPainter creates a painter clipped to the current screen size.
func NewPainter(screen tcell.Screen) *Painter {
	w, h := screen.Size()

	return &Painter{screen: screen, clip: Rect{W: w, H: h}}
}

// WithClip returns a painter whose clip is the intersection of the current
// clip and r.
func (p *Painter) WithClip(r Rect) *Painter {
	return &Painter{screen: p.screen, clip: p.clip.Intersect(r)}
}

// SetCell draws one cell if it lies inside the clip.
func (p *Painter) SetCell(x, y int, ch rune, style tcell.Style) {
	if !p.clip.Contains(x, y) {
		return
	}

	p.screen.SetContent(x, y, ch, nil, style)
}

// Fill paints every cell of r inside the clip.
func (p *Painter) Fill(r Rect, ch rune, style tcell.Style) {
	area := r.Intersect(p.clip)

	for y := area.Y; y < area.Y+area.H; y++ {
		for x := area.X; x < area.X+area.W; x++ {
			p.screen.SetContent(x, y, ch, nil, style)
		}
	}
}

// Paint draws n and its subtree with n's parent origin at (0, 0).
func (p *Painter) Paint(n *Node) {
	p.paint(n, 0, 0)
}

func (p *Painter) paint(n *Node, ox, oy int) {
	abs := Rect{X: ox + n.rect.X, Y: oy + n.rect.Y, W: n.rect.W, H: n.rect.H}

	clipped := p.WithClip(abs)
	if clipped.clip.Empty() {
		return
	}

	clipped.Fill(abs, ' ', n.style)

	for dy, row := range n.cells {
		if dy >= abs.H {
			break
		}

		for dx, c := range row {
			if c.Ch == 0 {
				continue
			}

			clipped.SetCell(abs.X+dx, abs.Y+dy, c.Ch, c.Style)
		}
	}

	for _, child := range n.children {
		clipped.paint(child, abs.X, abs.Y+n.translate)
	}
}

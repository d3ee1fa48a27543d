package termhost

import (
	"github.com/gdamore/tcell/v2"

	"github.com/Sumatoshi-tech/listview/pkg/surface"
)

// HandleEvent applies one terminal event and reports whether the host should quit.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		h.screen.Sync()
		h.resize(ev.Size())
	case *tcell.EventKey:
		return h.handleKey(ev)
	case *tcell.EventMouse:
		h.handleMouse(ev)
	}

	return false
}

func (h *Host) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		h.ScrollBy(-1)
	case tcell.KeyDown:
		h.ScrollBy(1)
	case tcell.KeyPgUp:
		h.ScrollBy(-h.state.ViewportHeight)
	case tcell.KeyPgDn:
		h.ScrollBy(h.state.ViewportHeight)
	case tcell.KeyHome:
		h.setState(h.state.ScrollToTop())
	case tcell.KeyEnd:
		h.setState(h.state.ScrollToBottom())
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'j':
			h.ScrollBy(1)
		case 'k':
			h.ScrollBy(-1)
		case ' ':
			h.ScrollBy(h.state.ViewportHeight)
		default:
			h.emit(surface.Event{Kind: surface.KeyDown, Key: ev, Modifiers: ev.Modifiers()})
		}
	default:
		h.emit(surface.Event{Kind: surface.KeyDown, Key: ev, Modifiers: ev.Modifiers()})
	}

	return false
}

// handleMouse turns tcell's button-state snapshots into transitions.
func (h *Host) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	target := h.root.HitTest(x, y)

	base := surface.Event{Target: target, X: x, Y: y, Buttons: buttons, Modifiers: ev.Modifiers()}

	send := func(kind surface.EventKind, node *surface.Node) {
		e := base
		e.Kind = kind
		e.Target = node
		h.emit(e)
	}

	if buttons&tcell.WheelUp != 0 {
		h.ScrollBy(-h.scrollStep)
		send(surface.Wheel, target)
	}

	if buttons&tcell.WheelDown != 0 {
		h.ScrollBy(h.scrollStep)
		send(surface.Wheel, target)
	}

	if target != h.hover {
		if h.hover != nil {
			send(surface.MouseOut, h.hover)
		}

		if target != nil {
			send(surface.MouseOver, target)
		}

		h.hover = target
	}

	send(surface.MouseMove, target)

	const tracked = tcell.ButtonPrimary | tcell.ButtonSecondary | tcell.ButtonMiddle

	now := buttons & tracked
	pressed := now &^ h.buttons
	released := h.buttons &^ now
	h.buttons = now

	if pressed != 0 {
		send(surface.MouseDown, target)

		if pressed&tcell.ButtonPrimary != 0 {
			h.pressed = target
		}

		if pressed&tcell.ButtonSecondary != 0 {
			send(surface.ContextMenu, target)
		}
	}

	if released != 0 {
		send(surface.MouseUp, target)

		if released&tcell.ButtonPrimary != 0 && target != nil && target == h.pressed {
			h.click(send, target)
		}
	}
}

func (h *Host) click(send func(surface.EventKind, *surface.Node), target *surface.Node) {
	send(surface.Click, target)

	at := h.now()
	if target == h.lastClick && at.Sub(h.clickedAt) <= doubleClickInterval {
		send(surface.DoubleClick, target)
		h.lastClick = nil

		return
	}

	h.lastClick = target
	h.clickedAt = at
}

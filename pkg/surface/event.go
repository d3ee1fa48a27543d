package surface

import "github.com/gdamore/tcell/v2"

// EventKind names an input event type.
type EventKind string

// Mouse event kinds.
const (
	Click       EventKind = "click"
	DoubleClick EventKind = "dblclick"
	MouseUp     EventKind = "mouseup"
	MouseDown   EventKind = "mousedown"
	MouseOver   EventKind = "mouseover"
	MouseMove   EventKind = "mousemove"
	MouseOut    EventKind = "mouseout"
	ContextMenu EventKind = "contextmenu"
)

// Non-mouse event kinds.
const (
	KeyDown EventKind = "keydown"
	Wheel   EventKind = "wheel"
	Focus   EventKind = "focus"
	Blur    EventKind = "blur"
)

// mouseKinds is the set of kinds that carry a pointer target.
var mouseKinds = map[EventKind]bool{
	Click:       true,
	DoubleClick: true,
	MouseUp:     true,
	MouseDown:   true,
	MouseOver:   true,
	MouseMove:   true,
	MouseOut:    true,
	ContextMenu: true,
}

// IsMouse reports whether k is a pointer event kind.
func (k EventKind) IsMouse() bool {
	return mouseKinds[k]
}

// Event is an input event delivered to the render tree.
type Event struct {
	Kind      EventKind
	Target    *Node
	X, Y      int
	Buttons   tcell.ButtonMask
	Modifiers tcell.ModMask
	Key       *tcell.EventKey
}

package listview

import (
	"slices"
	"strconv"

	"github.com/Sumatoshi-tech/listview/pkg/surface"
)

// Event is a surface event resolved against the list. For pointer kinds
// Index and Element identify the row under the pointer; other kinds carry
// Index -1.
type Event[T any] struct {
	surface.Event

	Element T
	Index   int
}

type listener[T any] struct {
	id uint64
	fn func(Event[T])
}

// Listen registers fn for events of kind and returns a function that removes it.
// Pointer events that do not land on a row never reach fn. The returned
// function stays safe to call after Dispose; Listen on a disposed list
// registers nothing.
func (lv *ListView[T]) Listen(kind surface.EventKind, fn func(Event[T])) func() {
	if lv.disposed {
		return func() {}
	}

	lv.listenID++
	l := &listener[T]{id: lv.listenID, fn: fn}
	lv.listeners[kind] = append(lv.listeners[kind], l)

	return func() {
		lv.listeners[kind] = slices.DeleteFunc(lv.listeners[kind], func(o *listener[T]) bool {
			return o.id == l.id
		})
	}
}

// Dispatch delivers ev to the listeners of its kind and reports whether any
// listener ran.
func (lv *ListView[T]) Dispatch(ev surface.Event) bool {
	handlers := slices.Clone(lv.listeners[ev.Kind])
	if len(handlers) == 0 {
		return false
	}

	out := Event[T]{Event: ev, Index: -1}

	if ev.Kind.IsMouse() {
		index := lv.itemIndex(ev.Target)
		if index < 0 {
			return false
		}

		out.Index = index
		out.Element = lv.items[index].element
	}

	for _, h := range handlers {
		h.fn(out)
	}

	return true
}

// itemIndex walks from target up to the rows container and returns the first
// row index marker found, or -1 when target is not inside a rendered row.
func (lv *ListView[T]) itemIndex(target *surface.Node) int {
	index := -1

	for n := target; n != nil; n = n.Parent() {
		if n == lv.rowsContainer {
			if index >= len(lv.items) {
				return -1
			}

			return index
		}

		if index >= 0 {
			continue
		}

		if raw, ok := n.Attr(AttrIndex); ok {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
				index = parsed
			}
		}
	}

	return -1
}

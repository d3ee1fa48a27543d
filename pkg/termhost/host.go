// Package termhost runs a surface tree full-screen on a tcell screen. It owns
// the scroll position, turns terminal input into surface events and scroll
// changes, and coalesces scroll changes into at most one callback per frame.
package termhost

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Sumatoshi-tech/listview/pkg/observability"
	"github.com/Sumatoshi-tech/listview/pkg/surface"
)

const (
	frameInterval       = 16 * time.Millisecond
	eventBuffer         = 16
	defaultScrollStep   = 3
	doubleClickInterval = 400 * time.Millisecond
	statusClass         = "status"
)

// ScrollFunc receives the visible window after the scroll position or the
// viewport changed.
type ScrollFunc func(top, height int)

// ResizeFunc receives the viewport size after the screen was resized.
type ResizeFunc func(width, height int)

// Host drives one screen.
type Host struct {
	screen tcell.Screen
	root   *surface.Node
	status *surface.Node
	state  ScrollState
	width  int

	scrollStep int
	onScroll   ScrollFunc
	onResize   ResizeFunc
	handlers   []func(surface.Event)
	logger     *slog.Logger
	now        func() time.Time

	dirty bool

	buttons   tcell.ButtonMask
	hover     *surface.Node
	pressed   *surface.Node
	lastClick *surface.Node
	clickedAt time.Time
}

// Option configures a Host.
type Option func(*Host)

// WithScrollStep sets how many rows a wheel notch scrolls.
func WithScrollStep(rows int) Option {
	return func(h *Host) {
		if rows > 0 {
			h.scrollStep = rows
		}
	}
}

// WithStatusBar reserves the bottom screen row for SetStatus.
func WithStatusBar() Option {
	return func(h *Host) {
		h.status = surface.NewNode(statusClass)
		h.status.SetStyle(tcell.StyleDefault.Reverse(true))
	}
}

// WithLogger sets the logger for event diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// WithClock replaces the time source used for double-click detection.
func WithClock(now func() time.Time) Option {
	return func(h *Host) {
		h.now = now
	}
}

// New creates a Host over an initialized screen.
func New(screen tcell.Screen, opts ...Option) *Host {
	h := &Host{
		screen:     screen,
		root:       surface.NewNode("root"),
		scrollStep: defaultScrollStep,
		logger:     observability.DiscardLogger(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.status != nil {
		h.root.AppendChild(h.status)
	}

	h.resize(screen.Size())

	return h
}

// Root returns the node content is mounted under.
func (h *Host) Root() *surface.Node { return h.root }

// State returns the scroll state.
func (h *Host) State() ScrollState { return h.state }

// Width returns the screen width.
func (h *Host) Width() int { return h.width }

// OnScroll sets the scroll callback.
func (h *Host) OnScroll(fn ScrollFunc) { h.onScroll = fn }

// OnResize sets the resize callback and calls it with the current size.
func (h *Host) OnResize(fn ResizeFunc) {
	h.onResize = fn

	if fn != nil {
		fn(h.width, h.state.ViewportHeight)
	}
}

// OnEvent registers a handler for translated surface events.
func (h *Host) OnEvent(fn func(surface.Event)) {
	h.handlers = append(h.handlers, fn)
}

// SetScrollHeight updates the content height. The viewport follows on the
// next flush if the offset had to be clamped.
func (h *Host) SetScrollHeight(height int) {
	h.setState(h.state.WithContent(height))
	h.dirty = true
}

// SetStatus replaces the status bar text. It is a no-op without WithStatusBar.
func (h *Host) SetStatus(text string) {
	if h.status == nil {
		return
	}

	h.status.SetLines([]string{text}, h.status.Style())
	h.dirty = true
}

// ScrollBy scrolls by delta rows.
func (h *Host) ScrollBy(delta int) { h.setState(h.state.ScrollBy(delta)) }

// ScrollTo scrolls to an absolute offset.
func (h *Host) ScrollTo(offset int) { h.setState(h.state.ScrollTo(offset)) }

// Reveal scrolls just enough to show [top, top+height).
func (h *Host) Reveal(top, height int) { h.setState(h.state.Reveal(top, height)) }

func (h *Host) setState(next ScrollState) {
	if next != h.state {
		h.dirty = true
	}

	h.state = next
}

// Flush reports the window to the scroll callback and repaints when anything
// changed since the last flush.
func (h *Host) Flush() {
	if !h.dirty {
		return
	}

	h.dirty = false

	if h.onScroll != nil {
		h.onScroll(h.state.Offset, h.state.ViewportHeight)
	}

	h.Draw()
}

// Draw paints the tree and shows the screen.
func (h *Host) Draw() {
	h.screen.Clear()
	surface.NewPainter(h.screen).Paint(h.root)
	h.screen.Show()
}

// Run processes input until ctx is done or a quit key is pressed. Scroll
// changes are flushed once per frame.
//
// Input is read by a goroutine blocked in PollEvent. It exits only when
// PollEvent returns nil, so the caller must call Fini on the screen after Run
// returns, and cancel ctx to stop Run from outside (for example with
// signal.NotifyContext).
func (h *Host) Run(ctx context.Context) error {
	events := make(chan tcell.Event, eventBuffer)

	go func() {
		defer close(events)

		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	h.dirty = true
	h.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || h.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			h.Flush()
		}
	}
}

func (h *Host) resize(width, height int) {
	h.width = width
	h.root.SetRect(surface.Rect{W: width, H: height})

	viewport := height
	if h.status != nil {
		viewport = max(height-1, 0)
		h.status.SetRect(surface.Rect{Y: viewport, W: width, H: 1})
	}

	h.setState(h.state.WithViewport(viewport))
	h.dirty = true

	if h.onResize != nil {
		h.onResize(width, viewport)
	}
}

func (h *Host) emit(ev surface.Event) {
	for _, fn := range h.handlers {
		fn(ev)
	}
}

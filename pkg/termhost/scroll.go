package termhost

// ScrollState is a vertical scroll position over content taller than a
// viewport. Methods return a new state; Offset always stays within
// [0, MaxOffset()].
type ScrollState struct {
	Offset         int
	ContentHeight  int
	ViewportHeight int
}

// MaxOffset returns the largest valid offset.
func (s ScrollState) MaxOffset() int {
	return max(s.ContentHeight-s.ViewportHeight, 0)
}

// Clamp pulls Offset back into range.
func (s ScrollState) Clamp() ScrollState {
	s.Offset = min(max(s.Offset, 0), s.MaxOffset())

	return s
}

// WithContent returns s with a new content height.
func (s ScrollState) WithContent(height int) ScrollState {
	s.ContentHeight = max(height, 0)

	return s.Clamp()
}

// WithViewport returns s with a new viewport height.
func (s ScrollState) WithViewport(height int) ScrollState {
	s.ViewportHeight = max(height, 0)

	return s.Clamp()
}

// ScrollBy moves by delta rows; positive scrolls down.
func (s ScrollState) ScrollBy(delta int) ScrollState {
	s.Offset += delta

	return s.Clamp()
}

// ScrollTo moves to an absolute offset.
func (s ScrollState) ScrollTo(offset int) ScrollState {
	s.Offset = offset

	return s.Clamp()
}

// Reveal scrolls the minimum amount needed to show [top, top+height).
func (s ScrollState) Reveal(top, height int) ScrollState {
	switch {
	case top < s.Offset:
		s.Offset = top
	case top+height > s.Offset+s.ViewportHeight:
		s.Offset = top + height - s.ViewportHeight
	}

	return s.Clamp()
}

// ScrollToTop moves to offset zero.
func (s ScrollState) ScrollToTop() ScrollState {
	s.Offset = 0

	return s
}

// ScrollToBottom moves to MaxOffset.
func (s ScrollState) ScrollToBottom() ScrollState {
	s.Offset = s.MaxOffset()

	return s
}

// CanScrollUp reports whether content lies above the viewport.
func (s ScrollState) CanScrollUp() bool { return s.Offset > 0 }

// CanScrollDown reports whether content lies below the viewport.
func (s ScrollState) CanScrollDown() bool { return s.Offset < s.MaxOffset() }

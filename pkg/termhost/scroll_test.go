package termhost_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/listview/pkg/termhost"
)

func TestScrollState_Clamps(t *testing.T) {
	t.Parallel()

	s := termhost.ScrollState{}.WithViewport(10).WithContent(35)

	assert.Equal(t, 25, s.MaxOffset())
	assert.Equal(t, 25, s.ScrollBy(100).Offset)
	assert.Equal(t, 0, s.ScrollBy(-5).Offset)
	assert.Equal(t, 7, s.ScrollTo(7).Offset)
	assert.Equal(t, 25, s.ScrollToBottom().Offset)
	assert.Equal(t, 0, s.ScrollTo(9).ScrollToTop().Offset)
}

func TestScrollState_ShrinkingContentPullsOffsetBack(t *testing.T) {
	t.Parallel()

	s := termhost.ScrollState{}.WithViewport(10).WithContent(100).ScrollTo(80)

	s = s.WithContent(30)

	assert.Equal(t, 20, s.Offset)
	assert.False(t, s.CanScrollDown())
	assert.True(t, s.CanScrollUp())
}

func TestScrollState_ContentShorterThanViewport(t *testing.T) {
	t.Parallel()

	s := termhost.ScrollState{}.WithViewport(10).WithContent(4).ScrollBy(3)

	assert.Zero(t, s.Offset)
	assert.Zero(t, s.MaxOffset())
	assert.False(t, s.CanScrollUp())
}

func TestScrollState_Reveal(t *testing.T) {
	t.Parallel()

	s := termhost.ScrollState{}.WithViewport(10).WithContent(100).ScrollTo(20)

	assert.Equal(t, 20, s.Reveal(25, 2).Offset, "already visible")
	assert.Equal(t, 15, s.Reveal(15, 3).Offset, "above")
	assert.Equal(t, 33, s.Reveal(40, 3).Offset, "below")
}

package surface_test

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/listview/pkg/surface"
)

const (
	testScreenW = 20
	testScreenH = 6
)

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(testScreenW, testScreenH)

	t.Cleanup(screen.Fini)

	return screen
}

func TestNode_AppendAndRemove(t *testing.T) {
	t.Parallel()

	parent := surface.NewNode("parent")
	other := surface.NewNode("other")
	child := surface.NewNode("child")

	parent.AppendChild(child)
	assert.True(t, child.Mounted())
	assert.Same(t, parent, child.Parent())

	other.AppendChild(child)
	assert.Empty(t, parent.Children())
	assert.Same(t, other, child.Parent())

	child.Remove()
	assert.False(t, child.Mounted())
	assert.Empty(t, other.Children())

	child.Remove()
	assert.Nil(t, child.Parent())
}

func TestNode_Attrs(t *testing.T) {
	t.Parallel()

	n := surface.NewNode("row")

	_, ok := n.Attr("data-index")
	assert.False(t, ok)

	n.SetAttr("data-index", "4")
	v, ok := n.Attr("data-index")
	require.True(t, ok)
	assert.Equal(t, "4", v)

	n.RemoveAttr("data-index")
	_, ok = n.Attr("data-index")
	assert.False(t, ok)
}

func TestNode_HitTestHonoursTranslate(t *testing.T) {
	t.Parallel()

	root := surface.NewNode("root")
	root.SetRect(surface.Rect{W: 10, H: 5})

	container := surface.NewNode("rows")
	container.SetRect(surface.Rect{W: 10, H: 100})
	container.SetTranslate(-40)
	root.AppendChild(container)

	row := surface.NewNode("row")
	row.SetRect(surface.Rect{Y: 42, W: 10, H: 2})
	container.AppendChild(row)

	label := surface.NewNode("label")
	label.SetRect(surface.Rect{X: 1, W: 3, H: 1})
	row.AppendChild(label)

	assert.Same(t, label, root.HitTest(2, 2))
	assert.Same(t, row, root.HitTest(6, 3))
	assert.Same(t, container, root.HitTest(6, 4))
	assert.Nil(t, root.HitTest(11, 0))

	assert.Equal(t, surface.Rect{X: 1, Y: 2, W: 3, H: 1}, label.AbsRect())
}

func TestNode_SetLinesWideRunes(t *testing.T) {
	t.Parallel()

	n := surface.NewNode("row")
	n.SetLines([]string{"a世b"}, tcell.StyleDefault)

	require.Len(t, n.Cells(), 1)
	assert.Len(t, n.Cells()[0], 4)
	assert.Equal(t, []string{"a世b"}, n.Text())
}

func TestPainter_PaintClipsToNode(t *testing.T) {
	t.Parallel()

	screen := newTestScreen(t)

	root := surface.NewNode("root")
	root.SetRect(surface.Rect{W: testScreenW, H: 3})

	row := surface.NewNode("row")
	row.SetRect(surface.Rect{Y: 1, W: 4, H: 1})
	row.SetLines([]string{"abcdefgh", "hidden"}, tcell.StyleDefault)
	root.AppendChild(row)

	surface.NewPainter(screen).Paint(root)

	got := make([]rune, 0, 5)

	for x := range 5 {
		ch, _, _, _ := screen.GetContent(x, 1)
		got = append(got, ch)
	}

	assert.Equal(t, "abcd ", string(got))

	ch, _, _, _ := screen.GetContent(0, 2)
	assert.Equal(t, ' ', ch)
}

func TestRect_Intersect(t *testing.T) {
	t.Parallel()

	a := surface.Rect{X: 0, Y: 0, W: 5, H: 5}
	b := surface.Rect{X: 3, Y: 3, W: 5, H: 5}

	assert.Equal(t, surface.Rect{X: 3, Y: 3, W: 2, H: 2}, a.Intersect(b))
	assert.True(t, a.Intersect(surface.Rect{X: 9, Y: 9, W: 1, H: 1}).Empty())
}

func TestEventKind_IsMouse(t *testing.T) {
	t.Parallel()

	assert.True(t, surface.Click.IsMouse())
	assert.True(t, surface.ContextMenu.IsMouse())
	assert.False(t, surface.KeyDown.IsMouse())
	assert.False(t, surface.Wheel.IsMouse())
}

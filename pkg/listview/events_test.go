package listview_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/listview/pkg/listview"
	"github.com/Sumatoshi-tech/listview/pkg/surface"
)

func TestListView_ClickResolvesRowIndex(t *testing.T) {
	t.Parallel()

	lv, _, root := newList(t)
	root.SetRect(surface.Rect{W: listWidth, H: 30})
	lv.Splice(0, 0, elems(10, 20, 30)...)
	lv.Layout(listWidth, 30)

	label := surface.NewNode("label")
	label.SetRect(surface.Rect{W: 3, H: 1})
	lv.Row(1).AppendChild(label)

	var got []listview.Event[elem]

	lv.Listen(surface.Click, func(ev listview.Event[elem]) { got = append(got, ev) })

	target := root.HitTest(1, 10)
	require.Same(t, label, target)

	assert.True(t, lv.Dispatch(surface.Event{Kind: surface.Click, Target: target, X: 1, Y: 10}))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, "b", got[0].Element.key)
	assert.Same(t, label, got[0].Target)
}

func TestListView_HitTestFollowsScroll(t *testing.T) {
	t.Parallel()

	lv, _, root := newList(t)
	root.SetRect(surface.Rect{W: listWidth, H: 10})
	lv.Splice(0, 0, elems(10, 20, 30)...)
	lv.Layout(listWidth, 10)
	lv.Render(35, 10)

	var index int

	lv.Listen(surface.MouseDown, func(ev listview.Event[elem]) { index = ev.Index })

	target := root.HitTest(0, 0)
	require.NotNil(t, target)
	assert.True(t, lv.Dispatch(surface.Event{Kind: surface.MouseDown, Target: target}))
	assert.Equal(t, 2, index)
}

func TestListView_DropsEventsOutsideRows(t *testing.T) {
	t.Parallel()

	lv, _, _ := newList(t)
	lv.Splice(0, 0, elems(10)...)
	lv.Layout(listWidth, 10)

	calls := 0

	lv.Listen(surface.DoubleClick, func(listview.Event[elem]) { calls++ })

	assert.False(t, lv.Dispatch(surface.Event{Kind: surface.DoubleClick, Target: lv.RowsContainer()}))
	assert.False(t, lv.Dispatch(surface.Event{Kind: surface.DoubleClick, Target: lv.DomNode()}))
	assert.False(t, lv.Dispatch(surface.Event{Kind: surface.DoubleClick}))

	foreign := surface.NewNode("row")
	foreign.SetAttr(listview.AttrIndex, "0")
	assert.False(t, lv.Dispatch(surface.Event{Kind: surface.DoubleClick, Target: foreign}))

	assert.Zero(t, calls)
}

func TestListView_NonMouseEventsPassThrough(t *testing.T) {
	t.Parallel()

	lv, _, _ := newList(t)

	var got []listview.Event[elem]

	lv.Listen(surface.KeyDown, func(ev listview.Event[elem]) { got = append(got, ev) })

	assert.True(t, lv.Dispatch(surface.Event{Kind: surface.KeyDown}))
	require.Len(t, got, 1)
	assert.Equal(t, -1, got[0].Index)
}

func TestListView_ListenCancel(t *testing.T) {
	t.Parallel()

	lv, _, _ := newList(t)
	lv.Splice(0, 0, elems(10)...)

	var first, second int

	cancel := lv.Listen(surface.Click, func(listview.Event[elem]) { first++ })
	lv.Listen(surface.Click, func(listview.Event[elem]) { second++ })

	ev := surface.Event{Kind: surface.Click, Target: lv.Row(0)}

	lv.Dispatch(ev)
	cancel()
	lv.Dispatch(ev)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestListView_ListenCancelAfterDispose(t *testing.T) {
	t.Parallel()

	lv, _, root := newList(t)
	lv.Splice(0, 0, elems(10, 20)...)
	lv.Layout(listWidth, 30)

	calls := 0
	cancel := lv.Listen(surface.Click, func(listview.Event[elem]) { calls++ })

	lv.Dispose()

	assert.NotPanics(t, cancel)
	assert.Empty(t, root.Children())

	late := lv.Listen(surface.DoubleClick, func(listview.Event[elem]) { calls++ })
	assert.NotPanics(t, late)

	assert.False(t, lv.Dispatch(surface.Event{Kind: surface.Click}))
	assert.False(t, lv.Dispatch(surface.Event{Kind: surface.DoubleClick}))
	assert.Zero(t, calls)
}

package listview

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/Sumatoshi-tech/listview/pkg/lcs"
)

// itemRange is an item of the render window with its index and offsets at
// the time the window was measured.
type itemRange[T any] struct {
	item       *item[T]
	index      int
	start, end int
}

// rangeSequence hashes rendered items by id and offset range.
type rangeSequence[T any] []itemRange[T]

func (s rangeSequence[T]) Len() int { return len(s) }

func (s rangeSequence[T]) Hash(i int) string {
	r := s[i]

	return r.item.id + ":" + strconv.Itoa(r.start) + ":" + strconv.Itoa(r.end)
}

// Splice removes deleteCount elements at start, inserts elements in their
// place and returns the removed elements. Rows of rendered items whose id and
// offset range are unchanged are left alone; items that only moved keep their
// row and are repositioned.
func (lv *ListView[T]) Splice(start, deleteCount int, elements ...T) []T {
	began := time.Now()

	start, deleteCount = lv.checkSplice(start, deleteCount)
	before := lv.renderedRanges()

	inserted := make([]*item[T], len(elements))
	sizes := make([]int, len(elements))

	for i, element := range elements {
		it := &item[T]{
			id:         lv.nextItemID(),
			element:    element,
			size:       lv.measure(element),
			templateID: lv.delegate.TemplateID(element),
			index:      -1,
		}
		inserted[i] = it
		sizes[i] = it.size
	}

	lv.rangeMap.Splice(start, deleteCount, sizes)

	deleted := make([]*item[T], deleteCount)
	copy(deleted, lv.items[start:start+deleteCount])
	lv.items = slices.Replace(lv.items, start, start+deleteCount, inserted...)

	after := lv.renderedRanges()
	pass := lv.reconcile(before, after)

	scrollHeight := lv.rangeMap.Size()
	r := lv.rowsContainer.Rect()
	r.H = scrollHeight
	lv.rowsContainer.SetRect(r)

	if lv.scrollHost != nil {
		lv.scrollHost.SetScrollHeight(scrollHeight)
	}

	lv.finish(pass)

	if lv.metrics != nil {
		lv.metrics.RecordSplice(context.Background(), time.Since(began))
	}

	lv.logger.Debug("splice",
		"start", start, "deleted", deleteCount, "inserted", len(elements),
		"attached", pass.Attached, "detached", pass.Detached, "relocated", pass.Relocated,
		"content_height", scrollHeight)

	removed := make([]T, len(deleted))
	for i, it := range deleted {
		removed[i] = it.element
	}

	return removed
}

// reconcile applies the LCS edit script between the rendered ranges before
// and after a splice. Detaches run first so attaches can reuse their rows.
func (lv *ListView[T]) reconcile(before, after []itemRange[T]) Stats {
	var pass Stats

	changes := lcs.Diff(rangeSequence[T](before), rangeSequence[T](after))

	incoming := make(map[*item[T]]struct{})

	for _, c := range changes {
		for j := c.ModifiedStart; j < c.ModifiedStart+c.ModifiedLength; j++ {
			incoming[after[j].item] = struct{}{}
		}
	}

	for _, c := range changes {
		for i := c.OriginalStart; i < c.OriginalStart+c.OriginalLength; i++ {
			it := before[i].item
			if _, moved := incoming[it]; moved {
				continue
			}

			lv.removeItemFromDOM(it)
			pass.Detached++
		}
	}

	for _, c := range changes {
		for j := c.ModifiedStart; j < c.ModifiedStart+c.ModifiedLength; j++ {
			ir := after[j]
			if ir.item.row != nil {
				pass.Relocated++
			} else {
				pass.Attached++
			}

			lv.insertItemInDOM(ir.item, ir.index)
		}
	}

	// Zero-size inserts shift indices without moving any offset range.
	for _, ir := range after {
		if ir.item.row != nil && ir.item.index != ir.index {
			lv.insertItemInDOM(ir.item, ir.index)
			pass.Relocated++
		}
	}

	return pass
}

// Render moves the render window to [renderTop, renderTop+renderHeight).
// Items leaving the window give their row back, items entering it get one,
// and items staying are not touched. Calling Render twice with the same
// window does nothing the second time.
func (lv *ListView[T]) Render(renderTop, renderHeight int) {
	renderHeight = max(renderHeight, 0)

	newStart := lv.rangeMap.IndexAt(renderTop)
	newEnd := lv.rangeMap.IndexAfter(renderTop + renderHeight)
	oldStart := lv.rangeMap.IndexAt(lv.lastRenderTop)
	oldEnd := lv.rangeMap.IndexAfter(lv.lastRenderTop + lv.lastRenderHeight)

	var pass Stats

	// Scrolling down: items leave through the top.
	for i := oldStart; i < min(oldEnd, newStart); i++ {
		lv.removeItemFromDOM(lv.items[i])
		pass.Detached++
	}

	// Scrolling up: items leave through the bottom.
	for i := max(oldStart, newEnd); i < oldEnd; i++ {
		lv.removeItemFromDOM(lv.items[i])
		pass.Detached++
	}

	// Scrolling down: items enter through the bottom.
	for i := newEnd - 1; i >= max(newStart, oldEnd); i-- {
		lv.insertItemInDOM(lv.items[i], i)
		pass.Attached++
	}

	// Scrolling up: items enter through the top.
	for i := min(newEnd, oldStart) - 1; i >= newStart; i-- {
		lv.insertItemInDOM(lv.items[i], i)
		pass.Attached++
	}

	lv.rowsContainer.SetTranslate(-renderTop)
	lv.lastRenderTop = renderTop
	lv.lastRenderHeight = renderHeight

	lv.finish(pass)
}

func (lv *ListView[T]) renderedRanges() []itemRange[T] {
	first := lv.rangeMap.IndexAt(lv.lastRenderTop)
	last := lv.rangeMap.IndexAfter(lv.lastRenderTop + lv.lastRenderHeight)

	if first >= last {
		return nil
	}

	result := make([]itemRange[T], 0, last-first)

	lv.rangeMap.Iterate(first, func(index, offset, size int) bool {
		if index >= last {
			return false
		}

		result = append(result, itemRange[T]{
			item:  lv.items[index],
			index: index,
			start: offset,
			end:   offset + size,
		})

		return true
	})

	return result
}

// insertItemInDOM gives it a row if needed, mounts and positions the row for
// index and renders the element into it.
func (lv *ListView[T]) insertItemInDOM(it *item[T], index int) {
	if it.row == nil {
		row, err := lv.cache.Alloc(it.templateID)
		if err != nil {
			// Renderers are validated in New, so only a delegate returning an
			// unregistered id gets here.
			panic(fmt.Sprintf("listview: item %s: %v", it.id, err))
		}

		it.row = row
	}

	node := it.row.Node
	if node.Parent() != lv.rowsContainer {
		lv.rowsContainer.AppendChild(node)
	}

	r := node.Rect()
	r.X = 0
	r.Y = lv.rangeMap.PositionAt(index)
	r.W = lv.rowsContainer.Rect().W
	r.H = it.size
	node.SetRect(r)
	node.SetAttr(AttrIndex, strconv.Itoa(index))
	it.index = index

	lv.renderers[it.templateID].RenderElement(it.element, index, it.row.Data)
}

func (lv *ListView[T]) removeItemFromDOM(it *item[T]) {
	if it.row == nil {
		return
	}

	it.row.Node.RemoveAttr(AttrIndex)
	lv.cache.Release(it.row)
	it.row = nil
	it.index = -1
}

func (lv *ListView[T]) checkSplice(start, deleteCount int) (int, int) {
	if lv.disposed {
		panic("listview: splice after dispose")
	}

	length := len(lv.items)
	if start >= 0 && start <= length && deleteCount >= 0 && deleteCount <= length-start {
		return start, deleteCount
	}

	if lv.cfg.strict {
		panic(fmt.Sprintf("listview: splice(%d, %d) out of range (len %d)", start, deleteCount, length))
	}

	start = min(max(start, 0), length)
	deleteCount = min(max(deleteCount, 0), length-start)

	lv.logger.Warn("splice range clamped", "start", start, "delete", deleteCount, "len", length)

	return start, deleteCount
}

func (lv *ListView[T]) measure(element T) int {
	size := lv.delegate.Height(element)
	if size >= 0 {
		return size
	}

	if lv.cfg.strict {
		panic(fmt.Sprintf("listview: delegate returned negative height %d", size))
	}

	lv.logger.Warn("negative height clamped", "height", size)

	return 0
}

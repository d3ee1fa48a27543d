// Package rangemap maintains cumulative offsets for an ordered sequence of
// variably sized items. Position is implicit: an item's index is the number of
// items to its left and its offset is the sum of their sizes, so Splice never
// shifts stored keys.
package rangemap

import (
	"fmt"
	"math/rand/v2"
)

// Fixed PCG seeds keep treap shapes reproducible across runs.
const (
	prioritySeedHi = 0x9e3779b97f4a7c15
	prioritySeedLo = 0xbf58476d1ce4e5b9
)

// node is a single item. total and count aggregate the whole subtree.
type node struct {
	left, right *node
	size        int
	total       int
	count       int
	priority    uint32
}

func (n *node) recalc() {
	n.total = n.size
	n.count = 1

	if n.left != nil {
		n.total += n.left.total
		n.count += n.left.count
	}

	if n.right != nil {
		n.total += n.right.total
		n.count += n.right.count
	}
}

func totalOf(n *node) int {
	if n == nil {
		return 0
	}

	return n.total
}

func countOf(n *node) int {
	if n == nil {
		return 0
	}

	return n.count
}

// RangeMap maps item indices to cumulative offsets and back.
// It is not safe for concurrent use.
type RangeMap struct {
	root *node
	rng  *rand.Rand
}

// New creates an empty RangeMap.
func New() *RangeMap {
	return &RangeMap{rng: rand.New(rand.NewPCG(prioritySeedHi, prioritySeedLo))}
}

func (rm *RangeMap) newNode(size int) *node {
	return &node{size: size, total: size, count: 1, priority: rm.rng.Uint32()}
}

func (rm *RangeMap) merge(l, r *node) *node {
	if l == nil {
		return r
	}

	if r == nil {
		return l
	}

	if l.priority >= r.priority {
		l.right = rm.merge(l.right, r)
		l.recalc()

		return l
	}

	r.left = rm.merge(l, r.left)
	r.recalc()

	return r
}

// split returns the first k items in left and the rest in right.
func (rm *RangeMap) split(root *node, k int) (left, right *node) {
	if root == nil {
		return nil, nil
	}

	leftCount := countOf(root.left)
	if k <= leftCount {
		l, r := rm.split(root.left, k)
		root.left = r
		root.recalc()

		return l, root
	}

	l, r := rm.split(root.right, k-leftCount-1)
	root.right = l
	root.recalc()

	return root, r
}

// Splice removes deleteCount items starting at start and inserts one item per
// entry of sizes in their place. The range must satisfy
// 0 <= start <= Len() and 0 <= deleteCount <= Len()-start, and every size
// must be non-negative; violations panic.
func (rm *RangeMap) Splice(start, deleteCount int, sizes []int) {
	length := countOf(rm.root)
	if start < 0 || start > length {
		panic(fmt.Sprintf("rangemap: splice start %d out of range [0,%d]", start, length))
	}

	if deleteCount < 0 || start+deleteCount > length {
		panic(fmt.Sprintf("rangemap: splice [%d,%d) out of range (Len %d)", start, start+deleteCount, length))
	}

	var mid *node

	for _, size := range sizes {
		if size < 0 {
			panic(fmt.Sprintf("rangemap: negative size %d", size))
		}

		mid = rm.merge(mid, rm.newNode(size))
	}

	left, right := rm.split(rm.root, start)
	_, rest := rm.split(right, deleteCount)
	rm.root = rm.merge(left, rm.merge(mid, rest))
}

// IndexAt returns the index of the item containing offset. Offsets below zero
// map to 0 and offsets at or past Size() map to Len(). Zero-size items never
// contain an offset.
func (rm *RangeMap) IndexAt(offset int) int {
	if offset < 0 {
		return 0
	}

	if offset >= totalOf(rm.root) {
		return countOf(rm.root)
	}

	index := 0

	for n := rm.root; n != nil; {
		leftTotal := totalOf(n.left)

		switch {
		case offset < leftTotal:
			n = n.left
		case offset < leftTotal+n.size:
			return index + countOf(n.left)
		default:
			offset -= leftTotal + n.size
			index += countOf(n.left) + 1
			n = n.right
		}
	}

	return index
}

// IndexAfter returns the index right after the item containing offset,
// capped at Len().
func (rm *RangeMap) IndexAfter(offset int) int {
	return min(rm.IndexAt(offset)+1, countOf(rm.root))
}

// PositionAt returns the start offset of the item at index. Index Len()
// yields Size(). Indices outside [0, Len()] panic.
func (rm *RangeMap) PositionAt(index int) int {
	length := countOf(rm.root)
	if index < 0 || index > length {
		panic(fmt.Sprintf("rangemap: index %d out of range [0,%d]", index, length))
	}

	position := 0

	for n := rm.root; n != nil; {
		leftCount := countOf(n.left)

		switch {
		case index < leftCount:
			n = n.left
		case index == leftCount:
			return position + totalOf(n.left)
		default:
			position += totalOf(n.left) + n.size
			index -= leftCount + 1
			n = n.right
		}
	}

	return position
}

// Size returns the total extent of all items.
func (rm *RangeMap) Size() int {
	return totalOf(rm.root)
}

// Len returns the number of items.
func (rm *RangeMap) Len() int {
	return countOf(rm.root)
}

// Iterate calls fn(index, offset, size) for every item from index from
// onwards, in order. Returning false stops the walk.
func (rm *RangeMap) Iterate(from int, fn func(index, offset, size int) bool) {
	rm.iterate(rm.root, 0, 0, max(from, 0), fn)
}

func (rm *RangeMap) iterate(n *node, index, offset, from int, fn func(index, offset, size int) bool) bool {
	if n == nil {
		return true
	}

	self := index + countOf(n.left)
	if from < self {
		if !rm.iterate(n.left, index, offset, from, fn) {
			return false
		}
	}

	selfOffset := offset + totalOf(n.left)
	if from <= self {
		if !fn(self, selfOffset, n.size) {
			return false
		}
	}

	return rm.iterate(n.right, self+1, selfOffset+n.size, from, fn)
}

// Clear removes every item.
func (rm *RangeMap) Clear() {
	rm.root = nil
}

// Validate panics if subtree aggregates or heap order are inconsistent.
func (rm *RangeMap) Validate() {
	var check func(n *node)

	check = func(n *node) {
		if n == nil {
			return
		}

		check(n.left)
		check(n.right)

		if n.size < 0 {
			panic(fmt.Sprintf("rangemap: negative size %d", n.size))
		}

		if n.left != nil && n.left.priority > n.priority {
			panic("rangemap: heap order violated on left child")
		}

		if n.right != nil && n.right.priority > n.priority {
			panic("rangemap: heap order violated on right child")
		}

		storedTotal, storedCount := n.total, n.count
		n.recalc()

		if n.total != storedTotal || n.count != storedCount {
			panic(fmt.Sprintf("rangemap: stale aggregate (total %d want %d, count %d want %d)",
				storedTotal, n.total, storedCount, n.count))
		}
	}

	check(rm.root)
}

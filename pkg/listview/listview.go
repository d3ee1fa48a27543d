// Package listview renders a long sequence of variably sized elements through
// a bounded window of recycled rows.
//
// A ListView keeps the element sequence and a rangemap.RangeMap in lockstep.
// Only items overlapping the last render window hold a row from the row cache.
// Splice reconciles the window with an LCS diff over (id, offset range) pairs
// so rows whose item and position survive are never touched; Render moves the
// window with four edge sweeps.
//
// A ListView is single-threaded: every method must be called from the same
// goroutine, and a Splice must complete before the next Render.
package listview

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Sumatoshi-tech/listview/pkg/observability"
	"github.com/Sumatoshi-tech/listview/pkg/rangemap"
	"github.com/Sumatoshi-tech/listview/pkg/rowcache"
	"github.com/Sumatoshi-tech/listview/pkg/surface"
)

// Surface classes and the row index marker attribute.
const (
	ClassList = "list"
	ClassRows = "list-rows"
	AttrIndex = "data-index"
)

// Registration errors returned by New.
var (
	ErrNilDelegate       = errors.New("nil delegate")
	ErrNilRenderer       = errors.New("nil renderer")
	ErrEmptyTemplateID   = errors.New("empty template id")
	ErrDuplicateTemplate = errors.New("duplicate template id")
	ErrNilContainer      = errors.New("nil container")
)

// Delegate measures elements and picks their template.
type Delegate[T any] interface {
	// Height returns the element's extent along the scroll axis. It must not be negative.
	Height(element T) int
	// TemplateID selects the renderer for the element.
	TemplateID(element T) string
}

// DelegateFuncs adapts two functions to Delegate.
type DelegateFuncs[T any] struct {
	HeightOf   func(element T) int
	TemplateOf func(element T) string
}

// Height implements Delegate.
func (d DelegateFuncs[T]) Height(element T) int { return d.HeightOf(element) }

// TemplateID implements Delegate.
func (d DelegateFuncs[T]) TemplateID(element T) string { return d.TemplateOf(element) }

// ScrollHost is told the content extent after every splice.
type ScrollHost interface {
	SetScrollHeight(height int)
}

type item[T any] struct {
	id         string
	element    T
	size       int
	templateID string
	row        *rowcache.Row
	index      int // Index the row was last rendered at.
}

// ListView is a virtualized list of T.
type ListView[T any] struct {
	delegate  Delegate[T]
	renderers map[string]Renderer[T]

	items    []*item[T]
	nextID   uint64
	rangeMap *rangemap.RangeMap
	cache    *rowcache.Cache

	domNode       *surface.Node
	rowsContainer *surface.Node
	scrollHost    ScrollHost

	lastRenderTop    int
	lastRenderHeight int

	listeners map[surface.EventKind][]*listener[T]
	listenID  uint64

	cfg     config
	logger  *slog.Logger
	metrics *observability.ViewMetrics
	stats   Stats

	disposed bool
}

// New creates a ListView mounted as the last child of container. Renderers
// are validated here: each must be non-nil and carry a unique, non-empty
// template id.
func New[T any](
	container *surface.Node, delegate Delegate[T], renderers []Renderer[T], opts ...Option,
) (*ListView[T], error) {
	if container == nil {
		return nil, ErrNilContainer
	}

	if delegate == nil {
		return nil, ErrNilDelegate
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	byID, err := indexRenderers(renderers)
	if err != nil {
		return nil, err
	}

	lv := &ListView[T]{
		delegate:  delegate,
		renderers: byID,
		rangeMap:  rangemap.New(),
		listeners: make(map[surface.EventKind][]*listener[T]),
		cfg:       cfg,
		logger:    cfg.logger,
	}

	cacheOpts := []rowcache.Option{
		rowcache.WithRetention(cfg.retention),
		rowcache.WithLogger(cfg.logger),
	}

	if cfg.meter != nil {
		rowMetrics, rowErr := observability.NewRowCacheMetrics(cfg.meter)
		if rowErr != nil {
			return nil, fmt.Errorf("listview metrics: %w", rowErr)
		}

		viewMetrics, viewErr := observability.NewViewMetrics(cfg.meter)
		if viewErr != nil {
			return nil, fmt.Errorf("listview metrics: %w", viewErr)
		}

		cacheOpts = append(cacheOpts, rowcache.WithMetrics(rowMetrics))
		lv.metrics = viewMetrics
	}

	templates := make(map[string]rowcache.Template, len(byID))
	for id, r := range byID {
		templates[id] = r
	}

	lv.cache = rowcache.New(templates, cacheOpts...)
	lv.scrollHost = cfg.scrollHost

	lv.domNode = surface.NewNode(ClassList)
	lv.rowsContainer = surface.NewNode(ClassRows)
	lv.domNode.AppendChild(lv.rowsContainer)
	container.AppendChild(lv.domNode)

	return lv, nil
}

func indexRenderers[T any](renderers []Renderer[T]) (map[string]Renderer[T], error) {
	byID := make(map[string]Renderer[T], len(renderers))

	for i, r := range renderers {
		if r == nil {
			return nil, fmt.Errorf("renderer %d: %w", i, ErrNilRenderer)
		}

		id := r.TemplateID()
		if id == "" {
			return nil, fmt.Errorf("renderer %d: %w", i, ErrEmptyTemplateID)
		}

		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("renderer %d: %w: %q", i, ErrDuplicateTemplate, id)
		}

		byID[id] = r
	}

	return byID, nil
}

// DomNode returns the list's root surface node.
func (lv *ListView[T]) DomNode() *surface.Node { return lv.domNode }

// RowsContainer returns the node holding the mounted rows.
func (lv *ListView[T]) RowsContainer() *surface.Node { return lv.rowsContainer }

// SetScrollHost replaces the scroll host notified after splices.
func (lv *ListView[T]) SetScrollHost(host ScrollHost) { lv.scrollHost = host }

// Layout sizes the list to width x height and re-renders the window at the
// current top with the new height.
func (lv *ListView[T]) Layout(width, height int) {
	lv.domNode.SetRect(surface.Rect{W: max(width, 0), H: max(height, 0)})
	lv.rowsContainer.SetRect(surface.Rect{W: max(width, 0), H: lv.rangeMap.Size()})

	for _, it := range lv.items {
		if it.row != nil {
			r := it.row.Node.Rect()
			r.W = max(width, 0)
			it.row.Node.SetRect(r)
		}
	}

	lv.Render(lv.lastRenderTop, height)
}

// Len returns the number of elements.
func (lv *ListView[T]) Len() int { return len(lv.items) }

// Element returns the element at index.
func (lv *ListView[T]) Element(index int) T { return lv.items[index].element }

// ElementHeight returns the size measured for the element at index.
func (lv *ListView[T]) ElementHeight(index int) int { return lv.items[index].size }

// ElementTop returns the start offset of the element at index.
func (lv *ListView[T]) ElementTop(index int) int { return lv.rangeMap.PositionAt(index) }

// IndexAt returns the index of the element containing offset.
func (lv *ListView[T]) IndexAt(offset int) int { return lv.rangeMap.IndexAt(offset) }

// IndexAfter returns the index after the element containing offset.
func (lv *ListView[T]) IndexAfter(offset int) int { return lv.rangeMap.IndexAfter(offset) }

// ContentHeight returns the total extent of all elements.
func (lv *ListView[T]) ContentHeight() int { return lv.rangeMap.Size() }

// RenderTop returns the top offset of the last render window.
func (lv *ListView[T]) RenderTop() int { return lv.lastRenderTop }

// RenderHeight returns the height of the last render window.
func (lv *ListView[T]) RenderHeight() int { return lv.lastRenderHeight }

// Rendered returns, in order, the indices of elements currently holding a row.
// It scans every element.
func (lv *ListView[T]) Rendered() []int {
	var out []int

	for i, it := range lv.items {
		if it.row != nil {
			out = append(out, i)
		}
	}

	return out
}

// Row returns the surface node rendering the element at index, or nil when
// the element is outside the render window.
func (lv *ListView[T]) Row(index int) *surface.Node {
	if it := lv.items[index]; it.row != nil {
		return it.row.Node
	}

	return nil
}

// ItemID returns the stable id of the element at index.
func (lv *ListView[T]) ItemID(index int) string { return lv.items[index].id }

// Dispose releases every row, disposes all templates, clears the elements and
// unmounts the list. The ListView must not be used afterwards.
func (lv *ListView[T]) Dispose() {
	if lv.disposed {
		return
	}

	for _, it := range lv.items {
		lv.removeItemFromDOM(it)
	}

	lv.cache.Dispose()
	lv.items = nil
	lv.rangeMap.Clear()
	clear(lv.listeners)
	lv.domNode.Remove()
	lv.disposed = true

	lv.logger.Debug("list disposed", "rows_disposed", lv.cache.Stats().Disposed)
}

func (lv *ListView[T]) nextItemID() string {
	id := strconv.FormatUint(lv.nextID, 10)
	lv.nextID++

	return id
}

// Package rowcache pools render surfaces per template id so that rows leaving
// a list window can be handed to items entering it without rebuilding their
// subtree.
package rowcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/listview/pkg/observability"
	"github.com/Sumatoshi-tech/listview/pkg/surface"
)

// DefaultRetention is the number of free rows kept per template id.
const DefaultRetention = 16

// rowClass is the surface class given to every row node.
const rowClass = "row"

// ErrUnknownTemplate is returned by Alloc for a template id with no registered template.
var ErrUnknownTemplate = errors.New("unknown template")

// Template builds and tears down the per-row state of one template id.
type Template interface {
	// CreateTemplate populates container with the row's subtree and returns
	// the renderer-specific data kept alongside it.
	CreateTemplate(container *surface.Node) any
	// DisposeTemplate releases data created by CreateTemplate.
	DisposeTemplate(data any)
}

// Row is a reusable render surface bound to one template id.
type Row struct {
	Node       *surface.Node
	TemplateID string
	Data       any

	free bool // Pooled or disposed; set by Release, cleared by Alloc.
}

// Cache hands out rows per template id and recycles released ones.
// It is not safe for concurrent use.
type Cache struct {
	templates map[string]Template
	pools     map[string][]*Row
	retention int
	metrics   *observability.RowCacheMetrics
	logger    *slog.Logger

	created  int64
	reused   int64
	released int64
	disposed int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithRetention sets how many free rows each template id keeps. Values below
// zero are treated as zero.
func WithRetention(n int) Option {
	return func(c *Cache) {
		c.retention = max(n, 0)
	}
}

// WithMetrics records allocation traffic on the given instruments.
func WithMetrics(m *observability.RowCacheMetrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for pool diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// New creates a Cache over the given templates, keyed by template id.
func New(templates map[string]Template, opts ...Option) *Cache {
	c := &Cache{
		templates: make(map[string]Template, len(templates)),
		pools:     make(map[string][]*Row, len(templates)),
		retention: DefaultRetention,
		logger:    observability.DiscardLogger(),
	}

	for id, tpl := range templates {
		c.templates[id] = tpl
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Alloc returns a free row for templateID, creating one when the pool is empty.
// The returned row is not mounted; the caller attaches it.
func (c *Cache) Alloc(templateID string) (*Row, error) {
	tpl, ok := c.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("alloc %q: %w", templateID, ErrUnknownTemplate)
	}

	if pool := c.pools[templateID]; len(pool) > 0 {
		row := pool[len(pool)-1]
		pool[len(pool)-1] = nil
		c.pools[templateID] = pool[:len(pool)-1]
		row.free = false
		c.reused++

		c.record(func(ctx context.Context) {
			c.metrics.RecordAlloc(ctx, templateID, observability.SourcePool)
		})

		return row, nil
	}

	node := surface.NewNode(rowClass)
	row := &Row{Node: node, TemplateID: templateID}
	row.Data = tpl.CreateTemplate(node)
	c.created++

	c.logger.Debug("row created", "template", templateID, "created", c.created)

	c.record(func(ctx context.Context) {
		c.metrics.RecordAlloc(ctx, templateID, observability.SourceNew)
	})

	return row, nil
}

// Release unmounts row and returns it to its pool. When the pool already
// holds the retention limit the row is disposed instead. A nil row and a row
// already released since its last Alloc are ignored.
func (c *Cache) Release(row *Row) {
	if row == nil {
		return
	}

	if row.free {
		c.logger.Debug("row released twice", "template", row.TemplateID)

		return
	}

	row.free = true
	row.Node.Remove()
	c.released++

	c.record(func(ctx context.Context) {
		c.metrics.RecordRelease(ctx, row.TemplateID)
	})

	pool := c.pools[row.TemplateID]
	if len(pool) >= c.retention {
		c.dispose(row)

		return
	}

	c.pools[row.TemplateID] = append(pool, row)
}

// Dispose disposes every pooled row. The cache stays usable.
func (c *Cache) Dispose() {
	for id, pool := range c.pools {
		for _, row := range pool {
			c.dispose(row)
		}

		delete(c.pools, id)
	}
}

func (c *Cache) dispose(row *Row) {
	if tpl, ok := c.templates[row.TemplateID]; ok {
		tpl.DisposeTemplate(row.Data)
	}

	row.Data = nil
	c.disposed++

	c.record(func(ctx context.Context) {
		c.metrics.RecordDispose(ctx, row.TemplateID)
	})
}

func (c *Cache) record(fn func(ctx context.Context)) {
	if c.metrics == nil {
		return
	}

	fn(context.Background())
}

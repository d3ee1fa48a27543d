package listview

import "github.com/Sumatoshi-tech/listview/pkg/surface"

// Renderer builds, fills and tears down rows of one template id.
type Renderer[T any] interface {
	TemplateID() string
	// CreateTemplate populates an empty row node and returns per-row data.
	CreateTemplate(container *surface.Node) any
	// RenderElement fills a row's data with element, rendered at index.
	RenderElement(element T, index int, data any)
	// DisposeTemplate releases data returned by CreateTemplate.
	DisposeTemplate(data any)
}

// Template adapts typed functions to Renderer. Dispose may be nil.
type Template[T, D any] struct {
	ID      string
	Create  func(container *surface.Node) D
	Render  func(element T, index int, data D)
	Dispose func(data D)
}

// TemplateID implements Renderer.
func (t *Template[T, D]) TemplateID() string { return t.ID }

// CreateTemplate implements Renderer.
func (t *Template[T, D]) CreateTemplate(container *surface.Node) any {
	return t.Create(container)
}

// RenderElement implements Renderer.
func (t *Template[T, D]) RenderElement(element T, index int, data any) {
	t.Render(element, index, data.(D)) //nolint:forcetypeassert // data always comes from Create.
}

// DisposeTemplate implements Renderer.
func (t *Template[T, D]) DisposeTemplate(data any) {
	if t.Dispose == nil {
		return
	}

	t.Dispose(data.(D)) //nolint:forcetypeassert // data always comes from Create.
}

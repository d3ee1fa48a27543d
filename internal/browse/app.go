package browse

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/Sumatoshi-tech/listview/pkg/config"
	"github.com/Sumatoshi-tech/listview/pkg/listview"
	"github.com/Sumatoshi-tech/listview/pkg/surface"
	"github.com/Sumatoshi-tech/listview/pkg/termhost"
)

// App shows one document in a list view hosted on a terminal.
type App struct {
	host   *termhost.Host
	lv     *listview.ListView[Item]
	cfg    config.BrowseConfig
	doc    *Document
	width  int
	gutter int
	stop   []func()
}

// New mounts a list view for doc under host's root and wires scrolling,
// resizing, and pointer events. Double-clicking a directory entry opens it.
func New(host *termhost.Host, doc *Document, cfg config.BrowseConfig, opts ...listview.Option) (*App, error) {
	a := &App{host: host, cfg: cfg, doc: doc}

	gutter := func() int { return a.gutter }
	renderers := []listview.Renderer[Item]{
		lineTemplate(gutter),
		codeTemplate(gutter),
		entryTemplate(),
	}

	lv, err := listview.New[Item](host.Root(), listview.DelegateFuncs[Item]{
		HeightOf:   func(it Item) int { return len(it.Rows) },
		TemplateOf: func(it Item) string { return it.Line.Template },
	}, renderers, append([]listview.Option{listview.WithScrollHost(host)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("browse: %w", err)
	}

	a.lv = lv
	a.stop = append(a.stop,
		lv.Listen(surface.Click, a.onClick),
		lv.Listen(surface.DoubleClick, a.onDoubleClick),
	)

	host.OnScroll(lv.Render)
	host.OnEvent(func(ev surface.Event) { lv.Dispatch(ev) })
	host.OnResize(a.resize)
	host.SetStatus(doc.Summary())

	return a, nil
}

// List returns the list view.
func (a *App) List() *listview.ListView[Item] { return a.lv }

// Document returns the document on screen.
func (a *App) Document() *Document { return a.doc }

// Open replaces the document with path and scrolls to the top. A load error
// is shown in the status bar and leaves the current document in place.
func (a *App) Open(path string) error {
	doc, err := Load(path, a.cfg)
	if err != nil {
		a.host.SetStatus("error: " + err.Error())

		return err
	}

	a.doc = doc
	a.reflow()
	a.host.ScrollTo(0)
	a.host.SetStatus(doc.Summary())

	return nil
}

// Close releases every row.
func (a *App) Close() {
	for _, stop := range a.stop {
		stop()
	}

	a.lv.Dispose()
}

func (a *App) resize(width, height int) {
	a.lv.Layout(width, height)

	if width != a.width || a.lv.Len() != len(a.doc.Lines) {
		a.width = width
		a.reflow()
	}
}

// reflow rebuilds every item for the current width and document.
func (a *App) reflow() {
	a.gutter = 0
	if !a.doc.Dir {
		a.gutter = len(strconv.Itoa(len(a.doc.Lines))) + 1
	}

	wrapWidth := 0
	if a.cfg.Wrap && !a.doc.Dir {
		wrapWidth = max(a.width-a.gutter, 1)
	}

	items := make([]Item, len(a.doc.Lines))
	for i := range a.doc.Lines {
		line := &a.doc.Lines[i]
		items[i] = Item{Line: line, Rows: Wrap(line.Cells, wrapWidth)}
	}

	a.lv.Splice(0, a.lv.Len(), items...)
}

func (a *App) onClick(ev listview.Event[Item]) {
	unit := "line"
	if a.doc.Dir {
		unit = "entry"
	}

	a.host.SetStatus(fmt.Sprintf("row %d  %s %d/%d  %s",
		ev.Index, unit, ev.Element.Line.Number, len(a.doc.Lines), a.doc.Path))
}

func (a *App) onDoubleClick(ev listview.Event[Item]) {
	if !ev.Element.Line.Dir {
		return
	}

	_ = a.Open(filepath.Join(a.doc.Path, ev.Element.Line.Text))
}

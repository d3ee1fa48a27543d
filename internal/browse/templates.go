package browse

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"github.com/Sumatoshi-tech/listview/pkg/listview"
	"github.com/Sumatoshi-tech/listview/pkg/surface"
)

var (
	gutterStyle = tcell.StyleDefault.Dim(true)
	dirStyle    = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	sizeStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Item is a document line wrapped to the current width. Its height is the
// number of wrapped rows.
type Item struct {
	Line *Line
	Rows [][]surface.Cell
}

type codeRow struct {
	row    *surface.Node
	gutter *surface.Node
	body   *surface.Node
}

type entryRow struct {
	row  *surface.Node
	name *surface.Node
	size *surface.Node
}

// lineTemplate draws plain text with the line number inlined in front of
// the first wrapped row.
func lineTemplate(gutter func() int) *listview.Template[Item, *surface.Node] {
	return &listview.Template[Item, *surface.Node]{
		ID:     TemplateLine,
		Create: func(container *surface.Node) *surface.Node { return container },
		Render: func(it Item, _ int, row *surface.Node) {
			width := gutter()
			number := padLeft(strconv.Itoa(it.Line.Number), width-1) + " "
			blank := padLeft("", width)

			rows := make([][]surface.Cell, len(it.Rows))
			for i, cells := range it.Rows {
				prefix := blank
				if i == 0 {
					prefix = number
				}

				rows[i] = append(cellsOf(prefix, gutterStyle), cells...)
			}

			row.SetCells(rows)
		},
	}
}

// codeTemplate keeps the gutter and the highlighted body in separate child
// nodes.
func codeTemplate(gutter func() int) *listview.Template[Item, *codeRow] {
	return &listview.Template[Item, *codeRow]{
		ID: TemplateCode,
		Create: func(container *surface.Node) *codeRow {
			r := &codeRow{
				row:    container,
				gutter: surface.NewNode("gutter"),
				body:   surface.NewNode("code"),
			}
			r.gutter.SetStyle(gutterStyle)
			container.AppendChild(r.gutter)
			container.AppendChild(r.body)

			return r
		},
		Render: func(it Item, _ int, r *codeRow) {
			width := gutter()
			height := len(it.Rows)

			r.gutter.SetRect(surface.Rect{W: width, H: height})
			r.gutter.SetLines([]string{padLeft(strconv.Itoa(it.Line.Number), width-1)}, gutterStyle)

			r.body.SetRect(surface.Rect{X: width, W: max(r.row.Rect().W-width, 0), H: height})
			r.body.SetCells(it.Rows)
		},
		Dispose: func(r *codeRow) {
			r.gutter.Remove()
			r.body.Remove()
		},
	}
}

// entryTemplate draws a directory entry with its size right-aligned.
func entryTemplate() *listview.Template[Item, *entryRow] {
	return &listview.Template[Item, *entryRow]{
		ID: TemplateEntry,
		Create: func(container *surface.Node) *entryRow {
			r := &entryRow{
				row:  container,
				name: surface.NewNode("name"),
				size: surface.NewNode("size"),
			}
			container.AppendChild(r.name)
			container.AppendChild(r.size)

			return r
		},
		Render: func(it Item, _ int, r *entryRow) {
			width := r.row.Rect().W

			size := ""
			if !it.Line.Dir {
				size = humanize.IBytes(uint64(it.Line.Size))
			}

			sizeWidth := len(size)
			r.size.SetRect(surface.Rect{X: max(width-sizeWidth, 0), W: sizeWidth, H: 1})
			r.size.SetLines([]string{size}, sizeStyle)

			name, style := it.Line.Text, tcell.StyleDefault
			if it.Line.Dir {
				name, style = name+"/", dirStyle
			}

			r.name.SetRect(surface.Rect{W: max(width-sizeWidth-1, 0), H: 1})
			r.name.SetLines([]string{name}, style)
		},
	}
}

func padLeft(s string, width int) string {
	for len(s) < width {
		s = " " + s
	}

	return s
}

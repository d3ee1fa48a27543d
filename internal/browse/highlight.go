package browse

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/Sumatoshi-tech/listview/pkg/surface"
)

// Highlighter colors source lines with a chroma style.
type Highlighter struct {
	style  *chroma.Style
	styles map[chroma.TokenType]tcell.Style
}

// NewHighlighter resolves a chroma style by name. Unknown names fall back to
// chroma's default style.
func NewHighlighter(name string) *Highlighter {
	return &Highlighter{
		style:  styles.Get(name),
		styles: make(map[chroma.TokenType]tcell.Style),
	}
}

// Highlight tokenizes lines as one block so multi-line constructs color
// correctly, and returns one cell row per line. It reports false when no
// lexer matches language.
func (h *Highlighter) Highlight(language string, lines []string) ([][]surface.Cell, bool) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil, false
	}

	text := strings.Join(lines, "\n") + "\n"

	tokens, err := chroma.Tokenise(chroma.Coalesce(lexer), nil, text)
	if err != nil {
		return nil, false
	}

	out := make([][]surface.Cell, len(lines))
	row := 0

	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}

		st := h.cellStyle(tok.Type)

		for _, r := range tok.Value {
			if r == '\n' {
				row++

				continue
			}

			if row >= len(out) {
				break
			}

			out[row] = appendRune(out[row], r, st)
		}
	}

	return out, true
}

func (h *Highlighter) cellStyle(tt chroma.TokenType) tcell.Style {
	if st, ok := h.styles[tt]; ok {
		return st
	}

	entry := h.style.Get(tt)
	st := tcell.StyleDefault

	if entry.Colour.IsSet() {
		st = st.Foreground(tcell.NewRGBColor(
			int32(entry.Colour.Red()), int32(entry.Colour.Green()), int32(entry.Colour.Blue())))
	}

	st = st.Bold(entry.Bold == chroma.Yes).
		Italic(entry.Italic == chroma.Yes).
		Underline(entry.Underline == chroma.Yes)

	h.styles[tt] = st

	return st
}

// cellsOf converts text to cells in one style.
func cellsOf(text string, style tcell.Style) []surface.Cell {
	cells := make([]surface.Cell, 0, len(text))
	for _, r := range text {
		cells = appendRune(cells, r, style)
	}

	return cells
}

// appendRune appends r and, for wide runes, the zero padding cell that
// keeps cell columns aligned with screen columns.
func appendRune(cells []surface.Cell, r rune, style tcell.Style) []surface.Cell {
	cells = append(cells, surface.Cell{Ch: r, Style: style})

	if runewidth.RuneWidth(r) == 2 {
		cells = append(cells, surface.Cell{Style: style})
	}

	return cells
}

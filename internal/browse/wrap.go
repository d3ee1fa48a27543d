package browse

import (
	"github.com/mattn/go-runewidth"

	"github.com/Sumatoshi-tech/listview/pkg/surface"
)

// Wrap splits cells into rows of at most width columns. A wide rune is never
// separated from its padding cell. It always returns at least one row, and
// a non-positive width disables wrapping.
func Wrap(cells []surface.Cell, width int) [][]surface.Cell {
	if width <= 0 || len(cells) <= width {
		return [][]surface.Cell{cells}
	}

	var rows [][]surface.Cell

	start, col := 0, 0

	for i := 0; i < len(cells); {
		w := 1
		if cells[i].Ch != 0 && runewidth.RuneWidth(cells[i].Ch) == 2 {
			w = 2
		}

		if col > 0 && col+w > width {
			rows = append(rows, cells[start:i])
			start, col = i, 0
		}

		col += w
		i += w
	}

	return append(rows, cells[start:])
}

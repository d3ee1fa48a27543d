package browse_test

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/listview/internal/browse"
	"github.com/Sumatoshi-tech/listview/pkg/surface"
)

func cells(text string) []surface.Cell {
	n := surface.NewNode("measure")
	n.SetLines([]string{text}, tcell.StyleDefault)

	return n.Cells()[0]
}

func rowTexts(rows [][]surface.Cell) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = cellText(row)
	}

	return out
}

func TestWrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{name: "fits", text: "abc", width: 5, want: []string{"abc"}},
		{name: "exact", text: "abcd", width: 4, want: []string{"abcd"}},
		{name: "splits", text: strings.Repeat("x", 10), width: 4, want: []string{"xxxx", "xxxx", "xx"}},
		{name: "disabled", text: "abcdef", width: 0, want: []string{"abcdef"}},
		{name: "empty", text: "", width: 3, want: []string{""}},
		{name: "wide rune moves whole", text: "ab世c", width: 3, want: []string{"ab", "世c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, rowTexts(browse.Wrap(cells(tt.text), tt.width)))
		})
	}
}

func TestWrap_RowsStayWithinWidth(t *testing.T) {
	t.Parallel()

	rows := browse.Wrap(cells("日本語のテキストと ascii mixed"), 5)
	require.NotEmpty(t, rows)

	for _, row := range rows {
		assert.LessOrEqual(t, len(row), 5)
	}
}

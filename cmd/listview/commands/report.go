package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/listview/pkg/scenario"
)

const (
	percent     = 100
	maxRendered = 12
	yamlIndent  = 2

	// Attached through Top, 1-based.
	firstNumericColumn = 4
	lastNumericColumn  = 10
)

// writeTable prints a status line, one table row per step and the failed
// checks of result.
func writeTable(w io.Writer, result *scenario.Result) error {
	status := color.New(color.FgGreen, color.Bold).Sprint("PASS")
	if !result.Passed {
		status = color.New(color.FgRed, color.Bold).Sprint("FAIL")
	}

	_, err := fmt.Fprintf(w, "%s %s (%d steps, %s)\n", status, result.Name, len(result.Steps)-1, result.Duration)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Footer = text.FormatDefault

	tbl.AppendHeader(table.Row{"#", "Op", "Detail", "Attached", "Detached", "Relocated", "Live", "Pooled", "Height", "Top", "Rendered"})

	for _, s := range result.Steps {
		op := s.Op
		if len(s.Failures) > 0 {
			op = color.RedString(op)
		}

		tbl.AppendRow(table.Row{
			s.Index, op, s.Detail,
			humanize.Comma(s.Attached), humanize.Comma(s.Detached), humanize.Comma(s.Relocated),
			humanize.Comma(s.LiveRows), humanize.Comma(int64(s.PooledRows)),
			humanize.Comma(int64(s.ContentHeight)), s.RenderTop, formatRendered(s.Rendered),
		})
	}

	tbl.AppendFooter(table.Row{"", "", "rows", fmt.Sprintf("created %s", humanize.Comma(result.Rows.Created)),
		fmt.Sprintf("reused %s", humanize.Comma(result.Rows.Reused)),
		fmt.Sprintf("hit rate %s%%", humanize.FtoaWithDigits(result.Rows.HitRate*percent, 1))})

	numeric := make([]table.ColumnConfig, 0, lastNumericColumn-firstNumericColumn+1)
	for col := firstNumericColumn; col <= lastNumericColumn; col++ {
		numeric = append(numeric, table.ColumnConfig{Number: col, Align: text.AlignRight})
	}

	tbl.SetColumnConfigs(numeric)

	_, err = fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	for _, f := range result.Failures() {
		_, err = fmt.Fprintln(w, color.RedString("  "+f))
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	return nil
}

// writeYAML encodes result as one YAML document.
func writeYAML(w io.Writer, result *scenario.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)

	err := enc.Encode(result)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return enc.Close()
}

// formatRendered shortens long index lists to their ends.
func formatRendered(indices []int) string {
	if len(indices) == 0 {
		return "-"
	}

	if len(indices) > maxRendered {
		return fmt.Sprintf("%d..%d (%d)", indices[0], indices[len(indices)-1], len(indices))
	}

	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}

	return strings.Join(parts, ",")
}

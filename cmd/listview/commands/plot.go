package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/listview/pkg/scenario"
)

const (
	chartWidth  = "100%"
	chartHeight = "420px"
	plotMode    = 0o644
)

type plotSeries struct {
	name  string
	color string
	value func(scenario.StepResult) int64
}

var stepSeries = []plotSeries{
	{name: "live rows", color: "#5470c6", value: func(s scenario.StepResult) int64 { return s.LiveRows }},
	{name: "pooled rows", color: "#91cc75", value: func(s scenario.StepResult) int64 { return int64(s.PooledRows) }},
	{name: "attached", color: "#fac858", value: func(s scenario.StepResult) int64 { return s.Attached }},
	{name: "detached", color: "#ee6666", value: func(s scenario.StepResult) int64 { return s.Detached }},
	{name: "relocated", color: "#73c0de", value: func(s scenario.StepResult) int64 { return s.Relocated }},
}

// buildStepChart charts the row counters of every step of one result.
func buildStepChart(result *scenario.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    result.Name,
			Subtitle: fmt.Sprintf("row reuse %.1f%%", result.Rows.HitRate*percent),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "rows"}),
	)

	labels := make([]string, len(result.Steps))
	for i, s := range result.Steps {
		labels[i] = fmt.Sprintf("%d %s", s.Index, s.Op)
	}

	line.SetXAxis(labels)

	for _, series := range stepSeries {
		data := make([]opts.LineData, len(result.Steps))
		for i, s := range result.Steps {
			data[i] = opts.LineData{Value: series.value(s)}
		}

		line.AddSeries(series.name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: series.color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: series.color}),
		)
	}

	return line
}

// writePlot renders one chart per result into a single HTML page.
func writePlot(w io.Writer, results []*scenario.Result) error {
	page := components.NewPage()
	page.PageTitle = "listview replay"

	for _, result := range results {
		page.AddCharts(buildStepChart(result))
	}

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

func writePlotFile(path string, results []*scenario.Result) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, plotMode)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}

	err = writePlot(f, results)
	if err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}

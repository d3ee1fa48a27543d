package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/listview/pkg/listview"
	"github.com/Sumatoshi-tech/listview/pkg/observability"
	"github.com/Sumatoshi-tech/listview/pkg/rowcache"
	"github.com/Sumatoshi-tech/listview/pkg/surface"
	"github.com/Sumatoshi-tech/listview/pkg/termhost"
)

// Span names.
const (
	spanScenario = "listview.scenario"
	spanStep     = "listview.scenario.step"
)

// Result is the outcome of one Run.
type Result struct {
	Name     string        `yaml:"name"`
	Passed   bool          `yaml:"passed"`
	Duration time.Duration `yaml:"duration"`
	Steps    []StepResult  `yaml:"steps"`
	Rows     RowSummary    `yaml:"rows"`
}

// Failures returns every failed check across all steps.
func (r *Result) Failures() []string {
	var out []string

	for _, s := range r.Steps {
		for _, f := range s.Failures {
			out = append(out, "step "+strconv.Itoa(s.Index)+": "+f)
		}
	}

	return out
}

// RowSummary is the row cache state at the end of a run.
type RowSummary struct {
	Created  int64   `yaml:"created"`
	Reused   int64   `yaml:"reused"`
	Released int64   `yaml:"released"`
	Disposed int64   `yaml:"disposed"`
	HitRate  float64 `yaml:"hit_rate"`
}

// StepResult records what one step did. Step 0 loads the initial items.
type StepResult struct {
	Index         int           `yaml:"index"`
	Op            string        `yaml:"op"`
	Detail        string        `yaml:"detail"`
	Attached      int64         `yaml:"attached"`
	Detached      int64         `yaml:"detached"`
	Relocated     int64         `yaml:"relocated"`
	LiveRows      int64         `yaml:"live_rows"`
	PooledRows    int           `yaml:"pooled_rows"`
	ContentHeight int           `yaml:"content_height"`
	RenderTop     int           `yaml:"render_top"`
	Rendered      []int         `yaml:"rendered,flow"`
	Duration      time.Duration `yaml:"duration"`
	Failures      []string      `yaml:"failures,omitempty"`
}

// Option configures Run.
type Option func(*runner)

// WithTracer records one span per run and per step.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *runner) {
		r.tracer = tracer
	}
}

// WithLogger sets the logger passed to the list view.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) {
		r.logger = l
	}
}

// WithMeter records list view metrics on meter.
func WithMeter(meter metric.Meter) Option {
	return func(r *runner) {
		r.meter = meter
	}
}

// WithRetention sets the row pool retention per template.
func WithRetention(n int) Option {
	return func(r *runner) {
		r.retention = n
	}
}

// WithStrict selects the list view precondition policy. Strict runs reject
// out-of-range splices with ErrInvalidStep; lenient runs let the list clamp.
func WithStrict(strict bool) Option {
	return func(r *runner) {
		r.strict = strict
	}
}

type runner struct {
	tracer    trace.Tracer
	logger    *slog.Logger
	meter     metric.Meter
	retention int
	strict    bool

	lv     *listview.ListView[Item]
	scroll termhost.ScrollState
}

// SetScrollHeight implements listview.ScrollHost.
func (r *runner) SetScrollHeight(height int) {
	r.scroll = r.scroll.WithContent(height)
}

// Run replays sc against a fresh list view. Failed expectations do not stop
// the run; they are collected and reported as ErrExpectationFailed together
// with the full result. An invalid step aborts the run with ErrInvalidStep.
func Run(ctx context.Context, sc *Scenario, opts ...Option) (*Result, error) {
	r := &runner{
		tracer:    nooptrace.NewTracerProvider().Tracer(spanScenario),
		logger:    observability.DiscardLogger(),
		retention: rowcache.DefaultRetention,
		strict:    true,
	}

	for _, opt := range opts {
		opt(r)
	}

	ctx, span := r.tracer.Start(ctx, spanScenario, trace.WithAttributes(
		attribute.String("scenario.name", sc.Name),
		attribute.Int("scenario.steps", len(sc.Steps)),
	))
	defer span.End()

	began := time.Now()

	lv, err := r.newList(sc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list setup failed")

		return nil, err
	}

	defer lv.Dispose()

	r.lv = lv
	result := &Result{Name: sc.Name, Passed: true}

	load := Step{Splice: &SpliceStep{Items: sc.Items}}
	steps := append([]Step{load}, sc.Steps...)

	for i, step := range steps {
		sr, stepErr := r.runStep(ctx, i, step, sc.Viewport)
		result.Steps = append(result.Steps, sr)

		if stepErr != nil {
			span.RecordError(stepErr)
			span.SetStatus(codes.Error, stepErr.Error())

			return result, stepErr
		}

		if len(sr.Failures) > 0 {
			result.Passed = false
		}
	}

	rows := lv.RowStats()
	result.Rows = RowSummary{
		Created:  rows.Created,
		Reused:   rows.Reused,
		Released: rows.Released,
		Disposed: rows.Disposed,
		HitRate:  rows.HitRate(),
	}
	result.Duration = time.Since(began)

	if !result.Passed {
		failures := result.Failures()
		span.SetStatus(codes.Error, "expectations failed")

		return result, fmt.Errorf("%w: %s: %d failed check(s), first: %s",
			ErrExpectationFailed, sc.Name, len(failures), failures[0])
	}

	return result, nil
}

func (r *runner) newList(sc *Scenario) (*listview.ListView[Item], error) {
	ids := sc.Templates()
	renderers := make([]listview.Renderer[Item], 0, len(ids))

	for _, id := range ids {
		renderers = append(renderers, keyTemplate(id))
	}

	opts := []listview.Option{
		listview.WithScrollHost(r),
		listview.WithLogger(r.logger),
		listview.WithRetention(r.retention),
		listview.WithStrict(r.strict),
	}

	if r.meter != nil {
		opts = append(opts, listview.WithMetrics(r.meter))
	}

	lv, err := listview.New[Item](surface.NewNode("root"), listview.DelegateFuncs[Item]{
		HeightOf:   func(it Item) int { return it.Size },
		TemplateOf: Item.TemplateID,
	}, renderers, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	return lv, nil
}

// keyTemplate renders an item's key as the single line of its row.
func keyTemplate(id string) *listview.Template[Item, *surface.Node] {
	return &listview.Template[Item, *surface.Node]{
		ID:     id,
		Create: func(container *surface.Node) *surface.Node { return container },
		Render: func(it Item, _ int, node *surface.Node) {
			node.SetLines([]string{it.Key}, tcell.StyleDefault)
		},
	}
}

func (r *runner) runStep(ctx context.Context, index int, step Step, viewport Viewport) (StepResult, error) {
	op := step.Op()
	if index == 0 {
		op = "load"
	}

	stepCtx, span := r.tracer.Start(ctx, spanStep, trace.WithAttributes(
		attribute.Int("step.index", index),
		attribute.String("step.op", op),
	))
	defer span.End()

	lv := r.lv
	before := lv.Stats()
	began := time.Now()

	sr := StepResult{Index: index, Op: op}

	var err error

	switch {
	case index == 0:
		sr.Detail = fmt.Sprintf("%d items, viewport %dx%d", len(step.Splice.Items), viewport.Width, viewport.Height)
		r.scroll = r.scroll.WithViewport(viewport.Height)
		lv.Layout(viewport.Width, viewport.Height)
		lv.Splice(0, 0, step.Splice.Items...)
	case step.Render != nil:
		sr.Detail = fmt.Sprintf("top=%d height=%d", step.Render.Top, step.Render.Height)
		r.scroll = r.scroll.WithViewport(step.Render.Height)
		lv.Render(step.Render.Top, step.Render.Height)
	case step.Scroll != nil:
		sr.Detail = r.scrollTo(step.Scroll)
	case step.Splice != nil:
		sr.Detail, err = r.splice(index, step.Splice)
	case step.Expect != nil:
		sr.Detail = "check"
		sr.Failures = r.check(step.Expect)
	}

	sr.Duration = time.Since(began)

	delta := lv.Stats().Sub(before)
	rows := lv.RowStats()
	sr.Attached = delta.Attached
	sr.Detached = delta.Detached
	sr.Relocated = delta.Relocated
	sr.LiveRows = lv.LiveRows()
	sr.PooledRows = rows.TotalPooled()
	sr.ContentHeight = lv.ContentHeight()
	sr.RenderTop = lv.RenderTop()
	sr.Rendered = lv.Rendered()

	span.SetAttributes(
		attribute.Int64("rows.attached", sr.Attached),
		attribute.Int64("rows.detached", sr.Detached),
		attribute.Int64("rows.relocated", sr.Relocated),
		attribute.Int64("rows.live", sr.LiveRows),
	)

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case len(sr.Failures) > 0:
		span.SetStatus(codes.Error, sr.Failures[0])
		r.logger.WarnContext(stepCtx, "expectation failed",
			"step", index, "failures", len(sr.Failures), "first", sr.Failures[0])
	}

	return sr, err
}

func (r *runner) scrollTo(s *ScrollStep) string {
	r.scroll = r.scroll.WithViewport(r.lv.RenderHeight()).ScrollTo(r.lv.RenderTop())

	var detail string

	switch {
	case s.To != nil:
		r.scroll = r.scroll.ScrollTo(*s.To)
		detail = "to=" + strconv.Itoa(*s.To)
	case s.By != nil:
		r.scroll = r.scroll.ScrollBy(*s.By)
		detail = "by=" + strconv.Itoa(*s.By)
	}

	r.lv.Render(r.scroll.Offset, r.scroll.ViewportHeight)

	return detail + " -> top=" + strconv.Itoa(r.scroll.Offset)
}

func (r *runner) splice(index int, s *SpliceStep) (string, error) {
	detail := fmt.Sprintf("start=%d delete=%d insert=%d", s.Start, s.Delete, len(s.Items))

	if r.strict && s.Start+s.Delete > r.lv.Len() {
		return detail, fmt.Errorf("%w: step %d: splice [%d,%d) beyond %d items",
			ErrInvalidStep, index, s.Start, s.Start+s.Delete, r.lv.Len())
	}

	removed := r.lv.Splice(s.Start, s.Delete, s.Items...)

	return detail + " removed=" + strconv.Itoa(len(removed)), nil
}

func (r *runner) check(e *Expect) []string {
	lv := r.lv

	var failures []string

	if e.Rendered != nil {
		if got := lv.Rendered(); !slices.Equal(got, e.Rendered) {
			failures = append(failures, fmt.Sprintf("rendered: want %v, got %v", e.Rendered, got))
		}
	}

	if e.Rows != nil {
		if got := r.rowTexts(); !slices.Equal(got, e.Rows) {
			failures = append(failures, fmt.Sprintf("rows: want %q, got %q", e.Rows, got))
		}
	}

	if e.Keys != nil {
		if got := r.keys(); !slices.Equal(got, e.Keys) {
			failures = append(failures, fmt.Sprintf("keys: want %q, got %q", e.Keys, got))
		}
	}

	if e.ContentHeight != nil && lv.ContentHeight() != *e.ContentHeight {
		failures = append(failures, fmt.Sprintf("content_height: want %d, got %d", *e.ContentHeight, lv.ContentHeight()))
	}

	if e.LiveRows != nil && lv.LiveRows() != int64(*e.LiveRows) {
		failures = append(failures, fmt.Sprintf("live_rows: want %d, got %d", *e.LiveRows, lv.LiveRows()))
	}

	return failures
}

// rowTexts returns what the rendered rows display, in index order.
func (r *runner) rowTexts() []string {
	var out []string

	for _, i := range r.lv.Rendered() {
		text := r.lv.Row(i).Text()
		if len(text) == 0 {
			out = append(out, "")

			continue
		}

		out = append(out, text[0])
	}

	return out
}

func (r *runner) keys() []string {
	out := make([]string, r.lv.Len())
	for i := range out {
		out[i] = r.lv.Element(i).Key
	}

	return out
}

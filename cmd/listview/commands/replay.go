package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/listview/pkg/observability"
	"github.com/Sumatoshi-tech/listview/pkg/scenario"
)

// Report formats.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

const (
	metricsPath           = "/metrics"
	metricsReadTimeout    = 5 * time.Second
	metricsShutdownPeriod = 2 * time.Second
)

var (
	// ErrUnknownFormat is returned for an unsupported --format value.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrScenariosFailed is returned when at least one scenario had failed checks.
	ErrScenariosFailed = errors.New("scenarios failed")

	errNothingReplayed = errors.New("no scenario replayed yet")
)

// ReplayCommand holds flags of the replay command.
type ReplayCommand struct {
	format      string
	plot        string
	metricsAddr string
	lenient     bool
	noColor     bool
}

// NewReplayCommand creates the replay command.
func NewReplayCommand() *cobra.Command {
	rc := &ReplayCommand{format: FormatTable}

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>...",
		Short: "Replay scenario files against a list view",
		Long: `Replay runs each scenario headlessly, checks its expectations and reports
what every step did to the rendered rows and the row pool.`,
		Args: cobra.MinimumNArgs(1),
		RunE: rc.run,
	}

	cmd.Flags().StringVar(&rc.format, "format", FormatTable, "Output format: table, yaml")
	cmd.Flags().StringVar(&rc.plot, "plot", "", "Write an HTML chart of row counts per step to this file")
	cmd.Flags().StringVar(&rc.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while replaying")
	cmd.Flags().BoolVar(&rc.lenient, "lenient", false, "Clamp out-of-range splices instead of failing")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (rc *ReplayCommand) run(cmd *cobra.Command, args []string) error {
	if rc.format != FormatTable && rc.format != FormatYAML {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, rc.format)
	}

	if rc.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	rt, err := setup(cmd, observability.ModeCLI, cmd.ErrOrStderr(), withMetricsAddr(rc.metricsAddr))
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownPeriod)
		defer cancel()

		_ = rt.close(shutdownCtx)
	}()

	var replayed atomic.Int64

	if rt.providers.MetricsHandler != nil {
		ready := func(context.Context) error {
			if replayed.Load() == 0 {
				return errNothingReplayed
			}

			return nil
		}

		stop, serveErr := serveMetrics(ctx, rt, ready)
		if serveErr != nil {
			return serveErr
		}

		defer stop()
	}

	results := make([]*scenario.Result, 0, len(args))
	failed := 0

	for _, path := range args {
		result, runErr := rc.replay(ctx, path, rt)
		replayed.Add(1)

		switch {
		case errors.Is(runErr, scenario.ErrExpectationFailed):
			failed++
		case runErr != nil:
			return fmt.Errorf("%s: %w", path, runErr)
		}

		results = append(results, result)

		err = rc.write(cmd.OutOrStdout(), result)
		if err != nil {
			return err
		}
	}

	if rc.plot != "" {
		err = writePlotFile(rc.plot, results)
		if err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrScenariosFailed, failed, len(args))
	}

	return nil
}

func (rc *ReplayCommand) replay(ctx context.Context, path string, rt *runtime) (*scenario.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	sc, err := scenario.Parse(data)
	if err != nil {
		return nil, err
	}

	rt.providers.Logger.Debug("replaying scenario", "path", path, "name", sc.Name, "steps", len(sc.Steps))

	return scenario.Run(ctx, sc,
		scenario.WithTracer(rt.providers.Tracer),
		scenario.WithLogger(rt.providers.Logger),
		scenario.WithMeter(rt.providers.Meter),
		scenario.WithRetention(rt.cfg.List.Retention),
		scenario.WithStrict(rt.cfg.List.Strict && !rc.lenient),
	)
}

func (rc *ReplayCommand) write(w io.Writer, result *scenario.Result) error {
	if rc.format == FormatYAML {
		return writeYAML(w, result)
	}

	return writeTable(w, result)
}

// serveMetrics serves the runtime's Prometheus handler with health probes on
// rt.metricsAddr and returns a function that stops the server.
func serveMetrics(ctx context.Context, rt *runtime, ready observability.ReadyCheck) (func(), error) {
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", rt.metricsAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", rt.metricsAddr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, rt.providers.MetricsHandler)
	mux.Handle(observability.HealthPath, observability.HealthHandler())
	mux.Handle(observability.ReadyPath, observability.ReadyHandler(ready))

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: metricsReadTimeout}

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			rt.providers.Logger.Error("metrics server stopped", "error", serveErr)
		}
	}()

	rt.providers.Logger.Info("serving metrics", "addr", listener.Addr().String(), "path", metricsPath)

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownPeriod)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}

	return stop, nil
}

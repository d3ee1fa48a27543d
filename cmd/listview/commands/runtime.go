// Package commands implements CLI command handlers for listview.
package commands

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/listview/pkg/config"
	"github.com/Sumatoshi-tech/listview/pkg/listview"
	"github.com/Sumatoshi-tech/listview/pkg/observability"
	"github.com/Sumatoshi-tech/listview/pkg/version"
)

// Global flag names.
const (
	FlagConfig  = "config"
	FlagVerbose = "verbose"
	FlagQuiet   = "quiet"
)

const logFileMode = 0o600

// AddGlobalFlags registers the persistent flags every command reads.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().String(FlagConfig, "", "Config file (default: ./listview.yaml or ~/.config/listview/listview.yaml)")
	root.PersistentFlags().BoolP(FlagVerbose, "v", false, "verbose output")
	root.PersistentFlags().BoolP(FlagQuiet, "q", false, "suppress output")
}

// runtime is the loaded configuration plus initialized telemetry.
type runtime struct {
	cfg         *config.Config
	providers   observability.Providers
	logFile     *os.File
	metricsAddr string
}

// setupOption adjusts the telemetry configuration once the config file is loaded.
type setupOption func(rt *runtime, obsCfg *observability.Config)

// withMetricsAddr enables the Prometheus exporter when flag or the
// configured metrics address is set. The flag wins.
func withMetricsAddr(flag string) setupOption {
	return func(rt *runtime, obsCfg *observability.Config) {
		rt.metricsAddr = cmp.Or(flag, rt.cfg.Observability.MetricsAddr)
		obsCfg.Prometheus = rt.metricsAddr != ""
	}
}

// setup loads configuration and starts telemetry. Logs go to the configured
// log file, else to fallback. A nil fallback leaves the choice to the mode.
func setup(
	cmd *cobra.Command, mode observability.AppMode, fallback io.Writer, opts ...setupOption,
) (*runtime, error) {
	path, _ := cmd.Flags().GetString(FlagConfig)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Observability.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Observability.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.SampleRatio = cfg.Observability.SampleRatio
	obsCfg.LogLevel = logLevel(cmd, cfg.Logging.Level)
	obsCfg.LogJSON = cfg.Logging.Format == "json"
	obsCfg.LogWriter = fallback

	if cfg.Logging.File != "" {
		rt.logFile, err = os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFileMode)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}

		obsCfg.LogWriter = rt.logFile
	}

	for _, opt := range opts {
		opt(rt, &obsCfg)
	}

	rt.providers, err = observability.Init(obsCfg)
	if err != nil {
		_ = rt.closeLog()

		return nil, fmt.Errorf("init observability: %w", err)
	}

	return rt, nil
}

func logLevel(cmd *cobra.Command, configured string) slog.Level {
	if quiet, _ := cmd.Flags().GetBool(FlagQuiet); quiet {
		return slog.LevelError
	}

	if verbose, _ := cmd.Flags().GetBool(FlagVerbose); verbose {
		return slog.LevelDebug
	}

	return observability.ParseLogLevel(configured)
}

// listOptions applies the list section of the configuration.
func (rt *runtime) listOptions() []listview.Option {
	return []listview.Option{
		listview.WithLogger(rt.providers.Logger),
		listview.WithMetrics(rt.providers.Meter),
		listview.WithRetention(rt.cfg.List.Retention),
		listview.WithStrict(rt.cfg.List.Strict),
	}
}

// close flushes telemetry and closes the log file.
func (rt *runtime) close(ctx context.Context) error {
	err := rt.providers.Shutdown(ctx)

	return errors.Join(err, rt.closeLog())
}

func (rt *runtime) closeLog() error {
	if rt.logFile == nil {
		return nil
	}

	return rt.logFile.Close()
}

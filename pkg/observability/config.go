// Package observability wires tracing, metrics and structured logging for the
// listview commands, and defines the row cache and list view instruments.
package observability

import (
	"io"
	"log/slog"
	"os"
)

// AppMode is how the listview binary was launched. It is stamped on the
// resource and on every log record.
type AppMode string

const (
	// ModeCLI covers headless commands such as replay and version.
	ModeCLI AppMode = "cli"
	// ModeTerminal is the full-screen browse command.
	ModeTerminal AppMode = "terminal"
)

const (
	defaultServiceName        = "listview"
	defaultShutdownTimeoutSec = 5
)

// Config selects exporters and log output for Init.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string // deployment.environment, e.g. "ci"
	Mode           AppMode

	// OTLPEndpoint is a gRPC collector address. Empty turns off span export
	// and the OTLP metric reader.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// SampleRatio samples root spans by trace id. Zero keeps every trace.
	SampleRatio float64

	LogLevel slog.Level
	LogJSON  bool

	// LogWriter receives log output. Nil means stderr in ModeCLI and
	// nowhere in ModeTerminal, where stderr is the screen.
	LogWriter io.Writer

	// Prometheus adds a Prometheus reader to the meter provider and exposes
	// it as Providers.MetricsHandler.
	Prometheus bool

	// ShutdownTimeoutSec bounds Providers.Shutdown. Zero or less uses five seconds.
	ShutdownTimeoutSec int
}

// DefaultConfig is a CLI-mode config with every exporter off.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

func (cfg Config) logWriter() io.Writer {
	switch {
	case cfg.LogWriter != nil:
		return cfg.LogWriter
	case cfg.Mode == ModeTerminal:
		return io.Discard
	default:
		return os.Stderr
	}
}

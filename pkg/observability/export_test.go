package observability

import "io"

// LogWriterOf exposes Config.logWriter for tests.
func LogWriterOf(cfg Config) io.Writer { return cfg.logWriter() }

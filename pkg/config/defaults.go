package config

// List defaults.
const (
	DefaultListRetention = 16
	DefaultListStrict    = true
)

// Browse defaults.
const (
	DefaultBrowseScrollStep = 3
	DefaultBrowseTabWidth   = 4
	DefaultBrowseStyle      = "monokai"
	DefaultBrowseWrap       = true
	DefaultBrowseMaxFile    = 8 << 20 // 8 MiB.
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Observability defaults.
const (
	DefaultOTLPInsecure = false
	DefaultSampleRatio  = 1.0
)

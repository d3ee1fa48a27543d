// Package config loads listview settings from a YAML file and LISTVIEW_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LISTVIEW_LIST_RETENTION.
const EnvPrefix = "LISTVIEW"

// Sentinel validation errors.
var (
	ErrInvalidRetention   = errors.New("list retention must not be negative")
	ErrInvalidScrollStep  = errors.New("browse scroll step must be positive")
	ErrInvalidTabWidth    = errors.New("browse tab width must be positive")
	ErrInvalidMaxFile     = errors.New("browse max file size must be positive")
	ErrInvalidLogFormat   = errors.New("logging format must be text or json")
	ErrInvalidSampleRatio = errors.New("observability sample ratio must be within [0, 1]")
)

// Config holds all listview configuration.
type Config struct {
	List          ListConfig          `mapstructure:"list"`
	Browse        BrowseConfig        `mapstructure:"browse"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ListConfig tunes every list view the binaries create.
type ListConfig struct {
	Retention int  `mapstructure:"retention"`
	Strict    bool `mapstructure:"strict"`
}

// BrowseConfig holds settings of the interactive browser.
type BrowseConfig struct {
	Style      string `mapstructure:"style"`
	ScrollStep int    `mapstructure:"scroll_step"`
	TabWidth   int    `mapstructure:"tab_width"`
	MaxFile    int64  `mapstructure:"max_file"`
	Wrap       bool   `mapstructure:"wrap"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// ObservabilityConfig holds telemetry export settings.
type ObservabilityConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	MetricsAddr  string  `mapstructure:"metrics_addr"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// LoadConfig loads configuration from configPath, or from listview.yaml in
// the working directory or ~/.config/listview when configPath is empty.
// A missing default file is not an error; a missing explicit file is.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("listview")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME/.config/listview")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		List: ListConfig{Retention: DefaultListRetention, Strict: DefaultListStrict},
		Browse: BrowseConfig{
			Style:      DefaultBrowseStyle,
			ScrollStep: DefaultBrowseScrollStep,
			TabWidth:   DefaultBrowseTabWidth,
			MaxFile:    DefaultBrowseMaxFile,
			Wrap:       DefaultBrowseWrap,
		},
		Logging:       LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Observability: ObservabilityConfig{SampleRatio: DefaultSampleRatio, OTLPInsecure: DefaultOTLPInsecure},
	}
}

// setDefaults sets default configuration values. Every key is registered so
// AutomaticEnv can override it.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("list.retention", DefaultListRetention)
	viperCfg.SetDefault("list.strict", DefaultListStrict)

	viperCfg.SetDefault("browse.style", DefaultBrowseStyle)
	viperCfg.SetDefault("browse.scroll_step", DefaultBrowseScrollStep)
	viperCfg.SetDefault("browse.tab_width", DefaultBrowseTabWidth)
	viperCfg.SetDefault("browse.max_file", DefaultBrowseMaxFile)
	viperCfg.SetDefault("browse.wrap", DefaultBrowseWrap)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)
	viperCfg.SetDefault("logging.file", "")

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("observability.metrics_addr", "")
	viperCfg.SetDefault("observability.environment", "")
	viperCfg.SetDefault("observability.sample_ratio", DefaultSampleRatio)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.List.Retention < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRetention, config.List.Retention)
	}

	if config.Browse.ScrollStep <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidScrollStep, config.Browse.ScrollStep)
	}

	if config.Browse.TabWidth <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTabWidth, config.Browse.TabWidth)
	}

	if config.Browse.MaxFile <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxFile, config.Browse.MaxFile)
	}

	switch config.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Observability.SampleRatio < 0 || config.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Observability.SampleRatio)
	}

	return nil
}

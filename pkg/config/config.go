package config

import (
	"io"

	"go.uber.org/zap/zapcore"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/compression"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/display"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/logger"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/observability"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/serializer"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/storage"
)

// Config is the complete configuration of the CLI
type Config struct {
	// Storage is the storage registry key
	Storage string `mapstructure:"storage" yaml:"storage"`
	// Columns declares the table schema
	Columns []string `mapstructure:"columns" yaml:"columns"`

	Display     DisplayConfig     `mapstructure:"display" yaml:"display"`
	JSON        JSONConfig        `mapstructure:"json" yaml:"json"`
	YAML        YAMLConfig        `mapstructure:"yaml" yaml:"yaml"`
	Compression CompressionConfig `mapstructure:"compression" yaml:"compression"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	Tracing     TracingConfig     `mapstructure:"tracing" yaml:"tracing"`
}

// DisplayConfig controls how entries are shown
type DisplayConfig struct {
	// Format is the default display registry key
	Format     string `mapstructure:"format" yaml:"format"`
	CellWidth  int    `mapstructure:"cell_width" yaml:"cell_width"`
	HTMLBorder int    `mapstructure:"html_border" yaml:"html_border"`
}

// JSONConfig controls the JSON serializer
type JSONConfig struct {
	// Indent of 0 writes compact documents
	Indent int `mapstructure:"indent" yaml:"indent"`
}

// YAMLConfig controls the YAML serializer
type YAMLConfig struct {
	Indent int `mapstructure:"indent" yaml:"indent"`
}

// CompressionConfig controls compressed database files
type CompressionConfig struct {
	// Level is one of fastest, default, better, best
	Level string `mapstructure:"level" yaml:"level"`
}

// LogConfig controls the global logger
type LogConfig struct {
	Level    string `mapstructure:"level" yaml:"level"`
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
}

// TracingConfig controls span export
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled" yaml:"enabled"`
	SamplingRate float64 `mapstructure:"sampling_rate" yaml:"sampling_rate"`
}

// Defaults returns the configuration of the personal data application
func Defaults() *Config {
	return &Config{
		Storage: string(storage.KindMemoryDict),
		Columns: []string{"name", "address", "phone_number"},
		Display: DisplayConfig{
			Format:     string(display.KindTable),
			CellWidth:  serializer.DefaultCellWidth,
			HTMLBorder: serializer.DefaultHTMLBorder,
		},
		JSON: JSONConfig{Indent: 0},
		YAML: YAMLConfig{Indent: serializer.DefaultYAMLIndent},
		Compression: CompressionConfig{
			Level: "default",
		},
		Log: LogConfig{
			Level:    "warn",
			Encoding: "console",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			SamplingRate: 1.0,
		},
	}
}

// Validate checks the configuration for correctness.
// It returns the first problem found.
func (c *Config) Validate() error {
	if !storage.Registry.Has(c.Storage) {
		return invalid("storage", c.Storage, "unknown storage")
	}
	if len(c.Columns) == 0 {
		return invalid("columns", c.Columns, "at least one column is required")
	}
	seen := make(map[string]struct{}, len(c.Columns))
	for _, col := range c.Columns {
		if col == "" {
			return invalid("columns", c.Columns, "column names cannot be empty")
		}
		if _, dup := seen[col]; dup {
			return invalid("columns", c.Columns, "duplicate column "+col)
		}
		seen[col] = struct{}{}
	}
	if !display.Registry.Has(c.Display.Format) {
		return invalid("display.format", c.Display.Format, "unknown display")
	}
	if c.Display.CellWidth < 1 {
		return invalid("display.cell_width", c.Display.CellWidth, "must be positive")
	}
	if c.Display.HTMLBorder < 0 {
		return invalid("display.html_border", c.Display.HTMLBorder, "cannot be negative")
	}
	if c.JSON.Indent < 0 {
		return invalid("json.indent", c.JSON.Indent, "cannot be negative")
	}
	if c.YAML.Indent < 1 {
		return invalid("yaml.indent", c.YAML.Indent, "must be positive")
	}
	if _, err := compression.ParseLevel(c.Compression.Level); err != nil {
		return invalid("compression.level", c.Compression.Level, err.Error())
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", c.Log.Level, err.Error())
	}
	if c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		return invalid("log.encoding", c.Log.Encoding, "must be json or console")
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return invalid("tracing.sampling_rate", c.Tracing.SamplingRate, "must be between 0 and 1")
	}
	return nil
}

func invalid(key string, value interface{}, reason string) error {
	return errors.Newf(errors.ErrorTypeConfig, "invalid %s: %s", key, reason).
		WithDetail("key", key).
		WithDetail("value", value)
}

// SerializerOptions returns the codec settings
func (c *Config) SerializerOptions() serializer.Options {
	return serializer.Options{
		JSONIndent: c.JSON.Indent,
		YAMLIndent: c.YAML.Indent,
		HTMLBorder: c.Display.HTMLBorder,
		CellWidth:  c.Display.CellWidth,
	}
}

// StorageOptions returns options declaring the configured columns
func (c *Config) StorageOptions() storage.Options {
	level, err := compression.ParseLevel(c.Compression.Level)
	if err != nil {
		level = compression.Default
	}
	columns := make([]string, len(c.Columns))
	copy(columns, c.Columns)

	return storage.Options{
		Columns:     columns,
		Serializer:  c.SerializerOptions(),
		Compression: level,
	}
}

// DisplayOptions returns display options writing tables to w
func (c *Config) DisplayOptions(w io.Writer) display.Options {
	return display.Options{
		Writer:     w,
		Serializer: c.SerializerOptions(),
	}
}

// LoggerConfig returns the logger settings
func (c *Config) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Encoding = c.Log.Encoding
	return cfg
}

// TracerConfig returns the tracer settings exporting to w
func (c *Config) TracerConfig(w io.Writer, version string) observability.TracingConfig {
	cfg := observability.DefaultTracingConfig()
	cfg.ServiceVersion = version
	cfg.SamplingRate = c.Tracing.SamplingRate
	cfg.Writer = w
	return cfg
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "SIMPLEDB"

// Load builds a configuration from defaults, the YAML file at filePath and
// SIMPLEDB_* environment variables, in increasing priority. An empty
// filePath skips the file. The result is validated.
func Load(filePath string) (*Config, error) {
	v := newViper()

	if filePath != "" {
		data, err := os.ReadFile(filePath) //nolint:gosec // G304: path comes from the --config flag
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file").
				WithDetail("path", filePath)
		}

		content := substituteEnvVars(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(content)); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML").
				WithDetail("path", filePath)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("storage", d.Storage)
	v.SetDefault("columns", d.Columns)
	v.SetDefault("display.format", d.Display.Format)
	v.SetDefault("display.cell_width", d.Display.CellWidth)
	v.SetDefault("display.html_border", d.Display.HTMLBorder)
	v.SetDefault("json.indent", d.JSON.Indent)
	v.SetDefault("yaml.indent", d.YAML.Indent)
	v.SetDefault("compression.level", d.Compression.Level)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.sampling_rate", d.Tracing.SamplingRate)
	return v
}

// Save writes cfg to filePath as YAML, creating the parent directory
func Save(filePath string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to marshal YAML")
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create config directory")
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil { //nolint:gosec
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write config file").
			WithDetail("path", filePath)
	}

	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		envValue := os.Getenv(varName)
		content = content[:start] + envValue + content[end+1:]
	}
	return content
}

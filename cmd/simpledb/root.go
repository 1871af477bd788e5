package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/config"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/display"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/logger"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/metrics"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/observability"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/storage"
)

// app holds the state shared by every command of one run
type app struct {
	out    io.Writer
	errOut io.Writer

	cfgFile     string
	logLevel    string
	dumpMetrics bool

	cfg      *config.Config
	shutdown observability.ShutdownFunc

	// opener and tempDir are forwarded to the html display
	opener  display.Opener
	tempDir string
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "simpledb",
		Short: "Simple data storage CLI",
		Long: `simpledb keeps a table of personal data (name, address, phone number) in a
CSV, JSON or YAML file, optionally compressed (.gz, .zst, .lz4, .sz, .s2).
The file format is picked from the file extension.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "Path to a YAML configuration file (optional)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the configuration")
	root.PersistentFlags().BoolVar(&a.dumpMetrics, "dump-metrics", false, "Write Prometheus metrics to stderr after the command")

	root.AddCommand(
		newInsertCmd(a),
		newDisplayCmd(a),
		newFilterCmd(a),
		newConvertCmd(a),
		newListCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return err
	}
	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracing(cfg.TracerConfig(a.errOut, version))
		if err != nil {
			return err
		}
		a.shutdown = shutdown
	}

	logger.With(zap.String("component", "cli")).
		Debug("running command", zap.String("command", cmd.Name()), zap.Strings("args", cmd.Flags().Args()))
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.shutdown != nil {
		if err := a.shutdown(context.Background()); err != nil {
			logger.Warn("failed to shut down tracing", zap.Error(err))
		}
		a.shutdown = nil
	}
	if a.dumpMetrics {
		if err := metrics.WriteText(a.errOut); err != nil {
			return err
		}
	}
	_ = logger.Sync()
	return nil
}

// newStorage creates an empty table with the configured columns
func (a *app) newStorage() (storage.Storage, error) {
	return storage.Registry.Create(a.cfg.Storage, a.cfg.StorageOptions())
}

// newDisplay creates the display registered under format
func (a *app) newDisplay(format string) (display.Display, error) {
	opts := a.cfg.DisplayOptions(a.out)
	opts.Opener = a.opener
	opts.TempDir = a.tempDir
	return display.Registry.Create(format, opts)
}

// loadStorage creates a table and loads path into it
func (a *app) loadStorage(ctx context.Context, path string) (storage.Storage, error) {
	s, err := a.newStorage()
	if err != nil {
		return nil, err
	}
	if err := s.LoadFromFile(ctx, path); err != nil {
		return nil, err
	}
	return s, nil
}

package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/compression"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/display"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/filter"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/logger"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/serializer"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/storage"
)

const noEntriesMessage = "\nINFO: No entries satisfying the given filter found"

func newInsertCmd(a *app) *cobra.Command {
	var path, values string

	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Insert an entry into a database file",
		Long: `Insert one entry into the database at --path, creating the file if needed,
and show the resulting table.

Example:
  simpledb insert --path people.csv --values "Dmitry,Moscow,+7 123 45 67"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.insert(cmd, path, strings.Split(values, ","))
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Path to a serialized database (required)")
	cmd.Flags().StringVar(&values, "values", "", "Comma-separated values to insert, one per column (required)")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("values")
	return cmd
}

func (a *app) insert(cmd *cobra.Command, path string, values []string) error {
	columns := a.cfg.Columns
	if len(values) != len(columns) {
		return errors.Wrap(errors.ErrTypeError, errors.ErrorTypeValidation,
			fmt.Sprintf("please specify exactly %d columns", len(columns))).
			WithDetail("columns", columns)
	}

	s, err := a.newStorage()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		if err := s.LoadFromFile(cmd.Context(), path); err != nil {
			return err
		}
	}

	row := make(map[string]entry.Value, len(columns))
	for i, col := range columns {
		row[col] = entry.String(values[i])
	}
	if _, err := s.Insert(row); err != nil {
		return err
	}
	if err := s.SaveToFile(cmd.Context(), path); err != nil {
		return err
	}
	logger.Debug("entry inserted", zap.String("path", path), zap.Int("entries", s.Len()))

	d, err := a.newDisplay(string(display.KindTable))
	if err != nil {
		return err
	}
	return d.Display(s.AllEntries())
}

func newDisplayCmd(a *app) *cobra.Command {
	var path, format string

	cmd := &cobra.Command{
		Use:   "display",
		Short: "Display every entry of a database file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				format = a.cfg.Display.Format
			}
			s, err := a.loadStorage(cmd.Context(), path)
			if err != nil {
				return err
			}
			d, err := a.newDisplay(format)
			if err != nil {
				return err
			}
			return d.Display(s.AllEntries())
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Path to a serialized database (required)")
	cmd.Flags().StringVar(&format, "format", "", "Display format (table/html). Default comes from the configuration")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func newFilterCmd(a *app) *cobra.Command {
	var path, glob, format string

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Display the entries matching a glob filter",
		Long: `Display the entries of the database at --path whose field matches a glob
pattern. '*' matches any run of characters and '?' exactly one.

Example:
  simpledb filter --path people.json --glob "name=Dm*"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				format = a.cfg.Display.Format
			}
			f, err := filter.NewGlobFilter(glob)
			if err != nil {
				return err
			}
			d, err := a.newDisplay(format)
			if err != nil {
				return err
			}
			s, err := a.loadStorage(cmd.Context(), path)
			if err != nil {
				return err
			}

			matched, err := s.Filter(f)
			if err != nil {
				return err
			}
			if len(matched) == 0 {
				fmt.Fprintln(a.out, noEntriesMessage)
				return nil
			}
			return d.Display(matched)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Path to a serialized database (required)")
	cmd.Flags().StringVar(&glob, "glob", "", "A filter of the form field=pattern (required)")
	cmd.Flags().StringVar(&format, "display", "", "Display format (table/html). Default comes from the configuration")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("glob")
	return cmd
}

func newConvertCmd(a *app) *cobra.Command {
	var path, convertedPath string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a database file to another format",
		Long: `Load the database at --path and save it to --converted-path. Both formats
come from the file extensions, so this also compresses or decompresses.

Example:
  simpledb convert --path people.csv --converted-path people.json.gz`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.loadStorage(cmd.Context(), path)
			if err != nil {
				return err
			}
			if err := s.SaveToFile(cmd.Context(), convertedPath); err != nil {
				return err
			}
			logger.Info("database converted",
				zap.String("from", path), zap.String("to", convertedPath), zap.Int("entries", s.Len()))
			fmt.Fprintln(a.out, "Conversion finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Path to a serialized database (required)")
	cmd.Flags().StringVar(&convertedPath, "converted-path", "", "Path to save a converted database (required)")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("converted-path")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available storages, formats and displays",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(a.out, "Available Storages:")
			for _, k := range storage.Registry.List() {
				fmt.Fprintf(a.out, "  - %s\n", k)
			}

			fmt.Fprintln(a.out, "\nAvailable Serializers:")
			for _, f := range serializer.Registry.List() {
				if f.IsFileFormat() {
					fmt.Fprintf(a.out, "  - %s (.%s)\n", f, f)
				} else {
					fmt.Fprintf(a.out, "  - %s (display only)\n", f)
				}
			}

			fmt.Fprintln(a.out, "\nAvailable Displays:")
			for _, k := range display.Registry.List() {
				fmt.Fprintf(a.out, "  - %s\n", k)
			}

			fmt.Fprintln(a.out, "\nAvailable Compression Suffixes:")
			exts := compression.Extensions()
			algs := make([]string, 0, len(exts))
			for alg := range exts {
				algs = append(algs, string(alg))
			}
			sort.Strings(algs)
			for _, alg := range algs {
				fmt.Fprintf(a.out, "  - .%s (%s)\n", exts[compression.Algorithm(alg)], alg)
			}
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "simpledb v%s\n", version)
			fmt.Fprintf(a.out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(a.out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

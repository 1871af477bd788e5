// Package display presents entry lists to a user, either as a text table on
// a terminal or as an HTML page opened in the system browser.
package display

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/browser"
	"go.uber.org/zap"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/logger"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/registry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/serializer"
)

// Display shows a list of entries
type Display interface {
	Display(entries []entry.Entry) error
}

// Kind is a display registry key
type Kind string

const (
	KindHTML  Kind = "html"
	KindTable Kind = "table"
)

// HTMLFileName is the name of the page written by the html display
const HTMLFileName = "data_storage.html"

// Opener opens a file for the user
type Opener func(path string) error

// Options configures displays created through the registry. Zero values
// select defaults: stdout, the system browser and the serializer defaults.
type Options struct {
	Writer     io.Writer
	Opener     Opener
	Serializer serializer.Options
	// TempDir is the parent of the directory the html page is written to.
	TempDir string
}

// Registry holds every display by kind
var Registry = registry.New("display",
	registry.Entry[Kind, Display, Options]{Key: KindHTML, Factory: func(o Options) (Display, error) {
		d, err := NewHTMLDisplay(o)
		if err != nil {
			return nil, err
		}
		return d, nil
	}},
	registry.Entry[Kind, Display, Options]{Key: KindTable, Factory: func(o Options) (Display, error) {
		d, err := NewTableDisplay(o)
		if err != nil {
			return nil, err
		}
		return d, nil
	}},
)

// TableDisplay prints a text table preceded by a blank line
type TableDisplay struct {
	w          io.Writer
	serializer serializer.Serializer
}

// NewTableDisplay creates a table display writing to opts.Writer
func NewTableDisplay(opts Options) (*TableDisplay, error) {
	s, err := serializer.Registry.Create(string(serializer.FormatTable), opts.Serializer)
	if err != nil {
		return nil, err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	return &TableDisplay{w: w, serializer: s}, nil
}

// Display writes entries as a table
func (d *TableDisplay) Display(entries []entry.Entry) error {
	out, err := d.serializer.EntriesToString(entries)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(d.w, "\n%s\n", out); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write table")
	}
	return nil
}

// HTMLDisplay writes entries to an HTML page in a fresh temporary directory
// and opens it
type HTMLDisplay struct {
	tempDir    string
	open       Opener
	serializer serializer.Serializer
	lastPath   string
}

// NewHTMLDisplay creates an html display
func NewHTMLDisplay(opts Options) (*HTMLDisplay, error) {
	s, err := serializer.Registry.Create(string(serializer.FormatHTML), opts.Serializer)
	if err != nil {
		return nil, err
	}
	open := opts.Opener
	if open == nil {
		open = browser.OpenFile
	}
	return &HTMLDisplay{tempDir: opts.TempDir, open: open, serializer: s}, nil
}

// Display writes the page and opens it
func (d *HTMLDisplay) Display(entries []entry.Entry) error {
	html, err := d.serializer.EntriesToString(entries)
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp(d.tempDir, "simpledb-")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create temporary directory")
	}
	path := filepath.Join(dir, HTMLFileName)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write "+path)
	}
	d.lastPath = path

	logger.With(zap.String("component", "html_display")).
		Debug("opening page", zap.String("path", path), zap.Int("entries", len(entries)))

	if err := d.open(path); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to open "+path).WithDetail("path", path)
	}
	return nil
}

// LastPath returns the page written by the latest Display call
func (d *HTMLDisplay) LastPath() string {
	return d.lastPath
}

// Package testutil provides testing utilities for the simple data storage
// library and its CLI
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/logger"
)

// TestLogger creates a test logger that writes to the test output and
// installs it as the global logger until the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	l := zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel))
	prev := logger.Get()
	logger.Set(l)
	t.Cleanup(func() { logger.Set(prev) })
	return l
}

// WriteFile writes content to name inside a fresh temporary directory and
// returns the full path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path, failing the test on error
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// People returns the two sample rows of the personal data schema, the
// second with no phone number.
func People() []entry.Entry {
	return []entry.Entry{
		entry.New(entry.F("name", "Dmitry"), entry.F("address", "Moscow"), entry.F("phone_number", "123")),
		entry.New(entry.F("name", "Andrew"), entry.F("address", "Berlin"), entry.F("phone_number", nil)),
	}
}

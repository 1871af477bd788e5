// Package metrics tracks storage and codec activity with Prometheus metrics.
//
// All metrics live in a private registry so that importing the library never
// touches the default Prometheus registry of the host program.
//
// # Basic Usage
//
//	metrics.EntriesInserted.WithLabelValues("memory_dict").Inc()
//
//	timer := metrics.NewTimer()
//	data, err := os.ReadFile(path)
//	metrics.ObserveFileOperation("load", "csv", timer.Stop())
//
// # Metric Types
//
// Counter: entries inserted, loaded and saved, codec failures
// Histogram: file operation duration
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const namespace = "simpledb"

var registry = prometheus.NewRegistry()

var factory = promauto.With(registry)

var (
	// EntriesInserted counts successful inserts.
	// Labels: storage (registry key)
	EntriesInserted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_inserted_total",
			Help:      "Total number of entries inserted into storages",
		},
		[]string{"storage"},
	)

	// EntriesLoaded counts entries read from files.
	// Labels: format (serializer key)
	EntriesLoaded = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_loaded_total",
			Help:      "Total number of entries loaded from files",
		},
		[]string{"format"},
	)

	// EntriesSaved counts entries written to files.
	// Labels: format (serializer key)
	EntriesSaved = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_saved_total",
			Help:      "Total number of entries saved to files",
		},
		[]string{"format"},
	)

	// CodecErrors counts serialization failures.
	// Labels: format, operation (encode/decode/compress/decompress)
	CodecErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_errors_total",
			Help:      "Total number of failed encode or decode calls",
		},
		[]string{"format", "operation"},
	)

	// FileOperationDuration tracks load and save latency in seconds.
	// Labels: operation (load/save), format
	FileOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_operation_duration_seconds",
			Help:      "Duration of storage file operations in seconds",
			Buckets: []float64{
				0.0001, // 100μs - small files from page cache
				0.001,  // 1ms
				0.01,   // 10ms
				0.1,    // 100ms
				1,      // 1s - large compressed files
				10,
			},
		},
		[]string{"operation", "format"},
	)
)

// Registry returns the registry holding every metric of this package
func Registry() *prometheus.Registry {
	return registry
}

// ObserveFileOperation records the duration of a load or save
func ObserveFileOperation(operation, format string, d time.Duration) {
	FileOperationDuration.WithLabelValues(operation, format).Observe(d.Seconds())
}

// WriteText writes every metric in the Prometheus text exposition format
func WriteText(w io.Writer) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It can be called
// multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

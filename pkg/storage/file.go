package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/compression"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/logger"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/metrics"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/observability"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/serializer"
)

// codec is the serializer and compressor bound to a file path
type codec struct {
	format     serializer.Format
	serializer serializer.Serializer
	compressor compression.Compressor
}

func (s *MemoryStorage) codecFor(path string) (*codec, error) {
	alg, inner := compression.FromPath(path)

	format, err := serializer.FormatForPath(inner)
	if err != nil {
		return nil, err
	}
	ser, err := serializer.Registry.Create(string(format), s.opts.Serializer)
	if err != nil {
		return nil, err
	}
	comp, err := compression.NewCompressor(&compression.Config{Algorithm: alg, Level: s.opts.Compression})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create compressor").
			WithDetail("algorithm", string(alg))
	}

	return &codec{format: format, serializer: ser, compressor: comp}, nil
}

// LoadFromFile appends the entries stored at path. The whole file is decoded
// and checked against the columns before the first row is appended, so a
// failed load leaves the table unchanged.
func (s *MemoryStorage) LoadFromFile(ctx context.Context, path string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := observability.StartSpan(ctx, "storage.load", attribute.String("path", path))
	defer func() { span.End(err) }()
	timer := metrics.NewTimer()

	if _, statErr := os.Stat(path); statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			return errors.Wrap(errors.ErrFileNotFound, errors.ErrorTypeNotFound,
				fmt.Sprintf("file %s does not exist", path)).WithDetail("path", path)
		}
		return errors.Wrap(statErr, errors.ErrorTypeFile, "failed to stat "+path)
	}

	c, err := s.codecFor(path)
	if err != nil {
		return err
	}
	ctx = context.WithValue(logger.ContextWithPath(ctx, path), logger.FormatKey, string(c.format))
	span.SetAttribute("format", string(c.format))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to read "+path)
	}
	data, err = c.compressor.Decompress(data)
	if err != nil {
		metrics.CodecErrors.WithLabelValues(string(c.format), "decompress").Inc()
		return errors.Wrap(err, errors.ErrorTypeData, "failed to decompress "+path).
			WithDetail("algorithm", string(c.compressor.Algorithm()))
	}

	entries, err := c.serializer.EntriesFromString(string(data))
	if err != nil {
		metrics.CodecErrors.WithLabelValues(string(c.format), "decode").Inc()
		return errors.Wrap(err, errors.ErrorTypeData, "failed to load "+path).WithDetail("path", path)
	}

	if err := s.appendEntries(entries); err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, "failed to load "+path).WithDetail("path", path)
	}

	elapsed := timer.Stop()
	metrics.EntriesLoaded.WithLabelValues(string(c.format)).Add(float64(len(entries)))
	metrics.ObserveFileOperation("load", string(c.format), elapsed)
	span.SetAttribute("entries", len(entries))
	logger.WithContext(ctx).Debug("entries loaded",
		zap.String("component", "memory_storage"),
		zap.Int("entries", len(entries)),
		zap.Duration("duration", elapsed))

	return nil
}

// appendEntries inserts a decoded batch under one lock
func (s *MemoryStorage) appendEntries(entries []entry.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]map[string]entry.Value, len(entries))
	for i, e := range entries {
		rows[i] = e.AsMap()
		if err := s.validateRow(rows[i]); err != nil {
			return errors.Wrap(err, errors.ErrorTypeValidation, fmt.Sprintf("entry %d does not fit the storage", i)).
				WithDetail("index", i)
		}
	}

	for _, row := range rows {
		s.appendRow(row)
	}
	metrics.EntriesInserted.WithLabelValues(string(KindMemoryDict)).Add(float64(len(rows)))
	return nil
}

// SaveToFile writes every row to path, creating its parent directory. An
// existing file is overwritten in place.
func (s *MemoryStorage) SaveToFile(ctx context.Context, path string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := observability.StartSpan(ctx, "storage.save", attribute.String("path", path))
	defer func() { span.End(err) }()
	timer := metrics.NewTimer()

	c, err := s.codecFor(path)
	if err != nil {
		return err
	}
	ctx = context.WithValue(logger.ContextWithPath(ctx, path), logger.FormatKey, string(c.format))
	span.SetAttribute("format", string(c.format))

	entries := s.AllEntries()
	text, err := c.serializer.EntriesToString(entries)
	if err != nil {
		metrics.CodecErrors.WithLabelValues(string(c.format), "encode").Inc()
		return errors.Wrap(err, errors.ErrorTypeData, "failed to save "+path).WithDetail("path", path)
	}
	data, err := c.compressor.Compress([]byte(text))
	if err != nil {
		metrics.CodecErrors.WithLabelValues(string(c.format), "compress").Inc()
		return errors.Wrap(err, errors.ErrorTypeData, "failed to compress "+path).
			WithDetail("algorithm", string(c.compressor.Algorithm()))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to create directory "+dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write "+path)
	}

	elapsed := timer.Stop()
	metrics.EntriesSaved.WithLabelValues(string(c.format)).Add(float64(len(entries)))
	metrics.ObserveFileOperation("save", string(c.format), elapsed)
	span.SetAttribute("entries", len(entries))
	logger.WithContext(ctx).Debug("entries saved",
		zap.String("component", "memory_storage"),
		zap.Int("entries", len(entries)),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", elapsed))

	return nil
}

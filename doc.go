// Package simpledb is a small tabular data store: a table of entries with a
// fixed set of columns, kept in memory and persisted to CSV, JSON or YAML
// files, optionally compressed.
//
// # Architecture
//
// The library is organised around three contracts, each selected by a string
// key through a fixed registry:
//
//  1. Storage (pkg/storage): the column-oriented table. Every column holds
//     one value per row; columns missing from an insert hold null.
//  2. Serializer (pkg/serializer): text codecs for entry lists. csv, json and
//     yaml round-trip; html and table only render.
//  3. Display (pkg/display): shows entries as a terminal table or an HTML
//     page in the browser.
//
// Entries (pkg/entry) are ordered field/value maps over a closed set of
// scalar values: null, string, int, float and bool. Filters (pkg/filter)
// select entries by matching one field against a glob pattern.
//
// # Quick Start
//
//	s, err := storage.NewMemoryStorage(storage.Options{
//		Columns: []string{"name", "address"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	_, _ = s.Insert(map[string]entry.Value{"name": entry.String("Dmitry")})
//	if err := s.SaveToFile(ctx, "people.json.gz"); err != nil {
//		log.Fatal(err)
//	}
//
// The file format comes from the extension. A trailing .gz, .zst, .lz4, .sz
// or .s2 compresses the file.
//
// # Command Line
//
// cmd/simpledb wraps the library for the personal data table
// (name, address, phone_number):
//
//	simpledb insert --path people.csv --values "Dmitry,Moscow,123"
//	simpledb filter --path people.csv --glob "name=Dm*"
//	simpledb convert --path people.csv --converted-path people.json
//	simpledb display --path people.json --format html
//
// # Observability
//
// Structured logging uses zap (pkg/logger), metrics use a private Prometheus
// registry (pkg/metrics) and file operations are traced with OpenTelemetry
// (pkg/observability).
package simpledb

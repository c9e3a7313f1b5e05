// Package writer stores flattened tables as files and optionally ships them
// to object storage.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appconfig "intxexport/config"
	"intxexport/internal/table"
)

// Artifact describes a file produced by a Sink.
type Artifact struct {
	Name    string
	Path    string
	Format  string
	Rows    int
	Columns int
	Bytes   int64
}

// Sink writes one table to one file in a directory.
type Sink interface {
	Format() string
	Extension() string
	Write(dir string, t *table.Table) (Artifact, error)
}

// NewSink returns the sink for the configured format.
func NewSink(format string, cfg appconfig.WriterConfig) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", appconfig.FormatCSV:
		return NewCSVSink(), nil
	case appconfig.FormatParquet:
		return NewParquetSink(cfg.Parquet.Compression)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// FileName is the artifact file name for a table in the given sink.
func FileName(s Sink, name string) string {
	return name + s.Extension()
}

// replaceFile fills a temporary file next to path and renames it into place,
// so readers never observe a partially written artifact. It returns the size
// of the final file.
func replaceFile(path string, fill func(tmp string) error) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, err
	}

	if err := fill(tmp); err != nil {
		os.Remove(tmp)
		return 0, err
	}

	info, err := os.Stat(tmp)
	if err != nil {
		os.Remove(tmp)
		return 0, err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("replace %s: %w", path, err)
	}
	return info.Size(), nil
}

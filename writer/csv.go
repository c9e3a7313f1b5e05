package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	appconfig "intxexport/config"
	"intxexport/internal/table"
)

// CSVSink writes RFC 4180 CSV with a header row and no index column.
type CSVSink struct{}

func NewCSVSink() *CSVSink { return &CSVSink{} }

func (s *CSVSink) Format() string    { return appconfig.FormatCSV }
func (s *CSVSink) Extension() string { return ".csv" }

func (s *CSVSink) Write(dir string, t *table.Table) (Artifact, error) {
	path := filepath.Join(dir, FileName(s, t.Name))

	size, err := replaceFile(path, func(tmp string) error {
		f, err := os.Create(tmp)
		if err != nil {
			return err
		}
		w := csv.NewWriter(f)
		if err := w.Write(t.Columns); err != nil {
			f.Close()
			return fmt.Errorf("write header: %w", err)
		}
		if err := w.WriteAll(t.Rows); err != nil {
			f.Close()
			return fmt.Errorf("write rows: %w", err)
		}
		return f.Close()
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("write %s: %w", path, err)
	}

	return Artifact{
		Name:    t.Name,
		Path:    path,
		Format:  s.Format(),
		Rows:    len(t.Rows),
		Columns: len(t.Columns),
		Bytes:   size,
	}, nil
}

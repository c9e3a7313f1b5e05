package writer

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	appconfig "intxexport/config"
	"intxexport/internal/table"
)

// ParquetSink writes every column as an optional UTF8 string. Empty cells
// are stored as nulls.
type ParquetSink struct {
	compression parquet.CompressionCodec
}

// NewParquetSink accepts snappy, gzip, zstd or none ("" means snappy).
func NewParquetSink(compression string) (*ParquetSink, error) {
	codec, err := parseCompression(compression)
	if err != nil {
		return nil, err
	}
	return &ParquetSink{compression: codec}, nil
}

func parseCompression(name string) (parquet.CompressionCodec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "snappy":
		return parquet.CompressionCodec_SNAPPY, nil
	case "gzip":
		return parquet.CompressionCodec_GZIP, nil
	case "zstd":
		return parquet.CompressionCodec_ZSTD, nil
	case "none", "uncompressed":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return parquet.CompressionCodec_UNCOMPRESSED, fmt.Errorf("unsupported parquet compression %q", name)
	}
}

func (s *ParquetSink) Format() string    { return appconfig.FormatParquet }
func (s *ParquetSink) Extension() string { return ".parquet" }

func (s *ParquetSink) Write(dir string, t *table.Table) (Artifact, error) {
	path := filepath.Join(dir, FileName(s, t.Name))

	size, err := replaceFile(path, func(tmp string) error {
		return s.writeFile(tmp, t)
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

func (s *ParquetSink) writeFile(path string, t *table.Table) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}

	pw, err := writer.NewCSVWriter(parquetSchema(t.Columns), fw, 1)
	if err != nil {
		fw.Close()
		return fmt.Errorf("build parquet schema: %w", err)
	}
	pw.CompressionType = s.compression

	width := len(t.Columns)
	if width == 0 {
		width = 1
	}
	for i, row := range t.Rows {
		rec := make([]*string, width)
		for j := range row {
			if row[j] == "" {
				continue
			}
			v := row[j]
			rec[j] = &v
		}
		if err := pw.WriteString(rec); err != nil {
			fw.Close()
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return fw.Close()
}

// parquetSchema builds the CSV writer metadata for the given columns. Column
// names are made safe for the tag syntax and unique ignoring case; a table
// without columns gets a single placeholder column.
func parquetSchema(columns []string) []string {
	if len(columns) == 0 {
		columns = []string{table.ValueColumn}
	}
	seen := make(map[string]int, len(columns))
	md := make([]string, 0, len(columns))
	for _, c := range columns {
		name := sanitizeColumn(c)
		key := strings.ToLower(name)
		if n := seen[key]; n > 0 {
			name = name + "_" + strconv.Itoa(n)
		}
		seen[key]++
		md = append(md, fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL", name))
	}
	return md
}

func sanitizeColumn(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case ',', '=', ' ', '\t', '\n', '\r', '.':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "column"
	}
	return b.String()
}

package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ManifestFile is the name of the run manifest in the output directory.
const ManifestFile = "manifest.json"

// DataFile describes a single artifact written by a run.
type DataFile struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Format    string `json:"format"`
	Rows      int    `json:"record_count"`
	Columns   int    `json:"column_count"`
	FileSize  int64  `json:"file_size_in_bytes"`
	RemoteURI string `json:"remote_uri,omitempty"`
}

// Manifest records what one export run produced.
type Manifest struct {
	RunID       string     `json:"run_id"`
	Mode        string     `json:"mode"`
	PortfolioID string     `json:"portfolio_id"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  time.Time  `json:"finished_at"`
	Files       []DataFile `json:"files"`
}

// NewManifest starts a manifest for a run beginning at started.
func NewManifest(mode, portfolioID string, started time.Time) *Manifest {
	return &Manifest{
		RunID:       uuid.NewString(),
		Mode:        mode,
		PortfolioID: portfolioID,
		StartedAt:   started.UTC(),
		Files:       []DataFile{},
	}
}

// AddFile records a newly written artifact.
func (m *Manifest) AddFile(df DataFile) {
	m.Files = append(m.Files, df)
}

// Rows sums the record counts of every artifact.
func (m *Manifest) Rows() int {
	total := 0
	for _, f := range m.Files {
		total += f.Rows
	}
	return total
}

// Write stamps the finish time and stores the manifest in dir, replacing any
// previous one.
func (m *Manifest) Write(dir string, finished time.Time) (string, error) {
	m.FinishedAt = finished.UTC()

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, ManifestFile)
	tmp, err := os.CreateTemp(dir, "."+ManifestFile+".*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("replace %s: %w", path, err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by Write.
func ReadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestManifestWrite(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2025, 8, 11, 6, 0, 0, 0, time.UTC)
	m := NewManifest("DEV", "p-1", started)
	if _, err := uuid.Parse(m.RunID); err != nil {
		t.Fatalf("run id is not a uuid: %v", err)
	}
	m.AddFile(DataFile{
		Name:     "order_fills",
		Path:     filepath.Join(dir, "order_fills.csv"),
		Format:   "csv",
		Rows:     10,
		Columns:  4,
		FileSize: 100,
	})
	m.AddFile(DataFile{Name: "balances", Format: "csv", Rows: 2, Columns: 3, FileSize: 40})

	path, err := m.Write(dir, started.Add(time.Second))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(dir, ManifestFile) {
		t.Fatalf("unexpected manifest path: %s", path)
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if got.RunID != m.RunID || got.Mode != "DEV" || got.PortfolioID != "p-1" {
		t.Fatalf("unexpected manifest header: %+v", got)
	}
	if !got.FinishedAt.Equal(started.Add(time.Second)) {
		t.Fatalf("unexpected finish time: %v", got.FinishedAt)
	}
	if len(got.Files) != 2 || got.Files[0].Name != "order_fills" || got.Files[0].Rows != 10 {
		t.Fatalf("unexpected files: %+v", got.Files)
	}
	if got.Rows() != 12 {
		t.Fatalf("expected 12 rows total, got %d", got.Rows())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the manifest in %s, got %d entries", dir, len(entries))
	}
}

func TestManifestRunIDsAreUnique(t *testing.T) {
	now := time.Now()
	if NewManifest("PROD", "p", now).RunID == NewManifest("PROD", "p", now).RunID {
		t.Fatal("expected distinct run ids")
	}
}

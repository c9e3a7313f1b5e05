package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTempConfig writes content to a config file inside a test temp dir
// and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Export.Format != FormatCSV {
		t.Errorf("unexpected format: %s", cfg.Export.Format)
	}
	if cfg.Export.Transfers.ResultLimit != 100 || cfg.Export.Transfers.Type != "ALL" {
		t.Errorf("unexpected transfers defaults: %+v", cfg.Export.Transfers)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("unexpected timeout: %s", cfg.API.Timeout)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t, `app:
  name: "TestApp"
  version: "1.0"
api:
  timeout: 5s
export:
  output_dir: out
  format: PARQUET
  transfers:
    result_limit: 25
writer:
  parquet:
    compression: gzip
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.App.Name != "TestApp" {
		t.Errorf("unexpected name: %s", cfg.App.Name)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("unexpected timeout: %s", cfg.API.Timeout)
	}
	if cfg.Export.Format != FormatParquet {
		t.Errorf("unexpected format: %s", cfg.Export.Format)
	}
	if cfg.Export.Transfers.ResultLimit != 25 {
		t.Errorf("unexpected result limit: %d", cfg.Export.Transfers.ResultLimit)
	}
	// fields absent from the file keep their defaults
	if cfg.Export.Transfers.Type != "ALL" {
		t.Errorf("unexpected transfer type: %s", cfg.Export.Transfers.Type)
	}
}

func TestLoadConfigInvalidFormat(t *testing.T) {
	path := writeTempConfig(t, "export:\n  format: xlsx\n")

	_, err := LoadConfig(path)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}

func TestLoadConfigS3EnvOverride(t *testing.T) {
	t.Setenv("S3_BUCKET", "exports-bucket")
	t.Setenv("AWS_REGION", "eu-west-1")
	path := writeTempConfig(t, "storage:\n  s3:\n    enabled: true\n    bucket: placeholder\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Storage.S3.Bucket != "exports-bucket" || cfg.Storage.S3.Region != "eu-west-1" {
		t.Fatalf("env overrides not applied: %+v", cfg.Storage.S3)
	}
}

func TestIsValidS3Bucket(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"valid-bucket", true},
		{"Invalid", false},
		{"ab", false},
		{"my..bucket", false},
	}
	for _, c := range cases {
		if got := isValidS3Bucket(c.name); got != c.valid {
			t.Errorf("isValidS3Bucket(%q) = %v, want %v", c.name, got, c.valid)
		}
	}
}

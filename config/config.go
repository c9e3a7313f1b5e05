package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Artifact formats understood by the writer package.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	API     APIConfig     `yaml:"api"`
	Export  ExportConfig  `yaml:"export"`
	Writer  WriterConfig  `yaml:"writer"`
	Storage StorageConfig `yaml:"storage"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type APIConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type ExportConfig struct {
	OutputDir         string          `yaml:"output_dir"`
	Format            string          `yaml:"format"`
	IncludePortfolios bool            `yaml:"include_portfolios"`
	Transfers         TransfersConfig `yaml:"transfers"`
}

// TransfersConfig controls the single page of transfers that is requested.
type TransfersConfig struct {
	ResultLimit int    `yaml:"result_limit"`
	Type        string `yaml:"type"`
}

type WriterConfig struct {
	Parquet ParquetConfig `yaml:"parquet"`
}

type ParquetConfig struct {
	Compression string `yaml:"compression"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type MetricsConfig struct {
	CloudWatch CloudWatchConfig `yaml:"cloudwatch"`
}

type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "intxexport",
			Version: "1.0.0",
		},
		API: APIConfig{
			Timeout: 30 * time.Second,
		},
		Export: ExportConfig{
			OutputDir: ".",
			Format:    FormatCSV,
			Transfers: TransfersConfig{
				ResultLimit: 100,
				Type:        "ALL",
			},
		},
		Writer: WriterConfig{
			Parquet: ParquetConfig{Compression: "snappy"},
		},
		Metrics: MetricsConfig{
			CloudWatch: CloudWatchConfig{Namespace: "IntxExport"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// LoadConfig reads the YAML file at path on top of Default. An empty path
// skips the file entirely.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigurationError{Reason: "failed to read config file", Err: err}
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, &ConfigurationError{Reason: "failed to parse config file", Err: err}
		}
	}

	// Override S3 settings from environment variables if available
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}
	config.Storage.S3.Bucket = strings.TrimSpace(config.Storage.S3.Bucket)
	config.Export.Format = strings.ToLower(strings.TrimSpace(config.Export.Format))

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports the first invalid setting as a ConfigurationError.
func (c *Config) Validate() error {
	if err := validateConfig(c); err != nil {
		return &ConfigurationError{Reason: "configuration validation failed", Err: err}
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.App.Name == "" {
		return errors.New("app.name is required")
	}
	if cfg.API.Timeout <= 0 {
		return errors.New("api.timeout must be greater than 0")
	}
	if cfg.Export.OutputDir == "" {
		return errors.New("export.output_dir is required")
	}

	switch cfg.Export.Format {
	case FormatCSV, FormatParquet:
	default:
		return fmt.Errorf("export.format '%s' is not one of csv, parquet", cfg.Export.Format)
	}

	if cfg.Export.Transfers.ResultLimit <= 0 {
		return errors.New("export.transfers.result_limit must be greater than 0")
	}
	if cfg.Export.Transfers.Type == "" {
		return errors.New("export.transfers.type is required")
	}

	switch strings.ToLower(cfg.Writer.Parquet.Compression) {
	case "", "none", "uncompressed", "snappy", "gzip", "zstd":
	default:
		return fmt.Errorf("writer.parquet.compression '%s' is not supported", cfg.Writer.Parquet.Compression)
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return errors.New("storage.s3.region is required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Storage.S3.Bucket) {
			return fmt.Errorf("storage.s3.bucket '%s' is invalid", cfg.Storage.S3.Bucket)
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}

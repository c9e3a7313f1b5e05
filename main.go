package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"intxexport/config"
	"intxexport/internal/export"
	"intxexport/internal/intx"
	"intxexport/internal/metrics"
	"intxexport/logger"
	"intxexport/writer"
)

func main() {
	log := logger.GetLogger()

	configPath := flag.String("config", "", "Path to optional YAML configuration file")
	mode := flag.String("mode", "", "Credential profile (PROD or DEV); overrides SETTINGS_MODE")
	outDir := flag.String("out", "", "Output directory for exported files")
	format := flag.String("format", "", "Output format: csv or parquet")
	portfolios := flag.Bool("portfolios", false, "Also export the portfolios list")

	flag.Parse()

	// Load environment variables from .env if present
	if err := config.LoadDotEnv(); err != nil {
		exit(log, "config", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		exit(log, "config", err)
	}
	if *outDir != "" {
		cfg.Export.OutputDir = *outDir
	}
	if *format != "" {
		cfg.Export.Format = strings.ToLower(strings.TrimSpace(*format))
	}
	if *portfolios {
		cfg.Export.IncludePortfolios = true
	}
	if err := cfg.Validate(); err != nil {
		exit(log, "config", err)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		exit(log, "config", err)
	}

	log.WithFields(logger.Fields{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	}).Info("starting intxexport")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds, err := config.LoadCredentials(*mode)
	if err != nil {
		exit(log, "credentials", err)
	}

	if cfg.Metrics.CloudWatch.Enabled {
		metrics.InitCloudWatch(ctx, cfg.Metrics.CloudWatch.Region, cfg.Metrics.CloudWatch.Namespace)
	}

	client, err := intx.New(creds,
		intx.WithTimeout(cfg.API.Timeout),
		intx.WithTransferQuery(intx.TransferQuery{
			ResultLimit: cfg.Export.Transfers.ResultLimit,
			Type:        cfg.Export.Transfers.Type,
		}),
		intx.WithLogger(log),
	)
	if err != nil {
		exit(log, "client", err)
	}

	sink, err := writer.NewSink(cfg.Export.Format, cfg.Writer)
	if err != nil {
		exit(log, "config", err)
	}

	opts := export.Options{
		OutputDir:         cfg.Export.OutputDir,
		Sink:              sink,
		IncludePortfolios: cfg.Export.IncludePortfolios,
		Mode:              string(creds.Mode),
		PortfolioID:       creds.AccountID,
		Logger:            log,
	}
	if cfg.Storage.S3.Enabled {
		uploader, err := writer.NewS3Uploader(ctx, cfg.Storage.S3)
		if err != nil {
			exit(log, "storage", err)
		}
		opts.Uploader = uploader
	}

	report, err := export.Run(ctx, client, opts)
	if err != nil {
		step := "export"
		var stepErr *export.StepError
		if errors.As(err, &stepErr) {
			step = stepErr.Step
		}
		exit(log, step, err)
	}

	log.WithComponent("main").WithFields(logger.Fields{
		"run_id":    report.Manifest.RunID,
		"artifacts": len(report.Artifacts),
		"manifest":  report.ManifestPath,
	}).Info("export complete")
}

func exit(log *logger.Log, step string, err error) {
	class := export.ErrorClass(err)
	log.WithComponent("main").WithError(err).WithFields(logger.Fields{
		"step":        step,
		"error_class": class,
	}).Error(fmt.Sprintf("%s failed (%s)", step, class))
	os.Exit(1)
}

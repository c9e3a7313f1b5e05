// Package export runs one pass over the portfolio endpoints and writes an
// artifact per result set.
package export

import (
	"context"
	"fmt"
	"time"

	"intxexport/internal/intx"
	"intxexport/internal/metadata"
	"intxexport/internal/metrics"
	"intxexport/internal/table"
	"intxexport/logger"
	"intxexport/writer"
)

// Artifact names, without extension.
const (
	FillsArtifact      = "order_fills"
	TransfersArtifact  = "transfers"
	BalancesArtifact   = "balances"
	PositionsArtifact  = "positions"
	SummaryArtifact    = "portfolio_summary"
	PortfoliosArtifact = "portfolios"
)

// API is the subset of the exchange client a run needs.
type API interface {
	Portfolios(ctx context.Context) (intx.Result, error)
	Fills(ctx context.Context) (intx.Result, error)
	Transfers(ctx context.Context) (intx.Result, error)
	Balances(ctx context.Context) (intx.Result, error)
	Positions(ctx context.Context) (intx.Result, error)
	Summary(ctx context.Context) (intx.Result, error)
}

// Uploader ships a written artifact somewhere else and returns where it went.
type Uploader interface {
	Upload(ctx context.Context, runID string, day time.Time, art writer.Artifact) (string, error)
}

// Options configures a run. Sink is required; everything else is optional.
type Options struct {
	OutputDir         string
	Sink              writer.Sink
	Uploader          Uploader
	IncludePortfolios bool
	Mode              string
	PortfolioID       string
	Logger            *logger.Log
	Now               func() time.Time
}

// Report is what a successful run produced.
type Report struct {
	Manifest     *metadata.Manifest
	ManifestPath string
	Artifacts    []writer.Artifact
}

type shape int

const (
	listUnderResults shape = iota
	bareList
	singleObject
)

type step struct {
	name     string
	artifact string
	shape    shape
	fetch    func(context.Context) (intx.Result, error)
}

func steps(api API, includePortfolios bool) []step {
	s := []step{
		{name: "fills", artifact: FillsArtifact, shape: listUnderResults, fetch: api.Fills},
		{name: "transfers", artifact: TransfersArtifact, shape: listUnderResults, fetch: api.Transfers},
		{name: "balances", artifact: BalancesArtifact, shape: bareList, fetch: api.Balances},
		{name: "positions", artifact: PositionsArtifact, shape: bareList, fetch: api.Positions},
		{name: "summary", artifact: SummaryArtifact, shape: singleObject, fetch: api.Summary},
	}
	if includePortfolios {
		s = append(s, step{name: "portfolios", artifact: PortfoliosArtifact, shape: bareList, fetch: api.Portfolios})
	}
	return s
}

// Run fetches fills, transfers, balances, positions and the summary in that
// order, writing each artifact as soon as its data arrives. The first failure
// stops the run and is returned as a *StepError; artifacts of that step and
// every later one are left untouched and no manifest is written.
func Run(ctx context.Context, api API, opts Options) (*Report, error) {
	if opts.Sink == nil {
		return nil, fmt.Errorf("export: no sink configured")
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}

	started := opts.Now()
	manifest := metadata.NewManifest(opts.Mode, opts.PortfolioID, started)
	log := opts.Logger.WithComponent("exporter").WithFields(logger.Fields{
		"run_id":    manifest.RunID,
		"mode":      opts.Mode,
		"format":    opts.Sink.Format(),
		"directory": opts.OutputDir,
	})
	log.Info("export run started")

	report := &Report{Manifest: manifest}
	for _, st := range steps(api, opts.IncludePortfolios) {
		if err := ctx.Err(); err != nil {
			return nil, fail(opts.Logger, st.name, err)
		}

		art, err := runStep(ctx, st, opts, manifest.RunID, started)
		if err != nil {
			return nil, fail(opts.Logger, st.name, err)
		}

		metrics.ReportExport(opts.Logger, metrics.ExportStats{
			Artifact: art.artifact.Name,
			Format:   art.artifact.Format,
			Rows:     art.artifact.Rows,
			Columns:  art.artifact.Columns,
			Bytes:    art.artifact.Bytes,
		})
		logger.LogDataFlowEntry(log, "intx."+st.name, art.artifact.Path, art.artifact.Rows, st.artifact)

		report.Artifacts = append(report.Artifacts, art.artifact)
		manifest.AddFile(metadata.DataFile{
			Name:      art.artifact.Name,
			Path:      art.artifact.Path,
			Format:    art.artifact.Format,
			Rows:      art.artifact.Rows,
			Columns:   art.artifact.Columns,
			FileSize:  art.artifact.Bytes,
			RemoteURI: art.remote,
		})
	}

	finished := opts.Now()
	path, err := manifest.Write(opts.OutputDir, finished)
	if err != nil {
		return nil, fail(opts.Logger, "manifest", err)
	}
	report.ManifestPath = path

	logger.LogPerformanceEntry(log, "exporter", "run", finished.Sub(started), logger.Fields{
		"artifacts": len(report.Artifacts),
		"rows":      manifest.Rows(),
	})
	log.WithFields(logger.Fields{
		"artifacts": len(report.Artifacts),
		"manifest":  path,
	}).Info("export run finished")
	return report, nil
}

type stepOutput struct {
	artifact writer.Artifact
	remote   string
}

func runStep(ctx context.Context, st step, opts Options, runID string, started time.Time) (stepOutput, error) {
	res, err := st.fetch(ctx)
	if err != nil {
		return stepOutput{}, err
	}

	tbl, err := flatten(st, res)
	if err != nil {
		return stepOutput{}, err
	}

	art, err := opts.Sink.Write(opts.OutputDir, tbl)
	if err != nil {
		return stepOutput{}, err
	}

	out := stepOutput{artifact: art}
	if opts.Uploader != nil {
		out.remote, err = opts.Uploader.Upload(ctx, runID, started, art)
		if err != nil {
			return stepOutput{}, err
		}
	}
	return out, nil
}

func flatten(st step, res intx.Result) (*table.Table, error) {
	switch st.shape {
	case singleObject:
		obj, err := res.Object()
		if err != nil {
			return nil, err
		}
		return table.FromObject(st.artifact, obj), nil
	default:
		key := ""
		if st.shape == listUnderResults {
			key = "results"
		}
		recs, err := res.Records(key)
		if err != nil {
			return nil, err
		}
		return table.FromRecords(st.artifact, recs), nil
	}
}

func fail(log *logger.Log, name string, err error) error {
	metrics.ReportFailure(log, name, err)
	return &StepError{Step: name, Err: err}
}

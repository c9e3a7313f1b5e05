package metrics

import "intxexport/logger"

// ExportStats summarises one artifact produced by an export run.
type ExportStats struct {
	Artifact string
	Format   string
	Rows     int
	Columns  int
	Bytes    int64
}

// ReportExport emits the per-artifact metrics and a summary log line.
func ReportExport(log *logger.Log, stats ExportStats) {
	if log == nil {
		log = logger.GetLogger()
	}
	fields := logger.Fields{"artifact": stats.Artifact, "format": stats.Format}

	EmitMetric(log, "exporter", "rows_exported", stats.Rows, "counter", fields)
	EmitMetric(log, "exporter", "bytes_written", stats.Bytes, "counter", logger.Fields{
		"artifact": stats.Artifact,
		"format":   stats.Format,
		"unit":     "bytes",
	})

	log.WithComponent("exporter").WithFields(logger.Fields{
		"artifact": stats.Artifact,
		"format":   stats.Format,
		"rows":     stats.Rows,
		"columns":  stats.Columns,
		"bytes":    stats.Bytes,
	}).Info("artifact exported")
}

// ReportFailure counts a run that stopped at step.
func ReportFailure(log *logger.Log, step string, err error) {
	if log == nil {
		log = logger.GetLogger()
	}
	EmitMetric(log, "exporter", "export_failures", 1, "counter", logger.Fields{"step": step})
	log.WithComponent("exporter").WithError(err).WithFields(logger.Fields{"step": step}).Error("export step failed")
}

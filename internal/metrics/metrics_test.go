package metrics

import (
	"testing"
	"time"

	"intxexport/logger"
)

func resetMetricHandlers() {
	metricHandlersMu.Lock()
	metricHandlers = make(map[MetricHandlerID]MetricHandler)
	nextMetricHandlerID = 0
	metricHandlersMu.Unlock()
}

func TestRegisterMetricHandlerReturnsUniqueIDs(t *testing.T) {
	resetMetricHandlers()

	id := RegisterMetricHandler(func(Metric) {})
	if id == 0 {
		t.Fatalf("expected non-zero handler id")
	}

	second := RegisterMetricHandler(func(Metric) {})
	if second == 0 || second == id {
		t.Fatalf("expected unique handler id")
	}
}

func TestRegisterMetricHandlerNil(t *testing.T) {
	resetMetricHandlers()

	if id := RegisterMetricHandler(nil); id != 0 {
		t.Fatalf("expected zero id for nil handler, got %d", id)
	}
}

func TestEmitMetricDispatchesToHandlers(t *testing.T) {
	resetMetricHandlers()

	events := make(chan Metric, 1)
	id := RegisterMetricHandler(func(m Metric) {
		events <- m
	})
	t.Cleanup(func() {
		UnregisterMetricHandler(id)
	})

	fields := logger.Fields{"exchange": "binance", "unit": "count"}
	log := logger.Logger()

	EmitMetric(log, "used_weight", "request_count", 3, "gauge", fields)

	select {
	case event := <-events:
		if event.Component != "used_weight" {
			t.Fatalf("unexpected component: %s", event.Component)
		}
		if event.Name != "request_count" {
			t.Fatalf("unexpected metric name: %s", event.Name)
		}
		if event.Type != "gauge" {
			t.Fatalf("unexpected metric type: %s", event.Type)
		}
		if _, ok := fields["metric"]; ok {
			t.Fatalf("original fields mutated: %v", fields)
		}
		if _, ok := event.Fields["metric"]; ok {
			t.Fatalf("event fields should not contain metric key: %v", event.Fields)
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("metric handler not invoked")
	}
}

func TestEmitMetricDefaultType(t *testing.T) {
	resetMetricHandlers()

	events := make(chan Metric, 1)
	id := RegisterMetricHandler(func(m Metric) {
		events <- m
	})
	t.Cleanup(func() {
		UnregisterMetricHandler(id)
	})

	EmitMetric(nil, "order_book", "updates", 7, "", logger.Fields{"unit": "count"})

	select {
	case event := <-events:
		if event.Type != "counter" {
			t.Fatalf("expected default metric type to be counter, got %s", event.Type)
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("metric handler not invoked for default type")
	}
}

func TestEmitMetricWithoutName(t *testing.T) {
	resetMetricHandlers()

	events := make(chan Metric, 1)
	id := RegisterMetricHandler(func(m Metric) {
		events <- m
	})
	t.Cleanup(func() {
		UnregisterMetricHandler(id)
	})

	EmitMetric(nil, "component", "", 1, "counter", nil)

	select {
	case <-events:
		t.Fatal("handler should not receive metrics without a name")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReportExportEmitsRowsAndBytes(t *testing.T) {
	resetMetricHandlers()

	events := make(chan Metric, 4)
	id := RegisterMetricHandler(func(m Metric) {
		events <- m
	})
	t.Cleanup(func() {
		UnregisterMetricHandler(id)
	})

	ReportExport(nil, ExportStats{Artifact: "order_fills", Format: "csv", Rows: 3, Columns: 5, Bytes: 120})

	got := map[string]Metric{}
	for i := 0; i < 2; i++ {
		select {
		case event := <-events:
			got[event.Name] = event
		case <-time.After(50 * time.Millisecond):
			t.Fatalf("expected 2 metrics, got %d", len(got))
		}
	}

	rows, ok := got["rows_exported"]
	if !ok || rows.Value != 3 {
		t.Fatalf("unexpected rows_exported metric: %+v", rows)
	}
	if rows.Fields["artifact"] != "order_fills" {
		t.Fatalf("unexpected artifact field: %v", rows.Fields)
	}
	bytes, ok := got["bytes_written"]
	if !ok || bytes.Value != int64(120) {
		t.Fatalf("unexpected bytes_written metric: %+v", bytes)
	}
	if bytes.Fields["unit"] != "bytes" {
		t.Fatalf("expected bytes unit, got %v", bytes.Fields)
	}
}

func TestReportFailureCountsStep(t *testing.T) {
	resetMetricHandlers()

	events := make(chan Metric, 1)
	id := RegisterMetricHandler(func(m Metric) {
		events <- m
	})
	t.Cleanup(func() {
		UnregisterMetricHandler(id)
	})

	ReportFailure(nil, "balances", nil)

	select {
	case event := <-events:
		if event.Name != "export_failures" || event.Fields["step"] != "balances" {
			t.Fatalf("unexpected failure metric: %+v", event)
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("failure metric not emitted")
	}
}

package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"intxexport/logger"
)

type fakePutMetricData struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakePutMetricData) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func useFakeCloudWatch(t *testing.T, fake *fakePutMetricData) {
	t.Helper()
	prev := cwState.Load()
	cwState.Store(&cloudWatchState{client: fake, namespace: "IntxExportTest"})
	t.Cleanup(func() { cwState.Store(prev) })
}

func TestPublishMetricDatumUsesUnitAndDimensions(t *testing.T) {
	fake := &fakePutMetricData{}
	useFakeCloudWatch(t, fake)

	metric := Metric{
		Component: "intx_client",
		Name:      "api_request_duration_ms",
		Timestamp: time.Now(),
		Fields:    logger.Fields{"unit": "milliseconds", "endpoint": "fills"},
	}
	publishMetricDatum(context.Background(), metric, 12.5)

	if len(fake.inputs) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(fake.inputs))
	}
	in := fake.inputs[0]
	if in.Namespace == nil || *in.Namespace != "IntxExportTest" {
		t.Fatalf("unexpected namespace: %v", in.Namespace)
	}
	if len(in.MetricData) != 1 {
		t.Fatalf("expected single datum, got %d", len(in.MetricData))
	}
	datum := in.MetricData[0]
	if datum.Unit != cwtypes.StandardUnitMilliseconds {
		t.Fatalf("unexpected unit: %s", datum.Unit)
	}
	if datum.Value == nil || *datum.Value != 12.5 {
		t.Fatalf("unexpected value: %v", datum.Value)
	}

	dims := map[string]string{}
	for _, d := range datum.Dimensions {
		dims[*d.Name] = *d.Value
	}
	if dims["component"] != "intx_client" || dims["endpoint"] != "fills" {
		t.Fatalf("unexpected dimensions: %v", dims)
	}
	if _, ok := dims["unit"]; ok {
		t.Fatalf("unit must not be a dimension: %v", dims)
	}
}

func TestEmitMetricSkipsNonNumericValues(t *testing.T) {
	fake := &fakePutMetricData{}
	useFakeCloudWatch(t, fake)

	EmitMetric(nil, "exporter", "status", "ok", "gauge", nil)
	EmitMetric(nil, "exporter", "rows_exported", 4, "counter", nil)

	if len(fake.inputs) != 1 {
		t.Fatalf("expected only the numeric metric to publish, got %d", len(fake.inputs))
	}
	if name := *fake.inputs[0].MetricData[0].MetricName; name != "rows_exported" {
		t.Fatalf("unexpected metric published: %s", name)
	}
}

func TestPublishErrorsAreNotFatal(t *testing.T) {
	fake := &fakePutMetricData{err: errors.New("throttled")}
	useFakeCloudWatch(t, fake)

	EmitMetric(nil, "exporter", "rows_exported", 1, "counter", nil)

	if len(fake.inputs) != 1 {
		t.Fatalf("expected publish attempt, got %d", len(fake.inputs))
	}
}

func TestDisabledCloudWatchPublishesNothing(t *testing.T) {
	prev := cwState.Load()
	t.Cleanup(func() { cwState.Store(prev) })
	DisableCloudWatch()

	EmitMetric(nil, "exporter", "rows_exported", 1, "counter", nil)
}

func TestMetricUnitFromString(t *testing.T) {
	cases := map[string]cwtypes.StandardUnit{
		"count":        cwtypes.StandardUnitCount,
		"Bytes":        cwtypes.StandardUnitBytes,
		"milliseconds": cwtypes.StandardUnitMilliseconds,
	}
	for in, want := range cases {
		got, ok := metricUnitFromString(in)
		if !ok || got != want {
			t.Fatalf("metricUnitFromString(%q) = %s, %v", in, got, ok)
		}
	}
	if _, ok := metricUnitFromString("furlongs"); ok {
		t.Fatal("expected unknown unit to be rejected")
	}
}

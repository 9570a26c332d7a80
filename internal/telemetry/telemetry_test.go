package telemetry

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRecordExtraction(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := New(provider.Meter("test"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	m.RecordExtraction(ctx, ResultOK, 20*time.Millisecond)
	m.RecordExtraction(ctx, ResultOK, 30*time.Millisecond)
	m.RecordExtraction(ctx, ResultFallback, 5*time.Millisecond)
	m.RecordRejected(ctx)
	m.RecordShuffle(ctx)
	m.SessionOpened(ctx)
	m.SessionOpened(ctx)
	m.SessionClosed(ctx)

	got := collect(t, reader)

	extractions, ok := got["colorvibe_extractions_total"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("extractions metric missing or wrong type: %#v", got["colorvibe_extractions_total"].Data)
	}
	byResult := map[string]int64{}
	for _, dp := range extractions.DataPoints {
		v, _ := dp.Attributes.Value("result")
		byResult[v.AsString()] = dp.Value
	}
	if byResult[ResultOK] != 2 || byResult[ResultFallback] != 1 || byResult[ResultError] != 1 {
		t.Errorf("extractions by result = %v, want ok=2 fallback=1 error=1", byResult)
	}

	shuffles, ok := got["colorvibe_shuffles_total"].Data.(metricdata.Sum[int64])
	if !ok || len(shuffles.DataPoints) != 1 || shuffles.DataPoints[0].Value != 1 {
		t.Errorf("shuffles = %#v, want single point of 1", got["colorvibe_shuffles_total"].Data)
	}

	hist, ok := got["colorvibe_extraction_duration_seconds"].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("duration histogram missing")
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("duration observations = %d, want 3 (rejections record no duration)", count)
	}

	sessions, ok := got["colorvibe_sessions_active"].Data.(metricdata.Sum[int64])
	if !ok || len(sessions.DataPoints) != 1 || sessions.DataPoints[0].Value != 1 {
		t.Errorf("sessions = %#v, want 1", got["colorvibe_sessions_active"].Data)
	}
}

func TestSetupDisabledIsNoop(t *testing.T) {
	m, err := Setup(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	m.RecordExtraction(context.Background(), ResultError, time.Second)
	m.RecordRejected(context.Background())
	m.RecordShuffle(context.Background())
	if err := m.Close(context.Background()); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestSetupRequiresEndpoint(t *testing.T) {
	if _, err := Setup(context.Background(), Config{Enabled: true}); err == nil {
		t.Error("Setup() expected error without endpoint")
	}
}

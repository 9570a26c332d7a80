// Package telemetry records ColorVibe metrics through the OpenTelemetry API.
// With export disabled every instrument is a no-op.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jmylchreest/colorvibe/internal/version"
)

const meterName = "github.com/jmylchreest/colorvibe"

// Extraction outcomes recorded on colorvibe_extractions_total.
const (
	ResultOK       = "ok"
	ResultFallback = "fallback"
	ResultError    = "error"
)

// Config holds OTLP exporter configuration.
type Config struct {
	Enabled  bool
	Endpoint string
	Insecure bool
	Interval time.Duration
}

// Metrics holds the application's instruments.
type Metrics struct {
	extractions metric.Int64Counter
	shuffles    metric.Int64Counter
	duration    metric.Float64Histogram
	sessions    metric.Int64UpDownCounter

	shutdown func(context.Context) error
}

// New builds the instruments on meter. The returned Metrics does not own
// the provider; Close is a no-op.
func New(meter metric.Meter) (*Metrics, error) {
	extractions, err := meter.Int64Counter(
		"colorvibe_extractions_total",
		metric.WithDescription("Palette extractions by outcome"),
		metric.WithUnit("{extraction}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating extractions counter: %w", err)
	}

	shuffles, err := meter.Int64Counter(
		"colorvibe_shuffles_total",
		metric.WithDescription("Palette shuffles"),
		metric.WithUnit("{shuffle}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating shuffles counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"colorvibe_extraction_duration_seconds",
		metric.WithDescription("Time spent decoding and quantising an image"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	sessions, err := meter.Int64UpDownCounter(
		"colorvibe_sessions_active",
		metric.WithDescription("Live browser sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions gauge: %w", err)
	}

	return &Metrics{
		extractions: extractions,
		shuffles:    shuffles,
		duration:    duration,
		sessions:    sessions,
		shutdown:    func(context.Context) error { return nil },
	}, nil
}

// Noop returns Metrics that record nothing.
func Noop() *Metrics {
	m, err := New(noop.NewMeterProvider().Meter(meterName))
	if err != nil {
		// The no-op meter never fails.
		panic(err)
	}
	return m
}

// Setup returns exporting Metrics when cfg.Enabled, otherwise Noop.
func Setup(ctx context.Context, cfg Config) (*Metrics, error) {
	if !cfg.Enabled {
		return Noop(), nil
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("metrics enabled but no OTLP endpoint configured")
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithInsecure(),
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(version.Name),
			semconv.ServiceVersion(version.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	m, err := New(provider.Meter(meterName))
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	m.shutdown = provider.Shutdown
	return m, nil
}

// RecordExtraction counts one extraction and its duration.
func (m *Metrics) RecordExtraction(ctx context.Context, result string, elapsed time.Duration) {
	opt := metric.WithAttributes(attribute.String("result", result))
	m.extractions.Add(ctx, 1, opt)
	m.duration.Record(ctx, elapsed.Seconds(), opt)
}

// RecordRejected counts an image that never reached the quantiser. No
// duration is recorded.
func (m *Metrics) RecordRejected(ctx context.Context) {
	m.extractions.Add(ctx, 1, metric.WithAttributes(attribute.String("result", ResultError)))
}

// RecordShuffle counts one palette shuffle.
func (m *Metrics) RecordShuffle(ctx context.Context) {
	m.shuffles.Add(ctx, 1)
}

// SessionOpened and SessionClosed track the live session count.
func (m *Metrics) SessionOpened(ctx context.Context) { m.sessions.Add(ctx, 1) }

// SessionClosed decrements the live session count.
func (m *Metrics) SessionClosed(ctx context.Context) { m.sessions.Add(ctx, -1) }

// Close flushes and stops the exporter, if any.
func (m *Metrics) Close(ctx context.Context) error {
	return m.shutdown(ctx)
}

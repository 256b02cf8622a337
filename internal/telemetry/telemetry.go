package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry holds the meter, tracer and all download instruments.
type Telemetry struct {
	meterProvider metric.MeterProvider
	tracer        trace.Tracer
	meter         metric.Meter
	exporter      *prometheus.Exporter

	jobsTotal         metric.Int64Counter
	downloadsActive   metric.Int64UpDownCounter
	downloadDuration  metric.Float64Histogram
	bytesTotal        metric.Int64Counter
	backendFetches    metric.Int64Counter
	dbOperationsTotal metric.Int64Counter
}

// Config holds telemetry configuration.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
}

// New creates a telemetry instance. With Enabled false every recording
// method is a no-op, so callers never need nil checks.
func New(cfg Config) (*Telemetry, error) {
	if !cfg.Enabled {
		return &Telemetry{}, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(meterProvider)

	t := &Telemetry{
		meterProvider: meterProvider,
		tracer:        otel.Tracer(cfg.ServiceName),
		meter:         otel.Meter(cfg.ServiceName),
		exporter:      exporter,
	}

	if err := t.initializeMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if err := runtime.Start(); err != nil {
		return nil, fmt.Errorf("failed to start runtime instrumentation: %w", err)
	}

	return t, nil
}

// Tracer returns the OpenTelemetry tracer.
func (t *Telemetry) Tracer() trace.Tracer {
	if t.tracer == nil {
		return otel.Tracer("modelfetch")
	}

	return t.tracer
}

// RecordJob records a job reaching a terminal state.
func (t *Telemetry) RecordJob(status, backend string) {
	if t.jobsTotal != nil {
		t.jobsTotal.Add(context.Background(), 1,
			metric.WithAttributes(
				attribute.String("status", status),
				attribute.String("backend", backend),
			),
		)
	}
}

// RecordDownload records a completed transfer's duration and size.
func (t *Telemetry) RecordDownload(backend string, bytes int64, duration time.Duration) {
	if t.downloadDuration != nil {
		t.downloadDuration.Record(context.Background(), duration.Seconds(),
			metric.WithAttributes(attribute.String("backend", backend)),
		)
	}

	if t.bytesTotal != nil && bytes > 0 {
		t.bytesTotal.Add(context.Background(), bytes,
			metric.WithAttributes(attribute.String("backend", backend)),
		)
	}
}

// IncrementActiveDownloads increments the in-flight transfer gauge.
func (t *Telemetry) IncrementActiveDownloads() {
	if t.downloadsActive != nil {
		t.downloadsActive.Add(context.Background(), 1)
	}
}

// DecrementActiveDownloads decrements the in-flight transfer gauge.
func (t *Telemetry) DecrementActiveDownloads() {
	if t.downloadsActive != nil {
		t.downloadsActive.Add(context.Background(), -1)
	}
}

// InstrumentBackendFetch wraps one backend invocation with a span and a
// per-backend outcome counter.
func (t *Telemetry) InstrumentBackendFetch(ctx context.Context, backend, url string, fn func(ctx context.Context) error) error {
	ctx, span := t.Tracer().Start(ctx, "backend_fetch",
		trace.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("url", url),
		),
	)
	defer span.End()

	err := fn(ctx)

	status := "success"
	if err != nil {
		status = "error"

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if t.backendFetches != nil {
		t.backendFetches.Add(context.Background(), 1,
			metric.WithAttributes(
				attribute.String("backend", backend),
				attribute.String("status", status),
			),
		)
	}

	return err
}

// RecordDBOperation records a manifest database operation.
func (t *Telemetry) RecordDBOperation(operation, status string) {
	if t.dbOperationsTotal != nil {
		t.dbOperationsTotal.Add(context.Background(), 1,
			metric.WithAttributes(
				attribute.String("operation", operation),
				attribute.String("status", status),
			),
		)
	}
}

// Handler returns the HTTP handler for the metrics endpoint.
func (t *Telemetry) Handler() http.Handler {
	if t.exporter == nil {
		return http.NotFoundHandler()
	}

	return promhttp.Handler()
}

// Shutdown gracefully shuts down the telemetry system.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if mp, ok := t.meterProvider.(*sdkmetric.MeterProvider); ok {
		return mp.Shutdown(ctx)
	}

	return nil
}

func (t *Telemetry) initializeMetrics() error {
	var err error

	t.jobsTotal, err = t.meter.Int64Counter(
		"modelfetch_jobs_total",
		metric.WithDescription("Download jobs by terminal state and producing backend"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create jobs counter: %w", err)
	}

	t.downloadsActive, err = t.meter.Int64UpDownCounter(
		"modelfetch_downloads_active",
		metric.WithDescription("Transfers currently in flight"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active downloads gauge: %w", err)
	}

	t.downloadDuration, err = t.meter.Float64Histogram(
		"modelfetch_download_duration_seconds",
		metric.WithDescription("Transfer duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create download duration histogram: %w", err)
	}

	t.bytesTotal, err = t.meter.Int64Counter(
		"modelfetch_bytes_total",
		metric.WithDescription("Bytes downloaded by backend"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("failed to create bytes counter: %w", err)
	}

	t.backendFetches, err = t.meter.Int64Counter(
		"modelfetch_backend_fetches_total",
		metric.WithDescription("Backend fetch invocations by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create backend fetches counter: %w", err)
	}

	t.dbOperationsTotal, err = t.meter.Int64Counter(
		"modelfetch_db_operations_total",
		metric.WithDescription("Manifest database operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create db operations counter: %w", err)
	}

	return nil
}

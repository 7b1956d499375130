package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	relayCounter   otelmetric.Int64Counter
	relayDuration  otelmetric.Float64Histogram
}

// Option customizes New.
type Option func(*options)

type options struct {
	spanProcessors []sdktrace.SpanProcessor
	skipExporter   bool
}

// WithSpanProcessor attaches a span processor (tracetest recorders, batchers).
func WithSpanProcessor(p sdktrace.SpanProcessor) Option {
	return func(o *options) { o.spanProcessors = append(o.spanProcessors, p) }
}

// WithoutPrometheusExporter builds the meter provider without registering a
// Prometheus exporter on the default registry.
func WithoutPrometheusExporter() Option {
	return func(o *options) { o.skipExporter = true }
}

// New sets up the global meter and tracer providers for serviceName. A
// failure to create the exporter degrades to a meter without readers.
func New(serviceName string, opts ...Option) (*Observability, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var meterOpts []metric.Option
	var exportErr error
	if !o.skipExporter {
		exporter, err := prometheus.New()
		if err != nil {
			exportErr = err
		} else {
			meterOpts = append(meterOpts, metric.WithReader(exporter))
		}
	}

	provider := metric.NewMeterProvider(meterOpts...)
	otel.SetMeterProvider(provider)

	var traceOpts []sdktrace.TracerProviderOption
	for _, p := range o.spanProcessors {
		traceOpts = append(traceOpts, sdktrace.WithSpanProcessor(p))
	}
	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(tracerProvider)

	meter := provider.Meter(serviceName)

	relayCounter, _ := meter.Int64Counter(
		"wish.relay.processed",
		otelmetric.WithDescription("Number of generate-wish requests relayed"),
	)

	relayDuration, _ := meter.Float64Histogram(
		"wish.relay.duration",
		otelmetric.WithDescription("Completion API round-trip duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:  provider,
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(serviceName),
		relayCounter:   relayCounter,
		relayDuration:  relayDuration,
	}, exportErr
}

// Tracer returns the service tracer, or a no-op tracer on a zero value.
func (o *Observability) Tracer() trace.Tracer {
	if o == nil || o.tracer == nil {
		return noop.NewTracerProvider().Tracer("")
	}
	return o.tracer
}

func (o *Observability) RecordRelay(ctx context.Context, tone, outcome string) {
	if o != nil && o.relayCounter != nil {
		o.relayCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("tone", tone),
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordRelayDuration(ctx context.Context, duration time.Duration, outcome string) {
	if o != nil && o.relayDuration != nil {
		o.relayDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
}

// Package telemetry provides OpenTelemetry tracer and meter initialization
// with support for stdout (development) and OTLP/HTTP exporters, plus the
// metric instruments recorded by the command lifecycle and child processes.
//
// Telemetry is off unless LERNA_OTEL_EXPORTER is set; with it off the global
// providers stay the OpenTelemetry no-ops and Metrics is nil.
//
// Tracer initialization:
//
//	tp, err := telemetry.InitTracer(ctx, "lernago", telemetry.ExporterStdout, "", os.Stderr)
//	defer tp.Shutdown(ctx)
//
// Pre-registered metrics:
//
//	metrics, err := telemetry.NewMetrics(mp)
//	metrics.ProcessTotal.Add(ctx, 1, ...)
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// Supported exporters.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// InstrumentationScope names the tracer and meter of this module.
const InstrumentationScope = "github.com/jsamuelsen11/lernago"

// Attribute keys for span and metric labels.
var (
	AttrCommand = attribute.Key("lerna.command")
	AttrStage   = attribute.Key("lerna.stage")
	AttrPackage = attribute.Key("lerna.package")
	AttrBinary  = attribute.Key("process.executable.name")
	AttrMode    = attribute.Key("process.mode")
	AttrResult  = attribute.Key("result")
)

// Metrics holds pre-registered OpenTelemetry metric instruments. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	StageDuration   metric.Float64Histogram
	ProcessDuration metric.Float64Histogram
	ProcessTotal    metric.Int64Counter
}

// InitTracer creates and registers a global TracerProvider.
//
// "otlp" exports over OTLP/HTTP to endpoint; "stdout" pretty-prints spans to
// w. The returned TracerProvider must be shut down when the process exits.
func InitTracer(ctx context.Context, serviceName, exporter, endpoint string, w io.Writer) (*sdktrace.TracerProvider, error) {
	if err := validateExporter(exporter, endpoint); err != nil {
		return nil, err
	}

	res, err := newResource(serviceName)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	spanExporter, err := newSpanExporter(ctx, exporter, endpoint, w)
	if err != nil {
		return nil, fmt.Errorf("creating span exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

// InitMeter creates and registers a global MeterProvider.
//
// Exporter selection follows InitTracer. The returned MeterProvider must be
// shut down when the process exits.
func InitMeter(ctx context.Context, serviceName, exporter, endpoint string, w io.Writer) (*sdkmetric.MeterProvider, error) {
	if err := validateExporter(exporter, endpoint); err != nil {
		return nil, err
	}

	res, err := newResource(serviceName)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	metricExporter, err := newMetricExporter(ctx, exporter, endpoint, w)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

// NewMetrics creates all metric instruments on the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(InstrumentationScope)

	stageDuration, err := meter.Float64Histogram(
		"lernago.stage.duration",
		metric.WithDescription("Duration of command lifecycle stages"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lernago.stage.duration: %w", err)
	}

	processDuration, err := meter.Float64Histogram(
		"lernago.process.duration",
		metric.WithDescription("Duration of child processes"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lernago.process.duration: %w", err)
	}

	processTotal, err := meter.Int64Counter(
		"lernago.process.total",
		metric.WithDescription("Total number of child processes started"),
		metric.WithUnit("{process}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lernago.process.total: %w", err)
	}

	return &Metrics{
		StageDuration:   stageDuration,
		ProcessDuration: processDuration,
		ProcessTotal:    processTotal,
	}, nil
}

// RecordStage records one lifecycle stage duration. Nil-safe.
func (m *Metrics) RecordStage(ctx context.Context, command, stage string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.StageDuration.Record(ctx, seconds, metric.WithAttributes(
		AttrCommand.String(command),
		AttrStage.String(stage),
		AttrResult.String(result(err)),
	))
}

// RecordProcess records one finished child process. Nil-safe.
func (m *Metrics) RecordProcess(ctx context.Context, binary, mode, pkg string, seconds float64, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrBinary.String(binary),
		AttrMode.String(mode),
		AttrPackage.String(pkg),
		AttrResult.String(result(err)),
	)
	m.ProcessTotal.Add(ctx, 1, attrs)
	m.ProcessDuration.Record(ctx, seconds, attrs)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func validateExporter(exporter, endpoint string) error {
	switch exporter {
	case ExporterStdout:
		return nil
	case ExporterOTLP:
		if endpoint == "" {
			return errors.New("otlp exporter requires an endpoint")
		}
		return nil
	default:
		return fmt.Errorf("unsupported exporter %q: must be one of %s, %s", exporter, ExporterStdout, ExporterOTLP)
	}
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newSpanExporter(ctx context.Context, exporter, endpoint string, w io.Writer) (sdktrace.SpanExporter, error) {
	if exporter == ExporterOTLP {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(hostPort(endpoint))}
		if !isHTTPS(endpoint) {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
	return stdouttrace.New(stdouttrace.WithPrettyPrint(), stdouttrace.WithWriter(w))
}

func newMetricExporter(ctx context.Context, exporter, endpoint string, w io.Writer) (sdkmetric.Exporter, error) {
	if exporter == ExporterOTLP {
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(hostPort(endpoint))}
		if !isHTTPS(endpoint) {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	}
	return stdoutmetric.New(stdoutmetric.WithWriter(w))
}

// hostPort extracts the host:port from a URL string
// (e.g., "http://otel-collector:4318" -> "otel-collector:4318").
func hostPort(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}

// isHTTPS returns true if the endpoint URL uses the https scheme.
func isHTTPS(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return u.Scheme == "https"
}

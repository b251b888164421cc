package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// InstrumentationName names the tracer and meter used across the module
const InstrumentationName = "github.com/mayike4315/gpt-web"

var (
	operationsOnce    sync.Once
	operationsCounter metric.Int64Counter
)

// Tracer returns the module tracer from the global provider. Spans are
// dropped unless InitTelemetry installed an SDK provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// RecordOperation counts one store or client operation and its outcome
func RecordOperation(ctx context.Context, component, op string, err error) {
	operationsOnce.Do(func() {
		c, cerr := otel.Meter(InstrumentationName).Int64Counter("gptweb.operations",
			metric.WithDescription("Store and API operations by outcome"))
		if cerr != nil {
			LogDebug("Failed to create operations counter: %v", cerr)
			return
		}
		operationsCounter = c
	})
	if operationsCounter == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}

// InitTelemetry installs tracer and meter providers that export to rotating
// files under dir. The returned func flushes and closes everything.
func InitTelemetry(ctx context.Context, dir, version string) (func(), error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("gpt-web"),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	traceFile := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "traces.log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(traceFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	metricsFile := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "metrics.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(metricsFile))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(10*time.Second))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			LogWarn("Failed to shutdown tracer provider: %v", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			LogWarn("Failed to shutdown meter provider: %v", err)
		}
		_ = traceFile.Close()
		_ = metricsFile.Close()
	}
	return shutdown, nil
}

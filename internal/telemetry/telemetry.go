// Package telemetry wires slog and the OpenTelemetry providers.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/MikeMC777/foodtruck-orders/internal/config"
)

// Setup installs the global propagator and providers and returns the
// process logger. Exporters are only created when OpenTelemetry is enabled.
// If err is nil, shutdown must be called on exit.
func Setup(ctx context.Context, app config.AppConfig, cfg config.OpenTelemetryConfig) (logger *slog.Logger, shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error
	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}
	fail := func(inErr error) (*slog.Logger, func(context.Context) error, error) {
		return nil, nil, errors.Join(inErr, shutdown(ctx))
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(app.Name),
		semconv.ServiceVersion(app.Version),
		semconv.DeploymentEnvironment(app.Env),
	))
	if err != nil {
		return fail(err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tp, err := newTraceProvider(ctx, cfg, res)
	if err != nil {
		return fail(err)
	}
	shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	otel.SetTracerProvider(tp)

	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		return fail(err)
	}
	shutdownFuncs = append(shutdownFuncs, mp.Shutdown)
	otel.SetMeterProvider(mp)

	lp, err := newLoggerProvider(ctx, cfg, res)
	if err != nil {
		return fail(err)
	}
	shutdownFuncs = append(shutdownFuncs, lp.Shutdown)
	global.SetLoggerProvider(lp)

	logger = NewLogger(os.Stdout, app, cfg.Enabled, lp)
	slog.SetDefault(logger)
	return logger, shutdown, nil
}

// NewLogger builds the JSON logger pipeline. When exportLogs is set, records
// are also handed to the OpenTelemetry logger provider.
func NewLogger(w io.Writer, app config.AppConfig, exportLogs bool, lp *log.LoggerProvider) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLevel(app.LogLevel),
	})
	pipeline := slogmulti.Pipe(slogmulti.NewHandleInlineMiddleware(formatErrors))

	if !exportLogs || lp == nil {
		return slog.New(pipeline.Handler(jsonHandler))
	}
	otelHandler := otelslog.NewHandler(app.Name,
		otelslog.WithLoggerProvider(lp),
		otelslog.WithVersion(app.Version),
		otelslog.WithSource(true),
	)
	return slog.New(pipeline.Handler(slogmulti.Fanout(jsonHandler, otelHandler)))
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func newTraceProvider(ctx context.Context, cfg config.OpenTelemetryConfig, res *resource.Resource) (*trace.TracerProvider, error) {
	if !cfg.Enabled {
		return trace.NewTracerProvider(trace.WithResource(res)), nil
	}
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	return trace.NewTracerProvider(
		trace.WithBatcher(exp,
			trace.WithBatchTimeout(seconds(cfg.Traces.TimeoutInSec)),
			trace.WithMaxQueueSize(cfg.Traces.MaxQueueSize),
			trace.WithMaxExportBatchSize(cfg.Traces.BatchSize),
		),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(float64(cfg.Traces.SampleRate)/100))),
		trace.WithResource(res),
	), nil
}

func newMeterProvider(ctx context.Context, cfg config.OpenTelemetryConfig, res *resource.Resource) (*metric.MeterProvider, error) {
	if !cfg.Enabled {
		return metric.NewMeterProvider(metric.WithResource(res)), nil
	}
	exp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exp,
			metric.WithInterval(seconds(cfg.Metrics.IntervalInSec)),
			metric.WithTimeout(seconds(cfg.Metrics.TimeoutInSec)),
		)),
		metric.WithResource(res),
	), nil
}

func newLoggerProvider(ctx context.Context, cfg config.OpenTelemetryConfig, res *resource.Resource) (*log.LoggerProvider, error) {
	if !cfg.Enabled {
		return log.NewLoggerProvider(log.WithResource(res)), nil
	}
	exp, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(cfg.Endpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	processor := log.NewBatchProcessor(exp,
		log.WithMaxQueueSize(cfg.Logs.MaxQueueSize),
		log.WithExportMaxBatchSize(cfg.Logs.BatchSize),
		log.WithExportTimeout(seconds(cfg.Logs.TimeoutInSec)),
		log.WithExportInterval(seconds(cfg.Logs.IntervalInSec)),
	)
	return log.NewLoggerProvider(log.WithResource(res), log.WithProcessor(processor)), nil
}

func seconds(n int64) time.Duration { return time.Duration(n) * time.Second }

// formatErrors expands error-valued attributes into a group carrying the
// message and the concrete type.
func formatErrors(ctx context.Context, record slog.Record, next func(context.Context, slog.Record) error) error {
	var attrs []slog.Attr
	changed := false
	record.Attrs(func(a slog.Attr) bool {
		if a.Value.Kind() != slog.KindAny {
			attrs = append(attrs, a)
			return true
		}
		if err, ok := a.Value.Any().(error); ok {
			a = slog.Group(a.Key,
				slog.String("message", err.Error()),
				slog.String("type", errorType(err)),
			)
			changed = true
		}
		attrs = append(attrs, a)
		return true
	})
	if !changed {
		return next(ctx, record)
	}
	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	out.AddAttrs(attrs...)
	return next(ctx, out)
}

func errorType(err error) string {
	for {
		u := errors.Unwrap(err)
		if u == nil {
			break
		}
		err = u
	}
	return fmt.Sprintf("%T", err)
}

package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/atifjaved999/mini-coaching/internal/config"
)

// Runtime bundles the telemetry providers so shutdown happens in one place.
type Runtime struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
}

func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var firstErr error
	if r.TracerProvider != nil {
		if err := r.TracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if r.MeterProvider != nil {
		if err := r.MeterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	mp, err := initMetrics(ctx, cfg)
	if err != nil {
		return nil, err
	}
	tp, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Runtime{TracerProvider: tp, MeterProvider: mp}, nil
}

func initMetrics(ctx context.Context, cfg *config.Config) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		return mp, nil
	}
	if _, err := url.Parse("http://" + cfg.OTELExporterOTLPEndpoint); err != nil {
		return nil, fmt.Errorf("invalid OTLP endpoint %q: %w", cfg.OTELExporterOTLPEndpoint, err)
	}
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	otel.SetMeterProvider(mp)
	return mp, nil
}

var (
	countersOnce      sync.Once
	repoOpCounter     metric.Int64Counter
	schedulingCounter metric.Int64Counter
	authCounter       metric.Int64Counter
)

func counters() (metric.Int64Counter, metric.Int64Counter, metric.Int64Counter) {
	countersOnce.Do(func() {
		meter := otel.Meter("github.com/atifjaved999/mini-coaching")
		repoOpCounter, _ = meter.Int64Counter("repository_operations_total",
			metric.WithDescription("Repository operations by entity, operation and outcome"))
		schedulingCounter, _ = meter.Int64Counter("scheduling_events_total",
			metric.WithDescription("Session scheduling and booking events by operation and outcome"))
		authCounter, _ = meter.Int64Counter("auth_events_total",
			metric.WithDescription("Authentication events by operation and outcome"))
	})
	return repoOpCounter, schedulingCounter, authCounter
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	repo, _, _ := counters()
	if repo == nil {
		return
	}
	repo.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordSchedulingEvent(ctx context.Context, operation, outcome string) {
	_, scheduling, _ := counters()
	if scheduling == nil {
		return
	}
	scheduling.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordAuthEvent(ctx context.Context, operation, outcome string) {
	_, _, auth := counters()
	if auth == nil {
		return
	}
	auth.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

package main

import (
	"context"
	"errors"

	"go-chi-widgets/internal/calculator"
	"go-chi-widgets/internal/config"
	"go-chi-widgets/internal/observability"
)

// initTelemetry starts the OTLP trace, metric and (optionally) log pipelines
// and the calculator's metric instruments. The returned func shuts down
// everything that was started.
func initTelemetry(ctx context.Context, cfg config.Otel) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	traceShutdown, err := observability.InitTracing(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}
	shutdowns = append(shutdowns, traceShutdown)

	metricShutdown, err := initMetrics(ctx, cfg.ServiceName)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	shutdowns = append(shutdowns, metricShutdown)

	if cfg.Logs {
		logShutdown, err := observability.InitLogging(ctx, cfg.ServiceName)
		if err != nil {
			_ = shutdown(ctx)
			return nil, err
		}
		shutdowns = append(shutdowns, logShutdown)
	}

	return shutdown, nil
}

// initMetrics initialises all metric providers and application-specific
// metric instruments. Add new domain InitMetrics calls here as the project grows.
func initMetrics(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx, serviceName)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}

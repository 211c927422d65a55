package calculator

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments. They start as no-ops so handlers work before
// InitMetrics runs.
var (
	eventsCounter  metric.Int64Counter       = noop.Int64Counter{}
	eventHistogram metric.Float64Histogram   = noop.Float64Histogram{}
	errorCounter   metric.Int64Counter       = noop.Int64Counter{}
	resultGauge    metric.Float64Gauge       = noop.Float64Gauge{}
	sessionsCount  metric.Int64UpDownCounter = noop.Int64UpDownCounter{}
)

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	eventsCounter, err = meter.Int64Counter("calculator.events.total",
		metric.WithDescription("Total number of calculator input events handled"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return fmt.Errorf("creating events counter: %w", err)
	}

	eventHistogram, err = meter.Float64Histogram("calculator.event.duration",
		metric.WithDescription("Duration of calculator event handling in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating event histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of calculator errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last calculator evaluation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	sessionsCount, err = meter.Int64UpDownCounter("calculator.sessions.open",
		metric.WithDescription("Calculator sessions created minus sessions removed"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return fmt.Errorf("creating sessions counter: %w", err)
	}

	return nil
}

// RegisterSessionGauge exposes the live session count of store on reg for
// the Prometheus /metrics endpoint. Registering twice is not an error.
func RegisterSessionGauge(reg prometheus.Registerer, store *Store) error {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "widgets",
		Subsystem: "calculator",
		Name:      "sessions_active",
		Help:      "Number of live calculator sessions.",
	}, func() float64 {
		return float64(store.Len())
	})

	if err := reg.Register(gauge); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return nil
		}
		return fmt.Errorf("registering sessions gauge: %w", err)
	}
	return nil
}

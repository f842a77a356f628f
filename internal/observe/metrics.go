// Package observe provides observability primitives for dialogforge:
// OpenTelemetry metric instruments for the webhook, generator, and
// deployment paths, plus the SDK provider setup with a Prometheus exporter
// bridge for the standalone server's /metrics endpoint.
//
// A package-level default [Metrics] instance ([Default]) backed by the
// global meter provider is available for convenience; tests should use
// [NewMetrics] with their own [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope name used for all dialogforge
// metrics.
const meterName = "github.com/MrWong99/dialogforge"

// Metrics holds all OpenTelemetry metric instruments for the adapter.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// WebhookRequests counts inbound webhook requests. Use with attribute:
	//   attribute.String("outcome", "matched"|"rejected"|"error")
	WebhookRequests metric.Int64Counter

	// WebhookDuration tracks webhook request processing time in seconds.
	WebhookDuration metric.Float64Histogram

	// GenerationDuration tracks full agent-generation run time in seconds.
	GenerationDuration metric.Float64Histogram

	// GeneratedFiles counts JSON files written by generation runs.
	GeneratedFiles metric.Int64Counter

	// DeployRequests counts Dialogflow API calls made during deployment.
	// Use with attributes:
	//   attribute.String("operation", "export"|"restore"), attribute.String("status", ...)
	DeployRequests metric.Int64Counter
}

// webhookLatencyBuckets defines histogram bucket boundaries (in seconds) for
// webhook processing time.
var webhookLatencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// generationBuckets defines histogram bucket boundaries (in seconds) for
// whole generation runs.
var generationBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.WebhookRequests, err = m.Int64Counter("dialogforge.webhook.requests",
		metric.WithDescription("Inbound webhook requests by outcome."),
	); err != nil {
		return nil, err
	}
	if met.WebhookDuration, err = m.Float64Histogram("dialogforge.webhook.duration",
		metric.WithDescription("Webhook request processing time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(webhookLatencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.GenerationDuration, err = m.Float64Histogram("dialogforge.generate.duration",
		metric.WithDescription("Agent generation run time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(generationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.GeneratedFiles, err = m.Int64Counter("dialogforge.generate.files",
		metric.WithDescription("JSON files written by generation runs."),
	); err != nil {
		return nil, err
	}
	if met.DeployRequests, err = m.Int64Counter("dialogforge.deploy.requests",
		metric.WithDescription("Dialogflow API calls made during deployment."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns the shared [Metrics] instance backed by the global meter
// provider. Before [InitProvider] has run the global provider is a no-op, so
// recording is free.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			m, _ = NewMetrics(noop.NewMeterProvider())
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

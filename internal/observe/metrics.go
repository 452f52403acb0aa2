// Package observe provides application-wide observability primitives:
// OpenTelemetry metrics, tracing, structured logging, and HTTP middleware
// that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/dmorales/fastaccess"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// CaptureDuration tracks microphone utterance capture time.
	CaptureDuration metric.Float64Histogram

	// TranscribeDuration tracks speech-to-text transcription latency.
	TranscribeDuration metric.Float64Histogram

	// ResolveDuration tracks catalog resolution time per transcript.
	ResolveDuration metric.Float64Histogram

	// ExecuteDuration tracks how long launching the matched target took.
	ExecuteDuration metric.Float64Histogram

	// --- Counters ---

	// Utterances counts captured utterances. Use with attribute:
	//   attribute.String("status", ...) — "resolved", "unmatched", "unrecognized", "error"
	Utterances metric.Int64Counter

	// Matches counts resolved matches. Use with attribute:
	//   attribute.String("kind", ...) — "command" or "group"
	Matches metric.Int64Counter

	// ProviderErrors counts transcription and synthesis failures. Use with
	// attributes: attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// CatalogReloads counts catalog file reloads picked up by the watcher.
	CatalogReloads metric.Int64Counter

	// --- Gauges ---

	// ListenerActive is 1 while the listening loop is accepting voice input
	// and 0 while paused.
	ListenerActive metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for voice-pipeline latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.CaptureDuration, err = m.Float64Histogram("fastaccess.capture.duration",
		metric.WithDescription("Duration of microphone utterance capture."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscribeDuration, err = m.Float64Histogram("fastaccess.transcribe.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ResolveDuration, err = m.Float64Histogram("fastaccess.resolve.duration",
		metric.WithDescription("Time spent resolving a transcript against the catalog."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ExecuteDuration, err = m.Float64Histogram("fastaccess.execute.duration",
		metric.WithDescription("Time spent launching the matched target."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Utterances, err = m.Int64Counter("fastaccess.utterances",
		metric.WithDescription("Total captured utterances by status."),
	); err != nil {
		return nil, err
	}
	if met.Matches, err = m.Int64Counter("fastaccess.matches",
		metric.WithDescription("Total resolved matches by kind."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("fastaccess.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}
	if met.CatalogReloads, err = m.Int64Counter("fastaccess.catalog.reloads",
		metric.WithDescription("Total catalog file reloads."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ListenerActive, err = m.Int64UpDownCounter("fastaccess.listener.active",
		metric.WithDescription("1 while the listener accepts voice input, 0 while paused."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("fastaccess.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordUtterance increments the utterance counter with the given status.
func (m *Metrics) RecordUtterance(ctx context.Context, status string) {
	m.Utterances.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordMatch increments the match counter for the given kind.
func (m *Metrics) RecordMatch(ctx context.Context, kind string) {
	m.Matches.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// RecordProviderError increments the provider error counter.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}

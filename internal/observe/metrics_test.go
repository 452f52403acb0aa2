package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestHistogramObservation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	histograms := []struct {
		name string
		h    metric.Float64Histogram
	}{
		{"fastaccess.capture.duration", m.CaptureDuration},
		{"fastaccess.transcribe.duration", m.TranscribeDuration},
		{"fastaccess.resolve.duration", m.ResolveDuration},
		{"fastaccess.execute.duration", m.ExecuteDuration},
	}

	for _, tc := range histograms {
		tc.h.Record(ctx, 0.123)
		tc.h.Record(ctx, 0.456)
	}

	rm := collect(t, reader)

	for _, tc := range histograms {
		t.Run(tc.name, func(t *testing.T) {
			met := findMetric(rm, tc.name)
			if met == nil {
				t.Fatalf("metric %q not found", tc.name)
			}
			hist, ok := met.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("metric %q is not a histogram", tc.name)
			}
			if len(hist.DataPoints) == 0 {
				t.Fatalf("metric %q has no data points", tc.name)
			}
			if got := hist.DataPoints[0].Count; got != 2 {
				t.Errorf("metric %q count = %d, want 2", tc.name, got)
			}
		})
	}
}

func TestCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordUtterance(ctx, "resolved")
	m.RecordUtterance(ctx, "unrecognized")
	m.RecordMatch(ctx, "command")
	m.RecordProviderError(ctx, "whisper", "stt")
	m.CatalogReloads.Add(ctx, 1)

	rm := collect(t, reader)

	for _, name := range []string{
		"fastaccess.utterances",
		"fastaccess.matches",
		"fastaccess.provider.errors",
		"fastaccess.catalog.reloads",
	} {
		met := findMetric(rm, name)
		if met == nil {
			t.Errorf("metric %q not found", name)
			continue
		}
		sum, ok := met.Data.(metricdata.Sum[int64])
		if !ok {
			t.Errorf("metric %q is not an int64 sum", name)
			continue
		}
		if len(sum.DataPoints) == 0 {
			t.Errorf("metric %q has no data points", name)
		}
	}

	// Utterances are split by status attribute.
	ut := findMetric(rm, "fastaccess.utterances")
	if sum, ok := ut.Data.(metricdata.Sum[int64]); ok {
		if len(sum.DataPoints) != 2 {
			t.Errorf("utterances data points = %d, want 2 (one per status)", len(sum.DataPoints))
		}
	}
}

func TestListenerActiveGauge(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.ListenerActive.Add(ctx, 1)
	m.ListenerActive.Add(ctx, -1)
	m.ListenerActive.Add(ctx, 1)

	rm := collect(t, reader)
	met := findMetric(rm, "fastaccess.listener.active")
	if met == nil {
		t.Fatal("listener.active metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("listener.active is not an int64 sum")
	}
	if got := sum.DataPoints[0].Value; got != 1 {
		t.Errorf("listener.active = %d, want 1", got)
	}
}

func TestDefaultMetricsSingleton(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a != b {
		t.Error("DefaultMetrics must return the same instance")
	}
}

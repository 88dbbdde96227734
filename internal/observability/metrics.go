package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters and histograms of one snapshot run.
type Metrics struct {
	SnapshotsWritten prometheus.Counter
	SnapshotsSkipped prometheus.Counter
	RenderDuration   prometheus.Histogram
	LastRunPoints    prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics registers the run metrics on a private registry. The process
// is a batch job, so nothing is served; see WriteTextfile.
func NewMetrics() *Metrics {
	m := &Metrics{
		SnapshotsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tracksnap",
			Name:      "snapshots_written_total",
			Help:      "Snapshot images rendered and written.",
		}),
		SnapshotsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tracksnap",
			Name:      "snapshots_skipped_total",
			Help:      "Track points skipped because the image already existed.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tracksnap",
			Name:      "render_duration_seconds",
			Help:      "Time to render and save one snapshot.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		LastRunPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tracksnap",
			Name:      "last_run_track_points",
			Help:      "Track points valid at the requested time in the last run.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.SnapshotsWritten,
		m.SnapshotsSkipped,
		m.RenderDuration,
		m.LastRunPoints,
	)
	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

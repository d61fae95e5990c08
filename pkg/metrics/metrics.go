// Package metrics exports the counters of a run in the Prometheus text
// format, for node_exporter's textfile collector or a pushgateway job.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/eunmann/movie-buckets/pkg/movies"
	"github.com/eunmann/movie-buckets/pkg/pipeline"
)

const namespace = "movie_buckets"

// RunMetrics holds the metrics of one run on a private registry.
type RunMetrics struct {
	Registry *prometheus.Registry

	Inputs         prometheus.Gauge
	RowsRead       prometheus.Counter
	DecodeFailures prometheus.Counter
	Rejected       *prometheus.CounterVec
	Admitted       prometheus.Counter
	Details        prometheus.Counter
	BucketRecords  prometheus.Gauge
	Duration       prometheus.Gauge
	LastSuccess    prometheus.Gauge
}

// NewRunMetrics creates and registers the run metrics.
func NewRunMetrics() *RunMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &RunMetrics{
		Registry: reg,
		Inputs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inputs",
			Help:      "Number of inputs read by the last run.",
		}),
		RowsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "rows_read_total",
			Help:      "Rows read from all inputs, including malformed ones.",
		}),
		DecodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "decode_failures_total",
			Help:      "Rows dropped because they could not be decoded.",
		}),
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "rejected_total",
			Help:      "Decoded rows not admitted, by reason.",
		}, []string{"reason"}),
		Admitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "admitted_total",
			Help:      "Movies admitted into the aggregation.",
		}),
		Details: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "company_details_total",
			Help:      "Per-company details upserted into the bucket index.",
		}),
		BucketRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "records",
			Help:      "Distinct (year, month, company) records in the bucket index.",
		}),
		Duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last successful run finished.",
		}),
	}
}

// Observe records the outcome of a finished run.
func (m *RunMetrics) Observe(res *pipeline.Result, elapsed time.Duration, finished time.Time) {
	st := res.Stats
	m.Inputs.Set(float64(st.Inputs))
	m.RowsRead.Add(float64(st.RowsRead))
	m.DecodeFailures.Add(float64(st.DecodeFailures))
	for _, reason := range movies.Rejections {
		m.Rejected.WithLabelValues(reason.String()).Add(float64(st.Rejected[reason]))
	}
	m.Admitted.Add(float64(st.Admitted))
	m.Details.Add(float64(st.Details))
	m.BucketRecords.Set(float64(res.Index.Len()))
	m.Duration.Set(elapsed.Seconds())
	m.LastSuccess.Set(float64(finished.Unix()))
}

// WriteTextfile writes the registry to path atomically.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Package metrics exports per-run counters in the Prometheus text format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"

	"github.com/sells-group/germplasm-cli/internal/model"
)

const namespace = "germplasm"

// Recorder holds the counters of one process.
type Recorder struct {
	registry *prometheus.Registry

	rowsRead    prometheus.Counter
	candidates  prometheus.Counter
	duplicates  prometheus.Counter
	rowsWritten prometheus.Counter
	resolutions *prometheus.CounterVec
	runs        *prometheus.CounterVec
	duration    prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Source rows read from input files.",
		}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidate_records_total",
			Help:      "Records produced by variety expansion before deduplication.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_dropped_total",
			Help:      "Expanded records dropped as duplicates.",
		}),
		rowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows written to output files.",
		}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Field resolutions by the path that produced them.",
		}, []string{"source"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs by final status.",
		}, []string{"status"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the most recent run.",
		}),
	}
	r.registry.MustRegister(r.rowsRead, r.candidates, r.duplicates, r.rowsWritten, r.resolutions, r.runs, r.duration)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Resolution counts one (record, variety) resolution by source.
func (r *Recorder) Resolution(source string) {
	r.resolutions.WithLabelValues(source).Inc()
}

// RunComplete records the tallies of a successful run.
func (r *Recorder) RunComplete(res *model.RunResult) {
	r.rowsRead.Add(float64(res.RowsRead))
	r.candidates.Add(float64(res.Candidates))
	r.duplicates.Add(float64(res.DuplicatesDropped))
	r.rowsWritten.Add(float64(res.RowsWritten))
	r.duration.Set(float64(res.DurationMs) / 1000)
	r.runs.WithLabelValues(string(model.RunStatusComplete)).Inc()
}

// RunFailed records a failed run.
func (r *Recorder) RunFailed() {
	r.runs.WithLabelValues(string(model.RunStatusFailed)).Inc()
}

// WriteTextfile dumps the registry to path for a node_exporter textfile
// collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return eris.Wrap(err, "metrics: write textfile")
	}
	return nil
}

// Package metrics counts store activity with Prometheus collectors. The tool
// is a one-shot process, so counters are written to a node-exporter textfile
// at the end of a run instead of being scraped.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "bookdist"

// Recorder holds the collectors of one run. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	rowsInserted  *prometheus.CounterVec
	lookups       *prometheus.CounterVec
	droppedTables *prometheus.CounterVec
	runs          *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_inserted_total",
			Help:      "Rows inserted, by table.",
		}, []string{"table"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Store lookups, by table and result (hit or miss).",
		}, []string{"table", "result"}),
		droppedTables: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_drops_total",
			Help:      "DROP TABLE attempts during schema reset, by outcome (dropped or missing).",
		}, []string{"outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed runs, by command and status.",
		}, []string{"command", "status"}),
	}
	r.registry.MustRegister(
		r.rowsInserted,
		r.lookups,
		r.droppedTables,
		r.runs,
		collectors.NewGoCollector(),
	)
	return r
}

// Registry exposes the underlying registry, e.g. for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RowInserted counts one inserted row.
func (r *Recorder) RowInserted(table string) {
	if r == nil {
		return
	}
	r.rowsInserted.WithLabelValues(table).Inc()
}

// Lookup counts one lookup and whether it found a row.
func (r *Recorder) Lookup(table string, found bool) {
	if r == nil {
		return
	}
	result := "hit"
	if !found {
		result = "miss"
	}
	r.lookups.WithLabelValues(table, result).Inc()
}

// TableDropped counts one DROP TABLE attempt. missing marks a table that did
// not exist.
func (r *Recorder) TableDropped(missing bool) {
	if r == nil {
		return
	}
	outcome := "dropped"
	if missing {
		outcome = "missing"
	}
	r.droppedTables.WithLabelValues(outcome).Inc()
}

// RunFinished counts a finished command.
func (r *Recorder) RunFinished(command string, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.runs.WithLabelValues(command, status).Inc()
}

// WriteTextfile writes every collected metric to path in the Prometheus text
// exposition format. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

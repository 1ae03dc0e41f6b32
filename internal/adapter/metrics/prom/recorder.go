package prom

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cartographer"

// Recorder exports pipeline counters on a private registry.
type Recorder struct {
	registry  *prometheus.Registry
	runs      *prometheus.CounterVec
	durations *prometheus.HistogramVec
	snapshots prometheus.Counter
	mirrors   *prometheus.CounterVec
	serves    *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Render and publish runs by stage and outcome.",
		}, []string{"stage", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of render and publish runs.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Overlay snapshots published to the served path.",
		}),
		mirrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_uploads_total",
			Help:      "Snapshot mirror uploads by outcome.",
		}, []string{"outcome"}),
		serves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "serve_requests_total",
			Help:      "Snapshot requests by result.",
		}, []string{"result"}),
	}
	r.registry.MustRegister(
		r.runs,
		r.durations,
		r.snapshots,
		r.mirrors,
		r.serves,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) RecordRender(ok bool, took time.Duration) {
	r.recordStage("render", ok, took)
}

func (r *Recorder) RecordPublish(ok bool, took time.Duration) {
	r.recordStage("publish", ok, took)
}

func (r *Recorder) RecordSnapshot() {
	r.snapshots.Inc()
}

func (r *Recorder) RecordMirror(ok bool) {
	r.mirrors.WithLabelValues(outcome(ok)).Inc()
}

func (r *Recorder) RecordServe(hit bool) {
	result := "hit"
	if !hit {
		result = "miss"
	}
	r.serves.WithLabelValues(result).Inc()
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) recordStage(stage string, ok bool, took time.Duration) {
	r.runs.WithLabelValues(stage, outcome(ok)).Inc()
	r.durations.WithLabelValues(stage).Observe(took.Seconds())
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

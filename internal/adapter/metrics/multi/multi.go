package multi

import (
	"time"

	"cartographer/internal/app/ports"
)

// Metrics forwards every observation to each recorder in order.
type Metrics []ports.PipelineMetrics

func (m Metrics) RecordRender(ok bool, took time.Duration) {
	for _, r := range m {
		r.RecordRender(ok, took)
	}
}

func (m Metrics) RecordPublish(ok bool, took time.Duration) {
	for _, r := range m {
		r.RecordPublish(ok, took)
	}
}

func (m Metrics) RecordSnapshot() {
	for _, r := range m {
		r.RecordSnapshot()
	}
}

func (m Metrics) RecordMirror(ok bool) {
	for _, r := range m {
		r.RecordMirror(ok)
	}
}

func (m Metrics) RecordServe(hit bool) {
	for _, r := range m {
		r.RecordServe(hit)
	}
}

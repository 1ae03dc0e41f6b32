package ports

import "time"

type PipelineMetrics interface {
	RecordRender(ok bool, took time.Duration)
	RecordPublish(ok bool, took time.Duration)
	RecordSnapshot()
	RecordMirror(ok bool)
	RecordServe(hit bool)
}

type NopMetrics struct{}

func (NopMetrics) RecordRender(bool, time.Duration)  {}
func (NopMetrics) RecordPublish(bool, time.Duration) {}
func (NopMetrics) RecordSnapshot()                   {}
func (NopMetrics) RecordMirror(bool)                 {}
func (NopMetrics) RecordServe(bool)                  {}

package inmemory

import (
	"sync"
	"time"
)

type StageSnapshot struct {
	Total       uint64 `json:"total"`
	Success     uint64 `json:"success"`
	Failure     uint64 `json:"failure"`
	LastTookMS  int64  `json:"last_took_ms"`
	TotalTookMS int64  `json:"total_took_ms"`
}

type Snapshot struct {
	Render        StageSnapshot `json:"render"`
	Publish       StageSnapshot `json:"publish"`
	Snapshots     uint64        `json:"snapshots"`
	MirrorSuccess uint64        `json:"mirror_success"`
	MirrorFailure uint64        `json:"mirror_failure"`
	ServeHit      uint64        `json:"serve_hit"`
	ServeMiss     uint64        `json:"serve_miss"`
}

type stage struct {
	success  uint64
	failure  uint64
	lastTook time.Duration
	allTook  time.Duration
}

func (s *stage) record(ok bool, took time.Duration) {
	if ok {
		s.success++
	} else {
		s.failure++
	}
	s.lastTook = took
	s.allTook += took
}

func (s stage) snapshot() StageSnapshot {
	return StageSnapshot{
		Total:       s.success + s.failure,
		Success:     s.success,
		Failure:     s.failure,
		LastTookMS:  s.lastTook.Milliseconds(),
		TotalTookMS: s.allTook.Milliseconds(),
	}
}

type Recorder struct {
	mu            sync.Mutex
	render        stage
	publish       stage
	snapshots     uint64
	mirrorSuccess uint64
	mirrorFailure uint64
	serveHit      uint64
	serveMiss     uint64
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordRender(ok bool, took time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.render.record(ok, took)
}

func (r *Recorder) RecordPublish(ok bool, took time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publish.record(ok, took)
}

func (r *Recorder) RecordSnapshot() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots++
}

func (r *Recorder) RecordMirror(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.mirrorSuccess++
	} else {
		r.mirrorFailure++
	}
}

func (r *Recorder) RecordServe(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.serveHit++
	} else {
		r.serveMiss++
	}
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		Render:        r.render.snapshot(),
		Publish:       r.publish.snapshot(),
		Snapshots:     r.snapshots,
		MirrorSuccess: r.mirrorSuccess,
		MirrorFailure: r.mirrorFailure,
		ServeHit:      r.serveHit,
		ServeMiss:     r.serveMiss,
	}
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}

package prom

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounters(t *testing.T) {
	r := NewRecorder()
	r.RecordRender(true, time.Second)
	r.RecordRender(false, time.Second)
	r.RecordRender(false, time.Second)
	r.RecordPublish(true, 10*time.Millisecond)
	r.RecordSnapshot()
	r.RecordMirror(false)
	r.RecordServe(true)
	r.RecordServe(false)

	if got := testutil.ToFloat64(r.runs.WithLabelValues("render", "failure")); got != 2 {
		t.Fatalf("render failures: got=%v want=2", got)
	}
	if got := testutil.ToFloat64(r.runs.WithLabelValues("publish", "success")); got != 1 {
		t.Fatalf("publish successes: got=%v want=1", got)
	}
	if got := testutil.ToFloat64(r.snapshots); got != 1 {
		t.Fatalf("snapshots: got=%v want=1", got)
	}
	if got := testutil.ToFloat64(r.mirrors.WithLabelValues("failure")); got != 1 {
		t.Fatalf("mirror failures: got=%v want=1", got)
	}
	if got := testutil.ToFloat64(r.serves.WithLabelValues("miss")); got != 1 {
		t.Fatalf("serve misses: got=%v want=1", got)
	}
	if got := testutil.CollectAndCount(r.durations); got != 2 {
		t.Fatalf("duration series: got=%d want=2", got)
	}
}

func TestRecorderHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.RecordSnapshot()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Result().Body)
	if !strings.Contains(string(body), "cartographer_snapshots_total 1") {
		t.Fatalf("missing snapshot counter in:\n%s", body)
	}
}

package basemap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cartographer/internal/adapter/files/local"
	"cartographer/internal/domain/artifact"
)

type fakeRenderer struct {
	calls    int
	failures int
	onRender func(cfg artifact.RenderConfig) error
}

func (r *fakeRenderer) Render(_ context.Context, cfg artifact.RenderConfig) error {
	r.calls++
	if r.failures > 0 {
		r.failures--
		return errors.New("malformed world data")
	}
	if r.onRender != nil {
		return r.onRender(cfg)
	}
	return os.WriteFile(cfg.OutputPath, []byte("base"), 0o644)
}

type recordingMetrics struct {
	ok, failed int
}

func (m *recordingMetrics) RecordRender(ok bool, _ time.Duration) {
	if ok {
		m.ok++
		return
	}
	m.failed++
}
func (m *recordingMetrics) RecordPublish(bool, time.Duration) {}
func (m *recordingMetrics) RecordSnapshot()                   {}
func (m *recordingMetrics) RecordMirror(bool)                 {}
func (m *recordingMetrics) RecordServe(bool)                  {}

func newTestRefresher(t *testing.T, renderer *fakeRenderer) (*Refresher, artifact.Paths) {
	t.Helper()
	dir := t.TempDir()
	paths, err := artifact.DerivePaths(filepath.Join(dir, "save.wld"), filepath.Join(dir, "map.png"))
	if err != nil {
		t.Fatalf("derive paths: %v", err)
	}
	return &Refresher{
		Paths:    paths,
		Config:   artifact.DefaultRenderConfig(paths),
		Store:    local.NewStore(),
		Renderer: renderer,
	}, paths
}

func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func TestStep_BootstrapRendersMissingBaseMap(t *testing.T) {
	renderer := &fakeRenderer{}
	r, paths := newTestRefresher(t, renderer)
	touch(t, paths.WorldSave, time.Unix(100, 0))

	reason, err := r.Step(context.Background())
	if err != nil {
		t.Fatalf("step error: %v", err)
	}
	if reason != artifact.ReasonMissing {
		t.Fatalf("expected missing reason, got %q", reason)
	}
	fi, err := os.Stat(paths.BaseMap)
	if err != nil {
		t.Fatalf("base map not created: %v", err)
	}
	if fi.ModTime().Before(time.Unix(100, 0)) {
		t.Fatalf("base map mtime %v older than world save", fi.ModTime())
	}
}

func TestStep_StaleWorldRendersOncePerChange(t *testing.T) {
	renderer := &fakeRenderer{}
	r, paths := newTestRefresher(t, renderer)
	touch(t, paths.WorldSave, time.Unix(100, 0))
	touch(t, paths.BaseMap, time.Unix(100, 0))

	if reason, err := r.Step(context.Background()); err != nil || reason != artifact.ReasonNone {
		t.Fatalf("expected no-op, got reason=%q err=%v", reason, err)
	}
	if renderer.calls != 0 {
		t.Fatalf("renderer called for fresh base map")
	}

	touch(t, paths.WorldSave, time.Unix(200, 0))
	for i := 0; i < 5; i++ {
		if _, err := r.Step(context.Background()); err != nil {
			t.Fatalf("step %d error: %v", i, err)
		}
	}
	if renderer.calls != 1 {
		t.Fatalf("expected exactly one render, got %d", renderer.calls)
	}
}

func TestStep_OutputWithOlderMtimeStillRendersOnce(t *testing.T) {
	renderer := &fakeRenderer{}
	r, paths := newTestRefresher(t, renderer)
	renderer.onRender = func(cfg artifact.RenderConfig) error {
		touch(t, cfg.OutputPath, time.Unix(150, 0))
		return nil
	}
	touch(t, paths.WorldSave, time.Unix(300, 0))
	touch(t, paths.BaseMap, time.Unix(100, 0))

	for i := 0; i < 3; i++ {
		if _, err := r.Step(context.Background()); err != nil {
			t.Fatalf("step %d error: %v", i, err)
		}
	}
	if renderer.calls != 1 {
		t.Fatalf("expected one render, got %d", renderer.calls)
	}
}

func TestStep_MissingWorldSaveIsAnError(t *testing.T) {
	renderer := &fakeRenderer{}
	r, _ := newTestRefresher(t, renderer)

	_, err := r.Step(context.Background())
	if !errors.Is(err, artifact.ErrWorldSaveMissing) {
		t.Fatalf("expected ErrWorldSaveMissing, got %v", err)
	}
	if renderer.calls != 0 {
		t.Fatalf("renderer must not run without a world save")
	}
}

func TestRun_RetriesUntilRendererSucceeds(t *testing.T) {
	const failures = 4
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderer := &fakeRenderer{failures: failures}
	r, paths := newTestRefresher(t, renderer)
	touch(t, paths.WorldSave, time.Unix(100, 0))
	renderer.onRender = func(cfg artifact.RenderConfig) error {
		cancel()
		return os.WriteFile(cfg.OutputPath, []byte("base"), 0o644)
	}
	metrics := &recordingMetrics{}
	r.Metrics = metrics
	var slept time.Duration
	r.Sleep = func(_ context.Context, d time.Duration) error {
		slept += d
		return nil
	}

	err := r.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if renderer.calls != failures+1 {
		t.Fatalf("expected %d renderer calls, got %d", failures+1, renderer.calls)
	}
	if want := failures * DefaultBackoff; slept != want {
		t.Fatalf("backoff total mismatch: got=%v want=%v", slept, want)
	}
	if metrics.failed != failures || metrics.ok != 1 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
	if _, err := os.Stat(paths.BaseMap); err != nil {
		t.Fatalf("base map missing after recovery: %v", err)
	}
}

type countingWaiter struct {
	waits  int
	cancel context.CancelFunc
}

func (w *countingWaiter) Wait(context.Context, time.Duration) {
	w.waits++
	if w.waits == 2 {
		w.cancel()
	}
}

func TestRun_WaitsForChangesWhenFresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderer := &fakeRenderer{}
	r, paths := newTestRefresher(t, renderer)
	touch(t, paths.WorldSave, time.Unix(100, 0))
	touch(t, paths.BaseMap, time.Unix(100, 0))
	waiter := &countingWaiter{cancel: cancel}
	r.Waiter = waiter

	if err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if waiter.waits != 2 {
		t.Fatalf("expected 2 waits, got %d", waiter.waits)
	}
	if renderer.calls != 0 {
		t.Fatalf("renderer called for fresh base map")
	}
}

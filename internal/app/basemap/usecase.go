package basemap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cartographer/internal/app/ports"
	"cartographer/internal/app/shared/pacing"
	"cartographer/internal/app/shared/runlog"
	"cartographer/internal/domain/artifact"

	"go.uber.org/zap"
)

const DefaultBackoff = 3 * time.Second

var ErrRender = errors.New("render base map")

// Refresher keeps the base map at least as new as the world save.
type Refresher struct {
	Paths    artifact.Paths
	Config   artifact.RenderConfig
	Store    ports.ArtifactStore
	Renderer ports.WorldRenderer
	Waiter   ports.ChangeWaiter
	History  ports.RunHistoryRepository
	Metrics  ports.PipelineMetrics
	Logger   *zap.Logger
	Backoff  time.Duration
	IdleWait time.Duration
	Now      func() time.Time
	Sleep    pacing.SleepFunc

	renderedFor time.Time
}

// Step runs one staleness check and renders when needed.
func (r *Refresher) Step(ctx context.Context) (artifact.RenderReason, error) {
	base, err := r.Store.Stat(r.Paths.BaseMap)
	if err != nil {
		return artifact.ReasonNone, fmt.Errorf("stat base map: %w", err)
	}
	world, err := r.worldState()
	if err != nil {
		return artifact.ReasonNone, err
	}
	reason := artifact.DecideBaseMap(world, base, r.renderedFor)
	switch reason {
	case artifact.ReasonNone:
		return reason, nil
	case artifact.ReasonMissing:
		r.logger().Warn("no base map, rendering", zap.String("path", r.Paths.BaseMap))
	case artifact.ReasonStale:
		r.logger().Warn("world save newer than base map, rendering",
			zap.Time("world_mtime", world.ModTime), zap.Time("base_mtime", base.ModTime))
	}

	if err := r.render(ctx, world.ModTime); err != nil {
		return reason, err
	}
	r.renderedFor = world.ModTime
	return reason, nil
}

// Run checks and renders until ctx is done. A failed iteration is logged and
// retried after Backoff; the loop never gives up on its own.
func (r *Refresher) Run(ctx context.Context) error {
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		reason, err := r.Step(ctx)
		if err != nil {
			failures++
			r.logger().Error("base map iteration failed", zap.Int("attempt", failures), zap.Error(err))
			r.logger().Warn("retrying after backoff", zap.Duration("backoff", r.backoff()))
			if err := r.sleep(ctx, r.backoff()); err != nil {
				return err
			}
			continue
		}
		if failures > 0 {
			r.logger().Info("base map recovered", zap.Int("failed_attempts", failures))
			failures = 0
		}
		if reason == artifact.ReasonNone {
			r.idle(ctx)
		}
	}
}

func (r *Refresher) render(ctx context.Context, sourceModTime time.Time) error {
	startedAt := r.now()
	err := r.Renderer.Render(ctx, r.Config)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrRender, err)
	}
	run := runlog.Recorder{History: r.History, Logger: r.logger(), Now: r.Now}.
		Record(ctx, ports.RunKindBaseMap, startedAt, sourceModTime, err)
	r.metrics().RecordRender(err == nil, run.Duration())
	return err
}

func (r *Refresher) worldState() (artifact.State, error) {
	world, err := r.Store.Stat(r.Paths.WorldSave)
	if err != nil {
		return artifact.State{}, fmt.Errorf("stat world save: %w", err)
	}
	if !world.Exists {
		return artifact.State{}, fmt.Errorf("%w: %s", artifact.ErrWorldSaveMissing, r.Paths.WorldSave)
	}
	return world, nil
}

func (r *Refresher) idle(ctx context.Context) {
	if r.Waiter != nil {
		r.Waiter.Wait(ctx, r.IdleWait)
		return
	}
	if r.IdleWait > 0 {
		_ = r.sleep(ctx, r.IdleWait)
	}
}

func (r *Refresher) backoff() time.Duration {
	if r.Backoff <= 0 {
		return DefaultBackoff
	}
	return r.Backoff
}

func (r *Refresher) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	return pacing.Sleep(ctx, d)
}

func (r *Refresher) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Refresher) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Refresher) metrics() ports.PipelineMetrics {
	if r.Metrics == nil {
		return ports.NopMetrics{}
	}
	return r.Metrics
}

package overlay

import (
	"context"
	"fmt"
	"time"

	"cartographer/internal/app/ports"
	"cartographer/internal/app/shared/pacing"
	"cartographer/internal/app/shared/runlog"
	"cartographer/internal/domain/artifact"

	"go.uber.org/zap"
)

const DefaultPollInterval = 3 * time.Second

type Phase string

const (
	PhaseSnapshot   Phase = "snapshot"
	PhaseRegenerate Phase = "regenerate"
)

// PublishError reports which step of an iteration failed.
type PublishError struct {
	Phase Phase
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Phase, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

type Outcome struct {
	WaitingForBaseMap bool
	Snapshotted       bool
	Regenerated       bool
}

// Publisher republishes the overlay every poll interval. Each iteration
// first copies the previous overlay to the served snapshot and only then
// regenerates the overlay, so the served file always holds a finished image.
type Publisher struct {
	Paths    artifact.Paths
	Store    ports.ArtifactStore
	Renderer ports.OverlayRenderer
	Mirror   ports.SnapshotMirror
	History  ports.RunHistoryRepository
	Metrics  ports.PipelineMetrics
	Logger   *zap.Logger
	Interval time.Duration
	Now      func() time.Time
	Sleep    pacing.SleepFunc
}

func (p *Publisher) Step(ctx context.Context) (Outcome, error) {
	base, err := p.Store.Stat(p.Paths.BaseMap)
	if err != nil {
		return Outcome{}, fmt.Errorf("stat base map: %w", err)
	}
	if !base.Exists {
		return Outcome{WaitingForBaseMap: true}, nil
	}

	var out Outcome
	out.Snapshotted, err = p.publishSnapshot(ctx)
	if err != nil {
		return out, &PublishError{Phase: PhaseSnapshot, Err: err}
	}
	if err := p.regenerate(ctx, base); err != nil {
		return out, &PublishError{Phase: PhaseRegenerate, Err: err}
	}
	out.Regenerated = true
	return out, nil
}

// Run publishes until ctx is done. A failed iteration is retried at once;
// successful and waiting iterations sleep for the poll interval.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := p.Step(ctx)
		if err != nil {
			p.logger().Error("overlay iteration failed", zap.Error(err))
			p.logger().Warn("retrying")
			continue
		}
		if out.WaitingForBaseMap {
			p.logger().Warn("no base map yet, waiting", zap.String("path", p.Paths.BaseMap))
		}
		if err := p.sleep(ctx, p.interval()); err != nil {
			return err
		}
	}
}

func (p *Publisher) regenerate(ctx context.Context, base artifact.State) error {
	startedAt := p.now()
	err := p.Renderer.ProduceMap(ctx)
	run := runlog.Recorder{History: p.History, Logger: p.logger(), Now: p.Now}.
		Record(ctx, ports.RunKindOverlay, startedAt, base.ModTime, err)
	p.metrics().RecordPublish(err == nil, run.Duration())
	return err
}

func (p *Publisher) interval() time.Duration {
	if p.Interval <= 0 {
		return DefaultPollInterval
	}
	return p.Interval
}

func (p *Publisher) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return pacing.Sleep(ctx, d)
}

func (p *Publisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Publisher) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p *Publisher) metrics() ports.PipelineMetrics {
	if p.Metrics == nil {
		return ports.NopMetrics{}
	}
	return p.Metrics
}

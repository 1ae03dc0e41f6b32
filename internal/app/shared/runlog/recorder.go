package runlog

import (
	"context"
	"time"

	"cartographer/internal/app/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder appends render runs to the history store. Store failures are
// logged and swallowed so that history never interrupts the pipeline.
type Recorder struct {
	History ports.RunHistoryRepository
	Logger  *zap.Logger
	Now     func() time.Time
}

func (r Recorder) Record(ctx context.Context, kind ports.RunKind, startedAt, sourceModTime time.Time, runErr error) ports.RenderRunRecord {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	run := ports.RenderRunRecord{
		ID:            uuid.NewString(),
		Kind:          kind,
		StartedAt:     startedAt,
		FinishedAt:    now(),
		Succeeded:     runErr == nil,
		SourceModTime: sourceModTime,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if r.History == nil {
		return run
	}
	if err := r.History.Record(ctx, run); err != nil && r.Logger != nil {
		r.Logger.Warn("record render run", zap.String("kind", string(kind)), zap.Error(err))
	}
	return run
}

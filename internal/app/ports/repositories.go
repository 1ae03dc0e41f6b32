package ports

import (
	"context"
	"time"
)

type RunKind string

const (
	RunKindBaseMap RunKind = "basemap"
	RunKindOverlay RunKind = "overlay"
)

type RenderRunRecord struct {
	ID            string
	Kind          RunKind
	StartedAt     time.Time
	FinishedAt    time.Time
	Succeeded     bool
	Error         string
	SourceModTime time.Time
}

func (r RenderRunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type RunHistoryRepository interface {
	Record(ctx context.Context, run RenderRunRecord) error
	// ListRecent returns runs newest first. An empty kind matches every kind.
	ListRecent(ctx context.Context, kind RunKind, limit int) ([]RenderRunRecord, error)
}

package ports

import (
	"context"
	"time"

	"cartographer/internal/domain/artifact"
)

// WorldRenderer turns a world save into a base map image. Render is
// synchronous and writes a complete image to cfg.OutputPath on success.
type WorldRenderer interface {
	Render(ctx context.Context, cfg artifact.RenderConfig) error
}

// OverlayRenderer reads the base map plus a live position sample and writes
// a new overlay image.
type OverlayRenderer interface {
	ProduceMap(ctx context.Context) error
}

type PlayerPosition struct {
	Name string
	X    int
	Y    int
}

type PositionSource interface {
	Positions(ctx context.Context) ([]PlayerPosition, error)
}

// ArtifactStore is the filesystem as seen by the pipeline.
type ArtifactStore interface {
	Stat(path string) (artifact.State, error)
	// CopyFile replaces dst with a complete copy of src, keeping its mode and
	// modification time. Readers of dst see either the old or the new bytes.
	CopyFile(src, dst string) error
	ReadFile(path string) ([]byte, error)
}

// ChangeWaiter blocks until the watched artifact may have changed, max has
// elapsed, or ctx is done.
type ChangeWaiter interface {
	Wait(ctx context.Context, max time.Duration)
}

type SnapshotMirror interface {
	Mirror(ctx context.Context, body []byte, contentType string) error
}

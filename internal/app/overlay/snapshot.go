package overlay

import (
	"context"
	"fmt"

	"cartographer/internal/domain/artifact"

	"go.uber.org/zap"
)

// publishSnapshot copies the current overlay, which is the last finished
// generation, over the served snapshot. It must return before the next
// overlay write starts; Step guarantees that by calling it first.
func (p *Publisher) publishSnapshot(ctx context.Context) (bool, error) {
	overlay, err := p.Store.Stat(p.Paths.Overlay)
	if err != nil {
		return false, fmt.Errorf("stat overlay: %w", err)
	}
	if !overlay.Exists {
		return false, nil
	}
	if err := p.Store.CopyFile(p.Paths.Overlay, p.Paths.Served); err != nil {
		return false, err
	}
	p.metrics().RecordSnapshot()
	p.mirror(ctx)
	return true, nil
}

// mirror uploads the freshly published snapshot. Failures only cost the
// remote copy one generation.
func (p *Publisher) mirror(ctx context.Context) {
	if p.Mirror == nil {
		return
	}
	body, err := p.Store.ReadFile(p.Paths.Served)
	if err == nil {
		err = p.Mirror.Mirror(ctx, body, artifact.ContentTypeFor(p.Paths.Served))
	}
	p.metrics().RecordMirror(err == nil)
	if err != nil {
		p.logger().Warn("mirror snapshot", zap.Error(err))
	}
}

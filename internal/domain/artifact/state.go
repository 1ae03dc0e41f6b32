package artifact

import "time"

// State is everything the pipeline knows about a file artifact.
type State struct {
	Exists  bool
	Size    int64
	ModTime time.Time
}

type RenderReason string

const (
	ReasonNone    RenderReason = ""
	ReasonMissing RenderReason = "missing"
	ReasonStale   RenderReason = "stale"
)

// DecideBaseMap compares a world save with its base map. A base map that
// does not exist always needs rendering; an existing one needs rendering only
// when the world save was modified strictly after it. renderedFor is the
// world save mtime the last successful render was started for; a world save
// still carrying that mtime is not reported stale again, so a single change
// triggers a single render even when the renderer leaves an older mtime on
// its output.
func DecideBaseMap(world, base State, renderedFor time.Time) RenderReason {
	if !base.Exists {
		return ReasonMissing
	}
	if !world.ModTime.After(base.ModTime) {
		return ReasonNone
	}
	if !renderedFor.IsZero() && world.ModTime.Equal(renderedFor) {
		return ReasonNone
	}
	return ReasonStale
}

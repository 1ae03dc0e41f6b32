package status

import (
	"context"
	"errors"
	"time"

	"cartographer/internal/app/ports"
	"cartographer/internal/domain/artifact"
)

const defaultRecentLimit = 20

var ErrInvalidRequest = errors.New("invalid status request")

type metricsSnapshotProvider interface {
	SnapshotAny() any
}

type UseCase struct {
	Paths   artifact.Paths
	Store   ports.ArtifactStore
	History ports.RunHistoryRepository
	Metrics metricsSnapshotProvider
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.RecentLimit < 0 {
		return Response{}, ErrInvalidRequest
	}
	limit := req.RecentLimit
	if limit == 0 {
		limit = defaultRecentLimit
	}

	var resp Response
	var world, base artifact.State
	var err error
	if resp.WorldSave, world, err = u.artifact(u.Paths.WorldSave); err != nil {
		return Response{}, err
	}
	if resp.BaseMap, base, err = u.artifact(u.Paths.BaseMap); err != nil {
		return Response{}, err
	}
	if resp.Overlay, _, err = u.artifact(u.Paths.Overlay); err != nil {
		return Response{}, err
	}
	if resp.Served, _, err = u.artifact(u.Paths.Served); err != nil {
		return Response{}, err
	}
	resp.BaseMapFresh = base.Exists && artifact.DecideBaseMap(world, base, time.Time{}) == artifact.ReasonNone

	resp.RecentRuns = []RunView{}
	if u.History != nil {
		runs, err := u.History.ListRecent(ctx, "", limit)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return Response{}, err
		}
		for _, run := range runs {
			resp.RecentRuns = append(resp.RecentRuns, RunView{
				ID:          run.ID,
				Kind:        string(run.Kind),
				StartedAt:   run.StartedAt,
				DurationMS:  run.Duration().Milliseconds(),
				Succeeded:   run.Succeeded,
				Error:       run.Error,
				SourceMTime: run.SourceModTime,
			})
		}
	}
	if u.Metrics != nil {
		resp.Metrics = u.Metrics.SnapshotAny()
	}
	return resp, nil
}

func (u UseCase) artifact(path string) (ArtifactStatus, artifact.State, error) {
	st, err := u.Store.Stat(path)
	if err != nil {
		return ArtifactStatus{}, artifact.State{}, err
	}
	return ArtifactStatus{Path: path, Exists: st.Exists, Size: st.Size, ModTime: st.ModTime}, st, nil
}

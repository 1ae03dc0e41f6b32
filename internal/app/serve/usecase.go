package serve

import (
	"context"

	"cartographer/internal/app/ports"
	"cartographer/internal/domain/artifact"
)

type Response struct {
	ContentType string
	Body        []byte
}

// UseCase reads the served snapshot for one HTTP response. The body and its
// length come from a single read, so Content-Length always matches.
type UseCase struct {
	Store   ports.ArtifactStore
	Path    string
	Metrics ports.PipelineMetrics
}

func (u UseCase) Execute(_ context.Context) (Response, error) {
	body, err := u.Store.ReadFile(u.Path)
	u.record(err == nil)
	if err != nil {
		return Response{}, err
	}
	return Response{
		ContentType: artifact.ContentTypeFor(u.Path),
		Body:        body,
	}, nil
}

func (u UseCase) record(hit bool) {
	if u.Metrics != nil {
		u.Metrics.RecordServe(hit)
	}
}

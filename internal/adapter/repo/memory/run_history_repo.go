package memory

import (
	"context"
	"strings"

	"cartographer/internal/app/ports"
)

type RunHistoryRepo struct {
	store *Store
}

func NewRunHistoryRepo(store *Store) RunHistoryRepo {
	return RunHistoryRepo{store: store}
}

func (r RunHistoryRepo) Record(_ context.Context, run ports.RenderRunRecord) error {
	if strings.TrimSpace(run.ID) == "" {
		return ports.ErrInvalidRecord
	}
	r.store.append(run)
	return nil
}

func (r RunHistoryRepo) ListRecent(_ context.Context, kind ports.RunKind, limit int) ([]ports.RenderRunRecord, error) {
	out := []ports.RenderRunRecord{}
	if limit <= 0 {
		return out, nil
	}
	r.store.newestFirst(func(run ports.RenderRunRecord) bool {
		if kind == "" || run.Kind == kind {
			out = append(out, run)
		}
		return len(out) < limit
	})
	return out, nil
}

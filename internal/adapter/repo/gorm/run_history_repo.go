package gormrepo

import (
	"context"
	"strings"

	"cartographer/internal/adapter/repo/gorm/model"
	"cartographer/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RunHistoryRepo struct {
	db *gorm.DB
}

func NewRunHistoryRepo(db *gorm.DB) RunHistoryRepo {
	return RunHistoryRepo{db: db}
}

func (r RunHistoryRepo) Record(ctx context.Context, run ports.RenderRunRecord) error {
	if strings.TrimSpace(run.ID) == "" {
		return ports.ErrInvalidRecord
	}
	row := model.RenderRun{
		ID:            run.ID,
		Kind:          string(run.Kind),
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
		Succeeded:     run.Succeeded,
		Error:         run.Error,
		SourceModTime: run.SourceModTime,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (r RunHistoryRepo) ListRecent(ctx context.Context, kind ports.RunKind, limit int) ([]ports.RenderRunRecord, error) {
	rows := []model.RenderRun{}
	query := r.db.WithContext(ctx).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "started_at"}, Desc: true}},
		})
	if kind != "" {
		query = query.Where(&model.RenderRun{Kind: string(kind)})
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]ports.RenderRunRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.RenderRunRecord{
			ID:            row.ID,
			Kind:          ports.RunKind(row.Kind),
			StartedAt:     row.StartedAt,
			FinishedAt:    row.FinishedAt,
			Succeeded:     row.Succeeded,
			Error:         row.Error,
			SourceModTime: row.SourceModTime,
		})
	}
	return out, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cartographer/internal/app/ports"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// RunHistoryRepo keeps render runs in a local SQLite file so history
// survives restarts without a database server.
type RunHistoryRepo struct {
	db *sql.DB
}

func Open(path string) (*RunHistoryRepo, error) {
	if path == "" {
		path = "cartographer.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS render_runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		source_mod_time INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create render_runs table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_render_runs_started_at ON render_runs (started_at DESC)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create render_runs index: %w", err)
	}
	return &RunHistoryRepo{db: db}, nil
}

func (r *RunHistoryRepo) Close() error {
	return r.db.Close()
}

func (r *RunHistoryRepo) Record(ctx context.Context, run ports.RenderRunRecord) error {
	if strings.TrimSpace(run.ID) == "" {
		return ports.ErrInvalidRecord
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO render_runs (id, kind, started_at, finished_at, succeeded, error, source_mod_time) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), unixNano(run.StartedAt), unixNano(run.FinishedAt), run.Succeeded, run.Error, unixNano(run.SourceModTime),
	)
	if err != nil {
		return fmt.Errorf("insert render run: %w", err)
	}
	return nil
}

func (r *RunHistoryRepo) ListRecent(ctx context.Context, kind ports.RunKind, limit int) (_ []ports.RenderRunRecord, retErr error) {
	out := []ports.RenderRunRecord{}
	if limit <= 0 {
		return out, nil
	}
	query := `SELECT id, kind, started_at, finished_at, succeeded, error, source_mod_time FROM render_runs`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select render runs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()
	for rows.Next() {
		var (
			run                       ports.RenderRunRecord
			runKind                   string
			started, finished, srcMod int64
		)
		if err := rows.Scan(&run.ID, &runKind, &started, &finished, &run.Succeeded, &run.Error, &srcMod); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		run.Kind = ports.RunKind(runKind)
		run.StartedAt = fromUnixNano(started)
		run.FinishedAt = fromUnixNano(finished)
		run.SourceModTime = fromUnixNano(srcMod)
		out = append(out, run)
	}
	return out, rows.Err()
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

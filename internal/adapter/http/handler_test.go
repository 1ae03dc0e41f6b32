package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cartographer/internal/adapter/files/local"
	"cartographer/internal/app/ports"
	"cartographer/internal/app/serve"
	"cartographer/internal/app/status"
	"cartographer/internal/domain/artifact"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

func TestSnapshot_ServesImageBytes(t *testing.T) {
	dir := t.TempDir()
	served := filepath.Join(dir, "map_served.png")
	payload := []byte("\x89PNG\r\n\x1a\nfake")
	if err := os.WriteFile(served, payload, 0o644); err != nil {
		t.Fatalf("write served: %v", err)
	}
	h := Handler{ServeUC: serve.UseCase{Store: local.NewStore(), Path: served}}

	ctx := &app.RequestContext{}
	h.snapshot(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got, want := string(ctx.Response.Header.ContentType()), "image/png"; got != want {
		t.Fatalf("content type mismatch: got=%q want=%q", got, want)
	}
	if got, want := ctx.Response.Header.ContentLength(), len(payload); got != want {
		t.Fatalf("content length mismatch: got=%d want=%d", got, want)
	}
	if got := string(ctx.Response.Body()); got != string(payload) {
		t.Fatalf("body mismatch: %q", got)
	}
}

func TestSnapshot_MissingFileIsNotFound(t *testing.T) {
	h := Handler{ServeUC: serve.UseCase{Store: local.NewStore(), Path: filepath.Join(t.TempDir(), "map_served.png")}}

	ctx := &app.RequestContext{}
	h.snapshot(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if got, want := body["error"]["code"], "not_found"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestStatus_RejectsBadLimit(t *testing.T) {
	h := Handler{}
	ctx := &app.RequestContext{}
	ctx.Request.SetRequestURI("/ops/status?limit=abc")

	h.status(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestStatus_ReportsArtifacts(t *testing.T) {
	dir := t.TempDir()
	paths, err := artifact.DerivePaths(filepath.Join(dir, "save.wld"), "")
	if err != nil {
		t.Fatalf("derive paths: %v", err)
	}
	if err := os.WriteFile(paths.WorldSave, []byte("w"), 0o644); err != nil {
		t.Fatalf("write world: %v", err)
	}
	h := Handler{StatusUC: status.UseCase{Paths: paths, Store: local.NewStore()}}
	ctx := &app.RequestContext{}
	ctx.Request.SetRequestURI("/ops/status?limit=5")

	h.status(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var resp status.Response
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if !resp.WorldSave.Exists || resp.BaseMap.Exists {
		t.Fatalf("unexpected artifact report: %+v", resp)
	}
}

func TestWriteError_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{err: ports.ErrNotFound, want: consts.StatusNotFound},
		{err: status.ErrInvalidRequest, want: consts.StatusBadRequest},
		{err: errors.New("disk on fire"), want: consts.StatusInternalServerError},
	}
	for _, tc := range cases {
		ctx := &app.RequestContext{}
		writeError(ctx, tc.err)
		if got := ctx.Response.StatusCode(); got != tc.want {
			t.Fatalf("writeError(%v) status=%d want=%d", tc.err, got, tc.want)
		}
	}
}


package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"cartographer/internal/app/ports"
	"cartographer/internal/app/serve"
	"cartographer/internal/app/status"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	ServeUC  serve.UseCase
	StatusUC status.UseCase
	// Ops enables /ops/status and, when Metrics is set, /metrics.
	Ops     bool
	Metrics http.Handler
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())
	s.GET("/", h.snapshot)
	if !h.Ops {
		return
	}
	s.GET("/ops/status", h.status)
	if h.Metrics != nil {
		s.GET("/metrics", adaptor.HertzHandler(h.Metrics))
	}
}

func (h Handler) snapshot(c context.Context, ctx *app.RequestContext) {
	resp, err := h.ServeUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Data(consts.StatusOK, resp.ContentType, resp.Body)
	ctx.Response.Header.SetContentLength(len(resp.Body))
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	limit := 0
	if raw := string(ctx.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "invalid limit")
			return
		}
		limit = n
	}
	resp, err := h.StatusUC.Execute(c, status.Request{RecentLimit: limit})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, status.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", "map snapshot not available yet")
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

package httpadapter

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// Map viewers embed the snapshot from other origins and read its length.
var corsHeaders = [][2]string{
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Methods", "GET,OPTIONS"},
	{"Access-Control-Allow-Headers", "Content-Type"},
	{"Access-Control-Expose-Headers", "Content-Length,Content-Type"},
	{"Access-Control-Max-Age", "600"},
}

func corsMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		for _, kv := range corsHeaders {
			ctx.Response.Header.Set(kv[0], kv[1])
		}
		if string(ctx.Method()) == consts.MethodOptions {
			ctx.AbortWithStatus(consts.StatusNoContent)
			return
		}
		ctx.Next(c)
	}
}

package httpadapter

import (
	"testing"

	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

func TestCORS_PreflightShortCircuits(t *testing.T) {
	s := newTestServer(t, Handler{})

	w := ut.PerformRequest(s.Engine, consts.MethodOptions, "/", nil)
	resp := w.Result()
	if resp.StatusCode() != consts.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode())
	}
	for _, kv := range corsHeaders {
		if got := string(resp.Header.Peek(kv[0])); got != kv[1] {
			t.Fatalf("%s mismatch: got=%q want=%q", kv[0], got, kv[1])
		}
	}
}

func TestCORS_ExposesContentLength(t *testing.T) {
	s := newTestServer(t, Handler{})

	w := ut.PerformRequest(s.Engine, consts.MethodGet, "/ops/status", nil)
	if got := string(w.Result().Header.Peek("Access-Control-Expose-Headers")); got != "Content-Length,Content-Type" {
		t.Fatalf("expose-headers mismatch: %q", got)
	}
}

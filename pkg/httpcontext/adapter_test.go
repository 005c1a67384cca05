package httpcontext

import (
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

func TestAttachKeepsIncomingRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set(HeaderRequestID, "abc-123")

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	if got := appLogger.RequestID(ctx); got != "abc-123" {
		t.Errorf("request id: got %q, want abc-123", got)
	}
	if got := string(rc.Response.Header.Peek(HeaderRequestID)); got != "abc-123" {
		t.Errorf("response header: got %q, want abc-123", got)
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected a deadline on the attached context")
	}
}

func TestAttachGeneratesRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx

	ctx, cancel := NewAdapter(0).Attach(&rc)
	defer cancel()

	if appLogger.RequestID(ctx) == "" {
		t.Error("expected a generated request id")
	}
}

func TestAttachStoresMeta(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set(HeaderRequestID, "  padded  ")
	rc.Request.Header.SetUserAgent("taskboard-test")

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	meta, ok := MetaFrom(ctx)
	if !ok {
		t.Fatal("expected metadata on the context")
	}
	if meta.RequestID != "padded" || meta.UserAgent != "taskboard-test" {
		t.Errorf("unexpected meta: %+v", meta)
	}
}

func TestAttachNilRequest(t *testing.T) {
	ctx, cancel := NewAdapter(time.Second).Attach(nil)
	defer cancel()
	if meta, ok := MetaFrom(ctx); !ok || meta.RequestID == "" {
		t.Errorf("nil request should still get an id, got %+v", meta)
	}
}

package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

type metaKey struct{}

// Meta is the request metadata copied out of fasthttp before the handler
// hands work to code that only sees a context.Context.
type Meta struct {
	RequestID  string
	RemoteAddr string
	UserAgent  string
}

// MetaFrom returns the metadata stored by Attach.
func MetaFrom(ctx context.Context) (Meta, bool) {
	if ctx == nil {
		return Meta{}, false
	}
	m, ok := ctx.Value(metaKey{}).(Meta)
	return m, ok
}

// Adapter derives bounded stdlib contexts from fasthttp requests.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach returns a context bounded by the adapter timeout. The request ID is
// reused from the X-Request-ID header when present and echoed on the response.
// fasthttp recycles RequestCtx, so nothing in the returned context points back to it.
func (a *Adapter) Attach(rc *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)

	meta := readMeta(rc)
	ctx = appLogger.ContextWithRequestID(ctx, meta.RequestID)
	ctx = context.WithValue(ctx, metaKey{}, meta)
	if rc != nil {
		rc.Response.Header.Set(HeaderRequestID, meta.RequestID)
	}
	return ctx, cancel
}

func readMeta(rc *fasthttp.RequestCtx) Meta {
	if rc == nil {
		return Meta{RequestID: uuid.NewString()}
	}
	meta := Meta{
		RequestID: strings.TrimSpace(string(rc.Request.Header.Peek(HeaderRequestID))),
		UserAgent: string(rc.Request.Header.UserAgent()),
	}
	if meta.RequestID == "" {
		meta.RequestID = uuid.NewString()
	}
	if addr := rc.RemoteAddr(); addr != nil {
		meta.RemoteAddr = addr.String()
	}
	return meta
}

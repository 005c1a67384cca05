package middleware

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/pkg/httpcontext"
)

// RequestID makes sure every request carries an X-Request-ID, echoes it on the
// response and writes one debug access line per request.
func RequestID(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			reqID := strings.TrimSpace(string(ctx.Request.Header.Peek(httpcontext.HeaderRequestID)))
			if reqID == "" {
				reqID = uuid.NewString()
				ctx.Request.Header.Set(httpcontext.HeaderRequestID, reqID)
			}
			ctx.Response.Header.Set(httpcontext.HeaderRequestID, reqID)

			start := time.Now()
			next(ctx)

			logger.Debug("request served",
				zap.String("request_id", reqID),
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("took", time.Since(start)))
		}
	}
}

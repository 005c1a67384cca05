package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/pkg/httpcontext"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/usecase/persistence"
	"github.com/fastygo/taskboard/usecase/state"
)

type SnapshotHandler struct {
	baseHandler
	adapter *persistence.Adapter
	store   *state.Store
}

func NewSnapshotHandler(adapter *persistence.Adapter, store *state.Store, ctxAdapter *httpcontext.Adapter, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		baseHandler: newBaseHandler(ctxAdapter, logger),
		adapter:     adapter,
		store:       store,
	}
}

// @Summary Save a snapshot now
// @Tags snapshot
// @Router /api/v1/snapshot [post]
func (h *SnapshotHandler) Save(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.adapter.Save(stdCtx, h.store); err != nil {
		appLogger.WithRequestID(stdCtx, h.logger).Warn("manual snapshot failed", zap.Error(err))
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.store.Stats())
}

package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/usecase/state"
)

type TodoHandler struct {
	baseHandler
	store *state.Store
}

func NewTodoHandler(store *state.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
	}
}

// @Summary List todos
// @Tags todos
// @Router /api/v1/todos [get]
func (h *TodoHandler) ListTodos(ctx *fasthttp.RequestCtx) {
	todos := h.store.ListTodos()
	h.respondList(ctx, transport.NewTodoViews(todos), len(todos))
}

// @Summary Get todo
// @Tags todos
// @Router /api/v1/todos/{id} [get]
func (h *TodoHandler) GetTodo(ctx *fasthttp.RequestCtx) {
	todo, err := h.store.GetTodo(h.param(ctx, "id"))
	h.respondTodo(ctx, todo, err)
}

// @Summary Edit todo
// @Tags todos
// @Router /api/v1/todos/{id} [patch]
func (h *TodoHandler) UpdateTodo(ctx *fasthttp.RequestCtx) {
	var req transport.TodoPatchRequest
	if !h.decode(ctx, &req) {
		return
	}
	todo, err := h.store.EditTodo(h.param(ctx, "id"), req.Patch())
	h.respondTodo(ctx, todo, err)
}

// @Summary Delete todo
// @Tags todos
// @Router /api/v1/todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(ctx *fasthttp.RequestCtx) {
	if err := h.store.RemoveTodo(h.param(ctx, "id")); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Advance todo status through pending, in-progress, completed
// @Tags todos
// @Router /api/v1/todos/{id}/toggle [post]
func (h *TodoHandler) ToggleTodo(ctx *fasthttp.RequestCtx) {
	todo, err := h.store.ToggleTodoStatus(h.param(ctx, "id"))
	h.respondTodo(ctx, todo, err)
}

// @Summary Mark todo completed
// @Tags todos
// @Router /api/v1/todos/{id}/complete [post]
func (h *TodoHandler) CompleteTodo(ctx *fasthttp.RequestCtx) {
	todo, err := h.store.MarkTodoComplete(h.param(ctx, "id"))
	h.respondTodo(ctx, todo, err)
}

func (h *TodoHandler) respondTodo(ctx *fasthttp.RequestCtx, todo domain.Todo, err error) {
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTodoView(todo))
}

package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/usecase/state"
)

type ProjectHandler struct {
	baseHandler
	store *state.Store
}

func NewProjectHandler(store *state.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
	}
}

// @Summary List projects
// @Tags projects
// @Router /api/v1/projects [get]
func (h *ProjectHandler) ListProjects(ctx *fasthttp.RequestCtx) {
	projects := h.store.ListProjects()
	h.respondList(ctx, transport.NewProjectViews(projects), len(projects))
}

// @Summary Create project
// @Tags projects
// @Router /api/v1/projects [post]
func (h *ProjectHandler) CreateProject(ctx *fasthttp.RequestCtx) {
	var req transport.ProjectRequest
	if !h.decode(ctx, &req) {
		return
	}
	project, err := h.store.CreateProject(req.Input())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.NewProjectView(project))
}

// @Summary Get project
// @Tags projects
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) GetProject(ctx *fasthttp.RequestCtx) {
	project, err := h.store.GetProject(h.param(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewProjectView(project))
}

// @Summary Edit project
// @Tags projects
// @Router /api/v1/projects/{id} [patch]
func (h *ProjectHandler) UpdateProject(ctx *fasthttp.RequestCtx) {
	var req transport.ProjectPatchRequest
	if !h.decode(ctx, &req) {
		return
	}
	project, err := h.store.EditProject(h.param(ctx, "id"), req.Patch())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewProjectView(project))
}

// @Summary Delete project and its todos
// @Tags projects
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(ctx *fasthttp.RequestCtx) {
	if err := h.store.RemoveProject(h.param(ctx, "id")); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary List project todos
// @Tags projects
// @Router /api/v1/projects/{id}/todos [get]
func (h *ProjectHandler) ListTodos(ctx *fasthttp.RequestCtx) {
	todos, err := h.store.GetProjectTodos(h.param(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, transport.NewTodoViews(todos), len(todos))
}

// @Summary Create todo in project
// @Tags projects
// @Router /api/v1/projects/{id}/todos [post]
func (h *ProjectHandler) CreateTodo(ctx *fasthttp.RequestCtx) {
	var req transport.TodoRequest
	if !h.decode(ctx, &req) {
		return
	}
	todo, err := h.store.CreateTodoForProject(h.param(ctx, "id"), req.Input())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.NewTodoView(todo))
}

// @Summary Remove todo from project
// @Tags projects
// @Router /api/v1/projects/{id}/todos/{todoId} [delete]
func (h *ProjectHandler) RemoveTodo(ctx *fasthttp.RequestCtx) {
	if err := h.store.RemoveTodoFromProject(h.param(ctx, "id"), h.param(ctx, "todoId")); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

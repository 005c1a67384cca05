package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/repository/memory"
	"github.com/fastygo/taskboard/usecase/persistence"
	"github.com/fastygo/taskboard/usecase/state"
)

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

func newRequest(body string, params map[string]string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	for k, v := range params {
		ctx.SetUserValue(k, v)
	}
	return ctx
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx, wantStatus int, data interface{}) envelope {
	t.Helper()
	if got := ctx.Response.StatusCode(); got != wantStatus {
		t.Fatalf("status: got %d, want %d (body %s)", got, wantStatus, ctx.Response.Body())
	}
	var env envelope
	if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
		t.Fatalf("decode body %q: %v", ctx.Response.Body(), err)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

type projectView struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Status  string   `json:"status"`
	Color   string   `json:"color"`
	TodoIDs []string `json:"todo_ids"`
}

type todoView struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	DueDate     string  `json:"due_date"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	CompletedAt *string `json:"completed_at"`
	ProjectID   string  `json:"project_id"`
}

func handlers() (*ProjectHandler, *TodoHandler, *state.Store) {
	store := state.New(domain.DefaultRules(), nil)
	adapter := httpcontext.NewAdapter(0)
	return NewProjectHandler(store, adapter, nil), NewTodoHandler(store, adapter, nil), store
}

func TestProjectLifecycle(t *testing.T) {
	projects, todos, store := handlers()

	ctx := newRequest(`{"name":"Web Dev","description":"Frontend work","color":"blue"}`, nil)
	projects.CreateProject(ctx)
	var created projectView
	decodeEnvelope(t, ctx, http.StatusCreated, &created)
	if created.Name != "Web Dev" || created.Color != "#3498db" || created.Status != "active" {
		t.Fatalf("unexpected project: %+v", created)
	}

	ctx = newRequest(`{"title":"Learn JS","due_date":"2030-01-01","priority":"high"}`, map[string]string{"id": created.ID})
	projects.CreateTodo(ctx)
	var todo todoView
	decodeEnvelope(t, ctx, http.StatusCreated, &todo)
	if todo.ProjectID != created.ID || todo.Status != "pending" || todo.DueDate != "2030-01-01" {
		t.Fatalf("unexpected todo: %+v", todo)
	}

	ctx = newRequest("", map[string]string{"id": todo.ID})
	todos.ToggleTodo(ctx)
	decodeEnvelope(t, ctx, http.StatusOK, &todo)
	if todo.Status != "in-progress" {
		t.Errorf("toggle: got %s", todo.Status)
	}

	ctx = newRequest("", map[string]string{"id": todo.ID})
	todos.CompleteTodo(ctx)
	decodeEnvelope(t, ctx, http.StatusOK, &todo)
	if todo.Status != "completed" || todo.CompletedAt == nil {
		t.Errorf("complete: got %+v", todo)
	}

	ctx = newRequest("", map[string]string{"id": created.ID})
	projects.ListTodos(ctx)
	var listed []todoView
	decodeEnvelope(t, ctx, http.StatusOK, &listed)
	if len(listed) != 1 {
		t.Fatalf("project todos: got %d", len(listed))
	}

	ctx = newRequest("", map[string]string{"id": created.ID})
	projects.DeleteProject(ctx)
	if ctx.Response.StatusCode() != http.StatusNoContent || len(ctx.Response.Body()) != 0 {
		t.Fatalf("delete: status %d body %q", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	if len(store.ListTodos()) != 0 {
		t.Error("delete should cascade to todos")
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	projects, _, _ := handlers()

	ctx := newRequest(`{"name":"x"}`, nil)
	projects.CreateProject(ctx)
	env := decodeEnvelope(t, ctx, http.StatusBadRequest, nil)
	if env.Code != "INVALID" || env.Error.Field != "name" {
		t.Errorf("unexpected error envelope: %+v", env)
	}
}

func TestMalformedBody(t *testing.T) {
	projects, _, _ := handlers()

	ctx := newRequest(`{"name":`, nil)
	projects.CreateProject(ctx)
	env := decodeEnvelope(t, ctx, http.StatusBadRequest, nil)
	if env.Status != "error" || env.Code != "INVALID" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestUnknownIDsAnswerNotFound(t *testing.T) {
	projects, todos, _ := handlers()
	missing := map[string]string{"id": "todo_missing", "todoId": "todo_missing"}

	calls := map[string]fasthttp.RequestHandler{
		"GetProject":    projects.GetProject,
		"DeleteProject": projects.DeleteProject,
		"ListTodos":     projects.ListTodos,
		"RemoveTodo":    projects.RemoveTodo,
		"GetTodo":       todos.GetTodo,
		"DeleteTodo":    todos.DeleteTodo,
		"ToggleTodo":    todos.ToggleTodo,
		"CompleteTodo":  todos.CompleteTodo,
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			ctx := newRequest("", missing)
			call(ctx)
			env := decodeEnvelope(t, ctx, http.StatusNotFound, nil)
			if env.Code != "NOT_FOUND" {
				t.Errorf("code: got %q", env.Code)
			}
		})
	}
}

func TestUpdateTodoMovesProject(t *testing.T) {
	_, todos, store := handlers()
	a, _ := store.CreateProject(domain.ProjectInput{Name: "Alpha"})
	b, _ := store.CreateProject(domain.ProjectInput{Name: "Beta"})
	todo, _ := store.CreateTodoForProject(a.ID(), domain.TodoInput{Title: "Travel", DueDate: "2030-01-01"})

	ctx := newRequest(`{"project_id":"`+b.ID()+`","priority":"medium"}`, map[string]string{"id": todo.ID()})
	todos.UpdateTodo(ctx)
	var moved todoView
	decodeEnvelope(t, ctx, http.StatusOK, &moved)
	if moved.ProjectID != b.ID() || moved.Priority != "medium" {
		t.Errorf("unexpected todo: %+v", moved)
	}
	if ids, _ := store.ProjectTodoIDs(a.ID()); len(ids) != 0 {
		t.Errorf("old project still lists the todo: %v", ids)
	}
}

func TestUpdateProjectPartial(t *testing.T) {
	projects, _, store := handlers()
	p, _ := store.CreateProject(domain.ProjectInput{Name: "Alpha", Color: "red"})

	ctx := newRequest(`{"status":"archived"}`, map[string]string{"id": p.ID()})
	projects.UpdateProject(ctx)
	var updated projectView
	decodeEnvelope(t, ctx, http.StatusOK, &updated)
	if updated.Status != "archived" || updated.Name != "Alpha" || updated.Color != "#e74c3c" {
		t.Errorf("unexpected project: %+v", updated)
	}
}

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

func TestHealth(t *testing.T) {
	store := state.New(domain.DefaultRules(), nil)

	healthy := NewHealthHandler(staticStatus{Backend: "memory", Storage: true}, store, nil, nil)
	ctx := newRequest("", nil)
	healthy.Check(ctx)
	decodeEnvelope(t, ctx, http.StatusOK, nil)

	degraded := NewHealthHandler(staticStatus{Backend: "redis", Error: "dial tcp: refused"}, store, nil, nil)
	ctx = newRequest("", nil)
	degraded.Check(ctx)
	env := decodeEnvelope(t, ctx, http.StatusServiceUnavailable, nil)
	if env.Code != "DEGRADED" {
		t.Errorf("code: got %q", env.Code)
	}
}

func TestSnapshotSave(t *testing.T) {
	store := state.New(domain.DefaultRules(), nil)
	_, _ = store.CreateProject(domain.ProjectInput{Name: "Saved"})
	bytes := memory.NewByteStore(0)
	h := NewSnapshotHandler(persistence.New(bytes, persistence.Options{}, nil), store, httpcontext.NewAdapter(0), nil)

	ctx := newRequest("", nil)
	h.Save(ctx)
	decodeEnvelope(t, ctx, http.StatusOK, nil)
	if len(ctx.Response.Header.Peek(httpcontext.HeaderRequestID)) == 0 {
		t.Error("response should carry a request id")
	}

	full := NewSnapshotHandler(persistence.New(memory.NewByteStore(4), persistence.Options{}, nil), store, nil, nil)
	ctx = newRequest("", nil)
	full.Save(ctx)
	env := decodeEnvelope(t, ctx, http.StatusServiceUnavailable, nil)
	if env.Code != "PERSISTENCE" {
		t.Errorf("code: got %q", env.Code)
	}
}

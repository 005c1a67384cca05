package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Handlers struct {
	Project  *apiHandler.ProjectHandler
	Todo     *apiHandler.TodoHandler
	Snapshot *apiHandler.SnapshotHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/api/v1/projects", handlers.Project.ListProjects)
	r.POST("/api/v1/projects", handlers.Project.CreateProject)
	r.GET("/api/v1/projects/{id}", handlers.Project.GetProject)
	r.PATCH("/api/v1/projects/{id}", handlers.Project.UpdateProject)
	r.DELETE("/api/v1/projects/{id}", handlers.Project.DeleteProject)
	r.GET("/api/v1/projects/{id}/todos", handlers.Project.ListTodos)
	r.POST("/api/v1/projects/{id}/todos", handlers.Project.CreateTodo)
	r.DELETE("/api/v1/projects/{id}/todos/{todoId}", handlers.Project.RemoveTodo)

	r.GET("/api/v1/todos", handlers.Todo.ListTodos)
	r.GET("/api/v1/todos/{id}", handlers.Todo.GetTodo)
	r.PATCH("/api/v1/todos/{id}", handlers.Todo.UpdateTodo)
	r.DELETE("/api/v1/todos/{id}", handlers.Todo.DeleteTodo)
	r.POST("/api/v1/todos/{id}/toggle", handlers.Todo.ToggleTodo)
	r.POST("/api/v1/todos/{id}/complete", handlers.Todo.CompleteTodo)

	r.POST("/api/v1/snapshot", handlers.Snapshot.Save)

	return r
}

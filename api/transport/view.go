package transport

import (
	"time"

	"github.com/fastygo/taskboard/domain"
)

// ProjectView is the rendered form of a project.
type ProjectView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	TodoIDs     []string  `json:"todo_ids"`
}

// TodoView is the rendered form of a todo.
type TodoView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Overdue     bool       `json:"overdue"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ProjectID   string     `json:"project_id,omitempty"`
}

func NewProjectView(p domain.Project) ProjectView {
	return ProjectView{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Status:      string(p.Status()),
		Color:       p.Color(),
		CreatedAt:   p.CreatedAt(),
		TodoIDs:     p.TodoIDs(),
	}
}

func NewProjectViews(projects []domain.Project) []ProjectView {
	out := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, NewProjectView(p))
	}
	return out
}

func NewTodoView(t domain.Todo) TodoView {
	return TodoView{
		ID:          t.ID(),
		Title:       t.Title(),
		Description: t.Description(),
		DueDate:     t.DueDate().Format(domain.DateLayout),
		Priority:    string(t.Priority()),
		Status:      string(t.Status()),
		Overdue:     t.IsOverdue(),
		CreatedAt:   t.CreatedAt(),
		CompletedAt: t.CompletedAt(),
		ProjectID:   t.ProjectID(),
	}
}

func NewTodoViews(todos []domain.Todo) []TodoView {
	out := make([]TodoView, 0, len(todos))
	for _, t := range todos {
		out = append(out, NewTodoView(t))
	}
	return out
}

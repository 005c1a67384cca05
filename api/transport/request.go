package transport

import (
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/state"
)

type ProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Color       string `json:"color"`
}

func (r ProjectRequest) Input() domain.ProjectInput {
	return domain.ProjectInput{
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		Color:       r.Color,
	}
}

type ProjectPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Color       *string `json:"color"`
}

func (r ProjectPatchRequest) Patch() state.ProjectPatch {
	return state.ProjectPatch{
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		Color:       r.Color,
	}
}

type TodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

func (r TodoRequest) Input() domain.TodoInput {
	return domain.TodoInput{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Priority:    r.Priority,
		Status:      r.Status,
	}
}

type TodoPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	ProjectID   *string `json:"project_id"`
}

func (r TodoPatchRequest) Patch() state.TodoPatch {
	return state.TodoPatch{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Priority:    r.Priority,
		Status:      r.Status,
		ProjectID:   r.ProjectID,
	}
}

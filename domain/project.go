package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
)

var projectStatuses = []string{string(ProjectActive), string(ProjectArchived)}

// Color is a named entry of the fixed project palette.
type Color struct {
	Name string
	Hex  string
}

// Palette lists the colors a project may carry.
var Palette = []Color{
	{Name: "blue", Hex: "#3498db"},
	{Name: "green", Hex: "#2ecc71"},
	{Name: "purple", Hex: "#9b59b6"},
	{Name: "orange", Hex: "#e67e22"},
	{Name: "red", Hex: "#e74c3c"},
	{Name: "teal", Hex: "#1abc9c"},
}

// ProjectInput carries the caller-supplied fields of a new project.
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Color       string `json:"color"`
}

// Project is an immutable project value. Transitions return new values.
type Project struct {
	id          string
	name        string
	description string
	status      ProjectStatus
	color       string
	createdAt   time.Time
	todoIDs     []string
}

// ProjectRecord is the serialized form of a project.
type ProjectRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	TodoIDs     []string  `json:"todoIds"`
}

// NewProject validates every field before a project is considered to exist.
func NewProject(in ProjectInput, rules Rules) (Project, error) {
	name, err := ValidateName(in.Name)
	if err != nil {
		return Project{}, err
	}
	status := ProjectActive
	if in.Status != "" {
		if status, err = ValidateProjectStatus(in.Status); err != nil {
			return Project{}, err
		}
	}
	color, err := ValidateColor(in.Color)
	if err != nil {
		return Project{}, err
	}
	return Project{
		id:          newID("project"),
		name:        name,
		description: ValidateDescription(in.Description),
		status:      status,
		color:       color,
		createdAt:   rules.now(),
	}, nil
}

func (p Project) ID() string { return p.id }
func (p Project) Name() string { return p.name }
func (p Project) Description() string { return p.description }
func (p Project) Status() ProjectStatus { return p.status }
func (p Project) Color() string { return p.color }
func (p Project) CreatedAt() time.Time { return p.createdAt }
func (p Project) TodoCount() int { return len(p.todoIDs) }
func (p Project) HasTodo(todoID string) bool { return slices.Contains(p.todoIDs, todoID) }

// TodoIDs returns a copy of the owned todo ids in insertion order.
func (p Project) TodoIDs() []string {
	return slices.Clone(p.todoIDs)
}

// IsZero reports whether p was never constructed.
func (p Project) IsZero() bool {
	return p.id == ""
}

func (p Project) WithName(name string) (Project, error) {
	v, err := ValidateName(name)
	if err != nil {
		return Project{}, err
	}
	next := p.clone()
	next.name = v
	return next, nil
}

func (p Project) WithDescription(description string) Project {
	next := p.clone()
	next.description = ValidateDescription(description)
	return next
}

func (p Project) WithStatus(status string) (Project, error) {
	v, err := ValidateProjectStatus(status)
	if err != nil {
		return Project{}, err
	}
	next := p.clone()
	next.status = v
	return next, nil
}

func (p Project) WithColor(color string) (Project, error) {
	v, err := ValidateColor(color)
	if err != nil {
		return Project{}, err
	}
	next := p.clone()
	next.color = v
	return next, nil
}

// WithTodoIDs replaces the owned id list, keeping the first occurrence of each id.
func (p Project) WithTodoIDs(ids []string) Project {
	next := p
	next.todoIDs = make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(next.todoIDs, id) {
			next.todoIDs = append(next.todoIDs, id)
		}
	}
	return next
}

// Serialize returns a plain snapshot suitable for persistence.
func (p Project) Serialize() ProjectRecord {
	return ProjectRecord{
		ID:          p.id,
		Name:        p.name,
		Description: p.description,
		Status:      string(p.status),
		Color:       p.color,
		CreatedAt:   p.createdAt,
		TodoIDs:     append([]string{}, p.todoIDs...),
	}
}

func (p Project) clone() Project {
	next := p
	next.todoIDs = slices.Clone(p.todoIDs)
	return next
}

func newID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "_" + id.String()
}

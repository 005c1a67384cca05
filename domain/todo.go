package domain

import (
	"strings"
	"time"
)

// Priority ranks a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorities = []string{string(PriorityLow), string(PriorityMedium), string(PriorityHigh)}

// TodoStatus is the workflow state of a todo.
type TodoStatus string

const (
	StatusPending    TodoStatus = "pending"
	StatusInProgress TodoStatus = "in-progress"
	StatusCompleted  TodoStatus = "completed"
	StatusCancelled  TodoStatus = "cancelled"
)

var todoStatuses = []string{
	string(StatusPending),
	string(StatusInProgress),
	string(StatusCompleted),
	string(StatusCancelled),
}

// TodoInput carries the caller-supplied fields of a new todo.
type TodoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	ProjectID   string `json:"projectId"`
}

// Todo is an immutable todo value. Transitions return new values.
type Todo struct {
	id          string
	title       string
	description string
	dueDate     time.Time
	priority    Priority
	status      TodoStatus
	createdAt   time.Time
	completedAt *time.Time
	projectID   string
	rules       Rules
}

// TodoRecord is the serialized form of a todo.
type TodoRecord struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     string     `json:"dueDate"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
	ProjectID   string     `json:"projectId,omitempty"`
}

// NewTodo validates every field before a todo is considered to exist.
func NewTodo(in TodoInput, rules Rules) (Todo, error) {
	title, err := ValidateTitle(in.Title)
	if err != nil {
		return Todo{}, err
	}
	due, err := ValidateDueDate(in.DueDate, rules)
	if err != nil {
		return Todo{}, err
	}
	priority := PriorityLow
	if in.Priority != "" {
		if priority, err = ValidatePriority(in.Priority); err != nil {
			return Todo{}, err
		}
	}
	status := StatusPending
	if in.Status != "" {
		if status, err = ValidateTodoStatus(in.Status); err != nil {
			return Todo{}, err
		}
	}

	now := rules.now()
	t := Todo{
		id:          newID("todo"),
		title:       title,
		description: in.Description,
		dueDate:     due,
		priority:    priority,
		status:      status,
		createdAt:   now,
		projectID:   strings.TrimSpace(in.ProjectID),
		rules:       rules,
	}
	if status == StatusCompleted {
		t.completedAt = &now
	}
	return t, nil
}

func (t Todo) ID() string { return t.id }
func (t Todo) Title() string { return t.title }
func (t Todo) Description() string { return t.description }
func (t Todo) DueDate() time.Time { return t.dueDate }
func (t Todo) Priority() Priority { return t.priority }
func (t Todo) Status() TodoStatus { return t.status }
func (t Todo) CreatedAt() time.Time { return t.createdAt }
func (t Todo) ProjectID() string { return t.projectID }

// CompletedAt returns a copy of the completion stamp, or nil.
func (t Todo) CompletedAt() *time.Time {
	if t.completedAt == nil {
		return nil
	}
	c := *t.completedAt
	return &c
}

// IsZero reports whether t was never constructed.
func (t Todo) IsZero() bool {
	return t.id == ""
}

func (t Todo) WithTitle(title string) (Todo, error) {
	v, err := ValidateTitle(title)
	if err != nil {
		return Todo{}, err
	}
	t.title = v
	return t, nil
}

func (t Todo) WithDescription(description string) Todo {
	t.description = description
	return t
}

func (t Todo) WithDueDate(dueDate string) (Todo, error) {
	v, err := ValidateDueDate(dueDate, t.rules)
	if err != nil {
		return Todo{}, err
	}
	t.dueDate = v
	return t, nil
}

func (t Todo) WithPriority(priority string) (Todo, error) {
	v, err := ValidatePriority(priority)
	if err != nil {
		return Todo{}, err
	}
	t.priority = v
	return t, nil
}

// WithProjectID sets the owning project back-reference. Empty clears it.
func (t Todo) WithProjectID(projectID string) Todo {
	t.projectID = strings.TrimSpace(projectID)
	return t
}

// WithRules rebinds the rules later transitions validate against.
func (t Todo) WithRules(rules Rules) Todo {
	t.rules = rules
	return t
}

// TransitionStatus moves the todo to any status. Entering completed stamps
// completedAt; leaving completed clears it.
func (t Todo) TransitionStatus(next string) (Todo, error) {
	status, err := ValidateTodoStatus(next)
	if err != nil {
		return Todo{}, err
	}
	switch {
	case status == StatusCompleted && t.status != StatusCompleted:
		now := t.rules.now()
		t.completedAt = &now
	case status != StatusCompleted:
		t.completedAt = nil
	}
	t.status = status
	return t, nil
}

// NextInCycle returns the status the toggle cycle moves to from the current one.
func (t Todo) NextInCycle() TodoStatus {
	switch t.status {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// IsOverdue reports whether the todo is unfinished and past its due date.
func (t Todo) IsOverdue() bool {
	return t.IsOverdueAt(t.rules.now())
}

func (t Todo) IsOverdueAt(now time.Time) bool {
	return t.status != StatusCompleted && now.After(t.dueDate)
}

// Serialize returns a plain snapshot suitable for persistence.
func (t Todo) Serialize() TodoRecord {
	return TodoRecord{
		ID:          t.id,
		Title:       t.title,
		Description: t.description,
		DueDate:     t.dueDate.Format(DateLayout),
		Priority:    string(t.priority),
		Status:      string(t.status),
		CreatedAt:   t.createdAt,
		CompletedAt: t.CompletedAt(),
		ProjectID:   t.projectID,
	}
}

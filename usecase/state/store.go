package state

import (
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

// ProjectPatch lists the project fields an edit may change. Nil means untouched.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// TodoPatch lists the todo fields an edit may change. Nil means untouched.
// ProjectID moves the todo; every todo belongs to a project, so it cannot be empty.
type TodoPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	ProjectID   *string `json:"projectId,omitempty"`
}

// Stats summarizes the working set.
type Stats struct {
	Projects  int `json:"projects"`
	Todos     int `json:"todos"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// Store is the single owner of every project and todo value. The project's
// own todo id list is the project→todo index; there is no second copy.
type Store struct {
	rules  domain.Rules
	logger *zap.Logger

	mu           sync.RWMutex
	projects     map[string]domain.Project
	todos        map[string]domain.Todo
	projectOrder []string
	todoOrder    []string
	revision     uint64
}

// New creates an empty store.
func New(rules domain.Rules, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		rules:    rules,
		logger:   logger,
		projects: make(map[string]domain.Project),
		todos:    make(map[string]domain.Todo),
	}
}

// Rules returns the validation rules entities are built with.
func (s *Store) Rules() domain.Rules {
	return s.rules
}

func (s *Store) CreateProject(in domain.ProjectInput) (domain.Project, error) {
	project, err := domain.NewProject(in, s.rules)
	if err != nil {
		return domain.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects[project.ID()] = project
	s.projectOrder = append(s.projectOrder, project.ID())
	s.revision++
	s.logger.Debug("project created", zap.String("project_id", project.ID()))
	return project, nil
}

func (s *Store) GetProject(id string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project(id)
}

// EditProject applies only the supplied fields and replaces the stored value.
func (s *Store) EditProject(id string, patch ProjectPatch) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.project(id)
	if err != nil {
		return domain.Project{}, err
	}
	if patch.Name != nil {
		if project, err = project.WithName(*patch.Name); err != nil {
			return domain.Project{}, err
		}
	}
	if patch.Description != nil {
		project = project.WithDescription(*patch.Description)
	}
	if patch.Status != nil {
		if project, err = project.WithStatus(*patch.Status); err != nil {
			return domain.Project{}, err
		}
	}
	if patch.Color != nil {
		if project, err = project.WithColor(*patch.Color); err != nil {
			return domain.Project{}, err
		}
	}

	s.projects[id] = project
	s.revision++
	return project, nil
}

// RemoveProject deletes the project and every todo it owns. All lookups
// happen before the first deletion so the cascade is all-or-nothing.
func (s *Store) RemoveProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.project(id)
	if err != nil {
		return err
	}
	owned := project.TodoIDs()
	for _, todoID := range owned {
		if _, ok := s.todos[todoID]; !ok {
			return domain.WrapError(domain.ErrCodeInternal, "project index references unknown todo", domain.NotFound(domain.ErrTodoNotFound, todoID))
		}
	}

	for _, todoID := range owned {
		delete(s.todos, todoID)
	}
	s.todoOrder = slices.DeleteFunc(s.todoOrder, func(todoID string) bool {
		return slices.Contains(owned, todoID)
	})
	delete(s.projects, id)
	s.projectOrder = slices.DeleteFunc(s.projectOrder, func(projectID string) bool {
		return projectID == id
	})

	s.revision++
	s.logger.Debug("project removed", zap.String("project_id", id), zap.Int("cascaded_todos", len(owned)))
	return nil
}

// CreateTodoForProject validates the todo, stores it and links it to the project.
func (s *Store) CreateTodoForProject(projectID string, in domain.TodoInput) (domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.project(projectID)
	if err != nil {
		return domain.Todo{}, err
	}
	in.ProjectID = projectID
	todo, err := domain.NewTodo(in, s.rules)
	if err != nil {
		return domain.Todo{}, err
	}

	s.todos[todo.ID()] = todo
	s.todoOrder = append(s.todoOrder, todo.ID())
	s.projects[projectID] = project.WithTodoIDs(append(project.TodoIDs(), todo.ID()))
	s.revision++
	s.logger.Debug("todo created", zap.String("todo_id", todo.ID()), zap.String("project_id", projectID))
	return todo, nil
}

func (s *Store) GetTodo(id string) (domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.todo(id)
}

// EditTodo applies the supplied fields. A changed project id moves the todo
// from the old project's index to the new one in the same step.
func (s *Store) EditTodo(id string, patch TodoPatch) (domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.todo(id)
	if err != nil {
		return domain.Todo{}, err
	}
	next := current
	if patch.Title != nil {
		if next, err = next.WithTitle(*patch.Title); err != nil {
			return domain.Todo{}, err
		}
	}
	if patch.Description != nil {
		next = next.WithDescription(*patch.Description)
	}
	if patch.DueDate != nil {
		if next, err = next.WithDueDate(*patch.DueDate); err != nil {
			return domain.Todo{}, err
		}
	}
	if patch.Priority != nil {
		if next, err = next.WithPriority(*patch.Priority); err != nil {
			return domain.Todo{}, err
		}
	}
	if patch.Status != nil {
		if next, err = next.TransitionStatus(*patch.Status); err != nil {
			return domain.Todo{}, err
		}
	}
	if patch.ProjectID != nil {
		if strings.TrimSpace(*patch.ProjectID) == "" {
			return domain.Todo{}, domain.NewValidationError("projectId", "todo must belong to a project")
		}
		next = next.WithProjectID(*patch.ProjectID)
	}

	oldProjectID, newProjectID := current.ProjectID(), next.ProjectID()
	if oldProjectID == newProjectID {
		s.todos[id] = next
		s.revision++
		return next, nil
	}

	target, err := s.project(newProjectID)
	if err != nil {
		return domain.Todo{}, err
	}
	s.unlink(oldProjectID, id)
	s.projects[newProjectID] = target.WithTodoIDs(append(target.TodoIDs(), id))
	s.todos[id] = next
	s.revision++

	s.logger.Debug("todo moved",
		zap.String("todo_id", id),
		zap.String("from_project_id", oldProjectID),
		zap.String("to_project_id", newProjectID))
	return next, nil
}

// RemoveTodoFromProject deletes a todo that must belong to the given project.
func (s *Store) RemoveTodoFromProject(projectID, todoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.project(projectID)
	if err != nil {
		return err
	}
	if _, err := s.todo(todoID); err != nil {
		return err
	}
	if !project.HasTodo(todoID) {
		return domain.NotFound(domain.ErrTodoNotFound, todoID)
	}
	s.deleteTodo(todoID)
	return nil
}

// RemoveTodo deletes a todo and drops it from its project's index.
func (s *Store) RemoveTodo(todoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.todo(todoID); err != nil {
		return err
	}
	s.deleteTodo(todoID)
	return nil
}

// ToggleTodoStatus drives the pending → in-progress → completed → pending
// cycle. Any other status normalizes to pending.
func (s *Store) ToggleTodoStatus(id string) (domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, err := s.todo(id)
	if err != nil {
		return domain.Todo{}, err
	}
	next, err := todo.TransitionStatus(string(todo.NextInCycle()))
	if err != nil {
		return domain.Todo{}, err
	}
	s.todos[id] = next
	s.revision++
	return next, nil
}

// MarkTodoComplete forces completed. Calling it again keeps the first stamp.
func (s *Store) MarkTodoComplete(id string) (domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, err := s.todo(id)
	if err != nil {
		return domain.Todo{}, err
	}
	if todo.Status() == domain.StatusCompleted {
		return todo, nil
	}
	next, err := todo.TransitionStatus(string(domain.StatusCompleted))
	if err != nil {
		return domain.Todo{}, err
	}
	s.todos[id] = next
	s.revision++
	return next, nil
}

// GetAllProjects returns a snapshot keyed by id; mutating it does not affect the store.
func (s *Store) GetAllProjects() map[string]domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Project, len(s.projects))
	for id, p := range s.projects {
		out[id] = p
	}
	return out
}

// GetAllTodos returns a snapshot keyed by id; mutating it does not affect the store.
func (s *Store) GetAllTodos() map[string]domain.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Todo, len(s.todos))
	for id, t := range s.todos {
		out[id] = t
	}
	return out
}

// ListProjects returns projects in creation order.
func (s *Store) ListProjects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Project, 0, len(s.projectOrder))
	for _, id := range s.projectOrder {
		out = append(out, s.projects[id])
	}
	return out
}

// ListTodos returns todos in creation order.
func (s *Store) ListTodos() []domain.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Todo, 0, len(s.todoOrder))
	for _, id := range s.todoOrder {
		out = append(out, s.todos[id])
	}
	return out
}

// Snapshot copies projects and todos, each in creation order, under one read
// lock so every listed todo id resolves to a returned todo.
func (s *Store) Snapshot() ([]domain.Project, []domain.Todo) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	projects := make([]domain.Project, 0, len(s.projectOrder))
	for _, id := range s.projectOrder {
		projects = append(projects, s.projects[id])
	}
	todos := make([]domain.Todo, 0, len(s.todoOrder))
	for _, id := range s.todoOrder {
		todos = append(todos, s.todos[id])
	}
	return projects, todos
}

// GetProjectTodos resolves the project's index to todo values, in index order.
func (s *Store) GetProjectTodos(projectID string) ([]domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, err := s.project(projectID)
	if err != nil {
		return nil, err
	}
	ids := project.TodoIDs()
	out := make([]domain.Todo, 0, len(ids))
	for _, id := range ids {
		if todo, ok := s.todos[id]; ok {
			out = append(out, todo)
		}
	}
	return out, nil
}

// ProjectTodoIDs exposes the index entry of a project.
func (s *Store) ProjectTodoIDs(projectID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, err := s.project(projectID)
	if err != nil {
		return nil, err
	}
	return project.TodoIDs(), nil
}

// Revision increases on every successful mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{Projects: len(s.projects), Todos: len(s.todos)}
	for _, todo := range s.todos {
		if todo.Status() == domain.StatusCompleted {
			stats.Completed++
		}
		if todo.IsOverdue() {
			stats.Overdue++
		}
	}
	return stats
}

// Clear drops every entity.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = make(map[string]domain.Project)
	s.todos = make(map[string]domain.Todo)
	s.projectOrder = nil
	s.todoOrder = nil
	s.revision++
}

// Replace installs the contents of other in one step and rebinds its todos to
// the receiver's rules. other is left empty.
func (s *Store) Replace(other *Store) {
	if other == nil || other == s {
		return
	}
	other.mu.Lock()
	projects, todos := other.projects, other.todos
	projectOrder, todoOrder := other.projectOrder, other.todoOrder
	other.projects = make(map[string]domain.Project)
	other.todos = make(map[string]domain.Todo)
	other.projectOrder, other.todoOrder = nil, nil
	other.mu.Unlock()

	for id, todo := range todos {
		todos[id] = todo.WithRules(s.rules)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects, s.todos = projects, todos
	s.projectOrder, s.todoOrder = projectOrder, todoOrder
	s.revision++
}

func (s *Store) project(id string) (domain.Project, error) {
	project, ok := s.projects[id]
	if !ok {
		return domain.Project{}, domain.NotFound(domain.ErrProjectNotFound, id)
	}
	return project, nil
}

func (s *Store) todo(id string) (domain.Todo, error) {
	todo, ok := s.todos[id]
	if !ok {
		return domain.Todo{}, domain.NotFound(domain.ErrTodoNotFound, id)
	}
	return todo, nil
}

func (s *Store) unlink(projectID, todoID string) {
	if projectID == "" {
		return
	}
	project, ok := s.projects[projectID]
	if !ok {
		return
	}
	ids := slices.DeleteFunc(project.TodoIDs(), func(id string) bool { return id == todoID })
	s.projects[projectID] = project.WithTodoIDs(ids)
}

func (s *Store) deleteTodo(todoID string) {
	todo := s.todos[todoID]
	s.unlink(todo.ProjectID(), todoID)
	delete(s.todos, todoID)
	s.todoOrder = slices.DeleteFunc(s.todoOrder, func(id string) bool { return id == todoID })
	s.revision++
	s.logger.Debug("todo removed", zap.String("todo_id", todoID), zap.String("project_id", todo.ProjectID()))
}

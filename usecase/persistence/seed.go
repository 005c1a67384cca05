package persistence

import (
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/state"
)

type seedProject struct {
	project domain.ProjectInput
	todo    domain.TodoInput
	dueIn   time.Duration
}

var defaultSeed = []seedProject{
	{
		project: domain.ProjectInput{Name: "Personal", Description: "Errands and things around the house", Color: "blue"},
		todo:    domain.TodoInput{Title: "Plan weekend errands", Priority: "medium"},
		dueIn:   3 * 24 * time.Hour,
	},
	{
		project: domain.ProjectInput{Name: "Work", Description: "Tasks for the day job", Color: "green"},
		todo:    domain.TodoInput{Title: "Prepare weekly report", Priority: "high"},
		dueIn:   5 * 24 * time.Hour,
	},
	{
		project: domain.ProjectInput{Name: "Learning", Description: "Courses, books and side projects", Color: "purple"},
		todo:    domain.TodoInput{Title: "Read the concurrency chapter", Priority: "low"},
		dueIn:   14 * 24 * time.Hour,
	},
}

// SeedDefaults creates the example projects, each with one example todo.
// Restore calls it when no snapshot has ever been saved, Boot when a corrupt
// snapshot left the store empty.
func (a *Adapter) SeedDefaults(store *state.Store) error {
	now := time.Now()
	if clock := store.Rules().Clock; clock != nil {
		now = clock()
	}
	for _, seed := range defaultSeed {
		project, err := store.CreateProject(seed.project)
		if err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "seed project rejected", err)
		}
		todo := seed.todo
		todo.DueDate = now.Add(seed.dueIn).Format(domain.DateLayout)
		if _, err := store.CreateTodoForProject(project.ID(), todo); err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "seed todo rejected", err)
		}
	}
	a.logger.Info("default data seeded", zap.Int("projects", len(defaultSeed)))
	return nil
}

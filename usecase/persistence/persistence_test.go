package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository/memory"
	"github.com/fastygo/taskboard/usecase/state"
)

type failingBytes struct {
	getErr error
	setErr error
	sets   int
}

func (f *failingBytes) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.getErr
}

func (f *failingBytes) Set(context.Context, string, []byte) error {
	f.sets++
	return f.setErr
}

func populated(t *testing.T) *state.Store {
	t.Helper()
	s := state.New(domain.DefaultRules(), nil)
	web, err := s.CreateProject(domain.ProjectInput{Name: "Web Dev", Description: "Frontend work", Color: "blue"})
	if err != nil {
		t.Fatal(err)
	}
	home, err := s.CreateProject(domain.ProjectInput{Name: "Home", Status: "archived"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateTodoForProject(web.ID(), domain.TodoInput{Title: "Learn JS", DueDate: "2030-01-01", Priority: "high"}); err != nil {
		t.Fatal(err)
	}
	done, err := s.CreateTodoForProject(web.ID(), domain.TodoInput{Title: "Ship site", DueDate: "2030-02-01"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.MarkTodoComplete(done.ID()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateTodoForProject(home.ID(), domain.TodoInput{Title: "Fix sink", DueDate: "2029-12-31", Priority: "medium"}); err != nil {
		t.Fatal(err)
	}
	return s
}

type todoShape struct {
	project, title, due, priority, status string
}

func shapes(s *state.Store) []todoShape {
	var out []todoShape
	for _, p := range s.ListProjects() {
		todos, _ := s.GetProjectTodos(p.ID())
		for _, todo := range todos {
			out = append(out, todoShape{
				project:  p.Name(),
				title:    todo.Title(),
				due:      todo.DueDate().Format(domain.DateLayout),
				priority: string(todo.Priority()),
				status:   string(todo.Status()),
			})
		}
	}
	return out
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	bytes := memory.NewByteStore(0)
	adapter := New(bytes, Options{}, nil)
	source := populated(t)

	if err := adapter.Save(ctx, source); err != nil {
		t.Fatal(err)
	}

	target := state.New(domain.DefaultRules(), nil)
	report, err := adapter.Restore(ctx, target)
	if err != nil {
		t.Fatal(err)
	}
	if report.Seeded || report.Projects != 2 || report.Todos != 3 || report.Skipped != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	want, got := shapes(source), shapes(target)
	if len(want) != len(got) {
		t.Fatalf("got %d todos, want %d", len(got), len(want))
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("todo %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	projects := target.ListProjects()
	if projects[0].Color() != "#3498db" || projects[1].Status() != domain.ProjectArchived {
		t.Errorf("project fields lost: %s / %s", projects[0].Color(), projects[1].Status())
	}
	for _, todo := range target.ListTodos() {
		if todo.Status() == domain.StatusCompleted && todo.CompletedAt() == nil {
			t.Error("restored completed todo lacks completedAt")
		}
	}
}

func TestSaveUsesReservedKey(t *testing.T) {
	ctx := context.Background()
	bytes := memory.NewByteStore(0)
	if err := New(bytes, Options{}, nil).Save(ctx, populated(t)); err != nil {
		t.Fatal(err)
	}
	raw, ok, err := bytes.Get(ctx, DefaultKey)
	if err != nil || !ok {
		t.Fatalf("snapshot missing under %q: %v", DefaultKey, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Version != 1 || len(doc.Projects) != 2 || len(doc.Todos) != 3 {
		t.Errorf("unexpected document: version=%d projects=%d todos=%d", doc.Version, len(doc.Projects), len(doc.Todos))
	}
}

func TestRestoreSeedsWhenSnapshotAbsent(t *testing.T) {
	ctx := context.Background()
	bytes := memory.NewByteStore(0)
	adapter := New(bytes, Options{Seed: true}, nil)
	store := state.New(domain.DefaultRules(), nil)

	report, err := adapter.Restore(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Seeded || report.Projects != 3 || report.Todos != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
	for _, p := range store.ListProjects() {
		if p.TodoCount() != 1 {
			t.Errorf("seed project %q has %d todos", p.Name(), p.TodoCount())
		}
	}
	if _, ok, _ := bytes.Get(ctx, DefaultKey); !ok {
		t.Error("seeded state should be saved right away")
	}

	again := state.New(domain.DefaultRules(), nil)
	report, err = adapter.Restore(ctx, again)
	if err != nil {
		t.Fatal(err)
	}
	if report.Seeded {
		t.Error("seeding must only happen when no snapshot exists")
	}
}

func TestRestoreWithoutSeedStartsEmpty(t *testing.T) {
	store := state.New(domain.DefaultRules(), nil)
	report, err := New(memory.NewByteStore(0), Options{}, nil).Restore(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}
	if report.Seeded || len(store.ListProjects()) != 0 {
		t.Errorf("expected empty store, got %+v", report)
	}
}

func TestRestoreCorruptSnapshotLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	bytes := memory.NewByteStore(0)
	if err := bytes.Set(ctx, DefaultKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	store := populated(t)
	before := shapes(store)

	_, err := New(bytes, Options{Seed: true}, nil).Restore(ctx, store)
	if !domain.IsDomainError(err, domain.ErrCodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	after := shapes(store)
	if len(before) != len(after) {
		t.Fatalf("store changed: %d -> %d todos", len(before), len(after))
	}
}

func TestRestoreInvalidRecordIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	doc := Document{
		Version: 1,
		Projects: []domain.ProjectRecord{
			{ID: "p1", Name: "Valid", Status: "active", TodoIDs: []string{"t1"}},
			{ID: "p2", Name: "x", Status: "active"},
		},
		Todos: []domain.TodoRecord{
			{ID: "t1", Title: "Valid todo", DueDate: "2030-01-01", Priority: "low", Status: "pending", ProjectID: "p1"},
		},
	}
	raw, _ := json.Marshal(doc)
	bytes := memory.NewByteStore(0)
	_ = bytes.Set(ctx, DefaultKey, raw)

	store := populated(t)
	_, err := New(bytes, Options{}, nil).Restore(ctx, store)
	if !domain.IsDomainError(err, domain.ErrCodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if got := len(store.ListProjects()); got != 2 {
		t.Errorf("partial restore leaked into the store: %d projects", got)
	}
}

func TestRestoreAcceptsPastDueUnderFuturePolicy(t *testing.T) {
	ctx := context.Background()
	bytes := memory.NewByteStore(0)
	adapter := New(bytes, Options{}, nil)

	past := state.New(domain.DefaultRules(), nil)
	p, _ := past.CreateProject(domain.ProjectInput{Name: "Old work"})
	if _, err := past.CreateTodoForProject(p.ID(), domain.TodoInput{Title: "Overdue task", DueDate: "2020-01-01"}); err != nil {
		t.Fatal(err)
	}
	if err := adapter.Save(ctx, past); err != nil {
		t.Fatal(err)
	}

	strict := state.New(domain.Rules{DueDates: domain.DueDateFuture, Clock: time.Now}, nil)
	report, err := adapter.Restore(ctx, strict)
	if err != nil {
		t.Fatal(err)
	}
	if report.Todos != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	todo := strict.ListTodos()[0]
	if _, err := strict.EditTodo(todo.ID(), state.TodoPatch{DueDate: ptr("2020-02-02")}); !domain.IsValidation(err) {
		t.Errorf("restored todo should validate edits with the store's rules, got %v", err)
	}
}

func ptr(v string) *string { return &v }

func TestReplaySkipsOrphanTodos(t *testing.T) {
	doc := Document{
		Version: 1,
		Projects: []domain.ProjectRecord{
			{ID: "p1", Name: "Listed", Status: "active", TodoIDs: []string{"t2", "t1", "missing"}},
		},
		Todos: []domain.TodoRecord{
			{ID: "t1", Title: "First saved", DueDate: "2030-01-01", Priority: "low", Status: "pending"},
			{ID: "t2", Title: "Second saved", DueDate: "2030-01-02", Priority: "high", Status: "in-progress"},
			{ID: "t3", Title: "Nobody owns me", DueDate: "2030-01-03", Priority: "low", Status: "pending"},
		},
	}
	store := state.New(domain.DefaultRules(), nil)
	report, err := Replay(doc, store)
	if err != nil {
		t.Fatal(err)
	}
	if report.Projects != 1 || report.Todos != 2 || report.Skipped != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	p := store.ListProjects()[0]
	todos, _ := store.GetProjectTodos(p.ID())
	if todos[0].Title() != "Second saved" || todos[1].Title() != "First saved" {
		t.Errorf("replay should follow the project's saved order, got %q, %q", todos[0].Title(), todos[1].Title())
	}
	if todos[0].Status() != domain.StatusInProgress {
		t.Errorf("status lost: %s", todos[0].Status())
	}
}

func TestDecodeRejectsNewerVersion(t *testing.T) {
	if _, err := Decode([]byte(`{"version":2,"projects":[],"todos":[]}`)); err == nil {
		t.Fatal("expected an error for a newer document version")
	}
	if _, err := Decode([]byte(`{"version":1,"projects":[],"todos":[]}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSaveFailureIsPersistenceError(t *testing.T) {
	ctx := context.Background()
	store := populated(t)
	before := store.Revision()

	err := New(memory.NewByteStore(16), Options{}, nil).Save(ctx, store)
	if !domain.IsDomainError(err, domain.ErrCodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if !errors.Is(err, memory.ErrQuotaExceeded) {
		t.Errorf("quota cause should be preserved, got %v", err)
	}
	if store.Revision() != before || len(store.ListTodos()) != 3 {
		t.Error("failed save must not touch the in-memory state")
	}
}

func TestRestoreReadFailure(t *testing.T) {
	cause := errors.New("connection refused")
	store := state.New(domain.DefaultRules(), nil)
	_, err := New(&failingBytes{getErr: cause}, Options{Seed: true}, nil).Restore(context.Background(), store)
	if !errors.Is(err, cause) || !domain.IsDomainError(err, domain.ErrCodePersistence) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
	if len(store.ListProjects()) != 0 {
		t.Error("a failed read must not seed")
	}
}

func TestSeedSurvivesSaveFailure(t *testing.T) {
	bytes := &failingBytes{setErr: errors.New("read-only")}
	store := state.New(domain.DefaultRules(), nil)

	report, err := New(bytes, Options{Seed: true}, nil).Restore(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Seeded || bytes.sets != 1 {
		t.Errorf("expected one save attempt after seeding, report=%+v sets=%d", report, bytes.sets)
	}
	if len(store.ListProjects()) != 3 {
		t.Error("seeded data should stay in memory")
	}
}

func TestDecodeRejectsMissingVersion(t *testing.T) {
	for _, raw := range []string{`null`, `{}`, `{"version":0,"projects":[],"todos":[]}`, `{"projects":[]}`} {
		if _, err := Decode([]byte(raw)); !domain.IsDomainError(err, domain.ErrCodePersistence) {
			t.Errorf("%s: expected persistence error, got %v", raw, err)
		}
	}
}

func TestRestoreVersionlessSnapshotKeepsStore(t *testing.T) {
	for _, raw := range []string{`null`, `{}`} {
		t.Run(raw, func(t *testing.T) {
			ctx := context.Background()
			bytes := memory.NewByteStore(0)
			_ = bytes.Set(ctx, DefaultKey, []byte(raw))

			store := state.New(domain.DefaultRules(), nil)
			if _, err := store.CreateProject(domain.ProjectInput{Name: "Keep me"}); err != nil {
				t.Fatal(err)
			}

			report, err := New(bytes, Options{}, nil).Restore(ctx, store)
			if !errors.Is(err, ErrSnapshotCorrupt) {
				t.Fatalf("expected corrupt snapshot error, got %v", err)
			}
			if projects := store.ListProjects(); len(projects) != 1 || projects[0].Name() != "Keep me" {
				t.Errorf("store was replaced: %v", projects)
			}
			backup, ok, _ := bytes.Get(ctx, report.BackupKey)
			if !ok || string(backup) != raw {
				t.Errorf("backup %q: got (%q, %v)", report.BackupKey, backup, ok)
			}
		})
	}
}

func TestEncodeIsConsistentUnderWrites(t *testing.T) {
	store := state.New(domain.DefaultRules(), nil)
	p, err := store.CreateProject(domain.ProjectInput{Name: "Busy"})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for {
			select {
			case <-done:
				return
			default:
			}
			todo, err := store.CreateTodoForProject(p.ID(), domain.TodoInput{Title: "Churn", DueDate: "2030-01-01"})
			if err != nil {
				t.Error(err)
				return
			}
			if err := store.RemoveTodo(todo.ID()); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	defer func() {
		close(done)
		<-finished
	}()

	for i := 0; i < 2000; i++ {
		raw, err := Encode(store)
		if err != nil {
			t.Fatal(err)
		}
		doc, err := Decode(raw)
		if err != nil {
			t.Fatal(err)
		}
		known := make(map[string]bool, len(doc.Todos))
		for _, rec := range doc.Todos {
			known[rec.ID] = true
		}
		listed := 0
		for _, rec := range doc.Projects {
			for _, id := range rec.TodoIDs {
				if !known[id] {
					t.Fatalf("encode %d: project lists missing todo %s", i, id)
				}
				listed++
			}
		}
		if listed != len(doc.Todos) {
			t.Fatalf("encode %d: %d todos but %d listed", i, len(doc.Todos), listed)
		}
	}
}

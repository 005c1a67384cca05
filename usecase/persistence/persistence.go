package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase/state"
)

// DefaultKey is the reserved byte-store key holding the whole application snapshot.
const DefaultKey = "todo-app-state"

const documentVersion = 1

// ErrSnapshotCorrupt marks a snapshot that was read but could not be decoded
// or replayed. Restore copies such bytes to a backup key before reporting it.
var ErrSnapshotCorrupt = domain.NewError(domain.ErrCodePersistence, "snapshot corrupt")

// Document is the serialized entity graph.
type Document struct {
	Version  int                    `json:"version"`
	SavedAt  time.Time              `json:"savedAt"`
	Projects []domain.ProjectRecord `json:"projects"`
	Todos    []domain.TodoRecord    `json:"todos"`
}

// RestoreReport describes what Restore did.
type RestoreReport struct {
	Seeded   bool `json:"seeded"`
	Projects int  `json:"projects"`
	Todos    int  `json:"todos"`
	Skipped  int  `json:"skipped"`

	// BackupKey names the copy of a corrupt snapshot, when one was made.
	BackupKey string `json:"backupKey,omitempty"`
}

// Options tune an Adapter.
type Options struct {
	Key  string
	Seed bool
}

// Adapter mirrors a state.Store to a durable byte store.
type Adapter struct {
	bytes  repository.ByteStore
	key    string
	seed   bool
	logger *zap.Logger
}

func New(bytes repository.ByteStore, opts Options, logger *zap.Logger) *Adapter {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		bytes:  bytes,
		key:    opts.Key,
		seed:   opts.Seed,
		logger: logger,
	}
}

// Save writes the full snapshot under the adapter's key. Failures come back
// as PERSISTENCE errors and never affect the in-memory state.
func (a *Adapter) Save(ctx context.Context, store *state.Store) error {
	if store == nil {
		return domain.WrapError(domain.ErrCodePersistence, "state not saved", domain.ErrInvalidPayload)
	}
	payload, err := Encode(store)
	if err != nil {
		a.logger.Error("snapshot encode failed", zap.Error(err))
		return domain.WrapError(domain.ErrCodePersistence, "state not saved", err)
	}
	if err := a.bytes.Set(ctx, a.key, payload); err != nil {
		a.logger.Error("snapshot write failed", zap.String("key", a.key), zap.Error(err))
		return domain.WrapError(domain.ErrCodePersistence, "state not saved", err)
	}
	a.logger.Info("snapshot saved", zap.String("key", a.key), zap.Int("bytes", len(payload)))
	return nil
}

// Restore rehydrates store from the saved snapshot. With no snapshot it seeds
// the example data. The replay runs against a staging store that is swapped
// in only when every record replays, so a failed restore leaves store as it was.
// Entity ids are reassigned during replay.
//
// A snapshot that cannot be decoded or replayed is copied to a backup key and
// reported as ErrSnapshotCorrupt. Read failures are reported as plain
// PERSISTENCE errors; the caller must not overwrite the snapshot after one.
func (a *Adapter) Restore(ctx context.Context, store *state.Store) (RestoreReport, error) {
	var report RestoreReport
	if store == nil {
		return report, domain.WrapError(domain.ErrCodePersistence, "state not restored", domain.ErrInvalidPayload)
	}

	raw, ok, err := a.bytes.Get(ctx, a.key)
	if err != nil {
		a.logger.Error("snapshot read failed", zap.String("key", a.key), zap.Error(err))
		return report, domain.WrapError(domain.ErrCodePersistence, "state not restored", err)
	}
	if !ok {
		if !a.seed {
			a.logger.Info("no snapshot found, starting empty", zap.String("key", a.key))
			return report, nil
		}
		if err := a.SeedDefaults(store); err != nil {
			return report, err
		}
		report.Seeded = true
		stats := store.Stats()
		report.Projects, report.Todos = stats.Projects, stats.Todos
		if err := a.Save(ctx, store); err != nil {
			a.logger.Warn("seeded defaults were not saved", zap.Error(err))
		}
		return report, nil
	}

	doc, err := Decode(raw)
	if err != nil {
		a.logger.Error("snapshot decode failed", zap.String("key", a.key), zap.Error(err))
		return a.quarantine(ctx, raw, err)
	}

	staging := state.New(store.Rules().Relaxed(), a.logger)
	report, err = Replay(doc, staging)
	if err != nil {
		a.logger.Error("snapshot replay failed", zap.Error(err))
		return a.quarantine(ctx, raw, err)
	}
	store.Replace(staging)

	a.logger.Info("snapshot restored",
		zap.Int("projects", report.Projects),
		zap.Int("todos", report.Todos),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

// quarantine copies an unusable snapshot aside so a later save cannot destroy it.
// If the copy fails the error stays a read-class failure.
func (a *Adapter) quarantine(ctx context.Context, raw []byte, cause error) (RestoreReport, error) {
	backup := a.key + ".corrupt-" + time.Now().UTC().Format("20060102T150405.000Z")
	if err := a.bytes.Set(ctx, backup, raw); err != nil {
		a.logger.Error("corrupt snapshot backup failed", zap.String("key", backup), zap.Error(err))
		return RestoreReport{}, domain.WrapError(domain.ErrCodePersistence, "state not restored", errors.Join(cause, err))
	}
	a.logger.Warn("corrupt snapshot backed up", zap.String("key", backup), zap.Int("bytes", len(raw)))
	return RestoreReport{BackupKey: backup}, domain.WrapError(domain.ErrCodePersistence, ErrSnapshotCorrupt.Message, cause)
}

// Encode serializes every project and todo of store, in creation order,
// from one consistent view of the store.
func Encode(store *state.Store) ([]byte, error) {
	projects, todos := store.Snapshot()
	doc := Document{
		Version:  documentVersion,
		SavedAt:  time.Now().UTC(),
		Projects: make([]domain.ProjectRecord, 0, len(projects)),
		Todos:    make([]domain.TodoRecord, 0, len(todos)),
	}
	for _, p := range projects {
		doc.Projects = append(doc.Projects, p.Serialize())
	}
	for _, t := range todos {
		doc.Todos = append(doc.Todos, t.Serialize())
	}
	return json.Marshal(doc)
}

// Decode parses a snapshot document.
func Decode(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, err
	}
	if doc.Version < 1 || doc.Version > documentVersion {
		return Document{}, domain.NewError(domain.ErrCodePersistence, fmt.Sprintf("unsupported snapshot version %d", doc.Version))
	}
	return doc, nil
}

// Replay recreates the document's graph in store through the regular create
// operations. Todos follow their project's saved order; todos no saved
// project lists are skipped and counted.
func Replay(doc Document, store *state.Store) (RestoreReport, error) {
	var report RestoreReport

	todoByID := make(map[string]domain.TodoRecord, len(doc.Todos))
	for _, rec := range doc.Todos {
		todoByID[rec.ID] = rec
	}
	replayed := make(map[string]bool, len(doc.Todos))

	for _, rec := range doc.Projects {
		project, err := store.CreateProject(domain.ProjectInput{
			Name:        rec.Name,
			Description: rec.Description,
			Status:      rec.Status,
			Color:       rec.Color,
		})
		if err != nil {
			return RestoreReport{}, err
		}
		report.Projects++

		for _, todoID := range rec.TodoIDs {
			todoRec, ok := todoByID[todoID]
			if !ok || replayed[todoID] {
				continue
			}
			if _, err := store.CreateTodoForProject(project.ID(), domain.TodoInput{
				Title:       todoRec.Title,
				Description: todoRec.Description,
				DueDate:     todoRec.DueDate,
				Priority:    todoRec.Priority,
				Status:      todoRec.Status,
			}); err != nil {
				return RestoreReport{}, err
			}
			replayed[todoID] = true
			report.Todos++
		}
	}
	report.Skipped = len(todoByID) - len(replayed)
	return report, nil
}

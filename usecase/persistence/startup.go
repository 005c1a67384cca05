package persistence

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/usecase/state"
)

// Boot restores store at process start and arms the autosaver accordingly.
//
// A clean restore (or first-run seeding) marks the autosaver as saved. A
// corrupt snapshot has already been backed up by Restore, so the store falls
// back to the seed data (only when still empty) and the next autosave may
// replace it. Any other failure is returned untouched: the snapshot might
// still be good, and the caller must not start autosaving over it.
func Boot(ctx context.Context, adapter *Adapter, store *state.Store, autosaver *Autosaver) (RestoreReport, error) {
	report, err := adapter.Restore(ctx, store)
	switch {
	case err == nil:
		autosaver.MarkSaved()
		return report, nil
	case errors.Is(err, ErrSnapshotCorrupt):
		adapter.logger.Error("snapshot unusable, continuing from defaults",
			zap.String("backup_key", report.BackupKey),
			zap.Error(err))
		if adapter.seed && store.Stats().Projects == 0 {
			if seedErr := adapter.SeedDefaults(store); seedErr != nil {
				return report, seedErr
			}
			report.Seeded = true
		}
		stats := store.Stats()
		report.Projects, report.Todos = stats.Projects, stats.Todos
		return report, nil
	default:
		return report, err
	}
}

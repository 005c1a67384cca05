package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/usecase/state"
)

// Autosaver periodically mirrors a store to its adapter, skipping ticks where
// nothing changed since the last successful save.
type Autosaver struct {
	adapter  *Adapter
	store    *state.Store
	logger   *zap.Logger
	cron     *cron.Cron
	interval time.Duration

	mu        sync.Mutex
	savedRev  uint64
	haveSaved bool
}

func NewAutosaver(adapter *Adapter, store *state.Store, interval time.Duration, logger *zap.Logger) *Autosaver {
	if interval < time.Second {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	as := &Autosaver{
		adapter:  adapter,
		store:    store,
		logger:   logger,
		cron:     cron.New(),
		interval: interval,
	}

	as.cron.Schedule(fixedInterval(interval), cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if _, err := as.Flush(ctx); err != nil {
			as.logger.Error("autosave failed", zap.Error(err))
		}
	}))

	return as
}

// fixedInterval fires every d. cron.Every rounds down to whole seconds, which
// would turn 1500ms into 1s.
type fixedInterval time.Duration

func (d fixedInterval) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

// MarkSaved records the store's current revision as persisted, e.g. right after a restore.
func (as *Autosaver) MarkSaved() {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.savedRev = as.store.Revision()
	as.haveSaved = true
}

// Start launches the cron scheduler.
func (as *Autosaver) Start() {
	if as == nil || as.cron == nil {
		return
	}
	as.cron.Start()
	as.logger.Info("autosave started", zap.Duration("interval", as.interval))
}

// Stop waits for a running save to finish, bounded by ctx.
func (as *Autosaver) Stop(ctx context.Context) {
	if as == nil || as.cron == nil {
		return
	}
	stopCtx := as.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	as.logger.Info("autosave stopped")
}

// Flush saves the store if it changed since the last successful save.
// It reports whether a write happened.
func (as *Autosaver) Flush(ctx context.Context) (bool, error) {
	as.mu.Lock()
	defer as.mu.Unlock()

	rev := as.store.Revision()
	if as.haveSaved && rev == as.savedRev {
		as.logger.Debug("autosave skipped (no changes)")
		return false, nil
	}
	if err := as.adapter.Save(ctx, as.store); err != nil {
		return false, err
	}
	as.savedRev = rev
	as.haveSaved = true
	return true, nil
}

package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/kv"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/memory"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	"github.com/fastygo/taskboard/usecase/persistence"
	"github.com/fastygo/taskboard/usecase/state"
)

type storage interface {
	repository.ByteStore
	repository.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.Listen(context.Background())
	defer stop()

	bytes, err := openStorage(appCtx, cfg, manager)
	if err != nil {
		zapLogger.Fatal("failed to open snapshot storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}

	mon := monitor.New(cfg.Storage.Backend, bytes, cfg.Storage.HealthCheck, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	rules := domain.Rules{
		DueDates: domain.ParseDueDatePolicy(cfg.Validation.DueDatePolicy),
		Clock:    time.Now,
	}
	store := state.New(rules, zapLogger.Named("state"))

	snapshots := persistence.New(bytes, persistence.Options{
		Key:  cfg.Snapshot.Key,
		Seed: cfg.Snapshot.SeedDefaults,
	}, zapLogger.Named("persistence"))

	autosaver := persistence.NewAutosaver(snapshots, store, cfg.Snapshot.AutosaveInterval, zapLogger)
	report, err := persistence.Boot(appCtx, snapshots, store, autosaver)
	if err != nil {
		zapLogger.Fatal("state not restored, refusing to start over the saved snapshot", zap.Error(err))
	}
	zapLogger.Info("state ready",
		zap.Bool("seeded", report.Seeded),
		zap.Int("projects", report.Projects),
		zap.Int("todos", report.Todos),
		zap.String("backup_key", report.BackupKey))

	autosaver.Start()
	manager.Register("autosave", func(ctx context.Context) error {
		autosaver.Stop(ctx)
		_, err := autosaver.Flush(ctx)
		return err
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Project:  apiHandler.NewProjectHandler(store, ctxAdapter, zapLogger),
		Todo:     apiHandler.NewTodoHandler(store, ctxAdapter, zapLogger),
		Snapshot: apiHandler.NewSnapshotHandler(snapshots, store, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, store, ctxAdapter, zapLogger),
	}

	r := router.New(handlers)

	server := &fasthttp.Server{
		Handler:      middleware.RequestID(zapLogger)(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openStorage opens the configured byte store and registers its close hook.
func openStorage(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager) (storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client, err := redisInfra.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		manager.Register("redis", func(ctx context.Context) error {
			return client.Close()
		})
		return redisRepo.NewByteStore(client, cfg.Redis.KeyPrefix), nil
	case config.BackendMemory:
		return memory.NewByteStore(0), nil
	default:
		store, err := kv.Open(cfg.Storage.BoltPath, cfg.Storage.BoltBucket)
		if err != nil {
			return nil, err
		}
		manager.Register("boltdb", func(ctx context.Context) error {
			return store.Close()
		})
		return store, nil
	}
}

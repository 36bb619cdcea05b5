package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/scriptevent/internal/config"
	"github.com/jwebster45206/scriptevent/internal/logger"
	"github.com/jwebster45206/scriptevent/internal/queue"
	"github.com/jwebster45206/scriptevent/internal/storage"
	"github.com/jwebster45206/scriptevent/internal/worker"
	"github.com/jwebster45206/scriptevent/pkg/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting script worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"manifest", cfg.Manifest)

	// Initialize queue service
	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()
	eventQueue := queue.NewEventQueue(queueClient, log)

	// Initialize storage service
	store, err := storage.NewRedisStorage(cfg.RedisURL, 0, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx, 30, 2*time.Second); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	// Build the world
	w, err := world.New(world.Options{
		MaxSteps:      cfg.ScriptMaxSteps,
		KeyPressGuard: cfg.KeyPressGuard,
	}, log)
	if err != nil {
		log.Error("Failed to create world", "error", err)
		os.Exit(1)
	}
	if cfg.WorldID != "" {
		if w.ID, err = uuid.Parse(cfg.WorldID); err != nil {
			log.Error("Invalid WORLD_ID", "error", err)
			os.Exit(1)
		}
	}

	m, err := world.LoadManifest(cfg.Manifest)
	if err != nil {
		log.Error("Failed to load world manifest", "error", err)
		os.Exit(1)
	}
	if err := w.Populate(m, storage.NewFileScripts(cfg.DataDir, cfg.ScriptCacheTTL, log)); err != nil {
		log.Error("Failed to populate world", "error", err)
		os.Exit(1)
	}

	// A save under the world ID resumes the world; otherwise it starts fresh.
	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), 30*time.Second)
	scopes, err := store.ListScopes(restoreCtx, w.ID)
	switch {
	case err != nil:
		log.Error("Failed to check for a saved world", "error", err)
		os.Exit(1)
	case len(scopes) > 0:
		if err := w.Restore(restoreCtx, store, w.ID); err != nil {
			log.Error("Failed to restore world", "error", err)
			os.Exit(1)
		}
	default:
		w.Init()
	}
	restoreCancel()

	wk := worker.New(eventQueue, w, queueClient.Redis(), log, worker.Options{
		ID:   cfg.WorkerID,
		Poll: cfg.WorkerPoll,
	})

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- wk.Start() }()

	log.Info("Worker started, waiting for events...", "worker_id", wk.ID(), "world_id", w.ID.String())

	select {
	case <-quit:
		log.Info("Worker shutdown signal received")
		wk.Stop()
		if err := <-done; err != nil {
			log.Error("Worker error", "error", err)
		}
	case err := <-done:
		if err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}

	saveCtx, saveCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer saveCancel()
	if err := w.Snapshot(saveCtx, store, w.ID); err != nil {
		log.Error("Failed to save world", "error", err)
	}

	log.Info("Worker exited")
}

package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/ourpaint/ourpainthub/backend/internal/config"
	"github.com/ourpaint/ourpainthub/backend/pkg/logger"
)

// Worker processes async audit tasks from the queue
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor func(context.Context, *EntityLogTask) error
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// NewWorker creates a new worker instance. Returns nil when Redis is disabled.
func NewWorker(cfg *config.RedisConfig) *Worker {
	if !cfg.Enabled {
		return nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Infof("[Worker] Error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

// SetProcessor sets the function to process audit tasks
func (w *Worker) SetProcessor(processor func(context.Context, *EntityLogTask) error) {
	w.processor = processor
}

// Start begins processing tasks
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeEntityLog, w.handleEntityLogTask)

	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Infof("[Worker] Starting async worker...")
		if err := w.server.Run(w.mux); err != nil {
			logger.Infof("[Worker] Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Infof("[Worker] Shutting down...")
	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
	logger.Infof("[Worker] Shutdown complete")
}

// handleEntityLogTask processes a single audit task
func (w *Worker) handleEntityLogTask(ctx context.Context, t *asynq.Task) error {
	var task EntityLogTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		logger.Infof("[Worker] Failed to unmarshal task: %v", err)
		return err
	}

	if w.processor == nil {
		logger.Infof("[Worker] Warning: no processor set")
		return nil
	}

	return w.processor(ctx, &task)
}

// Global worker instance
var globalWorker *Worker

// InitWorker creates and starts the global audit worker when Redis is enabled.
func InitWorker(cfg *config.Config, processor func(context.Context, *EntityLogTask) error) *Worker {
	if !cfg.Redis.Enabled {
		return nil
	}

	globalWorker = NewWorker(&cfg.Redis)
	if globalWorker == nil {
		return nil
	}
	globalWorker.SetProcessor(processor)
	if err := globalWorker.Start(); err != nil {
		logger.Infof("[Worker] Failed to start: %v", err)
	}
	return globalWorker
}

// StopWorker shuts down the global worker if one is running.
func StopWorker() {
	if globalWorker != nil {
		globalWorker.Stop()
	}
}

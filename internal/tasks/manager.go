package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"applyflow/internal/config"
	"applyflow/internal/engine"
	"applyflow/internal/logging"
	"applyflow/internal/logging/types"
	"applyflow/pkg/models"
)

const (
	// Default configuration values
	DefaultMaxWorkers   = 2
	DefaultMaxQueueSize = 50
)

// Manager runs application attempts in the background and tracks their
// results. The worker count is intentionally small; each running task holds a
// browser page.
type Manager struct {
	config    *config.Config
	store     TaskStore
	appLogger types.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.RWMutex
	running  bool
	taskChan chan *taskExecution
}

type taskExecution struct {
	processID string
	execute   func(context.Context) (*TaskResult, error)
}

// NewManager creates a new background task manager
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:    cfg,
		store:     NewInMemoryTaskStore(),
		appLogger: logging.GetGlobalLogger(),
		taskChan:  make(chan *taskExecution, DefaultMaxQueueSize),
	}
}

// Start starts the worker goroutines
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("task manager already running")
	}

	m.ctx, m.cancel = context.WithCancel(ctx)
	m.running = true

	workers := m.config.BackgroundTasks.MaxConcurrentTasks
	if workers <= 0 {
		workers = DefaultMaxWorkers
	}

	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	m.wg.Add(1)
	go m.cleanupRoutine()

	m.appLogger.Info("Task manager started", map[string]interface{}{
		"max_workers": workers,
	})
	return nil
}

// Stop stops the task manager gracefully
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	m.appLogger.Info("Stopping task manager...")
	m.cancel()
	close(m.taskChan)

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.appLogger.Info("Task manager stopped gracefully")
	case <-ctx.Done():
		m.appLogger.Warn("Task manager shutdown timed out")
	}

	m.running = false
	return nil
}

// SubmitApplyTask queues an application run for background processing
func (m *Manager) SubmitApplyTask(ctx context.Context, processID string, request *models.ApplyRequest, applicator *engine.Applicator) error {
	if !m.IsHealthy() {
		return fmt.Errorf("task manager is not healthy")
	}

	result := &TaskResult{
		ProcessID: processID,
		Status:    TaskStatusAccepted,
		CreatedAt: time.Now(),
		Metadata: map[string]interface{}{
			"url": request.URL,
		},
	}

	if err := m.store.Store(ctx, result); err != nil {
		return fmt.Errorf("failed to store task result: %w", err)
	}

	execution := &taskExecution{
		processID: processID,
		execute: func(execCtx context.Context) (*TaskResult, error) {
			return m.executeApplyTask(execCtx, processID, request, applicator)
		},
	}

	select {
	case m.taskChan <- execution:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// GetTaskResult retrieves the result of a task by process ID
func (m *Manager) GetTaskResult(ctx context.Context, processID string) (*TaskResult, error) {
	return m.store.Get(ctx, processID)
}

// ListTasks lists all tracked tasks
func (m *Manager) ListTasks(ctx context.Context) ([]*TaskResult, error) {
	return m.store.List(ctx)
}

// IsHealthy checks if the task manager is healthy
func (m *Manager) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running && m.ctx != nil && m.ctx.Err() == nil
}

func (m *Manager) worker(workerID int) {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case task, ok := <-m.taskChan:
			if !ok {
				return
			}
			m.processTask(workerID, task)
		}
	}
}

func (m *Manager) processTask(workerID int, task *taskExecution) {
	startTime := time.Now()

	m.appLogger.Info("Processing task", map[string]interface{}{
		"worker_id":  workerID,
		"process_id": task.processID,
	})

	if err := m.updateTaskStatus(task.processID, TaskStatusProcessing); err != nil {
		m.appLogger.Error("Failed to update task status to processing", map[string]interface{}{
			"error": err.Error(),
		})
	}

	result, err := task.execute(m.ctx)
	processingTime := time.Since(startTime)

	if err != nil {
		m.appLogger.Error("Task execution failed", map[string]interface{}{
			"worker_id":       workerID,
			"process_id":      task.processID,
			"processing_time": processingTime,
			"error":           err.Error(),
		})

		existing, getErr := m.store.Get(m.ctx, task.processID)
		if getErr != nil {
			result = &TaskResult{
				ProcessID: task.processID,
				CreatedAt: time.Now(),
			}
		} else {
			result = existing
		}
		result.Status = TaskStatusFailure
		result.Error = err.Error()
		result.ProcessingTime = &processingTime
	} else {
		result.Status = TaskStatusSuccess
		result.ProcessingTime = &processingTime
		completedAt := time.Now()
		result.CompletedAt = &completedAt
	}

	if err := m.store.Update(m.ctx, result); err != nil {
		m.appLogger.Error("Failed to store task result", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (m *Manager) updateTaskStatus(processID string, status TaskStatus) error {
	result, err := m.store.Get(context.Background(), processID)
	if err != nil {
		return err
	}

	result.Status = status
	return m.store.Update(context.Background(), result)
}

func (m *Manager) cleanupRoutine() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.BackgroundTasks.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if err := m.store.Cleanup(context.Background(), m.config.BackgroundTasks.MaxTaskAge); err != nil {
				m.appLogger.Error("Failed to cleanup old task results", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

// executeApplyTask runs one application attempt. The task timeout bounds the
// automated stages; the confirmation gate waits on the reviewer without one.
func (m *Manager) executeApplyTask(ctx context.Context, processID string, request *models.ApplyRequest, applicator *engine.Applicator) (*TaskResult, error) {
	existing, err := m.store.Get(ctx, processID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve existing task result: %w", err)
	}

	taskCtx, cancel := context.WithTimeout(ctx, m.config.BackgroundTasks.TaskTimeout)
	defer cancel()

	outcome := applicator.Apply(taskCtx, processID, request)
	if outcome.Status == models.ApplyFailed {
		return nil, fmt.Errorf("application failed: %s", outcome.Reason)
	}

	existing.Data = &ApplyTaskData{Outcome: outcome}
	existing.Metadata = map[string]interface{}{
		"url":      request.URL,
		"site_key": outcome.SiteKey,
		"status":   string(outcome.Status),
	}

	return existing, nil
}

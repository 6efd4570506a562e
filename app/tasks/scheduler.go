package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-watch/app/metrics"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	queueSize     = 300
	taskTimeout   = 5 * time.Minute
	maxRetryDelay = 30 * time.Second
)

// Scheduler runs queued tasks on a fixed pool of workers and re-enqueues
// failed tasks with exponential backoff.
type Scheduler struct {
	workerCount int
	retryBase   time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if workerCount <= 0 {
		workerCount = 1
	}

	return &Scheduler{
		workerCount: workerCount,
		retryBase:   time.Second,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, queueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop cancels running tasks and waits for the workers and any pending
// retry timers to exit.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	meta := task.Meta()
	meta.markStarted(time.Now())

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	metrics.TasksTotal.WithLabelValues(string(meta.Type), metrics.StatusLabel(err)).Inc()

	if err == nil {
		slog.Debug("Task completed", "worker_id", workerID, "type", string(meta.Type), "id", meta.ID, "duration", meta.Duration().String())
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(meta.Type), "id", meta.ID, "retry_count", meta.RetryCount, "error", err)

	if !meta.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(meta.Type), "id", meta.ID, "retry_count", meta.RetryCount, "max_retries", meta.MaxRetries, "last_error", err)
		return
	}

	meta.RetryCount++
	retryDelay := s.retryDelay(meta.RetryCount)

	slog.Warn("Task retry scheduled", "type", string(meta.Type), "watcher", meta.WatcherID, "retry_count", meta.RetryCount, "max_retries", meta.MaxRetries, "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(retryDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(meta.Type), "id", meta.ID)
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(meta.Type), "id", meta.ID, "retry_count", meta.RetryCount, "error", retryErr)
			}
		}
	}()
}

// retryDelay is retryBase doubled per attempt, capped at 30s.
func (s *Scheduler) retryDelay(retry int) time.Duration {
	delay := s.retryBase * time.Duration(1<<uint(retry-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
